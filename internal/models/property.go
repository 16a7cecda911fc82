package models

import "strings"

// imageSeparator joins image paths in the images column.
const imageSeparator = ","

// Property represents a listing submitted by a seller.
type Property struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Location    string  `db:"location" json:"location"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	Phone       string  `db:"phone" json:"phone"`

	ImagesRaw string   `db:"images" json:"-"` // Stored form
	Images    []string `db:"-" json:"images"` // Relative paths, upload order
}

// PrepareForDB joins Images into ImagesRaw before saving.
func (p *Property) PrepareForDB() {
	p.ImagesRaw = strings.Join(p.Images, imageSeparator)
}

// PrepareForAPI splits ImagesRaw back into Images after loading.
func (p *Property) PrepareForAPI() {
	p.Images = nil
	if p.ImagesRaw == "" {
		return
	}
	for _, path := range strings.Split(p.ImagesRaw, imageSeparator) {
		if path != "" {
			p.Images = append(p.Images, path)
		}
	}
}
