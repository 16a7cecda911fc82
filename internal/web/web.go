// Package web holds the HTML templates and renders them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page is the value every template executes against.
type Page struct {
	Flashes  []string
	LoggedIn bool
	Data     any
}

// Renderer executes named page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded page together with the layout.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template)
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page name to w.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", page)
}

var funcs = template.FuncMap{
	// price renders 250000 as "250,000.00".
	"price": func(v float64) string {
		s := fmt.Sprintf("%.2f", v)
		intPart, frac := s[:len(s)-3], s[len(s)-3:]
		neg := strings.HasPrefix(intPart, "-")
		intPart = strings.TrimPrefix(intPart, "-")

		var b strings.Builder
		for i, c := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(c)
		}
		if neg {
			return "-" + b.String() + frac
		}
		return b.String() + frac
	},
}
