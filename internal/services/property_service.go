package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/isdelr/estate-listing/internal/models"
	"github.com/jmoiron/sqlx"
)

var ErrPropertyNotFound = errors.New("property not found")

// PropertyFilter narrows a listing query. Nil bounds and an empty Location
// mean no constraint on that dimension.
type PropertyFilter struct {
	MinPrice *float64
	MaxPrice *float64
	// Location must equal the stored value exactly: case-sensitive, untrimmed.
	Location string
}

// ParsePropertyFilter reads min_price, max_price and location from query
// values. Prices that are not finite numbers are ignored.
func ParsePropertyFilter(q url.Values) PropertyFilter {
	return PropertyFilter{
		MinPrice: parsePrice(q.Get("min_price")),
		MaxPrice: parsePrice(q.Get("max_price")),
		Location: q.Get("location"),
	}
}

func parsePrice(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// PropertyServiceProvider defines the interface for property services.
type PropertyServiceProvider interface {
	CreateProperty(ctx context.Context, property models.Property) (models.Property, error)
	GetPropertyByID(ctx context.Context, id int64) (models.Property, error)
	FilterProperties(ctx context.Context, filter PropertyFilter) ([]models.Property, error)
	DistinctLocations(ctx context.Context) ([]string, error)
}

// PropertyService provides business logic for property listings.
type PropertyService struct {
	db *sqlx.DB
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(db *sqlx.DB) *PropertyService {
	return &PropertyService{db: db}
}

const selectProperties = "SELECT id, title, location, description, price, phone, COALESCE(images, '') AS images FROM properties"

// CreateProperty stores a new listing and returns it with its ID.
func (s *PropertyService) CreateProperty(ctx context.Context, property models.Property) (models.Property, error) {
	if math.IsNaN(property.Price) || math.IsInf(property.Price, 0) {
		return models.Property{}, fmt.Errorf("invalid price %v", property.Price)
	}
	property.PrepareForDB()

	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO properties (title, location, description, price, phone, images)
		VALUES (:title, :location, :description, :price, :phone, :images)
	`, &property)
	if err != nil {
		return models.Property{}, fmt.Errorf("insert property: %w", err)
	}
	if property.ID, err = res.LastInsertId(); err != nil {
		return models.Property{}, fmt.Errorf("insert property: %w", err)
	}
	return property, nil
}

// GetPropertyByID retrieves a single listing.
func (s *PropertyService) GetPropertyByID(ctx context.Context, id int64) (models.Property, error) {
	var property models.Property
	if err := s.db.GetContext(ctx, &property, selectProperties+" WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Property{}, ErrPropertyNotFound
		}
		return models.Property{}, fmt.Errorf("get property %d: %w", id, err)
	}
	property.PrepareForAPI()
	return property, nil
}

// FilterProperties returns every listing matching all supplied constraints,
// in insertion order. There is no pagination.
func (s *PropertyService) FilterProperties(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.Location != "" {
		// = compares with BINARY collation: exact bytes, no case folding.
		conds = append(conds, "location = ?")
		args = append(args, filter.Location)
	}

	query := selectProperties
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	properties := []models.Property{}
	if err := s.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, fmt.Errorf("filter properties: %w", err)
	}
	for i := range properties {
		properties[i].PrepareForAPI()
	}
	return properties, nil
}

// DistinctLocations lists each stored location once, sorted, for the
// buyer view's location selector.
func (s *PropertyService) DistinctLocations(ctx context.Context) ([]string, error) {
	locations := []string{}
	if err := s.db.SelectContext(ctx, &locations, "SELECT DISTINCT location FROM properties ORDER BY location"); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}
