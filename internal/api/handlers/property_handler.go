package handlers

import (
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/isdelr/estate-listing/internal/auth"
	"github.com/isdelr/estate-listing/internal/models"
	"github.com/isdelr/estate-listing/internal/services"
	"github.com/rs/zerolog/log"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// ListingPublisher announces new listings to connected buyers.
type ListingPublisher interface {
	PublishListing(p models.Property)
}

// PropertyHandler handles the buyer listing view and seller submissions.
type PropertyHandler struct {
	*Responder
	properties     services.PropertyServiceProvider
	uploads        services.UploadServiceProvider
	events         services.EventServiceProvider
	feed           ListingPublisher
	maxUploadBytes int64
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(rs *Responder, properties services.PropertyServiceProvider, uploads services.UploadServiceProvider, events services.EventServiceProvider, feed ListingPublisher, maxUploadBytes int64) *PropertyHandler {
	return &PropertyHandler{
		Responder:      rs,
		properties:     properties,
		uploads:        uploads,
		events:         events,
		feed:           feed,
		maxUploadBytes: maxUploadBytes,
	}
}

type buyersData struct {
	Properties []models.Property
	Locations  []string

	// Raw query values, echoed back into the filter form.
	MinPrice string
	MaxPrice string
	Location string
}

// Buyers lists properties matching the optional min_price, max_price and
// location query parameters.
func (h *PropertyHandler) Buyers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.ParsePropertyFilter(q)

	properties, err := h.properties.FilterProperties(r.Context(), filter)
	if err != nil {
		h.ServerError(w, r, err, "Failed to filter properties")
		return
	}
	locations, err := h.properties.DistinctLocations(r.Context())
	if err != nil {
		h.ServerError(w, r, err, "Failed to list locations")
		return
	}

	h.Render(w, r, http.StatusOK, "buyers", buyersData{
		Properties: properties,
		Locations:  locations,
		MinPrice:   q.Get("min_price"),
		MaxPrice:   q.Get("max_price"),
		Location:   filter.Location,
	})
}

// SellersForm renders the listing submission form.
func (h *PropertyHandler) SellersForm(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "sellers", nil)
}

// Sellers creates a property from the submitted form and its images.
func (h *PropertyHandler) Sellers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			h.Redirect(w, r, "/sellers", "Upload is too large.")
			return
		}
		log.Warn().Err(err).Msg("Failed to parse listing form")
		h.Redirect(w, r, "/sellers", "Invalid form submission.")
		return
	}

	property := models.Property{
		Title:       r.PostFormValue("title"),
		Location:    r.PostFormValue("location"),
		Description: r.PostFormValue("description"),
		Phone:       r.PostFormValue("phone"),
	}
	priceStr := strings.TrimSpace(r.PostFormValue("price"))

	for _, v := range []string{property.Title, property.Location, property.Description, property.Phone, priceStr} {
		if strings.TrimSpace(v) == "" {
			h.Redirect(w, r, "/sellers", "All fields are required.")
			return
		}
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		h.Redirect(w, r, "/sellers", "Price must be a valid number.")
		return
	}
	property.Price = price

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}
	if property.Images, err = h.uploads.Store(files); err != nil {
		h.ServerError(w, r, err, "Failed to store uploaded images")
		return
	}

	created, err := h.properties.CreateProperty(r.Context(), property)
	if err != nil {
		h.uploads.Remove(property.Images)
		h.ServerError(w, r, err, "Failed to create property")
		return
	}

	log.Info().Int64("property_id", created.ID).Int("images", len(created.Images)).Msg("Property listed")
	// Listings by a signed-in seller show up in their own activity.
	var owner *int64
	if sess := auth.FromContext(r.Context()); sess.Authenticated() {
		owner = &sess.UserID
	}
	if err := h.events.CreateEvent(r.Context(), services.EventPropertyCreated, "New listing: "+created.Title+" in "+created.Location, owner); err != nil {
		log.Error().Err(err).Int64("property_id", created.ID).Msg("Failed to record event")
	}
	if h.feed != nil {
		h.feed.PublishListing(created)
	}
	h.Redirect(w, r, "/buyers")
}
