package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/estate-listing/internal/api/handlers"
	"github.com/isdelr/estate-listing/internal/auth"
	"github.com/isdelr/estate-listing/internal/config"
	"github.com/isdelr/estate-listing/internal/services"
	"github.com/isdelr/estate-listing/internal/web"
	ws "github.com/isdelr/estate-listing/internal/websocket"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg *config.Config,
	db handlers.Pinger,
	renderer *web.Renderer,
	sessions *auth.SessionManager,
	userService services.UserServiceProvider,
	propertyService services.PropertyServiceProvider,
	uploadService services.UploadServiceProvider,
	eventService services.EventServiceProvider,
	hub *ws.Hub,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(func(req *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(req).Info().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("request_id", middleware.GetReqID(req.Context())).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(sessions.Middleware)

	// Initialize handlers
	rs := handlers.NewResponder(renderer, sessions)
	pageHandler := handlers.NewPageHandler(rs)
	userHandler := handlers.NewUserHandler(rs, userService, eventService)
	propertyHandler := handlers.NewPropertyHandler(rs, propertyService, uploadService, eventService, hub, cfg.MaxUploadBytes)
	feedHandler := handlers.NewFeedHandler(hub, cfg.AllowedOrigins)
	requireUser := rs.RequireUser(userService)

	r.NotFound(rs.NotFound)
	r.Get("/healthz", handlers.Health(db))

	// Static pages
	r.Get("/", pageHandler.Home)
	r.Get("/aboutus", pageHandler.AboutUs)
	r.Get("/contactus", pageHandler.ContactUs)

	// Accounts
	r.Get("/register", userHandler.RegisterForm)
	r.Post("/register", userHandler.Register)
	r.Get("/login", userHandler.LoginForm)
	r.Post("/login", userHandler.Login)
	r.Get("/logout", userHandler.Logout)
	r.With(requireUser).Get("/dashboard", userHandler.Dashboard)

	// Listings
	r.Get("/buyers", propertyHandler.Buyers)
	r.Get("/sellers", propertyHandler.SellersForm)
	r.Post("/sellers", propertyHandler.Sellers)
	r.Get("/ws/listings", feedHandler.Serve)
	r.Handle("/"+services.UploadURLPrefix+"/*", uploadsHandler(cfg.UploadDir, rs))

	if cfg.DebugRoutes {
		log.Warn().Strs("operators", cfg.DebugOperators).Msg("Diagnostic routes enabled")
		debugHandler := handlers.NewDebugHandler(rs, userService)
		r.With(requireUser, rs.RequireOperator(cfg.DebugOperators)).Get("/debug/users", debugHandler.Users)
	}

	return r
}

// uploadsHandler serves stored images without directory listings.
func uploadsHandler(dir string, rs *handlers.Responder) http.Handler {
	prefix := "/" + services.UploadURLPrefix + "/"
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			rs.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
