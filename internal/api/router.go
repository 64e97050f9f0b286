package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skyharbor/flightdeck/internal/companion"
	"github.com/skyharbor/flightdeck/internal/config"
	"github.com/skyharbor/flightdeck/internal/traffic"
	"github.com/skyharbor/flightdeck/internal/tts"
	"github.com/skyharbor/flightdeck/internal/websocket"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

// Router assembles the HTTP surface: REST API, WebSocket fanout
// endpoint, and optional static file serving.
type Router struct {
	handler *Handler
	config  *config.Config
	logger  *logger.Logger
}

// NewRouter creates a new router with all dependencies
func NewRouter(
	trafficService *traffic.Service,
	storage companion.Storage,
	ttsClient *tts.Client,
	cfg *config.Config,
	log *logger.Logger,
	wsServer *websocket.Server,
) *Router {
	return &Router{
		handler: NewHandler(trafficService, storage, ttsClient, cfg, log, wsServer),
		config:  cfg,
		logger:  log.Named("api-router"),
	}
}

// Routes builds the chi route tree.
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.requestLogger)
	r.Use(rt.corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Live traffic
		r.Get("/aircraft", rt.handler.GetAllAircraft)
		r.Get("/aircraft/{callsign}", rt.handler.GetAircraftByCallsign)
		r.Get("/controllers", rt.handler.GetControllers)
		r.Get("/traffic/status", rt.handler.GetTrafficStatus)
		r.Get("/health", rt.handler.GetHealth)

		// Announcements
		r.Get("/announcements", rt.handler.GetAnnouncements)
		r.Post("/announcements", rt.handler.CreateAnnouncement)
		r.Patch("/announcements/{id}", rt.handler.UpdateAnnouncement)
		r.Delete("/announcements/{id}", rt.handler.DeleteAnnouncement)

		// Checklists
		r.Get("/checklists", rt.handler.GetChecklists)
		r.Get("/checklists/{id}", rt.handler.GetChecklist)
		r.Post("/checklists", rt.handler.CreateChecklist)
		r.Patch("/checklists/{id}", rt.handler.UpdateChecklist)
		r.Delete("/checklists/{id}", rt.handler.DeleteChecklist)

		// Notes
		r.Get("/notes", rt.handler.GetNotes)
		r.Get("/notes/{id}", rt.handler.GetNote)
		r.Post("/notes", rt.handler.CreateNote)
		r.Patch("/notes/{id}", rt.handler.UpdateNote)
		r.Delete("/notes/{id}", rt.handler.DeleteNote)

		// Charts
		r.Get("/charts", rt.handler.GetCharts)
		r.Post("/charts", rt.handler.CreateChart)
		r.Delete("/charts/{id}", rt.handler.DeleteChart)

		// Departure procedures
		r.Get("/sids", rt.handler.GetSIDs)
		r.Post("/sids", rt.handler.CreateSID)
		r.Delete("/sids/{id}", rt.handler.DeleteSID)

		// Flight status
		r.Get("/flight-status", rt.handler.GetFlightStatus)
		r.Post("/flight-status", rt.handler.SetFlightStatus)

		// Weight and balance
		r.Get("/weight-balance/{aircraftType}", rt.handler.GetWeightBalance)
		r.Post("/weight-balance", rt.handler.CreateWeightBalance)

		// Text to speech
		r.Get("/voices", rt.handler.GetVoices)
		r.Post("/tts", rt.handler.GenerateSpeech)
	})

	// Fanout subscriptions
	r.Get("/ws", rt.handler.HandleWebSocket)

	// Static files for the web UI, when configured
	if rt.config.Server.StaticFilesDir != "" {
		staticHandler := NewStaticFileHandler(rt.config.Server.StaticFilesDir, rt.logger)
		r.NotFound(staticHandler.ServeHTTP)
	}

	return r
}

// requestLogger logs each request through the structured logger.
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		rt.logger.Debug("HTTP request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Duration("duration", time.Since(start)))
	})
}

// corsMiddleware applies the configured allowed origins.
func (rt *Router) corsMiddleware(next http.Handler) http.Handler {
	allowed := rt.config.Server.CORSAllowedOrigins
	allowAll := len(allowed) == 0

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				for _, o := range allowed {
					if o == origin || o == "*" {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						break
					}
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
