package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skyharbor/flightdeck/internal/companion"
	"github.com/skyharbor/flightdeck/internal/config"
	"github.com/skyharbor/flightdeck/internal/traffic"
	"github.com/skyharbor/flightdeck/internal/tts"
	"github.com/skyharbor/flightdeck/internal/websocket"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	trafficService *traffic.Service
	storage        companion.Storage
	ttsClient      *tts.Client
	config         *config.Config
	logger         *logger.Logger
	wsServer       *websocket.Server
}

// NewHandler creates a new API handler
func NewHandler(trafficService *traffic.Service, storage companion.Storage, ttsClient *tts.Client, config *config.Config, logger *logger.Logger, wsServer *websocket.Server) *Handler {
	return &Handler{
		trafficService: trafficService,
		storage:        storage,
		ttsClient:      ttsClient,
		config:         config,
		logger:         logger.Named("api-handler"),
		wsServer:       wsServer,
	}
}

// GetAllAircraft returns the current aircraft roster
func (h *Handler) GetAllAircraft(w http.ResponseWriter, r *http.Request) {
	aircraft := h.trafficService.GetAllAircraft()

	response := map[string]interface{}{
		"count":    len(aircraft),
		"aircraft": aircraft,
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetAircraftByCallsign returns one aircraft by exact callsign
func (h *Handler) GetAircraftByCallsign(w http.ResponseWriter, r *http.Request) {
	callsign := chi.URLParam(r, "callsign")
	if callsign == "" {
		http.Error(w, "Missing callsign", http.StatusBadRequest)
		return
	}

	aircraft, found := h.trafficService.GetAircraftByCallsign(callsign)
	if !found {
		http.Error(w, "Aircraft not found", http.StatusNotFound)
		return
	}

	WriteJSON(w, http.StatusOK, aircraft)
}

// GetControllers returns the latest controller positions
func (h *Handler) GetControllers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.trafficService.GetControllers())
}

// GetTrafficStatus returns feed connection state and roster counts
func (h *Handler) GetTrafficStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.trafficService.Status())
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.trafficService.Status()

	response := map[string]interface{}{
		"status":         "ok",
		"feed_connected": status.Connected,
		"aircraft_count": status.AircraftCount,
		"subscribers":    h.wsServer.ClientCount(),
	}
	WriteJSON(w, http.StatusOK, response)
}

// HandleWebSocket upgrades the request to a fanout subscription
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsServer.HandleConnection(w, r)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeStorageError maps storage errors onto HTTP status codes.
func (h *Handler) writeStorageError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, companion.ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	h.logger.Error("Storage operation failed", logger.Error(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
