package traffic

import (
	"sync"
	"time"

	"github.com/skyharbor/flightdeck/internal/config"
	"github.com/skyharbor/flightdeck/internal/websocket"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

// WebSocketServer is the fanout surface the service pushes updates to.
type WebSocketServer interface {
	Broadcast(msg *websocket.Message)
}

// Service owns the live traffic pipeline: it feeds decoded frames from
// the upstream client into the roster, tracks controllers and feed
// health, broadcasts every change to subscribers, and answers queries
// from the API layer.
type Service struct {
	roster   *Roster
	client   *Client
	wsServer WebSocketServer
	logger   *logger.Logger

	mu          sync.RWMutex
	controllers []ControllerPosition
	lastUpdate  time.Time
}

// NewService creates the traffic service and its feed client.
func NewService(cfg config.TrafficConfig, wsServer WebSocketServer, log *logger.Logger) *Service {
	s := &Service{
		roster:   NewRoster(cfg.EvictionGraceTicks, cfg.CorrectedPhaseRules),
		wsServer: wsServer,
		logger:   log.Named("traffic-service"),
	}
	s.client = NewClient(cfg, s, s, log)
	return s
}

// Start begins consuming the upstream feed.
func (s *Service) Start() {
	s.logger.Info("Starting traffic service")
	s.client.Connect()
}

// Stop disconnects from the feed and suppresses reconnects.
func (s *Service) Stop() {
	s.logger.Info("Stopping traffic service")
	s.client.Disconnect()
}

// HandleFrame implements FrameHandler. Frames arrive from the single
// reader goroutine and are applied synchronously, so state mutations
// happen in feed order. Undecodable frames are dropped and the
// connection keeps reading.
func (s *Service) HandleFrame(data []byte) {
	event, err := DecodeFrame(data)
	if err != nil {
		s.logger.Warn("Dropping bad feed frame", logger.Error(err))
		return
	}

	switch event.Kind {
	case FeedAircraftBatch:
		s.applyBatch(event.Batch)
	case FeedFlightPlan:
		s.applyFlightPlan(*event.Plan)
	case FeedControllers:
		s.applyControllers(event.Controllers)
	}
}

func (s *Service) applyBatch(batch SnapshotBatch) {
	all := s.roster.ApplySnapshotBatch(batch, time.Now().UTC())

	s.mu.Lock()
	s.lastUpdate = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Debug("Applied aircraft batch", logger.Int("aircraft", len(all)))
	if s.wsServer != nil {
		s.wsServer.Broadcast(&websocket.Message{
			Type: websocket.MessageTypeAircraft,
			Data: all,
		})
	}
}

func (s *Service) applyFlightPlan(plan FlightPlan) {
	merged := s.roster.ApplyFlightPlan(plan)
	s.logger.Debug("Applied flight plan",
		logger.String("callsign", plan.Callsign),
		logger.Bool("merged", merged))
	if s.wsServer != nil {
		s.wsServer.Broadcast(&websocket.Message{
			Type: websocket.MessageTypeFlightPlan,
			Data: plan,
		})
	}
}

func (s *Service) applyControllers(controllers []ControllerPosition) {
	s.mu.Lock()
	s.controllers = controllers
	s.mu.Unlock()

	s.logger.Debug("Applied controllers", logger.Int("positions", len(controllers)))
	if s.wsServer != nil {
		s.wsServer.Broadcast(&websocket.Message{
			Type: websocket.MessageTypeControllers,
			Data: controllers,
		})
	}
}

// FeedConnected implements ConnListener.
func (s *Service) FeedConnected() {
	s.logger.Info("Traffic feed connected")
}

// FeedDisconnected implements ConnListener. Roster state is kept as-is
// while disconnected; the next batch after reconnect replaces it.
func (s *Service) FeedDisconnected(err error) {
	if err != nil {
		s.logger.Warn("Traffic feed disconnected", logger.Error(err))
	} else {
		s.logger.Info("Traffic feed disconnected")
	}
}

// GetAllAircraft returns a copy of the current roster.
func (s *Service) GetAllAircraft() []EnhancedAircraft {
	return s.roster.GetAll()
}

// GetAircraftByCallsign looks up one aircraft by exact callsign.
func (s *Service) GetAircraftByCallsign(callsign string) (EnhancedAircraft, bool) {
	return s.roster.GetByCallsign(callsign)
}

// GetControllers returns a copy of the latest controller list.
func (s *Service) GetControllers() []ControllerPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ControllerPosition, len(s.controllers))
	copy(out, s.controllers)
	return out
}

// IsConnected reports whether the upstream feed connection is live.
func (s *Service) IsConnected() bool {
	return s.client.IsConnected()
}

// Status summarizes the pipeline for the status endpoint.
func (s *Service) Status() Status {
	s.mu.RLock()
	lastUpdate := s.lastUpdate
	controllers := len(s.controllers)
	s.mu.RUnlock()

	return Status{
		Connected:        s.client.IsConnected(),
		AircraftCount:    s.roster.Len(),
		ControllersCount: controllers,
		LastUpdate:       lastUpdate,
	}
}

// SnapshotMessages implements websocket.SnapshotProvider: a new
// subscriber gets the full roster and the controller list on join.
func (s *Service) SnapshotMessages() []*websocket.Message {
	msgs := []*websocket.Message{
		{Type: websocket.MessageTypeAircraft, Data: s.GetAllAircraft()},
	}
	if controllers := s.GetControllers(); len(controllers) > 0 {
		msgs = append(msgs, &websocket.Message{
			Type: websocket.MessageTypeControllers,
			Data: controllers,
		})
	}
	return msgs
}
