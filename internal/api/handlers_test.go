package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skyharbor/flightdeck/internal/companion"
	"github.com/skyharbor/flightdeck/internal/config"
	"github.com/skyharbor/flightdeck/internal/storage/sqlite"
	"github.com/skyharbor/flightdeck/internal/traffic"
	"github.com/skyharbor/flightdeck/internal/tts"
	"github.com/skyharbor/flightdeck/internal/websocket"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

func newTestRouter(t *testing.T) (http.Handler, *traffic.Service) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Traffic: config.TrafficConfig{
			FeedURL:              "wss://24data.ptfs.app/wss",
			ReconnectDelaySecs:   5,
			DialRetryDelaySecs:   10,
			HandshakeTimeoutSecs: 10,
			SubscriberBufferSize: 8,
			EvictionGraceTicks:   1,
		},
	}
	log := logger.NewNop()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	storage, err := sqlite.NewCompanionStorage(db, log)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	wsServer := websocket.NewServer(8, log)
	go wsServer.Run()

	trafficService := traffic.NewService(cfg.Traffic, wsServer, log)
	wsServer.SetSnapshotProvider(trafficService)

	ttsClient := tts.NewClient(config.TTSConfig{BaseURL: "https://api.elevenlabs.io", TimeoutSeconds: 5}, log)

	router := NewRouter(trafficService, storage, ttsClient, cfg, log, wsServer)
	return router.Routes(), trafficService
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestGetAircraftEndpoints(t *testing.T) {
	handler, svc := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/aircraft", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/aircraft = %d", rec.Code)
	}
	var listResp struct {
		Count    int                        `json:"count"`
		Aircraft []traffic.EnhancedAircraft `json:"aircraft"`
	}
	decodeJSON(t, rec, &listResp)
	if listResp.Count != 0 {
		t.Errorf("count = %d, want 0", listResp.Count)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/aircraft/BAW22", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown callsign = %d, want 404", rec.Code)
	}

	// Feed one batch through the pipeline, then query again.
	svc.HandleFrame([]byte(`{"t":"ACFT_DATA","d":{"BAW22":{"altitude":12000,"speed":300,"playerName":"p1","aircraftType":"B738"}}}`))

	rec = doRequest(t, handler, http.MethodGet, "/api/aircraft/BAW22", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("known callsign = %d, want 200", rec.Code)
	}
	var aircraft traffic.EnhancedAircraft
	decodeJSON(t, rec, &aircraft)
	if aircraft.Callsign != "BAW22" || aircraft.Phase != traffic.PhaseCruise {
		t.Errorf("unexpected aircraft: %+v", aircraft)
	}
}

func TestTrafficStatusAndHealth(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/traffic/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/traffic/status = %d", rec.Code)
	}
	var status traffic.Status
	decodeJSON(t, rec, &status)
	if status.Connected {
		t.Error("Connected should be false without a feed")
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/health = %d", rec.Code)
	}
	var health map[string]any
	decodeJSON(t, rec, &health)
	if health["status"] != "ok" {
		t.Errorf("health status = %v", health["status"])
	}
}

func TestAnnouncementLifecycle(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/announcements", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/announcements = %d", rec.Code)
	}
	var seeded []companion.Announcement
	decodeJSON(t, rec, &seeded)
	if len(seeded) != 3 {
		t.Fatalf("seeded announcements = %d, want 3", len(seeded))
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/announcements", companion.Announcement{
		Title:       "Final Approach",
		Description: "Cabin crew prepare",
		Content:     "Cabin crew, prepare for landing.",
		Phase:       "landing",
		Duration:    "0:20",
		Icon:        "fas fa-plane-arrival",
		IconColor:   "aviation-blue",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/announcements = %d", rec.Code)
	}
	var created companion.Announcement
	decodeJSON(t, rec, &created)
	if created.ID == "" {
		t.Fatal("created announcement has no ID")
	}

	// Partial update: only the favorite flag; other fields persist.
	rec = doRequest(t, handler, http.MethodPatch, "/api/announcements/"+created.ID,
		map[string]any{"isFavorite": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH = %d", rec.Code)
	}
	var updated companion.Announcement
	decodeJSON(t, rec, &updated)
	if !updated.IsFavorite || updated.Title != "Final Approach" {
		t.Errorf("partial update broke record: %+v", updated)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/announcements?phase=landing", nil)
	var byPhase []companion.Announcement
	decodeJSON(t, rec, &byPhase)
	if len(byPhase) != 1 {
		t.Errorf("phase filter returned %d records, want 1", len(byPhase))
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/announcements/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", rec.Code)
	}
	rec = doRequest(t, handler, http.MethodDelete, "/api/announcements/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want 404", rec.Code)
	}
}

func TestGetNoteByID(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/notes", companion.Note{
		Title:   "Taxi route",
		Content: "Expect taxi via A, B2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/notes = %d", rec.Code)
	}
	var created companion.Note
	decodeJSON(t, rec, &created)

	rec = doRequest(t, handler, http.MethodGet, "/api/notes/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/notes/{id} = %d, want 200", rec.Code)
	}
	var got companion.Note
	decodeJSON(t, rec, &got)
	if got.ID != created.ID || got.Content != "Expect taxi via A, B2" {
		t.Errorf("unexpected note: %+v", got)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/notes/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown note = %d, want 404", rec.Code)
	}
}

func TestChartEndpoints(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/charts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/charts = %d", rec.Code)
	}
	var seeded []companion.Chart
	decodeJSON(t, rec, &seeded)
	if len(seeded) != 1 || seeded[0].AirportCode != "IRFD" {
		t.Fatalf("unexpected seeded charts: %+v", seeded)
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/charts", companion.Chart{
		Title:       "ITKO Approach Chart",
		AirportCode: "ITKO",
		ChartType:   "Approach Chart",
		FileName:    "itko_ils14.svg",
		FileURL:     "/attached_assets/charts/itko_ils14.svg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/charts = %d", rec.Code)
	}
	var created companion.Chart
	decodeJSON(t, rec, &created)
	if created.ID == "" {
		t.Fatal("created chart has no ID")
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/charts?airport=ITKO", nil)
	var byAirport []companion.Chart
	decodeJSON(t, rec, &byAirport)
	if len(byAirport) != 1 || byAirport[0].ID != created.ID {
		t.Errorf("airport filter returned %d records", len(byAirport))
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/charts/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", rec.Code)
	}
	rec = doRequest(t, handler, http.MethodDelete, "/api/charts/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want 404", rec.Code)
	}
}

func TestSIDEndpoints(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/sids", companion.SID{
		Name:        "GREKI 2",
		Airport:     "IRFD",
		Runway:      "25L",
		Description: "Standard departure to the east",
		Procedure:   []string{"Climb runway heading to 3000", "Direct GREKI"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/sids = %d", rec.Code)
	}
	var created companion.SID
	decodeJSON(t, rec, &created)
	if created.ID == "" || len(created.Procedure) != 2 {
		t.Fatalf("unexpected created SID: %+v", created)
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/sids", companion.SID{
		Name:        "DEEZZ 1",
		Airport:     "ITKO",
		Runway:      "14",
		Description: "Noise abatement departure",
		Procedure:   []string{"Climb to 5000", "Direct DEEZZ"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/sids = %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/sids", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/sids = %d", rec.Code)
	}
	var all []companion.SID
	decodeJSON(t, rec, &all)
	if len(all) != 2 {
		t.Fatalf("GET /api/sids returned %d, want 2", len(all))
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/sids?airport=IRFD", nil)
	var byAirport []companion.SID
	decodeJSON(t, rec, &byAirport)
	if len(byAirport) != 1 || byAirport[0].Name != "GREKI 2" {
		t.Errorf("airport filter: %+v", byAirport)
	}

	// Search takes precedence over the airport filter.
	rec = doRequest(t, handler, http.MethodGet, "/api/sids?search=deezz&airport=IRFD", nil)
	var bySearch []companion.SID
	decodeJSON(t, rec, &bySearch)
	if len(bySearch) != 1 || bySearch[0].Name != "DEEZZ 1" {
		t.Errorf("search filter: %+v", bySearch)
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/sids/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", rec.Code)
	}
}

func TestFlightStatusEndpoints(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/flight-status", companion.FlightStatus{
		FlightNumber: "UA42",
		Route:        "DEN → SEA",
		Aircraft:     "Airbus A320",
		Status:       "BOARDING",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/flight-status = %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/flight-status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/flight-status = %d", rec.Code)
	}
	var status companion.FlightStatus
	decodeJSON(t, rec, &status)
	if status.FlightNumber != "UA42" || !status.IsActive {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestTTSDisabledWithoutKey(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/voices", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /api/voices = %d, want 503", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/tts",
		map[string]string{"text": "hello", "voice_id": "abc"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("POST /api/tts = %d, want 503", rec.Code)
	}
}
