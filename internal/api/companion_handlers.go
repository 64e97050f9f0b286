package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skyharbor/flightdeck/internal/companion"
)

// Announcements

// GetAnnouncements returns all announcements, optionally filtered by
// the "phase" query parameter.
func (h *Handler) GetAnnouncements(w http.ResponseWriter, r *http.Request) {
	phase := r.URL.Query().Get("phase")

	var (
		announcements []*companion.Announcement
		err           error
	)
	if phase != "" {
		announcements, err = h.storage.GetAnnouncementsByPhase(phase)
	} else {
		announcements, err = h.storage.GetAnnouncements()
	}
	if err != nil {
		h.writeStorageError(w, err, "Announcements")
		return
	}
	if announcements == nil {
		announcements = []*companion.Announcement{}
	}
	WriteJSON(w, http.StatusOK, announcements)
}

// CreateAnnouncement stores a new announcement
func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var a companion.Announcement
	if err := decodeBody(r, &a); err != nil {
		http.Error(w, "Invalid announcement data", http.StatusBadRequest)
		return
	}
	created, err := h.storage.CreateAnnouncement(&a)
	if err != nil {
		h.writeStorageError(w, err, "Announcement")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateAnnouncement applies a partial update to an announcement
func (h *Handler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.storage.GetAnnouncement(id)
	if err != nil {
		h.writeStorageError(w, err, "Announcement")
		return
	}

	// Decode over the existing record so omitted fields keep their values
	if err := decodeBody(r, existing); err != nil {
		http.Error(w, "Invalid announcement data", http.StatusBadRequest)
		return
	}
	existing.ID = id

	updated, err := h.storage.UpdateAnnouncement(existing)
	if err != nil {
		h.writeStorageError(w, err, "Announcement")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteAnnouncement removes an announcement
func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteAnnouncement(chi.URLParam(r, "id")); err != nil {
		h.writeStorageError(w, err, "Announcement")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checklists

// GetChecklists returns all checklists
func (h *Handler) GetChecklists(w http.ResponseWriter, r *http.Request) {
	checklists, err := h.storage.GetChecklists()
	if err != nil {
		h.writeStorageError(w, err, "Checklists")
		return
	}
	if checklists == nil {
		checklists = []*companion.Checklist{}
	}
	WriteJSON(w, http.StatusOK, checklists)
}

// GetChecklist returns one checklist by ID
func (h *Handler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	checklist, err := h.storage.GetChecklist(chi.URLParam(r, "id"))
	if err != nil {
		h.writeStorageError(w, err, "Checklist")
		return
	}
	WriteJSON(w, http.StatusOK, checklist)
}

// CreateChecklist stores a new checklist
func (h *Handler) CreateChecklist(w http.ResponseWriter, r *http.Request) {
	var c companion.Checklist
	if err := decodeBody(r, &c); err != nil {
		http.Error(w, "Invalid checklist data", http.StatusBadRequest)
		return
	}
	created, err := h.storage.CreateChecklist(&c)
	if err != nil {
		h.writeStorageError(w, err, "Checklist")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateChecklist applies a partial update to a checklist
func (h *Handler) UpdateChecklist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.storage.GetChecklist(id)
	if err != nil {
		h.writeStorageError(w, err, "Checklist")
		return
	}
	if err := decodeBody(r, existing); err != nil {
		http.Error(w, "Invalid checklist data", http.StatusBadRequest)
		return
	}
	existing.ID = id

	updated, err := h.storage.UpdateChecklist(existing)
	if err != nil {
		h.writeStorageError(w, err, "Checklist")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteChecklist removes a checklist
func (h *Handler) DeleteChecklist(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteChecklist(chi.URLParam(r, "id")); err != nil {
		h.writeStorageError(w, err, "Checklist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notes

// GetNotes returns all notes, newest first
func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.storage.GetNotes()
	if err != nil {
		h.writeStorageError(w, err, "Notes")
		return
	}
	if notes == nil {
		notes = []*companion.Note{}
	}
	WriteJSON(w, http.StatusOK, notes)
}

// GetNote returns one note by ID
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.storage.GetNote(chi.URLParam(r, "id"))
	if err != nil {
		h.writeStorageError(w, err, "Note")
		return
	}
	WriteJSON(w, http.StatusOK, note)
}

// CreateNote stores a new note
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var n companion.Note
	if err := decodeBody(r, &n); err != nil {
		http.Error(w, "Invalid note data", http.StatusBadRequest)
		return
	}
	created, err := h.storage.CreateNote(&n)
	if err != nil {
		h.writeStorageError(w, err, "Note")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateNote applies a partial update to a note
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.storage.GetNote(id)
	if err != nil {
		h.writeStorageError(w, err, "Note")
		return
	}
	if err := decodeBody(r, existing); err != nil {
		http.Error(w, "Invalid note data", http.StatusBadRequest)
		return
	}
	existing.ID = id

	updated, err := h.storage.UpdateNote(existing)
	if err != nil {
		h.writeStorageError(w, err, "Note")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteNote removes a note
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteNote(chi.URLParam(r, "id")); err != nil {
		h.writeStorageError(w, err, "Note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Charts

// GetCharts returns all charts, optionally filtered by the "airport"
// query parameter.
func (h *Handler) GetCharts(w http.ResponseWriter, r *http.Request) {
	airport := r.URL.Query().Get("airport")

	var (
		charts []*companion.Chart
		err    error
	)
	if airport != "" {
		charts, err = h.storage.GetChartsByAirport(airport)
	} else {
		charts, err = h.storage.GetCharts()
	}
	if err != nil {
		h.writeStorageError(w, err, "Charts")
		return
	}
	if charts == nil {
		charts = []*companion.Chart{}
	}
	WriteJSON(w, http.StatusOK, charts)
}

// CreateChart stores a new chart reference
func (h *Handler) CreateChart(w http.ResponseWriter, r *http.Request) {
	var c companion.Chart
	if err := decodeBody(r, &c); err != nil {
		http.Error(w, "Invalid chart data", http.StatusBadRequest)
		return
	}
	created, err := h.storage.CreateChart(&c)
	if err != nil {
		h.writeStorageError(w, err, "Chart")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// DeleteChart removes a chart reference
func (h *Handler) DeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteChart(chi.URLParam(r, "id")); err != nil {
		h.writeStorageError(w, err, "Chart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SIDs

// GetSIDs returns departure procedures. The "search" query parameter
// filters by name, airport, or runway; otherwise "airport" narrows to
// one airport.
func (h *Handler) GetSIDs(w http.ResponseWriter, r *http.Request) {
	var (
		sids []*companion.SID
		err  error
	)
	switch {
	case r.URL.Query().Get("search") != "":
		sids, err = h.storage.SearchSIDs(r.URL.Query().Get("search"))
	case r.URL.Query().Get("airport") != "":
		sids, err = h.storage.GetSIDsByAirport(r.URL.Query().Get("airport"))
	default:
		sids, err = h.storage.GetSIDs()
	}
	if err != nil {
		h.writeStorageError(w, err, "SIDs")
		return
	}
	if sids == nil {
		sids = []*companion.SID{}
	}
	WriteJSON(w, http.StatusOK, sids)
}

// CreateSID stores a new departure procedure
func (h *Handler) CreateSID(w http.ResponseWriter, r *http.Request) {
	var sid companion.SID
	if err := decodeBody(r, &sid); err != nil {
		http.Error(w, "Invalid SID data", http.StatusBadRequest)
		return
	}
	created, err := h.storage.CreateSID(&sid)
	if err != nil {
		h.writeStorageError(w, err, "SID")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// DeleteSID removes a departure procedure
func (h *Handler) DeleteSID(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteSID(chi.URLParam(r, "id")); err != nil {
		h.writeStorageError(w, err, "SID")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Flight status

// GetFlightStatus returns the active flight status record
func (h *Handler) GetFlightStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.storage.GetCurrentFlightStatus()
	if err != nil {
		h.writeStorageError(w, err, "Flight status")
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// SetFlightStatus replaces the active flight status record
func (h *Handler) SetFlightStatus(w http.ResponseWriter, r *http.Request) {
	var fs companion.FlightStatus
	if err := decodeBody(r, &fs); err != nil {
		http.Error(w, "Invalid flight status data", http.StatusBadRequest)
		return
	}
	updated, err := h.storage.SetFlightStatus(&fs)
	if err != nil {
		h.writeStorageError(w, err, "Flight status")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// Weight and balance

// GetWeightBalance returns the loading limits for one aircraft type
func (h *Handler) GetWeightBalance(w http.ResponseWriter, r *http.Request) {
	aircraftType := chi.URLParam(r, "aircraftType")
	wb, err := h.storage.GetWeightBalance(aircraftType)
	if err != nil {
		h.writeStorageError(w, err, "Weight balance")
		return
	}
	WriteJSON(w, http.StatusOK, wb)
}

// CreateWeightBalance stores loading limits for an aircraft type
func (h *Handler) CreateWeightBalance(w http.ResponseWriter, r *http.Request) {
	var wb companion.WeightBalance
	if err := decodeBody(r, &wb); err != nil {
		http.Error(w, "Invalid weight balance data", http.StatusBadRequest)
		return
	}
	created, err := h.storage.CreateWeightBalance(&wb)
	if err != nil {
		h.writeStorageError(w, err, "Weight balance")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}
