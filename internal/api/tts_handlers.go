package api

import (
	"net/http"
	"strconv"

	"github.com/skyharbor/flightdeck/internal/tts"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

// GetVoices lists the available TTS voices
func (h *Handler) GetVoices(w http.ResponseWriter, r *http.Request) {
	if !h.ttsClient.Enabled() {
		http.Error(w, "TTS not configured", http.StatusServiceUnavailable)
		return
	}

	voices, err := h.ttsClient.Voices(r.Context())
	if err != nil {
		h.logger.Error("Failed to fetch TTS voices", logger.Error(err))
		http.Error(w, "Failed to fetch voices", http.StatusBadGateway)
		return
	}
	WriteJSON(w, http.StatusOK, voices)
}

// GenerateSpeech renders announcement text to MP3 audio
func (h *Handler) GenerateSpeech(w http.ResponseWriter, r *http.Request) {
	if !h.ttsClient.Enabled() {
		http.Error(w, "TTS not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Text          string             `json:"text"`
		VoiceID       string             `json:"voice_id"`
		VoiceSettings *tts.VoiceSettings `json:"voice_settings,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" || req.VoiceID == "" {
		http.Error(w, "text and voice_id are required", http.StatusBadRequest)
		return
	}

	settings := tts.DefaultVoiceSettings()
	if req.VoiceSettings != nil {
		settings = *req.VoiceSettings
	}

	audio, err := h.ttsClient.Synthesize(r.Context(), req.Text, req.VoiceID, settings)
	if err != nil {
		h.logger.Error("Failed to synthesize speech", logger.Error(err))
		http.Error(w, "Failed to generate speech", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}
