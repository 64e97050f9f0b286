// Package tts wraps the ElevenLabs speech API used to render cabin
// announcements to audio.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skyharbor/flightdeck/internal/config"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

const defaultModelID = "eleven_monolingual_v1"

// Voice is one synthesis voice offered by the API.
type Voice struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// VoiceSettings tunes a synthesis request. Zero value means API
// defaults are applied by DefaultVoiceSettings.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the settings used when a request does
// not specify its own.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		UseSpeakerBoost: true,
	}
}

// Client calls the ElevenLabs API. A client with no API key reports
// Enabled() == false and refuses requests, so the rest of the app can
// run without TTS configured.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a TTS client from config.
func NewClient(cfg config.TTSConfig, log *logger.Logger) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: log.Named("elevenlabs"),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Voices lists the available synthesis voices.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("tts not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs API error: %d", resp.StatusCode)
	}

	var payload struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", err)
	}
	return payload.Voices, nil
}

// Synthesize renders text with the given voice and returns the audio
// bytes (MP3). Zero-value settings fall back to DefaultVoiceSettings.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string, settings VoiceSettings) ([]byte, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("tts not configured")
	}
	if text == "" || voiceID == "" {
		return nil, fmt.Errorf("text and voice_id are required")
	}
	if settings == (VoiceSettings{}) {
		settings = DefaultVoiceSettings()
	}

	body, err := json.Marshal(map[string]any{
		"text":           text,
		"model_id":       defaultModelID,
		"voice_settings": settings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Synthesizing speech",
		logger.String("voice_id", voiceID),
		logger.Int("text_length", len(text)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs API error: %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}
	return audio, nil
}
