package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server  ServerConfig  `toml:"server"`  // HTTP server settings
	Traffic TrafficConfig `toml:"traffic"` // Live traffic feed settings
	Logging LoggingConfig `toml:"logging"` // Application logging settings
	Storage StorageConfig `toml:"storage"` // Companion data persistence settings
	TTS     TTSConfig     `toml:"tts"`     // Text-to-speech service settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // Primary HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	AdditionalPorts    []int    `toml:"additional_ports"`      // Additional HTTP ports to listen on (useful for multiple interfaces)
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory to serve the browser client from (empty = disabled)
}

// TrafficConfig contains live traffic feed configuration
type TrafficConfig struct {
	// FeedURL is the upstream WebSocket endpoint providing live aircraft,
	// flight plan, and controller data.
	FeedURL string `toml:"feed_url"`

	ReconnectDelaySecs   int `toml:"reconnect_delay_seconds"`   // Delay before reconnecting after the feed connection closes (default: 5)
	DialRetryDelaySecs   int `toml:"dial_retry_delay_seconds"`  // Delay before retrying after a failed connection attempt (default: 10)
	HandshakeTimeoutSecs int `toml:"handshake_timeout_seconds"` // WebSocket handshake timeout (default: 10)
	SubscriberBufferSize int `toml:"subscriber_buffer_size"`    // Per-subscriber outbound message buffer (default: 256)

	// EvictionGraceTicks controls how many consecutive snapshot batches an
	// aircraft may be absent from before it is dropped from the roster.
	// 1 means the roster exactly tracks each batch; higher values tolerate
	// partial batches from the feed without flicker. (default: 1)
	EvictionGraceTicks int `toml:"eviction_grace_ticks"`

	// CorrectedPhaseRules selects the trend-aware flight phase ruleset that
	// can actually produce descent and landing phases. When false (the
	// default) the legacy ruleset is used as-is.
	CorrectedPhaseRules bool `toml:"corrected_phase_rules"`
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains companion data persistence configuration
type StorageConfig struct {
	// SQLitePath is the SQLite database path for companion data
	// (announcements, checklists, notes, flight status, weight & balance).
	// The default ":memory:" keeps everything process-local.
	SQLitePath string `toml:"sqlite_path"`
}

// TTSConfig contains text-to-speech service configuration
type TTSConfig struct {
	APIKey         string `toml:"api_key"`         // ElevenLabs API key (empty = TTS routes disabled)
	BaseURL        string `toml:"base_url"`        // Base URL for the ElevenLabs API
	TimeoutSeconds int    `toml:"timeout_seconds"` // HTTP timeout for TTS requests in seconds
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate validates the configuration and applies defaults
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	portsSeen := make(map[int]bool)
	portsSeen[c.Server.Port] = true
	for _, p := range c.Server.AdditionalPorts {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("invalid additional server port: %d", p)
		}
		if portsSeen[p] {
			return fmt.Errorf("duplicate port configured: %d (primary or additional)", p)
		}
		portsSeen[p] = true
	}

	if c.Server.StaticFilesDir != "" {
		if _, err := os.Stat(c.Server.StaticFilesDir); os.IsNotExist(err) {
			return fmt.Errorf("static files directory does not exist: %s", c.Server.StaticFilesDir)
		}
	}

	// Validate traffic config
	if err := c.ValidateTraffic(); err != nil {
		return err
	}

	// Validate logging config
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid log level
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	switch c.Logging.Format {
	case "json", "console":
		// Valid log format
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Validate storage config
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = ":memory:"
	}

	// Validate TTS config
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = "https://api.elevenlabs.io"
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = 30
	}
	if c.TTS.APIKey == "" {
		fmt.Printf("WARN: No ElevenLabs API key provided - TTS features will be disabled\n")
	}

	return nil
}

// ValidateTraffic validates the traffic feed configuration and applies defaults
func (c *Config) ValidateTraffic() error {
	if c.Traffic.FeedURL == "" {
		return fmt.Errorf("traffic feed_url is required")
	}
	u, err := url.Parse(c.Traffic.FeedURL)
	if err != nil {
		return fmt.Errorf("invalid traffic feed_url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("traffic feed_url must use ws or wss scheme, got: %s", u.Scheme)
	}

	if c.Traffic.ReconnectDelaySecs < 0 {
		return fmt.Errorf("invalid reconnect_delay_seconds: %d", c.Traffic.ReconnectDelaySecs)
	}
	if c.Traffic.ReconnectDelaySecs == 0 {
		c.Traffic.ReconnectDelaySecs = 5
	}

	if c.Traffic.DialRetryDelaySecs < 0 {
		return fmt.Errorf("invalid dial_retry_delay_seconds: %d", c.Traffic.DialRetryDelaySecs)
	}
	if c.Traffic.DialRetryDelaySecs == 0 {
		c.Traffic.DialRetryDelaySecs = 10
	}

	if c.Traffic.HandshakeTimeoutSecs == 0 {
		c.Traffic.HandshakeTimeoutSecs = 10
	}

	if c.Traffic.SubscriberBufferSize == 0 {
		c.Traffic.SubscriberBufferSize = 256
	}

	if c.Traffic.EvictionGraceTicks < 0 {
		return fmt.Errorf("invalid eviction_grace_ticks: %d (must be >= 1)", c.Traffic.EvictionGraceTicks)
	}
	if c.Traffic.EvictionGraceTicks == 0 {
		c.Traffic.EvictionGraceTicks = 1
	}

	return nil
}
