package traffic

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skyharbor/flightdeck/internal/config"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

// ConnState is the upstream connection lifecycle state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// FrameHandler consumes raw feed frames in arrival order. HandleFrame is
// called from the single reader goroutine, so handlers see frames in the
// order the feed sent them.
type FrameHandler interface {
	HandleFrame(data []byte)
}

// ConnListener receives connection lifecycle notifications.
type ConnListener interface {
	FeedConnected()
	FeedDisconnected(err error)
}

// Client maintains the WebSocket connection to the traffic feed. A
// dropped connection schedules a reconnect after the configured delay,
// a failed dial after the (longer) dial retry delay, indefinitely until
// Disconnect is called.
type Client struct {
	url            string
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	dialRetryDelay time.Duration
	handler        FrameHandler
	listener       ConnListener
	logger         *logger.Logger

	mu             sync.Mutex
	conn           *websocket.Conn
	state          ConnState
	closed         bool
	reconnectTimer *time.Timer
	wg             sync.WaitGroup
}

// NewClient creates a feed client. handler and listener must be non-nil.
func NewClient(cfg config.TrafficConfig, handler FrameHandler, listener ConnListener, log *logger.Logger) *Client {
	return &Client{
		url: cfg.FeedURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: time.Duration(cfg.HandshakeTimeoutSecs) * time.Second,
		},
		reconnectDelay: time.Duration(cfg.ReconnectDelaySecs) * time.Second,
		dialRetryDelay: time.Duration(cfg.DialRetryDelaySecs) * time.Second,
		handler:        handler,
		listener:       listener,
		logger:         log.Named("feed-client"),
	}
}

// Connect starts the connection loop. It returns immediately; dialing
// and reading happen on a background goroutine.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.closed || c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run()
}

func (c *Client) run() {
	defer c.wg.Done()

	c.logger.Info("Connecting to traffic feed", logger.String("url", c.url))
	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		c.logger.Error("Failed to dial traffic feed",
			logger.Error(err),
			logger.Duration("retry_in", c.dialRetryDelay))
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		c.listener.FeedDisconnected(err)
		c.scheduleReconnect(c.dialRetryDelay)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.Info("Connected to traffic feed", logger.String("url", c.url))
	c.listener.FeedConnected()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.conn = nil
			c.state = StateDisconnected
			closed := c.closed
			c.mu.Unlock()
			conn.Close()

			if closed {
				return
			}
			c.logger.Warn("Traffic feed connection lost",
				logger.Error(err),
				logger.Duration("reconnect_in", c.reconnectDelay))
			c.listener.FeedDisconnected(err)
			c.scheduleReconnect(c.reconnectDelay)
			return
		}
		c.handler.HandleFrame(data)
	}
}

func (c *Client) scheduleReconnect(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.closed || c.state != StateDisconnected {
			c.mu.Unlock()
			return
		}
		// The Add must happen under the same lock as the closed check,
		// or a concurrent Disconnect can return from wg.Wait first.
		c.state = StateConnecting
		c.wg.Add(1)
		c.mu.Unlock()
		go c.run()
	})
}

// IsConnected reports whether a feed connection is currently established.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateConnected
}

// State returns the current lifecycle state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Disconnect closes any open connection, cancels any pending reconnect,
// and waits for the reader goroutine to exit. The client cannot be
// reused afterwards.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()
	c.logger.Info("Traffic feed client stopped")
}
