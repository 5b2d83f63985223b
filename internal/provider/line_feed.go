package provider

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourusername/sharpline/internal/lines"
)

// LineUpdate is one streamed line change for a game at a single book.
type LineUpdate struct {
	GameID    string    `json:"game_id"`
	Book      string    `json:"book"`
	Spread    float64   `json:"spread"`
	Total     float64   `json:"total"`
	HomeML    int       `json:"home_ml"`
	AwayML    int       `json:"away_ml"`
	Timestamp time.Time `json:"timestamp"`
}

// UpdateHandler is called for every line update received from the feed.
type UpdateHandler func(update LineUpdate) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// LineFeedClient handles the WebSocket connection to a streaming line feed.
type LineFeedClient struct {
	url             string
	conn            *websocket.Conn
	mu              sync.RWMutex
	isConnected     bool
	handlers        []UpdateHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *log.Logger
}

// NewLineFeedClient creates a new line feed client
func NewLineFeedClient(url string, logger *log.Logger) *LineFeedClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &LineFeedClient{
		url:             url,
		handlers:        make([]UpdateHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// AddHandler registers an update handler
func (c *LineFeedClient) AddHandler(handler UpdateHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Connect establishes the WebSocket connection and starts the read loop
func (c *LineFeedClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isConnected {
		return fmt.Errorf("already connected")
	}

	c.logger.Printf("Connecting to line feed: %s", c.url)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to line feed: %w", err)
	}

	c.conn = conn
	c.isConnected = true
	c.lastMessageTime = time.Now()

	c.logger.Printf("Connected to line feed successfully")

	go c.readMessages()

	return nil
}

// Run keeps the feed connected until the context is cancelled, reconnecting
// with exponential backoff when the read loop drops.
func (c *LineFeedClient) Run(ctx context.Context) error {
	backoff := c.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !c.IsConnected() {
			if err := c.Connect(ctx); err != nil {
				retries++
				if c.reconnectConfig.MaxRetries > 0 && retries > c.reconnectConfig.MaxRetries {
					return fmt.Errorf("line feed reconnect exhausted after %d attempts: %w", retries-1, err)
				}
				c.logger.Printf("Line feed reconnect %d failed: %v (retrying in %s)", retries, err, backoff)

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}

				backoff = time.Duration(float64(backoff) * c.reconnectConfig.BackoffMultiplier)
				if backoff > c.reconnectConfig.MaxBackoff {
					backoff = c.reconnectConfig.MaxBackoff
				}
				continue
			}
			retries = 0
			backoff = c.reconnectConfig.InitialBackoff
		}

		select {
		case <-ctx.Done():
			c.Close()
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// readMessages reads updates from the WebSocket connection
func (c *LineFeedClient) readMessages() {
	defer c.Close()

	for {
		var update LineUpdate
		err := c.conn.ReadJSON(&update)
		if err != nil {
			c.logger.Printf("Error reading line update: %v", err)
			c.mu.Lock()
			c.isConnected = false
			c.mu.Unlock()
			return
		}

		c.mu.Lock()
		c.lastMessageTime = time.Now()
		c.mu.Unlock()

		c.mu.RLock()
		handlers := c.handlers
		c.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(update); err != nil {
				c.logger.Printf("Handler error: %v", err)
			}
		}
	}
}

// IsConnected returns whether the feed is connected
func (c *LineFeedClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// LastMessageTime returns the time of the last received update
func (c *LineFeedClient) LastMessageTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastMessageTime
}

// Close closes the feed connection
func (c *LineFeedClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	c.isConnected = false
	return c.conn.Close()
}

// TrackerHandler adapts a lines.Tracker into an UpdateHandler so streamed
// updates land in the in-memory history alongside polled snapshots.
func TrackerHandler(tracker *lines.Tracker) UpdateHandler {
	return func(update LineUpdate) error {
		snap := lines.Snapshot{
			Timestamp: update.Timestamp,
			Spread:    update.Spread,
			Total:     update.Total,
			HomeML:    update.HomeML,
			AwayML:    update.AwayML,
		}
		if update.Book != "" {
			snap.BookSpreads = map[string]float64{update.Book: update.Spread}
		}
		tracker.Record(update.GameID, snap)
		return nil
	}
}
