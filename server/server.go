package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/optimistic"
	"github.com/vango-dev/optimistic/store"
)

// Backend performs the authoritative counter operation. It receives the
// requested delta and returns the confirmed counter value, or an error if
// the change was rejected.
type Backend func(delta int64) (int64, error)

// Config holds the server configuration.
type Config struct {
	// Address to listen on (default: ":8080").
	Address string

	// ReadTimeout is the WebSocket read deadline (default: 60s).
	ReadTimeout time.Duration

	// WriteTimeout is the WebSocket write deadline (default: 10s).
	WriteTimeout time.Duration

	// SendBuffer is the per-client outbound frame buffer. Clients that
	// fall further behind than this are disconnected (default: 16).
	SendBuffer int

	// Logger for connection and transition events (default: slog.Default()).
	Logger *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      ":8080",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   16,
		Logger:       slog.Default(),
	}
}

// clientMessage is a frame sent by a client.
type clientMessage struct {
	Type  string `json:"type"`
	Delta int64  `json:"delta,omitempty"`
}

// stateMessage is broadcast to every client after a transition.
type stateMessage struct {
	Type    string `json:"type"`
	Value   int64  `json:"value"`
	Pending bool   `json:"pending"`
}

// errorMessage is sent to a single client on a malformed frame.
type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server serves a shared optimistic counter over WebSocket.
type Server struct {
	counter *store.Store[int64]
	backend Backend

	config   *Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	httpServer *http.Server
}

// New creates a Server around the given backend, starting the counter at
// initial. Extra store options (metrics, tracing observers) are passed
// through to the underlying store.
func New(initial int64, backend Backend, config *Config, storeOpts ...store.Option) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		defaults := DefaultConfig()
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.ReadTimeout == 0 {
			config.ReadTimeout = defaults.ReadTimeout
		}
		if config.WriteTimeout == 0 {
			config.WriteTimeout = defaults.WriteTimeout
		}
		if config.SendBuffer == 0 {
			config.SendBuffer = defaults.SendBuffer
		}
		if config.Logger == nil {
			config.Logger = defaults.Logger
		}
	}

	storeOpts = append([]store.Option{store.WithLogger(config.Logger)}, storeOpts...)

	s := &Server{
		counter: store.New(initial, storeOpts...),
		backend: backend,
		config:  config,
		logger:  config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Demo server: accept any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}

	// One subscription fans transitions out to every connected client.
	s.counter.Subscribe(func(v optimistic.Value[int64]) {
		s.broadcast(stateMessage{Type: "state", Value: v.Unwrap(), Pending: v.IsPending()})
	})

	return s
}

// Counter returns the underlying store, mainly for tests and embedding.
func (s *Server) Counter() *store.Store[int64] {
	return s.counter
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled
// or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// handleWebSocket upgrades the connection and runs the client loops.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, s.config.SendBuffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("client connected", "remote", conn.RemoteAddr(), "clients", n)

	// Initial state so a new client renders immediately.
	v := s.counter.Get()
	c.enqueue(mustMarshal(stateMessage{Type: "state", Value: v.Unwrap(), Pending: v.IsPending()}))

	go c.writeLoop(s.config.WriteTimeout)
	s.readLoop(c)
}

// readLoop reads client frames until the connection closes.
func (s *Server) readLoop(c *client) {
	defer s.disconnect(c)

	for {
		c.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var cm clientMessage
		if err := json.Unmarshal(msg, &cm); err != nil {
			s.logger.Error("frame decode error", "error", err)
			c.enqueue(mustMarshal(errorMessage{Type: "error", Message: "invalid frame"}))
			continue
		}

		switch cm.Type {
		case "increment":
			s.handleIncrement(cm.Delta)
		default:
			s.logger.Warn("unknown frame type", "type", cm.Type)
			c.enqueue(mustMarshal(errorMessage{Type: "error", Message: "unknown frame type"}))
		}
	}
}

// handleIncrement applies the delta optimistically, then settles it with
// the backend's outcome. The optimistic broadcast happens synchronously
// before the backend runs, so clients always see pending state first.
func (s *Server) handleIncrement(delta int64) {
	if delta == 0 {
		delta = 1
	}

	s.counter.Update(func(n int64) int64 { return n + delta })

	go func() {
		confirmed, err := s.backend(delta)
		if err != nil {
			s.logger.Warn("backend rejected increment", "delta", delta, "error", err)
		}
		s.counter.Resolve(confirmed, err)
	}()
}

// broadcast queues a state message for every connected client.
func (s *Server) broadcast(msg stateMessage) {
	data := mustMarshal(msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if !c.enqueue(data) {
			// Client is too far behind; drop it rather than block the
			// transition path.
			s.logger.Warn("dropping slow client", "remote", c.conn.RemoteAddr())
			delete(s.clients, c)
			c.close()
		}
	}
}

// disconnect removes the client and closes its connection.
func (s *Server) disconnect(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	if ok {
		s.logger.Info("client disconnected", "remote", c.conn.RemoteAddr())
	}
	c.close()
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// All message types are plain structs of scalars; this cannot fail.
		panic(err)
	}
	return data
}

// client is one WebSocket connection with a buffered outbound queue.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

// enqueue queues data for the write loop. It reports false when the
// buffer is full or the client is closed.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- data:
		return true
	default:
		return false
	}
}

// writeLoop drains the send queue onto the connection until the client
// is closed.
func (c *client) writeLoop(timeout time.Duration) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		}
	}
}

// close shuts the connection down; safe to call more than once.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
