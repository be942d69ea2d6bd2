// Package stream serves a running simulation to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/clothsim/internal/sim"
)

const maxCommandSize = 1024

// Config holds server settings.
type Config struct {
	FrameRate    int
	WriteTimeout time.Duration

	// SendBuffer is how many frames may queue per client before frames are dropped.
	SendBuffer int
}

// Server runs one simulation session and broadcasts its frames.
// Only the Run goroutine touches the session; clients reach it through
// the command channel.
type Server struct {
	cfg      Config
	session  *sim.Session
	log      *zap.Logger
	upgrader websocket.Upgrader
	commands chan sim.Command
	meshJSON []byte

	done     chan struct{}
	doneOnce sync.Once

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// New creates a server for session. meshName is reported to clients.
func New(session *sim.Session, meshName string, cfg Config, log *zap.Logger) (*Server, error) {
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %d", cfg.FrameRate)
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 4
	}
	if log == nil {
		log = zap.NewNop()
	}

	meshJSON, err := json.Marshal(newMeshMessage(meshName, session.Cloth()))
	if err != nil {
		return nil, fmt.Errorf("encoding mesh message: %w", err)
	}

	return &Server{
		cfg:     cfg,
		session: session,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		commands: make(chan sim.Command, 16),
		meshJSON: meshJSON,
		done:     make(chan struct{}),
		clients:  make(map[*client]struct{}),
	}, nil
}

// Handler returns the HTTP routes: /ws for the stream and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// Run steps the session at the configured frame rate until ctx is done,
// then disconnects every client. Each tick advances the cloth by exactly
// one frame interval.
func (s *Server) Run(ctx context.Context) error {
	defer s.shutdown()

	interval := time.Second / time.Duration(s.cfg.FrameRate)
	dt := float32(interval.Seconds())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("simulation loop started",
		zap.Int("frame_rate", s.cfg.FrameRate),
		zap.Stringer("state", s.session.State()),
	)

	var frame FrameMessage
	for {
		select {
		case <-ctx.Done():
			s.log.Info("simulation loop stopped", zap.Uint64("frame", s.session.Cloth().Frame()))
			return nil

		case cmd := <-s.commands:
			s.session.Queue(cmd)

		case <-ticker.C:
			stats := s.session.Update(dt)
			if stats.Rejected > 0 {
				s.log.Warn("frame had rejected vertices", zap.Int("count", stats.Rejected))
			}

			frame.fill(s.session.Cloth(), s.session.State(), stats)
			data, err := json.Marshal(&frame)
			if err != nil {
				return fmt.Errorf("encoding frame: %w", err)
			}
			s.broadcast(data)
		}
	}
}

// ListenAndServe serves Handler on addr and runs the simulation until ctx
// is done or either side fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Run(ctx)
	})
	g.Go(func() error {
		s.log.Info("stream server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, s.cfg.SendBuffer+1),
	}
	// Queued before registration so the mesh always precedes frames
	c.send <- s.meshJSON

	if !s.register(c) {
		conn.Close()
		return
	}
	log := s.log.With(zap.String("client", c.id), zap.String("remote", r.RemoteAddr))
	log.Info("client connected")

	go s.writeLoop(c, log)
	s.readLoop(c, log)

	s.unregister(c)
	log.Info("client disconnected")
}

func (s *Server) readLoop(c *client, log *zap.Logger) {
	c.conn.SetReadLimit(maxCommandSize)
	for {
		var msg CommandMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		cmd, err := sim.ParseCommand(msg.Command)
		if err != nil {
			log.Debug("rejected command", zap.String("command", msg.Command))
			if data, merr := json.Marshal(ErrorMessage{Type: TypeError, Message: err.Error()}); merr == nil {
				s.trySend(c, data)
			}
			continue
		}

		log.Debug("command received", zap.Stringer("command", cmd))
		select {
		case s.commands <- cmd:
		case <-s.done:
			return
		}
	}
}

func (s *Server) writeLoop(c *client, log *zap.Logger) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug("websocket write error", zap.Error(err))
			return
		}
	}

	// send was closed by unregister or shutdown
	deadline := time.Now().Add(s.cfg.WriteTimeout)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
}

func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	return true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// broadcast queues data for every client, dropping the frame for clients
// whose queue is full.
func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.log.Debug("dropping frame for slow client", zap.String("client", c.id))
		}
	}
}

func (s *Server) trySend(c *client, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (s *Server) shutdown() {
	s.doneOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}
