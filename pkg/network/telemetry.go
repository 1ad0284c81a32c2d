// pkg/network/telemetry.go
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sasha-s/go-deadlock"
	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/engine"
	"github.com/opd-ai/go-rocket/pkg/entity"
	"github.com/opd-ai/go-rocket/pkg/event"
	"github.com/opd-ai/go-rocket/pkg/logging"
	"github.com/opd-ai/go-rocket/pkg/validation"
)

// SnapshotSource provides the state broadcast to spectators
type SnapshotSource interface {
	Snapshot() *engine.GameState
}

// CommandSink receives commands decoded from spectators
type CommandSink interface {
	Post(cmd engine.Command)
}

// Message is the envelope of every frame sent to a spectator
type Message struct {
	Type  string            `json:"type"`
	State *engine.GameState `json:"state,omitempty"`
	Event string            `json:"event,omitempty"`
	Score *int              `json:"score,omitempty"`
	Level string            `json:"level,omitempty"`
	Error string            `json:"error,omitempty"`
}

// Message types
const (
	MessageState = "state"
	MessageEvent = "event"
	MessageError = "error"
)

const sendBuffer = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// spectator is one websocket connection
type spectator struct {
	id      entity.ID
	name    string
	conn    *websocket.Conn
	send    chan []byte
	breaker *BreakerService
	done    chan struct{}
	closeMu deadlock.Mutex
	closed  bool
}

// TelemetryServer streams snapshots over websockets and, when enabled,
// forwards validated commands to the controller.
type TelemetryServer struct {
	source    SnapshotSource
	sink      CommandSink
	validator *validation.MessageValidator
	cfg       *config.EnvironmentConfig
	logger    *logging.Logger

	mu         deadlock.RWMutex
	spectators map[entity.ID]*spectator
	addr       string
	httpServer *http.Server
	subs       []*event.Subscription
	stopped    bool
	stop       chan struct{}
}

// NewTelemetryServer creates a server reading snapshots from source and
// posting commands to sink. Run events published on bus are forwarded to
// every spectator; bus may be nil.
func NewTelemetryServer(source SnapshotSource, sink CommandSink, bus *event.Bus, cfg *config.EnvironmentConfig, logger *logging.Logger) *TelemetryServer {
	s := &TelemetryServer{
		source:     source,
		sink:       sink,
		cfg:        cfg,
		logger:     logger,
		spectators: make(map[entity.ID]*spectator),
		stop:       make(chan struct{}),
	}
	if cfg.AllowCommands {
		s.validator = validation.NewMessageValidator(cfg.CommandLimit, cfg.CommandWindow)
	}
	if bus != nil {
		for _, typ := range []event.Type{event.RunStarted, event.RunStopped, event.RunContinued, event.GameOver, event.DifficultyChanged} {
			s.subs = append(s.subs, bus.Subscribe(typ, s.forwardEvent))
		}
	}
	return s
}

// Routes mounts the websocket endpoint on mux.
func (s *TelemetryServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWebSocket)
}

// Serve listens on addr and serves handler until ctx is cancelled or
// Shutdown is called. Snapshots are broadcast at the configured rate.
func (s *TelemetryServer) Serve(ctx context.Context, addr string, handler http.Handler) error {
	var listener net.Listener
	bind := NewBreakerService("telemetry-listen", s.cfg, s.logger)
	err := bind.ExecuteWithRetry(ctx, func() error {
		var err error
		listener, err = net.Listen("tcp", addr)
		return err
	})
	if err != nil {
		return logging.WrapError(err, "binding telemetry listener on %s", addr)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.cfg.WriteTimeout,
	}
	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info(ctx, "Telemetry server started", "addr", s.Addr(), "commands", s.cfg.AllowCommands)

	go s.broadcastLoop(ctx)
	go func() {
		select {
		case <-ctx.Done():
		case <-s.stop:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownWindow)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("telemetry server: %w", err)
	}
	return nil
}

// Addr returns the bound listener address, or "" when not serving
func (s *TelemetryServer) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Spectators returns the number of connected spectators
func (s *TelemetryServer) Spectators() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.spectators)
}

// OpenBreakers returns how many spectators have their send breaker open
func (s *TelemetryServer) OpenBreakers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	open := 0
	for _, sp := range s.spectators {
		if sp.breaker.GetState() == gobreaker.StateOpen {
			open++
		}
	}
	return open
}

// Shutdown disconnects every spectator and stops the HTTP server. Calls
// after the first are no-ops.
func (s *TelemetryServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.stop)
	srv := s.httpServer
	s.httpServer = nil
	s.addr = ""
	spectators := make([]*spectator, 0, len(s.spectators))
	for _, sp := range s.spectators {
		spectators = append(spectators, sp)
	}
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	for _, sp := range spectators {
		s.disconnect(sp, "server shutting down")
	}
	if s.validator != nil {
		s.validator.Close()
	}
	if srv == nil {
		return nil
	}
	s.logger.Info(ctx, "Telemetry server stopped")
	return srv.Shutdown(ctx)
}

// Broadcast sends the current snapshot to every spectator.
func (s *TelemetryServer) Broadcast() {
	data, err := json.Marshal(Message{Type: MessageState, State: s.source.Snapshot()})
	if err != nil {
		s.logger.Error(context.Background(), "Failed to encode snapshot", err)
		return
	}
	s.sendAll(data)
}

func (s *TelemetryServer) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.BroadcastRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if s.Spectators() > 0 {
				s.Broadcast()
			}
		}
	}
}

func (s *TelemetryServer) forwardEvent(e event.Event) {
	msg := Message{Type: MessageEvent, Event: string(e.GetType())}
	switch ev := e.(type) {
	case *event.GameOverEvent:
		msg.Score = &ev.FinalScore
	case *event.RunEvent:
		msg.Score = &ev.Score
	case *event.DifficultyEvent:
		msg.Level = ev.Level
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.sendAll(data)
}

// sendAll queues data for every spectator. Spectators whose buffer is full
// miss the frame.
func (s *TelemetryServer) sendAll(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sp := range s.spectators {
		sp.enqueue(data)
	}
}

func (s *TelemetryServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithRunID(r.Context(), logging.GenerateRunID())

	name := "anonymous"
	if raw := r.URL.Query().Get("name"); raw != "" {
		clean, err := validation.ValidateClientName(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name = clean
	}

	s.mu.RLock()
	full := s.stopped || len(s.spectators) >= s.cfg.MaxSpectators
	s.mu.RUnlock()
	if full {
		s.logger.Warn(ctx, "Rejecting spectator, server full", "limit", s.cfg.MaxSpectators)
		http.Error(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(ctx, "Websocket upgrade failed", "error", err)
		return
	}

	id := entity.GenerateID()
	sp := &spectator{
		id:      id,
		name:    name,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		breaker: NewBreakerService(fmt.Sprintf("spectator-%d", id), s.cfg, s.logger),
		done:    make(chan struct{}),
	}

	count, ok := s.register(sp)
	if !ok {
		s.logger.Warn(ctx, "Rejecting spectator after upgrade", "limit", s.cfg.MaxSpectators)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many spectators"), time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}

	s.logger.Info(ctx, "Spectator connected", "spectator_id", id, "name", name, "spectators", count)

	// greet with the current state so the client can draw immediately
	if data, err := json.Marshal(Message{Type: MessageState, State: s.source.Snapshot()}); err == nil {
		sp.enqueue(data)
	}

	go s.writePump(ctx, sp)
	s.readPump(ctx, sp)
}

// register adds sp unless the server stopped or is full. The early check
// in handleWebSocket runs before the upgrade, so it is repeated here under
// the write lock.
func (s *TelemetryServer) register(sp *spectator) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || len(s.spectators) >= s.cfg.MaxSpectators {
		return len(s.spectators), false
	}
	s.spectators[sp.id] = sp
	return len(s.spectators), true
}

func (s *TelemetryServer) readPump(ctx context.Context, sp *spectator) {
	defer s.disconnect(sp, "read closed")

	sp.conn.SetReadLimit(validation.MaxMessageSize + 1)
	_ = sp.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	sp.conn.SetPongHandler(func(string) error {
		return sp.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	clientID := fmt.Sprintf("%d", sp.id)
	for {
		_, data, err := sp.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug(ctx, "Spectator read failed", "spectator_id", sp.id, "error", err)
			}
			return
		}
		_ = sp.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		if s.validator == nil {
			s.reply(sp, "commands are disabled")
			continue
		}
		cmd, err := s.validator.DecodeCommand(data, clientID)
		if err != nil {
			s.logger.Debug(ctx, "Rejected command", "spectator_id", sp.id, "error", err)
			s.reply(sp, err.Error())
			continue
		}
		s.logger.Info(ctx, "Remote command", "spectator_id", sp.id, "name", sp.name, "command", cmd.Kind.String())
		s.sink.Post(cmd)
	}
}

func (s *TelemetryServer) writePump(ctx context.Context, sp *spectator) {
	ping := time.NewTicker(s.cfg.ReadTimeout / 2)
	defer ping.Stop()

	for {
		select {
		case <-sp.done:
			return
		case data := <-sp.send:
			err := sp.breaker.Execute(ctx, func() error {
				if err := sp.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
					return err
				}
				return sp.conn.WriteMessage(websocket.TextMessage, data)
			})
			if err != nil {
				s.logger.Warn(ctx, "Dropping spectator after failed write", "spectator_id", sp.id, "error", err)
				s.disconnect(sp, "write failed")
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := sp.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.disconnect(sp, "ping failed")
				return
			}
		}
	}
}

func (s *TelemetryServer) reply(sp *spectator, msg string) {
	if data, err := json.Marshal(Message{Type: MessageError, Error: msg}); err == nil {
		sp.enqueue(data)
	}
}

func (s *TelemetryServer) disconnect(sp *spectator, reason string) {
	if !sp.close() {
		return
	}

	s.mu.Lock()
	delete(s.spectators, sp.id)
	count := len(s.spectators)
	s.mu.Unlock()

	if s.validator != nil {
		s.validator.Forget(fmt.Sprintf("%d", sp.id))
	}
	s.logger.Info(context.Background(), "Spectator disconnected",
		"spectator_id", sp.id, "reason", reason, "spectators", count)
}

// enqueue drops data when the spectator is slow or gone.
func (sp *spectator) enqueue(data []byte) {
	select {
	case <-sp.done:
	case sp.send <- data:
	default:
	}
}

// close reports whether this call closed the connection.
func (sp *spectator) close() bool {
	sp.closeMu.Lock()
	defer sp.closeMu.Unlock()
	if sp.closed {
		return false
	}
	sp.closed = true
	close(sp.done)
	_ = sp.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = sp.conn.Close()
	return true
}
