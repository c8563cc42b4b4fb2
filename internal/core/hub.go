package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/palchat-server/internal/utils"
)

const (
	defaultSessionBuffer = 64
	inboxSize            = 256
)

type requestKind int

const (
	requestRegister requestKind = iota
	requestCommand
	requestUnregister
)

type request struct {
	kind    requestKind
	session *Session
	cmd     Command
}

// Hub serializes every connection event through one goroutine, applies it to
// the Model and pushes the resulting broadcast to the sessions it names.
type Hub struct {
	model    *Model
	inbox    chan request
	done     chan struct{}
	sessions map[int64]*Session

	ids      utils.Sequence
	buffer   int
	log      *zerolog.Logger
	recorder Recorder
	observer Observer
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithRecorder attaches an audit recorder.
func WithRecorder(r Recorder) Option {
	return func(h *Hub) { h.recorder = r }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(h *Hub) { h.observer = o }
}

// WithSessionBuffer sets the per-session event queue size.
func WithSessionBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// NewHub creates a hub around model. A nil model gets a fresh one.
func NewHub(model *Model, opts ...Option) *Hub {
	if model == nil {
		model = NewModel()
	}
	nop := zerolog.Nop()
	h := &Hub{
		model:    model,
		inbox:    make(chan request, inboxSize),
		done:     make(chan struct{}),
		sessions: make(map[int64]*Session),
		buffer:   defaultSessionBuffer,
		log:      &nop,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Model returns the state machine behind the hub.
func (h *Hub) Model() *Model {
	return h.model
}

// NewSession allocates a session with a fresh id and connection key.
func (h *Hub) NewSession() *Session {
	return NewSession(h.ids.Next(), utils.NewID(), h.buffer)
}

// Run processes requests until ctx is cancelled. All open session queues are
// closed on return.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case req := <-h.inbox:
			h.handle(req)
		}
	}
}

// Register connects a session. Its Connected broadcast is the first event on
// the session queue.
func (h *Hub) Register(ctx context.Context, s *Session) error {
	return h.enqueue(ctx, request{kind: requestRegister, session: s})
}

// Submit queues a command from s. The sender id is taken from the session.
func (h *Hub) Submit(ctx context.Context, s *Session, cmd Command) error {
	cmd.SenderID = s.ID
	return h.enqueue(ctx, request{kind: requestCommand, session: s, cmd: cmd})
}

// Unregister disconnects a session. It is not tied to a request context
// because it usually runs after the connection context is gone.
func (h *Hub) Unregister(s *Session) error {
	if h.closed() {
		return ErrHubClosed
	}
	select {
	case h.inbox <- request{kind: requestUnregister, session: s}:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) enqueue(ctx context.Context, req request) error {
	if h.closed() {
		return ErrHubClosed
	}
	select {
	case h.inbox <- req:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Hub) handle(req request) {
	s := req.session
	if s == nil {
		h.log.Warn().Msg("received request without session; skipping")
		return
	}

	switch req.kind {
	case requestRegister:
		h.handleRegister(s)
	case requestCommand:
		h.handleCommand(s, req.cmd)
	case requestUnregister:
		h.handleUnregister(s)
	}
	h.observeState()
}

func (h *Hub) handleRegister(s *Session) {
	if _, exists := h.sessions[s.ID]; exists {
		h.log.Warn().Int64("client_id", s.ID).Msg("session already registered")
		return
	}
	b, err := h.model.Connect(s.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("client_id", s.ID).Msg("connect failed")
		close(s.Events)
		return
	}
	h.sessions[s.ID] = s
	h.log.Info().
		Int64("client_id", s.ID).
		Str("conn_key", s.Key).
		Str("nickname", b.Nickname).
		Int("clients", len(h.sessions)).
		Msg("client connected")

	h.publish(s, &b)
	h.deliver(s, &b)
}

func (h *Hub) handleCommand(s *Session, cmd Command) {
	if _, ok := h.sessions[s.ID]; !ok {
		h.log.Warn().Int64("client_id", s.ID).Str("command", cmd.Kind.String()).Msg("command from unregistered session dropped")
		return
	}
	b, err := h.model.Handle(cmd)
	if err != nil {
		h.log.Error().Err(err).Int64("client_id", s.ID).Msg("command rejected")
		return
	}
	h.log.Debug().
		Int64("client_id", s.ID).
		Str("command", cmd.Kind.String()).
		Str("result", b.Kind.String()).
		Str("code", string(b.Code())).
		Msg("command handled")

	h.publish(s, &b)
	if b.Kind == BroadcastError {
		h.deliver(s, &b)
		return
	}
	h.fanout(&b)
}

func (h *Hub) handleUnregister(s *Session) {
	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	b, err := h.model.Disconnect(s.ID)
	delete(h.sessions, s.ID)
	close(s.Events)
	if err != nil {
		h.log.Error().Err(err).Int64("client_id", s.ID).Msg("disconnect failed")
		return
	}
	h.log.Info().
		Int64("client_id", s.ID).
		Str("conn_key", s.Key).
		Str("nickname", b.Nickname).
		Int("clients", len(h.sessions)).
		Msg("client disconnected")

	h.publish(s, &b)
	h.fanout(&b)
}

func (h *Hub) fanout(b *Broadcast) {
	for _, id := range b.recipientIDs {
		if s, ok := h.sessions[id]; ok {
			h.deliver(s, b)
		}
	}
}

func (h *Hub) deliver(s *Session, b *Broadcast) {
	select {
	case s.Events <- b:
	default:
		h.log.Warn().Int64("client_id", s.ID).Str("event", b.Kind.String()).Msg("session queue full, event dropped")
		if h.observer != nil {
			h.observer.EventDropped()
		}
	}
}

func (h *Hub) publish(s *Session, b *Broadcast) {
	if h.observer != nil {
		h.observer.BroadcastProduced(b)
	}
	if h.recorder != nil {
		h.recorder.Record(s.Key, b)
	}
}

func (h *Hub) observeState() {
	if h.observer != nil {
		h.observer.StateChanged(h.model.Stats(), len(h.sessions))
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	h.log.Info().Int("clients", len(h.sessions)).Msg("closing client sessions")
	closed := make(map[int64]struct{}, len(h.sessions))
	for id, s := range h.sessions {
		close(s.Events)
		closed[id] = struct{}{}
		delete(h.sessions, id)
	}

	// Sessions still waiting to register never reached the map above.
	pending := 0
	for {
		select {
		case req := <-h.inbox:
			if req.kind != requestRegister || req.session == nil {
				continue
			}
			if _, done := closed[req.session.ID]; done {
				continue
			}
			close(req.session.Events)
			closed[req.session.ID] = struct{}{}
			pending++
		default:
			if pending > 0 {
				h.log.Info().Int("sessions", pending).Msg("closed sessions pending registration")
			}
			return
		}
	}
}
