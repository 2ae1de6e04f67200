package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/quic-go/quic-go"

	"github.com/tankwars/server/internal/protocol"
)

// writeTimeout bounds how long opening a push stream may block a slow
// client before the send is abandoned.
const writeTimeout = 5 * time.Second

// State is the session state machine spec.md §4.B describes:
// Opened -> Authenticated -> [Enrolled | InBattle | Idle] -> Closed.
// Enrolled/InBattle are virtual states the matchmaker/battle engine track
// by player id; the session itself only ever holds Opened, Authenticated
// or Closed.
type State int32

const (
	StateOpened State = iota
	StateAuthenticated
	StateClosed
)

// SessionHandle is the capability a collaborator (the dispatcher, the
// battle engine) needs from a live session: read/bind its player id and
// push messages back to the client. *Session satisfies it; handlers take
// this interface rather than *Session so they can be exercised against a
// fake in tests without a real quic.Connection.
type SessionHandle interface {
	PlayerID() int64
	Bind(playerID int64)
	SendStream(msg protocol.Message) error
	SendDatagram(msg protocol.Message) error
}

// RequestHandler decodes and answers one bidirectional "requests" stream
// message. Implemented by dispatcher.Dispatcher; kept as a narrow interface
// here so transport never imports dispatcher's store/matchmaker/battle
// dependencies directly (the teacher's callback-injection idiom, reused
// from matchmaker.BattleEngine/battle.Session).
type RequestHandler interface {
	HandleRequest(ctx context.Context, sess SessionHandle, msg protocol.Message) (protocol.Message, bool)
}

// EventHandler handles one unidirectional "events"/fire-and-forget stream
// message (JoinMatchMakerRequest, LeaveMatchMakerRequest, Shoot,
// GetChestRequest) and one unreliable datagram (PlayerPosition).
type EventHandler interface {
	HandleEvent(ctx context.Context, sess SessionHandle, msg protocol.Message)
	HandleDatagram(ctx context.Context, sess SessionHandle, msg protocol.Message)
}

// OnClose is notified once, when a session tears down, so the matchmaker
// can be told to drop the player (spec.md §4.B: "on terminal transport
// error or clean close... if player_id != 0, a RemovePlayer(player_id)
// command is sent to the matchmaker").
type OnClose func(playerID int64)

// Session is one accepted QUIC connection's state, grounded on the
// teacher's internal/gameserver/client.go GameClient: atomic hot-path
// state, a mutex guarding the rare mutable fields, and a sync.Once close.
// Unlike GameClient's single sendCh writePump, pushes here are independent
// ephemeral streams (one message per stream, per spec.md §4.B), so no
// write queue is needed — every Send* call opens its own stream.
type Session struct {
	connID  uint64
	traceID string
	conn    quic.Connection

	state    atomic.Int32
	playerID atomic.Int64

	mu sync.Mutex

	requests RequestHandler
	events   EventHandler
	onClose  OnClose

	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewSession wraps an accepted connection. connID is assigned by the
// endpoint (a process-wide counter, used as the SessionMap shard key);
// traceID is a process-wide-unique log correlation id, since connID resets
// across restarts and isn't safe to correlate against long-lived external
// logs. requests/events dispatch decoded messages; onClose notifies the
// matchmaker on teardown.
func NewSession(connID uint64, conn quic.Connection, requests RequestHandler, events EventHandler, onClose OnClose) *Session {
	s := &Session{
		connID:   connID,
		traceID:  uuid.NewString(),
		conn:     conn,
		requests: requests,
		events:   events,
		onClose:  onClose,
		closeCh:  make(chan struct{}),
	}
	s.state.Store(int32(StateOpened))
	return s
}

// TraceID returns the session's log correlation id.
func (s *Session) TraceID() string { return s.traceID }

// ConnID returns the connection id this session is keyed by in SessionMap.
func (s *Session) ConnID() uint64 { return s.connID }

// PlayerID returns the bound player id, or 0 if not yet authenticated.
// Satisfies battle.Session and dispatcher.Session.
func (s *Session) PlayerID() int64 { return s.playerID.Load() }

// Bind sets the session's player id and advances it to Authenticated,
// per spec.md §4.B ("sign-in mutates the record to set player_id").
func (s *Session) Bind(playerID int64) {
	s.playerID.Store(playerID)
	s.state.Store(int32(StateAuthenticated))
}

// State returns the session's current state.
func (s *Session) State() State { return State(s.state.Load()) }

// SendStream pushes msg over a fresh unidirectional reliable stream.
// Satisfies battle.Session and dispatcher.Session.
func (s *Session) SendStream(msg protocol.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	stream, err := s.conn.OpenUniStreamSync(ctx)
	if err != nil {
		return fmt.Errorf("opening uni stream: %w", err)
	}
	defer stream.Close()

	if err := protocol.WriteFrame(stream, protocol.Encode(msg)); err != nil {
		return fmt.Errorf("writing event frame: %w", err)
	}
	return nil
}

// SendDatagram pushes msg as an unreliable datagram. Satisfies
// battle.Session. Failure is non-fatal per spec.md §4.F.4: the caller
// marks the combatant disconnected and the match continues.
func (s *Session) SendDatagram(msg protocol.Message) error {
	return s.conn.SendDatagram(protocol.Encode(msg))
}

// Close tears the session down exactly once: closes the underlying
// connection and notifies the matchmaker if the player had bound an id.
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.closeCh)
		if s.conn != nil {
			_ = s.conn.CloseWithError(0, reason)
		}
		if pid := s.playerID.Load(); pid != 0 && s.onClose != nil {
			s.onClose(pid)
		}
	})
}

// Run services the connection's three stream classes concurrently until
// it closes, per spec.md §5 item 1: "each session loop consumes its three
// stream classes via a prioritized select: bidi > uni > datagram." Each
// class's blocking Accept/Receive call runs on its own goroutine feeding a
// channel; the main loop below drains bidi non-blockingly first, then
// blocks across all three so bidi traffic is never starved by a burst of
// uni/datagram traffic.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.Close("session loop exited")

	bidiCh := make(chan quic.Stream, 8)
	uniCh := make(chan quic.ReceiveStream, 8)
	dgCh := make(chan []byte, 64)

	go s.acceptBidiLoop(ctx, bidiCh)
	go s.acceptUniLoop(ctx, uniCh)
	go s.receiveDatagramLoop(ctx, dgCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closeCh:
			return
		default:
		}

		select {
		case stream := <-bidiCh:
			go s.handleBidi(ctx, stream)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-s.closeCh:
			return
		case stream := <-bidiCh:
			go s.handleBidi(ctx, stream)
		case stream := <-uniCh:
			go s.handleUni(ctx, stream)
		case payload := <-dgCh:
			s.handleDatagram(ctx, payload)
		}
	}
}

func (s *Session) acceptBidiLoop(ctx context.Context, out chan<- quic.Stream) {
	for {
		stream, err := s.conn.AcceptStream(ctx)
		if err != nil {
			s.Close(fmt.Sprintf("bidi accept: %v", err))
			return
		}
		select {
		case out <- stream:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) acceptUniLoop(ctx context.Context, out chan<- quic.ReceiveStream) {
	for {
		stream, err := s.conn.AcceptUniStream(ctx)
		if err != nil {
			s.Close(fmt.Sprintf("uni accept: %v", err))
			return
		}
		select {
		case out <- stream:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) receiveDatagramLoop(ctx context.Context, out chan<- []byte) {
	for {
		payload, err := s.conn.ReceiveDatagram(ctx)
		if err != nil {
			return
		}
		select {
		case out <- payload:
		case <-ctx.Done():
			return
		}
	}
}

// handleBidi implements the request/response half of spec.md §4.C: one
// framed request in, one framed response out, then the stream closes.
func (s *Session) handleBidi(ctx context.Context, stream quic.Stream) {
	defer stream.Close()

	payload, err := protocol.ReadFrame(stream)
	if err != nil {
		slog.Warn("transport: malformed bidi frame", "conn_id", s.connID, "error", err)
		return
	}
	msg, err := protocol.Decode(payload)
	if err != nil {
		slog.Warn("transport: undecodable bidi message", "conn_id", s.connID, "error", err)
		return
	}

	if !s.authorised(msg) {
		slog.Debug("transport: dropping unauthorised request", "conn_id", s.connID, "tag", msg.Tag())
		return
	}

	resp, ok := s.requests.HandleRequest(ctx, s, msg)
	if !ok {
		return
	}
	if err := protocol.WriteFrame(stream, protocol.Encode(resp)); err != nil {
		slog.Warn("transport: failed writing bidi response", "conn_id", s.connID, "error", err)
	}
}

// handleUni implements the fire-and-forget half of spec.md §4.C.
func (s *Session) handleUni(ctx context.Context, stream quic.ReceiveStream) {
	payload, err := protocol.ReadFrame(stream)
	if err != nil {
		slog.Warn("transport: malformed uni frame", "conn_id", s.connID, "error", err)
		return
	}
	msg, err := protocol.Decode(payload)
	if err != nil {
		slog.Warn("transport: undecodable uni message", "conn_id", s.connID, "error", err)
		return
	}
	if !s.authorised(msg) {
		slog.Debug("transport: dropping unauthorised event", "conn_id", s.connID, "tag", msg.Tag())
		return
	}
	s.events.HandleEvent(ctx, s, msg)
}

func (s *Session) handleDatagram(ctx context.Context, payload []byte) {
	msg, err := protocol.Decode(payload)
	if err != nil {
		slog.Warn("transport: undecodable datagram", "conn_id", s.connID, "error", err)
		return
	}
	if s.PlayerID() == 0 {
		return
	}
	s.events.HandleDatagram(ctx, s, msg)
}

// authorised implements spec.md §4.B's "unauthorised requests... are
// logged and ignored": any request other than sign-in before player_id is
// bound.
func (s *Session) authorised(msg protocol.Message) bool {
	if msg.Tag() == protocol.TagSignInRequest {
		return true
	}
	return s.PlayerID() != 0
}
