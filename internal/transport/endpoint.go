package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/quic-go/quic-go"
)

// Endpoint is the QUIC listener of spec.md §4.A. It never retains
// per-connection state beyond spawning a Session task for each accepted
// connection — the session record itself lives in Sessions.
type Endpoint struct {
	Sessions *SessionMap

	requests RequestHandler
	events   EventHandler
	onClose  OnClose

	nextConnID atomic.Uint64
}

// NewEndpoint wires an Endpoint to the collaborators every accepted
// session needs: the request dispatcher, the event/datagram handler, and
// the matchmaker-notifying close callback.
func NewEndpoint(requests RequestHandler, events EventHandler, onClose OnClose) *Endpoint {
	return &Endpoint{
		Sessions: NewSessionMap(),
		requests: requests,
		events:   events,
		onClose:  onClose,
	}
}

// ListenAndServe binds addr (e.g. "0.0.0.0:51875"), loads/generates the
// TLS certificate cached under certCacheDir, and accepts connections until
// ctx is cancelled, spawning one session goroutine per connection.
//
// tlsKeyLogWriter, when non-nil, receives the TLS session keys in
// SSLKEYLOGFILE format; cmd/tankserver passes a file when --keylog is set.
func (e *Endpoint) ListenAndServe(ctx context.Context, addr, certCacheDir string, tlsKeyLogWriter interface {
	Write([]byte) (int, error)
}) error {
	cert, err := loadOrGenerateCert(certCacheDir)
	if err != nil {
		return fmt.Errorf("loading TLS certificate: %w", err)
	}

	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPN},
	}
	if tlsKeyLogWriter != nil {
		tlsConf.KeyLogWriter = tlsKeyLogWriter
	}

	quicConf := &quic.Config{
		EnableDatagrams: true,
	}

	listener, err := quic.ListenAddr(addr, tlsConf, quicConf)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer listener.Close()

	slog.Info("transport: listening", "addr", addr, "alpn", ALPN)

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			slog.Warn("transport: accept failed", "error", err)
			continue
		}
		go e.serve(ctx, conn)
	}
}

func (e *Endpoint) serve(ctx context.Context, conn quic.Connection) {
	connID := e.nextConnID.Add(1)
	sess := NewSession(connID, conn, e.requests, e.events, e.onClose)
	e.Sessions.Insert(sess)
	defer e.Sessions.Remove(connID)

	slog.Info("transport: session opened", "conn_id", connID, "trace_id", sess.TraceID(), "remote", conn.RemoteAddr())
	sess.Run(ctx)
	slog.Info("transport: session closed", "conn_id", connID, "trace_id", sess.TraceID())
}
