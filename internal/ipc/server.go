package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/events"
)

// Handler serves one decoded request. A nil response is treated as a
// bare success.
type Handler func(*Request) *Response

// Server accepts control connections on a unix socket. Each connection
// carries a single request/response exchange, except subscriptions,
// which stay open and stream events until either side hangs up.
type Server struct {
	socketPath string
	handler    Handler
	bus        *events.Bus
	logger     *zap.Logger

	ln      net.Listener
	wg      sync.WaitGroup
	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	started bool
}

func NewServer(socketPath string, handler Handler, bus *events.Bus, logger *zap.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		bus:        bus,
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start begins accepting connections. A stale socket file from a
// crashed run is removed first; the single-instance lock guarantees no
// live process owns it.
func (s *Server) Start() error {
	if s.started {
		return fmt.Errorf("ipc server already started")
	}
	os.Remove(s.socketPath)
	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.socketPath, err)
	}
	s.ln = ln
	s.started = true

	s.wg.Add(1)
	go s.acceptLoop()
	s.logger.Info("ipc server listening", zap.String("socket", s.socketPath))
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("ipc accept failed", zap.Error(err))
			continue
		}
		s.track(conn)
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	connID := uuid.NewString()[:8]
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var req Request
	if err := dec.Decode(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			enc.Encode(Errorf("invalid request: %v", err))
		}
		return
	}
	s.logger.Debug("ipc request",
		zap.String("conn", connID),
		zap.String("command", req.Command))

	if req.Command == CommandSubscribeEvents {
		s.streamEvents(conn, enc, connID)
		return
	}

	resp := s.handler(&req)
	if resp == nil {
		resp = Ok(nil)
	}
	if err := enc.Encode(resp); err != nil {
		s.logger.Debug("ipc response write failed",
			zap.String("conn", connID), zap.Error(err))
	}
}

func (s *Server) streamEvents(conn net.Conn, enc *json.Encoder, connID string) {
	if s.bus == nil {
		enc.Encode(Errorf("event stream not available"))
		return
	}
	id, ch := s.bus.Subscribe(64)
	defer s.bus.Unsubscribe(id)

	if err := enc.Encode(Ok(nil)); err != nil {
		return
	}
	s.logger.Debug("event subscriber attached", zap.String("conn", connID))

	// Subscribers never send anything after the subscribe request, so a
	// returning read means the connection is gone. Without this we would
	// only notice on the next event write, which may never come.
	hangup := make(chan struct{})
	go func() {
		io.Copy(io.Discard, conn)
		close(hangup)
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := enc.Encode(ev); err != nil {
				s.logger.Debug("event subscriber disconnected",
					zap.String("conn", connID))
				return
			}
		case <-hangup:
			return
		}
	}
}

// Stop closes the listener and every open connection, then waits for
// the connection goroutines to finish.
func (s *Server) Stop() {
	if !s.started {
		return
	}
	s.ln.Close()

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	os.Remove(s.socketPath)
	s.started = false
}
