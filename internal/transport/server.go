// Package transport runs accept loops that hand every connection to a
// chat.Handler. The tcp and ws subpackages provide the Conn adapters.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/omochice/tcptalk/internal/chat"
)

// WrapFunc adapts an accepted socket to chat.Conn. It may perform a
// protocol upgrade and runs on the connection's own goroutine.
type WrapFunc func(conn net.Conn) (chat.Conn, error)

// Server accepts connections on one address and serves each with a Handler.
type Server struct {
	name     string
	address  string
	wrap     WrapFunc
	handler  *chat.Handler
	logger   *zap.Logger
	listener net.Listener
	conns    map[net.Conn]struct{}
	mu       sync.Mutex
	quit     chan struct{}
	wg       sync.WaitGroup
}

// New creates a Server. name labels log lines ("tcp", "ws").
func New(name, address string, wrap WrapFunc, handler *chat.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		name:    name,
		address: address,
		wrap:    wrap,
		handler: handler,
		logger:  logger.With(zap.String("transport", name)),
		conns:   make(map[net.Conn]struct{}),
		quit:    make(chan struct{}),
	}
}

// Listen binds the listening socket so Addr is known before Serve runs.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start %s server: %w", s.name, err)
	}
	s.listener = listener
	s.logger.Info("Server started", zap.String("addr", listener.Addr().String()))
	return nil
}

// Serve accepts connections until Stop is called. It returns nil after Stop.
func (s *Server) Serve() error {
	if s.listener == nil {
		return fmt.Errorf("%s server is not listening", s.name)
	}

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("Failed to accept connection", zap.Error(err))
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return nil
		}
		go s.handleConnection(conn)
	}
}

// Start listens and serves.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Stop closes the listener and every live connection, then waits for their
// handlers to finish.
func (s *Server) Stop() {
	s.mu.Lock()
	select {
	case <-s.quit:
		s.mu.Unlock()
		return
	default:
	}
	close(s.quit)
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	s.logger.Info("Server stopped")
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.quit:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	log := s.logger.With(zap.String("remote", conn.RemoteAddr().String()))
	log.Debug("Connection accepted")

	c, err := s.wrap(conn)
	if err != nil {
		log.Warn("Failed to set up connection", zap.Error(err))
		conn.Close()
		return
	}

	if err := s.handler.Serve(context.Background(), c); err != nil {
		log.Warn("Client handler error", zap.Error(err))
	}
}
