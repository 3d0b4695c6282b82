package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omochice/tcptalk/pkg/protocol"
)

// State is the lifecycle stage of one connection.
type State int

const (
	StateConnecting State = iota
	StateHandshaking
	StateActive
	StateClosing
	StateClosed
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handler runs the per-connection control loop against a shared Registry.
type Handler struct {
	registry *Registry
	logger   *zap.Logger
}

// NewHandler creates a Handler that admits sessions into registry.
func NewHandler(registry *Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// Registry returns the registry the handler admits into.
func (h *Handler) Registry() *Registry {
	return h.registry
}

// Serve negotiates a username, relays every chunk the peer sends to all
// other sessions and announces the departure once the peer goes away.
// It closes conn before returning. A clean disconnect returns nil.
func (h *Handler) Serve(ctx context.Context, conn Conn) error {
	defer conn.Close()

	id := uuid.NewString()
	log := h.logger.With(zap.String("conn", id), zap.String("remote", conn.RemoteAddr()))
	state := StateConnecting
	transition := func(next State) {
		log.Debug("Connection state changed", zap.Stringer("from", state), zap.Stringer("to", next))
		state = next
	}

	transition(StateHandshaking)
	username, err := Handshake(ctx, conn, func(name string) error {
		return h.registry.Admit(&Session{ID: id, Username: name, Conn: conn})
	})
	if err != nil {
		transition(StateClosed)
		return fmt.Errorf("handshake failed: %w", err)
	}

	transition(StateActive)
	log = log.With(zap.String("username", username))
	log.Info("User connected", zap.Int("total", h.registry.Len()))
	h.registry.Broadcast(ctx, protocol.JoinNotice(username), id, true)

	var readErr error
	for {
		chunk, err := conn.Read(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = fmt.Errorf("failed to read from %s: %w", username, err)
			}
			break
		}
		if len(chunk) == 0 {
			break
		}

		line := protocol.ChatLine(username, chunk)
		log.Debug("Relaying message", zap.ByteString("line", line))
		h.registry.Broadcast(ctx, line, id, false)
	}

	transition(StateClosing)
	h.registry.Broadcast(ctx, protocol.LeaveNotice(username), id, false)
	h.registry.Remove(id)
	log.Info("User disconnected", zap.Int("total", h.registry.Len()))
	transition(StateClosed)

	return readErr
}
