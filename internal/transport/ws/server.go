package ws

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/omochice/tcptalk/internal/chat"
	"github.com/omochice/tcptalk/internal/transport"
)

// NewServer creates a WebSocket chat server on address. Connections are
// upgraded on their own goroutine before the handshake starts.
func NewServer(address string, bufSize int, handler *chat.Handler, logger *zap.Logger) *transport.Server {
	wrap := func(conn net.Conn) (chat.Conn, error) {
		c, err := Upgrade(conn, bufSize)
		if err != nil {
			return nil, fmt.Errorf("failed to upgrade connection: %w", err)
		}
		return c, nil
	}
	return transport.New("ws", address, wrap, handler, logger)
}
