package tcp

import (
	"net"

	"go.uber.org/zap"

	"github.com/omochice/tcptalk/internal/chat"
	"github.com/omochice/tcptalk/internal/transport"
)

// NewServer creates a raw TCP chat server on address.
func NewServer(address string, bufSize int, handler *chat.Handler, logger *zap.Logger) *transport.Server {
	wrap := func(conn net.Conn) (chat.Conn, error) {
		return NewConn(conn, bufSize), nil
	}
	return transport.New("tcp", address, wrap, handler, logger)
}
