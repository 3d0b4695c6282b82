package client

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/omochice/tcptalk/internal/transport/ws"
)

// Transport names accepted by Dial.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// Connection represents a connection to the server
type Connection interface {
	// Write sends data to the server
	Write(data []byte) (int, error)

	// Read receives data from the server
	Read(buf []byte) (int, error)

	// Close closes the connection
	Close() error

	// RemoteAddr returns the server address
	RemoteAddr() net.Addr
}

// Dial connects to host:port over the named transport.
func Dial(ctx context.Context, transport, host string, port int) (Connection, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	switch transport {
	case TransportTCP, "":
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to server: %w", err)
		}
		return conn, nil
	case TransportWebSocket:
		conn, err := ws.Dial(ctx, "ws://"+addr+"/")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to server: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}
