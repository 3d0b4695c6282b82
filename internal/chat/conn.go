// Package chat provides the session registry, username handshake and
// broadcast engine shared by all server transports.
package chat

import "context"

// Conn abstracts a bidirectional connection for both TCP and WebSocket.
// This interface isolates transport details from chat logic.
type Conn interface {
	// Read returns the next chunk sent by the peer, bounded by the
	// transport's read buffer. Returns io.EOF when the peer has closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends data and flushes it to the peer.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
