package ws

import (
	"context"
	"net"

	"github.com/gobwas/ws"

	"github.com/omochice/tcptalk/pkg/protocol"
)

// Conn adapts a server-side WebSocket to chat.Conn interface.
// Each text frame is delivered as one or more chunks of at most bufSize bytes.
type Conn struct {
	stream  *stream
	bufSize int
	pending []byte
}

// Upgrade performs the server side of the WebSocket handshake on conn.
func Upgrade(conn net.Conn, bufSize int) (*Conn, error) {
	if _, err := ws.Upgrade(conn); err != nil {
		return nil, err
	}
	return NewConn(conn, bufSize), nil
}

// NewConn wraps an already upgraded connection.
func NewConn(conn net.Conn, bufSize int) *Conn {
	if bufSize <= 0 {
		bufSize = protocol.ReadBufferSize
	}
	return &Conn{
		stream:  newStream(conn, nil, ws.StateServerSide),
		bufSize: bufSize,
	}
}

// Read implements chat.Conn.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	for len(c.pending) == 0 {
		data, err := c.stream.readMessage()
		if err != nil {
			return nil, err
		}
		c.pending = data
	}

	n := min(len(c.pending), c.bufSize)
	chunk := c.pending[:n]
	c.pending = c.pending[n:]
	return chunk, nil
}

// Write implements chat.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	return c.stream.writeText(data)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.stream.close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.stream.conn.RemoteAddr().String()
}
