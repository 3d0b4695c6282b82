// Package tcp provides TCP transport implementation for the chat server.
package tcp

import (
	"context"
	"io"
	"net"

	"github.com/omochice/tcptalk/pkg/protocol"
)

// Conn adapts net.Conn to chat.Conn interface.
type Conn struct {
	conn    net.Conn
	bufSize int
}

// NewConn wraps a net.Conn. Reads return at most bufSize bytes; a
// non-positive size falls back to protocol.ReadBufferSize.
func NewConn(conn net.Conn, bufSize int) *Conn {
	if bufSize <= 0 {
		bufSize = protocol.ReadBufferSize
	}
	return &Conn{conn: conn, bufSize: bufSize}
}

// Read implements chat.Conn.
// Reads available bytes from the TCP connection.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	buf := make([]byte, c.bufSize)
	n, err := c.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

// Write implements chat.Conn.
// net.Conn is unbuffered, so a completed Write is already flushed.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	_, err := c.conn.Write(data)
	return err
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
