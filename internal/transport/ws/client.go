package ws

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
)

// ClientConn is the client side of a chat WebSocket. It behaves like a
// stream socket: Read drains frames into the caller's buffer and Write
// sends one text frame per call.
type ClientConn struct {
	stream        *stream
	readBuffer    []byte
	readBufferPos int
	mu            sync.Mutex
}

// Dial connects to a ws:// URL.
func Dial(ctx context.Context, url string) (*ClientConn, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	// br holds frames the server sent right behind the handshake response.
	var reader io.Reader = conn
	if br != nil {
		reader = br
	}
	return &ClientConn{stream: newStream(conn, reader, ws.StateClientSide)}, nil
}

// NewClientConn wraps an already upgraded client connection.
func NewClientConn(conn net.Conn) *ClientConn {
	return &ClientConn{stream: newStream(conn, nil, ws.StateClientSide)}
}

func (wc *ClientConn) Read(buf []byte) (int, error) {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if wc.readBufferPos < len(wc.readBuffer) {
		n := copy(buf, wc.readBuffer[wc.readBufferPos:])
		wc.readBufferPos += n
		if wc.readBufferPos >= len(wc.readBuffer) {
			wc.readBuffer = nil
			wc.readBufferPos = 0
		}
		return n, nil
	}

	var data []byte
	for len(data) == 0 {
		msg, err := wc.stream.readMessage()
		if err != nil {
			return 0, err
		}
		data = msg
	}

	n := copy(buf, data)
	if n < len(data) {
		wc.readBuffer = data
		wc.readBufferPos = n
	}
	return n, nil
}

func (wc *ClientConn) Write(data []byte) (int, error) {
	if err := wc.stream.writeText(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (wc *ClientConn) Close() error {
	return wc.stream.close()
}

func (wc *ClientConn) RemoteAddr() net.Addr {
	return wc.stream.conn.RemoteAddr()
}
