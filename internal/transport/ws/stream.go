// Package ws carries the chat text protocol over WebSocket text frames
// using gobwas/ws, for both the server and the client side.
package ws

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// stream is one side of a WebSocket connection. Writes, including control
// frame replies issued while reading, are serialized frame by frame.
type stream struct {
	conn   net.Conn
	reader io.Reader
	state  ws.State
	wmu    sync.Mutex
}

func newStream(conn net.Conn, reader io.Reader, state ws.State) *stream {
	if reader == nil {
		reader = conn
	}
	return &stream{conn: conn, reader: reader, state: state}
}

// readMessage returns the payload of the next data message. A close frame
// from the peer is reported as io.EOF.
func (s *stream) readMessage() ([]byte, error) {
	control := func(h ws.Header, r io.Reader) error {
		s.wmu.Lock()
		defer s.wmu.Unlock()
		return wsutil.ControlFrameHandler(s.conn, s.state)(h, r)
	}
	// No UTF-8 check: relayed chunks can end mid-character and readers
	// repair the encoding themselves.
	rd := &wsutil.Reader{
		Source:         s.reader,
		State:          s.state,
		OnIntermediate: control,
	}

	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := control(hdr, rd); err != nil {
				var closed wsutil.ClosedError
				if errors.As(err, &closed) {
					return nil, io.EOF
				}
				return nil, err
			}
			continue
		}
		if hdr.OpCode != ws.OpText && hdr.OpCode != ws.OpBinary {
			if err := rd.Discard(); err != nil {
				return nil, err
			}
			continue
		}
		return io.ReadAll(rd)
	}
}

// writeText sends p as a single text frame.
func (s *stream) writeText(p []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.state.ClientSide() {
		return wsutil.WriteClientText(s.conn, p)
	}
	return wsutil.WriteServerText(s.conn, p)
}

// close sends a close frame and closes the socket.
func (s *stream) close() error {
	s.wmu.Lock()
	if s.state.ClientSide() {
		_ = wsutil.WriteClientMessage(s.conn, ws.OpClose, nil)
	} else {
		_ = wsutil.WriteServerMessage(s.conn, ws.OpClose, nil)
	}
	s.wmu.Unlock()
	return s.conn.Close()
}
