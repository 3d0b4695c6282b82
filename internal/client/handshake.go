package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/omochice/tcptalk/pkg/protocol"
)

// Joiner performs the client side of the username handshake. After a
// rejection the same Joiner can offer another name on the same connection.
type Joiner struct {
	conn    io.ReadWriter
	buf     []byte
	pending string
}

// NewJoiner creates a Joiner over conn.
func NewJoiner(conn io.ReadWriter) *Joiner {
	return &Joiner{
		conn: conn,
		buf:  make([]byte, protocol.ReadBufferSize),
	}
}

// Join waits for the prompt, offers username and waits for the verdict.
// On success it returns, in arrival order, any server text that came just
// before the join notice, the notice itself and any text right behind it.
// A rejection wraps ErrUsernameRejected.
func (j *Joiner) Join(username string) ([]string, error) {
	username = strings.TrimSpace(username)

	if err := j.readUntil(func(s string) bool { return strings.Contains(s, protocol.Prompt) }); err != nil {
		return nil, fmt.Errorf("failed to read prompt: %w", err)
	}
	_, j.pending, _ = strings.Cut(j.pending, protocol.Prompt)

	if _, err := j.conn.Write([]byte(username + "\n")); err != nil {
		return nil, fmt.Errorf("failed to send username: %w", err)
	}

	notice := string(protocol.JoinNotice(username))
	err := j.readUntil(func(s string) bool {
		_, rejected := protocol.FindRejection(s)
		return rejected || strings.Contains(s, notice)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read handshake reply: %w", err)
	}

	if before, rest, ok := strings.Cut(j.pending, notice); ok {
		j.pending = ""
		var received []string
		if before != "" {
			received = append(received, before)
		}
		received = append(received, notice)
		if rest != "" {
			received = append(received, rest)
		}
		return received, nil
	}

	reason, _ := protocol.FindRejection(j.pending)
	_, j.pending, _ = strings.Cut(j.pending, reason+"\n")
	return nil, fmt.Errorf("%w: %s", ErrUsernameRejected, reason)
}

func (j *Joiner) readUntil(done func(string) bool) error {
	for !done(j.pending) {
		n, err := j.conn.Read(j.buf)
		j.pending += string(j.buf[:n])
		if err != nil {
			if done(j.pending) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Join runs a single handshake attempt on conn.
func Join(conn io.ReadWriter, username string) ([]string, error) {
	return NewJoiner(conn).Join(username)
}
