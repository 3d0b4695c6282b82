// Package client implements the chat client core: the username handshake,
// the event multiplexer that merges terminal, timer and network events, and
// the ChatSession state machine that consumes them.
package client

import "errors"

// ErrUsernameRejected is wrapped by the error Join returns when the server
// refuses the offered name.
var ErrUsernameRejected = errors.New("server rejected username")

// ErrClosed is returned by Multiplexer.Next once the multiplexer is closed
// and drained.
var ErrClosed = errors.New("multiplexer closed")
