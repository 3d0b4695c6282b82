package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/omochice/tcptalk/pkg/protocol"
)

// DefaultTickInterval drives cursor blinking.
const DefaultTickInterval = 500 * time.Millisecond

// Ticker emits a TickEvent every interval until ctx is done.
func Ticker(interval time.Duration) Producer {
	return func(ctx context.Context, emit func(Event)) error {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-t.C:
				emit(TickEvent{At: now})
			}
		}
	}
}

// NetworkReader emits every non-empty read from r as a ServerTextEvent.
// When the server goes away it emits one ServerClosedEvent and returns.
// Closing r is the way to stop it; a read failing after ctx is done is
// not reported.
func NetworkReader(r io.Reader, bufSize int) Producer {
	if bufSize <= 0 {
		bufSize = protocol.ReadBufferSize
	}
	return func(ctx context.Context, emit func(Event)) error {
		buf := make([]byte, bufSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				emit(ServerTextEvent{Text: strings.ToValidUTF8(string(buf[:n]), "\uFFFD")})
				if err == nil {
					continue
				}
			}
			if ctx.Err() != nil {
				return nil
			}

			if err == nil || errors.Is(err, io.EOF) {
				emit(ServerClosedEvent{Notice: "Server disconnected"})
			} else {
				emit(ServerClosedEvent{Notice: "Connection error: " + err.Error(), Err: err})
			}
			return nil
		}
	}
}
