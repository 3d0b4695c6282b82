package client_test

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omochice/tcptalk/internal/client"
)

func collect(t *testing.T, ctx context.Context, p client.Producer) []client.Event {
	t.Helper()
	var events []client.Event
	require.NoError(t, p(ctx, func(ev client.Event) { events = append(events, ev) }))
	return events
}

func TestNetworkReader_EOF(t *testing.T) {
	server, conn := net.Pipe()
	go func() {
		server.Write([]byte("alice: hi\n"))
		server.Write([]byte("bob has joined the chat\n"))
		server.Close()
	}()
	defer conn.Close()

	events := collect(t, context.Background(), client.NetworkReader(conn, 0))

	assert.Equal(t, []client.Event{
		client.ServerTextEvent{Text: "alice: hi\n"},
		client.ServerTextEvent{Text: "bob has joined the chat\n"},
		client.ServerClosedEvent{Notice: "Server disconnected"},
	}, events)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestNetworkReader_Error(t *testing.T) {
	boom := errors.New("connection reset by peer")

	events := collect(t, context.Background(), client.NetworkReader(failingReader{err: boom}, 0))

	require.Len(t, events, 1)
	closed, ok := events[0].(client.ServerClosedEvent)
	require.True(t, ok)
	assert.Equal(t, "Connection error: connection reset by peer", closed.Notice)
	assert.ErrorIs(t, closed.Err, boom)
}

func TestNetworkReader_SilentAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := collect(t, ctx, client.NetworkReader(failingReader{err: io.ErrClosedPipe}, 0))

	assert.Empty(t, events)
}

func TestNetworkReader_BoundedChunks(t *testing.T) {
	server, conn := net.Pipe()
	go func() {
		server.Write([]byte("abcdef"))
		server.Close()
	}()
	defer conn.Close()

	events := collect(t, context.Background(), client.NetworkReader(conn, 4))

	assert.Equal(t, []client.Event{
		client.ServerTextEvent{Text: "abcd"},
		client.ServerTextEvent{Text: "ef"},
		client.ServerClosedEvent{Notice: "Server disconnected"},
	}, events)
}

func TestTicker(t *testing.T) {
	mux := client.NewMultiplexer()
	ctx, cancel := context.WithCancel(context.Background())

	mux.Go(ctx, client.Ticker(5*time.Millisecond))

	for i := 0; i < 3; i++ {
		ev, err := mux.Next(ctx)
		require.NoError(t, err)
		assert.IsType(t, client.TickEvent{}, ev)
	}

	cancel()
	require.NoError(t, mux.Wait())
}
