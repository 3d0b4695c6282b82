package client_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omochice/tcptalk/internal/client"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMultiplexer_FIFO(t *testing.T) {
	mux := client.NewMultiplexer()
	mux.Emit(client.ServerTextEvent{Text: "a"})
	mux.Emit(client.TickEvent{})
	mux.Emit(client.ServerTextEvent{Text: "b"})

	ctx := context.Background()
	for _, want := range []client.Event{
		client.ServerTextEvent{Text: "a"},
		client.TickEvent{},
		client.ServerTextEvent{Text: "b"},
	} {
		got, err := mux.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, mux.Len())
}

func TestMultiplexer_EmitNeverBlocks(t *testing.T) {
	mux := client.NewMultiplexer()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			mux.Emit(client.TickEvent{})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked without a consumer")
	}
	assert.Equal(t, 10000, mux.Len())
}

func TestMultiplexer_PerProducerOrder(t *testing.T) {
	mux := client.NewMultiplexer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, perProducer = 3, 200
	for p := 0; p < producers; p++ {
		p := p
		mux.Go(ctx, func(ctx context.Context, emit func(client.Event)) error {
			for i := 0; i < perProducer; i++ {
				emit(client.ServerTextEvent{Text: fmt.Sprintf("%d:%d", p, i)})
			}
			return nil
		})
	}

	next := make([]int, producers)
	for n := 0; n < producers*perProducer; n++ {
		ev, err := mux.Next(ctx)
		require.NoError(t, err)
		var p, i int
		_, err = fmt.Sscanf(ev.(client.ServerTextEvent).Text, "%d:%d", &p, &i)
		require.NoError(t, err)
		require.Equal(t, next[p], i, "producer %d out of order", p)
		next[p]++
	}
	require.NoError(t, mux.Wait())
}

func TestMultiplexer_NextWaitsForEmit(t *testing.T) {
	mux := client.NewMultiplexer()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		mux.Emit(client.ServerTextEvent{Text: "late"})
	}()

	ev, err := mux.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.ServerTextEvent{Text: "late"}, ev)
	wg.Wait()
}

func TestMultiplexer_NextContextCancelled(t *testing.T) {
	mux := client.NewMultiplexer()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := mux.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMultiplexer_Close(t *testing.T) {
	mux := client.NewMultiplexer()
	mux.Emit(client.TickEvent{})
	mux.Close()
	mux.Emit(client.ServerTextEvent{Text: "dropped"})

	ev, err := mux.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.TickEvent{}, ev)

	_, err = mux.Next(context.Background())
	assert.ErrorIs(t, err, client.ErrClosed)
}

func TestMultiplexer_CloseWakesConsumer(t *testing.T) {
	mux := client.NewMultiplexer()

	errCh := make(chan error, 1)
	go func() {
		_, err := mux.Next(context.Background())
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	mux.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, client.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Close")
	}
}

func TestMultiplexer_FailingProducerCloses(t *testing.T) {
	mux := client.NewMultiplexer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errNoTerminal := errors.New("could not open a new TTY")
	mux.Go(ctx, client.Ticker(time.Hour))
	mux.Go(ctx, func(ctx context.Context, emit func(client.Event)) error {
		emit(client.ServerTextEvent{Text: "last"})
		return errNoTerminal
	})

	got, err := mux.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, client.ServerTextEvent{Text: "last"}, got)

	_, err = mux.Next(ctx)
	assert.ErrorIs(t, err, client.ErrClosed)

	cancel()
	assert.ErrorIs(t, mux.Wait(), errNoTerminal)
}
