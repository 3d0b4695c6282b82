package chat_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omochice/tcptalk/internal/chat"
)

func admitN(t *testing.T, reg *chat.Registry, n int) []*mockConn {
	t.Helper()
	conns := make([]*mockConn, n)
	for i := range conns {
		conns[i] = newMockConn(fmt.Sprintf("127.0.0.1:%d", 4000+i))
		require.NoError(t, reg.Admit(&chat.Session{
			ID:       fmt.Sprintf("%d", i),
			Username: fmt.Sprintf("user%d", i),
			Conn:     conns[i],
		}))
	}
	return conns
}

func TestBroadcast_ExcludeSender(t *testing.T) {
	reg := chat.NewRegistry(nil)
	conns := admitN(t, reg, 4)

	reg.Broadcast(context.Background(), []byte("user0: hi\n"), "0", false)

	assert.Empty(t, conns[0].GetWritten())
	for _, c := range conns[1:] {
		assert.Equal(t, []string{"user0: hi\n"}, c.GetWritten())
	}
}

func TestBroadcast_IncludeSender(t *testing.T) {
	reg := chat.NewRegistry(nil)
	conns := admitN(t, reg, 4)

	reg.Broadcast(context.Background(), []byte("user0 has joined the chat\n"), "0", true)

	for _, c := range conns {
		assert.Equal(t, []string{"user0 has joined the chat\n"}, c.GetWritten())
	}
}

func TestBroadcast_PrunesFailedSessions(t *testing.T) {
	reg := chat.NewRegistry(nil)
	conns := admitN(t, reg, 4)
	conns[2].failWrites(errors.New("broken pipe"))

	reg.Broadcast(context.Background(), []byte("user0: hi\n"), "0", false)

	assert.Equal(t, 3, reg.Len())
	assert.False(t, reg.Taken("user2"))
	assert.Equal(t, []string{"user0: hi\n"}, conns[1].GetWritten())
	assert.Equal(t, []string{"user0: hi\n"}, conns[3].GetWritten())

	// the pruned session is not written to again and never told
	conns[2].failWrites(nil)
	reg.Broadcast(context.Background(), []byte("user1: again\n"), "1", false)
	assert.Empty(t, conns[2].GetWritten())
	assert.False(t, conns[2].isClosed())
}

func TestBroadcast_AllFail(t *testing.T) {
	reg := chat.NewRegistry(nil)
	conns := admitN(t, reg, 3)
	for _, c := range conns {
		c.failWrites(errors.New("reset"))
	}

	reg.Broadcast(context.Background(), []byte("x\n"), "missing", true)

	assert.Equal(t, 0, reg.Len())
}

func TestBroadcast_EmptyRegistry(t *testing.T) {
	reg := chat.NewRegistry(nil)
	reg.Broadcast(context.Background(), []byte("x\n"), "0", true)
	assert.Equal(t, 0, reg.Len())
}
