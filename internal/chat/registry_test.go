package chat_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omochice/tcptalk/internal/chat"
)

func newSession(id, username string) *chat.Session {
	return &chat.Session{ID: id, Username: username, Conn: newMockConn("127.0.0.1:" + id)}
}

func TestRegistry_Admit(t *testing.T) {
	reg := chat.NewRegistry(nil)

	require.NoError(t, reg.Admit(newSession("1", "alice")))

	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Taken("alice"))
	assert.Equal(t, []string{"alice"}, reg.Usernames())
}

func TestRegistry_Admit_CaseInsensitiveUsername(t *testing.T) {
	reg := chat.NewRegistry(nil)
	require.NoError(t, reg.Admit(newSession("1", "alice")))

	for i, name := range []string{"alice", "Alice", "ALICE"} {
		err := reg.Admit(newSession(fmt.Sprintf("x%d", i), name))
		assert.ErrorIs(t, err, chat.ErrUsernameTaken, "name %q", name)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Admit_DuplicateID(t *testing.T) {
	reg := chat.NewRegistry(nil)
	require.NoError(t, reg.Admit(newSession("1", "alice")))

	err := reg.Admit(newSession("1", "bob"))
	assert.ErrorIs(t, err, chat.ErrDuplicateSession)
	assert.Equal(t, []string{"alice"}, reg.Usernames())
}

func TestRegistry_Remove(t *testing.T) {
	reg := chat.NewRegistry(nil)
	require.NoError(t, reg.Admit(newSession("1", "alice")))

	assert.True(t, reg.Remove("1"))
	assert.False(t, reg.Remove("1"))
	assert.Equal(t, 0, reg.Len())
	assert.False(t, reg.Taken("alice"))

	// the name is free again once its owner is gone
	require.NoError(t, reg.Admit(newSession("2", "ALICE")))
}

func TestRegistry_Admit_ConcurrentSameName(t *testing.T) {
	reg := chat.NewRegistry(nil)

	const workers = 32
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "alice"
			if i%2 == 0 {
				name = "ALICE"
			}
			if err := reg.Admit(newSession(fmt.Sprintf("%d", i), name)); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Usernames_Sorted(t *testing.T) {
	reg := chat.NewRegistry(nil)
	for i, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, reg.Admit(newSession(fmt.Sprintf("%d", i), name)))
	}

	assert.Equal(t, []string{"alice", "bob", "carol"}, reg.Usernames())
}
