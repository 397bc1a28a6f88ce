package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ghostframe.dev/ghostframe/internal/types"
)

func openMemory(t *testing.T) *Journal {
	t.Helper()
	j, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAppendAndList(t *testing.T) {
	j := openMemory(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 12 {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAI
		}
		require.NoError(t, j.Append(types.NewMessage(role, fmt.Sprintf("m%d", i), now)))
	}

	all, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, all, 12)
	for i, m := range all {
		assert.Equal(t, fmt.Sprintf("m%d", i), m.Content, "log order survives key ordering past m9")
	}
	assert.Equal(t, types.RoleAI, all[1].Role)
	assert.True(t, all[0].Timestamp.Equal(now))

	recent, err := j.List(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"m9", "m10", "m11"}, []string{recent[0].Content, recent[1].Content, recent[2].Content})
}

func TestListEmpty(t *testing.T) {
	j := openMemory(t)

	msgs, err := j.List(10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, j.Append(types.NewMessage(types.RoleUser, "first", time.Now())))
	require.NoError(t, j.Close())

	j, err = Open(dir, nil)
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, j.Append(types.NewMessage(types.RoleAI, "second", time.Now())))

	msgs, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}

func TestClosedJournal(t *testing.T) {
	j, err := Open("", nil)
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close(), "close is idempotent")

	assert.ErrorIs(t, j.Append(types.NewMessage(types.RoleUser, "x", time.Now())), ErrClosed)
	_, err = j.List(1)
	assert.ErrorIs(t, err, ErrClosed)
}
