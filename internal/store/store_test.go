package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	var value map[string]string
	err := s.Get(context.Background(), Guild("1"), "missing", &value)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SetGetDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, Guild("1"), "pairs", map[string]string{"a": "b"}))
	require.NoError(t, s.Set(ctx, Guild("1"), "pairs", map[string]string{"a": "c"}))

	var value map[string]string
	require.NoError(t, s.Get(ctx, Guild("1"), "pairs", &value))
	assert.Equal(t, map[string]string{"a": "c"}, value)

	require.NoError(t, s.Delete(ctx, Guild("1"), "pairs"))
	assert.ErrorIs(t, s.Get(ctx, Guild("1"), "pairs", &value), ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := Update(ctx, s, Member("1", "2"), "reminders", func(value *map[string]int) error {
			if *value == nil {
				*value = map[string]int{}
			}
			(*value)["count"]++
			return nil
		})
		require.NoError(t, err)
	}

	value, err := Load[map[string]int](ctx, s, Member("1", "2"), "reminders")
	require.NoError(t, err)
	assert.Equal(t, 3, value["count"])
}

func TestStore_UpdateErrorDoesNotWrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := Update(ctx, s, Global, "settings", func(value *map[string]int) error {
		*value = map[string]int{"x": 1}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var value map[string]int
	assert.ErrorIs(t, s.Get(ctx, Global, "settings", &value), ErrNotFound)
}

func TestStore_Scopes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, Guild("2"), "events", map[string]int{}))
	require.NoError(t, s.Set(ctx, Guild("1"), "events", map[string]int{}))
	require.NoError(t, s.Set(ctx, Guild("3"), "timezone", "UTC"))
	require.NoError(t, s.Set(ctx, User("1"), "events", map[string]int{}))

	scopes, err := s.Scopes(ctx, "guild:", "events")
	require.NoError(t, err)
	assert.Equal(t, []string{"guild:1", "guild:2"}, scopes)
}
