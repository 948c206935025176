package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-client/internal/model"
	"github.com/Makepad-fr/tada-client/internal/store"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	return s
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "")
	assert.ErrorContains(t, err, `unsupported driver "postgres"`)
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	todos, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)

	a, err := s.Create(ctx, model.Input{Title: "a", Description: "first"})
	require.NoError(t, err)
	b, err := s.Create(ctx, model.Input{Title: "b", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, "2024-03-01 09:30:00", a.CreatedAt)

	todos, err = s.List(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]model.Todo{a, b}, todos); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	s.now = func() time.Time { return time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC) }
	up, err := s.Update(ctx, a.ID, model.Input{Title: "A", Completed: true})
	require.NoError(t, err)
	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, up, got)
	assert.Equal(t, "", got.Description)
	assert.True(t, got.Completed)
	assert.Equal(t, "2024-03-01 09:30:00", got.CreatedAt)
	assert.Equal(t, "2024-03-02 08:00:00", got.UpdatedAt)

	require.NoError(t, s.Delete(ctx, a.ID))
	todos, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, b.ID, todos[0].ID)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	_, err := s.Get(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Update(ctx, 42, model.Input{Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, 42), store.ErrNotFound)
}

func TestReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todos.db")

	s, err := Open(ctx, SQLite, path)
	require.NoError(t, err)
	_, err = s.Create(ctx, model.Input{Title: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, SQLite, path)
	require.NoError(t, err)
	defer s.Close()
	todos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "kept", todos[0].Title)
}
