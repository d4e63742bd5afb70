package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMemory(t *testing.T) *Memory {
	t.Helper()
	m, err := NewMemory("", zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	backend := newMemory(t)

	sessionA := NewNamespace(backend, "client-a", "session")
	wizardA := NewNamespace(backend, "client-a", "wizard")
	sessionB := NewNamespace(backend, "client-b", "session")

	require.NoError(t, sessionA.Set(ctx, "token", "abc"))
	require.NoError(t, wizardA.Set(ctx, "token", "wizard-value"))

	v, ok, err := sessionA.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok, err = sessionB.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok, "another browser context must not see the key")

	require.NoError(t, sessionA.Delete(ctx, "token"))
	v, ok, err = wizardA.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok, "deleting in one namespace leaves the other intact")
	assert.Equal(t, "wizard-value", v)
}

func TestMemorySnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.gob")

	first, err := NewMemory(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "rms:c1:session:rms_auth_token", "tok"))
	require.NoError(t, first.Close())

	second, err := NewMemory(path, zap.NewNop())
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "rms:c1:session:rms_auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)
}

func TestMemoryDeleteMissingKey(t *testing.T) {
	m := newMemory(t)
	assert.NoError(t, m.Delete(context.Background(), "nope"))
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	backend := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = backend.Close() })

	_, ok, err := backend.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Set(ctx, "k1", "v1"))
	require.NoError(t, backend.Set(ctx, "k2", "v2"))

	v, ok, err := backend.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	require.NoError(t, backend.Delete(ctx, "k1", "k2"))
	assert.False(t, mr.Exists("k1"))
	assert.False(t, mr.Exists("k2"))
	assert.NoError(t, backend.Delete(ctx))
}

func TestPostgresBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("get existing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM client_storage WHERE storage_key = $1")).
			WithArgs("k").
			WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow("v"))

		v, ok, err := NewPostgres(mock, nil).Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT value FROM client_storage").
			WithArgs("k").
			WillReturnError(pgx.ErrNoRows)

		_, ok, err := NewPostgres(mock, nil).Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT value FROM client_storage").
			WithArgs("k").
			WillReturnError(errors.New("connection reset"))

		_, _, err = NewPostgres(mock, nil).Get(ctx, "k")
		assert.Error(t, err)
	})

	t.Run("upsert", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("INSERT INTO client_storage").
			WithArgs("k", "v").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewPostgres(mock, nil).Set(ctx, "k", "v"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete many", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM client_storage").
			WithArgs("a", "b").
			WillReturnResult(pgxmock.NewResult("DELETE", 2))

		require.NoError(t, NewPostgres(mock, nil).Delete(ctx, "a", "b"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
