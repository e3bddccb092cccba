package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Documents {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	migrations, err := filepath.Abs("migrations")
	require.NoError(t, err)

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrationsWithDB(db, migrations))
	return NewDocuments(db)
}

func TestDocumentsRoundtrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	repo := openTestDB(t)

	_, _, ok, err := repo.GetDocument(ctx, "https://a.example/doc")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.PutDocument(ctx, "https://a.example/doc", `"v1"`, "<s> <p> <o> ."))
	etag, body, ok, err := repo.GetDocument(ctx, "https://a.example/doc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `"v1"`, etag)
	require.Equal(t, "<s> <p> <o> .", body)

	// upsert replaces the cached copy
	require.NoError(t, repo.PutDocument(ctx, "https://a.example/doc", `"v2"`, "<s> <p> <o2> ."))
	etag, body, _, err = repo.GetDocument(ctx, "https://a.example/doc")
	require.NoError(t, err)
	require.Equal(t, `"v2"`, etag)
	require.Equal(t, "<s> <p> <o2> .", body)

	doc, err := repo.Get(ctx, "https://a.example/doc")
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.WithinDuration(t, Now(), doc.FetchedAt, 5*time.Second)
}

func TestDocumentsPurge(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	repo := openTestDB(t)

	require.NoError(t, repo.PutDocument(ctx, "https://a.example/old", "", "x"))
	require.NoError(t, repo.PutDocument(ctx, "https://a.example/new", "", "y"))

	n, err := repo.Purge(ctx, Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	_, _, ok, err := repo.GetDocument(ctx, "https://a.example/new")
	require.NoError(t, err)
	require.False(t, ok)
}
