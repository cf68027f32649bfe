package client

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailfield/trailfield/internal/client/models"

	_ "modernc.org/sqlite"
)

func TestInitDatabase_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")
	ctx := context.Background()

	repos, err := InitDatabase(ctx, path)
	require.NoError(t, err)

	_, err = repos.Artifacts.Append(ctx, &models.PendingArtifact{
		Kind:    models.KindRoute,
		Payload: models.Payload{Kind: models.KindRoute, Title: "t"},
	})
	require.NoError(t, err)
	require.NoError(t, repos.DB.Close())

	// reopening runs migrations again without error and data survives
	repos2, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	defer repos2.DB.Close()

	pending, err := repos2.Artifacts.ListPending(ctx, models.KindRoute)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestInitDatabase_FailsClosedOnBadPath(t *testing.T) {
	_, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "missing-dir", "sub", "queue.db"))
	assert.Error(t, err)
}
