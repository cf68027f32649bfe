package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/server/config"
	"github.com/trailfield/trailfield/internal/server/repositories/repomanager"
)

func newRecordSvc(maxSize int) *RecordService {
	cfg := &config.Config{MaxRecordSize: maxSize}
	return NewRecordService(nil, repomanager.NewInMemoryRepositoryManager(), cfg)
}

func TestCreateAndGetRecord(t *testing.T) {
	svc := newRecordSvc(1024)
	ctx := context.Background()

	id, err := svc.Create(ctx, "owner-1", "routes", []byte(`{"title":"Ridge loop"}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := svc.Get(ctx, "owner-1", id)
	require.NoError(t, err)
	assert.Equal(t, "routes", rec.Collection)
	assert.JSONEq(t, `{"title":"Ridge loop"}`, string(rec.Body))
}

func TestCreateRecordTooLarge(t *testing.T) {
	svc := newRecordSvc(16)

	_, err := svc.Create(context.Background(), "owner-1", "routes", bytes.Repeat([]byte("x"), 17))
	assert.ErrorIs(t, err, common.ErrPayloadTooLarge)
}

func TestGetRecordWrongOwner(t *testing.T) {
	svc := newRecordSvc(1024)
	ctx := context.Background()

	id, err := svc.Create(ctx, "owner-1", "routes", []byte(`{}`))
	require.NoError(t, err)

	_, err = svc.Get(ctx, "owner-2", id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListRecordsByCollection(t *testing.T) {
	svc := newRecordSvc(1024)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", "routes", []byte(`{"n":1}`))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-1", "guides", []byte(`{"n":2}`))
	require.NoError(t, err)

	routes, err := svc.List(ctx, "owner-1", "routes")
	require.NoError(t, err)
	assert.Len(t, routes, 1)

	guides, err := svc.List(ctx, "owner-1", "guides")
	require.NoError(t, err)
	assert.Len(t, guides, 1)
}
