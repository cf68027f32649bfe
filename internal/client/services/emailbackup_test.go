package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/common"
)

type failingMailer struct {
	calls int
}

func (m *failingMailer) Enabled() bool { return true }
func (m *failingMailer) Send(ctx context.Context, rec *models.EmailBackupRecord) error {
	m.calls++
	return errors.New("smtp relay down")
}

func TestProcessQueue_NoopWithoutConfiguration(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	svc := NewEmailBackupService(repos.EmailBackup, NewMailer("", ""), testLogger())
	require.NoError(t, svc.Enqueue(ctx, models.KindRoute, smallRoute("r")))

	svc.ProcessQueue(ctx)

	recs, err := repos.EmailBackup.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	// untouched: not sent, no retries burned
	assert.False(t, recs[0].Sent)
	assert.Equal(t, 0, recs[0].RetryCount)
}

func TestProcessQueue_RetryCapRetainsRecord(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	mailer := &failingMailer{}
	svc := NewEmailBackupService(repos.EmailBackup, mailer, testLogger())
	require.NoError(t, svc.Enqueue(ctx, models.KindRoute, smallRoute("r")))

	for i := 0; i < common.EmailRetryCap+2; i++ {
		svc.ProcessQueue(ctx)
	}

	// dispatch stops at the cap, the record stays for manual export
	assert.Equal(t, common.EmailRetryCap, mailer.calls)

	recs, err := repos.EmailBackup.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Sent)
	assert.Equal(t, common.EmailRetryCap, recs[0].RetryCount)

	sendable, err := repos.EmailBackup.ListSendable(ctx, common.EmailRetryCap)
	require.NoError(t, err)
	assert.Empty(t, sendable)
}

func TestProcessQueue_DispatchesThroughHTTPMailer(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	svc := NewEmailBackupService(repos.EmailBackup, NewMailer(srv.URL, "key-123"), testLogger())
	require.NoError(t, svc.Enqueue(ctx, models.KindRoute, smallRoute("Coast Walk")))

	svc.ProcessQueue(ctx)

	assert.Equal(t, "Bearer key-123", gotAuth)
	assert.Equal(t, "trail-backup", gotBody["template"])

	recs, err := repos.EmailBackup.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Sent)
}

func TestProcessQueue_EndpointErrorCountsAsRetry(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewEmailBackupService(repos.EmailBackup, NewMailer(srv.URL, ""), testLogger())
	require.NoError(t, svc.Enqueue(ctx, models.KindRoute, smallRoute("r")))

	svc.ProcessQueue(ctx)

	recs, err := repos.EmailBackup.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Sent)
	assert.Equal(t, 1, recs[0].RetryCount)
}
