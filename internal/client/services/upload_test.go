package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailfield/trailfield/internal/client/client"
	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/common"
)

func smallRoute(title string) models.Payload {
	return models.Payload{
		Kind:  models.KindRoute,
		Title: title,
		Entries: []models.TrackEntry{
			{Type: models.EntryTypeLocation, Lat: 47.6, Lon: -122.3},
			{Type: models.EntryTypeText, Content: "trailhead"},
		},
	}
}

func photoRoute(title string, photos int) models.Payload {
	p := models.Payload{Kind: models.KindRoute, Title: title}
	for i := 0; i < photos; i++ {
		p.Entries = append(p.Entries, models.TrackEntry{
			Type:    models.EntryTypePhoto,
			Content: base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("photo-%d", i))),
		})
	}
	return p
}

// blobServer accepts presigned PUTs and counts them. The counter is
// atomic because batch uploads arrive concurrently.
func blobServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var puts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		puts.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &puts
}

func presignTo(srv *httptest.Server) func(n int) (*client.UploadTarget, error) {
	return func(n int) (*client.UploadTarget, error) {
		return &client.UploadTarget{
			Key:       fmt.Sprintf("users/u1/%d", n),
			PutURL:    fmt.Sprintf("%s/blob/%d", srv.URL, n),
			PublicURL: fmt.Sprintf("https://blobs.example.com/u1/%d", n),
		}, nil
	}
}

func TestUploadOne_AnonymousOwnerRefused(t *testing.T) {
	repos := testRepos(t)
	fc := &fakeClient{}
	svc := NewUploadService(fc, repos.Artifacts, testLogger())

	a := &models.PendingArtifact{Kind: models.KindRoute, Payload: smallRoute("r")}
	_, err := svc.UploadOne(context.Background(), a, nil)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Zero(t, fc.writeCount())
}

func TestUploadOne_WritesPrimaryAndGuide(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()
	fc := &fakeClient{}
	svc := NewUploadService(fc, repos.Artifacts, testLogger())

	a := &models.PendingArtifact{
		Kind:    models.KindRoute,
		Payload: smallRoute("Ridge Loop"),
		Owner:   models.Owner{ID: "u1", DisplayName: "Jane"},
	}
	localID, err := repos.Artifacts.Append(ctx, a)
	require.NoError(t, err)
	a.LocalID = localID

	events := make(chan StageEvent, 16)
	cloudID, err := svc.UploadOne(ctx, a, events)
	require.NoError(t, err)
	assert.NotEmpty(t, cloudID)

	require.Len(t, fc.writesTo(collectionRoutes), 1)
	require.Len(t, fc.writesTo(collectionGuides), 1)
	assert.Contains(t, string(fc.writesTo(collectionGuides)[0].body), "Ridge Loop")

	close(events)
	var stages []Stage
	var percents []int
	for ev := range events {
		stages = append(stages, ev.Stage)
		percents = append(percents, ev.Percent)
	}
	assert.Equal(t, []Stage{StagePreparing, StageWritingPrimary, StageGeneratingGuide, StageDone}, stages)
	assert.Equal(t, []int{10, 65, 80, 100}, percents)
}

func TestUploadOne_ExternalizesAndPersistsPayload(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()

	srv, puts := blobServer(t)
	fc := &fakeClient{presignFn: presignTo(srv)}
	svc := NewUploadService(fc, repos.Artifacts, testLogger())

	// three inline photos trip the externalization policy
	a := &models.PendingArtifact{
		Kind:    models.KindRoute,
		Payload: photoRoute("Photos", 3),
		Owner:   models.Owner{ID: "u1"},
	}
	localID, err := repos.Artifacts.Append(ctx, a)
	require.NoError(t, err)
	a.LocalID = localID

	events := make(chan StageEvent, 32)
	_, err = svc.UploadOne(ctx, a, events)
	require.NoError(t, err)

	assert.EqualValues(t, 3, puts.Load())
	for _, e := range a.Payload.Entries {
		assert.True(t, e.IsExternalized())
	}

	// primary record carries URLs, not inline bytes
	body := string(fc.writesTo(collectionRoutes)[0].body)
	assert.Contains(t, body, "https://blobs.example.com/u1/")
	assert.NotContains(t, body, base64.StdEncoding.EncodeToString([]byte("photo-0")))

	// the externalized payload is durable: a reload sees the URLs
	stored, err := repos.Artifacts.GetByID(ctx, models.KindRoute, localID)
	require.NoError(t, err)
	for _, e := range stored.Payload.Entries {
		assert.True(t, e.IsExternalized())
	}

	close(events)
	sawExternalizing := false
	last := 0
	for ev := range events {
		assert.GreaterOrEqual(t, ev.Percent, last)
		last = ev.Percent
		if ev.Stage == StageExternalizing {
			sawExternalizing = true
			assert.GreaterOrEqual(t, ev.Percent, 10)
			assert.LessOrEqual(t, ev.Percent, 60)
		}
	}
	assert.True(t, sawExternalizing)
	assert.Equal(t, 100, last)
}

func TestUploadOne_TooLargeAfterExternalization(t *testing.T) {
	repos := testRepos(t)
	fc := &fakeClient{}
	svc := NewUploadService(fc, repos.Artifacts, testLogger())

	// no media to externalize, so the oversized notes cannot shrink
	a := &models.PendingArtifact{
		Kind: models.KindRoute,
		Payload: models.Payload{
			Kind:  models.KindRoute,
			Title: "huge",
			Notes: strings.Repeat("x", common.MaxRecordSize+1),
		},
		Owner: models.Owner{ID: "u1"},
	}

	_, err := svc.UploadOne(context.Background(), a, nil)
	assert.ErrorIs(t, err, common.ErrPayloadTooLarge)
	assert.Zero(t, fc.writeCount())
}

func TestUploadOne_GuideFailureKeepsPrimaryWrite(t *testing.T) {
	repos := testRepos(t)
	ctx := context.Background()
	fc := &fakeClient{failByColl: map[string]error{collectionGuides: errors.New("boom")}}
	svc := NewUploadService(fc, repos.Artifacts, testLogger())

	a := &models.PendingArtifact{
		Kind:    models.KindRoute,
		Payload: smallRoute("r"),
		Owner:   models.Owner{ID: "u1"},
	}
	localID, err := repos.Artifacts.Append(ctx, a)
	require.NoError(t, err)
	a.LocalID = localID

	cloudID, err := svc.UploadOne(ctx, a, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, cloudID)
	assert.Len(t, fc.writesTo(collectionRoutes), 1)
}

func TestUploadOne_AlreadyUploadedIsNoop(t *testing.T) {
	repos := testRepos(t)
	fc := &fakeClient{}
	svc := NewUploadService(fc, repos.Artifacts, testLogger())

	existing := "cloud-42"
	a := &models.PendingArtifact{
		Kind:    models.KindRoute,
		Payload: smallRoute("r"),
		Owner:   models.Owner{ID: "u1"},
		Status:  models.StatusUploaded,
		CloudID: &existing,
	}

	cloudID, err := svc.UploadOne(context.Background(), a, nil)
	require.NoError(t, err)
	assert.Equal(t, existing, cloudID)
	assert.Zero(t, fc.writeCount())
}
