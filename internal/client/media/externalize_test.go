package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubUploader counts calls and fails for configured call numbers.
type stubUploader struct {
	mu       sync.Mutex
	calls    int
	failOn   map[int]bool // 1-based call number
	maxBatch int
	inFlight int
}

func (u *stubUploader) Upload(ctx context.Context, ownerID string, data []byte) (string, error) {
	u.mu.Lock()
	u.calls++
	call := u.calls
	u.inFlight++
	if u.inFlight > u.maxBatch {
		u.maxBatch = u.inFlight
	}
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.inFlight--
		u.mu.Unlock()
	}()

	if u.failOn[call] {
		return "", errors.New("blob store unavailable")
	}
	return fmt.Sprintf("https://blobs.example.com/%s/%d", ownerID, call), nil
}

func inlinePhoto(data string) models.TrackEntry {
	return models.TrackEntry{
		Type:    models.EntryTypePhoto,
		Content: base64.StdEncoding.EncodeToString([]byte(data)),
	}
}

func TestExternalizeAll_AllSucceed(t *testing.T) {
	up := &stubUploader{}
	e := NewExternalizer(up, testLogger())

	p := models.Payload{Kind: models.KindRoute, Entries: []models.TrackEntry{
		inlinePhoto("a"), inlinePhoto("b"),
		{Type: models.EntryTypeText, Content: "note"},
	}}

	res := e.ExternalizeAll(context.Background(), p, "u1", nil)
	assert.Equal(t, 2, res.Externalized)
	assert.Equal(t, 0, res.Failures)
	assert.Equal(t, 2, up.calls)
	assert.True(t, res.Payload.Entries[0].IsExternalized())
	assert.True(t, res.Payload.Entries[1].IsExternalized())
	assert.Equal(t, "note", res.Payload.Entries[2].Content)
}

func TestExternalizeAll_IdempotentSkip(t *testing.T) {
	up := &stubUploader{}
	e := NewExternalizer(up, testLogger())

	p := models.Payload{Kind: models.KindRoute, Entries: []models.TrackEntry{
		{Type: models.EntryTypePhoto, Content: "https://blobs.example.com/u1/1"},
		{Type: models.EntryTypePhoto, Content: "https://blobs.example.com/u1/2"},
	}}

	res := e.ExternalizeAll(context.Background(), p, "u1", nil)
	assert.Equal(t, 0, res.Externalized)
	assert.Equal(t, 0, res.Failures)
	// no network calls at all when everything already has URLs
	assert.Equal(t, 0, up.calls)
}

func TestExternalizeAll_PartialFailureDoesNotAbort(t *testing.T) {
	// five photos; two individual uploads fail
	up := &stubUploader{failOn: map[int]bool{2: true, 4: true}}
	e := NewExternalizer(up, testLogger())

	p := models.Payload{Kind: models.KindRoute, Entries: []models.TrackEntry{
		inlinePhoto("1"), inlinePhoto("2"), inlinePhoto("3"), inlinePhoto("4"), inlinePhoto("5"),
	}}

	res := e.ExternalizeAll(context.Background(), p, "u1", nil)
	assert.Equal(t, 3, res.Externalized)
	assert.Equal(t, 2, res.Failures)
	assert.Equal(t, 5, up.calls)

	externalized, inline := 0, 0
	for _, entry := range res.Payload.Entries {
		if entry.IsExternalized() {
			externalized++
		} else {
			inline++
		}
	}
	assert.Equal(t, 3, externalized)
	assert.Equal(t, 2, inline)
}

func TestExternalizeAll_ProgressAfterEveryAttempt(t *testing.T) {
	up := &stubUploader{failOn: map[int]bool{1: true}}
	e := NewExternalizer(up, testLogger())

	p := models.Payload{Kind: models.KindRoute, Entries: []models.TrackEntry{
		inlinePhoto("1"), inlinePhoto("2"), inlinePhoto("3"), inlinePhoto("4"),
	}}

	var mu sync.Mutex
	var completions []int
	var lastTotal int
	res := e.ExternalizeAll(context.Background(), p, "u1", func(completed, total, index int) {
		mu.Lock()
		defer mu.Unlock()
		completions = append(completions, completed)
		lastTotal = total
	})

	// invoked after every attempt, success or failure
	assert.Len(t, completions, 4)
	assert.Equal(t, 4, lastTotal)
	assert.Equal(t, 4, completions[len(completions)-1])
	assert.Equal(t, 1, res.Failures)
}

func TestExternalizeAll_BatchesLimitConcurrency(t *testing.T) {
	up := &stubUploader{}
	e := NewExternalizer(up, testLogger())

	var entries []models.TrackEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, inlinePhoto(fmt.Sprintf("%d", i)))
	}
	p := models.Payload{Kind: models.KindRoute, Entries: entries}

	res := e.ExternalizeAll(context.Background(), p, "u1", nil)
	require.Equal(t, 10, res.Externalized)
	assert.LessOrEqual(t, up.maxBatch, 3)
}
