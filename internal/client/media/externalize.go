package media

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/logging"
)

// Uploader moves one compressed photo into blob storage and returns the
// public URL that replaces the inline content.
type Uploader interface {
	Upload(ctx context.Context, ownerID string, data []byte) (string, error)
}

// ProgressFunc is invoked after every individual attempt, success or
// failure. completed counts finished attempts, total is the candidate
// count, index is the entry's position in the payload.
type ProgressFunc func(completed, total, index int)

// Result reports one externalization pass.
type Result struct {
	Payload      models.Payload
	Externalized int
	Failures     int
}

// Externalizer uploads a payload's inline photos in concurrency-limited
// batches.
type Externalizer struct {
	uploader Uploader
	logger   logging.Logger
}

func NewExternalizer(uploader Uploader, logger logging.Logger) *Externalizer {
	return &Externalizer{uploader: uploader, logger: logger.With("component", "externalizer")}
}

// ExternalizeAll processes every photo entry not yet externalized:
// compress, upload, replace content with the blob URL. Entries already
// holding URLs are skipped, so the pass is idempotent. Uploads run in
// batches of MediaUploadBatchSize; batches are sequential. A failed item
// keeps its inline content and never aborts the batch or the pass;
// remaining entries are still attempted.
func (e *Externalizer) ExternalizeAll(ctx context.Context, payload models.Payload, ownerID string, onProgress ProgressFunc) Result {
	var candidates []int
	for i, entry := range payload.Entries {
		if entry.Type == models.EntryTypePhoto && entry.Content != "" && !entry.IsExternalized() {
			candidates = append(candidates, i)
		}
	}

	res := Result{Payload: payload}
	if len(candidates) == 0 {
		return res
	}

	// copy entries so partial failure never leaves the caller's slice
	// half-mutated
	entries := make([]models.TrackEntry, len(payload.Entries))
	copy(entries, payload.Entries)
	res.Payload.Entries = entries

	var mu sync.Mutex
	completed := 0
	total := len(candidates)

	for start := 0; start < total; start += common.MediaUploadBatchSize {
		end := start + common.MediaUploadBatchSize
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for _, idx := range candidates[start:end] {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()

				url, err := e.externalizeOne(ctx, entries[idx], ownerID)

				mu.Lock()
				defer mu.Unlock()
				completed++
				if err != nil {
					res.Failures++
					e.logger.Warn(ctx, "photo externalization failed", "index", idx, "error", err)
				} else {
					entries[idx].Content = url
					res.Externalized++
				}
				if onProgress != nil {
					onProgress(completed, total, idx)
				}
			}(idx)
		}
		wg.Wait()
	}

	return res
}

func (e *Externalizer) externalizeOne(ctx context.Context, entry models.TrackEntry, ownerID string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(entry.Content)
	if err != nil {
		return "", err
	}

	compressed, err := Compress(raw)
	if err != nil {
		// photos that cannot be decoded are shipped as-is
		compressed = raw
	}

	return e.uploader.Upload(ctx, ownerID, compressed)
}
