// Package media implements the externalization policy for photo content:
// deciding when inline photos must move to blob storage, compressing them,
// and running the concurrency-limited upload batches.
package media

import (
	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/common"
)

// Decision is the outcome of the externalization policy for one payload.
type Decision struct {
	NeedsExternalization bool
	CandidateCount       int
}

// Decide applies the size policy: externalize when the serialized payload
// exceeds the threshold, or when more than MaxInlinePhotos photos remain
// inline, whichever triggers first. The threshold sits well under the
// document store's hard ceiling to leave headroom for metadata growth.
func Decide(p models.Payload) (Decision, error) {
	b, err := p.Serialize()
	if err != nil {
		return Decision{}, err
	}

	inline := p.InlinePhotoCount()
	need := len(b) > common.ExternalizeSizeThreshold || inline > common.MaxInlinePhotos
	return Decision{NeedsExternalization: need, CandidateCount: inline}, nil
}
