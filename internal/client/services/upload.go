package services

import (
	"context"
	"fmt"
	"time"

	"github.com/trailfield/trailfield/internal/client/client"
	"github.com/trailfield/trailfield/internal/client/media"
	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/client/repositories/artifacts"
	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/guide"
	"github.com/trailfield/trailfield/internal/logging"
	"github.com/trailfield/trailfield/internal/netx"
)

// Stage names one phase of an upload attempt.
type Stage string

const (
	StagePreparing       Stage = "preparing"
	StageExternalizing   Stage = "externalizing"
	StageWritingPrimary  Stage = "writing-primary"
	StageGeneratingGuide Stage = "generating-guide"
	StageDone            Stage = "done"
)

// StageEvent is one progress checkpoint. Percent is monotonic within an
// attempt: 10 after preparing, 10-60 proportional during
// externalization, 65 before the primary write, 80 before guide
// generation, 100 on completion.
type StageEvent struct {
	Stage   Stage
	Percent int
}

// Collection names in the remote document store.
const (
	collectionRoutes = "routes"
	collectionGuides = "guides"
)

func collectionFor(kind models.ArtifactKind) string {
	if kind == models.KindGuide {
		return collectionGuides
	}
	return collectionRoutes
}

// presignUploader satisfies media.Uploader by reserving a presigned slot
// and PUTting the blob there.
type presignUploader struct {
	client client.Client
}

func (u *presignUploader) Upload(ctx context.Context, ownerID string, data []byte) (string, error) {
	target, err := u.client.PresignUpload(ctx)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	if err := netx.UploadToPresignedURL(ctx, target.PutURL, data, "image/jpeg"); err != nil {
		return "", fmt.Errorf("blob put: %w", err)
	}
	return target.PublicURL, nil
}

// UploadService runs the staged upload of one artifact: externalize
// media if the policy asks for it, write the primary record, then derive
// the guide for routes.
type UploadService struct {
	client       client.Client
	artifactRepo artifacts.Repository
	externalizer *media.Externalizer
	logger       logging.Logger
}

func NewUploadService(c client.Client, artifactRepo artifacts.Repository, logger logging.Logger) *UploadService {
	return &UploadService{
		client:       c,
		artifactRepo: artifactRepo,
		externalizer: media.NewExternalizer(&presignUploader{client: c}, logger),
		logger:       logger.With("component", "upload"),
	}
}

func emit(ctx context.Context, events chan<- StageEvent, ev StageEvent) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

// UploadOne pushes a single artifact to the cloud and returns its remote
// id. events may be nil; when set, stage checkpoints are delivered on it
// (the caller owns and drains the channel).
//
// The artifact's payload may be mutated (media externalized) and
// persisted even when the attempt ultimately fails; the record itself
// stays pending until the caller marks it uploaded.
func (u *UploadService) UploadOne(ctx context.Context, a *models.PendingArtifact, events chan<- StageEvent) (string, error) {
	if a.Uploaded() {
		return *a.CloudID, nil
	}
	if a.Owner.IsAnonymous() {
		return "", common.ErrNotAuthenticated
	}

	emit(ctx, events, StageEvent{Stage: StagePreparing, Percent: 10})

	decision, err := media.Decide(a.Payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}

	if decision.NeedsExternalization {
		res := u.externalizer.ExternalizeAll(ctx, a.Payload, a.Owner.ID, func(completed, total, _ int) {
			emit(ctx, events, StageEvent{
				Stage:   StageExternalizing,
				Percent: 10 + 50*completed/total,
			})
		})
		a.Payload = res.Payload

		// keep the externalized URLs even if the rest of this attempt
		// fails, so retries don't re-upload the same photos
		if res.Externalized > 0 {
			if err := u.artifactRepo.UpdatePayload(ctx, a.Kind, a.LocalID, a.Payload); err != nil {
				u.logger.Warn(ctx, "payload persist after externalization failed", "localID", a.LocalID, "error", err)
			}
		}
		if res.Failures > 0 {
			u.logger.Warn(ctx, "some photos stayed inline", "localID", a.LocalID, "failures", res.Failures)
		}
	}

	body, err := a.Payload.Serialize()
	if err != nil {
		return "", err
	}
	if len(body) > common.MaxRecordSize {
		return "", fmt.Errorf("%w: %d bytes after externalization", common.ErrPayloadTooLarge, len(body))
	}

	emit(ctx, events, StageEvent{Stage: StageWritingPrimary, Percent: 65})

	cloudID, err := u.client.WriteRecord(ctx, collectionFor(a.Kind), body)
	if err != nil {
		return "", err
	}

	if a.Kind == models.KindRoute {
		emit(ctx, events, StageEvent{Stage: StageGeneratingGuide, Percent: 80})
		u.writeGuide(ctx, a, cloudID)
	}

	emit(ctx, events, StageEvent{Stage: StageDone, Percent: 100})
	return cloudID, nil
}

// writeGuide derives and stores the shareable guide. Best effort: the
// route record is already written and a guide failure never undoes that.
func (u *UploadService) writeGuide(ctx context.Context, a *models.PendingArtifact, routeCloudID string) {
	doc, err := guide.Render(a.Payload, guide.Meta{
		Author:      a.Owner.DisplayName,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		u.logger.Warn(ctx, "guide rendering failed", "localID", a.LocalID, "error", err)
		return
	}

	body, err := models.Payload{
		Kind:  models.KindGuide,
		Title: doc.Title,
		Notes: doc.HTML,
	}.Serialize()
	if err != nil {
		u.logger.Warn(ctx, "guide serialization failed", "localID", a.LocalID, "error", err)
		return
	}

	if _, err := u.client.WriteRecord(ctx, collectionGuides, body); err != nil {
		u.logger.Warn(ctx, "guide write failed", "localID", a.LocalID, "routeID", routeCloudID, "error", err)
	}
}
