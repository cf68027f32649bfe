package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trailfield/trailfield/internal/client/client"
	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/client/repositories/artifacts"
	"github.com/trailfield/trailfield/internal/logging"
)

// SkipReason explains why a sync pass refused to run. Empty means the
// pass ran.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipAlreadyRunning   SkipReason = "already-running"
	SkipOffline          SkipReason = "offline"
	SkipNotAuthenticated SkipReason = "not-authenticated"
)

// Report summarizes one sync pass.
type Report struct {
	Skipped  SkipReason
	Examined int
	Uploaded int
	Failed   int
	// AlreadyUploaded counts records skipped because they carried a
	// cloud id before any network call was made.
	AlreadyUploaded int
}

// Notification is emitted when connectivity returns while work is
// queued. It is informational only; syncing stays user-triggered.
type Notification struct {
	PendingCount int
}

// SyncService drains the local queue when the user asks for it. One pass
// at a time; each pending artifact is attempted once per pass and
// failures leave it queued for the next pass.
type SyncService struct {
	client       client.Client
	artifactRepo artifacts.Repository
	uploads      *UploadService
	email        *EmailBackupService
	logger       logging.Logger

	online atomic.Bool

	mu       sync.Mutex
	running  bool
	inFlight map[int64]bool

	notifications chan Notification
}

func NewSyncService(c client.Client, artifactRepo artifacts.Repository, uploads *UploadService, email *EmailBackupService, logger logging.Logger) *SyncService {
	return &SyncService{
		client:        c,
		artifactRepo:  artifactRepo,
		uploads:       uploads,
		email:         email,
		logger:        logger.With("component", "sync"),
		inFlight:      make(map[int64]bool),
		notifications: make(chan Notification, 1),
	}
}

// Online reports the last observed connectivity state.
func (s *SyncService) Online() bool { return s.online.Load() }

// SetOnline overrides the observed state, for callers that probe
// connectivity themselves.
func (s *SyncService) SetOnline(v bool) { s.online.Store(v) }

// Notifications delivers reconnect events. Buffered; an unread event is
// replaced rather than blocking the watcher.
func (s *SyncService) Notifications() <-chan Notification { return s.notifications }

// StartOnlineStatusWatcher probes the server on a fixed interval and
// tracks connectivity. A transition back to online emits a notification
// carrying the pending count — it never starts a sync by itself.
func (s *SyncService) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := s.client.Ping(pingCtx)
			cancel()

			wasOnline := s.online.Load()
			nowOnline := err == nil
			s.online.Store(nowOnline)

			if nowOnline && !wasOnline {
				s.notifyReconnect(ctx)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *SyncService) notifyReconnect(ctx context.Context) {
	count, err := s.artifactRepo.CountPending(ctx)
	if err != nil {
		s.logger.Warn(ctx, "pending count failed", "error", err)
		return
	}
	if count == 0 {
		return
	}

	// drop a stale unread notification so the latest count wins
	select {
	case <-s.notifications:
	default:
	}
	select {
	case s.notifications <- Notification{PendingCount: count}:
	default:
	}
}

// SyncAll drains the queue for the given owner. Refusals (already
// running, offline, not signed in) come back as a structured reason with
// a nil error; per-item failures are counted, logged and never abort the
// pass. After the batch the email backup queue gets a dispatch pass.
func (s *SyncService) SyncAll(ctx context.Context, owner models.Owner) (Report, error) {
	if owner.IsAnonymous() {
		return Report{Skipped: SkipNotAuthenticated}, nil
	}
	if !s.online.Load() {
		return Report{Skipped: SkipOffline}, nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Report{Skipped: SkipAlreadyRunning}, nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	var report Report
	for _, kind := range []models.ArtifactKind{models.KindRoute, models.KindGuide} {
		pending, err := s.artifactRepo.ListPending(ctx, kind)
		if err != nil {
			return report, err
		}
		for _, a := range pending {
			s.syncOne(ctx, a, owner, &report)
		}
	}

	s.email.ProcessQueue(ctx)
	return report, nil
}

// UploadOne pushes a single queued record, streaming stage progress to
// events (may be nil). Same guards and bookkeeping as a full pass, for
// one record.
func (s *SyncService) UploadOne(ctx context.Context, kind models.ArtifactKind, localID int64, owner models.Owner, events chan<- StageEvent) (Report, error) {
	if owner.IsAnonymous() {
		return Report{Skipped: SkipNotAuthenticated}, nil
	}
	if !s.online.Load() {
		return Report{Skipped: SkipOffline}, nil
	}

	a, err := s.artifactRepo.GetByID(ctx, kind, localID)
	if err != nil {
		return Report{}, err
	}

	var report Report
	s.syncOneWithEvents(ctx, a, owner, &report, events)
	return report, nil
}

func (s *SyncService) syncOne(ctx context.Context, a *models.PendingArtifact, owner models.Owner, report *Report) {
	s.syncOneWithEvents(ctx, a, owner, report, nil)
}

func (s *SyncService) syncOneWithEvents(ctx context.Context, a *models.PendingArtifact, owner models.Owner, report *Report, events chan<- StageEvent) {
	report.Examined++

	// the stored cloud id, not the in-flight set, is what makes uploads
	// idempotent: anything already written remotely is skipped before a
	// single network call
	if a.Uploaded() {
		report.AlreadyUploaded++
		return
	}

	s.mu.Lock()
	if s.inFlight[a.LocalID] {
		s.mu.Unlock()
		return
	}
	s.inFlight[a.LocalID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, a.LocalID)
		s.mu.Unlock()
	}()

	if a.Owner.IsAnonymous() {
		a.Owner = owner
	}

	cloudID, err := s.uploads.UploadOne(ctx, a, events)
	if err != nil {
		report.Failed++
		s.logger.Warn(ctx, "upload failed, record stays queued", "kind", a.Kind, "localID", a.LocalID, "error", err)
		if err := s.artifactRepo.IncrementRetry(ctx, a.Kind, a.LocalID); err != nil {
			s.logger.Error(ctx, "retry bookkeeping failed", "localID", a.LocalID, "error", err)
		}
		return
	}

	if err := s.artifactRepo.MarkUploaded(ctx, a.Kind, a.LocalID, cloudID); err != nil {
		s.logger.Error(ctx, "mark uploaded failed", "localID", a.LocalID, "cloudID", cloudID, "error", err)
		return
	}
	report.Uploaded++
}
