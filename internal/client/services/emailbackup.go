package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/client/repositories/emailbackup"
	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/logging"
)

// Mailer dispatches one backup snapshot through the template-mail
// endpoint.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, rec *models.EmailBackupRecord) error
}

// NewMailer builds an HTTP mailer when an endpoint is configured and a
// noop otherwise. With the noop, snapshots still accumulate locally and
// become sendable as soon as configuration appears.
func NewMailer(endpoint, accessKey string) Mailer {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return noopMailer{}
	}
	return &httpMailer{
		endpoint:  endpoint,
		accessKey: accessKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type noopMailer struct{}

func (noopMailer) Enabled() bool { return false }
func (noopMailer) Send(ctx context.Context, rec *models.EmailBackupRecord) error {
	return nil
}

type httpMailer struct {
	endpoint  string
	accessKey string
	client    *http.Client
}

func (m *httpMailer) Enabled() bool { return true }

func (m *httpMailer) Send(ctx context.Context, rec *models.EmailBackupRecord) error {
	body, err := json.Marshal(map[string]any{
		"template":   "trail-backup",
		"subject":    fmt.Sprintf("Trail backup: %s", rec.Kind),
		"created_at": rec.CreatedAt.UTC().Format(time.RFC3339),
		"snapshot":   json.RawMessage(rec.Snapshot),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.accessKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.accessKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mail endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// EmailBackupService is the secondary, best-effort backup channel. It
// never gates or delays the primary sync path: enqueue is local-only, and
// dispatch failures are logged, never surfaced.
type EmailBackupService struct {
	repo   emailbackup.Repository
	mailer Mailer
	logger logging.Logger
}

func NewEmailBackupService(repo emailbackup.Repository, mailer Mailer, logger logging.Logger) *EmailBackupService {
	return &EmailBackupService{repo: repo, mailer: mailer, logger: logger.With("component", "emailbackup")}
}

// Enqueue snapshots a freshly saved payload for later dispatch.
func (s *EmailBackupService) Enqueue(ctx context.Context, kind models.ArtifactKind, payload models.Payload) error {
	snapshot, err := payload.Serialize()
	if err != nil {
		return err
	}
	_, err = s.repo.Enqueue(ctx, &models.EmailBackupRecord{
		Kind:      kind,
		Snapshot:  snapshot,
		CreatedAt: time.Now(),
	})
	return err
}

// ProcessQueue walks sendable records and dispatches each once. A failed
// dispatch bumps the retry counter; records at the cap are skipped but
// retained. Without a configured mailer the queue is left untouched.
func (s *EmailBackupService) ProcessQueue(ctx context.Context) {
	if !s.mailer.Enabled() {
		return
	}

	recs, err := s.repo.ListSendable(ctx, common.EmailRetryCap)
	if err != nil {
		s.logger.Warn(ctx, "email queue read failed", "error", err)
		return
	}

	for _, rec := range recs {
		if err := s.mailer.Send(ctx, rec); err != nil {
			s.logger.Warn(ctx, "email dispatch failed", "id", rec.ID, "retries", rec.RetryCount, "error", err)
			if err := s.repo.IncrementRetry(ctx, rec.ID); err != nil {
				s.logger.Error(ctx, "email retry bookkeeping failed", "id", rec.ID, "error", err)
			}
			continue
		}
		if err := s.repo.MarkSent(ctx, rec.ID); err != nil {
			s.logger.Error(ctx, "email sent bookkeeping failed", "id", rec.ID, "error", err)
		}
	}
}
