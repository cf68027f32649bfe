package models

import "time"

// Owner is the identity captured when an artifact is created. The zero value
// is the anonymous owner used for local-only saves.
type Owner struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Anonymous is the owner recorded for saves made without a session.
var Anonymous = Owner{}

// IsAnonymous reports whether the owner has no remote identity.
func (o Owner) IsAnonymous() bool { return o.ID == "" }

// ArtifactStatus is the queue lifecycle state of an artifact. There is no
// terminal failed state: failed attempts leave the record pending with
// bookkeeping updated, and only the user deletes records.
type ArtifactStatus string

const (
	StatusPending  ArtifactStatus = "pending"
	StatusUploaded ArtifactStatus = "uploaded"
)

// PendingArtifact is one record in the local durable queue.
//
// LocalID is the primary identity before any remote identity exists.
// CloudID stays nil until a successful remote write; its presence is the
// idempotency marker that prevents re-uploads across retries and restarts.
type PendingArtifact struct {
	LocalID     int64
	Kind        ArtifactKind
	Payload     Payload
	Owner       Owner
	CreatedAt   time.Time
	Status      ArtifactStatus
	RetryCount  int
	LastRetryAt *time.Time
	CloudID     *string
}

// Uploaded reports whether the artifact already has a remote identity.
func (a *PendingArtifact) Uploaded() bool { return a.CloudID != nil }
