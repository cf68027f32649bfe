package models

import "time"

// EmailBackupRecord mirrors an artifact into the secondary email channel.
// Records that exhaust their retry budget stay in the store unsent so a
// human can still export them; they are just excluded from future passes.
type EmailBackupRecord struct {
	ID         int64
	Kind       ArtifactKind
	Snapshot   []byte
	CreatedAt  time.Time
	Sent       bool
	RetryCount int
}
