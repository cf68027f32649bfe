package models

import "time"

// Record is one document in the remote store. Body is opaque JSON; the
// server enforces a size ceiling but never interprets the content.
type Record struct {
	ID         string
	OwnerID    string
	Collection string
	Body       []byte
	CreatedAt  time.Time
}
