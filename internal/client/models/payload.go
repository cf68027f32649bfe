// Package models defines the artifact payload types tracked by the offline
// queue and the normalization boundary for legacy export shapes.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/trailfield/trailfield/internal/common"
)

// ArtifactKind classifies what a queued artifact is.
type ArtifactKind string

const (
	KindRoute ArtifactKind = "route"
	KindGuide ArtifactKind = "guide"
)

// EntryType classifies a single item in a route's ordered trace.
type EntryType string

const (
	EntryTypeLocation EntryType = "location"
	EntryTypeText     EntryType = "text"
	EntryTypePhoto    EntryType = "photo"
)

// TrackEntry is one point/note/photo in a payload's ordered sequence.
//
// For photos, Content is either inline base64-encoded image data
// (pre-externalization) or an external blob URL (post-externalization).
// The transition is one-directional: once a URL, never inline again.
type TrackEntry struct {
	Type       EntryType `json:"type"`
	Content    string    `json:"content,omitempty"`
	Lat        float64   `json:"lat,omitempty"`
	Lon        float64   `json:"lon,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// IsExternalized reports whether the entry's content already lives in blob
// storage. Derived from the content shape, never stored.
func (e TrackEntry) IsExternalized() bool {
	return strings.HasPrefix(e.Content, "http://") || strings.HasPrefix(e.Content, "https://")
}

// Payload is the structured document for a route trace or a derived guide.
type Payload struct {
	Kind    ArtifactKind `json:"kind"`
	Title   string       `json:"title"`
	Notes   string       `json:"notes,omitempty"`
	Entries []TrackEntry `json:"entries"`
}

// Serialize renders the payload as it would be written to the document store.
func (p Payload) Serialize() ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("serialize payload: %w", err)
	}
	return b, nil
}

// InlinePhotoCount counts photo entries whose content has not been
// externalized yet.
func (p Payload) InlinePhotoCount() int {
	n := 0
	for _, e := range p.Entries {
		if e.Type == EntryTypePhoto && e.Content != "" && !e.IsExternalized() {
			n++
		}
	}
	return n
}

// legacyRoute is the shape older exports used: flat point/photo/note lists
// instead of one ordered entry sequence.
type legacyRoute struct {
	Name   string `json:"name"`
	Notes  string `json:"notes"`
	Points []struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"points"`
	Photos []string `json:"photos"`
}

// Normalize converts a raw saved document into the canonical tagged Payload.
// It accepts the current shape (has "kind") and the legacy route export
// (has "points"). Anything else is a malformed payload.
func Normalize(raw []byte) (Payload, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}

	if _, ok := probe["kind"]; ok {
		var p Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
		}
		switch p.Kind {
		case KindRoute, KindGuide:
			return p, nil
		default:
			return Payload{}, fmt.Errorf("%w: unknown kind %q", common.ErrMalformedPayload, p.Kind)
		}
	}

	if _, ok := probe["points"]; ok {
		var lr legacyRoute
		if err := json.Unmarshal(raw, &lr); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
		}
		p := Payload{Kind: KindRoute, Title: lr.Name, Notes: lr.Notes}
		for _, pt := range lr.Points {
			p.Entries = append(p.Entries, TrackEntry{Type: EntryTypeLocation, Lat: pt.Lat, Lon: pt.Lng})
		}
		for _, ph := range lr.Photos {
			p.Entries = append(p.Entries, TrackEntry{Type: EntryTypePhoto, Content: ph})
		}
		return p, nil
	}

	return Payload{}, fmt.Errorf("%w: unrecognized document shape", common.ErrMalformedPayload)
}
