// Package guide turns a recorded route into a shareable trail guide.
// Rendering is pure: the same payload and metadata always produce the
// same document.
package guide

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/trailfield/trailfield/internal/client/models"
)

// Meta carries the route context that is not part of the payload itself.
type Meta struct {
	Author      string
	GeneratedAt time.Time
}

// Document is a rendered trail guide in both source and display form.
type Document struct {
	Title    string
	Markdown string
	HTML     string
}

var md = goldmark.New()

// Render builds a markdown guide from the route's entries and converts
// it to HTML. Only route payloads produce guides.
func Render(payload models.Payload, meta Meta) (Document, error) {
	if payload.Kind != models.KindRoute {
		return Document{}, fmt.Errorf("cannot render guide for %q payload", payload.Kind)
	}

	title := payload.Title
	if title == "" {
		title = "Untitled route"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if meta.Author != "" {
		fmt.Fprintf(&b, "Recorded by %s", meta.Author)
		if !meta.GeneratedAt.IsZero() {
			fmt.Fprintf(&b, " on %s", meta.GeneratedAt.Format("2 January 2006"))
		}
		b.WriteString("\n\n")
	}
	if payload.Notes != "" {
		fmt.Fprintf(&b, "%s\n\n", payload.Notes)
	}

	waypoint := 0
	for _, entry := range payload.Entries {
		switch entry.Type {
		case models.EntryTypeLocation:
			waypoint++
			fmt.Fprintf(&b, "## Waypoint %d\n\n%.5f, %.5f\n\n", waypoint, entry.Lat, entry.Lon)
		case models.EntryTypeText:
			fmt.Fprintf(&b, "%s\n\n", entry.Content)
		case models.EntryTypePhoto:
			if entry.IsExternalized() {
				fmt.Fprintf(&b, "![photo](%s)\n\n", entry.Content)
			}
			// inline photos are omitted: the guide links blobs, it does
			// not embed megabytes of base64
		}
	}

	var html bytes.Buffer
	if err := md.Convert([]byte(b.String()), &html); err != nil {
		return Document{}, fmt.Errorf("render guide html: %w", err)
	}

	return Document{Title: title, Markdown: b.String(), HTML: html.String()}, nil
}
