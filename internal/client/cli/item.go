package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/filex"
)

// AddRoute collects a route interactively and queues it locally. The
// save never touches the network.
func (a *App) AddRoute(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter route title", os.Stdout)
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Enter notes (double Enter to finish):", os.Stdout)
	if err != nil {
		return err
	}
	points, err := GetWaypoints(a.reader, os.Stdout)
	if err != nil {
		return err
	}

	payload := models.Payload{Kind: models.KindRoute, Title: title, Notes: notes}
	for _, p := range points {
		payload.Entries = append(payload.Entries, models.TrackEntry{
			Type: models.EntryTypeLocation, Lat: p[0], Lon: p[1],
		})
	}

	id, err := a.queue.Save(ctx, payload, a.owner)
	if err != nil {
		return err
	}
	fmt.Printf("Saved locally as #%d (pending upload)\n", id)
	return nil
}

// AddNote appends a text entry to a queued route.
func (a *App) AddNote(ctx context.Context) error {
	id, err := a.promptLocalID()
	if err != nil {
		return err
	}
	text, err := GetMultiline(a.reader, "Enter note text (double Enter to finish):", os.Stdout)
	if err != nil {
		return err
	}

	entry := models.TrackEntry{Type: models.EntryTypeText, Content: text}
	return a.queue.AppendEntry(ctx, models.KindRoute, id, entry)
}

// AddPhoto reads a local image file and appends it inline to a queued
// route. Large payloads are externalized later, at upload time.
func (a *App) AddPhoto(ctx context.Context) error {
	id, err := a.promptLocalID()
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Enter photo file path", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}

	entry := models.TrackEntry{
		Type:    models.EntryTypePhoto,
		Content: base64.StdEncoding.EncodeToString(data),
	}
	if err := a.queue.AppendEntry(ctx, models.KindRoute, id, entry); err != nil {
		return err
	}
	fmt.Printf("Attached %s (%d bytes)\n", filepath.Base(path), len(data))
	return nil
}

// List prints one line per queued route, newest status included.
func (a *App) List(ctx context.Context) error {
	items, err := a.queue.List(ctx, models.KindRoute)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("Queue is empty.")
		return nil
	}

	for _, item := range items {
		line := fmt.Sprintf("#%d  %-25s %-9s entries:%d retries:%d",
			item.LocalID, item.Payload.Title, item.Status, len(item.Payload.Entries), item.RetryCount)
		if item.CloudID != nil {
			line += "  cloud:" + *item.CloudID
		}
		fmt.Println(line)
	}
	return nil
}

// Show prints one record in detail. Guide records additionally get their
// HTML exported next to the binary for sharing.
func (a *App) Show(ctx context.Context) error {
	id, err := a.promptLocalID()
	if err != nil {
		return err
	}

	item, err := a.queue.Get(ctx, models.KindRoute, id)
	if err != nil {
		item, err = a.queue.Get(ctx, models.KindGuide, id)
		if err != nil {
			return err
		}
	}

	fmt.Printf("#%d %s [%s]\n", item.LocalID, item.Payload.Title, item.Status)
	fmt.Printf("created: %s  owner: %s\n", item.CreatedAt.Format("2006-01-02 15:04"), ownerLabel(item.Owner))
	if item.CloudID != nil {
		fmt.Printf("cloud id: %s\n", *item.CloudID)
	}
	if item.Payload.Notes != "" && item.Kind == models.KindRoute {
		fmt.Printf("notes: %s\n", item.Payload.Notes)
	}
	for i, e := range item.Payload.Entries {
		switch e.Type {
		case models.EntryTypeLocation:
			fmt.Printf("  %d. waypoint %.5f,%.5f\n", i+1, e.Lat, e.Lon)
		case models.EntryTypeText:
			fmt.Printf("  %d. note: %s\n", i+1, e.Content)
		case models.EntryTypePhoto:
			if e.IsExternalized() {
				fmt.Printf("  %d. photo: %s\n", i+1, e.Content)
			} else {
				fmt.Printf("  %d. photo: (inline, %d bytes)\n", i+1, len(e.Content))
			}
		}
	}

	if item.Kind == models.KindGuide {
		dir, err := filex.EnsureSubdDir("export")
		if err != nil {
			return err
		}
		out := filepath.Join(dir, fmt.Sprintf("guide-%d.html", item.LocalID))
		if err := os.WriteFile(out, []byte(item.Payload.Notes), 0o600); err != nil {
			return err
		}
		fmt.Printf("Guide HTML exported to %s\n", out)
	}
	return nil
}

// Delete removes a queued record after explicit confirmation. This is
// the only way data leaves the device unsynced.
func (a *App) Delete(ctx context.Context) error {
	id, err := a.promptLocalID()
	if err != nil {
		return err
	}

	item, err := a.queue.Get(ctx, models.KindRoute, id)
	if err != nil {
		return err
	}
	if !item.Uploaded() {
		answer, err := getSimpleText(a.reader,
			fmt.Sprintf("#%d %q was never uploaded; it will be lost forever. Type yes to delete", id, item.Payload.Title), os.Stdout)
		if err != nil {
			return err
		}
		if answer != "yes" {
			fmt.Println("Kept.")
			return nil
		}
	}

	return a.queue.Delete(ctx, models.KindRoute, id)
}

func (a *App) promptLocalID() (int64, error) {
	raw, err := getSimpleText(a.reader, "Enter record id", os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a record id: %q", raw)
	}
	return id, nil
}

func ownerLabel(o models.Owner) string {
	if o.IsAnonymous() {
		return "anonymous"
	}
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Email
}
