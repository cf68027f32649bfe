package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/client/services"
)

// Sync drains the whole queue, or a single record when an id argument is
// given (with stage-by-stage progress).
func (a *App) Sync(ctx context.Context, args []string) error {
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("not a record id: %q", args[0])
		}
		return a.syncSingle(ctx, id)
	}

	report, err := a.syncService.SyncAll(ctx, a.owner)
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

func (a *App) syncSingle(ctx context.Context, id int64) error {
	events := make(chan services.StageEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			fmt.Printf("  [%3d%%] %s\n", ev.Percent, ev.Stage)
		}
	}()

	report, err := a.syncService.UploadOne(ctx, models.KindRoute, id, a.owner, events)
	close(events)
	<-done
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

func printReport(r services.Report) {
	if r.Skipped != services.SkipNone {
		switch r.Skipped {
		case services.SkipNotAuthenticated:
			fmt.Println("Sync needs a signed-in account; use 'login' first.")
		case services.SkipOffline:
			fmt.Println("Offline; records stay queued until connectivity returns.")
		case services.SkipAlreadyRunning:
			fmt.Println("A sync pass is already running.")
		}
		return
	}

	fmt.Printf("Sync finished: %d uploaded, %d failed, %d already uploaded (of %d examined)\n",
		r.Uploaded, r.Failed, r.AlreadyUploaded, r.Examined)
	if r.Failed > 0 {
		fmt.Println("Failed records stay queued and will be retried on the next sync.")
	}
}

// Status prints the identity line plus queue depth.
func (a *App) Status(ctx context.Context) error {
	pending, err := a.queue.PendingCount(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("user: %s  mode: %s  pending: %d\n", ownerLabel(a.owner), a.mode(), pending)
	return nil
}
