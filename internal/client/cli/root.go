package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if !a.owner.IsAnonymous() {
		s = ownerLabel(a.owner) + " "
	}
	s = s + string(a.mode())
	return fmt.Sprintf("(%s)", s)
}

// drainNotifications prints a reconnect hint when connectivity came back
// with records still queued. Informational only; nothing uploads until
// the user types 'sync'.
func (a *App) drainNotifications() {
	select {
	case n := <-a.syncService.Notifications():
		fmt.Printf("Back online: %d record(s) pending — type 'sync' to upload.\n", n.PendingCount)
	default:
	}
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to Trailfield CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		a.drainNotifications()
		fmt.Printf("tf %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			fmt.Println("Available commands: addroute, addnote, addphoto, list, show, delete, sync [id], status, register, login, logout, exit")

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "addroute":
			err = a.AddRoute(ctx)
		case "addnote":
			err = a.AddNote(ctx)
		case "addphoto":
			err = a.AddPhoto(ctx)
		case "list":
			err = a.List(ctx)
		case "show":
			err = a.Show(ctx)
		case "delete":
			err = a.Delete(ctx)
		case "sync":
			err = a.Sync(ctx, args)
		case "status":
			err = a.Status(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}

		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}
