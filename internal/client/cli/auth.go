package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/trailfield/trailfield/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and creates the account on the
// server. Registration needs connectivity; everything else works without.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	displayName, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, userName, password, email, displayName); err != nil {
		return err
	}

	fmt.Println("Success! You can now log in.")
	return nil
}

// Login authenticates online and caches the session so later offline
// starts keep the identity.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	owner, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		fmt.Printf("Login unsuccessful: %s\n", err.Error())
		return err
	}

	a.owner = owner
	fmt.Printf("Logged in as %s\n", owner.DisplayName)
	return nil
}

// Logout drops the cached session. Queued records stay on the device.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.owner = models.Anonymous
	fmt.Println("Logged out. Queued records stay on this device.")
	return nil
}
