package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
)

// Login prompts for the identity token, exchanges it for a session and starts
// the live change feed. Pending image operations are drained right away so a
// fresh session picks up work left over from the previous one.
func (a *App) Login(ctx context.Context) error {

	token, err := GetHiddenText("Identity token", a.out)
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Fprintln(a.out, "Sign-in cancelled")
		return nil
	}

	userID, err := a.auth.SignIn(ctx, token)
	if err != nil {
		fmt.Fprintln(a.out, "Sign-in failed:", err)
		return err
	}

	fmt.Fprintln(a.out, "Signed in as", userID)

	if err := a.feed.Start(ctx, a.onNoteChange); err != nil {
		a.logger.Warn(ctx, "Change feed unavailable", "error", err.Error())
	}

	go func() {
		if err := a.drainer.Drain(ctx); err != nil {
			a.logger.Warn(ctx, "Pending image operations not drained", "error", err.Error())
		}
	}()

	return nil
}

// Logout stops the feed and drops the session. Ledger rows survive so pending
// image work resumes on the next sign-in.
func (a *App) Logout(ctx context.Context) error {
	a.feed.Stop()
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) onNoteChange(c api.NoteChange) {
	fmt.Fprintf(a.out, "* note %s %s\n", c.NoteID, c.Action)
}
