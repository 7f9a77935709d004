package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if id := a.auth.UserID(); id != "" {
		s = id + " "
	}
	if a.observer.Current().Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// Root drives the interactive session. It prompts for a sign-in first and
// then hands off to the command loop.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to MoodNotes CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	_ = a.Login(ctx)

	runREPL(ctx, a, a.getStatus, scanner)
}
