package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/models"
)

const dayFormat = "2006-01-02"

// List prints every note of the signed-in user grouped by calendar day.
func (a *App) List(ctx context.Context) error {
	return a.render(ctx, a.store.GetAll(ctx))
}

// Day prints the notes of one calendar day. The argument is a local date in
// YYYY-MM-DD form.
func (a *App) Day(ctx context.Context, arg string) error {

	day, err := time.ParseInLocation(dayFormat, arg, time.Local)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid date, expected YYYY-MM-DD:", arg)
		return err
	}

	return a.render(ctx, a.store.GetFiltered(ctx, day))
}

// render drains one request-state stream and prints the settled result.
func (a *App) render(ctx context.Context, states <-chan models.RequestState[[]models.GroupedNotes]) error {

	for state := range states {
		switch {
		case state.IsError():
			fmt.Fprintln(a.out, "Error:", state.Err)
			return state.Err
		case state.IsSuccess():
			a.printGroups(state.Data)
			return nil
		}
	}
	return nil
}

func (a *App) printGroups(groups []models.GroupedNotes) {
	if len(groups) == 0 {
		fmt.Fprintln(a.out, "No notes yet")
		return
	}

	for _, g := range groups {
		fmt.Fprintln(a.out, g.Day.Format("Mon, 02 Jan 2006"))
		for _, n := range g.Notes {
			line := fmt.Sprintf("  [%s] %s  %s", n.ID, n.Mood, n.Title)
			if len(n.Images) > 0 {
				line += fmt.Sprintf(" (%d images)", len(n.Images))
			}
			fmt.Fprintln(a.out, line)
			if n.Description != "" {
				fmt.Fprintln(a.out, "      "+n.Description)
			}
		}
	}
}
