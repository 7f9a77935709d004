package cli

import (
	"context"
	"fmt"
)

// Images lists the signed-in user's uploaded image paths.
func (a *App) Images(ctx context.Context) error {

	paths, err := a.client.ListImages(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	if len(paths) == 0 {
		fmt.Fprintln(a.out, "No images")
		return nil
	}

	for _, p := range paths {
		fmt.Fprintln(a.out, p)
	}
	return nil
}

// Drain replays the pending image uploads and deletes right now instead of
// waiting for the next connectivity transition.
func (a *App) Drain(ctx context.Context) error {

	if err := a.drainer.Drain(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	fmt.Fprintln(a.out, "Pending image operations replayed")
	return nil
}
