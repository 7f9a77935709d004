package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/moodnotes/internal/client/models"
	"github.com/dmitrijs2005/moodnotes/internal/client/services"
	"github.com/dmitrijs2005/moodnotes/internal/mood"
)

// Add walks the user through a new note. Image uploads that fail are queued
// for retry, so the note itself is saved either way.
func (a *App) Add(ctx context.Context) error {

	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}

	m, err := a.getMood(mood.Neutral)
	if err != nil {
		return err
	}

	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}

	images, err := GetList(a.reader, "Image files (comma separated, empty for none)", a.out)
	if err != nil {
		return err
	}

	draft := &services.Draft{
		Title:       title,
		Description: description,
		Mood:        string(m),
		AddImages:   localImages(images),
	}

	saved, err := a.editor.Save(ctx, draft)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	fmt.Fprintln(a.out, "Saved note", saved.ID)
	return nil
}

// Edit updates an existing note. Empty answers keep the current value; the
// stored timestamp is preserved.
func (a *App) Edit(ctx context.Context, id string) error {

	session, err := a.editor.Open(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	note := session.Note

	fmt.Fprintf(a.out, "Editing [%s] %s (%s)\n", note.ID, note.Title, note.Mood)
	for _, img := range session.Images {
		fmt.Fprintf(a.out, "  image %s -> %s\n", img.RemotePath, img.DisplayURL)
	}

	title, err := GetSimpleText(a.reader, "Title (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if title == "" {
		title = note.Title
	}

	moodLine, err := GetSimpleText(a.reader, "Mood (empty to keep): "+moodChoices(), a.out)
	if err != nil {
		return err
	}
	m := note.Mood
	if moodLine != "" {
		parsed, perr := mood.Parse(moodLine)
		if perr != nil {
			fmt.Fprintln(a.out, "Unknown mood:", moodLine)
			return perr
		}
		m = string(parsed)
	}

	description, err := GetSimpleText(a.reader, "Description (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if description == "" {
		description = note.Description
	}

	addImages, err := GetList(a.reader, "Add image files (comma separated, empty for none)", a.out)
	if err != nil {
		return err
	}

	removeImages, err := GetList(a.reader, "Remove image paths (comma separated, empty for none)", a.out)
	if err != nil {
		return err
	}

	draft := &services.Draft{
		BoundID:      note.ID,
		Title:        title,
		Description:  description,
		Mood:         m,
		AddImages:    localImages(addImages),
		KeepImages:   keptImages(note.Images, removeImages),
		RemoveImages: removeImages,
	}

	saved, err := a.editor.Save(ctx, draft)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	fmt.Fprintln(a.out, "Updated note", saved.ID)
	return nil
}

// Delete removes a note and its images.
func (a *App) Delete(ctx context.Context, id string) error {

	if err := a.editor.Delete(ctx, id); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	fmt.Fprintln(a.out, "Deleted note", id)
	return nil
}

// DeleteAll removes every note of the signed-in user after a confirmation.
func (a *App) DeleteAll(ctx context.Context) error {

	answer, err := GetSimpleText(a.reader, "Delete ALL notes? Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.store.DeleteAll(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	fmt.Fprintln(a.out, "All notes deleted")
	return nil
}

func (a *App) getMood(def mood.Mood) (mood.Mood, error) {

	line, err := GetSimpleText(a.reader, "Mood: "+moodChoices(), a.out)
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}

	m, err := mood.Parse(line)
	if err != nil {
		fmt.Fprintln(a.out, "Unknown mood:", line)
		return "", err
	}
	return m, nil
}

func moodChoices() string {
	names := make([]string, 0, len(mood.All))
	for _, m := range mood.All {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

func localImages(uris []string) []models.GalleryImage {
	images := make([]models.GalleryImage, 0, len(uris))
	for _, uri := range uris {
		images = append(images, models.GalleryImage{LocalURI: uri})
	}
	return images
}

// keptImages returns the note's images minus the ones marked for removal.
func keptImages(current, removed []string) []string {
	drop := make(map[string]struct{}, len(removed))
	for _, p := range removed {
		drop[p] = struct{}{}
	}

	var kept []string
	for _, p := range current {
		if _, ok := drop[p]; !ok {
			kept = append(kept, p)
		}
	}
	return kept
}
