// Package models defines the client-side note types and view states.
package models

import (
	"time"
)

// Note mirrors the server document. ID is empty until the server assigns one.
type Note struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Mood        string    `json:"mood"`
	Date        time.Time `json:"date"`
	Images      []string  `json:"images"`
}

// GroupedNotes is one calendar day of notes in the viewer's zone, newest day
// first in a listing.
type GroupedNotes struct {
	Day   time.Time
	Notes []Note
}

// GroupByDay buckets notes by calendar day in loc, preserving the incoming
// (newest first) order within and across groups.
func GroupByDay(notes []Note, loc *time.Location) []GroupedNotes {
	if loc == nil {
		loc = time.Local
	}

	var result []GroupedNotes
	index := make(map[time.Time]int)

	for _, n := range notes {
		local := n.Date.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

		i, ok := index[day]
		if !ok {
			result = append(result, GroupedNotes{Day: day})
			i = len(result) - 1
			index[day] = i
		}
		result[i].Notes = append(result[i].Notes, n)
	}

	return result
}

// DayWindow returns the half-open interval [midnight(day), midnight(day+1))
// in loc, for the day that contains the given instant.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}
