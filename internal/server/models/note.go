package models

import "time"

// Note is a journal entry row. The remote store assigns ID on insert; every
// persisted note carries a non-empty OwnerID and is only visible to queries
// scoped to that owner.
type Note struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Mood        string    `json:"mood"`
	Date        time.Time `json:"date"`
	Images      []string  `json:"images"`
}
