// Package mood defines the closed set of mood tags a journal note can carry.
package mood

import "github.com/dmitrijs2005/moodnotes/internal/common"

// Mood is one of a fixed set of tags describing the tone of a note.
type Mood string

const (
	Neutral    Mood = "Neutral"
	Happy      Mood = "Happy"
	Angry      Mood = "Angry"
	Bored      Mood = "Bored"
	Calm       Mood = "Calm"
	Romantic   Mood = "Romantic"
	Lonely     Mood = "Lonely"
	Mysterious Mood = "Mysterious"
	Awful      Mood = "Awful"
	Surprised  Mood = "Surprised"
	Depressed  Mood = "Depressed"
	Humorous   Mood = "Humorous"
)

// All lists every valid mood, in display order.
var All = []Mood{
	Neutral, Happy, Angry, Bored, Calm, Romantic,
	Lonely, Mysterious, Awful, Surprised, Depressed, Humorous,
}

var valid = func() map[Mood]struct{} {
	m := make(map[Mood]struct{}, len(All))
	for _, v := range All {
		m[v] = struct{}{}
	}
	return m
}()

// Parse returns the Mood for s, or ErrInvalidMood if s is outside the set.
func Parse(s string) (Mood, error) {
	m := Mood(s)
	if _, ok := valid[m]; !ok {
		return "", common.ErrInvalidMood
	}
	return m, nil
}

// Valid reports whether m belongs to the closed set.
func Valid(m Mood) bool {
	_, ok := valid[m]
	return ok
}

func (m Mood) String() string { return string(m) }
