// Package leaderboard holds the top-N score list shared by the game client and
// the leaderboard service: the entry types, local top-N maintenance, an HTTP
// client and the Bridge that falls back to a local list when the service fails.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tomz197/tempest/internal/loop/config"
)

var (
	// ErrRejected is returned when the service refused a submission.
	ErrRejected = errors.New("leaderboard: submission rejected")
	// ErrUnavailable is returned when the service could not be reached or answered badly.
	ErrUnavailable = errors.New("leaderboard: service unavailable")
)

// RejectionError carries the service's reason for refusing a submission.
// It matches ErrRejected.
type RejectionError struct {
	Message string
	Status  int
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%v: %s (%d)", ErrRejected, e.Message, e.Status)
}

func (e *RejectionError) Is(target error) bool { return target == ErrRejected }

// Entry is one leaderboard row.
type Entry struct {
	Initials string `json:"initials"`
	Score    int    `json:"score"`
}

// Result is the outcome of a submission.
type Result struct {
	Success     bool    `json:"success"`
	Rank        *int    `json:"rank"` // 0-based, nil when the entry did not make the list
	Leaderboard []Entry `json:"leaderboard,omitempty"`
	Message     string  `json:"message,omitempty"`
	Local       bool    `json:"-"` // Computed without the service
}

// Defaults returns the seed list used when nothing is stored yet.
func Defaults() []Entry {
	return []Entry{
		{Initials: "CPU", Score: 5000},
		{Initials: "BOT", Score: 4000},
		{Initials: "AI", Score: 3000},
		{Initials: "PRO", Score: 2000},
		{Initials: "MAX", Score: 1000},
	}
}

// NormalizeInitials uppercases s and keeps at most three runes.
func NormalizeInitials(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if utf8.RuneCountInString(s) <= config.MaxInitials {
		return s
	}
	return string([]rune(s)[:config.MaxInitials])
}

// Insert adds e to a copy of entries, sorts by score descending (stable, so the
// new entry goes after equal scores), truncates to size and returns the list
// with the rank of the first entry equal to e.
func Insert(entries []Entry, e Entry, size int) ([]Entry, *int) {
	list := make([]Entry, 0, len(entries)+1)
	list = append(list, entries...)
	list = append(list, e)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
	if len(list) > size {
		list = list[:size]
	}
	return list, Rank(list, e)
}

// Rank returns the 0-based index of the first entry equal to e, or nil.
func Rank(entries []Entry, e Entry) *int {
	for i, x := range entries {
		if x == e {
			return &i
		}
	}
	return nil
}

// Qualifies reports whether score would enter a list of the given size.
func Qualifies(entries []Entry, score, size int) bool {
	return len(entries) < size || score > entries[len(entries)-1].Score
}

// MinimumQualifyingScore is the score to beat, 0 while the list has room.
func MinimumQualifyingScore(entries []Entry, size int) int {
	if len(entries) < size {
		return 0
	}
	return entries[len(entries)-1].Score
}
