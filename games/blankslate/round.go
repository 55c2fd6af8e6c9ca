/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

import "strings"

// Round holds the answers collected for the phrase currently in play.
// It is owned by a Room and only touched under the room's lock.
type Round struct {
	number  int
	phrase  string
	answers []Answer
}

func newRound(number int, phrase string) *Round {
	return &Round{
		number: number,
		phrase: phrase,
	}
}

func normalizeAnswer(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func (r *Round) answered(player string) bool {
	for _, a := range r.answers {
		if a.Player == player {
			return true
		}
	}

	return false
}

// record stores a normalized answer. A second answer from the same player
// is rejected and leaves the round untouched.
func (r *Round) record(player, raw string) error {
	if r.answered(player) {
		return ErrDuplicateAnswer
	}

	r.answers = append(r.answers, Answer{
		Player: player,
		Word:   normalizeAnswer(raw),
	})

	return nil
}

func (r *Round) count() int {
	return len(r.answers)
}

// Answers returns a copy of the answers in arrival order.
func (r *Round) Answers() []Answer {
	out := make([]Answer, len(r.answers))
	copy(out, r.answers)

	return out
}

func (r *Round) answeredPlayers() []string {
	names := make([]string, 0, len(r.answers))
	for _, a := range r.answers {
		names = append(names, a.Player)
	}

	return names
}
