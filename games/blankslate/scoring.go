/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

const (
	pairPoints  = 15
	crowdPoints = 1
)

// Answer is one player's normalized answer for a round.
type Answer struct {
	Player string
	Word   string
}

// ScoreRound returns the point delta for every player in roster and every
// player that answered. Unique answers earn nothing, pairs earn the most,
// larger groups earn a single point, and a round where everybody wrote the
// same word earns nothing at all.
func ScoreRound(answers []Answer, roster []string) map[string]int {
	deltas := make(map[string]int, len(roster))
	for _, name := range roster {
		deltas[name] = 0
	}

	counts := make(map[string]int, len(answers))
	for _, a := range answers {
		if _, ok := deltas[a.Player]; !ok {
			deltas[a.Player] = 0
		}
		counts[a.Word]++
	}

	if len(counts) <= 1 {
		return deltas
	}

	for _, a := range answers {
		switch c := counts[a.Word]; {
		case c == 2:
			deltas[a.Player] += pairPoints
		case c > 2:
			deltas[a.Player] += crowdPoints
		}
	}

	return deltas
}
