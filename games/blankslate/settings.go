/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

import "time"

const (
	DefaultPlayersPerRoom  = 4
	DefaultWinScore        = 25
	DefaultMaxDisplayScore = 25
	DefaultRoundsPerGame   = 11
)

// DefaultPhrases is the built-in phrase pool. An underscore marks the blank.
var DefaultPhrases = []string{
	"hand_",
	"_belly",
	"card_",
	"holy_",
	"ear_",
	"black_",
	"_cream",
	"nail_",
	"frost_",
	"pink_",
	"baby_",
}

// Settings holds the operator-tunable rules shared by every room.
type Settings struct {
	PlayersPerRoom  int           `json:"players_per_room"`
	WinScore        int           `json:"win_score"`
	MaxDisplayScore int           `json:"max_display_score"`
	RoundsPerGame   int           `json:"rounds_per_game"`
	RoundTimeout    time.Duration `json:"round_timeout"`
	Phrases         []string      `json:"-"`
}

func DefaultSettings() Settings {
	return Settings{
		PlayersPerRoom:  DefaultPlayersPerRoom,
		WinScore:        DefaultWinScore,
		MaxDisplayScore: DefaultMaxDisplayScore,
		RoundsPerGame:   DefaultRoundsPerGame,
		Phrases:         DefaultPhrases,
	}
}

// PhrasesPerGame is min(len(Phrases), RoundsPerGame).
func (s Settings) PhrasesPerGame() int {
	return min(len(s.Phrases), s.RoundsPerGame)
}
