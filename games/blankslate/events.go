/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

// Inbound event names.
const (
	EventJoinRoom     = "join_room"
	EventSubmitAnswer = "submit_answer"
)

// Outbound event names.
const (
	EventUpdateLeaderboard = "update_leaderboard"
	EventNewPhrase         = "new_phrase"
	EventRoundEnd          = "round_end"
	EventGameOver          = "game_over"
)

// Emitter delivers an outbound event to every connection in a room.
// Implementations must not block; rooms call Emit while holding their lock.
type Emitter interface {
	Emit(room, event string, payload any)
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(room, event string, payload any)

func (f EmitterFunc) Emit(room, event string, payload any) {
	f(room, event, payload)
}

type JoinRoomMessage struct {
	Name string `json:"name"`
	Room string `json:"room"`
}

type SubmitAnswerMessage struct {
	Name   string `json:"name"`
	Room   string `json:"room"`
	Answer string `json:"answer"`
}

type LeaderboardMessage struct {
	Scores map[string]int `json:"scores"`
}

type NewPhraseMessage struct {
	Phrase string `json:"phrase"`
}

type RoundEndMessage struct {
	Leader string `json:"leader"`
	Phrase string `json:"phrase"`
}

// GameOverWinnersMessage is sent when one or more players reach the win score.
type GameOverWinnersMessage struct {
	Scores  map[string]int `json:"scores"`
	Winners []string       `json:"winners"`
}

// GameOverWinnerMessage is sent when the phrases run out before anyone wins.
type GameOverWinnerMessage struct {
	Scores map[string]int `json:"scores"`
	Winner string         `json:"winner"`
}
