/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type State int

const (
	StateWaiting State = iota
	StateInRound
	StateScoring
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateInRound:
		return "in_round"
	case StateScoring:
		return "scoring"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Room is a single game instance. Every exported method takes the room's
// lock, so operations on one room are serialized while different rooms
// proceed independently.
type Room struct {
	code     string
	settings Settings
	emitter  Emitter
	log      zerolog.Logger
	rng      *rand.Rand

	mu         sync.Mutex
	state      State
	started    bool
	players    []string // join order
	scores     map[string]int
	phrases    []string
	index      int
	round      *Round
	timer      *time.Timer
	createdAt  time.Time
	lastActive time.Time
}

// Snapshot is a point-in-time copy of a room's public state.
type Snapshot struct {
	Code       string         `json:"code"`
	State      State          `json:"state"`
	Players    []string       `json:"players"`
	Scores     map[string]int `json:"scores"`
	Round      int            `json:"round"`
	Rounds     int            `json:"rounds"`
	Phrase     string         `json:"phrase,omitempty"`
	Answered   []string       `json:"answered"`
	CreatedAt  time.Time      `json:"created_at"`
	LastActive time.Time      `json:"last_active"`
}

func newRoom(code string, settings Settings, emitter Emitter, logger zerolog.Logger) *Room {
	now := time.Now()

	return &Room{
		code:       code,
		settings:   settings,
		emitter:    emitter,
		log:        logger.With().Str("room", code).Logger(),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		state:      StateWaiting,
		scores:     make(map[string]int),
		createdAt:  now,
		lastActive: now,
	}
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastActive
}

func (r *Room) touch() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActive = time.Now()
}

// Join adds name to the roster unless it is already there, broadcasts the
// leaderboard and starts the game once the roster first reaches the
// configured size. Players joining after the start begin at zero and take
// part in the following rounds. The returned leaderboard is a copy.
func (r *Room) Join(name string) (map[string]int, error) {
	if name == "" {
		return nil, ErrMissingField
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActive = time.Now()

	if _, ok := r.scores[name]; !ok {
		r.players = append(r.players, name)
		r.scores[name] = 0

		r.log.Info().Str("player", name).Int("players", len(r.players)).Msg("player joined")
	}

	r.emitLeaderboardLocked()

	if !r.started && len(r.players) == r.settings.PlayersPerRoom {
		r.startLocked()
	}

	return r.scoresLocked(), nil
}

// SubmitAnswer records a player's answer for the current round. Answers from
// players outside the roster, repeated answers and answers outside of a
// round are rejected without changing any state.
func (r *Room) SubmitAnswer(name, raw string) error {
	if name == "" {
		return ErrMissingField
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scores[name]; !ok {
		return ErrUnknownPlayer
	}

	if r.state != StateInRound {
		return ErrNotInRound
	}

	if err := r.round.record(name, raw); err != nil {
		return err
	}

	r.lastActive = time.Now()

	r.log.Debug().Str("player", name).Int("round", r.round.number).Msg("answer received")

	if r.round.count() == len(r.players) {
		r.completeRoundLocked()
	}

	return nil
}

// Snapshot returns a copy of the room's state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Code:       r.code,
		State:      r.state,
		Players:    append([]string{}, r.players...),
		Scores:     r.scoresLocked(),
		Rounds:     len(r.phrases),
		Answered:   []string{},
		CreatedAt:  r.createdAt,
		LastActive: r.lastActive,
	}

	if r.round != nil && r.state == StateInRound {
		s.Round = r.round.number
		s.Phrase = r.round.phrase
		s.Answered = r.round.answeredPlayers()
	}

	return s
}

// Close stops any pending round timer.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopTimerLocked()
}

// startLocked samples the phrases for this game and opens the first round.
func (r *Room) startLocked() {
	if len(r.players) == 0 {
		return
	}

	r.started = true

	n := r.settings.PhrasesPerGame()
	r.phrases = make([]string, 0, n)
	for _, i := range r.rng.Perm(len(r.settings.Phrases))[:n] {
		r.phrases = append(r.phrases, r.settings.Phrases[i])
	}
	r.index = 0
	r.round = nil

	r.log.Info().Int("players", len(r.players)).Int("rounds", n).Msg("game started")

	r.emitLeaderboardLocked()
	r.advanceOrEndLocked()
}

// advanceOrEndLocked ends the game if anyone reached the win score, opens the
// next round if phrases remain, or otherwise ends the game with the single
// highest scorer as the winner.
func (r *Room) advanceOrEndLocked() {
	var winners []string
	for _, name := range r.players {
		if r.scores[name] >= r.settings.WinScore {
			winners = append(winners, name)
		}
	}

	if len(winners) > 0 {
		r.finishLocked()

		r.log.Info().Strs("winners", winners).Msg("game over")

		r.emitter.Emit(r.code, EventGameOver, GameOverWinnersMessage{
			Scores:  r.scoresLocked(),
			Winners: winners,
		})

		return
	}

	if r.index < len(r.phrases) {
		r.round = newRound(r.index+1, r.phrases[r.index])
		r.state = StateInRound

		if r.settings.RoundTimeout > 0 {
			number := r.round.number
			r.timer = time.AfterFunc(r.settings.RoundTimeout, func() {
				r.expireRound(number)
			})
		}

		r.emitter.Emit(r.code, EventNewPhrase, NewPhraseMessage{
			Phrase: r.round.phrase,
		})

		return
	}

	r.finishLocked()

	winner := r.leaderLocked()

	r.log.Info().Str("winner", winner).Msg("game over, phrases exhausted")

	r.emitter.Emit(r.code, EventGameOver, GameOverWinnerMessage{
		Scores: r.scoresLocked(),
		Winner: winner,
	})
}

func (r *Room) completeRoundLocked() {
	r.stopTimerLocked()
	r.state = StateScoring

	for name, delta := range ScoreRound(r.round.answers, r.players) {
		if _, ok := r.scores[name]; ok {
			r.scores[name] += delta
		}
	}

	r.log.Info().Int("round", r.round.number).Str("phrase", r.round.phrase).Msg("round complete")

	r.emitLeaderboardLocked()
	r.emitter.Emit(r.code, EventRoundEnd, RoundEndMessage{
		Leader: r.leaderLocked(),
		Phrase: r.round.phrase,
	})

	r.index++
	r.advanceOrEndLocked()
}

// expireRound scores round number with whatever answers have arrived.
func (r *Room) expireRound(number int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateInRound || r.round == nil || r.round.number != number {
		return
	}

	r.timer = nil

	r.log.Info().Int("round", number).Int("answers", r.round.count()).Msg("round timed out")

	r.completeRoundLocked()
}

func (r *Room) finishLocked() {
	r.stopTimerLocked()
	r.state = StateFinished
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// leaderLocked returns the highest scorer; ties go to the earliest joiner.
func (r *Room) leaderLocked() string {
	leader := ""
	best := -1
	for _, name := range r.players {
		if score := r.scores[name]; score > best {
			leader = name
			best = score
		}
	}

	return leader
}

func (r *Room) scoresLocked() map[string]int {
	scores := make(map[string]int, len(r.scores))
	for name, score := range r.scores {
		scores[name] = score
	}

	return scores
}

func (r *Room) emitLeaderboardLocked() {
	r.emitter.Emit(r.code, EventUpdateLeaderboard, LeaderboardMessage{
		Scores: r.scoresLocked(),
	})
}
