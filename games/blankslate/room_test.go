package blankslate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomWaitsForFullRoster(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())

	for _, name := range []string{"P1", "P2", "P3"} {
		_, err := room.Join(name)
		require.NoError(t, err)
	}

	assert.Equal(t, StateWaiting, room.State())
	assert.Empty(t, rec.named(EventNewPhrase))
	assert.Len(t, rec.named(EventUpdateLeaderboard), 3)

	assert.ErrorIs(t, room.SubmitAnswer("P1", "cat"), ErrNotInRound)
}

func TestRoomStartsWhenFull(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())
	fillRoom(t, room)

	snap := room.Snapshot()
	assert.Equal(t, StateInRound, snap.State)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, 11, snap.Rounds)
	assert.Equal(t, []string{"P1", "P2", "P3", "P4"}, snap.Players)

	phrases := rec.named(EventNewPhrase)
	require.Len(t, phrases, 1)
	assert.Equal(t, "ABCD", phrases[0].room)
	assert.Equal(t, NewPhraseMessage{Phrase: snap.Phrase}, phrases[0].payload)
	assert.Contains(t, DefaultPhrases, snap.Phrase)

	events := rec.all()
	assert.Equal(t, EventUpdateLeaderboard, events[len(events)-2].event)
	assert.Equal(t, EventNewPhrase, events[len(events)-1].event)
}

func TestRoomSamplesDistinctPhrases(t *testing.T) {
	settings := testSettings()
	settings.RoundsPerGame = 5

	room, _ := newTestRoom(t, settings)
	fillRoom(t, room)

	room.mu.Lock()
	phrases := append([]string{}, room.phrases...)
	room.mu.Unlock()

	require.Len(t, phrases, 5)

	seen := map[string]bool{}
	for _, p := range phrases {
		assert.Contains(t, DefaultPhrases, p)
		assert.False(t, seen[p], "phrase %q sampled twice", p)
		seen[p] = true
	}
}

func TestRoomRejoinKeepsScore(t *testing.T) {
	room, _ := newTestRoom(t, testSettings())
	fillRoom(t, room)

	playRound(t, room, map[string]string{"P1": "x", "P2": "x", "P3": "y", "P4": "z"})

	scores, err := room.Join("P1")
	require.NoError(t, err)

	assert.Equal(t, 15, scores["P1"])
	assert.Equal(t, []string{"P1", "P2", "P3", "P4"}, room.Snapshot().Players)
}

func TestRoomJoinRequiresName(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())

	_, err := room.Join("")

	assert.ErrorIs(t, err, ErrMissingField)
	assert.Empty(t, rec.all())
}

func TestRoomThreeWayMatchScenario(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())
	fillRoom(t, room)
	first := room.Snapshot().Phrase
	rec.reset()

	playRound(t, room, map[string]string{"P1": "cat", "P2": "cat", "P3": "dog", "P4": "cat"})

	leaderboard := rec.named(EventUpdateLeaderboard)
	require.Len(t, leaderboard, 1)
	assert.Equal(t, LeaderboardMessage{Scores: map[string]int{"P1": 1, "P2": 1, "P3": 0, "P4": 1}}, leaderboard[0].payload)

	assert.Equal(t, RoundEndMessage{Leader: "P1", Phrase: first}, rec.last(t, EventRoundEnd).payload)

	events := rec.all()
	require.Len(t, events, 3)
	assert.Equal(t, EventUpdateLeaderboard, events[0].event)
	assert.Equal(t, EventRoundEnd, events[1].event)
	assert.Equal(t, EventNewPhrase, events[2].event)

	snap := room.Snapshot()
	assert.Equal(t, 2, snap.Round)
	assert.NotEqual(t, first, snap.Phrase)
}

func TestRoomPairMatchScenario(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())
	fillRoom(t, room)

	playRound(t, room, map[string]string{"P1": "x", "P2": "x", "P3": "y", "P4": "z"})

	assert.Equal(t, map[string]int{"P1": 15, "P2": 15, "P3": 0, "P4": 0}, room.Snapshot().Scores)
	assert.Equal(t, "P1", rec.last(t, EventRoundEnd).payload.(RoundEndMessage).Leader)
}

func TestRoomNormalizesAnswers(t *testing.T) {
	room, _ := newTestRoom(t, testSettings())
	fillRoom(t, room)

	playRound(t, room, map[string]string{"P1": "  Cat ", "P2": "CAT", "P3": "dog", "P4": "bird"})

	assert.Equal(t, map[string]int{"P1": 15, "P2": 15, "P3": 0, "P4": 0}, room.Snapshot().Scores)
}

func TestRoomDuplicateSubmissionIgnored(t *testing.T) {
	room, _ := newTestRoom(t, testSettings())
	fillRoom(t, room)

	require.NoError(t, room.SubmitAnswer("P1", "cat"))
	before := room.Snapshot()

	assert.ErrorIs(t, room.SubmitAnswer("P1", "dog"), ErrDuplicateAnswer)

	room.mu.Lock()
	answers := room.round.Answers()
	room.mu.Unlock()

	assert.Equal(t, []Answer{{Player: "P1", Word: "cat"}}, answers)
	assert.Equal(t, before.Answered, room.Snapshot().Answered)
}

func TestRoomUnknownPlayerIgnored(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())
	fillRoom(t, room)
	rec.reset()

	assert.ErrorIs(t, room.SubmitAnswer("P9", "cat"), ErrUnknownPlayer)
	assert.Empty(t, room.Snapshot().Answered)
	assert.Empty(t, rec.all())
}

func TestRoomWinnersOnThreshold(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())
	fillRoom(t, room)

	playRound(t, room, map[string]string{"P1": "x", "P2": "x", "P3": "y", "P4": "z"})
	assert.Empty(t, rec.named(EventGameOver))

	playRound(t, room, map[string]string{"P1": "a", "P2": "a", "P3": "b", "P4": "b"})

	over := rec.named(EventGameOver)
	require.Len(t, over, 1)
	assert.Equal(t, GameOverWinnersMessage{
		Scores:  map[string]int{"P1": 30, "P2": 30, "P3": 15, "P4": 15},
		Winners: []string{"P1", "P2"},
	}, over[0].payload)
	assert.Equal(t, StateFinished, room.State())

	assert.ErrorIs(t, room.SubmitAnswer("P1", "late"), ErrNotInRound)
}

func TestRoomWinnerOnExhaustion(t *testing.T) {
	settings := testSettings()
	settings.RoundsPerGame = 2

	room, rec := newTestRoom(t, settings)
	fillRoom(t, room)

	playRound(t, room, map[string]string{"P1": "a", "P2": "b", "P3": "c", "P4": "c"})
	playRound(t, room, map[string]string{"P1": "a", "P2": "b", "P3": "c", "P4": "d"})

	over := rec.named(EventGameOver)
	require.Len(t, over, 1)
	assert.Equal(t, GameOverWinnerMessage{
		Scores: map[string]int{"P1": 0, "P2": 0, "P3": 15, "P4": 15},
		Winner: "P3",
	}, over[0].payload)
	assert.Len(t, rec.named(EventNewPhrase), 2)
	assert.Len(t, rec.named(EventRoundEnd), 2)

	room.mu.Lock()
	assert.LessOrEqual(t, room.index, len(room.phrases))
	room.mu.Unlock()
}

func TestRoomExhaustionWithoutScores(t *testing.T) {
	settings := testSettings()
	settings.RoundsPerGame = 1

	room, rec := newTestRoom(t, settings)
	fillRoom(t, room)

	playRound(t, room, map[string]string{"P1": "same", "P2": "same", "P3": "same", "P4": "same"})

	assert.Equal(t, "P1", rec.last(t, EventGameOver).payload.(GameOverWinnerMessage).Winner)
}

func TestRoomLateJoiner(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())
	fillRoom(t, room)

	playRound(t, room, map[string]string{"P1": "x", "P2": "x", "P3": "y", "P4": "z"})

	scores, err := room.Join("P5")
	require.NoError(t, err)
	assert.Equal(t, 0, scores["P5"])
	assert.Equal(t, 15, scores["P1"])
	assert.Len(t, rec.named(EventNewPhrase), 2, "late join must not restart the game")

	playRound(t, room, map[string]string{"P1": "a", "P2": "b", "P3": "c", "P4": "d"})
	assert.Equal(t, 2, room.Snapshot().Round, "round waits for the late joiner")

	require.NoError(t, room.SubmitAnswer("P5", "c"))
	snap := room.Snapshot()
	assert.Equal(t, 3, snap.Round)
	assert.Equal(t, map[string]int{"P1": 15, "P2": 15, "P3": 15, "P4": 0, "P5": 15}, snap.Scores)
}

func TestRoomRoundTimeout(t *testing.T) {
	settings := testSettings()
	settings.RoundTimeout = 50 * time.Millisecond

	room, rec := newTestRoom(t, settings)
	fillRoom(t, room)

	require.NoError(t, room.SubmitAnswer("P1", "x"))
	require.NoError(t, room.SubmitAnswer("P2", "x"))
	require.NoError(t, room.SubmitAnswer("P3", "y"))

	require.Eventually(t, func() bool {
		return len(rec.named(EventRoundEnd)) >= 1
	}, time.Second, 5*time.Millisecond)

	// Later rounds may time out too, but with no answers nobody scores.
	assert.Equal(t, map[string]int{"P1": 15, "P2": 15, "P3": 0, "P4": 0}, room.Snapshot().Scores)
}

func TestRoomStaleTimerIgnored(t *testing.T) {
	room, rec := newTestRoom(t, testSettings())
	fillRoom(t, room)

	room.expireRound(7)

	assert.Empty(t, rec.named(EventRoundEnd))
	assert.Equal(t, 1, room.Snapshot().Round)
}

func TestStateText(t *testing.T) {
	text, err := StateScoring.MarshalText()
	require.NoError(t, err)

	assert.Equal(t, "scoring", string(text))
	assert.Equal(t, "unknown", State(42).String())
}
