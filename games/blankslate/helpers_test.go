package blankslate

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type emitted struct {
	room    string
	event   string
	payload any
}

type recorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recorder) Emit(room, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, emitted{room: room, event: event, payload: payload})
}

func (r *recorder) all() []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]emitted{}, r.events...)
}

func (r *recorder) named(event string) []emitted {
	var out []emitted
	for _, e := range r.all() {
		if e.event == event {
			out = append(out, e)
		}
	}

	return out
}

func (r *recorder) last(t *testing.T, event string) emitted {
	t.Helper()

	events := r.named(event)
	if len(events) == 0 {
		t.Fatalf("no %q event emitted", event)
	}

	return events[len(events)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}

func testSettings() Settings {
	s := DefaultSettings()
	s.Phrases = append([]string{}, DefaultPhrases...)

	return s
}

func newTestRoom(t *testing.T, settings Settings) (*Room, *recorder) {
	t.Helper()

	rec := &recorder{}
	room := newRoom("ABCD", settings, rec, zerolog.Nop())
	t.Cleanup(room.Close)

	return room, rec
}

// fillRoom joins P1..P4, which starts the game.
func fillRoom(t *testing.T, room *Room) {
	t.Helper()

	for _, name := range []string{"P1", "P2", "P3", "P4"} {
		if _, err := room.Join(name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
}

func playRound(t *testing.T, room *Room, answers map[string]string) {
	t.Helper()

	for _, name := range []string{"P1", "P2", "P3", "P4"} {
		if err := room.SubmitAnswer(name, answers[name]); err != nil {
			t.Fatalf("submit %s: %v", name, err)
		}
	}
}
