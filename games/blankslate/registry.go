/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength  = 4
)

// Registry maps room codes to rooms. Rooms are created on first use and
// live until the process exits, or until the reaper removes them when an
// idle timeout is configured.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	settings Settings
	emitter  Emitter
	log      zerolog.Logger
}

func NewRegistry(settings Settings, emitter Emitter, logger zerolog.Logger) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		settings: settings,
		emitter:  emitter,
		log:      logger,
	}
}

func (g *Registry) Settings() Settings {
	return g.settings
}

// Resolve returns the room for code, creating it if it does not exist yet.
// Concurrent callers always receive the same *Room for a given code.
func (g *Registry) Resolve(code string) *Room {
	return g.Attach(code, nil)
}

// Attach resolves the room for code and adds m to its broadcast group in one
// step under the registry lock, so the reaper can never detach a member from
// a room it has just joined. An existing room is marked active.
func (g *Registry) Attach(code string, m Member) *Room {
	if code == "" {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[code]
	if ok {
		room.touch()
	} else {
		room = newRoom(code, g.settings, g.emitter, g.log)
		g.rooms[code] = room

		g.log.Info().Str("room", code).Msg("room created")
	}

	if m != nil {
		m.JoinGroup(code)
	}

	return room
}

// Lookup returns an existing room without creating one.
func (g *Registry) Lookup(code string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[code]

	return room, ok
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.rooms)
}

// NewCode generates a random room code that is not currently in use.
func (g *Registry) NewCode() string {
	for {
		buf := make([]byte, codeLength)
		rand.Read(buf)

		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeLetters[int(buf[i])%len(codeLetters)]
		}
		code := string(out)

		if _, exists := g.Lookup(code); !exists {
			return code
		}
	}
}

// Reap removes rooms that have been idle longer than idleTimeout, checking
// every idleTimeout/2 until ctx is done. onReap, if set, is called with the
// code of each removed room while the registry lock is still held; it must
// not call back into the registry.
func (g *Registry) Reap(ctx context.Context, idleTimeout time.Duration, onReap func(code string)) {
	if idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.reapIdle(now.Add(-idleTimeout), onReap)
		}
	}
}

func (g *Registry) reapIdle(cutoff time.Time, onReap func(code string)) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var reaped []string
	for code, room := range g.rooms {
		if room.LastActive().Before(cutoff) {
			delete(g.rooms, code)
			room.Close()
			reaped = append(reaped, code)

			if onReap != nil {
				onReap(code)
			}

			g.log.Info().Str("room", code).Msg("idle room reaped")
		}
	}

	return reaped
}
