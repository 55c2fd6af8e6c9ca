// Blank Slate
//
// Players join a room by code and fill in the blank of a shared phrase with a
// single word. Matching exactly one other player scores big, matching a crowd
// scores a little, and matching nobody scores nothing.
//
// Features:
// - One websocket endpoint; clients pick rooms with join_room events
// - Events use a {"event": ..., "data": ...} envelope in both directions
// - Broadcasts only reach connections that joined the room
// - Rooms start automatically once enough players have joined
// - Inbound events other than answers are rate limited per connection
// - Optional idle room reaper and round timeout
// - Random room codes via crypto/rand, with server-side collision check
// - QR code per room, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"

	"github.com/Seednode/blankslate/games/blankslate"
)

const sendBuffer = 32

type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	hub     *Hub
}

// JoinGroup subscribes the client to a room's broadcasts.
func (c *Client) JoinGroup(room string) {
	c.hub.join(c, room)
}

// Hub tracks which connections belong to which rooms and fans room events
// out to them. It implements blankslate.Emitter.
type Hub struct {
	cfg *Config

	mu      sync.RWMutex
	rooms   map[string]map[*Client]bool
	clients map[*Client]map[string]bool
}

func newHub(cfg *Config) *Hub {
	return &Hub{
		cfg:     cfg,
		rooms:   make(map[string]map[*Client]bool),
		clients: make(map[*Client]map[string]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = make(map[string]bool)
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	groups, ok := h.clients[c]
	if !ok {
		return
	}

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
	groups[room] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(c)
}

// dropLocked removes c from every room and closes its send channel.
func (h *Hub) dropLocked(c *Client) {
	groups, ok := h.clients[c]
	if !ok {
		return
	}

	for room := range groups {
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}

	delete(h.clients, c)
	close(c.send)
}

// Emit never blocks: a client whose buffer is full is disconnected.
func (h *Hub) Emit(room, event string, payload any) {
	data, err := blankslate.Encode(event, payload)
	if err != nil {
		h.cfg.log.Error().Err(err).Str("event", event).Msg("encode failed")

		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- data:
		default:
			h.cfg.log.Warn().Str("client", client.id).Str("room", room).Msg("send buffer full, dropping client")
			h.dropLocked(client)
		}
	}
}

// closeRoom detaches every connection from a room that no longer exists.
func (h *Hub) closeRoom(room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[room] {
		delete(h.clients[client], room)
	}
	delete(h.rooms, room)
}

func (h *Hub) members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, hub *Hub, srv *blankslate.Server) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.log.Debug().Err(err).Str("remote", realIP(r)).Msg("upgrade failed")
			return
		}

		client := &Client{
			id:      uuid.NewString(),
			conn:    conn,
			send:    make(chan []byte, sendBuffer),
			limiter: rate.NewLimiter(rate.Limit(cfg.rateLimit), cfg.rateBurst),
			hub:     hub,
		}

		hub.register(client)

		logf(cfg, "GAMES: Client %s connected from %s", client.id, realIP(r))

		go client.writePump()
		client.readPump(cfg, srv)
	}
}

func (c *Client) readPump(cfg *Config, srv *blankslate.Server) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()

		logf(cfg, "GAMES: Client %s disconnected", c.id)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		env, err := blankslate.Decode(data)
		if err != nil {
			cfg.log.Debug().Err(err).Str("client", c.id).Msg("malformed event dropped")
			continue
		}

		if !c.allow(env.Event) {
			cfg.log.Warn().Str("client", c.id).Str("event", env.Event).Msg("rate limited, event dropped")
			continue
		}

		if err := srv.Dispatch(c, env); err != nil {
			cfg.log.Debug().Err(err).Str("client", c.id).Str("event", env.Event).Msg("event ignored")
		}
	}
}

// allow applies the rate limit to everything except answers. Answers are
// deduplicated by the room, and dropping one would stall the round.
func (c *Client) allow(event string) bool {
	if event == blankslate.EventSubmitAnswer {
		return true
	}

	return c.limiter.Allow()
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func serveRoom(cfg *Config, registry *blankslate.Registry, hub *Hub, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := registry.Lookup(ps.ByName("room"))
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		err := json.NewEncoder(w).Encode(struct {
			blankslate.Snapshot
			Connections int `json:"connections"`
		}{room.Snapshot(), hub.members(room.Code())})
		if err != nil {
			errs <- err

			return
		}
	}
}

// qrHandler generates a PNG QR code pointing players at a room.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("room")
		if code == "" {
			http.Error(w, "missing room code", http.StatusBadRequest)
			return
		}

		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/?room=" + code

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// serveNewCode hands out an unused room code; the room itself is created
// by the first join_room that names it.
func serveNewCode(cfg *Config, registry *blankslate.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		code := registry.NewCode()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(code + "\n"))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "GAMES: Issued room code %s to %s", code, realIP(r))
	}
}

// registerBlankSlateGame sets up routes so that:
//   - /ws               → websocket carrying game events
//   - /new              → a fresh, unused room code
//   - /settings         → game rules as JSON
//   - /rooms/:room      → JSON snapshot of a room
//   - /rooms/:room/qr   → PNG QR code for that room
func registerBlankSlateGame(ctx context.Context, cfg *Config, mux *httprouter.Router, errs chan<- error) {
	hub := newHub(cfg)
	registry := blankslate.NewRegistry(cfg.settings(), hub, cfg.log)
	srv := blankslate.NewServer(registry, cfg.log)

	go registry.Reap(ctx, cfg.sessionTimeout, func(code string) {
		hub.closeRoom(code)
		logf(cfg, "GAMES: Reaped idle room %s", code)
	})

	prefix := strings.TrimSuffix(cfg.prefix, "/")

	mux.GET(prefix+"/ws", serveWS(cfg, hub, srv))
	mux.GET(prefix+"/new", serveNewCode(cfg, registry, errs))
	mux.GET(prefix+"/settings", serveSettings(cfg, registry.Settings(), errs))
	mux.GET(prefix+"/rooms/:room", serveRoom(cfg, registry, hub, errs))
	mux.GET(prefix+"/rooms/:room/qr", qrHandler(cfg))
}
