/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Member is the sending side of an inbound event. Joining a room adds the
// member to that room's broadcast group before any room event is emitted,
// so the joining client sees its own leaderboard update.
type Member interface {
	JoinGroup(room string)
}

type handlerFunc func(s *Server, m Member, env Envelope) error

// Server routes inbound events to the room they name.
type Server struct {
	registry *Registry
	log      zerolog.Logger
	handlers map[string]handlerFunc
}

func NewServer(registry *Registry, logger zerolog.Logger) *Server {
	return &Server{
		registry: registry,
		log:      logger,
		handlers: map[string]handlerFunc{
			EventJoinRoom:     handleJoinRoom,
			EventSubmitAnswer: handleSubmitAnswer,
		},
	}
}

func (s *Server) Registry() *Registry {
	return s.registry
}

// Dispatch handles one inbound event. Errors describe why an event was
// ignored; they are never sent back to the client.
func (s *Server) Dispatch(m Member, env Envelope) error {
	handler, ok := s.handlers[env.Event]
	if !ok {
		return fmt.Errorf("%q: %w", env.Event, ErrUnknownEvent)
	}

	return handler(s, m, env)
}

func handleJoinRoom(s *Server, m Member, env Envelope) error {
	msg, err := decodeData[JoinRoomMessage](env)
	if err != nil {
		return err
	}

	if msg.Name == "" || msg.Room == "" {
		return fmt.Errorf("%s: %w", env.Event, ErrMissingField)
	}

	_, err = s.registry.Attach(msg.Room, m).Join(msg.Name)

	return err
}

// submitAnswerData tells an absent answer apart from an empty one.
type submitAnswerData struct {
	Name   string  `json:"name"`
	Room   string  `json:"room"`
	Answer *string `json:"answer"`
}

func handleSubmitAnswer(s *Server, _ Member, env Envelope) error {
	msg, err := decodeData[submitAnswerData](env)
	if err != nil {
		return err
	}

	if msg.Name == "" || msg.Room == "" || msg.Answer == nil {
		return fmt.Errorf("%s: %w", env.Event, ErrMissingField)
	}

	room, ok := s.registry.Lookup(msg.Room)
	if !ok {
		return fmt.Errorf("%q: %w", msg.Room, ErrUnknownRoom)
	}

	return room.SubmitAnswer(msg.Name, *msg.Answer)
}
