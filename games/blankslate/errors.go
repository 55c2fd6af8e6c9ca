/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

import "errors"

var (
	ErrUnknownEvent    = errors.New("unknown event")
	ErrMissingField    = errors.New("missing required field")
	ErrUnknownRoom     = errors.New("unknown room")
	ErrUnknownPlayer   = errors.New("player is not in this room")
	ErrNotInRound      = errors.New("room is not accepting answers")
	ErrDuplicateAnswer = errors.New("player already answered this round")
)
