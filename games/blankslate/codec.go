/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package blankslate

import (
	"encoding/json"
	"fmt"
)

// Envelope is the frame exchanged with clients in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func Encode(event string, payload any) ([]byte, error) {
	if event == "" {
		return nil, fmt.Errorf("encode: %w", ErrUnknownEvent)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{Event: event, Data: data})
}

func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, err
	}

	if env.Event == "" {
		return Envelope{}, fmt.Errorf("decode: %w", ErrUnknownEvent)
	}

	return env, nil
}

func decodeData[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, fmt.Errorf("%s: %w", env.Event, ErrMissingField)
	}

	err := json.Unmarshal(env.Data, &out)

	return out, err
}
