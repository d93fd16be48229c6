package qdrant

import (
	"encoding/json"
	"strings"
)

type envelope[T any] struct {
	Status status `json:"status"`
	Result T      `json:"result"`
}

// Qdrant reports status either as the string "ok" or as an object carrying
// an error message. Accept both.
type status struct {
	State string `json:"status"`
	Error string `json:"error,omitempty"`
}

func (s *status) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

type pointResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}
