package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PromptKind tags which case of PromptItem is populated.
type PromptKind int

const (
	// PromptUnset is the zero value and never valid on the wire.
	PromptUnset PromptKind = iota
	// PromptText is a flat question string.
	PromptText
	// PromptTurns is an ordered list of role-tagged turns.
	PromptTurns
)

// ErrInvalidPrompt is returned when a prompt item is neither a string nor a turn list.
var ErrInvalidPrompt = errors.New("prompt must be a string or a list of turns")

// Turn is one role-tagged entry of a structured prompt.
type Turn struct {
	// Speaker role, carried through but not used when flattening.
	// example: HUMAN
	Role string `json:"role" example:"HUMAN"`
	// Turn text.
	// example: What is 2+2?
	Prompt string `json:"prompt" example:"What is 2+2?"`
}

// PromptItem is a single input to a batch: either flat text or a turn list.
// Use TextPrompt or TurnsPrompt to build one.
type PromptItem struct {
	Kind  PromptKind
	Text  string
	Turns []Turn
}

// TextPrompt builds a flat-text prompt item.
func TextPrompt(s string) PromptItem { return PromptItem{Kind: PromptText, Text: s} }

// TurnsPrompt builds a structured prompt item from turns.
func TurnsPrompt(turns ...Turn) PromptItem {
	return PromptItem{Kind: PromptTurns, Turns: append([]Turn(nil), turns...)}
}

// Question flattens the item into the single string sent to the tool.
// Turn prompts are joined with newlines.
func (p PromptItem) Question() (string, error) {
	switch p.Kind {
	case PromptText:
		return p.Text, nil
	case PromptTurns:
		parts := make([]string, len(p.Turns))
		for i, t := range p.Turns {
			parts[i] = t.Prompt
		}
		return strings.Join(parts, "\n"), nil
	default:
		return "", ErrInvalidPrompt
	}
}

// MarshalJSON encodes text items as a JSON string and turn items as an array.
func (p PromptItem) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PromptText:
		return json.Marshal(p.Text)
	case PromptTurns:
		turns := p.Turns
		if turns == nil {
			turns = []Turn{}
		}
		return json.Marshal(turns)
	default:
		return nil, ErrInvalidPrompt
	}
}

// UnmarshalJSON accepts a JSON string or an array of turn objects.
func (p *PromptItem) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrInvalidPrompt
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
		}
		*p = TextPrompt(s)
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
		}
		turns := make([]Turn, 0, len(raw))
		for i, r := range raw {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(r, &fields); err != nil || fields == nil {
				return fmt.Errorf("%w: turn %d is not an object", ErrInvalidPrompt, i)
			}
			if _, ok := fields["prompt"]; !ok {
				return fmt.Errorf("%w: turn %d has no prompt field", ErrInvalidPrompt, i)
			}
			var t Turn
			if err := json.Unmarshal(r, &t); err != nil {
				return fmt.Errorf("%w: turn %d: %v", ErrInvalidPrompt, i, err)
			}
			turns = append(turns, t)
		}
		*p = PromptItem{Kind: PromptTurns, Turns: turns}
		return nil
	default:
		return ErrInvalidPrompt
	}
}

// RequestRecord is one line of the request file handed to the tool.
type RequestRecord struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
}

// ResponseRecord is one line of the response file produced by the tool.
type ResponseRecord struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
}
