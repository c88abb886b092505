package domain

import (
	"encoding/json"
	"strings"
)

// StepType enumerates the scripted instruction kinds.
type StepType string

const (
	StepSpeak  StepType = "speak"
	StepWait   StepType = "wait"
	StepDtmf   StepType = "dtmf"
	StepHangup StepType = "hangup"
)

// Step is one scripted instruction. Only the fields for its type are
// meaningful; the rest stay zero. A Step with an empty Type compiles to
// nothing.
type Step struct {
	Type       StepType
	Text       string
	DurationMS int
	Digits     string
}

// Script is the ordered, immutable step list authored for a conversation
// before the call is placed.
type Script []Step

// defaultWaitMS is used when a wait step omits its duration.
const defaultWaitMS = 1000

// stepJSON mirrors the seeded wire shape. Older seeders wrote the tag under
// "action" instead of "type".
type stepJSON struct {
	Type       string  `json:"type,omitempty"`
	Action     string  `json:"action,omitempty"`
	Text       string  `json:"text,omitempty"`
	DurationMS float64 `json:"duration_ms,omitempty"`
	Digits     string  `json:"digits,omitempty"`
}

// UnmarshalJSON decodes a step tolerantly: a malformed or unrecognized
// entry becomes a no-op step rather than failing the whole script.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = Step{}
		return nil
	}
	tag := raw.Type
	if tag == "" {
		tag = raw.Action
	}
	switch StepType(strings.ToLower(strings.TrimSpace(tag))) {
	case StepSpeak:
		*s = Step{Type: StepSpeak, Text: raw.Text}
	case StepWait:
		d := int(raw.DurationMS)
		if d <= 0 {
			d = defaultWaitMS
		}
		*s = Step{Type: StepWait, DurationMS: d}
	case StepDtmf:
		*s = Step{Type: StepDtmf, Digits: raw.Digits}
	case StepHangup:
		*s = Step{Type: StepHangup}
	default:
		*s = Step{}
	}
	return nil
}

// MarshalJSON writes the canonical seeded shape for the step.
func (s Step) MarshalJSON() ([]byte, error) {
	raw := stepJSON{Type: string(s.Type)}
	switch s.Type {
	case StepSpeak:
		raw.Text = s.Text
	case StepWait:
		raw.DurationMS = float64(s.DurationMS)
	case StepDtmf:
		raw.Digits = s.Digits
	}
	return json.Marshal(raw)
}

// DecodeScript parses a persisted script string. An empty string is an
// empty script; invalid JSON is an error the caller should treat as an
// empty script.
func DecodeScript(raw string) (Script, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var script Script
	if err := json.Unmarshal([]byte(raw), &script); err != nil {
		return nil, err
	}
	return script, nil
}
