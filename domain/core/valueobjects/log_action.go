package valueobjects

import (
	"encoding/json"

	pkgerrors "flowcanvas/pkg/errors"
)

// ActionKind is the verb of a log action
type ActionKind string

const (
	ActionHighlight ActionKind = "highlight"
	ActionFocus     ActionKind = "focus"
	ActionAnnotate  ActionKind = "annotate"
	ActionTrace     ActionKind = "trace"
	ActionPulse     ActionKind = "pulse"
)

// Animated reports whether the kind implies an animated highlight.
// Only pulse and trace animate.
func (k ActionKind) Animated() bool {
	return k == ActionPulse || k == ActionTrace
}

// LogAction targets one or more diagram elements with a highlight or
// annotation. Payloads arrive untyped from the log system; the id field may
// be a single string or an array, always normalized to a list here before
// any further processing. Only structural shape is validated.
type LogAction struct {
	targets    []string
	kind       ActionKind
	style      string
	color      string
	annotation string
}

// NewLogAction builds an action from already-normalized parts
func NewLogAction(targets []string, kind ActionKind, style, color, annotation string) (LogAction, error) {
	if len(targets) == 0 {
		return LogAction{}, pkgerrors.NewValidationError("log action requires at least one target id")
	}
	if kind == "" {
		return LogAction{}, pkgerrors.NewValidationError("log action requires an action kind")
	}
	copied := make([]string, len(targets))
	copy(copied, targets)
	return LogAction{
		targets:    copied,
		kind:       kind,
		style:      style,
		color:      color,
		annotation: annotation,
	}, nil
}

// Targets returns the normalized target id list
func (a LogAction) Targets() []string {
	out := make([]string, len(a.targets))
	copy(out, a.targets)
	return out
}

// Kind returns the action verb
func (a LogAction) Kind() ActionKind {
	return a.kind
}

// Style returns the optional style keyword
func (a LogAction) Style() string {
	return a.style
}

// Color returns the optional explicit color, which wins over the style keyword
func (a LogAction) Color() string {
	return a.color
}

// Annotation returns the literal annotation text (annotate actions only)
func (a LogAction) Annotation() string {
	return a.annotation
}

// HighlightStyle derives the overlay style this action projects
func (a LogAction) HighlightStyle() HighlightStyle {
	color := a.color
	if color == "" {
		color = HighlightColorForStyle(a.style)
	}
	return HighlightStyle{
		Color:     color,
		Animation: a.kind.Animated(),
		Kind:      a.kind,
	}
}

// logActionJSON is the wire shape of a log action
type logActionJSON struct {
	ID         json.RawMessage `json:"id"`
	Action     ActionKind      `json:"action"`
	Style      string          `json:"style,omitempty"`
	Color      string          `json:"color,omitempty"`
	Annotation string          `json:"annotation,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler, accepting id as a string or an
// array of strings
func (a *LogAction) UnmarshalJSON(data []byte) error {
	var doc logActionJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	targets, err := normalizeTargets(doc.ID)
	if err != nil {
		return err
	}

	action, err := NewLogAction(targets, doc.Action, doc.Style, doc.Color, doc.Annotation)
	if err != nil {
		return err
	}
	*a = action
	return nil
}

// MarshalJSON implements json.Marshaler, always emitting id as an array
func (a LogAction) MarshalJSON() ([]byte, error) {
	ids, err := json.Marshal(a.targets)
	if err != nil {
		return nil, err
	}
	return json.Marshal(logActionJSON{
		ID:         ids,
		Action:     a.kind,
		Style:      a.style,
		Color:      a.color,
		Annotation: a.annotation,
	})
}

// normalizeTargets decodes the id field into a list regardless of shape
func normalizeTargets(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.NewValidationError("log action is missing its id field")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}

	return nil, pkgerrors.NewValidationError("log action id must be a string or an array of strings")
}
