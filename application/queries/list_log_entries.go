package queries

import (
	"errors"
)

// ListLogEntriesQuery fetches the retained tail of the watched log stream
type ListLogEntriesQuery struct {
	Limit       int  `json:"limit,omitempty"`
	ActionsOnly bool `json:"actions_only,omitempty"`
}

// Validate validates the query
func (q ListLogEntriesQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}
