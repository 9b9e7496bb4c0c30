// Package logwatch tails a JSON-lines log file and serves its parsed tail
// to the rest of the application. Parsing is structural only; entries are
// never rejected for what they say, only normalized by shape.
package logwatch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/valueobjects"
)

// defaultMaxLineBytes bounds a single log line
const defaultMaxLineBytes = 1024 * 1024

// Parser turns raw log lines into entries. A line that is a JSON object
// yields a structured entry; anything else becomes a message-only entry
// carrying the raw text. A malformed actions array costs the entry its
// actions, not the entry itself.
type Parser struct {
	maxLineBytes int
}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{maxLineBytes: defaultMaxLineBytes}
}

// logLineJSON is the wire shape of a structured log line
type logLineJSON struct {
	Timestamp string          `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Actions   json.RawMessage `json:"actions"`
}

// ParseLine parses one log line. Blank lines yield ok=false. The entry's
// Seq is zero; the store assigns it on append.
func (p *Parser) ParseLine(line []byte) (ports.LogEntry, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return ports.LogEntry{}, false
	}

	raw := string(trimmed)

	var doc logLineJSON
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return ports.LogEntry{Message: raw, Raw: raw}, true
	}

	entry := ports.LogEntry{
		Level:   doc.Level,
		Message: doc.Message,
		Raw:     raw,
	}

	if doc.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, doc.Timestamp); err == nil {
			entry.Timestamp = ts
		}
	}

	if len(doc.Actions) > 0 {
		var actions []valueobjects.LogAction
		if err := json.Unmarshal(doc.Actions, &actions); err == nil {
			entry.Actions = actions
		}
	}

	return entry, true
}

// ParseReader parses every line of r in order. Blank lines are skipped.
// The returned error is the reader's, never a parse failure.
func (p *Parser) ParseReader(r io.Reader) ([]ports.LogEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), p.maxLineBytes)

	var entries []ports.LogEntry
	for scanner.Scan() {
		if entry, ok := p.ParseLine(scanner.Bytes()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return entries, err
	}
	return entries, nil
}

// ParseString parses a whole log document held in memory
func (p *Parser) ParseString(doc string) ([]ports.LogEntry, error) {
	return p.ParseReader(strings.NewReader(doc))
}
