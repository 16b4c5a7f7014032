// Package stream implements the line-oriented event framing used by the
// chat endpoint: one "data: {json}" line per event, blank-line delimited,
// carrying a content chunk, an error, or a done marker.
package stream

import (
	"encoding/json"
	"errors"
	"strings"
)

// Kind identifies the type of a decoded event.
type Kind int

const (
	// KindChunk carries a fragment of assistant text to append.
	KindChunk Kind = iota
	// KindError terminates the stream with an upstream error message.
	KindError
	// KindDone terminates the stream successfully.
	KindDone
)

// Event is one decoded frame from the chat stream.
type Event struct {
	Kind    Kind
	Content string // fragment text when Kind == KindChunk
	Message string // error text when Kind == KindError
}

// ErrMalformed reports a complete line that is not a valid event. It is
// distinct from an incomplete trailing fragment, which is silently skipped.
var ErrMalformed = errors.New("stream: malformed event line")

const dataPrefix = "data:"

// wireEvent is the JSON payload of a single frame. Pointer fields
// distinguish an absent key from an empty value.
type wireEvent struct {
	Content *string `json:"content"`
	Error   *string `json:"error"`
	Done    bool    `json:"done"`
}

// parseLine decodes one complete line into an Event. The boolean result is
// false for lines that carry no event (blank delimiters, empty payloads,
// unrecognized fields) - those are skipped, not errors.
func parseLine(line string) (Event, bool, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Event{}, false, nil
	}

	if !strings.HasPrefix(line, dataPrefix) {
		// A truncated fragment of a "data:" line has this shape too, so it
		// is only malformed when it cannot be a prefix of a valid frame.
		if strings.HasPrefix(dataPrefix, line) {
			return Event{}, false, nil
		}
		return Event{}, false, ErrMalformed
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == "" {
		return Event{}, false, nil
	}

	var we wireEvent
	if err := json.Unmarshal([]byte(payload), &we); err != nil {
		return Event{}, false, ErrMalformed
	}

	switch {
	case we.Done:
		return Event{Kind: KindDone}, true, nil
	case we.Error != nil:
		return Event{Kind: KindError, Message: *we.Error}, true, nil
	case we.Content != nil:
		return Event{Kind: KindChunk, Content: *we.Content}, true, nil
	}
	return Event{}, false, nil
}
