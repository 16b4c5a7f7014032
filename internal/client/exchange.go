package client

import (
	"strings"

	"github.com/google/uuid"
)

// ExchangeState is the per-exchange lifecycle state. Completed and Errored
// are terminal; a new user message starts a fresh exchange.
type ExchangeState int

const (
	StateIdle ExchangeState = iota
	StateSent
	StateStreaming
	StateCompleted
	StateErrored
)

func (s ExchangeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// Exchange is one in-flight chat request/response. Incoming chunks grow an
// owned buffer keyed by the exchange ID; the transcript only sees the
// result once the exchange reaches a terminal state, so nothing mutates a
// list that is simultaneously being read for rendering.
type Exchange struct {
	ID    uuid.UUID
	state ExchangeState
	buf   strings.Builder
}

func newExchange() *Exchange {
	return &Exchange{ID: uuid.New(), state: StateSent}
}

// Append adds a content chunk to the owned buffer, in arrival order.
func (e *Exchange) Append(chunk string) {
	e.state = StateStreaming
	e.buf.WriteString(chunk)
}

// Text returns the accumulated assistant text so far.
func (e *Exchange) Text() string {
	return e.buf.String()
}

// State returns the current lifecycle state.
func (e *Exchange) State() ExchangeState {
	return e.state
}

// Terminal reports whether the exchange has finished.
func (e *Exchange) Terminal() bool {
	return e.state == StateCompleted || e.state == StateErrored
}
