package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/SamayGala/StockGPT/internal/models"
	"github.com/SamayGala/StockGPT/internal/stream"
)

// ErrExchangeInFlight is returned by Send while a previous exchange is
// still running. Only one exchange may be in Sent/Streaming at a time; the
// input affordance stays disabled for the duration.
var ErrExchangeInFlight = errors.New("client: chat exchange already in flight")

// apologyTemplate is the assistant entry rendered when the exchange failed
// before any content arrived. The raw error text is embedded.
const apologyTemplate = "I apologize, but I was unable to process your request. Error: %s"

// ChatSession holds a chat transcript and drives one exchange at a time.
// The transcript is append-only; in-flight assistant text lives in the
// exchange's owned buffer and is swapped in at terminal state.
type ChatSession struct {
	api *Client

	mu         sync.Mutex
	transcript []models.ChatMessage
	current    *Exchange
}

// NewChatSession returns an empty session backed by api.
func NewChatSession(api *Client) *ChatSession {
	return &ChatSession{api: api}
}

// Send runs a full exchange for message: issues the request, consumes the
// event stream, and appends the final assistant entry. It blocks until the
// exchange reaches a terminal state and returns ErrExchangeInFlight when
// called concurrently with an active exchange. All other failures surface
// in the transcript, per the inline-error policy.
func (s *ChatSession) Send(ctx context.Context, message string) error {
	s.mu.Lock()
	if s.current != nil && !s.current.Terminal() {
		s.mu.Unlock()
		return ErrExchangeInFlight
	}

	history := make([]models.ChatMessage, len(s.transcript))
	copy(history, s.transcript)

	s.transcript = append(s.transcript, models.ChatMessage{Role: models.RoleUser, Content: message})
	ex := newExchange()
	s.current = ex
	s.mu.Unlock()

	body, err := s.api.OpenChatStream(ctx, models.ChatRequest{
		Message:             message,
		ConversationHistory: history,
	})
	if err != nil {
		s.finish(ex, StateErrored, fmt.Sprintf(apologyTemplate, err))
		return nil
	}
	defer body.Close()

	dec := stream.NewDecoder(body)
	for {
		ev, err := dec.Next()
		switch {
		case err == nil:
		case errors.Is(err, stream.ErrMalformed):
			// Genuinely malformed complete line, not a partial fragment.
			log.Printf("chat: skipping malformed event: %v", err)
			continue
		case errors.Is(err, io.EOF):
			s.finishTransport(ex, errors.New("stream ended before completion"))
			return nil
		default:
			s.finishTransport(ex, err)
			return nil
		}

		switch ev.Kind {
		case stream.KindChunk:
			s.mu.Lock()
			ex.Append(ev.Content)
			s.mu.Unlock()
		case stream.KindError:
			// The upstream error text replaces the entry outright; partial
			// content is not kept for error events.
			s.finish(ex, StateErrored, ev.Message)
			return nil
		case stream.KindDone:
			s.finish(ex, StateCompleted, ex.Text())
			return nil
		}
	}
}

// finishTransport resolves a transport-level failure: partial content that
// already rendered stays visible; with nothing rendered the apology
// template carries the error.
func (s *ChatSession) finishTransport(ex *Exchange, err error) {
	if ex.Text() != "" {
		s.finish(ex, StateErrored, ex.Text())
		return
	}
	s.finish(ex, StateErrored, fmt.Sprintf(apologyTemplate, err))
}

// finish moves the exchange to a terminal state and swaps the final
// assistant entry into the transcript.
func (s *ChatSession) finish(ex *Exchange, state ExchangeState, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ex.state = state
	s.transcript = append(s.transcript, models.ChatMessage{
		Role:    models.RoleAssistant,
		Content: content,
	})
}

// Transcript returns a copy of the committed transcript.
func (s *ChatSession) Transcript() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// InProgress returns the accumulated text of the active exchange and
// whether one is active (the loading indicator).
func (s *ChatSession) InProgress() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Terminal() {
		return "", false
	}
	return s.current.Text(), true
}

// State returns the state of the most recent exchange, StateIdle before
// the first Send.
func (s *ChatSession) State() ExchangeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return StateIdle
	}
	return s.current.State()
}
