package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SamayGala/StockGPT/internal/models"
	"github.com/SamayGala/StockGPT/internal/stream"
)

// chatServer builds a gateway stub whose /api/chat handler is the given
// function.
func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decodeChatRequest(t *testing.T, r *http.Request) models.ChatRequest {
	t.Helper()
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Errorf("bad chat request body: %v", err)
	}
	return req
}

func TestSend_EndToEnd(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeChatRequest(t, r)
		if req.Message != "Analyze TCS" {
			t.Errorf("message = %q", req.Message)
		}
		if len(req.ConversationHistory) != 0 {
			t.Errorf("expected empty history, got %+v", req.ConversationHistory)
		}

		sw := stream.NewWriter(w)
		sw.Chunk("TCS is ")
		sw.Chunk("a strong business.")
		sw.Done()
	})

	session := NewChatSession(New(srv.URL))
	if err := session.Send(context.Background(), "Analyze TCS"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected 2 transcript entries, got %d", len(transcript))
	}
	if transcript[0].Role != models.RoleUser || transcript[0].Content != "Analyze TCS" {
		t.Errorf("user entry wrong: %+v", transcript[0])
	}
	if transcript[1].Role != models.RoleAssistant || transcript[1].Content != "TCS is a strong business." {
		t.Errorf("assistant entry wrong: %+v", transcript[1])
	}

	if session.State() != StateCompleted {
		t.Errorf("state = %v", session.State())
	}
	if _, loading := session.InProgress(); loading {
		t.Errorf("loading indicator not cleared")
	}
}

func TestSend_HistoryCarriesPriorTranscript(t *testing.T) {
	var mu sync.Mutex
	var histories [][]models.ChatMessage

	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeChatRequest(t, r)
		mu.Lock()
		histories = append(histories, req.ConversationHistory)
		mu.Unlock()

		sw := stream.NewWriter(w)
		sw.Chunk("ok")
		sw.Done()
	})

	session := NewChatSession(New(srv.URL))
	session.Send(context.Background(), "first")
	session.Send(context.Background(), "second")

	if len(histories) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(histories))
	}
	if len(histories[0]) != 0 {
		t.Errorf("first history not empty: %+v", histories[0])
	}
	// Second request carries user+assistant from the first exchange.
	if len(histories[1]) != 2 || histories[1][1].Content != "ok" {
		t.Errorf("second history wrong: %+v", histories[1])
	}
}

func TestSend_MidStreamErrorReplacesEntry(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		sw := stream.NewWriter(w)
		sw.Chunk("partial content ")
		sw.Error("upstream exploded")
	})

	session := NewChatSession(New(srv.URL))
	session.Send(context.Background(), "hello")

	transcript := session.Transcript()
	last := transcript[len(transcript)-1]
	if last.Content != "upstream exploded" {
		t.Errorf("error text must replace, not append: %q", last.Content)
	}
	if session.State() != StateErrored {
		t.Errorf("state = %v", session.State())
	}
}

func TestSend_TransportFailureBeforeChunksUsesApology(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "OpenAI API key not configured"})
	})

	session := NewChatSession(New(srv.URL))
	session.Send(context.Background(), "hello")

	transcript := session.Transcript()
	last := transcript[len(transcript)-1]
	if !strings.Contains(last.Content, "I apologize") {
		t.Errorf("apology template missing: %q", last.Content)
	}
	if !strings.Contains(last.Content, "OpenAI API key not configured") {
		t.Errorf("raw error text missing: %q", last.Content)
	}
	if session.State() != StateErrored {
		t.Errorf("state = %v", session.State())
	}
	if _, loading := session.InProgress(); loading {
		t.Errorf("loading indicator not cleared")
	}
}

func TestSend_TransportCutMidStreamKeepsPartial(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		sw := stream.NewWriter(w)
		sw.Chunk("partial answer")
		// No done event: the connection just ends.
	})

	session := NewChatSession(New(srv.URL))
	session.Send(context.Background(), "hello")

	transcript := session.Transcript()
	last := transcript[len(transcript)-1]
	if last.Content != "partial answer" {
		t.Errorf("partial content rolled back: %q", last.Content)
	}
	if session.State() != StateErrored {
		t.Errorf("state = %v", session.State())
	}
	if _, loading := session.InProgress(); loading {
		t.Errorf("loading indicator not cleared")
	}
}

func TestSend_SecondExchangeRejectedWhileStreaming(t *testing.T) {
	release := make(chan struct{})
	firstChunkSent := make(chan struct{})

	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		sw := stream.NewWriter(w)
		sw.Chunk("thinking")
		close(firstChunkSent)
		<-release
		sw.Done()
	})

	session := NewChatSession(New(srv.URL))

	done := make(chan error, 1)
	go func() {
		done <- session.Send(context.Background(), "first")
	}()

	<-firstChunkSent
	if err := session.Send(context.Background(), "second"); !errors.Is(err, ErrExchangeInFlight) {
		t.Errorf("expected ErrExchangeInFlight, got %v", err)
	}

	// Wait for the chunk to reach the in-progress view, as in
	// TestSend_ContextCancellation.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if text, _ := session.InProgress(); text == "thinking" {
			break
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if text, loading := session.InProgress(); !loading || text != "thinking" {
		t.Errorf("in-progress view = %q loading=%v", text, loading)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// Terminal state reached; a new exchange may start.
	srv2 := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		sw := stream.NewWriter(w)
		sw.Done()
	})
	session2 := NewChatSession(New(srv2.URL))
	if err := session2.Send(context.Background(), "fresh"); err != nil {
		t.Errorf("fresh exchange failed: %v", err)
	}
}

func TestSend_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		sw := stream.NewWriter(w)
		sw.Chunk("never finishes")
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	session := NewChatSession(New(srv.URL))

	done := make(chan error, 1)
	go func() {
		done <- session.Send(ctx, "hello")
	}()

	<-started
	// Wait for the chunk to reach the in-progress view before cancelling.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if text, _ := session.InProgress(); text == "never finishes" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("chunk never reached the in-progress view")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("send returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("send did not return after cancellation")
	}

	// Partial content from before the cancellation stays visible.
	transcript := session.Transcript()
	last := transcript[len(transcript)-1]
	if last.Content != "never finishes" {
		t.Errorf("partial content lost on cancel: %q", last.Content)
	}
}
