package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Writer serializes events onto an HTTP response body, flushing after each
// event so the client sees chunks as they are produced.
type Writer struct {
	w io.Writer
	f http.Flusher
}

// NewWriter sets the event-stream response headers and returns a Writer.
func NewWriter(w http.ResponseWriter) *Writer {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	f, _ := w.(http.Flusher)
	return &Writer{w: w, f: f}
}

// Chunk emits a content fragment.
func (w *Writer) Chunk(content string) error {
	return w.emit(map[string]any{"content": content})
}

// Error emits a terminal error event.
func (w *Writer) Error(msg string) error {
	return w.emit(map[string]any{"error": msg})
}

// Done emits the terminal success event.
func (w *Writer) Done() error {
	return w.emit(map[string]any{"done": true})
}

func (w *Writer) emit(payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", data); err != nil {
		return err
	}
	if w.f != nil {
		w.f.Flush()
	}
	return nil
}
