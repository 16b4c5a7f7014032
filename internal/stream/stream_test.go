package stream

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

// chunkedReader returns its payload in fixed-size reads so tests can force
// event lines to split across read boundaries.
type chunkedReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.size
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

func collect(t *testing.T, d *Decoder) ([]Event, int) {
	t.Helper()

	var events []Event
	malformed := 0
	for {
		ev, err := d.Next()
		if errors.Is(err, io.EOF) {
			return events, malformed
		}
		if errors.Is(err, ErrMalformed) {
			malformed++
			continue
		}
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		events = append(events, ev)
	}
}

func TestDecoder_ChunksConcatenate(t *testing.T) {
	wire := "data: {\"content\":\"TCS is \"}\n\n" +
		"data: {\"content\":\"a strong business.\"}\n\n" +
		"data: {\"done\":true}\n\n"

	// The concatenation property must hold for every split of the
	// transport reads, including splits mid-line.
	for size := 1; size <= len(wire); size++ {
		d := NewDecoder(&chunkedReader{data: []byte(wire), size: size})
		events, malformed := collect(t, d)

		if malformed != 0 {
			t.Fatalf("read size %d: got %d malformed lines", size, malformed)
		}

		var text strings.Builder
		done := false
		for _, ev := range events {
			switch ev.Kind {
			case KindChunk:
				text.WriteString(ev.Content)
			case KindDone:
				done = true
			default:
				t.Fatalf("read size %d: unexpected event %+v", size, ev)
			}
		}

		if got := text.String(); got != "TCS is a strong business." {
			t.Errorf("read size %d: got %q", size, got)
		}
		if !done {
			t.Errorf("read size %d: missing done event", size)
		}
	}
}

func TestDecoder_ErrorEvent(t *testing.T) {
	wire := "data: {\"content\":\"partial\"}\n\ndata: {\"error\":\"upstream exploded\"}\n\n"

	d := NewDecoder(strings.NewReader(wire))
	events, _ := collect(t, d)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[1].Kind != KindError || events[1].Message != "upstream exploded" {
		t.Errorf("unexpected error event: %+v", events[1])
	}
}

func TestDecoder_MalformedLineDoesNotAbortStream(t *testing.T) {
	wire := "data: {\"content\":\"a\"}\n\n" +
		"data: this is not json\n\n" +
		"data: {\"content\":\"b\"}\n\n" +
		"data: {\"done\":true}\n\n"

	d := NewDecoder(strings.NewReader(wire))
	events, malformed := collect(t, d)

	if malformed != 1 {
		t.Errorf("expected 1 malformed line, got %d", malformed)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Content+events[1].Content != "ab" {
		t.Errorf("chunks lost around malformed line: %+v", events)
	}
}

func TestDecoder_TrailingFragmentIsNotMalformed(t *testing.T) {
	// Transport closed mid-line: the fragment gets a best-effort parse and
	// is dropped, never reported as malformed.
	wire := "data: {\"content\":\"kept\"}\n\ndata: {\"cont"

	d := NewDecoder(strings.NewReader(wire))
	events, malformed := collect(t, d)

	if malformed != 0 {
		t.Errorf("trailing fragment reported as malformed")
	}
	if len(events) != 1 || events[0].Content != "kept" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestDecoder_TrailingCompleteLineParses(t *testing.T) {
	// A final line missing only its newline still decodes.
	wire := "data: {\"content\":\"almost\"}\n\ndata: {\"done\":true}"

	d := NewDecoder(strings.NewReader(wire))
	events, _ := collect(t, d)

	if len(events) != 2 || events[1].Kind != KindDone {
		t.Errorf("trailing done event lost: %+v", events)
	}
}

func TestDecoder_UnrecognizedPayloadSkipped(t *testing.T) {
	wire := "data: {}\n\ndata: {\"done\":true}\n\n"

	d := NewDecoder(strings.NewReader(wire))
	events, malformed := collect(t, d)

	if malformed != 0 {
		t.Errorf("empty object counted as malformed")
	}
	if len(events) != 1 || events[0].Kind != KindDone {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	if err := w.Chunk("hello "); err != nil {
		t.Fatalf("chunk write failed: %v", err)
	}
	if err := w.Chunk("world"); err != nil {
		t.Fatalf("chunk write failed: %v", err)
	}
	if err := w.Done(); err != nil {
		t.Fatalf("done write failed: %v", err)
	}

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}

	d := NewDecoder(rec.Body)
	events, malformed := collect(t, d)

	if malformed != 0 {
		t.Fatalf("writer produced malformed frames")
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Content+events[1].Content != "hello world" {
		t.Errorf("round trip mismatch: %+v", events)
	}
	if events[2].Kind != KindDone {
		t.Errorf("missing done event")
	}
}

func TestWriter_ErrorEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	if err := w.Error("model unavailable"); err != nil {
		t.Fatalf("error write failed: %v", err)
	}

	d := NewDecoder(rec.Body)
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if ev.Kind != KindError || ev.Message != "model unavailable" {
		t.Errorf("unexpected event: %+v", ev)
	}
}
