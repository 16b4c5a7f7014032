package stream

import (
	"bufio"
	"errors"
	"io"
)

// Decoder reads framed events from a transport stream. It buffers until a
// full line is available before decoding, so chunks split across read
// boundaries reassemble correctly. When the transport closes with an
// unterminated trailing line, that line gets one best-effort parse; if it
// fails it is taken to be an incomplete fragment and dropped.
type Decoder struct {
	r    *bufio.Reader
	done bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next event. It returns io.EOF when the stream is
// exhausted, and ErrMalformed (wrapped) for a complete line that is not a
// valid event. A malformed line does not end the stream; the caller may
// log it and call Next again.
func (d *Decoder) Next() (Event, error) {
	for {
		if d.done {
			return Event{}, io.EOF
		}

		line, err := d.r.ReadString('\n')
		if err != nil {
			d.done = true
			if !errors.Is(err, io.EOF) {
				return Event{}, err
			}
			if line == "" {
				return Event{}, io.EOF
			}
			// Trailing unterminated data: best-effort parse only. A failure
			// here is an incomplete fragment, not a malformed event.
			ev, ok, perr := parseLine(line)
			if perr != nil || !ok {
				return Event{}, io.EOF
			}
			return ev, nil
		}

		ev, ok, perr := parseLine(line)
		if perr != nil {
			return Event{}, perr
		}
		if !ok {
			continue
		}
		return ev, nil
	}
}
