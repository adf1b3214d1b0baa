package link

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

// DefaultMaxBuffer bounds the length of a single frame.
const DefaultMaxBuffer = 4096

// Codec reassembles newline-terminated frames from byte chunks.
// It owns the receive buffer; it is not safe for concurrent use.
type Codec struct {
	// MaxBuffer is the longest frame accepted, terminator excluded.
	// Longer frames are dropped whole however they are chunked.
	MaxBuffer int

	buf        []byte
	discarding bool
}

// NewCodec creates a Codec with DefaultMaxBuffer.
func NewCodec() *Codec {
	return &Codec{MaxBuffer: DefaultMaxBuffer}
}

func (c *Codec) max() int {
	if c.MaxBuffer <= 0 {
		return DefaultMaxBuffer
	}
	return c.MaxBuffer
}

// Ingest appends data to the receive buffer. If the trailing unterminated
// fragment exceeds MaxBuffer, it is dropped along with the rest of its
// frame up to the next newline, and ErrOverflow returned. Complete frames
// already buffered are kept.
func (c *Codec) Ingest(data []byte) error {
	if c.discarding {
		pos := bytes.IndexByte(data, '\n')
		if pos < 0 {
			return nil
		}
		c.discarding = false
		data = data[pos+1:]
	}
	c.buf = append(c.buf, data...)
	tail := bytes.LastIndexByte(c.buf, '\n') + 1
	if len(c.buf)-tail > c.max() {
		c.buf = c.buf[:tail]
		if len(c.buf) == 0 {
			c.buf = nil
		}
		c.discarding = true
		return ErrOverflow
	}
	return nil
}

// Next extracts the next complete frame with the line terminator stripped.
// It returns false when only a partial fragment (or nothing) is buffered.
// On ErrOverflow the oversized frame has been dropped and the following
// frames are still available. On ErrDecode the whole buffer has been
// discarded.
func (c *Codec) Next() (string, bool, error) {
	pos := bytes.IndexByte(c.buf, '\n')
	if pos < 0 {
		return "", false, nil
	}
	frame := c.buf[:pos]
	c.buf = c.buf[pos+1:]
	if len(c.buf) == 0 {
		c.buf = nil
	}
	if len(frame) > c.max() {
		return "", false, ErrOverflow
	}
	if !utf8.Valid(frame) {
		c.buf = nil
		return "", false, ErrDecode
	}
	return strings.TrimSuffix(string(frame), "\r"), true, nil
}

// Frames drains all complete frames. Oversized frames are skipped and
// reported as ErrOverflow once the remaining frames are drained. It stops
// at the first decode fault, returning the frames extracted before it
// together with the error.
func (c *Codec) Frames() (frames []string, err error) {
	for {
		frame, ok, ferr := c.Next()
		switch {
		case errors.Is(ferr, ErrOverflow):
			err = ferr
			continue
		case ferr != nil:
			return frames, ferr
		case !ok:
			return frames, err
		}
		frames = append(frames, frame)
	}
}

// Buffered returns the number of bytes held in the receive buffer.
func (c *Codec) Buffered() int {
	return len(c.buf)
}

// Reset discards the receive buffer.
func (c *Codec) Reset() {
	c.buf = nil
	c.discarding = false
}

// Line terminates text with a newline if it is not terminated yet.
func Line(text string) string {
	if strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
