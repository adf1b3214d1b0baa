package link

import "errors"

var (
	// ErrDecode indicates a frame is not valid UTF-8.
	// The receive buffer is discarded entirely when it happens.
	ErrDecode = errors.New("frame decode error")
	// ErrOverflow indicates a frame longer than Codec.MaxBuffer was dropped.
	ErrOverflow = errors.New("receive buffer overflow")
)
