// Package link carries newline-delimited text frames over the serial link
// between the robot-control node and the wireless-bridge node.
package link

// Both nodes share the same framing: UTF-8 text, one frame per line.
// Bytes arrive in arbitrary chunks; Codec reassembles them into frames
// and Reader moves them from the port goroutine into the control loop.
