// Package frame implements the chat wire format: one length byte followed by
// exactly that many payload bytes. There is no escaping and no checksum.
package frame

import (
	"errors"
	"fmt"
	"io"
)

// MaxPayload is the largest payload a single length byte can describe.
const MaxPayload = 255

// DefaultBufferSize matches the receive buffer the server has always used.
const DefaultBufferSize = 2056

var (
	ErrEmptyPayload  = errors.New("frame: empty payload")
	ErrFrameTooLarge = errors.New("frame: payload exceeds buffer capacity")
)

// PayloadLimit returns the largest payload that fits a receive buffer of
// bufferSize bytes. One byte of the buffer stays reserved.
func PayloadLimit(bufferSize int) int {
	limit := bufferSize - 1
	if limit > MaxPayload {
		limit = MaxPayload
	}
	if limit < 0 {
		limit = 0
	}
	return limit
}

// Append encodes payload as a frame and appends it to dst.
// Only len(payload) bytes are copied, whatever the capacity of the slice.
func Append(dst, payload []byte, limit int) ([]byte, error) {
	n := len(payload)
	if n == 0 {
		return dst, ErrEmptyPayload
	}
	if n > limit || n > MaxPayload {
		return dst, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, limit)
	}
	dst = append(dst, byte(n))
	return append(dst, payload[:n]...), nil
}

// Encode returns payload as a standalone frame.
func Encode(payload []byte, limit int) ([]byte, error) {
	return Append(make([]byte, 0, len(payload)+1), payload, limit)
}

// Write encodes payload and writes the whole frame to w.
func Write(w io.Writer, payload []byte, limit int) error {
	b, err := Encode(payload, limit)
	if err != nil {
		return err
	}
	return WriteAll(w, b)
}

// WriteAll writes b to w, retrying short writes.
func WriteAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
