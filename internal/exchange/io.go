package exchange

import (
	"errors"
	"fmt"
	"io"
)

// ReadPayload performs exactly one read of at most MaxPayloadSize bytes.
// A peer that closes without sending yields ErrEmptyPayload.
func ReadPayload(r io.Reader) ([]byte, error) {
	buf := make([]byte, MaxPayloadSize)
	n, err := r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, ErrEmptyPayload
	}
	return nil, fmt.Errorf("%w: read: %w", ErrTransport, err)
}

// WritePayload writes payload in one call.
func WritePayload(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return ErrPayloadTooLarge
	}
	n, err := w.Write(payload)
	if err != nil {
		return fmt.Errorf("%w: write: %w", ErrTransport, err)
	}
	if n != len(payload) {
		return fmt.Errorf("%w: short write %d/%d", ErrTransport, n, len(payload))
	}
	return nil
}
