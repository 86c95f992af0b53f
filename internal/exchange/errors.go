package exchange

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPayload    = errors.New("exchange: empty payload")
	ErrDecode          = errors.New("exchange: decode failed")
	ErrPayloadTooLarge = errors.New("exchange: payload too large")
	ErrConnection      = errors.New("exchange: connection failed")
	ErrTransport       = errors.New("exchange: transport failed")
	ErrNumberOverflow  = errors.New("exchange: number overflows int")
)

// DecodeError reports a payload that is not a valid message. Field is set when
// the JSON parsed but a required key was missing.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("exchange: decode failed: missing field %q", e.Field)
	}
	return fmt.Sprintf("exchange: decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// ConnectionError reports a dial that never produced a connection.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("exchange: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// NumberOverflowError reports an integer literal too large for int. The
// payload is otherwise well formed, so Name is populated.
type NumberOverflowError struct {
	Name    string
	Literal string
}

func (e *NumberOverflowError) Error() string {
	return fmt.Sprintf("exchange: number %s overflows int", e.Literal)
}

func (e *NumberOverflowError) Is(target error) bool {
	return target == ErrNumberOverflow
}
