package responder

import (
	"errors"
	"fmt"

	"github.com/danmuck/tcpsum/internal/exchange"
)

var (
	ErrRangeViolation = errors.New("responder: number out of range")
	ErrNotListening   = errors.New("responder: not listening")
)

// RangeError carries the rejected number and the accepted bounds. Literal is
// set instead of Number when the value did not fit in int.
type RangeError struct {
	Number  int
	Literal string
	Min     int
	Max     int
}

func (e *RangeError) Error() string {
	if e.Literal != "" {
		return fmt.Sprintf("responder: number %s out of range (%d-%d)", e.Literal, e.Min, e.Max)
	}
	return fmt.Sprintf("responder: number %d out of range (%d-%d)", e.Number, e.Min, e.Max)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrRangeViolation
}

// Outcome is the result of one SERVE step.
type Outcome struct {
	Kind    OutcomeKind
	Request exchange.Request
	Reply   exchange.Response
	Sum     int
	Err     error
}

// Terminal reports whether the outcome ends the accept loop.
func (o Outcome) Terminal() bool {
	return o.Kind == OutcomeRangeViolation
}

// Sum is the derived value both sides report.
func Sum(clientNumber, serverNumber int) int {
	return clientNumber + serverNumber
}
