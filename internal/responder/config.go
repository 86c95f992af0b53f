package responder

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAddr    = errors.New("responder: listen address is required")
	ErrInvalidName    = errors.New("responder: name is required")
	ErrInvalidRange   = errors.New("responder: min number exceeds max number")
	ErrInvalidBacklog = errors.New("responder: backlog must be positive")
)

const (
	DefaultAddr   = "127.0.0.1:6769"
	DefaultName   = "Server of tcpsum"
	DefaultNumber = 99
)

// Config is the immutable responder setup passed to New.
type Config struct {
	Addr      string
	Name      string
	Number    int
	MinNumber int
	MaxNumber int
	Backlog   int
	ReuseAddr bool
	// Zero timeouts block indefinitely on a stalled peer.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:      DefaultAddr,
		Name:      DefaultName,
		Number:    DefaultNumber,
		MinNumber: 1,
		MaxNumber: 100,
		Backlog:   1,
		ReuseAddr: true,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return ErrInvalidAddr
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}
	if c.MinNumber > c.MaxNumber {
		return ErrInvalidRange
	}
	if c.Backlog <= 0 {
		return ErrInvalidBacklog
	}
	return nil
}

// InRange reports whether n is accepted for a reply.
func (c Config) InRange(n int) bool {
	return n >= c.MinNumber && n <= c.MaxNumber
}
