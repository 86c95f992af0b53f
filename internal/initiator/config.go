package initiator

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAddr = errors.New("initiator: server address is required")
	ErrInvalidName = errors.New("initiator: name is required")
)

const (
	DefaultAddr = "127.0.0.1:6769"
	DefaultName = "Client of tcpsum"
)

// Config is the immutable initiator setup passed to New.
type Config struct {
	Addr string
	Name string
	// Zero values wait indefinitely.
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr: DefaultAddr,
		Name: DefaultName,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return ErrInvalidAddr
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}
	return nil
}
