//go:build !linux

package responder

import (
	"context"
	"net"
)

// listenTCP falls back to the runtime's listener; backlog and reuse follow OS defaults.
func listenTCP(cfg Config) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(context.Background(), "tcp", cfg.Addr)
}
