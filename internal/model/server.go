package model

import (
	"context"
	"net"
)

// SecurityLayer opens listeners for ops servers.
type SecurityLayer interface {
	Listen(network, addr string) (net.Listener, error)
}

// Server is a long-running ops endpoint (gRPC health, HTTP metrics).
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
