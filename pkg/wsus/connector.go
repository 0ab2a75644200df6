package wsus

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

const (
	// DefaultSecurePort is the WSUS administration endpoint over TLS.
	DefaultSecurePort = 8531
	// FallbackPort is the plain-HTTP administration endpoint, tried when
	// the secure port does not answer.
	FallbackPort = 8530
)

// Dialer opens a client session against one host:port endpoint.
type Dialer func(ctx context.Context, host string, port int) (Client, error)

// Connect acquires a session for a server, trying the secure port first and
// the fallback port on failure. Both failures are reported together.
func Connect(ctx context.Context, dial Dialer, host string) (Client, error) {
	logger := zerolog.Ctx(ctx)

	client, secureErr := dial(ctx, host, DefaultSecurePort)
	if secureErr == nil {
		return client, nil
	}

	logger.Warn().
		Str("server", host).
		Int("port", DefaultSecurePort).
		Err(secureErr).
		Msg("secure port refused, retrying on fallback port")

	client, fallbackErr := dial(ctx, host, FallbackPort)
	if fallbackErr == nil {
		return client, nil
	}

	return nil, fmt.Errorf("connect %s: port %d: %v; port %d: %w",
		host, DefaultSecurePort, secureErr, FallbackPort, fallbackErr)
}
