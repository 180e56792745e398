package wire

import (
	"context"
	"fmt"

	"github.com/jonwraymond/codebridge/provider"
)

// DialFunc opens a Connection to one provider. The pipeline takes a
// DialFunc everywhere it needs transport access so tests can substitute
// in-process providers.
type DialFunc func(ctx context.Context, desc provider.Descriptor) (Connection, error)

// Dial opens a transport appropriate to the descriptor's kind and performs
// the initialize handshake. Failures are *TransportError.
func Dial(ctx context.Context, desc provider.Descriptor) (Connection, error) {
	t, err := dialTransport(ctx, desc)
	if err != nil {
		return nil, &TransportError{Provider: desc.ID, Op: "dial", Err: err}
	}
	c, err := newConn(ctx, desc.ID, t)
	if err != nil {
		// newConn closed the transport already.
		return nil, err
	}
	return c, nil
}

func dialTransport(ctx context.Context, desc provider.Descriptor) (Transport, error) {
	switch desc.Kind {
	case provider.KindHTTP:
		return newHTTPTransport(httpTransportConfig{
			Endpoint: desc.URL,
			Headers:  desc.Headers,
		})
	case provider.KindStdio:
		return newStdioTransport(ctx, stdioTransportConfig{
			Command: desc.Command,
			Args:    desc.Args,
			Env:     desc.Env,
		})
	case provider.KindSocket:
		return newSocketTransport(ctx, desc.Address)
	default:
		return nil, fmt.Errorf("unknown transport kind %q", desc.Kind)
	}
}
