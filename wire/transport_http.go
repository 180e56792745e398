package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// httpTransportConfig configures a request/response HTTP transport.
type httpTransportConfig struct {
	Endpoint string
	Headers  map[string]string
	Client   *http.Client
}

// httpTransport exchanges JSON-RPC messages with an HTTP endpoint, one POST
// per outgoing message. Responses are queued for Receive so the transport
// satisfies the same Send/Receive contract as the stream transports.
type httpTransport struct {
	mu     sync.Mutex
	cfg    httpTransportConfig
	recvCh chan Message
	closed bool
}

func newHTTPTransport(cfg httpTransportConfig) (*httpTransport, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("http endpoint is required")
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &httpTransport{
		cfg:    cfg,
		recvCh: make(chan Message, 16),
	}, nil
}

// Send posts one message and enqueues any JSON-RPC response body.
// Notifications expect no body; an empty 2xx response is fine.
func (t *httpTransport) Send(ctx context.Context, msg Message) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return errClosed
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range t.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := t.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	if len(strings.TrimSpace(string(responseBytes))) == 0 {
		return nil
	}

	var response Message
	if err := json.Unmarshal(responseBytes, &response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	select {
	case t.recvCh <- response:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive waits for the next queued response.
func (t *httpTransport) Receive(ctx context.Context) (Message, error) {
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case msg := <-t.recvCh:
		return msg, nil
	}
}

// Close marks the transport closed. HTTP holds no persistent resources.
func (t *httpTransport) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
