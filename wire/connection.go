package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Result is the decoded outcome of one tool call.
//
// IsError carries the provider's application-level error flag: the remote
// tool ran and reported a failure (for example "not found"). That is an
// ordinary result for callers, not a transport error.
type Result struct {
	Value   any
	IsError bool
}

// Connection is a live session with one provider. Implementations are not
// required to be safe for concurrent use; the pipeline opens one connection
// per discovery pass or per call and never shares it.
type Connection interface {
	// ListTools enumerates the provider's tools.
	ListTools(ctx context.Context) ([]mcp.Tool, error)

	// Call invokes one tool by its provider-local name.
	Call(ctx context.Context, tool string, args map[string]any) (Result, error)

	// Close releases the transport. Safe to call more than once.
	Close() error
}

// Transport moves JSON-RPC messages for one connection.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Receive(ctx context.Context) (Message, error)
	Close(ctx context.Context) error
}

// closeTimeout bounds transport teardown so Close cannot hang on a wedged
// subprocess or peer.
const closeTimeout = 5 * time.Second

// conn is the JSON-RPC client behind every transport-backed Connection.
type conn struct {
	provider  string
	transport Transport

	mu     sync.Mutex
	nextID int64
	closed bool
}

// newConn wraps a transport and performs the initialize handshake.
func newConn(ctx context.Context, providerID string, t Transport) (*conn, error) {
	c := &conn{provider: providerID, transport: t, nextID: 1}

	params := initializeParams{
		ProtocolVersion: protocolVersion,
		ClientInfo:      clientInfo{Name: clientName, Version: clientVersion},
	}
	var result initializeResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		_ = c.Close()
		return nil, &TransportError{Provider: providerID, Op: "initialize", Err: err}
	}
	if err := c.notify(ctx, "notifications/initialized", map[string]any{}); err != nil {
		_ = c.Close()
		return nil, &TransportError{Provider: providerID, Op: "initialize", Err: err}
	}
	return c, nil
}

func (c *conn) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	var result toolsListResult
	if err := c.call(ctx, "tools/list", map[string]any{}, &result); err != nil {
		return nil, &TransportError{Provider: c.provider, Op: "list", Err: err}
	}
	return result.Tools, nil
}

func (c *conn) Call(ctx context.Context, tool string, args map[string]any) (Result, error) {
	params := toolsCallParams{Name: tool, Arguments: args}
	var result toolsCallResult
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return Result{}, &TransportError{Provider: c.provider, Op: "call", Err: err}
	}
	return decodeCallResult(result), nil
}

func (c *conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := c.transport.Close(ctx); err != nil {
		return &TransportError{Provider: c.provider, Op: "close", Err: err}
	}
	return nil
}

// call sends one request and waits for its matching response, skipping
// notifications and responses to other IDs.
func (c *conn) call(ctx context.Context, method string, params any, out any) error {
	paramsRaw, err := marshalParams(params)
	if err != nil {
		return err
	}

	id := c.nextRequestID()
	req := Message{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: paramsRaw}
	if err := c.transport.Send(ctx, req); err != nil {
		return fmt.Errorf("request %q: %w", method, err)
	}

	for {
		resp, err := c.transport.Receive(ctx)
		if err != nil {
			return fmt.Errorf("request %q: %w", method, err)
		}
		if resp.JSONRPC != "" && resp.JSONRPC != jsonRPCVersion {
			return fmt.Errorf("request %q: unsupported jsonrpc version %q", method, resp.JSONRPC)
		}
		if resp.ID == 0 || resp.ID != id {
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("request %q: %w", method, resp.Error)
		}
		if out == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("request %q: decode result: %w", method, err)
		}
		return nil
	}
}

func (c *conn) notify(ctx context.Context, method string, params any) error {
	paramsRaw, err := marshalParams(params)
	if err != nil {
		return err
	}
	return c.transport.Send(ctx, Message{JSONRPC: jsonRPCVersion, Method: method, Params: paramsRaw})
}

func (c *conn) nextRequestID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	return id
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	return data, nil
}

// decodeCallResult picks the most structured representation available:
// structuredContent when present, otherwise the joined text content, decoded
// as JSON when it parses.
func decodeCallResult(r toolsCallResult) Result {
	if r.StructuredContent != nil {
		return Result{Value: r.StructuredContent, IsError: r.IsError}
	}

	parts := make([]string, 0, len(r.Content))
	for _, block := range r.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.Join(parts, "\n")

	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return Result{Value: decoded, IsError: r.IsError}
		}
	}
	return Result{Value: text, IsError: r.IsError}
}

var errClosed = errors.New("transport is closed")
