package wire

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jonwraymond/codebridge/provider"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrToolNotFound is returned by an in-process provider when asked to call
// a tool it does not serve.
var ErrToolNotFound = errors.New("wire: tool not found")

// HandlerFunc is the function signature for in-process tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]any) (Result, error)

// ToolDef declares one in-process tool with its handler.
type ToolDef struct {
	Name         string
	Title        string
	Description  string
	InputSchema  map[string]any
	OutputSchema map[string]any
	Annotations  *mcp.ToolAnnotations
	Handler      HandlerFunc
}

// InprocProvider serves tools from registered Go handlers without any
// transport. It exists for embedding and tests: its Dial method satisfies
// DialFunc, so the discovery service and call adapters exercise their full
// open/use/close lifecycle against it.
type InprocProvider struct {
	mu    sync.RWMutex
	tools map[string]ToolDef
}

// NewInprocProvider creates an empty in-process provider.
func NewInprocProvider() *InprocProvider {
	return &InprocProvider{tools: make(map[string]ToolDef)}
}

// RegisterTool adds or replaces a tool definition.
func (p *InprocProvider) RegisterTool(def ToolDef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tools[def.Name] = def
}

// Dial returns a fresh Connection backed by this provider. The descriptor
// is accepted for signature compatibility; the provider serves any ID.
func (p *InprocProvider) Dial(ctx context.Context, desc provider.Descriptor) (Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Provider: desc.ID, Op: "dial", Err: err}
	}
	return &inprocConn{provider: p, id: desc.ID}, nil
}

type inprocConn struct {
	provider *InprocProvider
	id       string

	mu     sync.Mutex
	closed bool
}

func (c *inprocConn) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if err := c.check(ctx); err != nil {
		return nil, &TransportError{Provider: c.id, Op: "list", Err: err}
	}

	c.provider.mu.RLock()
	defer c.provider.mu.RUnlock()

	names := make([]string, 0, len(c.provider.tools))
	for name := range c.provider.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]mcp.Tool, 0, len(names))
	for _, name := range names {
		def := c.provider.tools[name]
		out = append(out, mcp.Tool{
			Name:         def.Name,
			Title:        def.Title,
			Description:  def.Description,
			InputSchema:  def.InputSchema,
			OutputSchema: def.OutputSchema,
			Annotations:  def.Annotations,
		})
	}
	return out, nil
}

func (c *inprocConn) Call(ctx context.Context, tool string, args map[string]any) (Result, error) {
	if err := c.check(ctx); err != nil {
		return Result{}, &TransportError{Provider: c.id, Op: "call", Err: err}
	}

	c.provider.mu.RLock()
	def, ok := c.provider.tools[tool]
	c.provider.mu.RUnlock()

	if !ok || def.Handler == nil {
		return Result{}, &TransportError{Provider: c.id, Op: "call", Err: ErrToolNotFound}
	}

	res, err := def.Handler(ctx, args)
	if err != nil {
		return Result{}, &TransportError{Provider: c.id, Op: "call", Err: err}
	}
	return res, nil
}

func (c *inprocConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *inprocConn) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClosed
	}
	return nil
}
