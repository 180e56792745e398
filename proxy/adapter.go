package proxy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/jonwraymond/codebridge/catalog"
	"github.com/jonwraymond/codebridge/provider"
	"github.com/jonwraymond/codebridge/wire"
)

// Adapter is a callable stand-in for one remote tool. It is stateless
// between invocations: it holds only the configuration needed to open a
// connection, never a connection itself. Adapters are rebuilt per
// execution pass and must not be reused across catalog rebuilds.
type Adapter struct {
	desc   provider.Descriptor
	tool   catalog.Tool
	name   string
	schema *jsonschema.Resolved
	dial   wire.DialFunc
}

// Name returns the adapter's function name in the generated namespace.
func (a *Adapter) Name() string {
	return a.name
}

// Key returns the catalog key of the underlying tool.
func (a *Adapter) Key() catalog.Key {
	return a.tool.Key()
}

// Invoke performs one tool call.
//
// The argument is validated against the tool's input schema first; a
// violation fails with ErrInvalidArgument without contacting the provider.
// Each attempt opens a fresh connection bounded by the provider's timeout
// and closes it before the next step, so a failed or timed-out call never
// leaks a socket or subprocess. Transport failures are retried immediately
// up to the provider's retry count; the last failure is wrapped in
// *InvocationError.
//
// An application-level tool error is not an error here: the decoded
// response is returned as a value of the form
// {"isError": true, "error": <provider content>}.
func (a *Adapter) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if err := a.validateArgs(args); err != nil {
		return nil, err
	}

	attempts := a.desc.Retries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		res, err := a.callOnce(ctx, args)
		if err == nil {
			if res.IsError {
				return map[string]any{"isError": true, "error": res.Value}, nil
			}
			return res.Value, nil
		}
		lastErr = err
	}

	return nil, &InvocationError{
		Provider: a.desc.ID,
		Tool:     a.tool.Name,
		Attempts: attempts,
		Err:      lastErr,
	}
}

// callOnce opens a connection, issues the call, and closes the connection
// unconditionally.
func (a *Adapter) callOnce(ctx context.Context, args map[string]any) (wire.Result, error) {
	cctx, cancel := context.WithTimeout(ctx, a.desc.Timeout())
	defer cancel()

	conn, err := a.dial(cctx, a.desc)
	if err != nil {
		return wire.Result{}, err
	}
	defer conn.Close()

	return conn.Call(cctx, a.tool.Name, args)
}

func (a *Adapter) validateArgs(args map[string]any) error {
	if a.schema == nil {
		return nil
	}
	// Round-trip through JSON so typed values (int, json.Number) are
	// normalized to the shapes the validator expects.
	normalized, err := normalizeArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := a.schema.Validate(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

func normalizeArgs(args map[string]any) (map[string]any, error) {
	if args == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// resolveInputSchema compiles a tool's input schema for validation.
// Tools without a usable schema validate nothing; discovery keeps them
// callable rather than rejecting the whole provider.
func resolveInputSchema(raw any) (*jsonschema.Resolved, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding input schema: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decoding input schema: %w", err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving input schema: %w", err)
	}
	return resolved, nil
}
