package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"testing"
)

// fakeProviderTools is the tool set every fake provider in this package
// serves, exercising each result encoding the client must decode.
func fakeProviderTools() []map[string]any {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
	}
	return []map[string]any{
		{"name": "echo", "description": "Echo the input back.", "inputSchema": schema},
		{"name": "plain", "description": "Returns plain text.", "inputSchema": schema},
		{"name": "report", "description": "Returns JSON as text.", "inputSchema": schema},
		{"name": "broken", "description": "Always reports a tool error.", "inputSchema": schema},
	}
}

// handleTestMessage implements the provider side of the protocol for tests.
// The bool result reports whether a response should be sent at all;
// notifications get none.
func handleTestMessage(msg Message) (Message, bool) {
	respond := func(result any) (Message, bool) {
		raw, err := json.Marshal(result)
		if err != nil {
			panic(err)
		}
		return Message{JSONRPC: jsonRPCVersion, ID: msg.ID, Result: raw}, true
	}

	switch msg.Method {
	case "initialize":
		return respond(map[string]any{
			"protocolVersion": protocolVersion,
			"serverInfo":      map[string]any{"name": "fake-provider", "version": "0.0.1"},
		})
	case "notifications/initialized":
		return Message{}, false
	case "tools/list":
		return respond(map[string]any{"tools": fakeProviderTools()})
	case "tools/call":
		var params toolsCallParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return Message{JSONRPC: jsonRPCVersion, ID: msg.ID,
				Error: &RPCError{Code: -32602, Message: "bad params"}}, true
		}
		switch params.Name {
		case "echo":
			return respond(map[string]any{"structuredContent": params.Arguments})
		case "plain":
			return respond(map[string]any{
				"content": []map[string]any{{"type": "text", "text": "all good"}},
			})
		case "report":
			return respond(map[string]any{
				"content": []map[string]any{{"type": "text", "text": `{"count": 2}`}},
			})
		case "broken":
			return respond(map[string]any{
				"isError": true,
				"content": []map[string]any{{"type": "text", "text": "tool exploded"}},
			})
		default:
			return Message{JSONRPC: jsonRPCVersion, ID: msg.ID,
				Error: &RPCError{Code: -32602, Message: "unknown tool"}}, true
		}
	default:
		return Message{JSONRPC: jsonRPCVersion, ID: msg.ID,
			Error: &RPCError{Code: -32601, Message: "method not found"}}, true
	}
}

// serveLines runs the fake provider over a line-delimited stream until the
// reader closes. Used by the socket tests and the stdio helper process.
func serveLines(r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return
		}
		resp, ok := handleTestMessage(msg)
		if !ok {
			continue
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "%s\n", data)
	}
}

// startSocketProvider listens on a loopback port and serves the fake
// provider to every connection.
func startSocketProvider(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer nc.Close()
				serveLines(nc, nc)
			}()
		}
	}()
	return ln.Addr().String()
}
