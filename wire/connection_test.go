package wire

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// scriptedTransport replays canned messages and records what was sent.
type scriptedTransport struct {
	sent    []Message
	replies []Message
	closed  bool
}

func (t *scriptedTransport) Send(ctx context.Context, msg Message) error {
	t.sent = append(t.sent, msg)
	return nil
}

func (t *scriptedTransport) Receive(ctx context.Context) (Message, error) {
	if len(t.replies) == 0 {
		return Message{}, errors.New("no more replies")
	}
	msg := t.replies[0]
	t.replies = t.replies[1:]
	return msg, nil
}

func (t *scriptedTransport) Close(ctx context.Context) error {
	t.closed = true
	return nil
}

func rawResult(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func initReply(t *testing.T, id int64) Message {
	return Message{JSONRPC: jsonRPCVersion, ID: id, Result: rawResult(t, map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo":      map[string]any{"name": "scripted"},
	})}
}

func TestConnPerformsHandshake(t *testing.T) {
	tr := &scriptedTransport{replies: []Message{initReply(t, 1)}}

	c, err := newConn(context.Background(), "p", tr)
	if err != nil {
		t.Fatalf("newConn: %v", err)
	}
	defer c.Close()

	if len(tr.sent) != 2 {
		t.Fatalf("sent %d messages, want initialize + initialized", len(tr.sent))
	}
	if tr.sent[0].Method != "initialize" || tr.sent[0].ID != 1 {
		t.Fatalf("first message = %+v", tr.sent[0])
	}
	if tr.sent[1].Method != "notifications/initialized" || tr.sent[1].ID != 0 {
		t.Fatalf("second message = %+v, want an id-less notification", tr.sent[1])
	}
	if !strings.Contains(string(tr.sent[0].Params), clientName) {
		t.Fatalf("initialize params = %s", tr.sent[0].Params)
	}
}

func TestConnSkipsUnrelatedMessages(t *testing.T) {
	tr := &scriptedTransport{replies: []Message{
		initReply(t, 1),
		// A server-initiated notification and a stale response arrive
		// before the answer to request 2.
		{JSONRPC: jsonRPCVersion, Method: "notifications/progress"},
		{JSONRPC: jsonRPCVersion, ID: 99, Result: rawResult(t, map[string]any{})},
		{JSONRPC: jsonRPCVersion, ID: 2, Result: rawResult(t, map[string]any{
			"tools": []map[string]any{{"name": "echo"}},
		})},
	}}

	c, err := newConn(context.Background(), "p", tr)
	if err != nil {
		t.Fatalf("newConn: %v", err)
	}
	defer c.Close()

	tools, err := c.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "echo" {
		t.Fatalf("tools = %+v", tools)
	}
}

func TestConnSurfacesRPCError(t *testing.T) {
	tr := &scriptedTransport{replies: []Message{
		initReply(t, 1),
		{JSONRPC: jsonRPCVersion, ID: 2, Error: &RPCError{Code: -32601, Message: "method not found"}},
	}}

	c, err := newConn(context.Background(), "p", tr)
	if err != nil {
		t.Fatalf("newConn: %v", err)
	}
	defer c.Close()

	_, err = c.ListTools(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != -32601 {
		t.Fatalf("error = %v, want the rpc error preserved", err)
	}
}

func TestConnRejectsWrongProtocolVersion(t *testing.T) {
	tr := &scriptedTransport{replies: []Message{
		{JSONRPC: "1.0", ID: 1, Result: rawResult(t, map[string]any{})},
	}}

	if _, err := newConn(context.Background(), "p", tr); !errors.Is(err, ErrTransport) {
		t.Fatalf("newConn error = %v, want ErrTransport", err)
	}
	if !tr.closed {
		t.Fatal("transport left open after failed handshake")
	}
}

func TestConnCloseIsIdempotent(t *testing.T) {
	tr := &scriptedTransport{replies: []Message{initReply(t, 1)}}
	c, err := newConn(context.Background(), "p", tr)
	if err != nil {
		t.Fatalf("newConn: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if !tr.closed {
		t.Fatal("transport not closed")
	}
}

func TestDecodeCallResult(t *testing.T) {
	tests := []struct {
		name string
		in   toolsCallResult
		want Result
	}{
		{
			name: "structured content preferred",
			in: toolsCallResult{
				StructuredContent: map[string]any{"n": float64(1)},
				Content:           []contentBlock{{Type: "text", Text: "ignored"}},
			},
			want: Result{Value: map[string]any{"n": float64(1)}},
		},
		{
			name: "plain text",
			in:   toolsCallResult{Content: []contentBlock{{Type: "text", Text: "all good"}}},
			want: Result{Value: "all good"},
		},
		{
			name: "json text decoded",
			in:   toolsCallResult{Content: []contentBlock{{Type: "text", Text: ` {"count": 2}`}}},
			want: Result{Value: map[string]any{"count": float64(2)}},
		},
		{
			name: "invalid json stays text",
			in:   toolsCallResult{Content: []contentBlock{{Type: "text", Text: "{not json"}}},
			want: Result{Value: "{not json"},
		},
		{
			name: "multiple blocks joined",
			in: toolsCallResult{Content: []contentBlock{
				{Type: "text", Text: "line one"},
				{Type: "image", Data: "ZZZZ"},
				{Type: "text", Text: "line two"},
			}},
			want: Result{Value: "line one\nline two"},
		},
		{
			name: "error flag preserved",
			in: toolsCallResult{
				IsError: true,
				Content: []contentBlock{{Type: "text", Text: "boom"}},
			},
			want: Result{Value: "boom", IsError: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeCallResult(tt.in)
			if got.IsError != tt.want.IsError {
				t.Fatalf("IsError = %v, want %v", got.IsError, tt.want.IsError)
			}
			gotJSON, _ := json.Marshal(got.Value)
			wantJSON, _ := json.Marshal(tt.want.Value)
			if string(gotJSON) != string(wantJSON) {
				t.Fatalf("Value = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}
