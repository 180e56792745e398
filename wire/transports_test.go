package wire

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jonwraymond/codebridge/provider"
)

// TestHelperProcess is not a real test: the stdio tests re-execute the test
// binary with this as the entry point, turning it into a line-delimited
// JSON-RPC provider on stdin/stdout.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	scanner := bufio.NewScanner(os.Stdin)
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
		fmt.Println(string(data))
	}
}

func startHTTPProvider(t *testing.T, wantHeader string) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantHeader != "" && r.Header.Get("Authorization") != wantHeader {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var msg Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		resp, ok := handleTestMessage(msg)
		if !ok {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func stdioDescriptor() provider.Descriptor {
	return provider.Descriptor{
		ID:      "files",
		Kind:    provider.KindStdio,
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--"},
		Env:     map[string]string{"GO_WANT_HELPER_PROCESS": "1"},
	}
}

// exerciseConnection runs the shared list/call assertions against a freshly
// dialed provider, whatever its transport.
func exerciseConnection(t *testing.T, desc provider.Descriptor) {
	t.Helper()
	ctx := context.Background()

	conn, err := Dial(ctx, desc)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	tools, err := conn.ListTools(ctx)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 4 {
		t.Fatalf("ListTools = %d tools, want 4", len(tools))
	}
	if tools[0].Name != "echo" || tools[0].Description == "" {
		t.Fatalf("tools[0] = %+v", tools[0])
	}

	res, err := conn.Call(ctx, "echo", map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("Call echo: %v", err)
	}
	if res.IsError {
		t.Fatal("echo reported IsError")
	}
	m, ok := res.Value.(map[string]any)
	if !ok || m["text"] != "hi" {
		t.Fatalf("echo value = %v", res.Value)
	}

	res, err = conn.Call(ctx, "plain", nil)
	if err != nil {
		t.Fatalf("Call plain: %v", err)
	}
	if res.Value != "all good" {
		t.Fatalf("plain value = %v", res.Value)
	}

	res, err = conn.Call(ctx, "report", nil)
	if err != nil {
		t.Fatalf("Call report: %v", err)
	}
	report, ok := res.Value.(map[string]any)
	if !ok || report["count"] != float64(2) {
		t.Fatalf("report value = %v, want decoded JSON", res.Value)
	}

	res, err = conn.Call(ctx, "broken", nil)
	if err != nil {
		t.Fatalf("Call broken: %v", err)
	}
	if !res.IsError || res.Value != "tool exploded" {
		t.Fatalf("broken result = %+v, want IsError with message", res)
	}

	if _, err := conn.Call(ctx, "missing", nil); !errors.Is(err, ErrTransport) {
		t.Fatalf("Call missing error = %v, want ErrTransport", err)
	}
}

func TestDialHTTP(t *testing.T) {
	url := startHTTPProvider(t, "")
	exerciseConnection(t, provider.Descriptor{ID: "search", Kind: provider.KindHTTP, URL: url})
}

func TestDialHTTPSendsHeaders(t *testing.T) {
	url := startHTTPProvider(t, "Bearer secret")
	exerciseConnection(t, provider.Descriptor{
		ID:      "search",
		Kind:    provider.KindHTTP,
		URL:     url,
		Headers: map[string]string{"Authorization": "Bearer secret"},
	})
}

func TestDialHTTPUnauthorized(t *testing.T) {
	url := startHTTPProvider(t, "Bearer secret")
	_, err := Dial(context.Background(), provider.Descriptor{
		ID:   "search",
		Kind: provider.KindHTTP,
		URL:  url,
	})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Dial error = %v, want ErrTransport", err)
	}
}

func TestDialSocket(t *testing.T) {
	addr := startSocketProvider(t)
	exerciseConnection(t, provider.Descriptor{ID: "metrics", Kind: provider.KindSocket, Address: addr})
}

func TestDialSocketRefused(t *testing.T) {
	_, err := Dial(context.Background(), provider.Descriptor{
		ID:      "metrics",
		Kind:    provider.KindSocket,
		Address: "127.0.0.1:1",
	})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Dial error = %v, want ErrTransport", err)
	}
}

func TestDialStdio(t *testing.T) {
	exerciseConnection(t, stdioDescriptor())
}

func TestDialStdioCloseReapsProcess(t *testing.T) {
	conn, err := Dial(context.Background(), stdioDescriptor())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close is idempotent.
	if err := conn.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDialUnknownKind(t *testing.T) {
	_, err := Dial(context.Background(), provider.Descriptor{ID: "x", Kind: "carrier-pigeon"})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Dial error = %v, want ErrTransport", err)
	}
}
