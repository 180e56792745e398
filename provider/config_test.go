package provider

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
providers:
  - id: search
    transport: http
    url: http://127.0.0.1:8080/rpc
    headers:
      Authorization: Bearer ${SEARCH_TOKEN:-dev-token}
    timeout_ms: 5000
    retries: 1
  - id: files
    transport: stdio
    command: /usr/local/bin/files-server
    args: ["--root", "${FILES_ROOT:-/tmp}"]
  - id: metrics
    transport: socket
    address: 127.0.0.1:9321
`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("Len = %d, want 3", reg.Len())
	}

	search, err := reg.Resolve("search")
	if err != nil {
		t.Fatalf("Resolve search: %v", err)
	}
	if search.Kind != KindHTTP || search.TimeoutMS != 5000 || search.Retries != 1 {
		t.Fatalf("search = %+v", search)
	}
	if search.Headers["Authorization"] != "Bearer dev-token" {
		t.Fatalf("Authorization = %q, want the default expansion", search.Headers["Authorization"])
	}

	files, _ := reg.Resolve("files")
	if files.Args[1] != "/tmp" {
		t.Fatalf("Args = %v, want expanded default", files.Args)
	}
}

func TestParseEnvOverride(t *testing.T) {
	t.Setenv("SEARCH_TOKEN", "real-token")
	t.Setenv("FILES_ROOT", "/srv/files")

	reg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	search, _ := reg.Resolve("search")
	if search.Headers["Authorization"] != "Bearer real-token" {
		t.Fatalf("Authorization = %q", search.Headers["Authorization"])
	}
	files, _ := reg.Resolve("files")
	if files.Args[1] != "/srv/files" {
		t.Fatalf("Args = %v", files.Args)
	}
}

func TestParseUnsetEnvWithoutDefault(t *testing.T) {
	config := `
providers:
  - id: search
    transport: http
    url: ${CONFIG_TEST_UNSET_URL}
`
	os.Unsetenv("CONFIG_TEST_UNSET_URL")
	if _, err := Parse([]byte(config)); !errors.Is(err, ErrConfig) {
		t.Fatalf("Parse error = %v, want ErrConfig", err)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "providers: ["},
		{"no providers", "providers: []"},
		{"duplicate ids", `
providers:
  - id: a
    transport: socket
    address: 127.0.0.1:1
  - id: a
    transport: socket
    address: 127.0.0.1:2
`},
		{"unknown transport", `
providers:
  - id: a
    transport: quic
    url: http://x
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, ErrConfig) {
				t.Fatalf("Parse error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("Len = %d, want 3", reg.Len())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, ErrConfig) {
		t.Fatalf("Load error = %v, want ErrConfig", err)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_TEST_HOST", "db.internal")

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"${EXPAND_TEST_HOST}", "db.internal"},
		{"tcp://${EXPAND_TEST_HOST}:5432", "tcp://db.internal:5432"},
		{"${EXPAND_TEST_MISSING:-fallback}", "fallback"},
		{"${EXPAND_TEST_HOST:-unused}", "db.internal"},
	}
	for _, tt := range tests {
		got, err := ExpandEnv(tt.in)
		if err != nil {
			t.Fatalf("ExpandEnv(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ExpandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ExpandEnv("${EXPAND_TEST_MISSING}"); !errors.Is(err, ErrConfig) {
		t.Fatalf("ExpandEnv error = %v, want ErrConfig", err)
	}
}
