package provider

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk provider configuration document.
type File struct {
	Providers []Descriptor `yaml:"providers"`
}

// Load reads a YAML provider configuration from path, expands environment
// references, validates every descriptor, and returns a populated registry.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}
	return Parse(data)
}

// Parse builds a registry from raw YAML configuration bytes.
//
// Connection fields (url, address, command, args, headers, env) may
// reference environment variables as ${VAR} or ${VAR:-default}. A reference
// with no value and no default fails with ErrConfig.
func Parse(data []byte) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %v", ErrConfig, err)
	}
	if len(f.Providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", ErrConfig)
	}

	reg := NewRegistry()
	for i := range f.Providers {
		d, err := expandDescriptor(f.Providers[i])
		if err != nil {
			return nil, err
		}
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// envRef matches ${NAME} and ${NAME:-default}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnv substitutes ${VAR} and ${VAR:-default} references in s.
// An unset variable without a default is an ErrConfig.
func ExpandEnv(s string) (string, error) {
	var expandErr error
	out := envRef.ReplaceAllStringFunc(s, func(ref string) string {
		groups := envRef.FindStringSubmatch(ref)
		name, hasDefault, fallback := groups[1], groups[2] != "", groups[3]
		if value, ok := os.LookupEnv(name); ok && value != "" {
			return value
		}
		if hasDefault {
			return fallback
		}
		if expandErr == nil {
			expandErr = fmt.Errorf("%w: environment variable %s is not set and has no default", ErrConfig, name)
		}
		return ""
	})
	return out, expandErr
}

func expandDescriptor(d Descriptor) (Descriptor, error) {
	var err error
	expand := func(s string) string {
		if err != nil || !strings.Contains(s, "${") {
			return s
		}
		var out string
		out, err = ExpandEnv(s)
		return out
	}

	d.URL = expand(d.URL)
	d.Address = expand(d.Address)
	d.Command = expand(d.Command)
	for i := range d.Args {
		d.Args[i] = expand(d.Args[i])
	}
	for k, v := range d.Headers {
		d.Headers[k] = expand(v)
	}
	for k, v := range d.Env {
		d.Env[k] = expand(v)
	}
	if err != nil {
		return Descriptor{}, fmt.Errorf("provider %q: %w", d.ID, err)
	}
	return d, nil
}
