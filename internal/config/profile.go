package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sprite-ai/askr/internal/validation"
)

// Profile is a reusable set of rules loaded from a file.
//
//	prompt = "Port:"
//	[[rules]]
//	kind = "integer"
//	[[rules]]
//	kind = "range"
//	min = 1
//	max = 65535
type Profile struct {
	Prompt   string            `yaml:"prompt,omitempty" toml:"prompt,omitempty"`
	HelpText string            `yaml:"help_text,omitempty" toml:"help_text,omitempty"`
	Rules    []validation.Spec `yaml:"rules" toml:"rules"`
}

// LoadProfile reads a TOML (.toml) or YAML (.yaml, .yml) profile. Unknown keys
// are rejected so typos do not silently drop a rule.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading profile: %w", ErrInvalid, err)
	}

	var p Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&p)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalid, path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalid, path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalid, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: profile %s: unsupported extension %q", ErrInvalid, path, ext)
	}

	for i, r := range p.Rules {
		if r.Kind == "" {
			return nil, fmt.Errorf("%w: %s: rule %d has no kind", ErrInvalid, path, i+1)
		}
	}
	return &p, nil
}
