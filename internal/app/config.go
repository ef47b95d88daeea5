package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Input is one value fed into the form, as if typed by a user.
type Input struct {
	Key   string
	Value any
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	FieldsPath  string   // .json/.yaml descriptors
	ModelPath   string   // optional initial model
	ConfigPaths []string // .hcl registry configuration

	Inputs []Input
	Submit bool
	Dump   bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.FieldsPath == "" {
		return nil, errors.New("FieldsPath is a required configuration field and cannot be empty")
	}
	for _, in := range cfg.Inputs {
		if in.Key == "" {
			return nil, errors.New("inputs must name a key")
		}
	}
	return &cfg, nil
}

// ParseInput parses "key=value". The value is decoded as JSON when it is
// valid JSON and kept as a plain string otherwise.
func ParseInput(s string) (Input, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return Input{}, fmt.Errorf("invalid input %q: expected key=value", s)
	}
	in := Input{Key: strings.TrimSpace(key), Value: raw}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		in.Value = decoded
	}
	return in, nil
}
