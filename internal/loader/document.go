package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/dynaform/internal/field"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("loader: unsupported document format")

// LoadFields reads a descriptor list from a .json, .yaml or .yml file.
func LoadFields(path string) ([]*field.Field, error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	fields, err := field.DecodeFields(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fields, nil
}

// LoadModel reads a model object. An empty path yields an empty model.
func LoadModel(path string) (map[string]any, error) {
	if path == "" {
		return make(map[string]any), nil
	}
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	var model map[string]any
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%s: decoding model: %w", path, err)
	}
	if model == nil {
		model = make(map[string]any)
	}
	return model, nil
}

// readJSON returns the file's content as JSON, converting YAML input.
func readJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return data, nil
	case ".yaml", ".yml":
		out, err := YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// YAMLToJSON converts a YAML document into the equivalent JSON document.
func YAMLToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return json.Marshal(normalizeYAML(doc))
}

// normalizeYAML rewrites the map[any]any nodes yaml produces for
// non-string keys into JSON-compatible objects.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = normalizeYAML(item)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range x {
			x[i] = normalizeYAML(item)
		}
		return x
	}
	return v
}
