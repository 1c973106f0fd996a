// Package provider loads schema documents into resolved models.
package provider

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/broady/jsonmodel/model"
)

// Format is the serialization of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat guesses the format from a file extension. Anything that is not
// .yaml or .yml is read as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Provider turns a schema document into a model.
type Provider interface {
	Load(data []byte, format Format) (*model.Model, error)
	LoadFile(path string) (*model.Model, error)
}

// decode parses a document into generic values: maps with string keys,
// slices, float64 or int numbers, strings, booleans and nil.
func decode(data []byte, format Format) (any, error) {
	switch format {
	case FormatJSON, "":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, model.Errorf(model.CodeMalformedModel, "parse json schema: %v", err)
		}
		return doc, nil
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, model.Errorf(model.CodeMalformedModel, "empty yaml schema")
			}
			return nil, model.Errorf(model.CodeMalformedModel, "parse yaml schema: %v", err)
		}
		return normalizeYAML(doc), nil
	}
	return nil, model.Errorf(model.CodeUnsupportedConfig, "unknown schema format %q", format)
}

// normalizeYAML converts map[any]any mappings into JSON-like map[string]any.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAML(t[i])
		}
		return arr
	}
	return v
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return data, nil
}
