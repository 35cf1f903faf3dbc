package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names an on-disk encoding of the task file.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a user-supplied format name. The empty string is
// accepted and means "detect from the file extension".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q, must be one of: json, toml, yaml", s)
	}
}

// FormatFor returns override if set, otherwise the format implied by the
// extension of path. Unknown extensions fall back to JSON.
func FormatFor(path string, override Format) Format {
	if override != "" {
		return override
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// codec encodes and decodes the task file document.
type codec interface {
	marshal(doc *document) ([]byte, error)
	unmarshal(data []byte, doc *document) error
	// generic decodes into plain maps and slices for schema validation.
	generic(data []byte) (interface{}, error)
}

func codecFor(f Format) codec {
	switch f {
	case FormatTOML:
		return tomlCodec{}
	case FormatYAML:
		return yamlCodec{}
	default:
		return jsonCodec{}
	}
}

type jsonCodec struct{}

// marshal writes 2-space indentation and a trailing newline.
func (jsonCodec) marshal(doc *document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (jsonCodec) unmarshal(data []byte, doc *document) error {
	return json.Unmarshal(data, doc)
}

func (jsonCodec) generic(data []byte) (interface{}, error) {
	return decodeJSONValue(data)
}

type tomlCodec struct{}

func (tomlCodec) marshal(doc *document) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (tomlCodec) unmarshal(data []byte, doc *document) error {
	_, err := toml.Decode(string(data), doc)
	return err
}

func (tomlCodec) generic(data []byte) (interface{}, error) {
	var v map[string]interface{}
	if _, err := toml.Decode(string(data), &v); err != nil {
		return nil, err
	}
	return toJSONValue(v)
}

type yamlCodec struct{}

func (yamlCodec) marshal(doc *document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (yamlCodec) unmarshal(data []byte, doc *document) error {
	return yaml.Unmarshal(data, doc)
}

func (yamlCodec) generic(data []byte) (interface{}, error) {
	var v map[string]interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return toJSONValue(v)
}

// toJSONValue converts decoder output (which may hold time.Time or int64
// values) into the shape encoding/json would produce.
func toJSONValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeJSONValue(data)
}

// decodeJSONValue keeps numbers as json.Number so large ids stay exact.
func decodeJSONValue(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
