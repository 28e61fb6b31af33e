package entitystore

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	jsoniter "github.com/json-iterator/go"
)

// Codec converts the in-memory mapping to file content and back.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

var (
	// JSON writes pretty-printed JSON with sorted keys.
	JSON Codec = jsonCodec{api: json}
	// YAML reads and writes YAML, honouring the records' json tags.
	YAML Codec = yamlCodec{api: json}
)

type jsonCodec struct {
	api jsoniter.API
}

// Marshal encodes compactly and indents afterwards. jsoniter loses nested indentation when it
// sorts maps with non-string keys.
func (c jsonCodec) Marshal(v any) ([]byte, error) {
	compact, err := c.api.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := stdjson.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

func (c jsonCodec) Unmarshal(data []byte, v any) error {
	return c.api.Unmarshal(data, v)
}

type yamlCodec struct {
	api jsoniter.API
}

func (c yamlCodec) Marshal(v any) ([]byte, error) {
	j, err := c.api.Marshal(v)
	if err != nil {
		return nil, err
	}

	return yaml.JSONToYAML(j)
}

func (c yamlCodec) Unmarshal(data []byte, v any) error {
	j, err := yaml.YAMLToJSON(data)
	if err != nil {
		return err
	}

	return c.api.Unmarshal(j, v)
}

// CodecFor returns the codec registered under name ("json", "yaml" or "yml").
func CodecFor(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return nil, fmt.Errorf("unsupported data format %q", name)
	}
}
