package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed data/terms.yaml
var embedded embed.FS

// Format identifies a catalog file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the catalog format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes catalog data. JSON input may carry // and /* */ comments
// and trailing commas.
func Parse(data []byte, format Format) (*Catalog, error) {
	var doc document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing catalog yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("parsing catalog json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return New(doc.Categories, doc.Terms)
}

// Encode writes the catalog in the given format. Parse accepts the output.
func (c *Catalog) Encode(format Format) ([]byte, error) {
	doc := document{Categories: c.Categories(), Terms: c.Terms()}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding catalog yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding catalog yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding catalog json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	data, err := embedded.ReadFile("data/terms.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog: %w", err)
	}
	return Parse(data, FormatYAML)
}

// Open loads the catalog at path, or the embedded one when path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}
