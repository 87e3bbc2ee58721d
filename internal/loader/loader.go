package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/er2view/internal/types"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when the data file does not exist.
var ErrNotFound = errors.New("data file not found")

// ParseError reports a data file whose content is not well-formed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Format names a source encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the format from the file extension, defaulting to JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads the data file at path and parses it into a Source.
func Load(path string) (*types.Source, error) {
	return LoadFormat(path, FormatAuto)
}

// LoadFormat is Load with an explicit format. FormatAuto falls back to DetectFormat.
func LoadFormat(path string, format Format) (*types.Source, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if format == FormatAuto {
		format = DetectFormat(path)
	}

	var src *types.Source
	switch format {
	case FormatJSON:
		src, err = parseJSON(data)
	case FormatYAML:
		src, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported data format: %s", format)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return src, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return data, nil
}

// parseJSON walks the top-level object token by token so that category
// order survives; encoding into a map would lose it.
func parseJSON(data []byte) (*types.Source, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	src := &types.Source{}
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return nil, err
		}

		switch types.Kind(key) {
		case types.KindSolid:
			if src.Solid, err = jsonSection(dec); err != nil {
				return nil, fmt.Errorf("section %s: %w", key, err)
			}
		case types.KindFluid:
			if src.Fluid, err = jsonSection(dec); err != nil {
				return nil, fmt.Errorf("section %s: %w", key, err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level object")
	}
	return src, nil
}

func jsonSection(dec *json.Decoder) ([]types.Category, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var cats []types.Category
	for dec.More() {
		name, err := objectKey(dec)
		if err != nil {
			return nil, err
		}
		var records []types.RawRecord
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("category %s: %w", name, err)
		}
		cats = append(cats, types.Category{Name: name, Records: records})
	}
	return cats, expectDelim(dec, '}')
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func parseYAML(data []byte) (*types.Source, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected mapping at top level", root.Line)
	}

	src := &types.Source{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		kind := types.Kind(key.Value)
		if kind != types.KindSolid && kind != types.KindFluid {
			continue
		}
		cats, err := yamlSection(value)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", key.Value, err)
		}
		if kind == types.KindSolid {
			src.Solid = cats
		} else {
			src.Fluid = cats
		}
	}
	return src, nil
}

func yamlSection(node *yaml.Node) ([]types.Category, error) {
	if node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected mapping", node.Line)
	}

	var cats []types.Category
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var records []types.RawRecord
		if err := node.Content[i+1].Decode(&records); err != nil {
			return nil, fmt.Errorf("category %s: %w", name, err)
		}
		cats = append(cats, types.Category{Name: name, Records: records})
	}
	return cats, nil
}
