package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"
	"gopkg.in/yaml.v3"
)

// Errors returned while loading overlay files.
var (
	ErrFileNotFound  = errors.New("catalog file not found")
	ErrEmptyFile     = errors.New("catalog file is empty")
	ErrInvalidJSON   = errors.New("invalid JSON syntax")
	ErrInvalidYAML   = errors.New("invalid YAML syntax")
	ErrInvalidKey    = errors.New("scenario key must match [a-z0-9]+")
	ErrInvalidStatus = errors.New("status code must be between 100 and 599")
	ErrInvalidHeader = errors.New("invalid header")
)

// overlayFile is the on-disk shape of an overlay.
//
//	responses:
//	  teapot:
//	    statusCode: 418
//	    statusText: I'm a teapot
//	    headers:
//	      X-Brew: earl grey
//	    body: '{"message":"short and stout"}'
type overlayFile struct {
	Responses map[string]overlayEntry `json:"responses" yaml:"responses"`
}

type overlayEntry struct {
	StatusCode int        `json:"statusCode" yaml:"statusCode"`
	StatusText string     `json:"statusText" yaml:"statusText"`
	Headers    headerList `json:"headers" yaml:"headers"`
	Body       string     `json:"body" yaml:"body"`
}

// headerList keeps authored order for YAML mappings. JSON objects carry no
// order, so their headers are sorted by name.
type headerList []Header

func (h *headerList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: headers must be a mapping", node.Line)
	}
	out := make(headerList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, Header{Name: node.Content[i].Value, Value: node.Content[i+1].Value})
	}
	*h = out
	return nil
}

func (h *headerList) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(headerList, 0, len(m))
	for name, value := range m {
		out = append(out, Header{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	*h = out
	return nil
}

// LoadFile reads an overlay from a JSON or YAML file. The format is chosen
// by extension (.yaml and .yml are YAML, anything else JSON).
func LoadFile(path string) (map[Key]Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// ParseYAML parses a YAML overlay document.
func ParseYAML(data []byte) (map[Key]Response, error) {
	var f overlayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return f.build()
}

// ParseJSON parses a JSON overlay document.
func ParseJSON(data []byte) (map[Key]Response, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	var f overlayFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return f.build()
}

func (f overlayFile) build() (map[Key]Response, error) {
	out := make(map[Key]Response, len(f.Responses))
	for name, e := range f.Responses {
		key := Key(name)
		if !ValidKey(key) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, name)
		}
		if e.StatusCode < 100 || e.StatusCode > 599 {
			return nil, fmt.Errorf("%w: %q has %d", ErrInvalidStatus, name, e.StatusCode)
		}
		text := e.StatusText
		if text == "" {
			text = defaultStatusText(e.StatusCode)
		}
		if strings.ContainsAny(text, "\r\n") {
			return nil, fmt.Errorf("%w: %q has a multi-line status text", ErrInvalidHeader, name)
		}
		for _, h := range e.Headers {
			if !httpguts.ValidHeaderFieldName(h.Name) || !httpguts.ValidHeaderFieldValue(h.Value) {
				return nil, fmt.Errorf("%w: %q in %q", ErrInvalidHeader, h.Name, name)
			}
		}
		out[key] = Response{
			StatusCode: e.StatusCode,
			StatusText: text,
			Headers:    []Header(e.Headers),
			Body:       e.Body,
		}
	}
	return out, nil
}

func defaultStatusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown"
}
