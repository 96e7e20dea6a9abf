// Package interchange reads team uploads and writes submission exports in
// JSON, YAML and the wide CSV layout used by spreadsheet tools.
package interchange

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/flowfit/internal/domain/model"
)

// Format names a supported encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts a format name such as "csv" or "JSON".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromContentType maps a request Content-Type to a Format. An empty
// content type means JSON.
func FormatFromContentType(ct string) (Format, error) {
	if strings.TrimSpace(ct) == "" {
		return FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, ct)
	}
	switch mt {
	case "application/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	case "text/csv", "application/csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, ct)
	}
}

// ContentType returns the media type written for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}

// Decode reads profiles in the given format. Profiles are returned as read;
// validation against the catalog is left to the caller.
func Decode(f Format, r io.Reader) ([]model.Profile, error) {
	switch f {
	case FormatJSON:
		return DecodeJSON(r)
	case FormatYAML:
		return DecodeYAML(r)
	case FormatCSV:
		return DecodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// DecodeJSON accepts either a bare array of profiles or an object with a
// "profiles" array. Exported submissions decode as profiles.
func DecodeJSON(r io.Reader) ([]model.Profile, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrMalformed, err)
	}
	dec := json.NewDecoder(br)
	if first == '[' {
		var out []model.Profile
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("%w: json: %w", ErrMalformed, err)
		}
		return out, nil
	}
	var s model.Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrMalformed, err)
	}
	return s.Profiles, nil
}

// DecodeYAML accepts the same two shapes as DecodeJSON.
func DecodeYAML(r io.Reader) ([]model.Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrMalformed, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrMalformed, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var out []model.Profile
		if err := root.Decode(&out); err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrMalformed, err)
		}
		return out, nil
	}
	var s model.Snapshot
	if err := root.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrMalformed, err)
	}
	return s.Profiles, nil
}

// EncodeJSON writes v as indented JSON.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
		default:
			return b, br.UnreadByte()
		}
	}
}
