package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edgepunks/edgepunks/pkg/dataurl"
	"github.com/edgepunks/edgepunks/pkg/errors"
)

// svgField is where Indelible Labs contracts put the artwork; the standard
// "image" field is not used for it.
const svgField = "svg_image_data"

// Field is one top-level member of a metadata document.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Metadata is an ERC-721 metadata document. Fields keep the order in which
// the contract emitted them.
type Metadata struct {
	Fields []Field
}

// ParseMetadata decodes the data URL returned by tokenURI.
func ParseMetadata(uri string) (*Metadata, error) {
	raw, err := dataurl.Decode(uri)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "token URI")
	}
	return parseObject(raw)
}

func parseObject(raw []byte) (*Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "metadata JSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "metadata is not a JSON object")
	}

	m := &Metadata{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "metadata JSON")
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "metadata field %q", key)
		}
		m.Fields = append(m.Fields, Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "metadata JSON")
	}
	return m, nil
}

// Get returns the raw value of key.
func (m *Metadata) Get(key string) (json.RawMessage, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// SVG decodes the artwork document embedded under svg_image_data.
func (m *Metadata) SVG() (string, error) {
	raw, ok := m.Get(svgField)
	if !ok {
		return "", errors.New(errors.ErrCodeNotFound, "metadata has no %s field", svgField)
	}
	var uri string
	if err := json.Unmarshal(raw, &uri); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s is not a string", svgField)
	}
	svg, err := dataurl.Decode(uri)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, svgField)
	}
	return string(svg), nil
}

// WithoutImages returns a copy without any field whose key contains "image".
func (m *Metadata) WithoutImages() *Metadata {
	out := &Metadata{}
	for _, f := range m.Fields {
		if !strings.Contains(f.Key, "image") {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// MarshalJSON writes the fields in order as a compact object.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object, keeping field order.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	parsed, err := parseObject(data)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
