package dataurl

import (
	"bytes"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		mediaType string
		base64    bool
		data      string
		wantErr   bool
	}{
		{
			name:      "base64 json",
			input:     "data:application/json;base64,eyJhIjoxfQ==",
			mediaType: "application/json",
			base64:    true,
			data:      `{"a":1}`,
		},
		{
			name:      "unpadded base64",
			input:     "data:application/json;base64,eyJhIjoxfQ",
			mediaType: "application/json",
			base64:    true,
			data:      `{"a":1}`,
		},
		{
			name:      "percent encoded text",
			input:     "data:,hello%20world",
			mediaType: "text/plain",
			data:      "hello world",
		},
		{
			name:      "charset parameter",
			input:     "data:image/svg+xml;charset=utf-8;base64,PHN2Zy8+",
			mediaType: "image/svg+xml",
			base64:    true,
			data:      "<svg/>",
		},
		{name: "not a data url", input: "https://example.com/a.png", wantErr: true},
		{name: "missing comma", input: "data:image/png;base64", wantErr: true},
		{name: "bad base64", input: "data:image/png;base64,@@@@", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if d.MediaType != tt.mediaType {
				t.Errorf("MediaType = %q, want %q", d.MediaType, tt.mediaType)
			}
			if d.Base64 != tt.base64 {
				t.Errorf("Base64 = %v, want %v", d.Base64, tt.base64)
			}
			if !bytes.Equal(d.Data, []byte(tt.data)) {
				t.Errorf("Data = %q, want %q", d.Data, tt.data)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	data, err := Decode("data:text/plain;base64,aGk=")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(data) != "hi" {
		t.Errorf("Decode = %q, want %q", data, "hi")
	}
}
