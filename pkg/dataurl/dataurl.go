// Package dataurl decodes RFC 2397 "data:" URLs.
//
// Both the contract's tokenURI response and every layer embedded in the
// artwork SVG are data URLs, so the same decoder serves the chain client and
// the layer extractor.
package dataurl

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// DataURL is a parsed data URL.
type DataURL struct {
	MediaType string // e.g. "image/png"; defaults to "text/plain"
	Base64    bool   // whether the payload was base64-encoded
	Data      []byte // decoded payload
}

// Parse decodes a data URL of the form "data:[<mediatype>][;base64],<data>".
func Parse(raw string) (*DataURL, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URL has no payload separator")
	}

	d := &DataURL{MediaType: "text/plain"}
	params := strings.Split(header, ";")
	if params[0] != "" {
		d.MediaType = params[0]
	}
	for _, p := range params[1:] {
		if p == "base64" {
			d.Base64 = true
		}
	}

	if d.Base64 {
		data, err := decodeBase64(payload)
		if err != nil {
			return nil, fmt.Errorf("decode base64 payload: %w", err)
		}
		d.Data = data
		return d, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("unescape payload: %w", err)
	}
	d.Data = []byte(text)
	return d, nil
}

// Decode returns just the payload bytes of a data URL.
func Decode(raw string) ([]byte, error) {
	d, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return d.Data, nil
}

// decodeBase64 accepts both padded and unpadded standard base64.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "=") || len(s)%4 == 0 {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}
