package errors

import (
	"strconv"
	"strings"
)

// MaxTokenIDLength bounds token identifiers accepted from the CLI and HTTP server.
const MaxTokenIDLength = 78 // decimal digits in a uint256

// ValidateTokenID validates a token identifier before it is used to build
// file paths or contract calls.
//
// Token IDs are non-negative decimal integers. Rejecting anything else keeps
// ids safe to splice into "<dir>/<id>.svg" paths:
//   - No empty ids
//   - Digits only (no signs, separators or path characters)
//   - Maximum length of 78 characters (uint256)
func ValidateTokenID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "token id cannot be empty")
	}
	if len(id) > MaxTokenIDLength {
		return New(ErrCodeInvalidInput, "token id too long (max %d digits)", MaxTokenIDLength)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return New(ErrCodeInvalidInput, "token id must be a non-negative integer: %q", id)
		}
	}
	return nil
}

// ParseTokenIDs validates each id and returns them unchanged.
// An empty list is valid and means "every token".
func ParseTokenIDs(ids []string) ([]string, error) {
	for _, id := range ids {
		if err := ValidateTokenID(id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// AllTokenIDs returns the ids 0..supply-1 as strings.
func AllTokenIDs(supply int) []string {
	ids := make([]string, 0, max(supply, 0))
	for i := range supply {
		ids = append(ids, strconv.Itoa(i))
	}
	return ids
}

// ValidateImageSize checks that a requested output width is usable.
func ValidateImageSize(size int) error {
	if size < 1 {
		return New(ErrCodeInvalidInput, "image size must be >= 1, got %d", size)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a scheme the RPC client can dial.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use http, https, ws or wss scheme")
}
