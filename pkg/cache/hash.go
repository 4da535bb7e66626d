package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// keyPrefix namespaces every key this module writes.
const keyPrefix = "edgepunks"

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// TokenKey returns the key for one token's data of the given kind, scoped to
// a contract. The contract address is lowercased so checksummed and plain
// spellings share entries.
//
//	TokenKey("tokenuri", "0x83921cb2...", "7") == "edgepunks:tokenuri:0x83921cb2...:7"
func TokenKey(kind, contract, tokenID string) string {
	return strings.Join([]string{keyPrefix, kind, strings.ToLower(contract), tokenID}, ":")
}
