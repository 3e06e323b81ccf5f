package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeListingID computes a deterministic fallback identifier for a
// listing whose platform serves no id of its own.
// Formula: SHA256(platform|title|url)
// Returns hex-encoded hash (64 characters).
func ComputeListingID(platform, title, url string) string {
	data := fmt.Sprintf("%s|%s|%s", platform, title, url)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
