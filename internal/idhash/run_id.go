package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ComputeRunID computes a deterministic run_id for one scan pass using SHA256.
// Formula: SHA256(platform,platform,...|start_unix_ms)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(platforms []string, startedAt time.Time) string {
	data := fmt.Sprintf("%s|%d", strings.Join(platforms, ","), startedAt.UnixMilli())
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
