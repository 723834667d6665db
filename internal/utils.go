package internal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID creates a unique ID for a sync run.
// Format: epochMillis_uuid[:8]
func GenerateRunID() string {
	epochMillis := time.Now().UnixNano() / 1000000
	return fmt.Sprintf("%d_%s", epochMillis, uuid.NewString()[:8])
}

// IsASCII reports whether s only holds single-byte characters.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}
