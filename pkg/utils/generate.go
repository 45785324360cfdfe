package utils

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// GenerateOrderCode creates a human-readable order code.
// Format: ORD-YYYYMMDD-HHMMSS-NNNN
func GenerateOrderCode(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s-%04d", now.Format("20060102"), now.Format("150405"), rand.IntN(10000))
}
