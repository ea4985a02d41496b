package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateApplicationNumber returns a human-facing reference like
// APP-2026-3F2A9C1B. Uniqueness is still enforced by the column's
// unique index; the uuid fragment keeps collisions out of normal
// operation.
func GenerateApplicationNumber(now time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("APP-%d-%s", now.Year(), fragment)
}
