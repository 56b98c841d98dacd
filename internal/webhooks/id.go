package webhooks

import (
	"strings"

	"github.com/google/uuid"
)

// NewCorrelationID returns a short random id. Ids are best-effort unique:
// there is no collision check, so callers must not rely on global uniqueness.
func NewCorrelationID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
