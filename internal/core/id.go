package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID returns a unique opaque identifier for a new record. UUIDv7 ids
// combine a monotonic time component with a random component, so they stay
// unique across repeated calls in the same millisecond and sort roughly by
// creation order.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Entropy exhaustion is effectively unreachable; keep a usable key.
		return fmt.Sprintf("id_%d", time.Now().UnixNano())
	}
	return id.String()
}
