package trading

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a unique identifier suitable for orders and positions.
func NewID() string { return uuid.NewString() }

// Now returns the current unix timestamp in seconds.
func Now() int64 { return time.Now().Unix() }
