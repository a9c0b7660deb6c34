package game

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// NewID returns a random match id. If the system's secure random source fails
// it falls back to a timestamp plus a pseudo-random suffix.
func NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fallbackID(time.Now())
	}
	return id.String()
}

func fallbackID(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.UnixMilli(), rand.Int64())
}
