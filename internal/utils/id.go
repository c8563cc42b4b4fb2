package utils

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// NewID returns a random connection key.
func NewID() string {
	return uuid.NewString()
}

// Sequence hands out increasing positive ids. The zero value starts at 1.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}
