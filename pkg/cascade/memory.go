package cascade

import (
	"context"
	"sync"

	"github.com/stayware/stayflow/pkg/models"
)

// MemoryApplier records applied effects instead of mutating a database.
// Test helper.
type MemoryApplier struct {
	mu      sync.Mutex
	applied []models.CascadeEffect

	// FailWith, when set, is returned from every Apply call.
	FailWith error
}

func NewMemoryApplier() *MemoryApplier {
	return &MemoryApplier{}
}

func (a *MemoryApplier) Apply(_ context.Context, effect models.CascadeEffect) error {
	if a.FailWith != nil {
		return a.FailWith
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.applied = append(a.applied, effect)

	return nil
}

// Applied returns the effects applied so far, in order.
func (a *MemoryApplier) Applied() []models.CascadeEffect {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.CascadeEffect, len(a.applied))
	copy(out, a.applied)

	return out
}
