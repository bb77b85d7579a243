// Package store provides DataService implementations.
package store

import (
	"context"
	"sync"

	"github.com/homeperks/benefit-engine/benefit"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	datasets map[benefit.Mode]benefit.Dataset
}

func NewMemory() *Memory {
	return &Memory{datasets: make(map[benefit.Mode]benefit.Dataset)}
}

// Load returns a deep copy of the mode's dataset. A mode that was never
// saved yields an empty dataset, not an error.
func (m *Memory) Load(_ context.Context, mode benefit.Mode) (benefit.Dataset, error) {
	if !mode.Valid() {
		return benefit.Dataset{}, benefit.ErrInvalidMode
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyDataset(m.datasets[mode]), nil
}

// Save replaces the mode's snapshot wholesale.
func (m *Memory) Save(_ context.Context, mode benefit.Mode, ds benefit.Dataset) error {
	if !mode.Valid() {
		return benefit.ErrInvalidMode
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[mode] = copyDataset(ds)
	return nil
}

// copyDataset clones the slice headers so callers cannot alias the stored
// snapshot. Entities themselves are value types; the anchor and credit
// pointers are shared but treated as immutable everywhere.
func copyDataset(ds benefit.Dataset) benefit.Dataset {
	out := ds
	out.Members = append([]benefit.Member(nil), ds.Members...)
	out.Sources = append([]benefit.Source(nil), ds.Sources...)
	out.Benefits = append([]benefit.Benefit(nil), ds.Benefits...)
	out.Redemptions = append([]benefit.Redemption(nil), ds.Redemptions...)
	out.PointsSources = append([]benefit.PointsSource(nil), ds.PointsSources...)
	out.Redeemables = append([]benefit.Redeemable(nil), ds.Redeemables...)
	return out
}
