/*
syncer.go - Debounced snapshot persistence

PURPOSE:
  After any mutation the handler schedules a save of the full dataset. The
  write happens only after a quiet interval; a newer mutation replaces the
  pending snapshot instead of queueing behind it, so the store only ever
  sees the latest state (last-write-wins at the debounce boundary).

DESIGN:
  - Schedule resets a single timer; there is never more than one pending write
  - Flush forces the pending snapshot out immediately (shutdown path)
  - Save errors are logged, not surfaced; the engine has no knowledge of
    network failures or retries

SEE ALSO:
  - handlers.go: Calls Schedule after every mutation
  - cmd/server/main.go: Calls Flush before exit
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/homeperks/benefit-engine/benefit"
)

// Syncer debounces dataset saves to the data service.
type Syncer struct {
	Service  benefit.DataService
	Mode     benefit.Mode
	Debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *benefit.Dataset
	writes  int // completed saves, for tests and logging
}

// NewSyncer creates a syncer with the given quiet interval.
func NewSyncer(svc benefit.DataService, mode benefit.Mode, debounce time.Duration) *Syncer {
	return &Syncer{Service: svc, Mode: mode, Debounce: debounce}
}

// Schedule replaces the pending snapshot and restarts the quiet interval.
func (s *Syncer) Schedule(ds benefit.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = &ds
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.Debounce, s.fire)
}

func (s *Syncer) fire() {
	s.mu.Lock()
	ds := s.pending
	s.pending = nil
	s.mu.Unlock()

	if ds == nil {
		return
	}
	if err := s.Service.Save(context.Background(), s.Mode, *ds); err != nil {
		log.Printf("[Syncer] Save failed: %v", err)
		return
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

// Flush writes the pending snapshot immediately, if any. Used on shutdown
// so the debounce window cannot swallow the final state.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	ds := s.pending
	s.pending = nil
	s.mu.Unlock()

	if ds == nil {
		return nil
	}
	if err := s.Service.Save(ctx, s.Mode, *ds); err != nil {
		return err
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return nil
}

// Writes returns the number of completed saves.
func (s *Syncer) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
