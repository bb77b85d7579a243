/*
dataservice.go - Persistence boundary for the household dataset

PURPOSE:
  The engine itself does no I/O; it operates on a Dataset the caller loaded
  and hands back a Dataset for the caller to save. DataService is that
  boundary. Mode selects between an isolated test dataset and the
  production one - the engine behaves identically on either.

IMPLEMENTATIONS:
  - benefit/store: in-memory, for tests and dev
  - store/sqlite: SQLite-backed, for production
*/
package benefit

import (
	"context"
	"errors"
)

// Mode selects which dataset a DataService operates on.
type Mode string

const (
	ModeProd Mode = "prod"
	ModeTest Mode = "test"
)

// Valid reports whether the mode is one the service recognizes.
func (m Mode) Valid() bool { return m == ModeProd || m == ModeTest }

// ErrInvalidMode is returned for a mode outside {prod, test}.
var ErrInvalidMode = errors.New("invalid dataset mode")

// DataService loads and saves full dataset snapshots. Save replaces the
// mode's previous snapshot wholesale; the caller's debounce policy ensures
// only the latest state is ever persisted (last-write-wins).
type DataService interface {
	Load(ctx context.Context, mode Mode) (Dataset, error)
	Save(ctx context.Context, mode Mode, ds Dataset) error
}
