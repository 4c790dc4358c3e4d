// Package state holds the client's copy of the backend data.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/nconklindev/dexcel/internal/api"
	"github.com/nconklindev/dexcel/internal/types"
)

// AppState is the last successfully fetched snapshot plus the copy
// templates. The snapshot is only ever replaced whole.
type AppState struct {
	Snapshot    types.Snapshot
	Templates   types.Templates
	Loaded      bool
	LastRefresh time.Time
}

// New returns an empty state with the given templates.
func New(templates types.Templates) *AppState {
	return &AppState{
		Snapshot:  types.Snapshot{SourceName: "(nessuno)"},
		Templates: templates,
	}
}

// Fetch retrieves a snapshot without touching any state. It is the
// half of a refresh that may run off the UI goroutine.
func Fetch(ctx context.Context, backend api.Backend) (*types.Snapshot, error) {
	return backend.Snapshot(ctx)
}

// Apply installs a fetched snapshot.
func (s *AppState) Apply(snap *types.Snapshot, at time.Time) {
	s.Snapshot = *snap
	s.Loaded = true
	s.LastRefresh = at
}

// Refresh fetches and applies a snapshot. On error the state is unchanged.
func (s *AppState) Refresh(ctx context.Context, backend api.Backend) error {
	snap, err := Fetch(ctx, backend)
	if err != nil {
		return err
	}
	s.Apply(snap, time.Now())
	return nil
}

// LoadTemplates fetches the templates once. A backend without
// templates falls back to the given set.
func LoadTemplates(ctx context.Context, backend api.Backend, fallback types.Templates) (types.Templates, error) {
	t, err := backend.Templates(ctx)
	if errors.Is(err, api.ErrUnsupported) {
		return fallback, nil
	}
	if err != nil {
		return types.Templates{}, err
	}
	return *t, nil
}

// SetTemplates records templates the backend has accepted.
func (s *AppState) SetTemplates(t types.Templates) {
	s.Templates = t
}

// RowCount is the number of rows in the snapshot, header included.
func (s *AppState) RowCount() int {
	return len(s.Snapshot.Rows)
}

// CustomerCount assumes exactly one header row.
func (s *AppState) CustomerCount() int {
	return CustomerCount(len(s.Snapshot.Rows))
}

// CustomerCount is rows minus the header, or zero for no rows.
func CustomerCount(rows int) int {
	if rows > 0 {
		return rows - 1
	}
	return 0
}
