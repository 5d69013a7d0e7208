package state

import "context"

// Repository persists the interrupt-tracking document as a single unit.
type Repository interface {
	// Load returns the stored document, or a fresh empty one when nothing
	// has been persisted yet.
	Load(ctx context.Context) (*State, error)
	// Save rewrites the whole document.
	Save(ctx context.Context, s *State) error
}
