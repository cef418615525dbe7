package ports

import "context"

// MatchStore persists one in-progress match snapshot per user.
type MatchStore interface {
	// Save stores the encoded snapshot, replacing any previous one.
	Save(ctx context.Context, userID string, snapshot []byte) error

	// Load returns the stored snapshot, or nil with no error when nothing is saved.
	Load(ctx context.Context, userID string) ([]byte, error)

	// Clear removes the stored snapshot. Clearing a missing save is not an error.
	Clear(ctx context.Context, userID string) error

	// HasSaved reports whether a snapshot exists for the user.
	HasSaved(ctx context.Context, userID string) (bool, error)
}
