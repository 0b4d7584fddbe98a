package links

import "context"

// Repository is the store accessor for Link records. Each operation is a
// single atomic statement against the database; uniqueness and click
// increments rely on the store, never on check-then-act in Go.
type Repository interface {
	// Create inserts a new link. A duplicate code (case-insensitive)
	// comes back as an errx.Conflict error.
	Create(ctx context.Context, link Link) (Link, error)

	// GetByCode looks a link up by code, case-insensitively.
	GetByCode(ctx context.Context, code string) (Link, error)

	// ListAll returns every link ordered newest-first by creation time.
	ListAll(ctx context.Context) ([]Link, error)

	// RecordClick atomically increments the click counter, stamps
	// last_clicked, and returns the updated link.
	RecordClick(ctx context.Context, code string) (Link, error)

	// Delete removes a link. Deleting an absent code succeeds.
	Delete(ctx context.Context, code string) error
}
