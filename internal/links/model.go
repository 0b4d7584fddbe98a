package links

import (
	"time"

	"github.com/google/uuid"
)

// Link maps a short code to its target URL. Code and Target are immutable
// after creation; Clicks and LastClicked change only through click
// accounting.
type Link struct {
	ID          uuid.UUID
	Code        string
	Target      string
	Clicks      int64
	CreatedAt   time.Time
	LastClicked *time.Time
}
