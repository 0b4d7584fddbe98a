package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Link is a row of the links table.
type Link struct {
	ID          uuid.UUID
	Code        string
	Target      string
	Clicks      int64
	CreatedAt   pgtype.Timestamptz
	LastClicked pgtype.Timestamptz
}
