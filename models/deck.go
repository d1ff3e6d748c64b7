package models

import (
	"time"

	"github.com/google/uuid"
)

// Deck is a titled collection of cards belonging to one owner.
type Deck struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
