package models

import (
	"time"

	"github.com/google/uuid"
)

// Owner is an account that owns decks. Email is stored lowercase.
type Owner struct {
	ID           uuid.UUID
	DisplayName  string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
