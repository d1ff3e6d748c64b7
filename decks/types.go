package decks

import (
	"time"

	"github.com/andrewpaige1/flashcards-api/cards"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CreateDeckInput struct {
	Title       string        `json:"title" validate:"required,notblank,max=200"`
	Description *string       `json:"description" validate:"omitempty,max=1000"`
	Cards       []cards.Input `json:"cards" validate:"required,min=1,max=500,dive"`
}

// UpdateDeckInput replaces a deck entirely. Description must be present but
// may be empty.
type UpdateDeckInput struct {
	Title       string        `json:"title" validate:"required,notblank,max=200"`
	Description *string       `json:"description" validate:"required,max=1000"`
	Cards       []cards.Input `json:"cards" validate:"required,min=1,max=500,dive"`
}

type Detail struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Cards       []cards.Card `json:"cards"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Summary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CardCount   int       `json:"cardCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Page struct {
	Items      []Summary `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalCount int64     `json:"totalCount"`
	TotalPages int64     `json:"totalPages"`
}

// NormalizePage applies the paging rules: page below 1 becomes 1 and
// pageSize is clamped to [1, MaxPageSize].
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int64 {
	if total == 0 {
		return 0
	}
	size := int64(pageSize)
	return (total + size - 1) / size
}
