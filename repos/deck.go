package repos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeckDetailRow is one row of the deck/pairing/element join. A deck with no
// cards yields a single row with the card columns null.
type DeckDetailRow struct {
	DeckID      uuid.UUID      `gorm:"column:deck_id"`
	Title       string         `gorm:"column:title"`
	Description string         `gorm:"column:description"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
	CardID      uuid.NullUUID  `gorm:"column:card_id"`
	Position    sql.NullInt64  `gorm:"column:position"`
	Term        sql.NullString `gorm:"column:term"`
	Definition  sql.NullString `gorm:"column:definition"`
}

type DeckSummaryRow struct {
	ID          uuid.UUID `gorm:"column:id"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	CardCount   int       `gorm:"column:card_count"`
}

type DeckRepo interface {
	Create(ctx context.Context, tx *gorm.DB, deck *models.Deck) error
	UpdateOwned(ctx context.Context, tx *gorm.DB, deckID, ownerID uuid.UUID, title, description string, updatedAt time.Time) (bool, error)
	DeleteOwned(ctx context.Context, tx *gorm.DB, deckID, ownerID uuid.UUID) (bool, error)
	LoadDetailRows(ctx context.Context, tx *gorm.DB, deckID, ownerID uuid.UUID) ([]DeckDetailRow, error)
	ListSummaries(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, offset, limit int) ([]DeckSummaryRow, error)
	CountOwned(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (int64, error)
}

type deckRepo struct {
	db *gorm.DB
}

func NewDeckRepo(db *gorm.DB) DeckRepo {
	return &deckRepo{db: db}
}

func (r *deckRepo) Create(ctx context.Context, tx *gorm.DB, deck *models.Deck) error {
	if err := use(r.db, tx).WithContext(ctx).Create(deck).Error; err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	return nil
}

// UpdateOwned rewrites the deck header. It reports false when no deck with
// deckID belongs to ownerID.
func (r *deckRepo) UpdateOwned(ctx context.Context, tx *gorm.DB, deckID, ownerID uuid.UUID, title, description string, updatedAt time.Time) (bool, error) {
	res := use(r.db, tx).WithContext(ctx).Model(&models.Deck{}).
		Where("id = ? AND owner_id = ?", deckID, ownerID).
		Updates(map[string]interface{}{
			"title":       title,
			"description": description,
			"updated_at":  updatedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("update deck: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteOwned removes the deck; elements and pairings go with it through
// the cascade constraints.
func (r *deckRepo) DeleteOwned(ctx context.Context, tx *gorm.DB, deckID, ownerID uuid.UUID) (bool, error) {
	res := use(r.db, tx).WithContext(ctx).
		Where("id = ? AND owner_id = ?", deckID, ownerID).
		Delete(&models.Deck{})
	if res.Error != nil {
		return false, fmt.Errorf("delete deck: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

const detailQuery = `
SELECT d.id AS deck_id, d.title, d.description, d.created_at, d.updated_at,
	p.id AS card_id, p.position, t.value AS term, def.value AS definition
FROM decks d
LEFT JOIN pairings p ON p.deck_id = d.id
LEFT JOIN elements t ON t.id = p.first_element_id
LEFT JOIN elements def ON def.id = p.second_element_id
WHERE d.id = ? AND d.owner_id = ?
ORDER BY p.position`

// LoadDetailRows returns nothing when the deck is missing or belongs to
// someone else. Rows come back in card position order.
func (r *deckRepo) LoadDetailRows(ctx context.Context, tx *gorm.DB, deckID, ownerID uuid.UUID) ([]DeckDetailRow, error) {
	var rows []DeckDetailRow
	if err := use(r.db, tx).WithContext(ctx).Raw(detailQuery, deckID, ownerID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	return rows, nil
}

func (r *deckRepo) ListSummaries(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, offset, limit int) ([]DeckSummaryRow, error) {
	var rows []DeckSummaryRow
	err := use(r.db, tx).WithContext(ctx).Model(&models.Deck{}).
		Select("decks.id, decks.title, decks.description, decks.created_at, decks.updated_at, " +
			"(SELECT COUNT(*) FROM pairings p WHERE p.deck_id = decks.id) AS card_count").
		Where("decks.owner_id = ?", ownerID).
		Order("decks.updated_at DESC").
		Order("decks.id").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return rows, nil
}

func (r *deckRepo) CountOwned(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := use(r.db, tx).WithContext(ctx).Model(&models.Deck{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count decks: %w", err)
	}
	return count, nil
}
