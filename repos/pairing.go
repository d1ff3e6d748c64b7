package repos

import (
	"context"
	"fmt"

	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CardRow is a single pairing with both element values resolved.
type CardRow struct {
	CardID     uuid.UUID `gorm:"column:card_id"`
	Position   int       `gorm:"column:position"`
	Term       string    `gorm:"column:term"`
	Definition string    `gorm:"column:definition"`
}

type PairingRepo interface {
	CreateMany(ctx context.Context, tx *gorm.DB, pairings []models.Pairing) error
	DeleteByDeck(ctx context.Context, tx *gorm.DB, deckID uuid.UUID) error
	CountByDeck(ctx context.Context, tx *gorm.DB, deckID uuid.UUID) (int64, error)
	GetOwnedCard(ctx context.Context, tx *gorm.DB, deckID, cardID, ownerID uuid.UUID) (*CardRow, error)
}

type pairingRepo struct {
	db *gorm.DB
}

func NewPairingRepo(db *gorm.DB) PairingRepo {
	return &pairingRepo{db: db}
}

func (r *pairingRepo) CreateMany(ctx context.Context, tx *gorm.DB, pairings []models.Pairing) error {
	if len(pairings) == 0 {
		return nil
	}
	if err := use(r.db, tx).WithContext(ctx).CreateInBatches(&pairings, insertBatchSize).Error; err != nil {
		return fmt.Errorf("create pairings: %w", err)
	}
	return nil
}

func (r *pairingRepo) DeleteByDeck(ctx context.Context, tx *gorm.DB, deckID uuid.UUID) error {
	if err := use(r.db, tx).WithContext(ctx).Where("deck_id = ?", deckID).Delete(&models.Pairing{}).Error; err != nil {
		return fmt.Errorf("delete pairings: %w", err)
	}
	return nil
}

func (r *pairingRepo) CountByDeck(ctx context.Context, tx *gorm.DB, deckID uuid.UUID) (int64, error) {
	var count int64
	if err := use(r.db, tx).WithContext(ctx).Model(&models.Pairing{}).Where("deck_id = ?", deckID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count pairings: %w", err)
	}
	return count, nil
}

const cardQuery = `
SELECT p.id AS card_id, p.position, t.value AS term, def.value AS definition
FROM pairings p
JOIN decks d ON d.id = p.deck_id
JOIN elements t ON t.id = p.first_element_id
JOIN elements def ON def.id = p.second_element_id
WHERE p.id = ? AND p.deck_id = ? AND d.owner_id = ?`

// GetOwnedCard returns ErrNotFound unless the card is in deckID and the deck
// belongs to ownerID.
func (r *pairingRepo) GetOwnedCard(ctx context.Context, tx *gorm.DB, deckID, cardID, ownerID uuid.UUID) (*CardRow, error) {
	var rows []CardRow
	if err := use(r.db, tx).WithContext(ctx).Raw(cardQuery, cardID, deckID, ownerID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}
