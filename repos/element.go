package repos

import (
	"context"
	"fmt"

	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ElementRepo interface {
	CreateMany(ctx context.Context, tx *gorm.DB, elements []models.Element) error
	DeleteByDeck(ctx context.Context, tx *gorm.DB, deckID uuid.UUID) error
	CountByDeck(ctx context.Context, tx *gorm.DB, deckID uuid.UUID) (int64, error)
}

type elementRepo struct {
	db *gorm.DB
}

func NewElementRepo(db *gorm.DB) ElementRepo {
	return &elementRepo{db: db}
}

func (r *elementRepo) CreateMany(ctx context.Context, tx *gorm.DB, elements []models.Element) error {
	if len(elements) == 0 {
		return nil
	}
	if err := use(r.db, tx).WithContext(ctx).CreateInBatches(&elements, insertBatchSize).Error; err != nil {
		return fmt.Errorf("create elements: %w", err)
	}
	return nil
}

func (r *elementRepo) DeleteByDeck(ctx context.Context, tx *gorm.DB, deckID uuid.UUID) error {
	if err := use(r.db, tx).WithContext(ctx).Where("deck_id = ?", deckID).Delete(&models.Element{}).Error; err != nil {
		return fmt.Errorf("delete elements: %w", err)
	}
	return nil
}

func (r *elementRepo) CountByDeck(ctx context.Context, tx *gorm.DB, deckID uuid.UUID) (int64, error) {
	var count int64
	if err := use(r.db, tx).WithContext(ctx).Model(&models.Element{}).Where("deck_id = ?", deckID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count elements: %w", err)
	}
	return count, nil
}

type ElementKindRepo interface {
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.ElementKind, error)
}

type elementKindRepo struct {
	db *gorm.DB
}

func NewElementKindRepo(db *gorm.DB) ElementKindRepo {
	return &elementKindRepo{db: db}
}

func (r *elementKindRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.ElementKind, error) {
	var kind models.ElementKind
	if err := use(r.db, tx).WithContext(ctx).Where("name = ?", name).Take(&kind).Error; err != nil {
		return nil, notFound(err, "get element kind")
	}
	return &kind, nil
}
