package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OwnerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, owner *models.Owner) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Owner, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Owner, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type ownerRepo struct {
	db *gorm.DB
}

func NewOwnerRepo(db *gorm.DB) OwnerRepo {
	return &ownerRepo{db: db}
}

func (r *ownerRepo) Create(ctx context.Context, tx *gorm.DB, owner *models.Owner) error {
	owner.Email = strings.ToLower(owner.Email)
	if err := use(r.db, tx).WithContext(ctx).Create(owner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create owner: %w", err)
	}
	return nil
}

// GetByID returns ErrNotFound when no owner has the id.
func (r *ownerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Owner, error) {
	var owner models.Owner
	err := use(r.db, tx).WithContext(ctx).Where("id = ?", id).Take(&owner).Error
	if err != nil {
		return nil, notFound(err, "get owner")
	}
	return &owner, nil
}

// GetByEmail matches case-insensitively.
func (r *ownerRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Owner, error) {
	var owner models.Owner
	err := use(r.db, tx).WithContext(ctx).Where("email = ?", strings.ToLower(email)).Take(&owner).Error
	if err != nil {
		return nil, notFound(err, "get owner by email")
	}
	return &owner, nil
}

func (r *ownerRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := use(r.db, tx).WithContext(ctx).Model(&models.Owner{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check owner email: %w", err)
	}
	return count > 0, nil
}
