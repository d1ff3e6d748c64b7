package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/andrewpaige1/flashcards-api/apierr"
	"github.com/andrewpaige1/flashcards-api/logger"
	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/andrewpaige1/flashcards-api/repos"
	"github.com/andrewpaige1/flashcards-api/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid email or password."
	emailTakenMessage         = "An account with this email already exists."
	unknownUserMessage        = "User not found."
)

type SignupInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"displayName" validate:"required,notblank,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Response struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
	User      User   `json:"user"`
}

type Service struct {
	db       *gorm.DB
	owners   repos.OwnerRepo
	tokens   *TokenIssuer
	log      *logger.Logger
	hashCost int
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewService(db *gorm.DB, owners repos.OwnerRepo, tokens *TokenIssuer, log *logger.Logger) *Service {
	return &Service{
		db:       db,
		owners:   owners,
		tokens:   tokens,
		log:      log.With("component", "auth"),
		hashCost: bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*Response, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, err
	}
	now := s.now()
	owner := models.Owner{
		ID:           uuid.New(),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := s.owners.EmailExists(ctx, tx, owner.Email)
		if err != nil {
			return err
		}
		if taken {
			return apierr.Conflict(emailTakenMessage)
		}
		err = s.owners.Create(ctx, tx, &owner)
		if errors.Is(err, repos.ErrDuplicate) {
			return apierr.Conflict(emailTakenMessage)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("owner signed up", "owner_id", owner.ID)
	return s.respond(&owner)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*Response, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	owner, err := s.owners.GetByEmail(ctx, nil, in.Email)
	if errors.Is(err, repos.ErrNotFound) {
		// Spend the same hashing time as a real check.
		CheckPassword(s.fakeHash(), in.Password)
		return nil, apierr.Unauthorized(invalidCredentialsMessage)
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(owner.PasswordHash, in.Password) {
		s.log.Info("login rejected", "owner_id", owner.ID)
		return nil, apierr.Unauthorized(invalidCredentialsMessage)
	}
	return s.respond(owner)
}

// Me returns the authenticated owner's profile.
func (s *Service) Me(ctx context.Context, ownerID uuid.UUID) (*User, error) {
	owner, err := s.owners.GetByID(ctx, nil, ownerID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apierr.Unauthorized(unknownUserMessage)
	}
	if err != nil {
		return nil, err
	}
	user := toUser(owner)
	return &user, nil
}

func (s *Service) respond(owner *models.Owner) (*Response, error) {
	token, err := s.tokens.CreateToken(owner)
	if err != nil {
		return nil, err
	}
	return &Response{
		Token:     token,
		ExpiresIn: s.tokens.ExpiresIn(),
		User:      toUser(owner),
	}, nil
}

func (s *Service) fakeHash() string {
	s.dummyOnce.Do(func() {
		hash, err := HashPassword("not-a-real-password", s.hashCost)
		if err != nil {
			s.log.Error("failed to build dummy hash", "error", err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func toUser(owner *models.Owner) User {
	return User{
		ID:          owner.ID,
		Email:       owner.Email,
		DisplayName: owner.DisplayName,
		CreatedAt:   owner.CreatedAt.UTC(),
	}
}
