package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the token payload. Subject carries the owner id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret []byte, issuer, audience string, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// ExpiresIn is the token lifetime in seconds.
func (ti *TokenIssuer) ExpiresIn() int {
	return int(ti.lifetime / time.Second)
}

// CreateToken signs an HS256 token for owner.
func (ti *TokenIssuer) CreateToken(owner *models.Owner) (string, error) {
	jti, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}
	now := ti.now()
	claims := Claims{
		Email: owner.Email,
		Name:  owner.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    ti.issuer,
			Subject:   owner.ID.String(),
			Audience:  jwt.ClaimStrings{ti.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.lifetime)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// bcrypt reads at most 72 bytes, so passwords are digested first.
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordKey(password)) == nil
}
