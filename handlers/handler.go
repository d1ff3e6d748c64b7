package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/andrewpaige1/flashcards-api/apierr"
	"github.com/andrewpaige1/flashcards-api/auth"
	"github.com/andrewpaige1/flashcards-api/cards"
	"github.com/andrewpaige1/flashcards-api/decks"
	"github.com/andrewpaige1/flashcards-api/logger"
	"github.com/andrewpaige1/flashcards-api/utils"
	"github.com/andrewpaige1/flashcards-api/validation"
	"github.com/google/uuid"
)

// maxBodyBytes fits a full deck of maximum-length cards with room to spare.
const maxBodyBytes = 4 << 20

type DeckService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in decks.CreateDeckInput) (*decks.Detail, error)
	Get(ctx context.Context, deckID, ownerID uuid.UUID) (*decks.Detail, error)
	GetCard(ctx context.Context, deckID, cardID, ownerID uuid.UUID) (*cards.Card, error)
	Update(ctx context.Context, deckID, ownerID uuid.UUID, in decks.UpdateDeckInput) (*decks.Detail, error)
	Delete(ctx context.Context, deckID, ownerID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) (*decks.Page, error)
}

type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*auth.Response, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.Response, error)
	Me(ctx context.Context, ownerID uuid.UUID) (*auth.User, error)
}

type Handler struct {
	Decks DeckService
	Auth  AuthService
	Log   *logger.Logger
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	utils.WriteError(w, r, h.Log, err)
}

// decodeBody reads a single JSON object into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return validation.Field("body", "The request body is too large.")
		case errors.Is(err, io.EOF):
			return validation.Field("body", "A request body is required.")
		default:
			return validation.Field("body", "The request body is not valid JSON.")
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validation.Field("body", "The request body must contain a single JSON object.")
	}
	return nil
}

// ownerID is set by the owner middleware on every protected route.
func ownerID(r *http.Request) (uuid.UUID, error) {
	id, ok := utils.GetOwnerID(r)
	if !ok {
		return uuid.Nil, apierr.Unauthorized("Authentication is required.")
	}
	return id, nil
}

// Health reports that the process is serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
