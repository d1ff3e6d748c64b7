package handlers

import (
	"net/http"
	"strconv"

	"github.com/andrewpaige1/flashcards-api/apierr"
	"github.com/andrewpaige1/flashcards-api/decks"
	"github.com/andrewpaige1/flashcards-api/utils"
	"github.com/andrewpaige1/flashcards-api/validation"
	"github.com/google/uuid"
)

// pathID parses a UUID path value. A malformed id cannot name any deck, so
// it is reported as not found.
func pathID(r *http.Request, name, notFoundMessage string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apierr.NotFound(notFoundMessage)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Field(name, name+" must be an integer.")
	}
	return v, nil
}

// POST /api/decks
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in decks.CreateDeckInput
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	detail, err := h.Decks.Create(r.Context(), owner, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, detail)
}

// GET /api/decks?page&pageSize
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "pageSize", decks.DefaultPageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.Decks.List(r.Context(), owner, page, pageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// GET /api/decks/{id}
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	deckID, err := pathID(r, "id", "Deck not found.")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	detail, err := h.Decks.Get(r.Context(), deckID, owner)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

// GET /api/decks/{id}/cards/{cardId}
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	deckID, err := pathID(r, "id", "Card not found.")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cardID, err := pathID(r, "cardId", "Card not found.")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	card, err := h.Decks.GetCard(r.Context(), deckID, cardID, owner)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, card)
}

// PUT /api/decks/{id}
func (h *Handler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	deckID, err := pathID(r, "id", "Deck not found.")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in decks.UpdateDeckInput
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	detail, err := h.Decks.Update(r.Context(), deckID, owner, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

// DELETE /api/decks/{id}
func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	deckID, err := pathID(r, "id", "Deck not found.")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Decks.Delete(r.Context(), deckID, owner); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
