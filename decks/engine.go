// Package decks stores and loads decks of cards for their owners. A deck
// that exists but belongs to someone else is reported exactly like a
// missing one.
package decks

import (
	"context"
	"errors"
	"time"

	"github.com/andrewpaige1/flashcards-api/apierr"
	"github.com/andrewpaige1/flashcards-api/cards"
	"github.com/andrewpaige1/flashcards-api/logger"
	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/andrewpaige1/flashcards-api/repos"
	"github.com/andrewpaige1/flashcards-api/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	deckNotFoundMessage = "Deck not found."
	cardNotFoundMessage = "Card not found."
)

type Engine struct {
	db       *gorm.DB
	decks    repos.DeckRepo
	elements repos.ElementRepo
	pairings repos.PairingRepo
	log      *logger.Logger
	now      func() time.Time
}

func NewEngine(db *gorm.DB, decks repos.DeckRepo, elements repos.ElementRepo, pairings repos.PairingRepo, log *logger.Logger) *Engine {
	return &Engine{
		db:       db,
		decks:    decks,
		elements: elements,
		pairings: pairings,
		log:      log.With("component", "decks"),
		now:      utcNow,
	}
}

// Timestamps keep microsecond precision so they survive a round trip
// through postgres unchanged.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (e *Engine) Create(ctx context.Context, ownerID uuid.UUID, in CreateDeckInput) (*Detail, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := e.now()
	deck := models.Deck{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     in.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		deck.Description = *in.Description
	}
	exp := cards.Expand(deck.ID, in.Cards)

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := e.decks.Create(ctx, tx, &deck); err != nil {
			return err
		}
		return e.insertCards(ctx, tx, exp)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("deck created", "deck_id", deck.ID, "owner_id", ownerID, "cards", len(exp.Cards))
	return &Detail{
		ID:          deck.ID,
		Title:       deck.Title,
		Description: deck.Description,
		Cards:       exp.Cards,
		CreatedAt:   deck.CreatedAt,
		UpdatedAt:   deck.UpdatedAt,
	}, nil
}

func (e *Engine) Get(ctx context.Context, deckID, ownerID uuid.UUID) (*Detail, error) {
	rows, err := e.decks.LoadDetailRows(ctx, nil, deckID, ownerID)
	if err != nil {
		return nil, err
	}
	return detailFromRows(rows)
}

func (e *Engine) GetCard(ctx context.Context, deckID, cardID, ownerID uuid.UUID) (*cards.Card, error) {
	row, err := e.pairings.GetOwnedCard(ctx, nil, deckID, cardID, ownerID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apierr.NotFound(cardNotFoundMessage)
	}
	if err != nil {
		return nil, err
	}
	return &cards.Card{
		ID:         row.CardID,
		Term:       row.Term,
		Definition: row.Definition,
		Position:   row.Position,
	}, nil
}

// Update replaces the deck's title, description and every card in one
// transaction. All card ids change. Concurrent updates are last write wins.
func (e *Engine) Update(ctx context.Context, deckID, ownerID uuid.UUID, in UpdateDeckInput) (*Detail, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var detail *Detail
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := e.decks.UpdateOwned(ctx, tx, deckID, ownerID, in.Title, *in.Description, e.now())
		if err != nil {
			return err
		}
		if !found {
			return apierr.NotFound(deckNotFoundMessage)
		}

		// Pairings reference elements, so they go first.
		if err := e.pairings.DeleteByDeck(ctx, tx, deckID); err != nil {
			return err
		}
		if err := e.elements.DeleteByDeck(ctx, tx, deckID); err != nil {
			return err
		}
		if err := e.insertCards(ctx, tx, cards.Expand(deckID, in.Cards)); err != nil {
			return err
		}

		rows, err := e.decks.LoadDetailRows(ctx, tx, deckID, ownerID)
		if err != nil {
			return err
		}
		detail, err = detailFromRows(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("deck updated", "deck_id", deckID, "owner_id", ownerID, "cards", len(detail.Cards))
	return detail, nil
}

// Delete removes the deck with all of its cards. Deleting again reports
// not found.
func (e *Engine) Delete(ctx context.Context, deckID, ownerID uuid.UUID) error {
	deleted, err := e.decks.DeleteOwned(ctx, nil, deckID, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return apierr.NotFound(deckNotFoundMessage)
	}
	e.log.Info("deck deleted", "deck_id", deckID, "owner_id", ownerID)
	return nil
}

// List returns one page of the owner's decks, most recently updated first.
func (e *Engine) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) (*Page, error) {
	page, pageSize = NormalizePage(page, pageSize)

	total, err := e.decks.CountOwned(ctx, nil, ownerID)
	if err != nil {
		return nil, err
	}
	result := &Page{
		Items:      []Summary{},
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages(total, pageSize),
	}
	if int64(page) > result.TotalPages {
		return result, nil
	}

	rows, err := e.decks.ListSummaries(ctx, nil, ownerID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result.Items = append(result.Items, Summary{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			CardCount:   row.CardCount,
			CreatedAt:   row.CreatedAt.UTC(),
			UpdatedAt:   row.UpdatedAt.UTC(),
		})
	}
	return result, nil
}

func (e *Engine) insertCards(ctx context.Context, tx *gorm.DB, exp cards.Expansion) error {
	if err := e.elements.CreateMany(ctx, tx, exp.Elements); err != nil {
		return err
	}
	return e.pairings.CreateMany(ctx, tx, exp.Pairings)
}

func detailFromRows(rows []repos.DeckDetailRow) (*Detail, error) {
	if len(rows) == 0 {
		return nil, apierr.NotFound(deckNotFoundMessage)
	}
	joined := make([]cards.JoinedPairing, 0, len(rows))
	for _, row := range rows {
		joined = append(joined, cards.JoinedPairing{
			PairingID:  row.CardID,
			Position:   int(row.Position.Int64),
			Term:       row.Term.String,
			Definition: row.Definition.String,
		})
	}
	head := rows[0]
	return &Detail{
		ID:          head.DeckID,
		Title:       head.Title,
		Description: head.Description,
		Cards:       cards.Collapse(joined),
		CreatedAt:   head.CreatedAt.UTC(),
		UpdatedAt:   head.UpdatedAt.UTC(),
	}, nil
}
