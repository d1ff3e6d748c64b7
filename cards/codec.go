// Package cards converts between the term/definition cards clients send and
// the element and pairing rows that store them.
package cards

import (
	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/google/uuid"
)

// Input is a card as submitted by a client.
type Input struct {
	Term       string `json:"term" validate:"required,max=500"`
	Definition string `json:"definition" validate:"required,max=2000"`
}

// Card is a card as returned to a client. ID is the pairing id.
type Card struct {
	ID         uuid.UUID `json:"id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Position   int       `json:"position"`
}

// Expansion holds the rows produced for one deck's cards, in input order.
type Expansion struct {
	Elements []models.Element
	Pairings []models.Pairing
	Cards    []Card
}

// JoinedPairing is one pairing with its two element values resolved.
// A nil PairingID marks a deck row without a card.
type JoinedPairing struct {
	PairingID  uuid.NullUUID
	Position   int
	Term       string
	Definition string
}

// Expand turns inputs into two text elements and one pairing per card. The
// card at index i gets position i.
func Expand(deckID uuid.UUID, inputs []Input) Expansion {
	exp := Expansion{
		Elements: make([]models.Element, 0, 2*len(inputs)),
		Pairings: make([]models.Pairing, 0, len(inputs)),
		Cards:    make([]Card, 0, len(inputs)),
	}
	for i, in := range inputs {
		term := models.Element{
			ID:       uuid.New(),
			DeckID:   deckID,
			KindID:   models.TextKindID,
			Value:    in.Term,
			Position: i,
		}
		definition := models.Element{
			ID:       uuid.New(),
			DeckID:   deckID,
			KindID:   models.TextKindID,
			Value:    in.Definition,
			Position: i,
		}
		pairing := models.Pairing{
			ID:              uuid.New(),
			DeckID:          deckID,
			FirstElementID:  term.ID,
			SecondElementID: definition.ID,
			Position:        i,
		}
		exp.Elements = append(exp.Elements, term, definition)
		exp.Pairings = append(exp.Pairings, pairing)
		exp.Cards = append(exp.Cards, Card{
			ID:         pairing.ID,
			Term:       in.Term,
			Definition: in.Definition,
			Position:   i,
		})
	}
	return exp
}

// Collapse maps joined rows back to cards, keeping their order. Callers pass
// rows sorted by position.
func Collapse(rows []JoinedPairing) []Card {
	out := make([]Card, 0, len(rows))
	for _, row := range rows {
		if !row.PairingID.Valid {
			continue
		}
		out = append(out, Card{
			ID:         row.PairingID.UUID,
			Term:       row.Term,
			Definition: row.Definition,
			Position:   row.Position,
		})
	}
	return out
}
