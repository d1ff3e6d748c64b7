package models

import "github.com/google/uuid"

// TextKindID is the fixed id of the seeded "text" element kind.
var TextKindID = uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000001")

const TextKindName = "text"

type ElementKind struct {
	ID   uuid.UUID
	Name string
}

// Element is one side of a card, stored as its own row.
type Element struct {
	ID       uuid.UUID
	DeckID   uuid.UUID
	KindID   uuid.UUID
	Value    string
	Position int
}

// Pairing joins a term element to a definition element. Its id is the card id.
type Pairing struct {
	ID              uuid.UUID
	DeckID          uuid.UUID
	FirstElementID  uuid.UUID
	SecondElementID uuid.UUID
	Position        int
}
