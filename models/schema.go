package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type columnTypes struct {
	id        string
	timestamp string
}

func typesFor(dialect string) columnTypes {
	if dialect == "postgres" {
		return columnTypes{id: "UUID", timestamp: "TIMESTAMPTZ"}
	}
	return columnTypes{id: "TEXT", timestamp: "DATETIME"}
}

// schema returns the DDL statements in dependency order. Deleting a deck
// cascades to its elements and pairings; deleting an element cascades to
// the pairings that reference it. A pairing may only reference elements of
// its own deck.
func schema(dialect string) []string {
	t := typesFor(dialect)
	r := strings.NewReplacer("{id}", t.id, "{ts}", t.timestamp)
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS owners (
	id {id} PRIMARY KEY,
	display_name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	created_at {ts} NOT NULL,
	updated_at {ts} NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_owners_email ON owners(email)`,

		`CREATE TABLE IF NOT EXISTS element_kinds (
	id {id} PRIMARY KEY,
	name VARCHAR(10) NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_element_kinds_name ON element_kinds(name)`,

		`CREATE TABLE IF NOT EXISTS decks (
	id {id} PRIMARY KEY,
	owner_id {id} NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
	title VARCHAR(200) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at {ts} NOT NULL,
	updated_at {ts} NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_decks_owner_updated ON decks(owner_id, updated_at)`,

		`CREATE TABLE IF NOT EXISTS elements (
	id {id} PRIMARY KEY,
	deck_id {id} NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
	kind_id {id} NOT NULL REFERENCES element_kinds(id) ON DELETE RESTRICT,
	value TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	UNIQUE (deck_id, id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_elements_deck ON elements(deck_id)`,

		`CREATE TABLE IF NOT EXISTS pairings (
	id {id} PRIMARY KEY,
	deck_id {id} NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
	first_element_id {id} NOT NULL,
	second_element_id {id} NOT NULL,
	position INTEGER NOT NULL,
	FOREIGN KEY (deck_id, first_element_id) REFERENCES elements(deck_id, id) ON DELETE CASCADE,
	FOREIGN KEY (deck_id, second_element_id) REFERENCES elements(deck_id, id) ON DELETE CASCADE,
	CHECK (first_element_id <> second_element_id),
	UNIQUE (deck_id, position)
)`,
	}
	for i, s := range stmts {
		stmts[i] = r.Replace(s)
	}
	return stmts
}

// Migrate creates the tables and seeds the text element kind. Safe to run
// on every start. The records carry no association fields, so AutoMigrate
// would not emit the foreign keys; the DDL is written out instead.
func Migrate(db *gorm.DB) error {
	dialect := db.Dialector.Name()
	for _, stmt := range schema(dialect) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate %s: %w", dialect, err)
		}
	}
	text := ElementKind{ID: TextKindID, Name: TextKindName}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&text).Error; err != nil {
		return fmt.Errorf("seed element kinds: %w", err)
	}
	return nil
}
