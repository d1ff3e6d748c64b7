package decks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andrewpaige1/flashcards-api/apierr"
	"github.com/andrewpaige1/flashcards-api/cards"
	"github.com/andrewpaige1/flashcards-api/internal/testutil"
	"github.com/andrewpaige1/flashcards-api/logger"
	"github.com/andrewpaige1/flashcards-api/models"
	"github.com/andrewpaige1/flashcards-api/repos"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db     *gorm.DB
	engine *Engine
	owner  uuid.UUID
	clock  time.Time
}

// tick advances the engine clock by one second per call.
func (env *testEnv) tick() time.Time {
	env.clock = env.clock.Add(time.Second)
	return env.clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	env := &testEnv{db: db, clock: baseTime}
	env.engine = NewEngine(db, repos.NewDeckRepo(db), repos.NewElementRepo(db), repos.NewPairingRepo(db), logger.NewNop())
	env.engine.now = env.tick
	env.owner = env.newOwner(t)
	return env
}

func (env *testEnv) newOwner(t *testing.T) uuid.UUID {
	t.Helper()
	owner := &models.Owner{
		ID:           uuid.New(),
		DisplayName:  "Owner",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	if err := repos.NewOwnerRepo(env.db).Create(context.Background(), nil, owner); err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	return owner.ID
}

func (env *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := env.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func strPtr(s string) *string { return &s }

func deckInput(title string, pairs ...string) CreateDeckInput {
	in := CreateDeckInput{Title: title}
	for i := 0; i+1 < len(pairs); i += 2 {
		in.Cards = append(in.Cards, cards.Input{Term: pairs[i], Definition: pairs[i+1]})
	}
	return in
}

func updateInput(title, description string, pairs ...string) UpdateDeckInput {
	c := deckInput(title, pairs...)
	return UpdateDeckInput{Title: c.Title, Description: strPtr(description), Cards: c.Cards}
}

func requireCode(t *testing.T, err error, code string) *apierr.Error {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
	if apiErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, apiErr.Code, apiErr.Details)
	}
	return apiErr
}

func TestCreateAssignsPositionsAndTimestamps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	detail, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello", "Adios", "Bye", "Gracias", "Thanks"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if detail.Description != "" {
		t.Errorf("expected empty description, got %q", detail.Description)
	}
	if !detail.CreatedAt.Equal(detail.UpdatedAt) {
		t.Errorf("expected createdAt == updatedAt, got %v and %v", detail.CreatedAt, detail.UpdatedAt)
	}
	if len(detail.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(detail.Cards))
	}
	for i, c := range detail.Cards {
		if c.Position != i {
			t.Errorf("card %d has position %d", i, c.Position)
		}
	}

	loaded, err := env.engine.Get(ctx, detail.ID, env.owner)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	for i := range detail.Cards {
		if loaded.Cards[i] != detail.Cards[i] {
			t.Errorf("card %d: stored %+v, returned %+v", i, loaded.Cards[i], detail.Cards[i])
		}
	}
	if !loaded.CreatedAt.Equal(detail.CreatedAt) || loaded.Title != "Spanish" {
		t.Errorf("unexpected loaded deck %+v", loaded)
	}
	if n := env.count(t, &models.Element{}); n != 6 {
		t.Errorf("expected 6 elements, got %d", n)
	}
}

func TestCreateKeepsDescription(t *testing.T) {
	env := newTestEnv(t)
	in := deckInput("Spanish", "Hola", "Hello")
	in.Description = strPtr("Basics")

	detail, err := env.engine.Create(context.Background(), env.owner, in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if detail.Description != "Basics" {
		t.Errorf("expected description Basics, got %q", detail.Description)
	}
}

func TestCreateValidation(t *testing.T) {
	tooMany := deckInput("Big")
	for i := 0; i < 501; i++ {
		tooMany.Cards = append(tooMany.Cards, cards.Input{Term: "t", Definition: "d"})
	}
	longDescription := deckInput("Spanish", "Hola", "Hello")
	longDescription.Description = strPtr(strings.Repeat("d", 1001))

	tests := []struct {
		name  string
		in    CreateDeckInput
		field string
	}{
		{"missing title", deckInput("", "Hola", "Hello"), "title"},
		{"blank title", deckInput("   ", "Hola", "Hello"), "title"},
		{"long title", deckInput(strings.Repeat("t", 201), "Hola", "Hello"), "title"},
		{"long description", longDescription, "description"},
		{"no cards", deckInput("Spanish"), "cards"},
		{"empty cards", CreateDeckInput{Title: "Spanish", Cards: []cards.Input{}}, "cards"},
		{"too many cards", tooMany, "cards"},
		{"missing term", deckInput("Spanish", "", "Hello"), "cards[0].term"},
		{"long term", deckInput("Spanish", "Hola", "Hello", strings.Repeat("t", 501), "x"), "cards[1].term"},
		{"long definition", deckInput("Spanish", "Hola", strings.Repeat("d", 2001)), "cards[0].definition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.engine.Create(context.Background(), env.owner, tt.in)
			apiErr := requireCode(t, err, apierr.CodeValidation)
			if _, ok := apiErr.Details[tt.field]; !ok {
				t.Errorf("expected details for %q, got %v", tt.field, apiErr.Details)
			}
			if n := env.count(t, &models.Deck{}); n != 0 {
				t.Errorf("expected no deck stored, found %d", n)
			}
		})
	}
}

func TestCreateAcceptsLimits(t *testing.T) {
	env := newTestEnv(t)
	in := deckInput(strings.Repeat("t", 200))
	in.Description = strPtr(strings.Repeat("d", 1000))
	for i := 0; i < 500; i++ {
		in.Cards = append(in.Cards, cards.Input{Term: strings.Repeat("a", 500), Definition: strings.Repeat("b", 2000)})
	}

	detail, err := env.engine.Create(context.Background(), env.owner, in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(detail.Cards) != 500 || detail.Cards[499].Position != 499 {
		t.Fatalf("unexpected cards: %d", len(detail.Cards))
	}
	if n := env.count(t, &models.Pairing{}); n != 500 {
		t.Errorf("expected 500 pairings, got %d", n)
	}
}

func TestGetHidesOtherOwnersDecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	detail, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	stranger := env.newOwner(t)

	_, errOther := env.engine.Get(ctx, detail.ID, stranger)
	_, errMissing := env.engine.Get(ctx, uuid.New(), env.owner)
	a := requireCode(t, errOther, apierr.CodeNotFound)
	b := requireCode(t, errMissing, apierr.CodeNotFound)
	if a.Message != b.Message || a.Status != b.Status {
		t.Errorf("not-owned and missing should look the same: %+v vs %+v", a, b)
	}
}

func TestUpdateReplacesCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello", "Adios", "Bye"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := env.engine.Update(ctx, created.ID, env.owner, updateInput("Spanish 2", "", "X", "Y", "Z", "W", "Q", "R"))
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "Spanish 2" || updated.Description != "" {
		t.Errorf("unexpected header %q/%q", updated.Title, updated.Description)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("expected updatedAt after createdAt, got %v / %v", updated.UpdatedAt, updated.CreatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt changed from %v to %v", created.CreatedAt, updated.CreatedAt)
	}
	if len(updated.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(updated.Cards))
	}
	old := map[uuid.UUID]bool{created.Cards[0].ID: true, created.Cards[1].ID: true}
	for i, c := range updated.Cards {
		if c.Position != i || old[c.ID] {
			t.Errorf("card %d: unexpected %+v", i, c)
		}
	}
	if updated.Cards[2].Term != "Q" || updated.Cards[2].Definition != "R" {
		t.Errorf("unexpected last card %+v", updated.Cards[2])
	}
	if n := env.count(t, &models.Element{}); n != 6 {
		t.Errorf("expected 6 elements after update, got %d", n)
	}
	if n := env.count(t, &models.Pairing{}); n != 3 {
		t.Errorf("expected 3 pairings after update, got %d", n)
	}
}

func TestUpdateRequiresDescription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	in := updateInput("Spanish", "", "X", "Y")
	in.Description = nil

	_, err = env.engine.Update(ctx, created.ID, env.owner, in)
	apiErr := requireCode(t, err, apierr.CodeValidation)
	if _, ok := apiErr.Details["description"]; !ok {
		t.Errorf("expected description detail, got %v", apiErr.Details)
	}
}

func TestUpdateNotOwnedLeavesDeckUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	stranger := env.newOwner(t)

	_, err = env.engine.Update(ctx, created.ID, stranger, updateInput("Mine", "", "X", "Y"))
	requireCode(t, err, apierr.CodeNotFound)
	_, err = env.engine.Update(ctx, uuid.New(), env.owner, updateInput("Mine", "", "X", "Y"))
	requireCode(t, err, apierr.CodeNotFound)

	loaded, err := env.engine.Get(ctx, created.ID, env.owner)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if loaded.Title != "Spanish" || loaded.Cards[0].ID != created.Cards[0].ID {
		t.Errorf("deck changed by a failed update: %+v", loaded)
	}
}

type failingPairings struct {
	repos.PairingRepo
}

func (failingPairings) CreateMany(context.Context, *gorm.DB, []models.Pairing) error {
	return errors.New("disk full")
}

func TestUpdateRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello", "Adios", "Bye"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	env.engine.pairings = failingPairings{PairingRepo: env.engine.pairings}
	_, err = env.engine.Update(ctx, created.ID, env.owner, updateInput("Broken", "x", "X", "Y"))
	if err == nil {
		t.Fatal("expected update to fail")
	}
	if apierr.From(err).Code != apierr.CodeServer {
		t.Errorf("expected server error, got %v", err)
	}

	loaded, err := env.engine.Get(ctx, created.ID, env.owner)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if loaded.Title != "Spanish" || len(loaded.Cards) != 2 || loaded.Cards[1].ID != created.Cards[1].ID {
		t.Errorf("expected the pre-update deck after rollback, got %+v", loaded)
	}
	if !loaded.UpdatedAt.Equal(created.UpdatedAt) {
		t.Errorf("updatedAt changed by a rolled back update")
	}
}

func TestCreateWithCanceledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello")); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if n := env.count(t, &models.Deck{}); n != 0 {
		t.Errorf("expected no deck stored, found %d", n)
	}
}

func TestDeleteTwiceAndNoOrphans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	keep, err := env.engine.Create(ctx, env.owner, deckInput("Keep", "a", "b"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	drop, err := env.engine.Create(ctx, env.owner, deckInput("Drop", "Hola", "Hello", "Adios", "Bye"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	requireCode(t, env.engine.Delete(ctx, drop.ID, env.newOwner(t)), apierr.CodeNotFound)
	if err := env.engine.Delete(ctx, drop.ID, env.owner); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	requireCode(t, env.engine.Delete(ctx, drop.ID, env.owner), apierr.CodeNotFound)

	if n := env.count(t, &models.Element{}); n != 2 {
		t.Errorf("expected only the kept deck's 2 elements, got %d", n)
	}
	if n := env.count(t, &models.Pairing{}); n != 1 {
		t.Errorf("expected only the kept deck's pairing, got %d", n)
	}
	if _, err := env.engine.Get(ctx, keep.ID, env.owner); err != nil {
		t.Errorf("kept deck missing: %v", err)
	}
}

func TestGetCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello", "Adios", "Bye"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	card, err := env.engine.GetCard(ctx, created.ID, created.Cards[1].ID, env.owner)
	if err != nil {
		t.Fatalf("GetCard returned error: %v", err)
	}
	if *card != created.Cards[1] {
		t.Errorf("got %+v, want %+v", card, created.Cards[1])
	}

	_, err = env.engine.GetCard(ctx, created.ID, created.Cards[1].ID, env.newOwner(t))
	requireCode(t, err, apierr.CodeNotFound)
	_, err = env.engine.GetCard(ctx, created.ID, uuid.New(), env.owner)
	requireCode(t, err, apierr.CodeNotFound)
}

func TestListEmpty(t *testing.T) {
	env := newTestEnv(t)

	page, err := env.engine.List(context.Background(), env.owner, 1, DefaultPageSize)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %#v", page.Items)
	}
	if page.Page != 1 || page.PageSize != 20 || page.TotalCount != 0 || page.TotalPages != 0 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestListPagingAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		d, err := env.engine.Create(ctx, env.owner, deckInput("Deck", "a", "b"))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		ids = append(ids, d.ID)
	}
	if _, err := env.engine.Create(ctx, env.newOwner(t), deckInput("Foreign", "a", "b")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	// Touching the oldest deck moves it to the front.
	if _, err := env.engine.Update(ctx, ids[0], env.owner, updateInput("Touched", "", "a", "b", "c", "d")); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	first, err := env.engine.List(ctx, env.owner, 1, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if first.TotalCount != 5 || first.TotalPages != 3 || len(first.Items) != 2 {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Items[0].ID != ids[0] || first.Items[0].CardCount != 2 || first.Items[0].Title != "Touched" {
		t.Errorf("expected touched deck first, got %+v", first.Items[0])
	}
	if first.Items[1].ID != ids[4] || first.Items[1].CardCount != 1 {
		t.Errorf("expected newest created deck second, got %+v", first.Items[1])
	}

	last, err := env.engine.List(ctx, env.owner, 3, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(last.Items) != 1 || last.Items[0].ID != ids[1] {
		t.Errorf("unexpected last page %+v", last.Items)
	}

	beyond, err := env.engine.List(ctx, env.owner, 9, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(beyond.Items) != 0 || beyond.TotalCount != 5 || beyond.Page != 9 {
		t.Errorf("unexpected page beyond the end %+v", beyond)
	}
}

func TestListClampsPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.engine.Create(ctx, env.owner, deckInput("Deck", "a", "b")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	tests := []struct {
		page, pageSize         int
		wantPage, wantPageSize int
	}{
		{1, 200, 1, 100},
		{0, 20, 1, 20},
		{-3, 0, 1, 1},
		{2, 100, 2, 100},
	}
	for _, tt := range tests {
		page, err := env.engine.List(ctx, env.owner, tt.page, tt.pageSize)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if page.Page != tt.wantPage || page.PageSize != tt.wantPageSize {
			t.Errorf("List(%d, %d) echoed %d/%d, want %d/%d",
				tt.page, tt.pageSize, page.Page, page.PageSize, tt.wantPage, tt.wantPageSize)
		}
	}
}

func TestHolaAdiosScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.engine.Create(ctx, env.owner, deckInput("Spanish", "Hola", "Hello", "Adios", "Bye"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Cards[0].Position != 0 || created.Cards[1].Position != 1 {
		t.Fatalf("unexpected positions %+v", created.Cards)
	}
	for _, c := range created.Cards {
		if c.ID.String() != strings.ToLower(c.ID.String()) || c.ID == uuid.Nil {
			t.Errorf("unexpected card id %s", c.ID)
		}
	}

	list, err := env.engine.List(ctx, env.owner, 1, DefaultPageSize)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].CardCount != 2 {
		t.Fatalf("expected one deck with 2 cards, got %+v", list.Items)
	}

	if _, err := env.engine.Update(ctx, created.ID, env.owner, updateInput("Spanish", "", "X", "Y")); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	got, err := env.engine.Get(ctx, created.ID, env.owner)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(got.Cards) != 1 {
		t.Fatalf("expected one card, got %d", len(got.Cards))
	}
	c := got.Cards[0]
	if c.Term != "X" || c.Definition != "Y" || c.Position != 0 {
		t.Errorf("unexpected card %+v", c)
	}
	if c.ID == created.Cards[0].ID || c.ID == created.Cards[1].ID {
		t.Error("updated card reused an old id")
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("updatedAt %v before createdAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestNormalizePageAndTotals(t *testing.T) {
	if p, s := NormalizePage(0, 500); p != 1 || s != MaxPageSize {
		t.Errorf("NormalizePage(0, 500) = %d, %d", p, s)
	}
	tests := []struct {
		total    int64
		pageSize int
		want     int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 2, 3},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}
