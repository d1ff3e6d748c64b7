package handlers

import "net/http"

// Register mounts every route on mux. protect wraps the routes that need an
// authenticated owner.
func (h *Handler) Register(mux *http.ServeMux, protect func(http.HandlerFunc) http.Handler) {
	mux.HandleFunc("GET /health", h.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", h.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.Handle("GET /api/users/me", protect(h.Me))

	// Decks
	mux.Handle("POST /api/decks", protect(h.CreateDeck))
	mux.Handle("GET /api/decks", protect(h.ListDecks))
	mux.Handle("GET /api/decks/{id}", protect(h.GetDeck))
	mux.Handle("PUT /api/decks/{id}", protect(h.UpdateDeck))
	mux.Handle("DELETE /api/decks/{id}", protect(h.DeleteDeck))

	// Cards
	mux.Handle("GET /api/decks/{id}/cards/{cardId}", protect(h.GetCard))
}
