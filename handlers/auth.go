package handlers

import (
	"net/http"

	"github.com/andrewpaige1/flashcards-api/auth"
	"github.com/andrewpaige1/flashcards-api/utils"
)

// POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Auth.Signup(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, resp)
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeBody(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// GET /api/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.Auth.Me(r.Context(), owner)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}
