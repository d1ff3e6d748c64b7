package middleware

import (
	"errors"
	"net/http"

	"github.com/andrewpaige1/flashcards-api/apierr"
	"github.com/andrewpaige1/flashcards-api/logger"
	"github.com/andrewpaige1/flashcards-api/repos"
	"github.com/andrewpaige1/flashcards-api/utils"
	"github.com/google/uuid"
)

// RequireOwner resolves the token subject to a stored owner and attaches
// the owner id to the request context. It must run after EnsureValidToken.
func RequireOwner(owners repos.OwnerRepo, log *logger.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			subject, ok := utils.GetSubject(r)
			if !ok {
				utils.WriteError(w, r, log, apierr.Unauthorized("No subject found in token."))
				return
			}
			ownerID, err := uuid.Parse(subject)
			if err != nil {
				utils.WriteError(w, r, log, apierr.Unauthorized("Token subject is not a valid user id."))
				return
			}

			owner, err := owners.GetByID(r.Context(), nil, ownerID)
			if errors.Is(err, repos.ErrNotFound) {
				utils.WriteError(w, r, log, apierr.Unauthorized("User no longer exists."))
				return
			}
			if err != nil {
				utils.WriteError(w, r, log, err)
				return
			}

			ctx := utils.WithOwnerID(r.Context(), owner.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}
