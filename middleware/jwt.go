package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andrewpaige1/flashcards-api/apierr"
	"github.com/andrewpaige1/flashcards-api/logger"
	"github.com/andrewpaige1/flashcards-api/utils"
	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

const allowedClockSkew = 30 * time.Second

// CustomClaims are the non-registered claims our tokens carry.
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (c *CustomClaims) Validate(context.Context) error {
	return nil
}

// EnsureValidToken rejects requests without a valid HS256 bearer token
// issued by issuer for audience.
func EnsureValidToken(secret []byte, issuer, audience string, log *logger.Logger) (func(http.Handler) http.Handler, error) {
	keyFunc := func(context.Context) (interface{}, error) {
		return secret, nil
	}
	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(allowedClockSkew),
	)
	if err != nil {
		return nil, fmt.Errorf("set up jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Debug("rejected bearer token", "request_id", utils.GetRequestID(r.Context()), "error", err)
		utils.WriteError(w, r, log, apierr.Unauthorized("A valid bearer token is required."))
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(next http.Handler) http.Handler {
		return middleware.CheckJWT(next)
	}, nil
}
