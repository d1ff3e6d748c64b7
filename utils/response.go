package utils

import (
	"encoding/json"
	"net/http"

	"github.com/andrewpaige1/flashcards-api/apierr"
	"github.com/andrewpaige1/flashcards-api/logger"
)

type ErrorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as an error body. Server errors are logged with
// their cause; the client only sees the generic message.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	apiErr := apierr.From(err)
	if apiErr.Code == apierr.CodeServer {
		log.Error("request failed",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	WriteJSON(w, apiErr.Status, ErrorBody{
		Error:   apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	})
}
