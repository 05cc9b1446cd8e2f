package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/pokt-network/poktroll/pkg/polylog"
)

// errorResponse is the body of every error returned by the API.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes body as a JSON response with the given status code.
func writeJSON(logger polylog.Logger, w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response body")
	}
}

// writeError writes a JSON error response.
func writeError(logger polylog.Logger, w http.ResponseWriter, statusCode int, message string) {
	writeJSON(logger, w, statusCode, errorResponse{
		Code:    statusCode,
		Message: message,
	})
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func newUUID() string {
	return uuid.NewString()
}
