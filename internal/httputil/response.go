package httputil

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/redmonkez12/book-tracker/internal/logging"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse is the body of successful mutations
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondMessage sends {"message": message} with status 200
func RespondMessage(w http.ResponseWriter, message string) {
	RespondJSON(w, MessageResponse{Message: message}, http.StatusOK)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Detail: message, Code: code}, statusCode)
}

// RespondValidationError sends a 422 listing the offending fields
func RespondValidationError(w http.ResponseWriter, err *ValidationError) {
	RespondJSON(w, ErrorResponse{
		Detail: err.Error(),
		Code:   CodeValidationFailed,
		Fields: err.Fields,
	}, http.StatusUnprocessableEntity)
}

// RespondDecodeError maps a DecodeJSON/Validate failure to 422 for rule
// violations and 400 for unreadable bodies
func RespondDecodeError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		logger.Warn("request validation failed", "fields", verr.Fields)
		RespondValidationError(w, verr)
		return
	}
	logger.Warn("invalid request body", "error", err.Error())
	RespondErrorWithCode(w, "invalid request body", CodeInvalidRequestBody, http.StatusBadRequest)
}
