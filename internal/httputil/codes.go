package httputil

// Machine-readable error codes returned alongside the human message
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_ERROR"
	CodeDuplicateUser      = "EMAIL_ALREADY_REGISTERED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeBookNotFound       = "BOOK_NOT_FOUND"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternalError      = "INTERNAL_ERROR"
)
