package dto

// APIError represents a structured error response.
// All error responses from the API use this format for consistency.
type APIError struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Field   *FieldDetails `json:"field,omitempty"`
}

// FieldDetails points at the input record that failed validation.
type FieldDetails struct {
	Kind     string `json:"kind"` // "claim" or "settlement"
	RecordID string `json:"record_id,omitempty"`
	Field    string `json:"field"`
}

// Common error codes
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInternalError = "internal_error"
	ErrCodeValidation    = "validation_error"
	ErrCodeUnavailable   = "unavailable"
)

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// NotFoundError creates a not found error response.
func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

// BadRequestError creates a bad request error response.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// InternalError creates an internal server error response.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// ValidationError creates a validation error response for one input record.
func ValidationError(message, kind, recordID, field string) APIError {
	return APIError{
		Code:    ErrCodeValidation,
		Message: message,
		Field: &FieldDetails{
			Kind:     kind,
			RecordID: recordID,
			Field:    field,
		},
	}
}
