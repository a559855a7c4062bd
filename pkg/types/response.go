package types

// Every endpoint responds with one of two envelopes: data on success, a coded
// error otherwise.

// SuccessEnvelope wraps a successful payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Details carries field-level context and
// is only populated for codes that allow it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps a failed response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewAPIError builds the public error body without details.
func NewAPIError(code, message string) APIError {
	return APIError{Code: code, Message: message}
}
