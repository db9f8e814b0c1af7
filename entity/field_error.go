package entity

// FieldError is one field-level validation failure. Every failing field of a
// payload is reported, not just the first, so a caller can fix all problems
// in one round trip.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
