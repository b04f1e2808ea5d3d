package validation

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Message flattens field errors into a single human-readable message, using
// the first error. Returns "" for an empty slice.
func Message(errs []FieldError) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0].Message
}
