package validation

import "strings"

const maxTitleLength = 200

// BlogRequest mirrors the fields needed for blog create/update validation.
type BlogRequest struct {
	Title   string
	Content string
}

// ValidateBlogRequest validates the fields of a blog create/update request.
// Returns a slice of field errors; empty slice means valid.
func ValidateBlogRequest(req BlogRequest) []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "Title is required"})
	} else if len(title) > maxTitleLength {
		errs = append(errs, FieldError{Field: "title", Message: "Title must be at most 200 characters"})
	}

	if strings.TrimSpace(req.Content) == "" {
		errs = append(errs, FieldError{Field: "content", Message: "Content is required"})
	}

	return errs
}
