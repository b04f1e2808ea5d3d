package validation

import "strings"

// UpdateProfileRequest mirrors the fields needed for profile validation.
type UpdateProfileRequest struct {
	Name string
}

// ValidateUpdateProfileRequest validates a profile update.
func ValidateUpdateProfileRequest(req UpdateProfileRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	} else if len(name) > 100 {
		errs = append(errs, FieldError{Field: "name", Message: "Name must be at most 100 characters"})
	}

	return errs
}

// AdminUpdateUserRequest mirrors the fields needed for admin update validation.
type AdminUpdateUserRequest struct {
	Role *string
}

// ValidateAdminUpdateUserRequest validates an admin user update.
func ValidateAdminUpdateUserRequest(req AdminUpdateUserRequest) []FieldError {
	var errs []FieldError

	if req.Role != nil && *req.Role != "USER" && *req.Role != "ADMIN" {
		errs = append(errs, FieldError{Field: "role", Message: "Role must be USER or ADMIN"})
	}

	return errs
}
