package models

import "strings"

// Normalize trims the requested display name.
func (u *ProfileUpdate) Normalize() {
	u.DisplayName = strings.TrimSpace(u.DisplayName)
}

// Validate checks the requested display name.
func (u *ProfileUpdate) Validate() error {
	if err := validate.Struct(u); err != nil {
		return NewValidationError(describe(err))
	}
	return nil
}
