// Package store persists contacts. Uniqueness of names and phone numbers is
// enforced here; callers' pre-flight checks only shape the error message.
package store

import (
	"fmt"

	"contactbook/pkg/platform/sentinel"
)

// Errors returned when a write collides with an existing contact. Both wrap
// sentinel.ErrAlreadyUsed.
var (
	ErrNameTaken  = fmt.Errorf("contact name: %w", sentinel.ErrAlreadyUsed)
	ErrPhoneTaken = fmt.Errorf("contact phone number: %w", sentinel.ErrAlreadyUsed)
)
