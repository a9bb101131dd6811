package models

import dErrors "contactbook/pkg/domain-errors"

// Client-visible errors. Their messages are part of the public API.
var (
	ErrNameConflict        = dErrors.New(dErrors.CodeConflict, "A contact with this name already exists")
	ErrPhoneConflict       = dErrors.New(dErrors.CodeConflict, "A contact with one of these phone numbers already exists")
	ErrInvalidPhoneNumbers = dErrors.New(dErrors.CodeInvalidInput, "phoneNumbers should be a JSON array")
	ErrContactNotFound     = dErrors.New(dErrors.CodeNotFound, "Contact not found")
)
