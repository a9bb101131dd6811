package models

import (
	"strings"

	dErrors "contactbook/pkg/domain-errors"
)

// CreateContactRequest is the parsed body of POST /contacts.
type CreateContactRequest struct {
	Name         string
	PhoneNumbers []string
	ImageURL     string
	ImageFile    *ImageFile
}

// Normalize trims the image URL. Names are kept verbatim since uniqueness
// compares the raw value.
func (r *CreateContactRequest) Normalize() {
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}

// Validate checks the fields required to create a contact.
func (r *CreateContactRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.PhoneNumbers == nil {
		return ErrInvalidPhoneNumbers
	}
	if len(r.PhoneNumbers) == 0 {
		return dErrors.New(dErrors.CodeValidation, "phoneNumbers is required")
	}
	return nil
}

// UpdateContactRequest is the parsed body of PUT /contacts/{id}.
// A nil field was not supplied and is left unchanged.
type UpdateContactRequest struct {
	Name         *string
	PhoneNumbers []string
	ImageURL     *string
	ImageFile    *ImageFile
}

// Normalize drops blank fields, which count as not supplied. A name that is
// kept stays verbatim; the image URL is trimmed.
func (r *UpdateContactRequest) Normalize() {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		r.Name = nil
	}
	r.ImageURL = trimmedOrNil(r.ImageURL)
}

// Validate rejects an explicitly supplied but empty phone list.
func (r *UpdateContactRequest) Validate() error {
	if r.PhoneNumbers != nil && len(r.PhoneNumbers) == 0 {
		return dErrors.New(dErrors.CodeValidation, "phoneNumbers must not be empty")
	}
	return nil
}

// Patch converts the request into a store patch.
func (r *UpdateContactRequest) Patch() ContactPatch {
	return ContactPatch{
		Name:         r.Name,
		PhoneNumbers: r.PhoneNumbers,
		ImageURL:     r.ImageURL,
		ImageFile:    r.ImageFile,
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
