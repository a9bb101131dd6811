package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "contactbook/pkg/domain-errors"
)

// ContactID identifies a contact. It is assigned by the store and never changes.
type ContactID = uuid.UUID

// PhoneNumber is one entry in a contact's ordered number list.
type PhoneNumber struct {
	PhoneNumber string `json:"phoneNumber"`
}

// ImageFile is an uploaded binary image kept alongside the contact.
type ImageFile struct {
	Data        []byte `json:"-"`
	ContentType string `json:"contentType"`
}

// Contact is a named entry in the contact list.
type Contact struct {
	ID           ContactID     `json:"_id"`
	Name         string        `json:"name"`
	PhoneNumbers []PhoneNumber `json:"phoneNumbers"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	ImageFile    *ImageFile    `json:"imageFile,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NewContact builds a contact and enforces construction invariants.
// The ID is left zero; the store assigns it.
func NewContact(name string, numbers []string, imageURL string, image *ImageFile, now time.Time) (*Contact, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(numbers) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "phoneNumbers is required")
	}
	return &Contact{
		Name:         name,
		PhoneNumbers: ToPhoneNumbers(numbers),
		ImageURL:     imageURL,
		ImageFile:    image,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Numbers returns the contact's phone numbers as plain strings, in order.
func (c *Contact) Numbers() []string {
	out := make([]string, len(c.PhoneNumbers))
	for i, p := range c.PhoneNumbers {
		out[i] = p.PhoneNumber
	}
	return out
}

// HasImageFile reports whether an uploaded image is attached.
func (c *Contact) HasImageFile() bool {
	return c.ImageFile != nil && len(c.ImageFile.Data) > 0
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (c *Contact) Clone() *Contact {
	if c == nil {
		return nil
	}
	cp := *c
	cp.PhoneNumbers = append([]PhoneNumber(nil), c.PhoneNumbers...)
	cp.ImageFile = c.ImageFile.clone()
	return &cp
}

func (f *ImageFile) clone() *ImageFile {
	if f == nil {
		return nil
	}
	img := *f
	img.Data = append([]byte(nil), f.Data...)
	return &img
}

// ToPhoneNumbers wraps plain strings into PhoneNumber entries.
func ToPhoneNumbers(numbers []string) []PhoneNumber {
	out := make([]PhoneNumber, len(numbers))
	for i, n := range numbers {
		out[i] = PhoneNumber{PhoneNumber: n}
	}
	return out
}

// ContactPatch carries the fields an update replaces. Nil means "leave as is".
type ContactPatch struct {
	Name         *string
	PhoneNumbers []string
	ImageURL     *string
	ImageFile    *ImageFile
}

// Apply merges the supplied fields into c.
func (p ContactPatch) Apply(c *Contact, now time.Time) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.PhoneNumbers != nil {
		c.PhoneNumbers = ToPhoneNumbers(p.PhoneNumbers)
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.ImageFile != nil {
		c.ImageFile = p.ImageFile.clone()
	}
	c.UpdatedAt = now
}

// SearchCriteria filters contacts. Empty fields are unconstrained; set fields are ANDed.
type SearchCriteria struct {
	Name        string
	PhoneNumber string
}

// Matches applies the criteria as case-insensitive literal substring checks.
func (s SearchCriteria) Matches(c *Contact) bool {
	if s.Name != "" && !containsFold(c.Name, s.Name) {
		return false
	}
	if s.PhoneNumber == "" {
		return true
	}
	for _, p := range c.PhoneNumbers {
		if containsFold(p.PhoneNumber, s.PhoneNumber) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
