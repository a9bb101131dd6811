// Package validation holds the uniqueness checks and input parsing shared by
// contact create and update.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"contactbook/internal/contact/models"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/sentinel"
)

// Lookup is the read side of the contact store the checks need.
// Both methods return sentinel.ErrNotFound when nothing matches.
type Lookup interface {
	FindByName(ctx context.Context, name string, exclude *models.ContactID) (*models.Contact, error)
	FindByAnyPhoneNumber(ctx context.Context, numbers []string, exclude *models.ContactID) (*models.Contact, error)
}

// Checker runs pre-flight uniqueness checks. The store's constraints remain the
// final word; these only produce the error early.
type Checker struct {
	lookup Lookup
}

func NewChecker(lookup Lookup) *Checker {
	return &Checker{lookup: lookup}
}

// CheckNameAvailable fails with models.ErrNameConflict if another contact holds name.
func (c *Checker) CheckNameAvailable(ctx context.Context, name string, exclude *models.ContactID) error {
	_, err := c.lookup.FindByName(ctx, name, exclude)
	switch {
	case err == nil:
		return models.ErrNameConflict
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check name availability")
	}
}

// CheckPhoneNumbersAvailable fails with models.ErrPhoneConflict if any number is
// held by another contact or repeats within numbers.
func (c *Checker) CheckPhoneNumbersAvailable(ctx context.Context, numbers []string, exclude *models.ContactID) error {
	if hasDuplicates(numbers) {
		return models.ErrPhoneConflict
	}
	_, err := c.lookup.FindByAnyPhoneNumber(ctx, numbers, exclude)
	switch {
	case err == nil:
		return models.ErrPhoneConflict
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check phone number availability")
	}
}

func hasDuplicates(numbers []string) bool {
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}

// ParsePhoneNumberList decodes a JSON array of strings carried in a text field.
// Absent, malformed or non-array input, and non-string or blank elements, fail
// with models.ErrInvalidPhoneNumbers.
func ParsePhoneNumberList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, models.ErrInvalidPhoneNumbers
	}
	return parseArray([]byte(raw))
}

// ParsePhoneNumberValue accepts the JSON-body form of phoneNumbers: either an array
// or a string holding a serialized array.
func ParsePhoneNumberValue(raw json.RawMessage) ([]string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParsePhoneNumberList(s)
	}
	return parseArray(raw)
}

func parseArray(data []byte) ([]string, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
		return nil, models.ErrInvalidPhoneNumbers
	}
	numbers := make([]string, 0, len(elems))
	for _, e := range elems {
		var n string
		if err := json.Unmarshal(e, &n); err != nil {
			return nil, models.ErrInvalidPhoneNumbers
		}
		if strings.TrimSpace(n) == "" {
			return nil, models.ErrInvalidPhoneNumbers
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}
