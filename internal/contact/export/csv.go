// Package export renders contact lists for download and browser display.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"contactbook/internal/contact/models"
)

const notAvailable = "NA"

var csvHeader = []string{"Name", "Phone Numbers", "Image URL", "Image File"}

// ToCSV renders contacts in input order. Phone numbers are joined with ", ";
// missing images render as NA.
func ToCSV(contacts []*models.Contact) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range contacts {
		if err := w.Write(csvRow(c)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvRow(c *models.Contact) []string {
	imageFile := notAvailable
	if c.HasImageFile() {
		imageFile = "Image present"
	}
	return []string{
		c.Name,
		strings.Join(c.Numbers(), ", "),
		orNA(c.ImageURL),
		imageFile,
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
