package export

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"contactbook/internal/contact/models"
)

var contactsTable = template.Must(template.New("contacts").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Contacts Table</title>
  <style>
    table { width: 100%; border-collapse: collapse; }
    th, td { border: 1px solid black; padding: 8px; text-align: left; }
    th { background-color: #f2f2f2; }
  </style>
</head>
<body>
<h2>Contacts Table</h2>
<table>
  <thead>
    <tr>
      <th>ID</th>
      <th>Name</th>
      <th>Phone Numbers</th>
      <th>Image URL</th>
      <th>Image File</th>
    </tr>
  </thead>
  <tbody>
{{- range .}}
    <tr>
      <td>{{.ID}}</td>
      <td>{{.Name}}</td>
      <td>{{.PhoneNumbers}}</td>
      <td>{{.ImageURL}}</td>
      <td>{{.ImageFile}}</td>
    </tr>
{{- end}}
  </tbody>
</table>
</body>
</html>
`))

type htmlRow struct {
	ID           string
	Name         string
	PhoneNumbers string
	ImageURL     string
	ImageFile    string
}

// RenderHTML writes contacts as an escaped HTML table.
func RenderHTML(w io.Writer, contacts []*models.Contact) error {
	rows := make([]htmlRow, 0, len(contacts))
	for _, c := range contacts {
		imageFile := notAvailable
		if c.HasImageFile() {
			imageFile = "Image Present"
		}
		rows = append(rows, htmlRow{
			ID:           c.ID.String(),
			Name:         c.Name,
			PhoneNumbers: strings.Join(c.Numbers(), ", "),
			ImageURL:     orNA(c.ImageURL),
			ImageFile:    imageFile,
		})
	}
	if err := contactsTable.Execute(w, rows); err != nil {
		return fmt.Errorf("render contacts table: %w", err)
	}
	return nil
}
