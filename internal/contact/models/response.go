package models

import "time"

// ContactResponse is the JSON shape returned for a contact.
// The image bytes are never echoed; only their presence is.
type ContactResponse struct {
	ID           string             `json:"_id"`
	Name         string             `json:"name"`
	PhoneNumbers []PhoneNumber      `json:"phoneNumbers"`
	ImageURL     string             `json:"imageUrl,omitempty"`
	ImageFile    *ImageFileResponse `json:"imageFile,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// ImageFileResponse describes an attached image without its bytes.
type ImageFileResponse struct {
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// ToResponse projects a contact into its JSON shape.
func ToResponse(c *Contact) ContactResponse {
	resp := ContactResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		PhoneNumbers: c.PhoneNumbers,
		ImageURL:     c.ImageURL,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if resp.PhoneNumbers == nil {
		resp.PhoneNumbers = []PhoneNumber{}
	}
	if c.HasImageFile() {
		resp.ImageFile = &ImageFileResponse{
			ContentType: c.ImageFile.ContentType,
			Size:        len(c.ImageFile.Data),
		}
	}
	return resp
}

// ToResponses projects a list, never returning nil.
func ToResponses(contacts []*Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, ToResponse(c))
	}
	return out
}
