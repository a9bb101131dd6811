package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"contactbook/internal/contact/models"
	"contactbook/internal/contact/validation"
	dErrors "contactbook/pkg/domain-errors"
)

const (
	imageField     = "imageFile"
	formOverhead   = 1 << 20
	multipartInMem = 1 << 20
)

// rawFields is a request body after transport decoding and before validation.
// Nil pointers mean the field was absent.
type rawFields struct {
	name         *string
	imageURL     *string
	phoneNumbers func() ([]string, error)
	image        *models.ImageFile
}

type jsonBody struct {
	Name         *string         `json:"name"`
	PhoneNumbers json.RawMessage `json:"phoneNumbers"`
	ImageURL     *string         `json:"imageUrl"`
}

// parseFields decodes multipart, urlencoded or JSON bodies into rawFields.
func (h *Handler) parseFields(w http.ResponseWriter, r *http.Request) (*rawFields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+formOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return parseJSON(r.Body)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartInMem); err != nil {
			return nil, h.bodyError(err)
		}
		fields := formFields(r)
		image, err := h.readImage(r)
		if err != nil {
			return nil, err
		}
		fields.image = image
		return fields, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, h.bodyError(err)
		}
		return formFields(r), nil
	}
}

func parseJSON(body io.Reader) (*rawFields, error) {
	var b jsonBody
	if err := json.NewDecoder(body).Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON body")
	}
	fields := &rawFields{name: b.Name, imageURL: b.ImageURL}
	if v := string(b.PhoneNumbers); v != "" && v != "null" && v != `""` {
		raw := b.PhoneNumbers
		fields.phoneNumbers = func() ([]string, error) { return validation.ParsePhoneNumberValue(raw) }
	}
	return fields, nil
}

func formFields(r *http.Request) *rawFields {
	fields := &rawFields{
		name:     formValue(r, "name"),
		imageURL: formValue(r, "imageUrl"),
	}
	if raw := formValue(r, "phoneNumbers"); raw != nil && *raw != "" {
		fields.phoneNumbers = func() ([]string, error) { return validation.ParsePhoneNumberList(*raw) }
	}
	return fields
}

func formValue(r *http.Request, key string) *string {
	if _, ok := r.Form[key]; !ok {
		return nil
	}
	v := r.Form.Get(key)
	return &v
}

func (h *Handler) readImage(r *http.Request) (*models.ImageFile, error) {
	file, header, err := r.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid imageFile upload")
	}
	defer file.Close()

	if header.Size > h.maxImageBytes {
		return nil, h.tooLarge()
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid imageFile upload")
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, h.tooLarge()
	}
	if len(data) == 0 {
		return nil, nil
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &models.ImageFile{Data: data, ContentType: contentType}, nil
}

func (h *Handler) bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return h.tooLarge()
	}
	return dErrors.New(dErrors.CodeBadRequest, "Invalid request body")
}

func (h *Handler) tooLarge() error {
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("imageFile must not exceed %d bytes", h.maxImageBytes))
}

// createRequest requires phoneNumbers; an absent list is a parse error.
func (f *rawFields) createRequest() (*models.CreateContactRequest, error) {
	if f.phoneNumbers == nil {
		return nil, models.ErrInvalidPhoneNumbers
	}
	numbers, err := f.phoneNumbers()
	if err != nil {
		return nil, err
	}
	req := &models.CreateContactRequest{PhoneNumbers: numbers, ImageFile: f.image}
	if f.name != nil {
		req.Name = *f.name
	}
	if f.imageURL != nil {
		req.ImageURL = *f.imageURL
	}
	return req, nil
}

func (f *rawFields) updateRequest() (*models.UpdateContactRequest, error) {
	req := &models.UpdateContactRequest{Name: f.name, ImageURL: f.imageURL, ImageFile: f.image}
	if f.phoneNumbers != nil {
		numbers, err := f.phoneNumbers()
		if err != nil {
			return nil, err
		}
		req.PhoneNumbers = numbers
	}
	return req, nil
}

// mediaRange is one entry of an Accept header.
type mediaRange struct {
	typ, subtype string
	q            float64
	pos          int
}

// prefersHTML reports whether the Accept header ranks an HTML type above JSON.
// Equal quality goes to whichever is listed first; a full tie, as with */* or a
// missing header, stays JSON.
func prefersHTML(accept string) bool {
	ranges := parseAccept(accept)
	htmlQ, htmlPos := acceptance(ranges, "text/html")
	if q, pos := acceptance(ranges, "application/xhtml+xml"); q > htmlQ || (q == htmlQ && pos < htmlPos) {
		htmlQ, htmlPos = q, pos
	}
	jsonQ, jsonPos := acceptance(ranges, "application/json")
	if htmlQ != jsonQ {
		return htmlQ > jsonQ
	}
	return htmlQ > 0 && htmlPos < jsonPos
}

func parseAccept(accept string) []mediaRange {
	var ranges []mediaRange
	for i, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		typ, subtype, ok := strings.Cut(mediaType, "/")
		if !ok {
			continue
		}
		q := 1.0
		if v, ok := params["q"]; ok {
			q, err = strconv.ParseFloat(v, 64)
			if err != nil || q < 0 || q > 1 {
				continue
			}
		}
		ranges = append(ranges, mediaRange{typ: typ, subtype: subtype, q: q, pos: i})
	}
	return ranges
}

// acceptance returns the quality and position of the most specific range
// matching mediaType, or zero when nothing matches.
func acceptance(ranges []mediaRange, mediaType string) (float64, int) {
	typ, subtype, _ := strings.Cut(mediaType, "/")
	best, q, pos := -1, 0.0, len(ranges)
	for _, r := range ranges {
		specificity := -1
		switch {
		case r.typ == typ && r.subtype == subtype:
			specificity = 2
		case r.typ == typ && r.subtype == "*":
			specificity = 1
		case r.typ == "*" && r.subtype == "*":
			specificity = 0
		}
		if specificity > best {
			best, q, pos = specificity, r.q, r.pos
		}
	}
	return q, pos
}
