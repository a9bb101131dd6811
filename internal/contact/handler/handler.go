package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"contactbook/internal/contact/export"
	"contactbook/internal/contact/models"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/httputil"
	"contactbook/pkg/requestcontext"
)

// Service is the contact workflow the handlers drive.
type Service interface {
	Create(ctx context.Context, req *models.CreateContactRequest) (*models.Contact, error)
	Update(ctx context.Context, id models.ContactID, req *models.UpdateContactRequest) (*models.Contact, error)
	Delete(ctx context.Context, id models.ContactID) error
	Get(ctx context.Context, id models.ContactID) (*models.Contact, error)
	Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.Contact, error)
	ListAll(ctx context.Context) ([]*models.Contact, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

// Handler serves the /contacts routes.
type Handler struct {
	service       Service
	logger        *slog.Logger
	maxImageBytes int64
}

func New(service Service, logger *slog.Logger, maxImageBytes int64) *Handler {
	return &Handler{service: service, logger: logger, maxImageBytes: maxImageBytes}
}

// Register mounts the contact routes on r. Static paths are registered before
// the {id} routes so chi matches them first.
func (h *Handler) Register(r chi.Router) {
	r.Route("/contacts", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/search", h.HandleSearch)
		r.Get("/export", h.HandleExport)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

type deleteResponse struct {
	Message string `json:"message"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fields, err := h.parseFields(w, r)
	if err != nil {
		h.writeError(ctx, w, "create contact: invalid body", err)
		return
	}
	req, err := fields.createRequest()
	if err != nil {
		h.writeError(ctx, w, "create contact: invalid phone numbers", err)
		return
	}

	contact, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(ctx, w, "create contact failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.ToResponse(contact))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	fields, err := h.parseFields(w, r)
	if err != nil {
		h.writeError(ctx, w, "update contact: invalid body", err)
		return
	}
	req, err := fields.updateRequest()
	if err != nil {
		h.writeError(ctx, w, "update contact: invalid phone numbers", err)
		return
	}

	contact, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.writeError(ctx, w, "update contact failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(contact))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(r.Context(), w, "delete contact failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, deleteResponse{Message: "Contact deleted successfully"})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	contact, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(r.Context(), w, "get contact failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(contact))
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := models.SearchCriteria{
		Name:        q.Get("name"),
		PhoneNumber: q.Get("phoneNumber"),
	}
	contacts, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		h.writeError(r.Context(), w, "search contacts failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponses(contacts))
}

// HandleList returns an HTML table to callers that ask for HTML and JSON otherwise.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "list contacts failed", err)
		return
	}
	if !prefersHTML(r.Header.Get("Accept")) {
		httputil.WriteJSON(w, http.StatusOK, models.ToResponses(contacts))
		return
	}

	var buf bytes.Buffer
	if err := export.RenderHTML(&buf, contacts); err != nil {
		h.writeError(r.Context(), w, "render contacts table failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportCSV(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "export contacts failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=contacts.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// contactID parses the {id} path parameter. Ids that are not UUIDs cannot
// exist, so they are reported as not found.
func (h *Handler) contactID(w http.ResponseWriter, r *http.Request) (models.ContactID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, models.ErrContactNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := httputil.ToHTTPStatus(dErrors.CodeOf(err))
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"status", status,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
