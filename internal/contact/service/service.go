package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"contactbook/internal/contact/events"
	"contactbook/internal/contact/export"
	"contactbook/internal/contact/metrics"
	"contactbook/internal/contact/models"
	"contactbook/internal/contact/store"
	"contactbook/internal/contact/validation"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/sentinel"
	"contactbook/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// ContactStore persists contacts and is the final authority on uniqueness.
type ContactStore interface {
	validation.Lookup
	CreateIfAvailable(ctx context.Context, c *models.Contact) error
	FindByID(ctx context.Context, id models.ContactID) (*models.Contact, error)
	Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.Contact, error)
	List(ctx context.Context) ([]*models.Contact, error)
	UpdateIfAvailable(ctx context.Context, id models.ContactID, patch models.ContactPatch, now time.Time) (*models.Contact, error)
	Delete(ctx context.Context, id models.ContactID) error
}

// ExportCache holds the rendered CSV export between writes.
type ExportCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, data []byte) error
	Invalidate(ctx context.Context) error
}

// Service orchestrates contact validation, persistence and export.
type Service struct {
	store     ContactStore
	checker   *validation.Checker
	publisher events.Publisher
	cache     ExportCache
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	exports   singleflight.Group
	// generation advances on every committed write; a render that saw an
	// older generation must not populate the cache.
	generation atomic.Uint64
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithExportCache(c ExportCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New constructs a Service.
func New(st ContactStore, opts ...Option) *Service {
	s := &Service{
		store:   st,
		checker: validation.NewChecker(st),
		tracer:  otel.Tracer("contactbook/internal/contact/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new contact. The name check runs before the
// phone check and the first failure is returned.
func (s *Service) Create(ctx context.Context, req *models.CreateContactRequest) (_ *models.Contact, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Create")
	defer func() { endSpan(span, err) }()
	defer s.observe("create", time.Now())

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checker.CheckNameAvailable(ctx, req.Name, nil); err != nil {
		s.countConflict(err)
		return nil, err
	}
	if err := s.checker.CheckPhoneNumbersAvailable(ctx, req.PhoneNumbers, nil); err != nil {
		s.countConflict(err)
		return nil, err
	}

	c, err := models.NewContact(req.Name, req.PhoneNumbers, req.ImageURL, req.ImageFile, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateIfAvailable(ctx, c); err != nil {
		return nil, s.translateWriteError(err, "failed to create contact")
	}

	span.SetAttributes(attribute.String("contact.id", c.ID.String()))
	s.afterWrite(ctx, events.ContactCreated, c.ID, c)
	return c, nil
}

// Update merges the supplied fields into an existing contact.
func (s *Service) Update(ctx context.Context, id models.ContactID, req *models.UpdateContactRequest) (_ *models.Contact, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Update", trace.WithAttributes(attribute.String("contact.id", id.String())))
	defer func() { endSpan(span, err) }()
	defer s.observe("update", time.Now())

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, translateReadError(err, "failed to load contact")
	}
	if req.Name != nil {
		if err := s.checker.CheckNameAvailable(ctx, *req.Name, &id); err != nil {
			s.countConflict(err)
			return nil, err
		}
	}
	if req.PhoneNumbers != nil {
		if err := s.checker.CheckPhoneNumbersAvailable(ctx, req.PhoneNumbers, &id); err != nil {
			s.countConflict(err)
			return nil, err
		}
	}

	updated, err := s.store.UpdateIfAvailable(ctx, id, req.Patch(), requestcontext.Now(ctx))
	if err != nil {
		return nil, s.translateWriteError(err, "failed to update contact")
	}

	s.afterWrite(ctx, events.ContactUpdated, id, updated)
	return updated, nil
}

// Delete removes a contact. Deleting an unknown id is NotFound.
func (s *Service) Delete(ctx context.Context, id models.ContactID) (err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Delete", trace.WithAttributes(attribute.String("contact.id", id.String())))
	defer func() { endSpan(span, err) }()
	defer s.observe("delete", time.Now())

	if err := s.store.Delete(ctx, id); err != nil {
		return translateReadError(err, "failed to delete contact")
	}
	s.afterWrite(ctx, events.ContactDeleted, id, nil)
	return nil
}

func (s *Service) Get(ctx context.Context, id models.ContactID) (*models.Contact, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadError(err, "failed to load contact")
	}
	return c, nil
}

// Search returns contacts whose name and any phone number contain the given
// substrings, ignoring case.
func (s *Service) Search(ctx context.Context, criteria models.SearchCriteria) (_ []*models.Contact, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Search")
	defer func() { endSpan(span, err) }()
	defer s.observe("search", time.Now())

	contacts, err := s.store.Search(ctx, criteria)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search contacts")
	}
	return contacts, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*models.Contact, error) {
	contacts, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contacts")
	}
	return contacts, nil
}

// ExportCSV renders every contact as CSV. Concurrent callers share one render,
// and the result is cached until the next write when a cache is configured.
func (s *Service) ExportCSV(ctx context.Context) (_ []byte, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.ExportCSV")
	defer func() { endSpan(span, err) }()
	defer s.observe("export", time.Now())

	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logWarn(ctx, "export cache read failed", "error", err)
		} else if ok {
			s.countExportCache(true)
			return data, nil
		}
	}

	v, err, _ := s.exports.Do("csv", func() (any, error) {
		// Shared by every waiting caller; one caller going away must not fail the rest.
		ctx := context.WithoutCancel(ctx)
		gen := s.generation.Load()
		contacts, err := s.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		data, err := export.ToCSV(contacts)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render export")
		}
		if s.cache != nil {
			s.countExportCache(false)
			if s.generation.Load() != gen {
				return data, nil
			}
			if err := s.cache.Set(ctx, data); err != nil {
				s.logWarn(ctx, "export cache write failed", "error", err)
			} else if s.generation.Load() != gen {
				// A write landed between the check and the Set.
				if err := s.cache.Invalidate(ctx); err != nil {
					s.logWarn(ctx, "export cache invalidation failed", "error", err)
				}
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// afterWrite drops the cached export, publishes the event and logs the audit line.
// Failures here are logged; the write has already committed.
func (s *Service) afterWrite(ctx context.Context, t events.Type, id models.ContactID, c *models.Contact) {
	s.generation.Add(1)
	s.exports.Forget("csv")
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logWarn(ctx, "export cache invalidation failed", "error", err)
		}
	}
	if s.publisher != nil {
		e := events.NewEvent(t, id, c, requestcontext.RequestID(ctx), requestcontext.Now(ctx))
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.logWarn(ctx, "contact event publish failed", "type", string(t), "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementWritten(string(t))
	}
	s.logAudit(ctx, string(t), "contact_id", id.String())
}

// translateWriteError maps a store write failure onto the client-facing error.
// A constraint hit that slipped past the pre-flight check reads the same as one
// that did not.
func (s *Service) translateWriteError(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrNameTaken):
		s.countConflict(models.ErrNameConflict)
		return models.ErrNameConflict
	case errors.Is(err, store.ErrPhoneTaken):
		s.countConflict(models.ErrPhoneConflict)
		return models.ErrPhoneConflict
	case errors.Is(err, sentinel.ErrNotFound):
		return models.ErrContactNotFound
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func translateReadError(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrContactNotFound
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) countConflict(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, models.ErrNameConflict):
		s.metrics.IncrementConflict("name")
	case errors.Is(err, models.ErrPhoneConflict):
		s.metrics.IncrementConflict("phone_number")
	}
}

func (s *Service) countExportCache(hit bool) {
	if s.metrics != nil {
		s.metrics.IncrementExportCache(hit)
	}
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, start)
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	if s.logger == nil {
		return
	}
	args := append([]any{"event", event, "request_id", requestcontext.RequestID(ctx)}, attrs...)
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...any) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, attrs...)
}

func endSpan(span trace.Span, err error) {
	if err != nil && dErrors.CodeOf(err) == dErrors.CodeInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
