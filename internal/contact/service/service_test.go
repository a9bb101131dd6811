package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"contactbook/internal/contact/events"
	"contactbook/internal/contact/metrics"
	"contactbook/internal/contact/models"
	"contactbook/internal/contact/service/mocks"
	"contactbook/internal/contact/store"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/sentinel"
)

// ServiceSuite drives the service against a mocked store to pin down call
// order and error translation.
type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockContactStore
	cache   *mocks.MockExportCache
	metrics *metrics.Metrics
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockContactStore(s.ctrl)
	s.cache = mocks.NewMockExportCache(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store, WithExportCache(s.cache), WithMetrics(s.metrics))
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func createReq(name string, numbers ...string) *models.CreateContactRequest {
	return &models.CreateContactRequest{Name: name, PhoneNumbers: numbers}
}

func (s *ServiceSuite) TestCreate() {
	s.Run("checks name before phones and stops at the first failure", func() {
		s.store.EXPECT().FindByName(gomock.Any(), "Ann", nil).Return(&models.Contact{}, nil)

		_, err := s.service.Create(s.ctx, createReq("Ann", "111"))
		s.ErrorIs(err, models.ErrNameConflict)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.Conflicts.WithLabelValues("name")))
	})

	s.Run("phone conflict", func() {
		s.store.EXPECT().FindByName(gomock.Any(), "Bea", nil).Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().FindByAnyPhoneNumber(gomock.Any(), []string{"111"}, nil).Return(&models.Contact{}, nil)

		_, err := s.service.Create(s.ctx, createReq("Bea", "111"))
		s.ErrorIs(err, models.ErrPhoneConflict)
	})

	s.Run("success stores and invalidates export", func() {
		s.store.EXPECT().FindByName(gomock.Any(), "Cy", nil).Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().FindByAnyPhoneNumber(gomock.Any(), []string{"333"}, nil).Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().CreateIfAvailable(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, c *models.Contact) error {
				c.ID = uuid.New()
				return nil
			})
		s.cache.EXPECT().Invalidate(gomock.Any()).Return(nil)

		c, err := s.service.Create(s.ctx, createReq("Cy", "333"))
		s.Require().NoError(err)
		s.Equal("Cy", c.Name)
		s.NotEqual(uuid.Nil, c.ID)
	})

	s.Run("constraint race surfaces as the same conflict", func() {
		s.store.EXPECT().FindByName(gomock.Any(), "Dee", nil).Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().FindByAnyPhoneNumber(gomock.Any(), gomock.Any(), nil).Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().CreateIfAvailable(gomock.Any(), gomock.Any()).Return(store.ErrPhoneTaken)

		_, err := s.service.Create(s.ctx, createReq("Dee", "444"))
		s.ErrorIs(err, models.ErrPhoneConflict)
	})

	s.Run("store failure is internal", func() {
		s.store.EXPECT().FindByName(gomock.Any(), "Eve", nil).Return(nil, errors.New("connection refused"))

		_, err := s.service.Create(s.ctx, createReq("Eve", "555"))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("missing phone numbers is a parse error", func() {
		_, err := s.service.Create(s.ctx, &models.CreateContactRequest{Name: "Fay"})
		s.ErrorIs(err, models.ErrInvalidPhoneNumbers)
	})
}

func (s *ServiceSuite) TestUpdate() {
	id := uuid.New()

	s.Run("unknown id is not found before any check", func() {
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(nil, sentinel.ErrNotFound)
		name := "Ann"

		_, err := s.service.Update(s.ctx, id, &models.UpdateContactRequest{Name: &name})
		s.ErrorIs(err, models.ErrContactNotFound)
	})

	s.Run("checks exclude the contact itself", func() {
		name := "Ann"
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(&models.Contact{ID: id}, nil)
		s.store.EXPECT().FindByName(gomock.Any(), "Ann", &id).Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().FindByAnyPhoneNumber(gomock.Any(), []string{"111"}, &id).Return(nil, sentinel.ErrNotFound)
		s.store.EXPECT().UpdateIfAvailable(gomock.Any(), id, gomock.Any(), gomock.Any()).
			Return(&models.Contact{ID: id, Name: "Ann"}, nil)
		s.cache.EXPECT().Invalidate(gomock.Any()).Return(nil)

		c, err := s.service.Update(s.ctx, id, &models.UpdateContactRequest{Name: &name, PhoneNumbers: []string{"111"}})
		s.Require().NoError(err)
		s.Equal("Ann", c.Name)
	})

	s.Run("unsupplied fields skip their checks", func() {
		url := "https://x/a.jpg"
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(&models.Contact{ID: id}, nil)
		s.store.EXPECT().UpdateIfAvailable(gomock.Any(), id, models.ContactPatch{ImageURL: &url}, gomock.Any()).
			Return(&models.Contact{ID: id, ImageURL: url}, nil)
		s.cache.EXPECT().Invalidate(gomock.Any()).Return(errors.New("redis down"))

		_, err := s.service.Update(s.ctx, id, &models.UpdateContactRequest{ImageURL: &url})
		s.NoError(err, "cache failures do not fail the write")
	})
}

func (s *ServiceSuite) TestDelete() {
	id := uuid.New()
	s.store.EXPECT().Delete(gomock.Any(), id).Return(nil)
	s.cache.EXPECT().Invalidate(gomock.Any()).Return(nil)
	s.NoError(s.service.Delete(s.ctx, id))

	s.store.EXPECT().Delete(gomock.Any(), id).Return(sentinel.ErrNotFound)
	s.ErrorIs(s.service.Delete(s.ctx, id), models.ErrContactNotFound)
}

func (s *ServiceSuite) TestExportCSV() {
	s.Run("serves cached export", func() {
		s.cache.EXPECT().Get(gomock.Any()).Return([]byte("cached"), true, nil)

		data, err := s.service.ExportCSV(s.ctx)
		s.Require().NoError(err)
		s.Equal("cached", string(data))
	})

	s.Run("renders and caches on miss", func() {
		s.cache.EXPECT().Get(gomock.Any()).Return(nil, false, nil)
		s.store.EXPECT().List(gomock.Any()).Return([]*models.Contact{
			{Name: "John Doe", PhoneNumbers: models.ToPhoneNumbers([]string{"5555555555"}), ImageURL: "https://x/john.jpg"},
		}, nil)
		want := "Name,Phone Numbers,Image URL,Image File\nJohn Doe,5555555555,https://x/john.jpg,NA\n"
		s.cache.EXPECT().Set(gomock.Any(), []byte(want)).Return(nil)

		data, err := s.service.ExportCSV(s.ctx)
		s.Require().NoError(err)
		s.Equal(want, string(data))
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.ExportCacheMisses))
	})

	s.Run("store failure is internal", func() {
		s.cache.EXPECT().Get(gomock.Any()).Return(nil, false, errors.New("redis down"))
		s.store.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))

		_, err := s.service.ExportCSV(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

// InMemoryServiceSuite runs the full workflow against the in-memory store.
type InMemoryServiceSuite struct {
	suite.Suite
	publisher *recordingPublisher
	service   *Service
	ctx       context.Context
}

func TestInMemoryServiceSuite(t *testing.T) {
	suite.Run(t, new(InMemoryServiceSuite))
}

func (s *InMemoryServiceSuite) SetupTest() {
	s.publisher = &recordingPublisher{}
	s.service = New(store.NewInMemory(), WithPublisher(s.publisher))
	s.ctx = context.Background()
}

func (s *InMemoryServiceSuite) TestLifecycle() {
	ann, err := s.service.Create(s.ctx, createReq("Ann", "111", "222"))
	s.Require().NoError(err)

	_, err = s.service.Create(s.ctx, createReq("Ann", "999"))
	s.ErrorIs(err, models.ErrNameConflict)

	_, err = s.service.Create(s.ctx, createReq("Bea", "999", "222"))
	s.ErrorIs(err, models.ErrPhoneConflict)

	_, err = s.service.Create(s.ctx, createReq("Bea", "333", "333"))
	s.ErrorIs(err, models.ErrPhoneConflict, "repeated numbers within one request conflict")

	name := "Anna"
	updated, err := s.service.Update(s.ctx, ann.ID, &models.UpdateContactRequest{Name: &name})
	s.Require().NoError(err)
	s.Equal("Anna", updated.Name)
	s.Equal([]string{"111", "222"}, updated.Numbers())

	found, err := s.service.Search(s.ctx, models.SearchCriteria{Name: "ANN"})
	s.Require().NoError(err)
	s.Len(found, 1)

	s.Require().NoError(s.service.Delete(s.ctx, ann.ID))
	s.ErrorIs(s.service.Delete(s.ctx, ann.ID), models.ErrContactNotFound)

	all, err := s.service.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)

	s.Require().Len(s.publisher.events, 3)
	s.Equal(events.ContactCreated, s.publisher.events[0].Type)
	s.Equal(events.ContactUpdated, s.publisher.events[1].Type)
	s.Equal(events.ContactDeleted, s.publisher.events[2].Type)
}

func (s *InMemoryServiceSuite) TestExportReflectsWrites() {
	data, err := s.service.ExportCSV(s.ctx)
	s.Require().NoError(err)
	s.Equal("Name,Phone Numbers,Image URL,Image File\n", string(data))

	_, err = s.service.Create(s.ctx, &models.CreateContactRequest{
		Name:         "Ann",
		PhoneNumbers: []string{"111", "222"},
		ImageFile:    &models.ImageFile{Data: []byte{1}, ContentType: "image/png"},
	})
	s.Require().NoError(err)

	data, err = s.service.ExportCSV(s.ctx)
	s.Require().NoError(err)
	s.Equal("Name,Phone Numbers,Image URL,Image File\nAnn,\"111, 222\",NA,Image present\n", string(data))
}

func (s *InMemoryServiceSuite) TestNamesAreMatchedExactly() {
	_, err := s.service.Create(s.ctx, createReq("John", "111"))
	s.Require().NoError(err)

	padded, err := s.service.Create(s.ctx, createReq(" John", "222"))
	s.Require().NoError(err, "surrounding whitespace makes a distinct name")
	s.Equal(" John", padded.Name)

	_, err = s.service.Create(s.ctx, createReq("john", "333"))
	s.Require().NoError(err, "names are case-sensitive")

	_, err = s.service.Create(s.ctx, createReq(" John", "444"))
	s.ErrorIs(err, models.ErrNameConflict)
}

// listGate holds the first List call after it has read the contacts, so a
// write can commit while a render is in flight.
type listGate struct {
	*store.InMemory
	held    atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (g *listGate) List(ctx context.Context) ([]*models.Contact, error) {
	contacts, err := g.InMemory.List(ctx)
	if g.held.CompareAndSwap(false, true) {
		close(g.read)
		<-g.release
	}
	return contacts, err
}

type memoryCache struct {
	mu   sync.Mutex
	data []byte
	ok   bool
}

func (c *memoryCache) Get(context.Context) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data, c.ok, nil
}

func (c *memoryCache) Set(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data, c.ok = data, true
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data, c.ok = nil, false
	return nil
}

func (s *InMemoryServiceSuite) TestExportCacheSkipsRenderOverlappingWrite() {
	gate := &listGate{InMemory: store.NewInMemory(), read: make(chan struct{}), release: make(chan struct{})}
	cache := &memoryCache{}
	svc := New(gate, WithExportCache(cache))

	rendered := make(chan []byte, 1)
	go func() {
		data, err := svc.ExportCSV(s.ctx)
		s.NoError(err)
		rendered <- data
	}()

	<-gate.read
	_, err := svc.Create(s.ctx, createReq("Ann", "111"))
	s.Require().NoError(err)
	close(gate.release)
	s.NotContains(string(<-rendered), "Ann", "the in-flight render read before the write")

	data, err := svc.ExportCSV(s.ctx)
	s.Require().NoError(err)
	s.Contains(string(data), "Ann")

	cached, ok, _ := cache.Get(s.ctx)
	s.Require().True(ok)
	s.Contains(string(cached), "Ann")
}

func (s *InMemoryServiceSuite) TestExportWithoutCacheCountsNoMisses() {
	m := metrics.New(prometheus.NewRegistry())
	svc := New(store.NewInMemory(), WithMetrics(m))

	_, err := svc.ExportCSV(s.ctx)
	s.Require().NoError(err)
	s.Equal(float64(0), testutil.ToFloat64(m.ExportCacheMisses))
	s.Equal(float64(0), testutil.ToFloat64(m.ExportCacheHits))
}
