package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"contactbook/internal/contact/models"
	"contactbook/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded store. Checks and writes happen under one lock,
// so uniqueness holds under concurrent requests.
type InMemory struct {
	mu       sync.RWMutex
	contacts map[models.ContactID]*models.Contact
	order    []models.ContactID
	byName   map[string]models.ContactID
	byPhone  map[string]models.ContactID
}

func NewInMemory() *InMemory {
	return &InMemory{
		contacts: make(map[models.ContactID]*models.Contact),
		byName:   make(map[string]models.ContactID),
		byPhone:  make(map[string]models.ContactID),
	}
}

// CreateIfAvailable assigns an ID and stores the contact unless its name or any
// of its numbers is already held.
func (s *InMemory) CreateIfAvailable(_ context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAvailableLocked(c.Name, c.Numbers(), nil); err != nil {
		return err
	}
	c.ID = uuid.New()
	stored := c.Clone()
	s.contacts[c.ID] = stored
	s.order = append(s.order, c.ID)
	s.indexLocked(stored)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id models.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemory) FindByName(_ context.Context, name string, exclude *models.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok || excluded(id, exclude) {
		return nil, sentinel.ErrNotFound
	}
	return s.contacts[id].Clone(), nil
}

func (s *InMemory) FindByAnyPhoneNumber(_ context.Context, numbers []string, exclude *models.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range numbers {
		if id, ok := s.byPhone[n]; ok && !excluded(id, exclude) {
			return s.contacts[id].Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Search returns contacts matching criteria in creation order.
func (s *InMemory) Search(_ context.Context, criteria models.SearchCriteria) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Contact, 0)
	for _, id := range s.order {
		if c := s.contacts[id]; criteria.Matches(c) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *InMemory) List(ctx context.Context) ([]*models.Contact, error) {
	return s.Search(ctx, models.SearchCriteria{})
}

// UpdateIfAvailable merges patch into the stored contact and returns the result.
func (s *InMemory) UpdateIfAvailable(_ context.Context, id models.ContactID, patch models.ContactPatch, now time.Time) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.contacts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	name := current.Name
	if patch.Name != nil {
		name = *patch.Name
	}
	if err := s.checkAvailableLocked(name, patch.PhoneNumbers, &id); err != nil {
		return nil, err
	}

	s.unindexLocked(current)
	updated := current.Clone()
	patch.Apply(updated, now)
	s.contacts[id] = updated
	s.indexLocked(updated)
	return updated.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, id models.ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.unindexLocked(c)
	delete(s.contacts, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds; it lets readiness treat stores uniformly.
func (s *InMemory) Ping(context.Context) error {
	return nil
}

func (s *InMemory) checkAvailableLocked(name string, numbers []string, exclude *models.ContactID) error {
	if id, ok := s.byName[name]; ok && !excluded(id, exclude) {
		return ErrNameTaken
	}
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		if _, dup := seen[n]; dup {
			return ErrPhoneTaken
		}
		seen[n] = struct{}{}
		if id, ok := s.byPhone[n]; ok && !excluded(id, exclude) {
			return ErrPhoneTaken
		}
	}
	return nil
}

func (s *InMemory) indexLocked(c *models.Contact) {
	s.byName[c.Name] = c.ID
	for _, p := range c.PhoneNumbers {
		s.byPhone[p.PhoneNumber] = c.ID
	}
}

func (s *InMemory) unindexLocked(c *models.Contact) {
	delete(s.byName, c.Name)
	for _, p := range c.PhoneNumbers {
		delete(s.byPhone, p.PhoneNumber)
	}
}

func excluded(id models.ContactID, exclude *models.ContactID) bool {
	return exclude != nil && id == *exclude
}
