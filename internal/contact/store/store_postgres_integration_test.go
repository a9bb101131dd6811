//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"contactbook/internal/contact/models"
	"contactbook/internal/contact/store"
	"contactbook/pkg/platform/sentinel"
	"contactbook/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "contact_phone_numbers", "contacts"))
}

func (s *PostgresStoreSuite) newContact(name string, numbers ...string) *models.Contact {
	c, err := models.NewContact(name, numbers, "", nil, time.Now().UTC())
	s.Require().NoError(err)
	return c
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	c := s.newContact("Ann", "111", "222")
	c.ImageURL = "https://x/ann.jpg"
	c.ImageFile = &models.ImageFile{Data: []byte{0x89, 0x50}, ContentType: "image/png"}
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, c))

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("Ann", found.Name)
	s.Equal([]string{"111", "222"}, found.Numbers(), "phone order is preserved")
	s.Equal("https://x/ann.jpg", found.ImageURL)
	s.Require().NotNil(found.ImageFile)
	s.Equal("image/png", found.ImageFile.ContentType)

	_, err = s.store.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConstraintsMapToTakenErrors() {
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, s.newContact("Ann", "111")))

	err := s.store.CreateIfAvailable(s.ctx, s.newContact("Ann", "999"))
	s.ErrorIs(err, store.ErrNameTaken)

	err = s.store.CreateIfAvailable(s.ctx, s.newContact("Bea", "999", "111"))
	s.ErrorIs(err, store.ErrPhoneTaken)

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1, "a rejected create commits nothing")
}

func (s *PostgresStoreSuite) TestFindExcluding() {
	c := s.newContact("Ann", "111")
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, c))

	_, err := s.store.FindByName(s.ctx, "Ann", &c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	found, err := s.store.FindByName(s.ctx, "Ann", nil)
	s.Require().NoError(err)
	s.Equal(c.ID, found.ID)

	found, err = s.store.FindByAnyPhoneNumber(s.ctx, []string{"000", "111"}, nil)
	s.Require().NoError(err)
	s.Equal(c.ID, found.ID)

	_, err = s.store.FindByAnyPhoneNumber(s.ctx, []string{"111"}, &c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ann := s.newContact("Ann", "111")
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, ann))
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, s.newContact("Bea", "222")))

	updated, err := s.store.UpdateIfAvailable(s.ctx, ann.ID, models.ContactPatch{PhoneNumbers: []string{"111", "333"}}, time.Now())
	s.Require().NoError(err)
	s.Equal([]string{"111", "333"}, updated.Numbers())

	name := "Bea"
	_, err = s.store.UpdateIfAvailable(s.ctx, ann.ID, models.ContactPatch{Name: &name}, time.Now())
	s.ErrorIs(err, store.ErrNameTaken)

	_, err = s.store.UpdateIfAvailable(s.ctx, ann.ID, models.ContactPatch{PhoneNumbers: []string{"222"}}, time.Now())
	s.ErrorIs(err, store.ErrPhoneTaken)

	_, err = s.store.UpdateIfAvailable(s.ctx, uuid.New(), models.ContactPatch{}, time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSearch() {
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, s.newContact("John Doe", "5555555555")))
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, s.newContact("Jane Roe", "5551234")))
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, s.newContact("J.R. Smith", "777")))

	found, err := s.store.Search(s.ctx, models.SearchCriteria{Name: "doe"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("John Doe", found[0].Name)

	found, err = s.store.Search(s.ctx, models.SearchCriteria{Name: "j.", PhoneNumber: "7"})
	s.Require().NoError(err)
	s.Require().Len(found, 1, "dots match literally")
	s.Equal("J.R. Smith", found[0].Name)

	found, err = s.store.Search(s.ctx, models.SearchCriteria{PhoneNumber: "555"})
	s.Require().NoError(err)
	s.Len(found, 2)
}

func (s *PostgresStoreSuite) TestDelete() {
	c := s.newContact("Ann", "111")
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, c))

	s.Require().NoError(s.store.Delete(s.ctx, c.ID))
	s.ErrorIs(s.store.Delete(s.ctx, c.ID), sentinel.ErrNotFound)
	s.NoError(s.store.CreateIfAvailable(s.ctx, s.newContact("Ann", "111")), "cascade frees the numbers")
}

// TestConcurrentDuplicatePhone verifies the unique constraint lets exactly one of
// many racing creates with the same number through.
func (s *PostgresStoreSuite) TestConcurrentDuplicatePhone() {
	const goroutines = 30
	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := models.NewContact(fmt.Sprintf("Racer %d", i), []string{"5550000"}, "", nil, time.Now())
			if err != nil {
				return
			}
			err = s.store.CreateIfAvailable(s.ctx, c)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, store.ErrPhoneTaken) {
				conflictCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}
