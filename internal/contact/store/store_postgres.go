package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"contactbook/internal/contact/models"
	"contactbook/pkg/platform/sentinel"
)

const (
	uniqueViolation       = "23505"
	nameConstraint        = "contacts_name_key"
	phoneNumberConstraint = "contact_phone_numbers_phone_number_key"
)

const selectContact = `
	SELECT c.id, c.name, c.image_url, c.image_data, c.image_content_type, c.created_at, c.updated_at,
		COALESCE((
			SELECT array_agg(p.phone_number ORDER BY p.position)
			FROM contact_phone_numbers p
			WHERE p.contact_id = c.id
		), '{}') AS phone_numbers
	FROM contacts c
`

// PostgresStore persists contacts in PostgreSQL. Unique constraints on the name
// and phone number columns are the authoritative uniqueness check.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) CreateIfAvailable(ctx context.Context, c *models.Contact) error {
	id := uuid.New()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		imageData, contentType := imageColumns(c.ImageFile)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contacts (id, name, image_url, image_data, image_content_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, c.Name, c.ImageURL, imageData, contentType, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return err
		}
		return insertPhoneNumbers(ctx, tx, id, c.Numbers())
	})
	if err != nil {
		return fmt.Errorf("create contact: %w", mapUniqueViolation(err))
	}
	c.ID = id
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id models.ContactID) (*models.Contact, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx, selectContact+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByName(ctx context.Context, name string, exclude *models.ContactID) (*models.Contact, error) {
	query := selectContact + ` WHERE c.name = $1 AND ($2::uuid IS NULL OR c.id <> $2::uuid)`
	c, err := scanContact(s.db.QueryRowContext(ctx, query, name, excludeArg(exclude)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contact by name: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByAnyPhoneNumber(ctx context.Context, numbers []string, exclude *models.ContactID) (*models.Contact, error) {
	query := selectContact + `
		WHERE c.id IN (
			SELECT contact_id FROM contact_phone_numbers WHERE phone_number = ANY($1)
		) AND ($2::uuid IS NULL OR c.id <> $2::uuid)
		ORDER BY c.created_at, c.id
		LIMIT 1
	`
	c, err := scanContact(s.db.QueryRowContext(ctx, query, pq.Array(numbers), excludeArg(exclude)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contact by phone number: %w", err)
	}
	return c, nil
}

// Search matches name and phone number as case-insensitive literal substrings.
func (s *PostgresStore) Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.Contact, error) {
	query := selectContact + `
		WHERE ($1 = '' OR strpos(lower(c.name), lower($1)) > 0)
		AND ($2 = '' OR EXISTS (
			SELECT 1 FROM contact_phone_numbers p
			WHERE p.contact_id = c.id AND strpos(lower(p.phone_number), lower($2)) > 0
		))
		ORDER BY c.created_at, c.id
	`
	contacts, err := s.queryContacts(ctx, query, criteria.Name, criteria.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return contacts, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Contact, error) {
	contacts, err := s.queryContacts(ctx, selectContact+` ORDER BY c.created_at, c.id`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// UpdateIfAvailable locks the row, merges patch and rewrites the phone list when
// one is supplied.
func (s *PostgresStore) UpdateIfAvailable(ctx context.Context, id models.ContactID, patch models.ContactPatch, now time.Time) (*models.Contact, error) {
	var updated *models.Contact
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var locked models.ContactID
		if err := tx.QueryRowContext(ctx, `SELECT id FROM contacts WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return err
		}
		current, err := scanContact(tx.QueryRowContext(ctx, selectContact+` WHERE c.id = $1`, id))
		if err != nil {
			return err
		}
		patch.Apply(current, now)

		imageData, contentType := imageColumns(current.ImageFile)
		_, err = tx.ExecContext(ctx, `
			UPDATE contacts
			SET name = $2, image_url = $3, image_data = $4, image_content_type = $5, updated_at = $6
			WHERE id = $1
		`, id, current.Name, current.ImageURL, imageData, contentType, current.UpdatedAt)
		if err != nil {
			return err
		}
		if patch.PhoneNumbers != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM contact_phone_numbers WHERE contact_id = $1`, id); err != nil {
				return err
			}
			if err := insertPhoneNumbers(ctx, tx, id, patch.PhoneNumbers); err != nil {
				return err
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update contact: %w", mapUniqueViolation(err))
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id models.ContactID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: postgres: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) queryContacts(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func insertPhoneNumbers(ctx context.Context, db execer, id models.ContactID, numbers []string) error {
	for i, n := range numbers {
		_, err := db.ExecContext(ctx, `
			INSERT INTO contact_phone_numbers (contact_id, position, phone_number)
			VALUES ($1, $2, $3)
		`, id, i, n)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var (
		c           models.Contact
		imageData   []byte
		contentType string
		numbers     []string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.ImageURL, &imageData, &contentType, &c.CreatedAt, &c.UpdatedAt, pq.Array(&numbers)); err != nil {
		return nil, err
	}
	c.PhoneNumbers = models.ToPhoneNumbers(numbers)
	if len(imageData) > 0 {
		c.ImageFile = &models.ImageFile{Data: imageData, ContentType: contentType}
	}
	return &c, nil
}

func imageColumns(img *models.ImageFile) ([]byte, string) {
	if img == nil {
		return nil, ""
	}
	return img.Data, img.ContentType
}

func excludeArg(exclude *models.ContactID) any {
	if exclude == nil {
		return nil
	}
	return exclude.String()
}

// mapUniqueViolation translates a unique-constraint error into ErrNameTaken or
// ErrPhoneTaken. Other errors pass through.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case nameConstraint:
		return ErrNameTaken
	case phoneNumberConstraint:
		return ErrPhoneTaken
	default:
		return fmt.Errorf("%s: %w", pqErr.Constraint, sentinel.ErrAlreadyUsed)
	}
}
