package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/jmoiron/sqlx"
)

const contactColumns = `id, user_id, name, email, phone, type, avatar,
	address_street, address_city, address_zip, address_country, notes, created_at`

// contactRow: плоское представление строки таблицы contacts
type contactRow struct {
	ID             domain.ID          `db:"id"`
	UserID         domain.ID          `db:"user_id"`
	Name           string             `db:"name"`
	Email          string             `db:"email"`
	Phone          string             `db:"phone"`
	Type           domain.ContactType `db:"type"`
	Avatar         sql.NullString     `db:"avatar"`
	AddressStreet  string             `db:"address_street"`
	AddressCity    string             `db:"address_city"`
	AddressZip     string             `db:"address_zip"`
	AddressCountry string             `db:"address_country"`
	Notes          string             `db:"notes"`
	CreatedAt      time.Time          `db:"created_at"`
}

func toContactRow(c *domain.Contact) contactRow {
	row := contactRow{
		ID:        c.ID,
		UserID:    c.Owner,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Type:      c.Type,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
	if c.Avatar != nil {
		row.Avatar = sql.NullString{String: *c.Avatar, Valid: true}
	}
	if c.Address != nil {
		row.AddressStreet = c.Address.Street
		row.AddressCity = c.Address.City
		row.AddressZip = c.Address.ZipCode
		row.AddressCountry = c.Address.Country
	}
	return row
}

func (r contactRow) toDomain() domain.Contact {
	c := domain.Contact{
		ID:        r.ID,
		Owner:     r.UserID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Type:      r.Type,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
	if r.Avatar.Valid {
		avatar := r.Avatar.String
		c.Avatar = &avatar
	}
	addr := domain.Address{Street: r.AddressStreet, City: r.AddressCity, ZipCode: r.AddressZip, Country: r.AddressCountry}
	if !addr.IsZero() {
		c.Address = &addr
	}
	return c
}

// ContactStorage реализует ports.ContactStorage поверх sqlx
type ContactStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewContactStorage(db *sqlx.DB, logger *slog.Logger) *ContactStorage {
	return &ContactStorage{db: db, logger: logger}
}

// CreateContact сохраняет контакт
func (s *ContactStorage) CreateContact(ctx context.Context, contact *domain.Contact) error {
	start := time.Now()

	if contact.ID == "" {
		contact.ID = domain.NewID()
	}

	_, err := s.db.NamedExecContext(ctx, `
	INSERT INTO contacts (id, user_id, name, email, phone, type, avatar,
		address_street, address_city, address_zip, address_country, notes, created_at)
	VALUES (:id, :user_id, :name, :email, :phone, :type, :avatar,
		:address_street, :address_city, :address_zip, :address_country, :notes, :created_at)
	`, toContactRow(contact))
	if err != nil {
		s.logger.Error("failed to insert contact", "owner", contact.Owner, "error", err)
		return fmt.Errorf("insert contact: %w", classify(err))
	}

	s.logger.Info("contact saved successfully",
		"contact_id", contact.ID,
		"owner", contact.Owner,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetContactByID получает контакт по ID
func (s *ContactStorage) GetContactByID(ctx context.Context, id domain.ID) (*domain.Contact, error) {
	var row contactRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("select contact %s: %w", id, classify(err))
	}
	c := row.toDomain()
	return &c, nil
}

// ListContacts получает все контакты (для администратора)
func (s *ContactStorage) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return s.selectContacts(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC`)
}

// ListContactsByOwner получает контакты одного пользователя
func (s *ContactStorage) ListContactsByOwner(ctx context.Context, owner domain.ID) ([]domain.Contact, error) {
	return s.selectContacts(ctx, `SELECT `+contactColumns+` FROM contacts WHERE user_id = $1 ORDER BY created_at DESC`, owner)
}

// UpdateContact перезаписывает изменяемые поля контакта; владелец не меняется
func (s *ContactStorage) UpdateContact(ctx context.Context, contact *domain.Contact) error {
	start := time.Now()

	res, err := s.db.NamedExecContext(ctx, `
	UPDATE contacts
	SET name = :name, email = :email, phone = :phone, type = :type, avatar = :avatar,
		address_street = :address_street, address_city = :address_city,
		address_zip = :address_zip, address_country = :address_country, notes = :notes
	WHERE id = :id
	`, toContactRow(contact))
	if err != nil {
		s.logger.Error("failed to update contact", "contact_id", contact.ID, "error", err)
		return fmt.Errorf("update contact %s: %w", contact.ID, classify(err))
	}
	if err := expectOneRow(res, "contact", contact.ID); err != nil {
		return err
	}

	s.logger.Info("contact updated",
		"contact_id", contact.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteContact удаляет контакт
func (s *ContactStorage) DeleteContact(ctx context.Context, id domain.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete contact", "contact_id", id, "error", err)
		return fmt.Errorf("delete contact %s: %w", id, classify(err))
	}
	if err := expectOneRow(res, "contact", id); err != nil {
		return err
	}

	s.logger.Info("contact deleted", "contact_id", id)
	return nil
}

func (s *ContactStorage) selectContacts(ctx context.Context, query string, args ...any) ([]domain.Contact, error) {
	start := time.Now()

	var rows []contactRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		s.logger.Error("failed to list contacts", "error", err)
		return nil, fmt.Errorf("select contacts: %w", classify(err))
	}

	contacts := make([]domain.Contact, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, r.toDomain())
	}

	s.logger.Debug("listed contacts",
		"count", len(contacts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return contacts, nil
}
