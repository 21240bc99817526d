package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/contactbook/internal/domain"
	"gorm.io/gorm"
)

// contactModel: GORM-модель таблицы contacts
type contactModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	UserID         string    `gorm:"column:user_id"`
	Name           string    `gorm:"column:name"`
	Email          string    `gorm:"column:email"`
	Phone          string    `gorm:"column:phone"`
	Type           string    `gorm:"column:type"`
	Avatar         *string   `gorm:"column:avatar"`
	AddressStreet  string    `gorm:"column:address_street"`
	AddressCity    string    `gorm:"column:address_city"`
	AddressZip     string    `gorm:"column:address_zip"`
	AddressCountry string    `gorm:"column:address_country"`
	Notes          string    `gorm:"column:notes"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (contactModel) TableName() string {
	return "contacts"
}

func contactToModel(c *domain.Contact) contactModel {
	m := contactModel{
		ID:        c.ID.String(),
		UserID:    c.Owner.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Type:      string(c.Type),
		Avatar:    c.Avatar,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
	if c.Address != nil {
		m.AddressStreet = c.Address.Street
		m.AddressCity = c.Address.City
		m.AddressZip = c.Address.ZipCode
		m.AddressCountry = c.Address.Country
	}
	return m
}

func (m contactModel) toDomain() domain.Contact {
	c := domain.Contact{
		ID:        domain.ID(m.ID),
		Owner:     domain.ID(m.UserID),
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Type:      domain.ContactType(m.Type),
		Avatar:    m.Avatar,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
	addr := domain.Address{Street: m.AddressStreet, City: m.AddressCity, ZipCode: m.AddressZip, Country: m.AddressCountry}
	if !addr.IsZero() {
		c.Address = &addr
	}
	return c
}

// GormContactStorage реализует ports.ContactStorage с использованием GORM
type GormContactStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormContactStorage(db *gorm.DB, logger *slog.Logger) *GormContactStorage {
	return &GormContactStorage{db: db, logger: logger}
}

func (s *GormContactStorage) CreateContact(ctx context.Context, contact *domain.Contact) error {
	if contact.ID == "" {
		contact.ID = domain.NewID()
	}
	m := contactToModel(contact)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		s.logger.Error("failed to create contact with GORM", "owner", contact.Owner, "error", err)
		return fmt.Errorf("ошибка при сохранении контакта с GORM: %w", classify(err))
	}
	s.logger.Info("contact saved successfully", "contact_id", contact.ID, "owner", contact.Owner)
	return nil
}

func (s *GormContactStorage) GetContactByID(ctx context.Context, id domain.ID) (*domain.Contact, error) {
	var m contactModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении контакта %s с GORM: %w", id, classify(err))
	}
	c := m.toDomain()
	return &c, nil
}

func (s *GormContactStorage) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return s.find(s.db.WithContext(ctx))
}

func (s *GormContactStorage) ListContactsByOwner(ctx context.Context, owner domain.ID) ([]domain.Contact, error) {
	return s.find(s.db.WithContext(ctx).Where("user_id = ?", owner.String()))
}

func (s *GormContactStorage) UpdateContact(ctx context.Context, contact *domain.Contact) error {
	m := contactToModel(contact)
	res := s.db.WithContext(ctx).Model(&contactModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":            m.Name,
		"email":           m.Email,
		"phone":           m.Phone,
		"type":            m.Type,
		"avatar":          m.Avatar,
		"address_street":  m.AddressStreet,
		"address_city":    m.AddressCity,
		"address_zip":     m.AddressZip,
		"address_country": m.AddressCountry,
		"notes":           m.Notes,
	})
	if res.Error != nil {
		s.logger.Error("failed to update contact with GORM", "contact_id", contact.ID, "error", res.Error)
		return fmt.Errorf("ошибка при обновлении контакта %s с GORM: %w", contact.ID, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: контакт %s", domain.ErrNotFound, contact.ID)
	}
	return nil
}

func (s *GormContactStorage) DeleteContact(ctx context.Context, id domain.ID) error {
	res := s.db.WithContext(ctx).Delete(&contactModel{}, "id = ?", id.String())
	if res.Error != nil {
		return fmt.Errorf("ошибка при удалении контакта %s с GORM: %w", id, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: контакт %s", domain.ErrNotFound, id)
	}
	s.logger.Info("contact deleted", "contact_id", id)
	return nil
}

func (s *GormContactStorage) find(q *gorm.DB) ([]domain.Contact, error) {
	var models []contactModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении списка контактов с GORM: %w", classify(err))
	}
	contacts := make([]domain.Contact, 0, len(models))
	for _, m := range models {
		contacts = append(contacts, m.toDomain())
	}
	return contacts, nil
}
