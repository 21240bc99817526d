// Package memory: хранилище в памяти процесса (DB_DRIVER=memory).
// Используется для локального запуска без PostgreSQL и в тестах.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GoArmGo/contactbook/internal/domain"
)

// Store реализует ports.UserStorage, ports.ContactStorage и ports.Pinger.
type Store struct {
	mu       sync.RWMutex
	users    map[domain.ID]domain.User
	contacts map[domain.ID]domain.Contact
	down     error
}

func NewStore() *Store {
	return &Store{
		users:    make(map[domain.ID]domain.User),
		contacts: make(map[domain.ID]domain.Contact),
	}
}

// SetUnavailable заставляет все операции возвращать domain.ErrUnavailable
// (false возвращает хранилище в рабочее состояние).
func (s *Store) SetUnavailable(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if down {
		s.down = fmt.Errorf("%w: хранилище в памяти отключено", domain.ErrUnavailable)
	} else {
		s.down = nil
	}
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.down
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down != nil {
		return s.down
	}

	if user.ID == "" {
		user.ID = domain.NewID()
	}
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("%w: пользователь %s уже существует", domain.ErrConflict, user.ID)
	}
	if s.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("%w: email %s уже используется", domain.ErrConflict, user.Email)
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.down != nil {
		return nil, s.down
	}

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: пользователь %s", domain.ErrNotFound, id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.down != nil {
		return nil, s.down
	}

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: пользователь с email %s", domain.ErrNotFound, email)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.down != nil {
		return nil, s.down
	}

	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down != nil {
		return s.down
	}

	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("%w: пользователь %s", domain.ErrNotFound, user.ID)
	}
	if s.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("%w: email %s уже используется", domain.ErrConflict, user.Email)
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down != nil {
		return s.down
	}

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("%w: пользователь %s", domain.ErrNotFound, id)
	}
	delete(s.users, id)
	for cid, c := range s.contacts {
		if c.Owner.Equal(id) {
			delete(s.contacts, cid)
		}
	}
	return nil
}

func (s *Store) CreateContact(ctx context.Context, contact *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down != nil {
		return s.down
	}

	if contact.ID == "" {
		contact.ID = domain.NewID()
	}
	if _, ok := s.users[contact.Owner]; !ok {
		return fmt.Errorf("%w: владелец %s не существует", domain.ErrNotFound, contact.Owner)
	}
	s.contacts[contact.ID] = cloneContact(*contact)
	return nil
}

func (s *Store) GetContactByID(ctx context.Context, id domain.ID) (*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.down != nil {
		return nil, s.down
	}

	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: контакт %s", domain.ErrNotFound, id)
	}
	c = cloneContact(c)
	return &c, nil
}

func (s *Store) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return s.listContacts(func(domain.Contact) bool { return true })
}

func (s *Store) ListContactsByOwner(ctx context.Context, owner domain.ID) ([]domain.Contact, error) {
	return s.listContacts(func(c domain.Contact) bool { return c.Owner.Equal(owner) })
}

func (s *Store) UpdateContact(ctx context.Context, contact *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down != nil {
		return s.down
	}

	if _, ok := s.contacts[contact.ID]; !ok {
		return fmt.Errorf("%w: контакт %s", domain.ErrNotFound, contact.ID)
	}
	s.contacts[contact.ID] = cloneContact(*contact)
	return nil
}

func (s *Store) DeleteContact(ctx context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down != nil {
		return s.down
	}

	if _, ok := s.contacts[id]; !ok {
		return fmt.Errorf("%w: контакт %s", domain.ErrNotFound, id)
	}
	delete(s.contacts, id)
	return nil
}

func (s *Store) listContacts(keep func(domain.Contact) bool) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.down != nil {
		return nil, s.down
	}

	contacts := make([]domain.Contact, 0)
	for _, c := range s.contacts {
		if keep(c) {
			contacts = append(contacts, cloneContact(c))
		}
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].CreatedAt.After(contacts[j].CreatedAt) })
	return contacts, nil
}

// emailTaken вызывается под блокировкой.
func (s *Store) emailTaken(email string, except domain.ID) bool {
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// cloneContact копирует указатели, чтобы вызывающий не менял данные хранилища.
func cloneContact(c domain.Contact) domain.Contact {
	if c.Avatar != nil {
		a := *c.Avatar
		c.Avatar = &a
	}
	if c.Address != nil {
		addr := *c.Address
		c.Address = &addr
	}
	return c
}
