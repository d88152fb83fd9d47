// Package memory provides in-process repositories for development runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ereignis/ereignis-api/internal/domain"
)

// Clock returns the time stamped on new and updated rows.
type Clock func() time.Time

// stamps hands out creation times at the microsecond precision of timestamptz.
// Each stamp is later than the previous one, so a cursor built from a row's
// creation time never hides a sibling row.
type stamps struct {
	now  Clock
	last time.Time
}

func (c *stamps) reading() time.Time {
	return c.now().UTC().Truncate(time.Microsecond)
}

func (c *stamps) next() time.Time {
	t := c.reading()
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// UserStore keeps users in maps with the same uniqueness rules as the users table.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[int64]domain.User
	byUsername map[string]int64
	byEmail    map[string]int64
	byPhone    map[string]int64
	sequence   int64
	clock      stamps
}

// NewUserStore returns an empty store. A nil clock uses time.Now.
func NewUserStore(now Clock) *UserStore {
	if now == nil {
		now = time.Now
	}
	return &UserStore{
		byID:       make(map[int64]domain.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		byPhone:    make(map[string]int64),
		clock:      stamps{now: now},
	}
}

func (s *UserStore) Insert(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taken(user.Username, user.Email, user.Phone, 0) {
		return domain.ErrDuplicate
	}

	s.sequence++
	now := s.clock.next()
	row := *user
	row.ID = s.sequence
	row.Confirmed = user.Confirmed
	if len(row.Roles) == 0 {
		row.Roles = domain.DefaultRoles()
	}
	row.Roles = append([]domain.Role(nil), row.Roles...)
	row.CreatedAt = now
	row.UpdatedAt = now

	s.index(row)
	*user = cloneUser(row)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := cloneUser(row)
	return &u, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.byUsername[username]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *UserStore) UpdateFields(_ context.Context, id int64, fields domain.UserFields) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	next := cloneUser(row)
	if fields.Username != nil {
		next.Username = *fields.Username
	}
	if fields.Email != nil {
		next.Email = *fields.Email
	}
	if fields.Phone != nil {
		next.Phone = *fields.Phone
	}
	if fields.Confirmed != nil {
		next.Confirmed = *fields.Confirmed
	}
	if fields.Roles != nil {
		next.Roles = append([]domain.Role(nil), fields.Roles...)
	}
	if s.taken(next.Username, next.Email, next.Phone, id) {
		return nil, domain.ErrDuplicate
	}
	next.UpdatedAt = s.clock.reading()

	s.unindex(row)
	s.index(next)
	u := cloneUser(next)
	return &u, nil
}

func (s *UserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.unindex(row)
	return nil
}

func (s *UserStore) List(_ context.Context, page domain.PageRequest) ([]domain.User, error) {
	s.mu.RLock()
	rows := make([]domain.User, 0, len(s.byID))
	for _, row := range s.byID {
		if page.Before != nil && !row.CreatedAt.Before(*page.Before) {
			continue
		}
		rows = append(rows, cloneUser(row))
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if page.Limit >= 0 && len(rows) > page.Limit {
		rows = rows[:page.Limit]
	}
	return rows, nil
}

// Put stores a fully formed user as-is, for seeding fixtures.
func (s *UserStore) Put(user domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		s.sequence++
		user.ID = s.sequence
	} else if user.ID > s.sequence {
		s.sequence = user.ID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.clock.next()
		user.UpdatedAt = user.CreatedAt
	}
	if old, ok := s.byID[user.ID]; ok {
		s.unindex(old)
	}
	s.index(cloneUser(user))
	return cloneUser(user)
}

func (s *UserStore) taken(username, email, phone string, except int64) bool {
	if id, ok := s.byUsername[username]; ok && id != except {
		return true
	}
	if id, ok := s.byEmail[email]; ok && id != except {
		return true
	}
	if id, ok := s.byPhone[phone]; ok && id != except {
		return true
	}
	return false
}

func (s *UserStore) index(row domain.User) {
	s.byID[row.ID] = row
	s.byUsername[row.Username] = row.ID
	s.byEmail[row.Email] = row.ID
	s.byPhone[row.Phone] = row.ID
}

func (s *UserStore) unindex(row domain.User) {
	delete(s.byID, row.ID)
	delete(s.byUsername, row.Username)
	delete(s.byEmail, row.Email)
	delete(s.byPhone, row.Phone)
}

func cloneUser(u domain.User) domain.User {
	u.Roles = append([]domain.Role(nil), u.Roles...)
	return u
}
