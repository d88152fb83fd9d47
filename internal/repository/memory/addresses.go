package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ereignis/ereignis-api/internal/domain"
)

// AddressStore is the in-process counterpart of the addresses table.
type AddressStore struct {
	mu       sync.RWMutex
	byID     map[int64]domain.Address
	sequence int64
	clock    stamps
}

func NewAddressStore(now Clock) *AddressStore {
	if now == nil {
		now = time.Now
	}
	return &AddressStore{byID: make(map[int64]domain.Address), clock: stamps{now: now}}
}

func (s *AddressStore) Insert(_ context.Context, address *domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	now := s.clock.next()
	address.ID = s.sequence
	address.CreatedAt = now
	address.UpdatedAt = now
	s.byID[address.ID] = *address
	return nil
}

func (s *AddressStore) FindByID(_ context.Context, id int64) (*domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (s *AddressStore) Update(_ context.Context, id int64, input domain.AddressInput) (*domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	row.Country = input.Country
	row.State = input.State
	row.City = input.City
	row.Street = input.Street
	row.Zip = input.Zip
	row.ExteriorNumber = input.ExteriorNumber
	row.InteriorNumber = input.InteriorNumber
	row.UpdatedAt = s.clock.reading()
	s.byID[id] = row
	return &row, nil
}

func (s *AddressStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *AddressStore) List(_ context.Context, page domain.PageRequest) ([]domain.Address, error) {
	s.mu.RLock()
	rows := make([]domain.Address, 0, len(s.byID))
	for _, row := range s.byID {
		if page.Before != nil && !row.CreatedAt.Before(*page.Before) {
			continue
		}
		rows = append(rows, row)
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
