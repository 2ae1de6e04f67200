package store

import (
	"context"
	"sync"

	"github.com/tankwars/server/internal/model"
)

// MemStore is an in-memory Store implementation used by the unit test
// suite; cmd/tankserver always uses PGStore.
type MemStore struct {
	mu        sync.RWMutex
	byID      map[int64]model.Player
	nickToID  map[string]int64
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		byID:     make(map[int64]model.Player),
		nickToID: make(map[string]int64),
	}
}

func (s *MemStore) LookupByID(ctx context.Context, id int64) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return model.Player{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) LookupByNickname(ctx context.Context, nickname string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nickToID[nickname]
	if !ok {
		return model.Player{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemStore) MachineIDMatches(ctx context.Context, id int64, osID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	return p.MachineID == osID, nil
}

func (s *MemStore) Insert(ctx context.Context, p model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[p.ID]; exists {
		return ErrIDCollision
	}
	s.byID[p.ID] = p
	if p.Nickname != "" {
		s.nickToID[p.Nickname] = p.ID
	}
	return nil
}

func (s *MemStore) Update(ctx context.Context, p model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, exists := s.byID[p.ID]; exists && old.Nickname != "" && old.Nickname != p.Nickname {
		delete(s.nickToID, old.Nickname)
	}
	s.byID[p.ID] = p
	if p.Nickname != "" {
		s.nickToID[p.Nickname] = p.ID
	}
	return nil
}

func (s *MemStore) ClaimNickname(ctx context.Context, id int64, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if p.Nickname != "" {
		return ErrNicknameAlreadySet
	}
	if _, taken := s.nickToID[nickname]; taken {
		return ErrNicknameTaken
	}

	p.Nickname = nickname
	s.byID[id] = p
	s.nickToID[nickname] = id
	return nil
}
