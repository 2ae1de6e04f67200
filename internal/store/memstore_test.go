package store

import (
	"context"
	"errors"
	"testing"

	"github.com/tankwars/server/internal/model"
)

func TestMemStoreInsertAndLookup(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	p := model.Player{ID: 1, MachineID: "m-1"}
	if err := s.Insert(ctx, p); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.LookupByID(ctx, 1)
	if err != nil {
		t.Fatalf("LookupByID: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("got id %d, want 1", got.ID)
	}

	if err := s.Insert(ctx, p); !errors.Is(err, ErrIDCollision) {
		t.Errorf("second Insert error = %v, want ErrIDCollision", err)
	}
}

func TestMemStoreLookupByIDNotFound(t *testing.T) {
	s := NewMemStore()
	_, err := s.LookupByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMemStoreMachineIDMatches(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	s.Insert(ctx, model.Player{ID: 1, MachineID: "m-1"})

	ok, err := s.MachineIDMatches(ctx, 1, "m-1")
	if err != nil || !ok {
		t.Errorf("MachineIDMatches = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = s.MachineIDMatches(ctx, 1, "m-2")
	if err != nil || ok {
		t.Errorf("MachineIDMatches = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestMemStoreClaimNickname(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	s.Insert(ctx, model.Player{ID: 1})
	s.Insert(ctx, model.Player{ID: 2})

	if err := s.ClaimNickname(ctx, 1, "Hero01"); err != nil {
		t.Fatalf("ClaimNickname: %v", err)
	}

	if err := s.ClaimNickname(ctx, 2, "Hero01"); !errors.Is(err, ErrNicknameTaken) {
		t.Errorf("error = %v, want ErrNicknameTaken", err)
	}

	if err := s.ClaimNickname(ctx, 1, "Other01"); !errors.Is(err, ErrNicknameAlreadySet) {
		t.Errorf("error = %v, want ErrNicknameAlreadySet", err)
	}
}

func TestMemStoreUpdateUpsert(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	p := model.Player{ID: 1, Trophies: 10}
	if err := s.Update(ctx, p); err != nil {
		t.Fatalf("Update (insert path): %v", err)
	}
	p.Trophies = 20
	if err := s.Update(ctx, p); err != nil {
		t.Fatalf("Update (upsert path): %v", err)
	}
	got, _ := s.LookupByID(ctx, 1)
	if got.Trophies != 20 {
		t.Errorf("Trophies = %d, want 20", got.Trophies)
	}
}
