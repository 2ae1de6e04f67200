// Package store defines the player persistence façade (component D) and
// its two implementations: an in-memory store for tests, and a
// pgx/pgxpool-backed Postgres store for production, matching the teacher's
// internal/db package shape.
package store

import (
	"context"
	"errors"

	"github.com/tankwars/server/internal/model"
)

// ErrIDCollision is returned by Insert when the player's id already exists.
var ErrIDCollision = errors.New("store: player id already exists")

// ErrNotFound is returned when a lookup finds no matching record.
var ErrNotFound = errors.New("store: player not found")

// ErrNicknameTaken is returned by ClaimNickname when another player already
// holds the requested nickname.
var ErrNicknameTaken = errors.New("store: nickname already taken")

// ErrNicknameAlreadySet is returned by ClaimNickname when the player
// already has a nickname assigned.
var ErrNicknameAlreadySet = errors.New("store: player already has a nickname")

// Store is the player persistence façade. It is the sole collaborator
// through which the rest of the server reads and writes Player records;
// per spec.md §1 its concrete backing (relational store) is an external
// collaborator behind this interface.
type Store interface {
	LookupByID(ctx context.Context, id int64) (model.Player, error)
	LookupByNickname(ctx context.Context, nickname string) (model.Player, error)
	MachineIDMatches(ctx context.Context, id int64, osID string) (bool, error)
	Insert(ctx context.Context, p model.Player) error
	Update(ctx context.Context, p model.Player) error

	// ClaimNickname atomically assigns nickname to the player with id,
	// succeeding only if nickname is free and the player has none yet.
	// This closes the check-then-set race spec.md's Open Questions flags
	// in the original implementation.
	ClaimNickname(ctx context.Context, id int64, nickname string) error
}
