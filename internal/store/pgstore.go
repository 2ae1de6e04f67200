package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tankwars/server/internal/model"
)

// PGStore is the Postgres-backed Store implementation, grounded on the
// teacher's internal/db.DB: a thin wrapper around a pgxpool.Pool with one
// method per façade operation.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to Postgres and verifies connectivity.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// Pool exposes the underlying connection pool. Migrations do not use it:
// RunMigrations opens its own connection from the DSN.
func (s *PGStore) Pool() *pgxpool.Pool {
	return s.pool
}

const playerColumns = `
	id, machine_id, registered_at, last_online_at, nickname,
	battles, victories, xp, rank, accuracy, damage_dealt, damage_taken, trophies,
	coins, diamonds, daily_items_time, daily_items, tanks, friends_nicks`

func (s *PGStore) scanPlayer(row pgx.Row) (model.Player, error) {
	var p model.Player
	var nickname *string
	var tanksJSON, dailyItemsJSON []byte
	err := row.Scan(
		&p.ID, &p.MachineID, &p.RegisteredAt, &p.LastOnlineAt, &nickname,
		&p.Battles, &p.Victories, &p.XP, &p.Rank, &p.Accuracy, &p.DamageDealt, &p.DamageTaken, &p.Trophies,
		&p.Coins, &p.Diamonds, &p.DailyItemsTime, &dailyItemsJSON, &tanksJSON, &p.FriendsNicks,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, ErrNotFound
		}
		return model.Player{}, fmt.Errorf("scanning player row: %w", err)
	}
	if nickname != nil {
		p.Nickname = *nickname
	}
	if err := json.Unmarshal(tanksJSON, &p.Tanks); err != nil {
		return model.Player{}, fmt.Errorf("decoding tanks column: %w", err)
	}
	if err := json.Unmarshal(dailyItemsJSON, &p.DailyItems); err != nil {
		return model.Player{}, fmt.Errorf("decoding daily_items column: %w", err)
	}
	return p, nil
}

func (s *PGStore) LookupByID(ctx context.Context, id int64) (model.Player, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return s.scanPlayer(row)
}

func (s *PGStore) LookupByNickname(ctx context.Context, nickname string) (model.Player, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE nickname = $1`, nickname)
	return s.scanPlayer(row)
}

func (s *PGStore) MachineIDMatches(ctx context.Context, id int64, osID string) (bool, error) {
	var machineID string
	err := s.pool.QueryRow(ctx, `SELECT machine_id FROM players WHERE id = $1`, id).Scan(&machineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("querying machine id: %w", err)
	}
	return machineID == osID, nil
}

func (s *PGStore) Insert(ctx context.Context, p model.Player) error {
	tanksJSON, err := json.Marshal(p.Tanks)
	if err != nil {
		return fmt.Errorf("encoding tanks: %w", err)
	}
	dailyItemsJSON, err := json.Marshal(p.DailyItems)
	if err != nil {
		return fmt.Errorf("encoding daily items: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO players (
			id, machine_id, registered_at, last_online_at, nickname,
			battles, victories, xp, rank, accuracy, damage_dealt, damage_taken, trophies,
			coins, diamonds, daily_items_time, daily_items, tanks, friends_nicks
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		p.ID, p.MachineID, p.RegisteredAt, p.LastOnlineAt, nullIfEmpty(p.Nickname),
		p.Battles, p.Victories, p.XP, p.Rank, p.Accuracy, p.DamageDealt, p.DamageTaken, p.Trophies,
		p.Coins, p.Diamonds, p.DailyItemsTime, dailyItemsJSON, tanksJSON, p.FriendsNicks,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrIDCollision
		}
		return fmt.Errorf("inserting player %d: %w", p.ID, err)
	}
	return nil
}

func (s *PGStore) Update(ctx context.Context, p model.Player) error {
	tanksJSON, err := json.Marshal(p.Tanks)
	if err != nil {
		return fmt.Errorf("encoding tanks: %w", err)
	}
	dailyItemsJSON, err := json.Marshal(p.DailyItems)
	if err != nil {
		return fmt.Errorf("encoding daily items: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO players (
			id, machine_id, registered_at, last_online_at, nickname,
			battles, victories, xp, rank, accuracy, damage_dealt, damage_taken, trophies,
			coins, diamonds, daily_items_time, daily_items, tanks, friends_nicks
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			machine_id = EXCLUDED.machine_id,
			last_online_at = EXCLUDED.last_online_at,
			nickname = EXCLUDED.nickname,
			battles = EXCLUDED.battles,
			victories = EXCLUDED.victories,
			xp = EXCLUDED.xp,
			rank = EXCLUDED.rank,
			accuracy = EXCLUDED.accuracy,
			damage_dealt = EXCLUDED.damage_dealt,
			damage_taken = EXCLUDED.damage_taken,
			trophies = EXCLUDED.trophies,
			coins = EXCLUDED.coins,
			diamonds = EXCLUDED.diamonds,
			daily_items_time = EXCLUDED.daily_items_time,
			daily_items = EXCLUDED.daily_items,
			tanks = EXCLUDED.tanks,
			friends_nicks = EXCLUDED.friends_nicks`,
		p.ID, p.MachineID, p.RegisteredAt, p.LastOnlineAt, nullIfEmpty(p.Nickname),
		p.Battles, p.Victories, p.XP, p.Rank, p.Accuracy, p.DamageDealt, p.DamageTaken, p.Trophies,
		p.Coins, p.Diamonds, p.DailyItemsTime, dailyItemsJSON, tanksJSON, p.FriendsNicks,
	)
	if err != nil {
		return fmt.Errorf("upserting player %d: %w", p.ID, err)
	}
	return nil
}

// ClaimNickname performs the check-then-set as a single statement guarded
// by the nickname column's unique index, closing the race the original
// implementation left open (spec.md §9 Open Question: unique nickname
// race).
func (s *PGStore) ClaimNickname(ctx context.Context, id int64, nickname string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE players SET nickname = $1 WHERE id = $2 AND nickname IS NULL`,
		nickname, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrNicknameTaken
		}
		return fmt.Errorf("claiming nickname for player %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.LookupByID(ctx, id); err != nil {
			return err
		}
		return ErrNicknameAlreadySet
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
