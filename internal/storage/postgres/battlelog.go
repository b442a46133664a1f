package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrBattleLogNotFound is returned when a battle log lookup yields no results.
var ErrBattleLogNotFound = errors.New("battle log not found")

// BattleLog is one recorded battle: its outcome and protocol lines.
type BattleLog struct {
	ID        uuid.UUID
	Format    string
	Winner    string
	Tie       bool
	Turns     int
	Truncated bool
	Lines     []string
	CreatedAt time.Time
}

// BattleLogRepository stores recorded protocol logs for later replay.
type BattleLogRepository struct {
	db *pgxpool.Pool
}

// NewBattleLogRepository creates a BattleLogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleLogRepository(db *pgxpool.Pool) *BattleLogRepository {
	return &BattleLogRepository{db: db}
}

// Save inserts log. A zero ID is replaced with a new random one.
//
// Postcondition: Returns the stored log with ID and CreatedAt set.
func (r *BattleLogRepository) Save(ctx context.Context, log BattleLog) (BattleLog, error) {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Lines == nil {
		log.Lines = []string{}
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO battle_logs (id, format, winner, tie, turns, truncated, lines)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		log.ID, log.Format, log.Winner, log.Tie, log.Turns, log.Truncated, log.Lines,
	).Scan(&log.CreatedAt)
	if err != nil {
		return BattleLog{}, fmt.Errorf("saving battle log %s: %w", log.ID, err)
	}
	return log, nil
}

// Get returns the log with the given ID.
//
// Postcondition: Returns ErrBattleLogNotFound if no row matches.
func (r *BattleLogRepository) Get(ctx context.Context, id uuid.UUID) (BattleLog, error) {
	var log BattleLog
	err := r.db.QueryRow(ctx,
		`SELECT id, format, winner, tie, turns, truncated, lines, created_at
		 FROM battle_logs WHERE id = $1`, id,
	).Scan(&log.ID, &log.Format, &log.Winner, &log.Tie, &log.Turns, &log.Truncated, &log.Lines, &log.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BattleLog{}, ErrBattleLogNotFound
	}
	if err != nil {
		return BattleLog{}, fmt.Errorf("loading battle log %s: %w", id, err)
	}
	return log, nil
}
