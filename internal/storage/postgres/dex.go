package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/protocol"
)

// ErrSpeciesNotFound is returned when a species lookup yields no results.
var ErrSpeciesNotFound = errors.New("species not found")

// DexRepository persists species and move definitions.
type DexRepository struct {
	db *pgxpool.Pool
}

// NewDexRepository creates a DexRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewDexRepository(db *pgxpool.Pool) *DexRepository {
	return &DexRepository{db: db}
}

const upsertSpecies = `
	INSERT INTO species (id, name, types, hp, atk, def, spa, spd, spe, abilities, learnset)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, types = EXCLUDED.types,
		hp = EXCLUDED.hp, atk = EXCLUDED.atk, def = EXCLUDED.def,
		spa = EXCLUDED.spa, spd = EXCLUDED.spd, spe = EXCLUDED.spe,
		abilities = EXCLUDED.abilities, learnset = EXCLUDED.learnset`

const upsertMove = `
	INSERT INTO moves (id, name, type, category, power, accuracy, priority, target, pp,
		boosts, status, weather, side_condition, secondary, recoil, drain)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, type = EXCLUDED.type, category = EXCLUDED.category,
		power = EXCLUDED.power, accuracy = EXCLUDED.accuracy, priority = EXCLUDED.priority,
		target = EXCLUDED.target, pp = EXCLUDED.pp, boosts = EXCLUDED.boosts,
		status = EXCLUDED.status, weather = EXCLUDED.weather,
		side_condition = EXCLUDED.side_condition, secondary = EXCLUDED.secondary,
		recoil = EXCLUDED.recoil, drain = EXCLUDED.drain`

func speciesArgs(sp *dex.Species) []any {
	b := sp.BaseStats
	return []any{sp.ID, sp.Name, nonNil(sp.Types), b.HP, b.Atk, b.Def, b.SpA, b.SpD, b.Spe,
		nonNil(sp.Abilities), nonNil(sp.Learnset)}
}

func moveArgs(m *dex.MoveDef) []any {
	var boosts any
	if len(m.Boosts) > 0 {
		boosts = m.Boosts
	}
	var secondary any
	if m.Secondary != nil {
		secondary = m.Secondary
	}
	return []any{m.ID, m.Name, m.Type, m.Category, m.Power, m.Accuracy, m.Priority, m.Target, m.PP,
		boosts, m.Status, m.Weather, m.SideCondition, secondary, m.Recoil, m.Drain}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// SaveSpecies inserts or replaces one species.
//
// Precondition: sp has passed dex validation.
func (r *DexRepository) SaveSpecies(ctx context.Context, sp *dex.Species) error {
	if _, err := r.db.Exec(ctx, upsertSpecies, speciesArgs(sp)...); err != nil {
		return fmt.Errorf("saving species %s: %w", sp.ID, err)
	}
	return nil
}

// SaveMove inserts or replaces one move.
func (r *DexRepository) SaveMove(ctx context.Context, m *dex.MoveDef) error {
	if _, err := r.db.Exec(ctx, upsertMove, moveArgs(m)...); err != nil {
		return fmt.Errorf("saving move %s: %w", m.ID, err)
	}
	return nil
}

// Import writes every species and move of d in a single transaction.
//
// Postcondition: either all rows are written or none are.
func (r *DexRepository) Import(ctx context.Context, d *dex.Dex) (species, moves int, err error) {
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, m := range d.AllMoves() {
			if _, err := tx.Exec(ctx, upsertMove, moveArgs(m)...); err != nil {
				return fmt.Errorf("saving move %s: %w", m.ID, err)
			}
			moves++
		}
		for _, sp := range d.AllSpecies() {
			if _, err := tx.Exec(ctx, upsertSpecies, speciesArgs(sp)...); err != nil {
				return fmt.Errorf("saving species %s: %w", sp.ID, err)
			}
			species++
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("importing dex: %w", err)
	}
	return species, moves, nil
}

const selectSpecies = `SELECT id, name, types, hp, atk, def, spa, spd, spe, abilities, learnset FROM species`

func scanSpecies(row pgx.Row) (*dex.Species, error) {
	var sp dex.Species
	b := &sp.BaseStats
	err := row.Scan(&sp.ID, &sp.Name, &sp.Types, &b.HP, &b.Atk, &b.Def, &b.SpA, &b.SpD, &b.Spe,
		&sp.Abilities, &sp.Learnset)
	return &sp, err
}

// Species returns the species with the given name or ID.
//
// Postcondition: Returns ErrSpeciesNotFound if no row matches.
func (r *DexRepository) Species(ctx context.Context, name string) (*dex.Species, error) {
	sp, err := scanSpecies(r.db.QueryRow(ctx, selectSpecies+` WHERE id = $1`, protocol.ToID(name)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSpeciesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading species %s: %w", name, err)
	}
	return sp, nil
}

// Load reads every stored move and species into a new Dex.
func (r *DexRepository) Load(ctx context.Context) (*dex.Dex, error) {
	d := dex.New()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, type, category, power, accuracy, priority, target, pp,
			boosts, status, weather, side_condition, secondary, recoil, drain
		FROM moves ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying moves: %w", err)
	}
	moves, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*dex.MoveDef, error) {
		var m dex.MoveDef
		err := row.Scan(&m.ID, &m.Name, &m.Type, &m.Category, &m.Power, &m.Accuracy, &m.Priority,
			&m.Target, &m.PP, &m.Boosts, &m.Status, &m.Weather, &m.SideCondition, &m.Secondary,
			&m.Recoil, &m.Drain)
		return &m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning moves: %w", err)
	}
	for _, m := range moves {
		if err := d.AddMove(m); err != nil {
			return nil, fmt.Errorf("stored move %s: %w", m.ID, err)
		}
	}

	rows, err = r.db.Query(ctx, selectSpecies+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying species: %w", err)
	}
	species, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*dex.Species, error) {
		return scanSpecies(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning species: %w", err)
	}
	for _, sp := range species {
		if err := d.AddSpecies(sp); err != nil {
			return nil, fmt.Errorf("stored species %s: %w", sp.ID, err)
		}
	}
	return d, nil
}
