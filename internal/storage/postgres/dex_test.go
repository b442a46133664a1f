package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/storage/postgres"
	"github.com/cory-johannsen/battlesim/internal/testutil"
)

func newDB(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc
}

func TestDexRepository_ImportAndLoad(t *testing.T) {
	pc := newDB(t)
	ctx := context.Background()
	repo := postgres.NewDexRepository(pc.RawPool)

	d, err := dex.LoadDirectory("../../../content/dex")
	require.NoError(t, err)

	species, moves, err := repo.Import(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, len(d.AllSpecies()), species)
	assert.Equal(t, len(d.AllMoves()), moves)

	// A second import upserts rather than failing on the primary keys.
	_, _, err = repo.Import(ctx, d)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.AllSpecies(), loaded.AllSpecies())
	require.Len(t, loaded.AllMoves(), len(d.AllMoves()))
	for _, want := range d.AllMoves() {
		got, err := loaded.Move(want.ID)
		require.NoError(t, err)
		wantMove, err := want.Move()
		require.NoError(t, err)
		gotMove, err := got.Move()
		require.NoError(t, err)
		assert.Equal(t, wantMove, gotMove, want.ID)
	}
}

func TestDexRepository_SpeciesLookup(t *testing.T) {
	pc := newDB(t)
	ctx := context.Background()
	repo := postgres.NewDexRepository(pc.RawPool)

	sp := &dex.Species{
		ID: "pikachu", Name: "Pikachu", Types: []string{"Electric"},
		BaseStats: dex.BaseStats{HP: 35, Atk: 55, Def: 40, SpA: 50, SpD: 50, Spe: 90},
		Abilities: []string{"Static"},
	}
	require.NoError(t, repo.SaveSpecies(ctx, sp))

	got, err := repo.Species(ctx, "Pikachu")
	require.NoError(t, err)
	assert.Equal(t, sp.BaseStats, got.BaseStats)
	assert.Equal(t, []string{"Electric"}, got.Types)
	assert.Empty(t, got.Learnset)

	_, err = repo.Species(ctx, "missingno")
	assert.ErrorIs(t, err, postgres.ErrSpeciesNotFound)
}

func TestDexRepository_SaveMoveRoundTripsOptionalFields(t *testing.T) {
	pc := newDB(t)
	ctx := context.Background()
	repo := postgres.NewDexRepository(pc.RawPool)

	acc := 100
	m := &dex.MoveDef{
		ID: "flamethrower", Name: "Flamethrower", Type: "Fire", Category: "special",
		Power: 90, Accuracy: &acc, Target: "normal", PP: 15,
		Secondary: &dex.SecondaryDef{Chance: 10, Status: "brn"},
	}
	require.NoError(t, repo.SaveMove(ctx, m))
	sd := &dex.MoveDef{ID: "swordsdance", Name: "Swords Dance", Type: "Normal", Category: "status",
		Target: "self", PP: 20, Boosts: map[string]int{"atk": 2}}
	require.NoError(t, repo.SaveMove(ctx, sd))

	d, err := repo.Load(ctx)
	require.NoError(t, err)
	got, err := d.Move("flamethrower")
	require.NoError(t, err)
	require.NotNil(t, got.Accuracy)
	assert.Equal(t, 100, *got.Accuracy)
	assert.Equal(t, &dex.SecondaryDef{Chance: 10, Status: "brn"}, got.Secondary)
	assert.Nil(t, got.Recoil)

	got, err = d.Move("swordsdance")
	require.NoError(t, err)
	assert.Nil(t, got.Accuracy)
	assert.Equal(t, map[string]int{"atk": 2}, got.Boosts)
}

func TestBattleLogRepository_SaveAndGet(t *testing.T) {
	pc := newDB(t)
	ctx := context.Background()
	repo := postgres.NewBattleLogRepository(pc.RawPool)

	saved, err := repo.Save(ctx, postgres.BattleLog{
		Format: "gen9customgame", Winner: "Alice", Turns: 7,
		Lines: []string{"|start", "|turn|1", "|win|Alice"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Lines, got.Lines)
	assert.Equal(t, "Alice", got.Winner)
	assert.Equal(t, 7, got.Turns)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, postgres.ErrBattleLogNotFound)
}
