package dex_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

const contentDir = "../../../content/dex"

func loadContent(t testing.TB) *dex.Dex {
	t.Helper()
	d, err := dex.LoadDirectory(contentDir)
	require.NoError(t, err)
	return d
}

func TestLoadDirectory_ShippedContent(t *testing.T) {
	d := loadContent(t)
	assert.GreaterOrEqual(t, len(d.AllSpecies()), 12)

	sp, err := d.Species("Charizard")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fire", "Flying"}, sp.Types)

	m, err := d.Move("Will-O-Wisp")
	require.NoError(t, err)
	mv, err := m.Move()
	require.NoError(t, err)
	assert.Equal(t, battle.StatusBurn, mv.Status)
	assert.Equal(t, 85, mv.Accuracy)

	// Every learnset entry resolves.
	for _, sp := range d.AllSpecies() {
		for _, id := range sp.Learnset {
			_, err := d.Move(id)
			assert.NoError(t, err, "%s learnset", sp.ID)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	d := loadContent(t)
	_, err := d.Species("missingno")
	assert.ErrorIs(t, err, dex.ErrUnknownSpecies)
	_, err = d.Move("splash")
	assert.ErrorIs(t, err, dex.ErrUnknownMove)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	d := dex.New()
	err := d.Load(strings.NewReader("moves:\n  - {id: tackle, type: Normal, category: physical, powr: 40}\n"))
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"bad type":      "species:\n  - {id: x, types: [Plastic], base_stats: {hp: 1, atk: 1, def: 1, spa: 1, spd: 1, spe: 1}}\n",
		"three types":   "species:\n  - {id: x, types: [Fire, Water, Grass], base_stats: {hp: 1, atk: 1, def: 1, spa: 1, spd: 1, spe: 1}}\n",
		"zero stat":     "species:\n  - {id: x, types: [Fire], base_stats: {hp: 0, atk: 1, def: 1, spa: 1, spd: 1, spe: 1}}\n",
		"bad category":  "moves:\n  - {id: x, type: Fire, category: magic}\n",
		"bad status":    "moves:\n  - {id: x, type: Fire, category: status, status: zzz}\n",
		"bad boost":     "moves:\n  - {id: x, type: Fire, category: status, boosts: {luck: 1}}\n",
		"bad recoil":    "moves:\n  - {id: x, type: Fire, category: physical, recoil: [1]}\n",
		"no identifier": "moves:\n  - {type: Fire, category: physical}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, dex.New().Load(strings.NewReader(doc)))
		})
	}
}

func TestLoadDirectory_MultipleDocumentsAndFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(`
species:
  - {name: "Flabébé", types: [Fairy], base_stats: {hp: 44, atk: 38, def: 39, spa: 61, spd: 79, spe: 42}}
---
moves:
  - {name: "Fairy Wind", type: Fairy, category: special, power: 40, accuracy: 100, pp: 30}
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	d, err := dex.LoadDirectory(dir)
	require.NoError(t, err)
	_, err = d.Species("flabebe")
	assert.NoError(t, err)
	m, err := d.Move("fairywind")
	require.NoError(t, err)
	assert.Equal(t, "fairywind", m.ID)
}

func TestMove_Conversion(t *testing.T) {
	d := loadContent(t)
	def, err := d.Move("closecombat")
	require.NoError(t, err)
	m, err := def.Move()
	require.NoError(t, err)
	assert.Equal(t, battle.Physical, m.Category)
	assert.Equal(t, 5, m.PP)
	assert.Equal(t, 5, m.MaxPP)
	require.NotNil(t, m.Secondary)
	assert.Equal(t, 100, m.Secondary.Chance)
	assert.Equal(t, []battle.BoostDelta{{Stat: battle.StatDef, Delta: -1}, {Stat: battle.StatSpD, Delta: -1}}, m.Secondary.SelfBoosts)

	def, err = d.Move("swordsdance")
	require.NoError(t, err)
	m, err = def.Move()
	require.NoError(t, err)
	assert.Equal(t, battle.AlwaysHits, m.Accuracy)
	assert.True(t, m.TargetsSelf())

	def, err = d.Move("doubleedge")
	require.NoError(t, err)
	m, err = def.Move()
	require.NoError(t, err)
	assert.Equal(t, [2]int{33, 100}, m.Recoil)
}

func TestNewPokemon_DerivesStats(t *testing.T) {
	d := loadContent(t)
	p, err := d.NewPokemon(dex.Set{Species: "garchomp", Moves: []string{"earthquake", "dragonclaw"}}, 50)
	require.NoError(t, err)
	assert.Equal(t, "Garchomp", p.Name)
	assert.Equal(t, "Rough Skin", p.Ability)
	// HP: (216+31)*50/100 + 50 + 10 = 183; Atk: (260+31)*50/100 + 5 = 150.
	assert.Equal(t, 183, p.MaxHP)
	assert.Equal(t, 183, p.HP)
	assert.Equal(t, 150, p.Stats[battle.StatAtk])
	assert.Len(t, p.Moves, 2)
	assert.Equal(t, 10, p.Moves[0].PP)
}

func TestNewPokemon_Errors(t *testing.T) {
	d := loadContent(t)
	_, err := d.NewPokemon(dex.Set{Species: "nobody", Moves: []string{"tackle"}}, 50)
	assert.ErrorIs(t, err, dex.ErrUnknownSpecies)
	_, err = d.NewPokemon(dex.Set{Species: "snorlax", Moves: []string{"splash"}}, 50)
	assert.ErrorIs(t, err, dex.ErrUnknownMove)
	_, err = d.NewPokemon(dex.Set{Species: "snorlax"}, 50)
	assert.Error(t, err)
	_, err = d.NewPokemon(dex.Set{Species: "snorlax", Moves: []string{"tackle"}}, 101)
	assert.Error(t, err)
}

func TestExportTeam(t *testing.T) {
	d := loadContent(t)
	got := d.ExportTeam([]dex.Set{
		{Name: "Lax", Species: "snorlax", Item: "Leftovers", Ability: "Thick Fat", Level: 50, Moves: []string{"bodyslam", "curse"}},
		{Species: "pikachu", Moves: []string{"thunderbolt"}},
	})
	want := "Lax (Snorlax) @ Leftovers\nAbility: Thick Fat\nLevel: 50\n- Body Slam\n- Curse\n\n" +
		"Pikachu\n- Thunderbolt\n\n"
	assert.Equal(t, want, got)
}

func TestProperty_RandomTeamsAreValid(t *testing.T) {
	d := loadContent(t)
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		size := rapid.IntRange(1, battle.MaxTeamSize).Draw(rt, "size")
		roller := dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())

		team, err := d.RandomTeam(roller, size, 50)
		if err != nil {
			rt.Fatal(err)
		}
		if len(team) != size {
			rt.Fatalf("got %d members, want %d", len(team), size)
		}
		seen := map[string]bool{}
		for _, p := range team {
			if seen[p.Species] {
				rt.Fatalf("duplicate species %s", p.Species)
			}
			seen[p.Species] = true
			if len(p.Moves) == 0 || len(p.Moves) > dex.MaxMoves {
				rt.Fatalf("%s has %d moves", p.Species, len(p.Moves))
			}
			if p.HP != p.MaxHP || p.MaxHP <= 0 {
				rt.Fatalf("%s hp %d/%d", p.Species, p.HP, p.MaxHP)
			}
		}
	})
}

func TestRandomSets_TooLarge(t *testing.T) {
	d := loadContent(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())
	_, err := d.RandomSets(roller, 7)
	assert.Error(t, err)
}

func TestLoadSets_ShippedTeamsBuild(t *testing.T) {
	d, err := dex.LoadDirectory(contentDir)
	require.NoError(t, err)
	for _, name := range []string{"red.yaml", "blue.yaml"} {
		sets, err := dex.LoadSets(filepath.Join("../../../content/teams", name))
		require.NoError(t, err, name)
		team, err := d.NewTeam(sets, 50)
		require.NoError(t, err, name)
		assert.Len(t, team, 3, name)
	}
}

func TestLoadSets_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	_, err := dex.LoadSets(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = dex.LoadSets(write("empty.yaml", "team: []\n"))
	assert.ErrorContains(t, err, "has 0 members")

	_, err = dex.LoadSets(write("typo.yaml", "team:\n  - specie: Pikachu\n"))
	assert.Error(t, err)

	sets, err := dex.LoadSets(write("one.yaml", "team:\n  - species: Pikachu\n    moves: [thunderbolt]\n"))
	require.NoError(t, err)
	assert.Equal(t, []dex.Set{{Species: "Pikachu", Moves: []string{"thunderbolt"}}}, sets)
}

func TestSidesSets(t *testing.T) {
	d := loadContent(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(9), zap.NewNop())

	random, err := d.SidesSets(nil, roller, 2)
	require.NoError(t, err)
	assert.Len(t, random[0], 2)
	assert.Len(t, random[1], 2)

	files, err := d.SidesSets([]string{"../../../content/teams/red.yaml", "../../../content/teams/blue.yaml"}, roller, 2)
	require.NoError(t, err)
	assert.Len(t, files[0], 3)
	assert.Len(t, files[1], 3)

	_, err = d.SidesSets([]string{"../../../content/teams/red.yaml"}, roller, 2)
	assert.ErrorContains(t, err, "want 0 or 2 team files")
}

func TestMove_SecondaryChanceDefaultsToAlways(t *testing.T) {
	def := &dex.MoveDef{ID: "nuzzle", Name: "Nuzzle", Type: "Electric", Category: "physical", Power: 20, PP: 20,
		Secondary: &dex.SecondaryDef{Status: "par"}}
	m, err := def.Move()
	require.NoError(t, err)
	require.NotNil(t, m.Secondary)
	assert.Equal(t, 100, m.Secondary.Chance)

	def.Secondary.Chance = 30
	m, err = def.Move()
	require.NoError(t, err)
	assert.Equal(t, 30, m.Secondary.Chance)

	def.Secondary.Chance = 120
	_, err = def.Move()
	assert.ErrorContains(t, err, "secondary chance 120 out of range")

	d := dex.New()
	require.NoError(t, d.Load(strings.NewReader("moves:\n  - {id: nuzzle, name: Nuzzle, type: Electric, category: physical, power: 20, pp: 20, secondary: {status: par}}\n")))
	loaded, err := d.Move("nuzzle")
	require.NoError(t, err)
	m, err = loaded.Move()
	require.NoError(t, err)
	assert.Equal(t, 100, m.Secondary.Chance)
}
