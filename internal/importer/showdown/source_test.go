package showdown_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/battlesim/internal/importer/showdown"
)

const pokedexJSON = `{
  "pikachu": {"num": 25, "name": "Pikachu", "types": ["Electric"],
    "baseStats": {"hp": 35, "atk": 55, "def": 40, "spa": 50, "spd": 50, "spe": 90},
    "abilities": {"0": "Static", "H": "Lightning Rod"}},
  "charizardmegax": {"num": 6, "name": "Charizard-Mega-X", "types": ["Fire", "Dragon"],
    "baseStats": {"hp": 78, "atk": 130, "def": 111, "spa": 130, "spd": 85, "spe": 100},
    "abilities": {"0": "Tough Claws"}, "battleOnly": "Charizard"},
  "syclant": {"num": -1, "name": "Syclant", "types": ["Ice", "Bug"],
    "baseStats": {"hp": 70, "atk": 116, "def": 70, "spa": 114, "spd": 64, "spe": 121},
    "abilities": {"0": "Compound Eyes"}, "isNonstandard": "CAP"}
}`

const movesJSON = `{
  "thunderbolt": {"num": 85, "accuracy": 100, "basePower": 90, "category": "Special",
    "name": "Thunderbolt", "pp": 15, "priority": 0, "target": "normal", "type": "Electric",
    "secondary": {"chance": 10, "status": "par"}},
  "swift": {"num": 129, "accuracy": true, "basePower": 60, "category": "Special",
    "name": "Swift", "pp": 20, "priority": 0, "target": "allAdjacentFoes", "type": "Normal",
    "secondary": null},
  "closecombat": {"num": 370, "accuracy": 100, "basePower": 120, "category": "Physical",
    "name": "Close Combat", "pp": 5, "priority": 0, "target": "normal", "type": "Fighting",
    "self": {"boosts": {"def": -1, "spd": -1}}, "secondary": null},
  "raindance": {"num": 240, "accuracy": true, "basePower": 0, "category": "Status",
    "name": "Rain Dance", "pp": 5, "priority": 0, "target": "all", "type": "Water",
    "weather": "RainDance", "secondary": null},
  "gigavolthavoc": {"num": 625, "accuracy": true, "basePower": 1, "category": "Physical",
    "name": "Gigavolt Havoc", "pp": 1, "target": "normal", "type": "Electric", "isZ": "electriumz"},
  "drainpunch": {"num": 409, "accuracy": 100, "basePower": 75, "category": "Physical",
    "name": "Drain Punch", "pp": 10, "target": "normal", "type": "Fighting", "drain": [1, 2]}
}`

const learnsetsJSON = `{
  "pikachu": {"learnset": {"thunderbolt": ["9M", "8M"], "swift": ["8M"], "raindance": ["9M"]}}
}`

func writeSource(t *testing.T, learnsets bool) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(showdown.PokedexFile, pokedexJSON)
	write(showdown.MovesFile, movesJSON)
	if learnsets {
		write(showdown.LearnsetsFile, learnsetsJSON)
	}
	return dir
}

func TestParsePokedex_SkipsNonstandardAndBattleOnly(t *testing.T) {
	species := showdown.ParsePokedex(gjson.Parse(pokedexJSON))
	require.Len(t, species, 1)
	sp := species[0]
	assert.Equal(t, "pikachu", sp.ID)
	assert.Equal(t, []string{"Electric"}, sp.Types)
	assert.Equal(t, 90, sp.BaseStats.Spe)
	assert.Equal(t, []string{"Static", "Lightning Rod"}, sp.Abilities)
}

func TestParseMoves_Fields(t *testing.T) {
	byID := map[string]int{}
	moves := showdown.ParseMoves(gjson.Parse(movesJSON))
	for i, m := range moves {
		byID[m.ID] = i
	}
	assert.NotContains(t, byID, "gigavolthavoc")
	require.Len(t, moves, 5)

	tb := moves[byID["thunderbolt"]]
	assert.Equal(t, "special", tb.Category)
	require.NotNil(t, tb.Accuracy)
	assert.Equal(t, 100, *tb.Accuracy)
	require.NotNil(t, tb.Secondary)
	assert.Equal(t, 10, tb.Secondary.Chance)
	assert.Equal(t, "par", tb.Secondary.Status)

	assert.Nil(t, moves[byID["swift"]].Accuracy)
	assert.Nil(t, moves[byID["swift"]].Secondary)

	cc := moves[byID["closecombat"]]
	require.NotNil(t, cc.Secondary)
	assert.Equal(t, 100, cc.Secondary.Chance)
	assert.Equal(t, map[string]int{"def": -1, "spd": -1}, cc.Secondary.SelfBoosts)

	assert.Equal(t, "raindance", moves[byID["raindance"]].Weather)
	assert.Equal(t, []int{1, 2}, moves[byID["drainpunch"]].Drain)
}

func TestParseLearnsets_Generation(t *testing.T) {
	doc := gjson.Parse(learnsetsJSON)
	assert.Equal(t, []string{"raindance", "swift", "thunderbolt"}, showdown.ParseLearnsets(doc, 0)["pikachu"])
	assert.Equal(t, []string{"raindance", "thunderbolt"}, showdown.ParseLearnsets(doc, 9)["pikachu"])
	assert.Empty(t, showdown.ParseLearnsets(doc, 1))
}

func TestSource_Load(t *testing.T) {
	data, err := showdown.NewSource(9).Load(writeSource(t, true))
	require.NoError(t, err)
	require.Len(t, data.Species, 1)
	assert.Equal(t, []string{"raindance", "thunderbolt"}, data.Species[0].Learnset)
	assert.Len(t, data.Moves, 5)
}

func TestSource_Load_WithoutLearnsets(t *testing.T) {
	data, err := showdown.NewSource(0).Load(writeSource(t, false))
	require.NoError(t, err)
	require.Len(t, data.Species, 1)
	assert.Empty(t, data.Species[0].Learnset)
}

func TestSource_Load_Errors(t *testing.T) {
	_, err := showdown.NewSource(0).Load(t.TempDir())
	assert.ErrorContains(t, err, showdown.PokedexFile)

	dir := writeSource(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(dir, showdown.MovesFile), []byte("{broken"), 0o644))
	_, err = showdown.NewSource(0).Load(dir)
	assert.ErrorContains(t, err, "invalid JSON")

	require.NoError(t, os.WriteFile(filepath.Join(dir, showdown.MovesFile), []byte("[]"), 0o644))
	_, err = showdown.NewSource(0).Load(dir)
	assert.ErrorContains(t, err, "must be an object")
}
