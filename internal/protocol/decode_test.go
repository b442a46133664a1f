package protocol_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlesim/internal/protocol"
)

func TestDecode_Switch(t *testing.T) {
	ev := protocol.Decode("|switch|p2a: Garchomp|Garchomp, L78, F|250/250 par")
	sw, ok := ev.(*protocol.SwitchEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "p2", sw.Ident.Side)
	assert.Equal(t, 0, sw.Ident.Slot)
	assert.Equal(t, "Garchomp", sw.Ident.Name)
	assert.Equal(t, protocol.Details{Species: "Garchomp", Level: 78, Gender: "F"}, sw.Details)
	assert.Equal(t, protocol.Condition{HP: 250, MaxHP: 250, Status: "par"}, sw.Condition)
	assert.False(t, sw.Drag)
	assert.Equal(t, "switch", sw.Kind())
}

func TestDecode_Drag(t *testing.T) {
	ev := protocol.Decode("|drag|p1a: Pikachu|Pikachu, L50, M|100/100")
	sw, ok := ev.(*protocol.SwitchEvent)
	require.True(t, ok)
	assert.True(t, sw.Drag)
	assert.Equal(t, "drag", sw.Kind())
}

func TestDecode_DamageAndHeal(t *testing.T) {
	ev := protocol.Decode("|-damage|p1a: Pikachu|54/100|[from] Stealth Rock")
	dmg, ok := ev.(*protocol.DamageEvent)
	require.True(t, ok)
	assert.Equal(t, 54, dmg.Condition.HP)
	assert.Equal(t, 100, dmg.Condition.MaxHP)
	assert.Equal(t, "Stealth Rock", dmg.From)

	ev = protocol.Decode("|-heal|p1a: Pikachu|0 fnt")
	heal, ok := ev.(*protocol.HealEvent)
	require.True(t, ok)
	assert.True(t, heal.Condition.Fainted())
	assert.Equal(t, "fnt", heal.Condition.Status)
}

func TestDecode_BoostSigns(t *testing.T) {
	up := protocol.Decode("|-boost|p1a: Pikachu|atk|2").(*protocol.BoostEvent)
	assert.Equal(t, 2, up.Amount)
	assert.Equal(t, "-boost", up.Kind())

	down := protocol.Decode("|-unboost|p2a: Garchomp|spe|1").(*protocol.BoostEvent)
	assert.Equal(t, -1, down.Amount)
	assert.Equal(t, "spe", down.Stat)
	assert.Equal(t, "-unboost", down.Kind())
}

func TestDecode_Table(t *testing.T) {
	cases := []struct {
		line string
		want protocol.Event
	}{
		{"|player|p1|Alice|1|1500", &protocol.PlayerEvent{Side: "p1", Username: "Alice", Avatar: "1", Rating: "1500"}},
		{"|teamsize|p2|6", &protocol.TeamSizeEvent{Side: "p2", Size: 6}},
		{"|gametype|singles", &protocol.GameTypeEvent{GameType: "singles"}},
		{"|gen|9", &protocol.GenEvent{Gen: 9}},
		{"|tier|[Gen 9] Random Battle", &protocol.TierEvent{Tier: "[Gen 9] Random Battle"}},
		{"|rated", &protocol.RatedEvent{}},
		{"|rule|Sleep Clause Mod: Limit one foe put to sleep", &protocol.RuleEvent{Rule: "Sleep Clause Mod", Description: "Limit one foe put to sleep"}},
		{"|clearpoke", &protocol.ClearPokeEvent{}},
		{"|poke|p1|Pikachu, L50, M|item", &protocol.PokeEvent{Side: "p1", Details: protocol.Details{Species: "Pikachu", Level: 50, Gender: "M"}, HasItem: true}},
		{"|teampreview|6", &protocol.TeamPreviewEvent{Seconds: 6}},
		{"|start", &protocol.StartEvent{}},
		{"|turn|12", &protocol.TurnEvent{Turn: 12}},
		{"|faint|p2a: Garchomp", &protocol.FaintEvent{Ident: protocol.ParseIdent("p2a: Garchomp")}},
		{"|-status|p1a: Pikachu|par", &protocol.StatusEvent{Ident: protocol.ParseIdent("p1a: Pikachu"), Status: "par"}},
		{"|-curestatus|p1a: Pikachu|par", &protocol.CureStatusEvent{Ident: protocol.ParseIdent("p1a: Pikachu"), Status: "par"}},
		{"|-setboost|p1a: Pikachu|atk|6", &protocol.SetBoostEvent{Ident: protocol.ParseIdent("p1a: Pikachu"), Stat: "atk", Stage: 6}},
		{"|-clearallboost", &protocol.ClearAllBoostEvent{}},
		{"|-weather|RainDance|[upkeep]", &protocol.WeatherEvent{Weather: "RainDance", Upkeep: true}},
		{"|-fieldstart|move: Trick Room", &protocol.FieldStartEvent{Condition: "move: Trick Room"}},
		{"|-fieldend|move: Trick Room", &protocol.FieldEndEvent{Condition: "move: Trick Room"}},
		{"|-sidestart|p2: Bob|move: Spikes", &protocol.SideStartEvent{Side: "p2", Condition: "move: Spikes"}},
		{"|-sideend|p1: Alice|Reflect", &protocol.SideEndEvent{Side: "p1", Condition: "Reflect"}},
		{"|-end|p1a: Pikachu|Substitute", &protocol.VolatileEndEvent{Ident: protocol.ParseIdent("p1a: Pikachu"), Effect: "Substitute"}},
		{"|-ability|p2a: Gyarados|Intimidate|boost", &protocol.AbilityEvent{Ident: protocol.ParseIdent("p2a: Gyarados"), Ability: "Intimidate"}},
		{"|-enditem|p1a: Pikachu|Sitrus Berry", &protocol.ItemEvent{Ident: protocol.ParseIdent("p1a: Pikachu"), Item: "Sitrus Berry", Ended: true}},
		{"|-crit|p2a: Garchomp", &protocol.AnnotationEvent{Tag: "-crit", Target: protocol.ParseIdent("p2a: Garchomp")}},
		{"|cant|p1a: Pikachu|par", &protocol.CantEvent{Ident: protocol.ParseIdent("p1a: Pikachu"), Reason: "par"}},
		{"|upkeep", &protocol.UpkeepEvent{}},
		{"|", &protocol.MessageEvent{}},
		{"|win|Alice", &protocol.WinEvent{Winner: "Alice"}},
		{"|tie", &protocol.TieEvent{}},
		{`|request|{"wait":true}`, &protocol.RequestEvent{Raw: `{"wait":true}`}},
		{"|error|[Invalid choice] Can't move", &protocol.ErrorEvent{Message: "[Invalid choice] Can't move"}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.want, protocol.Decode(tc.line))
		})
	}
}

func TestDecode_VolatileStartWithSource(t *testing.T) {
	ev := protocol.Decode("|-start|p1a: Pikachu|move: Leech Seed|[of] p2a: Venusaur")
	vs, ok := ev.(*protocol.VolatileStartEvent)
	require.True(t, ok)
	assert.Equal(t, "move: Leech Seed", vs.Effect)
	assert.Equal(t, "p2", vs.Of.Side)
	assert.Equal(t, "Venusaur", vs.Of.Name)
}

func TestDecode_MoveTags(t *testing.T) {
	ev := protocol.Decode("|move|p1a: Pikachu|Thunderbolt|p2a: Gyarados|[miss]")
	mv, ok := ev.(*protocol.MoveEvent)
	require.True(t, ok)
	assert.Equal(t, "Thunderbolt", mv.Move)
	assert.Equal(t, "Gyarados", mv.Target.Name)
	assert.Equal(t, []string{"[miss]"}, mv.Tags)
}

func TestDecode_UnknownPreservesTokens(t *testing.T) {
	cases := map[string]string{
		"|j|☆Alice":                 "j",
		"|turn|notanumber":          "turn",
		"|-boost|p1a: Pikachu|atk":  "-boost",
		"|-damage|p1a: Pikachu|abc": "-damage",
		"update":                    "",
	}
	for line, kind := range cases {
		ev := protocol.Decode(line)
		u, ok := ev.(*protocol.UnknownEvent)
		require.True(t, ok, "line %q decoded as %T", line, ev)
		assert.Equal(t, kind, u.Kind())
		assert.Equal(t, line, u.Raw)
	}
}

// TestDecode_NeverPanics feeds arbitrary pipe-delimited text to the decoder.
func TestDecode_NeverPanics(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		parts := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9:/ \-\[\]]{0,12}`), 0, 6).Draw(rt, "parts")
		line := "|" + strings.Join(parts, "|")
		ev := protocol.Decode(line)
		require.NotNil(rt, ev)
	})
}

func TestDecodeLines(t *testing.T) {
	evs := protocol.DecodeLines([]string{"|start", "|turn|1"})
	require.Len(t, evs, 2)
	assert.IsType(t, &protocol.StartEvent{}, evs[0])
	assert.IsType(t, &protocol.TurnEvent{}, evs[1])
}
