package match_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/match"
	"github.com/cory-johannsen/battlesim/internal/transport"
)

// fakeEngine releases one scripted stage of blocks per WriteLines call.
type fakeEngine struct {
	stages [][]*transport.Block
	queue  []*transport.Block
	writes [][]string
	exit   *transport.ExitError
	closed bool
}

func (f *fakeEngine) WriteLines(lines ...string) error {
	f.writes = append(f.writes, lines)
	if len(f.stages) > 0 {
		f.queue = append(f.queue, f.stages[0]...)
		f.stages = f.stages[1:]
	}
	return nil
}

func (f *fakeEngine) ReadBlock(time.Duration) (*transport.Block, error) {
	if len(f.queue) == 0 {
		if f.exit != nil {
			return nil, f.exit
		}
		return nil, nil
	}
	b := f.queue[0]
	f.queue = f.queue[1:]
	return b, nil
}

func (f *fakeEngine) Poll() (bool, int)     { return false, 0 }
func (f *fakeEngine) StderrTail() []string { return nil }
func (f *fakeEngine) Close() error         { f.closed = true; return nil }

const (
	p1Request = `|request|{"active":[{"moves":[{"move":"Tackle","id":"tackle","pp":35,"maxpp":35,"target":"normal"}]}],` +
		`"side":{"name":"Alice","id":"p1","pokemon":[` +
		`{"ident":"p1: Pikachu","details":"Pikachu, L50","condition":"110/110","active":true,"stats":{"atk":60,"def":50,"spa":60,"spd":60,"spe":100},"moves":["tackle"]},` +
		`{"ident":"p1: Eevee","details":"Eevee, L50","condition":"130/130","active":false,"stats":{"atk":60,"def":60,"spa":50,"spd":70,"spe":60},"moves":["tackle"]}]}}`
	p2Request = `|request|{"active":[{"moves":[{"move":"Tackle","id":"tackle","pp":35,"maxpp":35,"target":"normal"}]}],` +
		`"side":{"name":"Bob","id":"p2","pokemon":[` +
		`{"ident":"p2: Charmander","details":"Charmander, L50","condition":"120/120","active":true,"stats":{"atk":60,"def":50,"spa":65,"spd":55,"spe":70},"moves":["tackle"]}]}}`
)

func side(id string, lines ...string) *transport.Block {
	return &transport.Block{Kind: transport.BlockSideUpdate, Side: id, Lines: lines}
}

func update(lines ...string) *transport.Block {
	return &transport.Block{Kind: transport.BlockUpdate, Lines: lines}
}

func scriptedBattle() [][]*transport.Block {
	return [][]*transport.Block{
		{
			side("p1", p1Request),
			side("p2", p2Request),
			update(
				"|player|p1|Alice|1",
				"|player|p2|Bob|2",
				"|gametype|singles",
				"|gen|9",
				"|start",
				"|split|p1",
				"|switch|p1a: Pikachu|Pikachu, L50|110/110",
				"|switch|p1a: Pikachu|Pikachu, L50|100/100",
				"|split|p2",
				"|switch|p2a: Charmander|Charmander, L50|120/120",
				"|switch|p2a: Charmander|Charmander, L50|100/100",
				"|turn|1",
			),
		},
		{
			side("p1", p1Request),
			side("p2", p2Request),
			update(
				"|move|p1a: Pikachu|Tackle|p2a: Charmander",
				"|split|p2",
				"|-damage|p2a: Charmander|60/120",
				"|-damage|p2a: Charmander|50/100",
				"|move|p2a: Charmander|Tackle|p1a: Pikachu",
				"|split|p1",
				"|-damage|p1a: Pikachu|55/110",
				"|-damage|p1a: Pikachu|50/100",
				"|upkeep",
				"|turn|2",
			),
		},
		{
			update(
				"|move|p1a: Pikachu|Tackle|p2a: Charmander",
				"|split|p2",
				"|-damage|p2a: Charmander|0 fnt",
				"|-damage|p2a: Charmander|0 fnt",
				"|faint|p2a: Charmander",
				"|win|Alice",
			),
			{Kind: transport.BlockEnd, Lines: []string{`{"winner":"Alice","turns":2}`}},
		},
	}
}

type firstAction struct{}

func (firstAction) Choose(_ context.Context, _ *battle.State, _ string, actions []battle.Action) (battle.Action, error) {
	return actions[0], nil
}

type failingChooser struct{}

func (failingChooser) Choose(context.Context, *battle.State, string, []battle.Action) (battle.Action, error) {
	return battle.Action{}, errors.New("no idea")
}

func options() match.Options {
	return match.Options{
		Format:        "gen9customgame",
		Players:       [2]match.Player{{Name: "Alice", Team: "packed"}, {Name: "Bob"}},
		ReadTimeout:   time.Millisecond,
		StartupBudget: 3,
		StepBudget:    3,
	}
}

func TestRunner_RunToCompletion(t *testing.T) {
	eng := &fakeEngine{stages: scriptedBattle()}
	r := match.NewRunner(eng, options(), zap.NewNop())

	res, err := r.Run(context.Background(), firstAction{}, firstAction{})
	require.NoError(t, err)
	assert.Equal(t, match.Result{Winner: "Alice", Turns: 2}, res)

	require.Len(t, eng.writes, 3)
	assert.Equal(t, []string{
		`>start {"formatid":"gen9customgame"}`,
		`>player p1 {"name":"Alice","team":"packed"}`,
		`>player p2 {"name":"Bob"}`,
	}, eng.writes[0])
	assert.Equal(t, []string{">p1 move 1", ">p2 move 1"}, eng.writes[1])

	p1, p2 := r.State("p1"), r.State("p2")
	assert.Equal(t, 55, p1.Active("p1").HP, "p1 sees its own exact HP")
	assert.Equal(t, 110, p1.Active("p1").MaxHP)
	assert.Equal(t, 50, p2.Active("p1").HP, "p2 sees p1 as a percentage")
	assert.Equal(t, 100, p2.Active("p1").MaxHP)
	assert.True(t, p2.Us.Team[0].Fainted)
	assert.Equal(t, "Alice", p2.Winner)
}

func TestRunner_ChooserFailureFallsBackToDefault(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	eng := &fakeEngine{stages: scriptedBattle()}
	r := match.NewRunner(eng, options(), zap.New(core))

	_, err := r.Run(context.Background(), failingChooser{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{">p1 default", ">p2 default"}, eng.writes[1])
	assert.GreaterOrEqual(t, logs.FilterMessage("chooser failed, using default").Len(), 1)
}

func TestRunner_ProtocolLogReplays(t *testing.T) {
	eng := &fakeEngine{stages: scriptedBattle()}
	r := match.NewRunner(eng, options(), zap.NewNop())
	_, err := r.Run(context.Background(), firstAction{}, firstAction{})
	require.NoError(t, err)

	log := r.ProtocolLog()
	assert.Contains(t, log, "sideupdate")
	p1, p2 := match.Replay(log, zap.NewNop())
	assert.Equal(t, r.State("p1").Active("p1").HP, p1.Active("p1").HP)
	assert.Equal(t, r.State("p2").Active("p1").HP, p2.Active("p1").HP)
	assert.Equal(t, r.State("p1").Turn, p1.Turn)
	assert.Equal(t, match.Result{Winner: "Alice", Turns: 2}, match.ReplayResult(log))
}

func TestReplay_PublicOnlyLog(t *testing.T) {
	log := []string{
		"|player|p1|Alice|1",
		"|player|p2|Bob|2",
		"|start",
		"|switch|p1a: Pikachu|Pikachu, L50|100/100",
		"|switch|p2a: Eevee|Eevee, L50|100/100",
		"|turn|1",
		"|-damage|p2a: Eevee|40/100",
		"|turn|2",
		"|tie",
	}
	p1, p2 := match.Replay(log, zap.NewNop())
	assert.Equal(t, 40, p1.Active("p2").HP)
	assert.Equal(t, 40, p2.Active("p2").HP)
	assert.Equal(t, match.Result{Tie: true, Turns: 2}, match.ReplayResult(log))
}

func TestRunner_StartupTimeout(t *testing.T) {
	eng := &fakeEngine{}
	r := match.NewRunner(eng, options(), zap.NewNop())
	err := r.Start(context.Background())
	assert.ErrorIs(t, err, match.ErrStartupTimeout)
}

func TestRunner_StepTimeout(t *testing.T) {
	stages := scriptedBattle()[:1]
	eng := &fakeEngine{stages: stages}
	r := match.NewRunner(eng, options(), zap.NewNop())
	require.NoError(t, r.Start(context.Background()))
	err := r.Step(context.Background(), r.Choices(context.Background(), firstAction{}, firstAction{}))
	assert.ErrorIs(t, err, match.ErrStepTimeout)
}

func TestRunner_ExitEscalates(t *testing.T) {
	eng := &fakeEngine{exit: &transport.ExitError{Code: 1, StderrTail: []string{"TypeError"}}}
	r := match.NewRunner(eng, options(), zap.NewNop())
	err := r.Start(context.Background())
	var exit *transport.ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)
	assert.NotErrorIs(t, err, match.ErrStartupTimeout)
}

func TestRunner_MaxTurnsTruncates(t *testing.T) {
	eng := &fakeEngine{stages: scriptedBattle()}
	opts := options()
	opts.MaxTurns = 1
	r := match.NewRunner(eng, opts, zap.NewNop())
	res, err := r.Run(context.Background(), firstAction{}, firstAction{})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 1, res.Turns)
	assert.Empty(t, res.Winner)
	assert.Len(t, eng.writes, 1)
}

func TestRunner_RejectedChoiceResendsDefault(t *testing.T) {
	stages := scriptedBattle()
	stages[1] = append([]*transport.Block{side("p2", "|error|[Invalid choice] Can't move: no such move")}, stages[1]...)
	eng := &fakeEngine{stages: stages}
	r := match.NewRunner(eng, options(), zap.NewNop())
	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Step(context.Background(), r.Choices(context.Background(), firstAction{}, firstAction{})))
	assert.Equal(t, []string{">p2 default"}, eng.writes[2])
	// The resend consumed the next scripted stage, so it is now queued.
	assert.Equal(t, 2, r.State("p1").Turn)
}

func TestRunner_CancelledContext(t *testing.T) {
	eng := &fakeEngine{stages: scriptedBattle()}
	r := match.NewRunner(eng, options(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Start(ctx), context.Canceled)
	require.NoError(t, r.Close())
	assert.True(t, eng.closed)
}

func TestRunner_StepBeforeStart(t *testing.T) {
	r := match.NewRunner(&fakeEngine{}, options(), zap.NewNop())
	assert.Error(t, r.Step(context.Background(), nil))
}

func TestNewRunner_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { match.NewRunner(nil, options(), zap.NewNop()) })
	assert.Panics(t, func() { match.NewRunner(&fakeEngine{}, options(), nil) })
}
