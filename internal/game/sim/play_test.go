package sim_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
)

// firstChooser always picks the first legal action.
type firstChooser struct{}

func (firstChooser) Choose(_ context.Context, _ *battle.State, _ string, actions []battle.Action) (battle.Action, error) {
	return actions[0], nil
}

// indexChooser picks a legal action drawn by rapid.
type indexChooser struct{ t *rapid.T }

func (c indexChooser) Choose(_ context.Context, _ *battle.State, side string, actions []battle.Action) (battle.Action, error) {
	i := rapid.IntRange(0, len(actions)-1).Draw(c.t, side+"-choice")
	return actions[i], nil
}

type failingChooser struct{}

func (failingChooser) Choose(context.Context, *battle.State, string, []battle.Action) (battle.Action, error) {
	return battle.Action{}, errors.New("no idea")
}

func roster(prefix string) []*battle.Pokemon {
	return []*battle.Pokemon{
		mon(prefix+"Charizard", []string{"Fire", "Flying"}, battle.StatTable{150, 90, 80, 110, 85, 100}, flamethrower, swordsDance),
		mon(prefix+"Gengar", []string{"Ghost", "Poison"}, battle.StatTable{130, 70, 65, 130, 75, 110}, shadowBall, hypnosis),
		mon(prefix+"Tauros", []string{"Normal"}, battle.StatTable{145, 100, 95, 40, 70, 110}, doubleEdge, quickAttack),
	}
}

func TestPlay_RunsToCompletion(t *testing.T) {
	logger := zap.NewNop()
	e := sim.NewEngine(dice.NewLoggedRoller(dice.NewSeededSource(7), logger), nil, logger)
	s := newBattle(t, roster(""), roster(""))

	res, err := e.Play(context.Background(), s, firstChooser{}, firstChooser{}, 500)
	require.NoError(t, err)
	assert.True(t, s.Finished)
	assert.False(t, res.Truncated)
	assert.Equal(t, s.Turn, res.Turns)
	assert.True(t, res.Tie || res.Winner == "p1" || res.Winner == "p2")
	assert.Equal(t, "|start", res.Log[indexOf(res.Log, "|start")])
}

func TestPlay_TruncatesAtMaxTurns(t *testing.T) {
	e := newEngine(t, highRolls)
	s := newBattle(t,
		[]*battle.Pokemon{mon("A", []string{"Normal"}, bulky, swordsDance)},
		[]*battle.Pokemon{mon("B", []string{"Normal"}, bulky, swordsDance)},
	)
	res, err := e.Play(context.Background(), s, firstChooser{}, failingChooser{}, 3)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 3, res.Turns)
	assert.False(t, s.Finished)
}

func TestPlay_HonoursCancellation(t *testing.T) {
	e := newEngine(t, highRolls)
	s := newBattle(t, roster(""), roster(""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Play(ctx, s, firstChooser{}, firstChooser{}, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

// A tracker that only sees the emitted protocol lines must end in the same
// place as the engine that produced them.
func TestProperty_ReplayedLogMatchesEngineState(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		logger := zap.NewNop()
		e := sim.NewEngine(dice.NewLoggedRoller(dice.NewSeededSource(seed), logger), nil, logger)
		s := battle.NewState("p1", logger)
		if err := s.SeedTeam("p1", roster("")); err != nil {
			rt.Fatal(err)
		}
		if err := s.SeedTeam("p2", roster("")); err != nil {
			rt.Fatal(err)
		}
		s.Us.Team[1].Ability = "intimidate"

		res, err := e.Play(context.Background(), s, indexChooser{rt}, indexChooser{rt}, 60)
		if err != nil {
			rt.Fatal(err)
		}

		for _, perspective := range []string{"p1", "p2"} {
			tracker := battle.NewState(perspective, logger)
			for _, line := range res.Log {
				tracker.ApplyLine(line)
			}
			if tracker.Finished != s.Finished || tracker.Winner != s.Winner || tracker.Turn != s.Turn {
				rt.Fatalf("result mismatch: tracker %v/%q/%d engine %v/%q/%d",
					tracker.Finished, tracker.Winner, tracker.Turn, s.Finished, s.Winner, s.Turn)
			}
			for _, id := range []string{"p1", "p2"} {
				want, _ := s.Side(id)
				got, _ := tracker.Side(id)
				for _, p := range got.Team {
					idx := want.Find(p.Name)
					if idx < 0 {
						rt.Fatalf("%s: tracker invented %q", id, p.Name)
					}
					w := want.Team[idx]
					if p.HP != w.HP || p.Fainted != w.Fainted || p.Status != w.Status {
						rt.Fatalf("%s %s: tracker hp=%d fainted=%v status=%v, engine hp=%d fainted=%v status=%v",
							id, p.Name, p.HP, p.Fainted, p.Status, w.HP, w.Fainted, w.Status)
					}
					if p.Active && p.Boosts != w.Boosts {
						rt.Fatalf("%s %s: boosts %v vs %v", id, p.Name, p.Boosts, w.Boosts)
					}
				}
			}
		}
	})
}
