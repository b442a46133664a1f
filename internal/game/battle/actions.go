package battle

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/battlesim/internal/protocol"
)

// ActionKind distinguishes the choices a side can send.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionSwitch
	ActionDefault
)

// String returns the choice keyword.
func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return protocol.ChoiceMove
	case ActionSwitch:
		return protocol.ChoiceSwitch
	default:
		return protocol.ChoiceDefault
	}
}

// Action is one legal choice. Slot is 1-based: move slot 1-4 or team position 1-6.
type Action struct {
	Kind  ActionKind
	Slot  int
	Label string // move ID or team member name, for display
}

// Default is the choice that lets the engine decide.
var Default = Action{Kind: ActionDefault}

// Choice renders the action as the engine expects it, e.g. "move 2".
func (a Action) Choice() string {
	if a.Kind == ActionDefault {
		return protocol.ChoiceDefault
	}
	return fmt.Sprintf("%s %d", a.Kind, a.Slot)
}

// LegalActions returns the snapshot's current legal actions.
func (s *State) LegalActions() []Action {
	return LegalActions(s.Request)
}

// LegalActions derives the ordinary choices from a request payload: one move
// action per enabled move slot, plus one switch action per living benched
// member unless the active slot is trapped. Team preview, forced switch and
// wait requests offer no ordinary actions, and a nil request offers none.
func LegalActions(req *protocol.Request) []Action {
	if req == nil || !req.Ordinary() {
		return nil
	}
	active := req.Active[0]
	var out []Action
	for i, m := range active.Moves {
		if m.Disabled {
			continue
		}
		out = append(out, Action{Kind: ActionMove, Slot: i + 1, Label: m.ID})
	}
	if active.Trapped {
		return out
	}
	for i, p := range req.Side.Pokemon {
		if p.Active || benchFainted(p.Condition) {
			continue
		}
		out = append(out, Action{Kind: ActionSwitch, Slot: i + 1, Label: protocol.ParseIdent(p.Ident).Name})
	}
	return out
}

// SwitchActions returns the switch targets for a forced-switch request.
func SwitchActions(req *protocol.Request) []Action {
	if req == nil || !req.ForcedSwitch() {
		return nil
	}
	var out []Action
	for i, p := range req.Side.Pokemon {
		if p.Active || benchFainted(p.Condition) {
			continue
		}
		out = append(out, Action{Kind: ActionSwitch, Slot: i + 1, Label: protocol.ParseIdent(p.Ident).Name})
	}
	return out
}

func benchFainted(cond string) bool {
	c, err := protocol.ParseCondition(cond)
	if err != nil {
		return strings.HasPrefix(cond, "0")
	}
	return c.Fainted()
}
