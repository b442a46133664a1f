package sim

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
)

// turnLog accumulates protocol lines so a tracker replaying them arrives at
// the same snapshot as the engine.
type turnLog struct {
	lines []string
}

func (l *turnLog) add(parts ...string) {
	l.lines = append(l.lines, "|"+strings.Join(parts, "|"))
}

func ident(side string, p *battle.Pokemon) string {
	return fmt.Sprintf("%sa: %s", side, p.Name)
}

func sideLabel(sd *battle.Side) string {
	return fmt.Sprintf("%s: %s", sd.ID, username(sd))
}

func username(sd *battle.Side) string {
	if sd.Username == "" {
		return sd.ID
	}
	return sd.Username
}
