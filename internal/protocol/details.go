package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultLevel is assumed when a details string omits the level token.
const DefaultLevel = 100

// Details is the decoded "species, level[, gender][, shiny]" string.
type Details struct {
	Species string
	Level   int
	Gender  string // "M", "F", or "" when genderless/unknown
	Shiny   bool
}

// Condition is the decoded "current/max [status]" string.
//
// MaxHP == 0 means the maximum is unknown (the "0 fnt" shorthand).
type Condition struct {
	HP     int
	MaxHP  int
	Status string
}

// Fainted reports whether the condition describes a fainted Pokémon.
func (c Condition) Fainted() bool {
	return c.HP == 0 || c.Status == "fnt"
}

// ParseIdent splits "p1a: Pikachu" into side, slot, and name. It never fails;
// identifiers without a position letter ("p1: Alice") get Slot -1, and
// malformed input leaves Side empty for the caller to reject.
func ParseIdent(s string) Ident {
	id := Ident{Raw: s, Slot: -1}
	pos, name, found := strings.Cut(s, ":")
	if found {
		id.Name = strings.TrimSpace(name)
	}
	pos = strings.TrimSpace(pos)
	if len(pos) < 2 || pos[0] != 'p' || pos[1] < '1' || pos[1] > '4' {
		return id
	}
	id.Side = pos[:2]
	if len(pos) == 3 && pos[2] >= 'a' && pos[2] <= 'f' {
		id.Slot = int(pos[2] - 'a')
	}
	return id
}

// ParseDetails decodes a details string such as "Charizard, L50, F, shiny".
// Unrecognised trailing tokens (tera type, forme annotations) are ignored.
//
// Postcondition: Level is DefaultLevel unless a valid "L<n>" token is present.
func ParseDetails(s string) Details {
	parts := strings.Split(s, ",")
	d := Details{Species: strings.TrimSpace(parts[0]), Level: DefaultLevel}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case p == "M" || p == "F":
			d.Gender = p
		case p == "shiny":
			d.Shiny = true
		case len(p) > 1 && p[0] == 'L':
			if lvl, err := strconv.Atoi(p[1:]); err == nil && lvl > 0 {
				d.Level = lvl
			}
		}
	}
	return d
}

// ParseCondition decodes "current/max [status]", the "0 fnt" shorthand, or a
// bare percentage such as "85 par" (read as 85/100).
//
// Postcondition: on success 0 <= HP and (MaxHP == 0 or HP <= MaxHP).
func ParseCondition(s string) (Condition, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Condition{}, fmt.Errorf("protocol: empty condition")
	}
	var c Condition
	if len(fields) > 1 {
		c.Status = fields[1]
	}

	hp := fields[0]
	if hp == "0" {
		c.Status = "fnt"
		return c, nil
	}

	cur, maxStr, hasMax := strings.Cut(hp, "/")
	n, err := strconv.Atoi(cur)
	if err != nil || n < 0 {
		return Condition{}, fmt.Errorf("protocol: invalid hp in condition %q", s)
	}
	c.HP, c.MaxHP = n, 100
	if hasMax {
		m, err := strconv.Atoi(maxStr)
		if err != nil || m <= 0 {
			return Condition{}, fmt.Errorf("protocol: invalid max hp in condition %q", s)
		}
		c.MaxHP = m
	}
	if c.HP > c.MaxHP {
		return Condition{}, fmt.Errorf("protocol: hp exceeds max in condition %q", s)
	}
	return c, nil
}

// String renders the details back to wire form.
func (d Details) String() string {
	var b strings.Builder
	b.WriteString(d.Species)
	if d.Level != DefaultLevel && d.Level > 0 {
		fmt.Fprintf(&b, ", L%d", d.Level)
	}
	if d.Gender != "" {
		b.WriteString(", " + d.Gender)
	}
	if d.Shiny {
		b.WriteString(", shiny")
	}
	return b.String()
}

// String renders the condition back to wire form.
func (c Condition) String() string {
	if c.HP == 0 {
		return "0 fnt"
	}
	s := fmt.Sprintf("%d/%d", c.HP, c.MaxHP)
	if c.Status != "" {
		s += " " + c.Status
	}
	return s
}
