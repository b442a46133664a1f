package protocol

import (
	"strconv"
	"strings"
)

// tokens is the argument list after the message kind.
type tokens []string

func (t tokens) at(i int) string {
	if i < len(t) {
		return t[i]
	}
	return ""
}

// tag returns the value of the first "[name] value" annotation, if any.
func (t tokens) tag(name string) (string, bool) {
	prefix := "[" + name + "]"
	for _, tok := range t {
		if strings.HasPrefix(tok, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(tok, prefix)), true
		}
	}
	return "", false
}

// DecodeLines decodes each line in order.
func DecodeLines(lines []string) []Event {
	out := make([]Event, 0, len(lines))
	for _, l := range lines {
		out = append(out, Decode(l))
	}
	return out
}

// Decode turns one protocol line into an Event. It never fails: lines it
// cannot interpret come back as *UnknownEvent with the raw tokens intact.
//
// Postcondition: the returned Event is non-nil.
func Decode(line string) Event {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, "|")
	if len(parts) < 2 || parts[0] != "" {
		return &UnknownEvent{Raw: line, Tokens: parts}
	}
	kind := parts[1]
	args := tokens(parts[2:])
	unknown := func() Event {
		return &UnknownEvent{Type: kind, Raw: line, Tokens: []string(args)}
	}
	need := func(n int) bool { return len(args) >= n }

	switch kind {
	case "":
		return &MessageEvent{Text: strings.Join(args, "|")}
	case "player":
		if !need(1) {
			return unknown()
		}
		return &PlayerEvent{Side: args[0], Username: args.at(1), Avatar: args.at(2), Rating: args.at(3)}
	case "teamsize":
		n, err := atoi(args.at(1))
		if !need(2) || err != nil {
			return unknown()
		}
		return &TeamSizeEvent{Side: args[0], Size: n}
	case "gametype":
		return &GameTypeEvent{GameType: args.at(0)}
	case "gen":
		n, err := atoi(args.at(0))
		if err != nil {
			return unknown()
		}
		return &GenEvent{Gen: n}
	case "tier":
		return &TierEvent{Tier: args.at(0)}
	case "rated":
		return &RatedEvent{Message: args.at(0)}
	case "rule":
		rule, desc, _ := strings.Cut(args.at(0), ": ")
		return &RuleEvent{Rule: rule, Description: desc}
	case "clearpoke":
		return &ClearPokeEvent{}
	case "poke":
		if !need(2) {
			return unknown()
		}
		return &PokeEvent{Side: args[0], Details: ParseDetails(args[1]), HasItem: args.at(2) == "item"}
	case "teampreview":
		n, _ := atoi(args.at(0))
		return &TeamPreviewEvent{Seconds: n}
	case "start":
		return &StartEvent{}
	case "turn":
		n, err := atoi(args.at(0))
		if err != nil {
			return unknown()
		}
		return &TurnEvent{Turn: n}
	case "move":
		if !need(2) {
			return unknown()
		}
		ev := &MoveEvent{Source: ParseIdent(args[0]), Move: args[1], Target: ParseIdent(args.at(2))}
		if len(args) > 3 {
			ev.Tags = append([]string(nil), args[3:]...)
		}
		return ev
	case "switch", "drag", "replace":
		if !need(2) {
			return unknown()
		}
		ev := &SwitchEvent{Ident: ParseIdent(args[0]), Details: ParseDetails(args[1]), Drag: kind == "drag"}
		if cond := args.at(2); cond != "" {
			c, err := ParseCondition(cond)
			if err != nil {
				return unknown()
			}
			ev.Condition = c
		} else {
			ev.Condition = Condition{HP: 100, MaxHP: 100}
		}
		return ev
	case "detailschange", "-formechange":
		if !need(2) {
			return unknown()
		}
		ev := &DetailsChangeEvent{Ident: ParseIdent(args[0]), Details: ParseDetails(args[1])}
		if cond := args.at(2); cond != "" && !strings.HasPrefix(cond, "[") {
			c, err := ParseCondition(cond)
			if err != nil {
				return unknown()
			}
			ev.Condition = c
		}
		return ev
	case "faint":
		if !need(1) {
			return unknown()
		}
		return &FaintEvent{Ident: ParseIdent(args[0])}
	case "-damage", "-heal", "-sethp":
		if !need(2) {
			return unknown()
		}
		c, err := ParseCondition(args[1])
		if err != nil {
			return unknown()
		}
		from, _ := args.tag("from")
		if kind == "-heal" {
			return &HealEvent{Ident: ParseIdent(args[0]), Condition: c, From: from}
		}
		return &DamageEvent{Ident: ParseIdent(args[0]), Condition: c, From: from}
	case "-status":
		if !need(2) {
			return unknown()
		}
		return &StatusEvent{Ident: ParseIdent(args[0]), Status: args[1]}
	case "-curestatus":
		if !need(1) {
			return unknown()
		}
		return &CureStatusEvent{Ident: ParseIdent(args[0]), Status: args.at(1)}
	case "-boost", "-unboost":
		n, err := atoi(args.at(2))
		if !need(3) || err != nil {
			return unknown()
		}
		if kind == "-unboost" {
			n = -n
		}
		return &BoostEvent{Ident: ParseIdent(args[0]), Stat: args[1], Amount: n}
	case "-setboost":
		n, err := atoi(args.at(2))
		if !need(3) || err != nil {
			return unknown()
		}
		return &SetBoostEvent{Ident: ParseIdent(args[0]), Stat: args[1], Stage: n}
	case "-clearallboost":
		return &ClearAllBoostEvent{}
	case "-weather":
		if !need(1) {
			return unknown()
		}
		_, upkeep := args.tag("upkeep")
		from, _ := args.tag("from")
		return &WeatherEvent{Weather: args[0], Upkeep: upkeep, From: from}
	case "-fieldstart":
		return &FieldStartEvent{Condition: args.at(0)}
	case "-fieldend":
		return &FieldEndEvent{Condition: args.at(0)}
	case "-sidestart", "-sideend":
		if !need(2) {
			return unknown()
		}
		side := ParseIdent(args[0]).Side
		if kind == "-sideend" {
			return &SideEndEvent{Side: side, Condition: args[1]}
		}
		return &SideStartEvent{Side: side, Condition: args[1]}
	case "-start":
		if !need(2) {
			return unknown()
		}
		ev := &VolatileStartEvent{Ident: ParseIdent(args[0]), Effect: args[1]}
		if of, ok := args.tag("of"); ok {
			ev.Of = ParseIdent(of)
		}
		return ev
	case "-end":
		if !need(2) {
			return unknown()
		}
		return &VolatileEndEvent{Ident: ParseIdent(args[0]), Effect: args[1]}
	case "-ability":
		if !need(2) {
			return unknown()
		}
		return &AbilityEvent{Ident: ParseIdent(args[0]), Ability: args[1]}
	case "-item", "-enditem":
		if !need(2) {
			return unknown()
		}
		return &ItemEvent{Ident: ParseIdent(args[0]), Item: args[1], Ended: kind == "-enditem"}
	case "-crit", "-supereffective", "-resisted", "-immune", "-miss", "-fail":
		return &AnnotationEvent{Tag: kind, Target: ParseIdent(args.at(0))}
	case "cant":
		if !need(2) {
			return unknown()
		}
		return &CantEvent{Ident: ParseIdent(args[0]), Reason: args[1], Move: args.at(2)}
	case "upkeep":
		return &UpkeepEvent{}
	case "win":
		return &WinEvent{Winner: args.at(0)}
	case "tie":
		return &TieEvent{}
	case "request":
		return &RequestEvent{Raw: strings.Join(args, "|")}
	case "error":
		return &ErrorEvent{Message: strings.Join(args, "|")}
	}
	return unknown()
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
