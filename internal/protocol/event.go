// Package protocol decodes the line-oriented battle protocol into typed
// events, and encodes the control directives sent back to the engine.
//
// Every line decodes to exactly one Event. Lines whose kind is not recognised,
// or whose arguments fail to parse, decode to *UnknownEvent carrying the raw
// tokens so that nothing in the stream is silently lost.
package protocol

// Event is a decoded protocol line. The set of implementations is closed to
// this package; callers switch over the concrete pointer types.
type Event interface {
	// Kind returns the protocol message kind, e.g. "switch" or "-damage".
	Kind() string
	event()
}

// Ident addresses one Pokémon, e.g. "p1a: Pikachu".
type Ident struct {
	Raw  string
	Side string // "p1", "p2"
	Slot int    // 0 for position "a"; -1 when the identifier carries no position
	Name string
}

// PlayerEvent is "|player|p1|Alice|avatar|rating".
type PlayerEvent struct {
	Side     string
	Username string
	Avatar   string
	Rating   string
}

// TeamSizeEvent is "|teamsize|p1|6".
type TeamSizeEvent struct {
	Side string
	Size int
}

// GameTypeEvent is "|gametype|singles".
type GameTypeEvent struct{ GameType string }

// GenEvent is "|gen|9".
type GenEvent struct{ Gen int }

// TierEvent is "|tier|[Gen 9] Random Battle".
type TierEvent struct{ Tier string }

// RatedEvent is "|rated" with an optional message.
type RatedEvent struct{ Message string }

// RuleEvent is "|rule|Sleep Clause Mod: Limit one foe put to sleep".
type RuleEvent struct {
	Rule        string
	Description string
}

// ClearPokeEvent starts a fresh team preview listing.
type ClearPokeEvent struct{}

// PokeEvent reveals one team member during team preview.
type PokeEvent struct {
	Side    string
	Details Details
	HasItem bool
}

// TeamPreviewEvent asks both players to order their teams.
type TeamPreviewEvent struct{ Seconds int }

// StartEvent marks the beginning of the battle proper.
type StartEvent struct{}

// TurnEvent advances the turn counter.
type TurnEvent struct{ Turn int }

// MoveEvent records a move being used.
type MoveEvent struct {
	Source Ident
	Move   string
	Target Ident
	Tags   []string // trailing "[miss]", "[still]" style annotations
}

// SwitchEvent covers both "switch" (voluntary) and "drag" (forced) entries.
type SwitchEvent struct {
	Ident     Ident
	Details   Details
	Condition Condition
	Drag      bool
}

// DetailsChangeEvent is a permanent forme change.
type DetailsChangeEvent struct {
	Ident     Ident
	Details   Details
	Condition Condition
}

// FaintEvent marks a Pokémon as fainted.
type FaintEvent struct{ Ident Ident }

// DamageEvent reports a new HP value after damage.
type DamageEvent struct {
	Ident     Ident
	Condition Condition
	From      string
}

// HealEvent reports a new HP value after healing.
type HealEvent struct {
	Ident     Ident
	Condition Condition
	From      string
}

// StatusEvent inflicts a primary status.
type StatusEvent struct {
	Ident  Ident
	Status string
}

// CureStatusEvent removes a primary status.
type CureStatusEvent struct {
	Ident  Ident
	Status string
}

// BoostEvent changes one boost stage. Unboosts decode with a negative Amount.
type BoostEvent struct {
	Ident  Ident
	Stat   string
	Amount int
}

// SetBoostEvent sets one boost stage to an absolute value.
type SetBoostEvent struct {
	Ident Ident
	Stat  string
	Stage int
}

// ClearAllBoostEvent resets every boost on the field.
type ClearAllBoostEvent struct{}

// WeatherEvent sets the weather; "none" clears it.
type WeatherEvent struct {
	Weather string
	Upkeep  bool
	From    string
}

// FieldStartEvent starts a terrain or room effect.
type FieldStartEvent struct{ Condition string }

// FieldEndEvent ends a terrain or room effect.
type FieldEndEvent struct{ Condition string }

// SideStartEvent starts a side condition such as a hazard or screen.
type SideStartEvent struct {
	Side      string
	Condition string
}

// SideEndEvent ends a side condition.
type SideEndEvent struct {
	Side      string
	Condition string
}

// VolatileStartEvent attaches a volatile effect.
type VolatileStartEvent struct {
	Ident  Ident
	Effect string
	Of     Ident // source Pokémon from an "[of] p2a: X" tag, if any
}

// VolatileEndEvent removes a volatile effect.
type VolatileEndEvent struct {
	Ident  Ident
	Effect string
}

// AbilityEvent reveals an ability.
type AbilityEvent struct {
	Ident   Ident
	Ability string
}

// ItemEvent reveals an item. Ended is set for "-enditem".
type ItemEvent struct {
	Ident Ident
	Item  string
	Ended bool
}

// AnnotationEvent is one of the single-target move outcome notes:
// "-crit", "-supereffective", "-resisted", "-immune", "-miss", "-fail".
type AnnotationEvent struct {
	Tag    string
	Target Ident
}

// CantEvent reports a Pokémon unable to act.
type CantEvent struct {
	Ident  Ident
	Reason string
	Move   string
}

// UpkeepEvent marks the end-of-turn residual phase.
type UpkeepEvent struct{}

// MessageEvent is free text, including the bare "|" spacer line.
type MessageEvent struct{ Text string }

// WinEvent ends the battle with a winner username.
type WinEvent struct{ Winner string }

// TieEvent ends the battle with no winner.
type TieEvent struct{}

// RequestEvent carries the private legal-action payload, undecoded.
type RequestEvent struct{ Raw string }

// ErrorEvent is "|error|[Invalid choice] ..." sent to one side.
type ErrorEvent struct{ Message string }

// UnknownEvent preserves a line that could not be decoded.
type UnknownEvent struct {
	Type   string
	Raw    string
	Tokens []string
}

func (*PlayerEvent) Kind() string        { return "player" }
func (*TeamSizeEvent) Kind() string      { return "teamsize" }
func (*GameTypeEvent) Kind() string      { return "gametype" }
func (*GenEvent) Kind() string           { return "gen" }
func (*TierEvent) Kind() string          { return "tier" }
func (*RatedEvent) Kind() string         { return "rated" }
func (*RuleEvent) Kind() string          { return "rule" }
func (*ClearPokeEvent) Kind() string     { return "clearpoke" }
func (*PokeEvent) Kind() string          { return "poke" }
func (*TeamPreviewEvent) Kind() string   { return "teampreview" }
func (*StartEvent) Kind() string         { return "start" }
func (*TurnEvent) Kind() string          { return "turn" }
func (*MoveEvent) Kind() string          { return "move" }
func (*DetailsChangeEvent) Kind() string { return "detailschange" }
func (*FaintEvent) Kind() string         { return "faint" }
func (*DamageEvent) Kind() string        { return "-damage" }
func (*HealEvent) Kind() string          { return "-heal" }
func (*StatusEvent) Kind() string        { return "-status" }
func (*CureStatusEvent) Kind() string    { return "-curestatus" }
func (*SetBoostEvent) Kind() string      { return "-setboost" }
func (*ClearAllBoostEvent) Kind() string { return "-clearallboost" }
func (*WeatherEvent) Kind() string       { return "-weather" }
func (*FieldStartEvent) Kind() string    { return "-fieldstart" }
func (*FieldEndEvent) Kind() string      { return "-fieldend" }
func (*SideStartEvent) Kind() string     { return "-sidestart" }
func (*SideEndEvent) Kind() string       { return "-sideend" }
func (*VolatileStartEvent) Kind() string { return "-start" }
func (*VolatileEndEvent) Kind() string   { return "-end" }
func (*AbilityEvent) Kind() string       { return "-ability" }
func (e *AnnotationEvent) Kind() string  { return e.Tag }
func (*CantEvent) Kind() string          { return "cant" }
func (*UpkeepEvent) Kind() string        { return "upkeep" }
func (*MessageEvent) Kind() string       { return "message" }
func (*WinEvent) Kind() string           { return "win" }
func (*TieEvent) Kind() string           { return "tie" }
func (*RequestEvent) Kind() string       { return "request" }
func (*ErrorEvent) Kind() string         { return "error" }
func (e *UnknownEvent) Kind() string     { return e.Type }

func (e *SwitchEvent) Kind() string {
	if e.Drag {
		return "drag"
	}
	return "switch"
}

func (e *BoostEvent) Kind() string {
	if e.Amount < 0 {
		return "-unboost"
	}
	return "-boost"
}

func (e *ItemEvent) Kind() string {
	if e.Ended {
		return "-enditem"
	}
	return "-item"
}

func (*PlayerEvent) event()        {}
func (*TeamSizeEvent) event()      {}
func (*GameTypeEvent) event()      {}
func (*GenEvent) event()           {}
func (*TierEvent) event()          {}
func (*RatedEvent) event()         {}
func (*RuleEvent) event()          {}
func (*ClearPokeEvent) event()     {}
func (*PokeEvent) event()          {}
func (*TeamPreviewEvent) event()   {}
func (*StartEvent) event()         {}
func (*TurnEvent) event()          {}
func (*MoveEvent) event()          {}
func (*SwitchEvent) event()        {}
func (*DetailsChangeEvent) event() {}
func (*FaintEvent) event()         {}
func (*DamageEvent) event()        {}
func (*HealEvent) event()          {}
func (*StatusEvent) event()        {}
func (*CureStatusEvent) event()    {}
func (*BoostEvent) event()         {}
func (*SetBoostEvent) event()      {}
func (*ClearAllBoostEvent) event() {}
func (*WeatherEvent) event()       {}
func (*FieldStartEvent) event()    {}
func (*FieldEndEvent) event()      {}
func (*SideStartEvent) event()     {}
func (*SideEndEvent) event()       {}
func (*VolatileStartEvent) event() {}
func (*VolatileEndEvent) event()   {}
func (*AbilityEvent) event()       {}
func (*ItemEvent) event()          {}
func (*AnnotationEvent) event()    {}
func (*CantEvent) event()          {}
func (*UpkeepEvent) event()        {}
func (*MessageEvent) event()       {}
func (*WinEvent) event()           {}
func (*TieEvent) event()           {}
func (*RequestEvent) event()       {}
func (*ErrorEvent) event()         {}
func (*UnknownEvent) event()       {}
