package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is the private legal-action payload sent to one side.
type Request struct {
	Active      []ActiveRequest `json:"active"`
	Side        RequestSide     `json:"side"`
	ForceSwitch []bool          `json:"forceSwitch"`
	TeamPreview bool            `json:"teamPreview"`
	Wait        bool            `json:"wait"`
	NoCancel    bool            `json:"noCancel"`
	RQID        int             `json:"rqid"`
}

// ActiveRequest describes the choices for one active slot.
type ActiveRequest struct {
	Moves        []RequestMove `json:"moves"`
	Trapped      bool          `json:"trapped"`
	MaybeTrapped bool          `json:"maybeTrapped"`
}

// RequestMove is one move slot of the active Pokémon.
type RequestMove struct {
	Move     string   `json:"move"`
	ID       string   `json:"id"`
	PP       int      `json:"pp"`
	MaxPP    int      `json:"maxpp"`
	Target   string   `json:"target"`
	Disabled FlexBool `json:"disabled"`
}

// RequestSide summarises the requesting side's whole team.
type RequestSide struct {
	Name    string           `json:"name"`
	ID      string           `json:"id"`
	Pokemon []RequestPokemon `json:"pokemon"`
}

// RequestPokemon is one team member as the engine reports it.
type RequestPokemon struct {
	Ident       string         `json:"ident"`
	Details     string         `json:"details"`
	Condition   string         `json:"condition"`
	Active      bool           `json:"active"`
	Stats       map[string]int `json:"stats"`
	Moves       []string       `json:"moves"`
	BaseAbility string         `json:"baseAbility"`
	Ability     string         `json:"ability"`
	Item        string         `json:"item"`
}

// FlexBool accepts either a JSON boolean or a string; the engine reports a
// disabled move as the name of the disabling effect.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*b = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*b = false
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = s != ""
	default:
		return fmt.Errorf("protocol: cannot decode %s as a flag", data)
	}
	return nil
}

// ParseRequest decodes a request payload.
//
// Precondition: raw is the JSON text following "|request|".
// Postcondition: Returns a non-nil Request or a non-nil error.
func ParseRequest(raw string) (*Request, error) {
	var r Request
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("protocol: decoding request: %w", err)
	}
	return &r, nil
}

// ForcedSwitch reports whether any active slot must switch out.
func (r *Request) ForcedSwitch() bool {
	for _, f := range r.ForceSwitch {
		if f {
			return true
		}
	}
	return false
}

// Ordinary reports whether the request offers the normal move/switch menu.
// Team preview, forced switches, and wait requests do not.
func (r *Request) Ordinary() bool {
	return !r.TeamPreview && !r.Wait && !r.ForcedSwitch() && len(r.Active) > 0
}
