package protocol

import (
	"encoding/json"
	"fmt"
)

// Choice kinds accepted by the engine.
const (
	ChoiceMove    = "move"
	ChoiceSwitch  = "switch"
	ChoiceDefault = "default"
)

// StartDirective returns the line that opens a battle in the given format.
func StartDirective(formatID string) (string, error) {
	payload, err := json.Marshal(struct {
		FormatID string `json:"formatid"`
	}{formatID})
	if err != nil {
		return "", fmt.Errorf("protocol: encoding start directive: %w", err)
	}
	return ">start " + string(payload), nil
}

// PlayerDirective registers one side. An empty team lets the engine generate one.
func PlayerDirective(side, name, packedTeam string) (string, error) {
	payload, err := json.Marshal(struct {
		Name string `json:"name"`
		Team string `json:"team,omitempty"`
	}{name, packedTeam})
	if err != nil {
		return "", fmt.Errorf("protocol: encoding player directive: %w", err)
	}
	return fmt.Sprintf(">player %s %s", side, payload), nil
}

// ChoiceDirective wraps a choice such as "move 2" for the given side.
func ChoiceDirective(side, choice string) string {
	return fmt.Sprintf(">%s %s", side, choice)
}
