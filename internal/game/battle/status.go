package battle

// Status is a primary (non-volatile) status condition.
type Status int

const (
	StatusNone Status = iota
	StatusBurn
	StatusFreeze
	StatusParalysis
	StatusPoison
	StatusToxic
	StatusSleep
	StatusFainted
)

var statusIDs = [...]string{"", "brn", "frz", "par", "psn", "tox", "slp", "fnt"}

// String returns the engine's status identifier; StatusNone is "".
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusIDs) {
		return "unknown"
	}
	return statusIDs[s]
}

// ParseStatus maps "brn", "par" and the like to a Status.
//
// Postcondition: ok is false only for unrecognised non-empty input.
func ParseStatus(id string) (Status, bool) {
	for i, s := range statusIDs {
		if s == id {
			return Status(i), true
		}
	}
	return StatusNone, false
}
