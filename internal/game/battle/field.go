package battle

import "github.com/cory-johannsen/battlesim/internal/protocol"

// WeatherTurns is the duration of weather started without an extending item.
const WeatherTurns = 5

// Field is the battle-wide state shared by both sides.
type Field struct {
	Weather      string // normalised ID, e.g. "raindance"; "" when clear
	WeatherTurns int    // 0 means the weather has no countdown
	Terrain      string
	TrickRoom    bool
	Gravity      bool
	MagicRoom    bool
	WonderRoom   bool
}

// SetWeather starts weather for turns turns. "none" or "" clears it.
func (f *Field) SetWeather(name string, turns int) {
	id := protocol.ToID(name)
	if id == "" || id == "none" {
		f.Weather, f.WeatherTurns = "", 0
		return
	}
	f.Weather, f.WeatherTurns = id, turns
}

// StartEffect turns on a room or terrain. It reports whether name was recognised.
func (f *Field) StartEffect(name string) bool {
	return f.setEffect(name, true)
}

// EndEffect turns off a room or terrain.
func (f *Field) EndEffect(name string) bool {
	return f.setEffect(name, false)
}

func (f *Field) setEffect(name string, on bool) bool {
	id := protocol.EffectID(name)
	switch id {
	case "trickroom":
		f.TrickRoom = on
	case "gravity":
		f.Gravity = on
	case "magicroom":
		f.MagicRoom = on
	case "wonderroom":
		f.WonderRoom = on
	case "electricterrain", "grassyterrain", "mistyterrain", "psychicterrain":
		if on {
			f.Terrain = id
		} else if f.Terrain == id {
			f.Terrain = ""
		}
	default:
		return false
	}
	return true
}

// Tick counts the weather down one turn, clearing it on expiry.
//
// Postcondition: returns true when the weather ended this tick.
func (f *Field) Tick() bool {
	if f.WeatherTurns <= 0 {
		return false
	}
	f.WeatherTurns--
	if f.WeatherTurns == 0 {
		f.Weather = ""
		return true
	}
	return false
}
