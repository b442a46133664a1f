package protocol

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ToID normalises a display name to the engine's identifier form: lowercase
// ASCII letters and digits only, with diacritics folded ("Flabébé" -> "flabebe",
// "move: Stealth Rock" -> "movestealthrock").
func ToID(name string) string {
	folded, _, err := transform.String(foldMarks, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EffectID strips the "move: ", "ability: " or "item: " prefix that effect
// names carry and normalises the remainder with ToID.
func EffectID(name string) string {
	if _, rest, ok := strings.Cut(name, ": "); ok {
		name = rest
	}
	return ToID(name)
}
