// Package stages holds the typed, parameterized descriptions of each
// pipeline phase: prompts, temperature, provider, and model, keyed by
// output-length preset. Pure configuration, no control flow.
package stages

import "fmt"

// LengthPreset names a target script duration.
type LengthPreset string

// Length presets, chosen once per run.
const (
	PresetShort     LengthPreset = "short"
	PresetMedium    LengthPreset = "medium"
	PresetLong      LengthPreset = "long"
	PresetExtraLong LengthPreset = "xlong"
)

// Length maps a preset to its target minutes and word-count bounds.
type Length struct {
	Minutes  int `validate:"gt=0"`
	WordsMin int `validate:"gt=0"`
	WordsMax int `validate:"gtefield=WordsMin"`
}

// lengths is the preset table. Word bounds assume ~150-180 spoken words
// per minute.
var lengths = map[LengthPreset]Length{
	PresetShort:     {Minutes: 5, WordsMin: 750, WordsMax: 900},
	PresetMedium:    {Minutes: 10, WordsMin: 1500, WordsMax: 1800},
	PresetLong:      {Minutes: 15, WordsMin: 2250, WordsMax: 2700},
	PresetExtraLong: {Minutes: 20, WordsMin: 3000, WordsMax: 3600},
}

// Presets returns all known presets in ascending duration order.
func Presets() []LengthPreset {
	return []LengthPreset{PresetShort, PresetMedium, PresetLong, PresetExtraLong}
}

// Lookup returns the length bounds for a preset.
func Lookup(p LengthPreset) (Length, error) {
	l, ok := lengths[p]
	if !ok {
		return Length{}, fmt.Errorf("unknown length preset %q", p)
	}
	return l, nil
}

// ParsePreset resolves a user-supplied duration label ("short", "10",
// "15 min") to a preset.
func ParsePreset(s string) (LengthPreset, error) {
	switch s {
	case "short", "5", "5 min":
		return PresetShort, nil
	case "medium", "10", "10 min":
		return PresetMedium, nil
	case "long", "15", "15 min":
		return PresetLong, nil
	case "xlong", "extra-long", "20", "20 min":
		return PresetExtraLong, nil
	}
	return "", fmt.Errorf("unknown length %q (want short, medium, long, or xlong)", s)
}
