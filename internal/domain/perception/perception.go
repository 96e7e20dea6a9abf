// Package perception maps self-reported time perception onto a label and
// its psychological reading. Time perception is reported next to the fit
// result and never influences it.
package perception

import (
	"errors"
	"fmt"
)

// Scale bounds.
const (
	Min = -3
	Max = 3
)

// ErrOutOfRange is returned for values outside Min..Max.
var ErrOutOfRange = errors.New("time perception out of range")

// Entry is one row of the lexicon.
type Entry struct {
	Value   int    `json:"value" yaml:"value"`
	Label   string `json:"label" yaml:"label"`
	Meaning string `json:"meaning" yaml:"meaning"`
}

var lexicon = [Max - Min + 1]Entry{
	{Value: -3, Label: "Time drags painfully", Meaning: "Strong sign of boredom or of strain that is endured rather than engaged with."},
	{Value: -2, Label: "Time drags", Meaning: "Attention keeps returning to the clock; engagement is low."},
	{Value: -1, Label: "Time passes a little slowly", Meaning: "Mild disengagement; the activity holds attention only partly."},
	{Value: 0, Label: "Time passes normally", Meaning: "Neutral experience without marked absorption or boredom."},
	{Value: 1, Label: "Time passes a little quickly", Meaning: "Light absorption; the activity holds attention well."},
	{Value: 2, Label: "Time flies", Meaning: "Clear absorption, a typical companion of flow experience."},
	{Value: 3, Label: "Time vanishes", Meaning: "Deep absorption with loss of time awareness, characteristic of intense flow."},
}

// Describe returns the lexicon entry for v.
func Describe(v int) (Entry, error) {
	if v < Min || v > Max {
		return Entry{}, fmt.Errorf("%w: %d not in [%d,%d]", ErrOutOfRange, v, Min, Max)
	}
	return lexicon[v-Min], nil
}

// Entries returns a copy of the full lexicon in ascending order.
func Entries() []Entry {
	out := make([]Entry, len(lexicon))
	copy(out, lexicon[:])
	return out
}
