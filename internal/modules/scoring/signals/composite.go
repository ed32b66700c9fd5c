package signals

import (
	"math"
	"time"
)

// Weights are the run-level constants of the composite score. Alpha and Beta
// need not sum to one.
type Weights struct {
	Alpha   float64
	Beta    float64
	WRecent float64
	WOld    float64
}

// Composite is the score of one (sentence, theme) pair.
type Composite struct {
	RawBase       float64
	FinalScore100 float64
	// ThemeScore carries the same value as RawBase.
	ThemeScore float64
}

// Compose combines the three signals with the time weight.
func Compose(w Weights, semantic, phonetic, polarity, timeWeight float64) Composite {
	raw := (w.Alpha*semantic + w.Beta*phonetic) * Sign(polarity)
	final := 100 * raw * timeWeight
	if math.IsNaN(final) {
		final = 0
	}
	final = clamp(final, -100, 100)
	return Composite{RawBase: raw, FinalScore100: final, ThemeScore: raw}
}

// TimeWeight returns WRecent when the document date falls on the newest
// calendar day, WOld otherwise, including when either date is unknown.
func (w Weights) TimeWeight(docDate, newest *time.Time) float64 {
	if docDate == nil || newest == nil {
		return w.WOld
	}
	dy, dm, dd := docDate.Date()
	ny, nm, nd := newest.Date()
	if dy == ny && dm == nm && dd == nd {
		return w.WRecent
	}
	return w.WOld
}
