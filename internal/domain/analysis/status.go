// Package analysis owns the composite per-location table built by joining
// candidate, opponent, political-base and issue grids, and the derived
// competitive metrics computed over it.
package analysis

import (
	"math"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/threshold"
)

// Fixed competitive thresholds in percentage points. Both comparisons are
// strict.
const (
	WinThreshold  = 2.0
	LoseThreshold = -2.0
)

// StatusUnknown marks rows with no comparison data.
const StatusUnknown = "Unknown"

// Opponent comparison labels.
const (
	StatusLeadingOpponent  = "Leading Opponent"
	StatusTrailingOpponent = "Trailing Opponent"
	StatusSimilarOpponent  = "Similar to Opponent"
)

// Political base comparison labels.
const (
	StatusMorePopularThanParty = "More Popular than Party"
	StatusLessPopularThanParty = "Less Popular than Party"
	StatusSimilarToParty       = "Similar Popularity to Party"
)

// Issue comparison labels.
const (
	StatusIssueMorePopular = "Candidate More Popular with this Issue"
	StatusIssueLessPopular = "Candidate Less Popular with this Issue"
	StatusIssueSimilar     = "Similar Popularity"
)

// Axis is one comparison dimension with its three labels.
type Axis struct {
	Leading  string
	Trailing string
	Similar  string
	cascade  threshold.Cascade[float64]
}

func newAxis(leading, trailing, similar string) Axis {
	return Axis{
		Leading:  leading,
		Trailing: trailing,
		Similar:  similar,
		cascade: threshold.NewCascade(similar,
			threshold.Rule[float64]{Label: StatusUnknown, Match: threshold.IsNaN},
			threshold.Rule[float64]{Label: leading, Match: threshold.Above(WinThreshold)},
			threshold.Rule[float64]{Label: trailing, Match: threshold.Below(LoseThreshold)},
		),
	}
}

// The three comparison axes of a composite record.
var (
	OpponentAxis = newAxis(StatusLeadingOpponent, StatusTrailingOpponent, StatusSimilarOpponent)
	BaseAxis     = newAxis(StatusMorePopularThanParty, StatusLessPopularThanParty, StatusSimilarToParty)
	IssueAxis    = newAxis(StatusIssueMorePopular, StatusIssueLessPopular, StatusIssueSimilar)
)

// Status labels a net value. NaN yields StatusUnknown.
func (a Axis) Status(net float64) string { return a.cascade.Evaluate(net) }

// Labels lists every status the axis emits.
func (a Axis) Labels() []string { return a.cascade.Labels() }

// NetPopularity is the percentage-point gap between two popularity values.
// A NaN on either side propagates.
func NetPopularity(primary, other float64) float64 {
	return (primary - other) * 100
}

// Mean averages the non-NaN values; it is NaN when there are none.
func Mean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

//Personal.AI order the ending
