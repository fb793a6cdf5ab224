package signal

import "github.com/turtacn/Resonance-Intelligence/internal/domain/threshold"

// QuadrantThreshold splits high from low on both axes (inclusive).
const QuadrantThreshold = 0.6

// Segment is the affinity/popularity quadrant code.
type Segment string

const (
	SegmentHAHP    Segment = "HA-HP"
	SegmentHALP    Segment = "HA-LP"
	SegmentLAHP    Segment = "LA-HP"
	SegmentLALP    Segment = "LA-LP"
	SegmentUnknown Segment = "Unknown"
)

// Strategy is the campaign strategy attached to a segment.
type Strategy string

const (
	StrategyRallyTheBase   Strategy = "Rally the Base"
	StrategyHiddenGoldmine Strategy = "Hidden Goldmine"
	StrategyBringThemOver  Strategy = "Bring Them Over"
	StrategyDeepConversion Strategy = "Deep Conversion"
	StrategyNone           Strategy = ""
)

// Strategies lists the four quadrant strategies in reporting order.
var Strategies = []Strategy{
	StrategyRallyTheBase,
	StrategyHiddenGoldmine,
	StrategyBringThemOver,
	StrategyDeepConversion,
}

var strategyBySegment = map[Segment]Strategy{
	SegmentHAHP: StrategyRallyTheBase,
	SegmentHALP: StrategyHiddenGoldmine,
	SegmentLAHP: StrategyBringThemOver,
	SegmentLALP: StrategyDeepConversion,
}

var strategyDescriptions = map[Strategy]string{
	StrategyRallyTheBase:   "High affinity, high popularity: mobilize existing supporters",
	StrategyHiddenGoldmine: "High affinity, low popularity: raise awareness where the message resonates",
	StrategyBringThemOver:  "Low affinity, high popularity: persuade voters who know the candidate",
	StrategyDeepConversion: "Low affinity, low popularity: long-term persuasion and introduction",
}

type metrics struct{ affinity, popularity float64 }

var quadrants = threshold.NewCascade(string(SegmentUnknown),
	threshold.Rule[metrics]{Label: string(SegmentHAHP), Match: func(m metrics) bool {
		return m.affinity >= QuadrantThreshold && m.popularity >= QuadrantThreshold
	}},
	threshold.Rule[metrics]{Label: string(SegmentHALP), Match: func(m metrics) bool {
		return m.affinity >= QuadrantThreshold && m.popularity < QuadrantThreshold
	}},
	threshold.Rule[metrics]{Label: string(SegmentLAHP), Match: func(m metrics) bool {
		return m.affinity < QuadrantThreshold && m.popularity >= QuadrantThreshold
	}},
	threshold.Rule[metrics]{Label: string(SegmentLALP), Match: func(m metrics) bool {
		return m.affinity < QuadrantThreshold && m.popularity < QuadrantThreshold
	}},
)

// Classify returns the segment and strategy for a pair of metrics. NaN
// inputs fall through to SegmentUnknown with no strategy.
func Classify(affinity, popularity float64) (Segment, Strategy) {
	seg := Segment(quadrants.Evaluate(metrics{affinity: affinity, popularity: popularity}))
	return seg, strategyBySegment[seg]
}

// StrategyFor maps a segment to its strategy.
func StrategyFor(seg Segment) Strategy { return strategyBySegment[seg] }

// Description is a one-line explanation of the strategy.
func (s Strategy) Description() string { return strategyDescriptions[s] }

// Valid reports whether s is one of the four quadrant strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyDescriptions[s]
	return ok
}

//Personal.AI order the ending
