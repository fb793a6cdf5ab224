package campaign

import (
	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// GoldmineMessage explains what hidden goldmine locations are.
const GoldmineMessage = "Target these locations to introduce the candidate among the party base. " +
	"The candidate is less popular than the party in these locations and the party is popular in these regions. " +
	"These are votes that will be lost or uncast unless action is taken"

// GoldmineReport counts the locations where the candidate trails their own
// party.
type GoldmineReport struct {
	Status             string            `json:"status"`
	Message            string            `json:"message"`
	Metadata           analysis.Metadata `json:"analysis_metadata"`
	TotalLocations     int               `json:"total_hidden_gold_mine_base_locations"`
	TotalSegments      int               `json:"total_segments"`
	PercentageToTarget float64           `json:"percentage_of_total_segments_to_target"`
	TopTargets         []TargetLocation  `json:"top_priority_targets"`
	NextSteps          []string          `json:"next_steps"`
}

// IdentifyHiddenGoldmine selects every location whose base status is
// "Less Popular than Party", regardless of quadrant.
func IdentifyHiddenGoldmine(t *analysis.Table) *GoldmineReport {
	rows := t.Filter(func(r analysis.CompositeRecord) bool {
		return r.BasePopularityStatus == analysis.StatusLessPopularThanParty
	})
	rep := &GoldmineReport{
		Status:             errors.StatusSuccess,
		Message:            GoldmineMessage,
		TotalLocations:     len(rows),
		TotalSegments:      t.Len(),
		PercentageToTarget: analysis.Round1(analysis.Percent(len(rows), t.Len())),
		NextSteps:          []string{"Introduce the candidate among the party base and make sure they cast vote"},
	}
	if t != nil {
		rep.Metadata = t.Meta
	}
	for _, r := range byAffinity(rows, topTargets) {
		rep.TopTargets = append(rep.TopTargets, TargetLocation{
			Latitude: r.Latitude, Longitude: r.Longitude, Affinity: r.Affinity,
			BasePopularity: ptr(r.BasePopularity), NetBasePopularity: ptr(r.NetBasePopularity),
			Geohash: r.Geohash,
		})
	}
	return rep
}

//Personal.AI order the ending
