package campaign

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/threshold"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Urgency ranks a targeting segment.
type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

// Urgency cut-offs, as a percentage of Rally the Base locations.
var (
	swingUrgency = threshold.NewCascade(string(UrgencyMedium),
		threshold.Rule[float64]{Label: string(UrgencyHigh), Match: threshold.Above(15)},
	)
	baseIntroUrgency = threshold.NewCascade(string(UrgencyMedium),
		threshold.Rule[float64]{Label: string(UrgencyHigh), Match: threshold.Above(25)},
	)
	issueUrgency = threshold.NewCascade(string(UrgencyLow),
		threshold.Rule[float64]{Label: string(UrgencyHigh), Match: threshold.Above(20)},
		threshold.Rule[float64]{Label: string(UrgencyMedium), Match: threshold.Above(10)},
	)
)

// Rally report constants.
const (
	topTargets             = 5
	baseIntroPriorityShare = 15.0

	NoRallyMessage        = "No Rally the Base segments found with affinity >= 0.6 and popularity >= 0.6"
	NoRallyRecommendation = "Lower thresholds or check data quality"
	RallyTimeline         = "2-4 weeks for Rally Base strategy implementation"
)

// RallySuccessMetrics are the outcome measures attached to every report.
var RallySuccessMetrics = []string{
	"Increase voter turnout in Rally Base segments by 15%",
	"Improve candidate recognition in base introduction areas",
	"Address issue concerns in weak performance areas",
}

// TargetLocation is one location in a top-targets list. Fields that do not
// apply to the list are omitted.
type TargetLocation struct {
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	Affinity          float64  `json:"affinity"`
	Popularity        *float64 `json:"popularity,omitempty"`
	BasePopularity    *float64 `json:"base_popularity,omitempty"`
	NetBasePopularity *float64 `json:"net_base_popularity,omitempty"`
	NetPopularity     *float64 `json:"net_popularity,omitempty"`
	Geohash           string   `json:"geohash"`
}

// SwingVoters are Rally the Base locations where the opponent leads.
type SwingVoters struct {
	TotalLocations    int     `json:"total_locations"`
	PercentageOfRally float64 `json:"percentage_of_rally_base"`
	AverageNet        float64 `json:"average_net_popularity"`
	AverageAffinity   float64 `json:"average_affinity"`
	AveragePopularity float64 `json:"average_popularity"`
	CampaignStrategy  string  `json:"campaign_strategy"`
	MessageFocus      string  `json:"message_focus"`
	Urgency           Urgency `json:"urgency"`
}

// BaseIntroduction are Rally the Base locations where the party outpolls the
// candidate.
type BaseIntroduction struct {
	TotalLocations        int              `json:"total_locations"`
	PercentageOfRally     float64          `json:"percentage_of_rally_base"`
	AverageNetBase        float64          `json:"average_net_base_performance"`
	AverageAffinity       float64          `json:"average_affinity"`
	AverageBasePopularity float64          `json:"average_base_popularity"`
	TopTargets            []TargetLocation `json:"top_priority_targets"`
	CampaignStrategy      string           `json:"campaign_strategy"`
	MessageFocus          string           `json:"message_focus"`
	Urgency               Urgency          `json:"urgency"`
}

// IssueTargeting are Rally the Base locations where the candidate is weak on
// one issue.
type IssueTargeting struct {
	Issue              string           `json:"issue"`
	TotalLocations     int              `json:"total_locations"`
	PercentageOfRally  float64          `json:"percentage_of_rally_base"`
	AverageIssueNet    float64          `json:"average_issue_performance"`
	AverageAffinity    float64          `json:"average_affinity"`
	TopTargets         []TargetLocation `json:"top_priority_targets"`
	CampaignStrategy   string           `json:"campaign_strategy"`
	MessageFocus       string           `json:"message_focus"`
	Urgency            Urgency          `json:"urgency"`
	RecommendedActions []string         `json:"recommended_actions"`
}

// RallySummary describes the Rally the Base segment as a whole.
type RallySummary struct {
	TotalLocations    int              `json:"total_rally_base_locations"`
	PercentageOfTotal float64          `json:"percentage_of_total_segments"`
	AverageAffinity   float64          `json:"average_affinity"`
	AveragePopularity float64          `json:"average_popularity"`
	Strongest         []TargetLocation `json:"strongest_rally_areas"`
	Center            [2]float64       `json:"center_coordinates"`
}

// Recommendations is the campaign manager guidance of a rally report.
type Recommendations struct {
	PriorityActions    []string          `json:"priority_actions"`
	ResourceAllocation map[string]string `json:"resource_allocation_suggestions"`
	TotalTargetable    int               `json:"total_targetable_locations"`
	Timeline           string            `json:"campaign_timeline"`
	SuccessMetrics     []string          `json:"success_metrics"`
}

// RallyReport is the Rally the Base targeting breakdown.
type RallyReport struct {
	Status           string            `json:"status"`
	Message          string            `json:"message"`
	Recommendation   string            `json:"recommendation,omitempty"`
	Metadata         analysis.Metadata `json:"analysis_metadata"`
	SwingVoters      *SwingVoters      `json:"swing_voters,omitempty"`
	BaseIntroduction *BaseIntroduction `json:"base_introduction,omitempty"`
	IssueTargeting   []IssueTargeting  `json:"issue_targeting"`
	Summary          *RallySummary     `json:"rally_base_summary,omitempty"`
	Recommendations  *Recommendations  `json:"campaign_recommendations,omitempty"`
	NextSteps        []string          `json:"next_steps,omitempty"`
}

func ptr(v float64) *float64 { return &v }

func meanOf(rs []analysis.CompositeRecord, f func(analysis.CompositeRecord) float64) float64 {
	vals := make([]float64, len(rs))
	for i, r := range rs {
		vals[i] = f(r)
	}
	return analysis.Mean(vals)
}

// byAffinity returns the n records with the highest affinity, keeping input
// order among ties.
func byAffinity(rs []analysis.CompositeRecord, n int) []analysis.CompositeRecord {
	out := append([]analysis.CompositeRecord(nil), rs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Affinity > out[j].Affinity })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func issueLabel(issue string) string { return strings.ReplaceAll(issue, "_", " ") }

// IdentifyRallySegments breaks the Rally the Base quadrant into swing voters,
// base introduction targets and per-issue weaknesses. A table with no Rally
// the Base rows yields a warning report.
func IdentifyRallySegments(t *analysis.Table) *RallyReport {
	rep := &RallyReport{}
	if t != nil {
		rep.Metadata = t.Meta
	}
	rally := t.WithStrategy(signal.StrategyRallyTheBase)
	total := len(rally)
	if total == 0 {
		rep.Status = errors.StatusWarning
		rep.Message = NoRallyMessage
		rep.Recommendation = NoRallyRecommendation
		return rep
	}
	pct := func(n int) float64 { return analysis.Round1(analysis.Percent(n, total)) }

	var swing, intro []analysis.CompositeRecord
	for _, r := range rally {
		if r.PopularityStatus == analysis.StatusTrailingOpponent {
			swing = append(swing, r)
		}
		if r.BasePopularityStatus == analysis.StatusLessPopularThanParty {
			intro = append(intro, r)
		}
	}

	if len(swing) > 0 {
		p := pct(len(swing))
		rep.SwingVoters = &SwingVoters{
			TotalLocations:    len(swing),
			PercentageOfRally: p,
			AverageNet:        analysis.Round2(meanOf(swing, func(r analysis.CompositeRecord) float64 { return r.NetPopularity })),
			AverageAffinity:   analysis.Round2(meanOf(swing, func(r analysis.CompositeRecord) float64 { return r.Affinity })),
			AveragePopularity: analysis.Round2(meanOf(swing, func(r analysis.CompositeRecord) float64 { return r.Popularity })),
			CampaignStrategy: fmt.Sprintf("Target high-affinity supporters who are currently have %s more popular than %s",
				t.Meta.Opponent, t.Meta.Candidate),
			MessageFocus: "Reinforce commitment to core values while addressing opponent's advantages",
			Urgency:      Urgency(swingUrgency.Evaluate(p)),
		}
	}

	if len(intro) > 0 {
		p := pct(len(intro))
		bi := &BaseIntroduction{
			TotalLocations:        len(intro),
			PercentageOfRally:     p,
			AverageNetBase:        analysis.Round2(meanOf(intro, func(r analysis.CompositeRecord) float64 { return r.NetBasePopularity })),
			AverageAffinity:       analysis.Round2(meanOf(intro, func(r analysis.CompositeRecord) float64 { return r.Affinity })),
			AverageBasePopularity: analysis.Round2(meanOf(intro, func(r analysis.CompositeRecord) float64 { return r.BasePopularity })),
			CampaignStrategy:      "Introduce candidate to party base using party ideology and shared values. These locations have more party supporters who are yet to have the same affection to candidate",
			MessageFocus:          "Emphasize party alignment, shared goals, and candidate's commitment to base priorities",
			Urgency:               Urgency(baseIntroUrgency.Evaluate(p)),
		}
		for _, r := range byAffinity(intro, topTargets) {
			bi.TopTargets = append(bi.TopTargets, TargetLocation{
				Latitude: r.Latitude, Longitude: r.Longitude, Affinity: r.Affinity,
				BasePopularity: ptr(r.BasePopularity), NetBasePopularity: ptr(r.NetBasePopularity),
				Geohash: r.Geohash,
			})
		}
		rep.BaseIntroduction = bi
	}

	for _, issue := range t.Issues {
		it := issueTargets(rally, issue, pct)
		if it != nil {
			rep.IssueTargeting = append(rep.IssueTargeting, *it)
		}
	}

	rep.Summary = rallySummary(rally, t.Len())
	rep.Recommendations = recommend(rep)
	rep.Status = errors.StatusSuccess
	rep.Message = fmt.Sprintf("Rally the Base targeting analysis completed for %s in %s", t.Meta.Candidate, t.Meta.Location)
	rep.NextSteps = []string{
		"Develop targeted messaging for swing voters, base introduction, and issue campaigns. You can ask for detailed targeted campaigns",
	}
	return rep
}

func issueTargets(rally []analysis.CompositeRecord, issue string, pct func(int) float64) *IssueTargeting {
	var weak []analysis.CompositeRecord
	for _, r := range rally {
		if m, ok := r.Issues.Get(issue); ok && m.Status == analysis.StatusIssueLessPopular {
			weak = append(weak, r)
		}
	}
	if len(weak) == 0 {
		return nil
	}
	net := func(r analysis.CompositeRecord) float64 {
		m, _ := r.Issues.Get(issue)
		return m.NetPopularity
	}
	p := pct(len(weak))
	label := issueLabel(issue)
	it := &IssueTargeting{
		Issue:             issue,
		TotalLocations:    len(weak),
		PercentageOfRally: p,
		AverageIssueNet:   analysis.Round2(meanOf(weak, net)),
		AverageAffinity:   analysis.Round2(meanOf(weak, func(r analysis.CompositeRecord) float64 { return r.Affinity })),
		CampaignStrategy: fmt.Sprintf("Address %s concerns with detailed policy positions. These locations have candidate less popular among those who follow this issue",
			label),
		MessageFocus: fmt.Sprintf("Showcase candidate's expertise and commitment on %s issues", label),
		Urgency:      Urgency(issueUrgency.Evaluate(p)),
		RecommendedActions: []string{
			fmt.Sprintf("Develop detailed %s policy briefs", label),
			fmt.Sprintf("Schedule %s-focused events in target areas", label),
			fmt.Sprintf("Target these locations for %s related ads", label),
		},
	}

	sorted := append([]analysis.CompositeRecord(nil), weak...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ni, nj := net(sorted[i]), net(sorted[j])
		if ni != nj {
			return ni < nj
		}
		return sorted[i].Affinity > sorted[j].Affinity
	})
	if len(sorted) > topTargets {
		sorted = sorted[:topTargets]
	}
	for _, r := range sorted {
		it.TopTargets = append(it.TopTargets, TargetLocation{
			Latitude: r.Latitude, Longitude: r.Longitude, Affinity: r.Affinity,
			NetPopularity: ptr(net(r)), Geohash: r.Geohash,
		})
	}
	return it
}

func rallySummary(rally []analysis.CompositeRecord, total int) *RallySummary {
	s := &RallySummary{
		TotalLocations:    len(rally),
		PercentageOfTotal: analysis.Round1(analysis.Percent(len(rally), total)),
		AverageAffinity:   analysis.Round2(meanOf(rally, func(r analysis.CompositeRecord) float64 { return r.Affinity })),
		AveragePopularity: analysis.Round2(meanOf(rally, func(r analysis.CompositeRecord) float64 { return r.Popularity })),
	}
	for _, r := range byAffinity(rally, topTargets) {
		s.Strongest = append(s.Strongest, TargetLocation{
			Latitude: r.Latitude, Longitude: r.Longitude, Affinity: r.Affinity,
			Popularity: ptr(r.Popularity), Geohash: r.Geohash,
		})
	}
	lat := meanOf(rally, func(r analysis.CompositeRecord) float64 { return r.Latitude })
	lon := meanOf(rally, func(r analysis.CompositeRecord) float64 { return r.Longitude })
	s.Center = [2]float64{round4(lat), round4(lon)}
	return s
}

func recommend(rep *RallyReport) *Recommendations {
	rec := &Recommendations{
		ResourceAllocation: make(map[string]string),
		Timeline:           RallyTimeline,
		SuccessMetrics:     append([]string(nil), RallySuccessMetrics...),
	}
	if sv := rep.SwingVoters; sv != nil {
		rec.TotalTargetable += sv.TotalLocations
		if sv.Urgency == UrgencyHigh {
			rec.PriorityActions = append(rec.PriorityActions,
				fmt.Sprintf("URGENT: %d swing voter locations need immediate attention", sv.TotalLocations))
			rec.ResourceAllocation["swing_voters"] = "40% of Rally Base budget"
		}
	}
	if bi := rep.BaseIntroduction; bi != nil {
		rec.TotalTargetable += bi.TotalLocations
		if bi.PercentageOfRally > baseIntroPriorityShare {
			rec.PriorityActions = append(rec.PriorityActions,
				fmt.Sprintf("Base Introduction: %d locations for party alignment messaging", bi.TotalLocations))
			rec.ResourceAllocation["base_introduction"] = "30% of Rally Base budget"
		}
	}
	var high []string
	highCount := 0
	for _, it := range rep.IssueTargeting {
		rec.TotalTargetable += it.TotalLocations
		if it.Urgency == UrgencyHigh {
			high = append(high, it.Issue)
			highCount += it.TotalLocations
		}
	}
	if len(high) > 0 {
		rec.PriorityActions = append(rec.PriorityActions,
			fmt.Sprintf("Issue Focus: Address %s in %d locations", strings.Join(high, ", "), highCount))
		rec.ResourceAllocation["issue_campaigns"] = "30% of Rally Base budget"
	}
	return rec
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

//Personal.AI order the ending
