// Package reporting renders stored analyses into downloadable campaign
// reports.
package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// ContentTypeMarkdown is the media type of rendered reports.
const ContentTypeMarkdown = "text/markdown"

const (
	sectionLocations      = 5
	goldminePriorityFloor = 0.7
	introductionFocusCap  = 10
	reportDateLayout      = "January 02, 2006 at 03:04 PM"
)

var headlines = map[signal.Strategy]string{
	signal.StrategyRallyTheBase:   "High affinity, high popularity",
	signal.StrategyHiddenGoldmine: "High affinity, low popularity",
	signal.StrategyBringThemOver:  "Low affinity, high popularity",
	signal.StrategyDeepConversion: "Low affinity, low popularity",
}

// TableLoader loads a stored analysis. An empty key addresses the latest one.
type TableLoader interface {
	Load(ctx context.Context, key string) (*analysis.Table, error)
}

// ArtifactStore persists rendered reports.
type ArtifactStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ReportLocation is one listed location.
type ReportLocation struct {
	Geohash    string
	Affinity   float64
	Popularity float64
}

// Section is the per-quadrant block of the report.
type Section struct {
	Strategy      signal.Strategy
	Headline      string
	Count         int
	Percent       float64
	AvgAffinity   float64
	AvgPopularity float64
	Top           []ReportLocation
	Bottom        []ReportLocation
}

// IssueWeakness counts Rally the Base locations weak on one issue.
type IssueWeakness struct {
	Name    string
	Count   int
	Percent float64
}

// ReportData is the input of the campaign report template.
type ReportData struct {
	Meta                 analysis.Metadata
	Generated            string
	Total                int
	Segments             []Section
	Rally                Section
	Goldmine             Section
	BringThemOver        Section
	DeepConversion       Section
	TrailingOpponent     int
	BaseIntroduction     int
	IssueWeaknesses      []IssueWeakness
	TopIssue             *IssueWeakness
	HighPriorityGoldmine int
	IntroductionFocus    int
}

// ReportSummary counts locations per quadrant.
type ReportSummary struct {
	SegmentsAnalyzed int `json:"segments_analyzed"`
	TotalLocations   int `json:"total_locations"`
	RallyBase        int `json:"rally_base_locations"`
	HiddenGoldmine   int `json:"hidden_goldmine_locations"`
	BringThemOver    int `json:"bring_them_over_locations"`
	DeepConversion   int `json:"deep_conversion_locations"`
}

// ReportResult describes a stored report.
type ReportResult struct {
	Status     string        `json:"status"`
	Message    string        `json:"message"`
	Filename   string        `json:"report_filename"`
	Version    string        `json:"report_version"`
	Summary    ReportSummary `json:"report_summary"`
	FileSizeKB float64       `json:"file_size_kb"`
	Contains   []string      `json:"contains"`
	NextSteps  []string      `json:"next_steps"`
	Markdown   string        `json:"markdown,omitempty"`
}

func section(t *analysis.Table, st signal.Strategy) Section {
	rows := t.WithStrategy(st)
	s := Section{
		Strategy: st,
		Headline: headlines[st],
		Count:    len(rows),
		Percent:  analysis.Percent(len(rows), t.Len()),
	}
	if len(rows) == 0 {
		return s
	}
	aff := make([]float64, len(rows))
	pop := make([]float64, len(rows))
	for i, r := range rows {
		aff[i], pop[i] = r.Affinity, r.Popularity
	}
	s.AvgAffinity = analysis.Mean(aff)
	s.AvgPopularity = analysis.Mean(pop)

	sorted := append([]analysis.CompositeRecord(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Affinity > sorted[j].Affinity })
	for i := 0; i < len(sorted) && i < sectionLocations; i++ {
		s.Top = append(s.Top, reportLocation(sorted[i]))
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Affinity < sorted[j].Affinity })
	for i := 0; i < len(sorted) && i < sectionLocations; i++ {
		s.Bottom = append(s.Bottom, reportLocation(sorted[i]))
	}
	return s
}

func reportLocation(r analysis.CompositeRecord) ReportLocation {
	return ReportLocation{Geohash: r.Geohash, Affinity: r.Affinity, Popularity: r.Popularity}
}

// NewReportData derives the template input from a table.
func NewReportData(t *analysis.Table, generated time.Time) *ReportData {
	d := &ReportData{
		Meta:           t.Meta,
		Generated:      generated.Format(reportDateLayout),
		Total:          t.Len(),
		Rally:          section(t, signal.StrategyRallyTheBase),
		Goldmine:       section(t, signal.StrategyHiddenGoldmine),
		BringThemOver:  section(t, signal.StrategyBringThemOver),
		DeepConversion: section(t, signal.StrategyDeepConversion),
	}
	d.Segments = []Section{d.Rally, d.Goldmine, d.BringThemOver, d.DeepConversion}

	rally := t.WithStrategy(signal.StrategyRallyTheBase)
	for _, r := range rally {
		if r.PopularityStatus == analysis.StatusTrailingOpponent {
			d.TrailingOpponent++
		}
		if r.BasePopularityStatus == analysis.StatusLessPopularThanParty {
			d.BaseIntroduction++
		}
	}
	for _, issue := range t.Issues {
		n := 0
		for _, r := range rally {
			if m, ok := r.Issues.Get(issue); ok && m.Status == analysis.StatusIssueLessPopular {
				n++
			}
		}
		if n == 0 {
			continue
		}
		w := IssueWeakness{Name: issue, Count: n, Percent: analysis.Percent(n, len(rally))}
		d.IssueWeaknesses = append(d.IssueWeaknesses, w)
		if d.TopIssue == nil || w.Count > d.TopIssue.Count {
			top := w
			d.TopIssue = &top
		}
	}

	for _, r := range t.WithStrategy(signal.StrategyHiddenGoldmine) {
		if r.Affinity > goldminePriorityFloor {
			d.HighPriorityGoldmine++
		}
	}
	d.IntroductionFocus = int(math.Min(float64(d.HighPriorityGoldmine), introductionFocusCap))
	return d
}

// CampaignReportService renders and stores campaign reports.
type CampaignReportService struct {
	tables    TableLoader
	artifacts ArtifactStore
	engine    *Engine
	logger    logging.Logger
	now       func() time.Time
}

// NewCampaignReportService creates the service. now may be nil.
func NewCampaignReportService(tables TableLoader, artifacts ArtifactStore, logger logging.Logger, now func() time.Time) (*CampaignReportService, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &CampaignReportService{
		tables:    tables,
		artifacts: artifacts,
		engine:    engine,
		logger:    logger.Named("reporting"),
		now:       now,
	}, nil
}

// Render produces the markdown report of a table without storing it.
func (s *CampaignReportService) Render(t *analysis.Table) ([]byte, error) {
	return s.engine.Render(CampaignReportTemplate, NewReportData(t, s.now()))
}

// Generate renders the report of the analysis under key (latest when empty)
// and stores it as campaign_report_<candidate>_<location>.md.
func (s *CampaignReportService) Generate(ctx context.Context, key string) (*ReportResult, error) {
	t, err := s.tables.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	md, err := s.Render(t)
	if err != nil {
		s.logger.Error("report rendering failed", logging.AnalysisKey(t.Meta.Key), logging.Err(err))
		return nil, err
	}

	name := analysis.ReportKey(t.Meta.Candidate, t.Meta.Location)
	version, err := s.artifacts.Save(ctx, name, md, ContentTypeMarkdown)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to store campaign report")
	}
	s.logger.Info("campaign report saved",
		logging.String("filename", name),
		logging.String("version", version),
		logging.Int("bytes", len(md)))

	sum := analysis.Summarize(t)
	return &ReportResult{
		Status:   errors.StatusSuccess,
		Message:  fmt.Sprintf("Campaign report generated for %s vs %s", t.Meta.Candidate, t.Meta.Opponent),
		Filename: name,
		Version:  version,
		Summary: ReportSummary{
			SegmentsAnalyzed: len(signal.Strategies),
			TotalLocations:   t.Len(),
			RallyBase:        sum.Quadrant(signal.StrategyRallyTheBase).Count,
			HiddenGoldmine:   sum.Quadrant(signal.StrategyHiddenGoldmine).Count,
			BringThemOver:    sum.Quadrant(signal.StrategyBringThemOver).Count,
			DeepConversion:   sum.Quadrant(signal.StrategyDeepConversion).Count,
		},
		FileSizeKB: analysis.Round1(float64(len(md)) / 1024),
		Contains: []string{
			"Executive Summary",
			"Detailed Segment Analysis",
			"Top/Bottom Locations per Segment",
			"Strategic Action Plans",
			"Resource Allocation Guidance",
			"Timeline and KPIs",
		},
		NextSteps: []string{
			fmt.Sprintf("Download the report from artifacts: '%s'", name),
			"Review strategic recommendations for each segment",
			"Implement immediate actions for Rally Base and Hidden Goldmine",
			"Schedule follow-up analysis in 2-4 weeks to track progress",
		},
		Markdown: string(md),
	}, nil
}

//Personal.AI order the ending
