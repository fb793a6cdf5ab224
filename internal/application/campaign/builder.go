package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/Resonance-Intelligence/internal/application/heatmap"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Political base audiences.
const (
	AudienceProgressive  = "urn:audience:political_preferences:politically_progressive"
	AudienceConservative = "urn:audience:political_preferences:politically_conservative"
	AudienceCenter       = "urn:audience:political_preferences:center"
)

// BaseAudience maps a political base name to its audience id. Anything other
// than progressive or conservative is treated as center.
func BaseAudience(base string) string {
	switch strings.ToLower(strings.TrimSpace(base)) {
	case "progressive":
		return AudienceProgressive
	case "conservative":
		return AudienceConservative
	default:
		return AudienceCenter
	}
}

// Suggestions attached to terminal build failures.
var (
	NoOverlapSuggestions = []string{
		"Try a different location (e.g., 'New York' instead of 'NYC')",
		"Check candidate name spelling",
		"Try a broader geographic area",
		"Verify the location exists in the database",
	}
	BaseMissingSuggestions = []string{
		"Try a different location",
		"Check if the political base is valid (progressive, conservative, center)",
		"Try a broader geographic area",
	}
	FailureSuggestions = []string{
		"Check that the location name is valid and recognizable (e.g., 'Phoenix, Arizona' instead of 'Philadephia')",
		"Verify candidate names are spelled correctly",
		"Try using a broader geographic area",
		"Check the logs for more specific error details",
	}
)

// AnalysisRequest names the two candidates, the political base and the
// issues to compare in one location.
type AnalysisRequest struct {
	Candidate string   `json:"candidate"`
	Opponent  string   `json:"opponent"`
	Base      string   `json:"base"`
	Issues    []string `json:"issues,omitempty"`
	Location  string   `json:"location"`
	Age       string   `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
}

// Demographics returns the demographic filter shared by every grid.
func (r AnalysisRequest) Demographics() signal.Demographics {
	return signal.Demographics{Age: r.Age, Gender: r.Gender}
}

// Validate checks required fields and demographic enums.
func (r AnalysisRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Candidate) == "" {
		missing = append(missing, "candidate")
	}
	if strings.TrimSpace(r.Opponent) == "" {
		missing = append(missing, "opponent")
	}
	if strings.TrimSpace(r.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return errors.Newf(errors.ErrCodeValidation, "%s required", strings.Join(missing, ", "))
	}
	if strings.TrimSpace(r.Base) == "" {
		return errors.New(errors.ErrCodeInvalidPoliticalBase, "candidate base is required").
			WithSuggestions("Use one of progressive, conservative, center")
	}
	return r.Demographics().Validate()
}

// Builder assembles composite analysis tables.
type Builder struct {
	resolver      *heatmap.Resolver
	fetcher       heatmap.GridFetcher
	retry         heatmap.RetryPolicy
	clock         heatmap.Clock
	logger        logging.Logger
	metrics       MetricsCollector
	limit         int
	parallel      bool
	issueBaseline bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithRetryPolicy overrides the per-source retry policy.
func WithRetryPolicy(p heatmap.RetryPolicy) BuilderOption {
	return func(b *Builder) { b.retry = p }
}

// WithParallelFetch fetches independent sources concurrently.
func WithParallelFetch(on bool) BuilderOption {
	return func(b *Builder) { b.parallel = on }
}

// WithIssueBaseline fetches a base-audience grid per issue and compares issue
// popularity against it instead of the issue mean.
func WithIssueBaseline(on bool) BuilderOption {
	return func(b *Builder) { b.issueBaseline = on }
}

// WithGridLimit sets the point limit of every grid.
func WithGridLimit(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.limit = n
		}
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(c heatmap.Clock) BuilderOption {
	return func(b *Builder) {
		if c != nil {
			b.clock = c
		}
	}
}

// NewBuilder creates a Builder.
func NewBuilder(resolver *heatmap.Resolver, fetcher heatmap.GridFetcher, logger logging.Logger, metrics MetricsCollector, opts ...BuilderOption) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	b := &Builder{
		resolver: resolver,
		fetcher:  fetcher,
		retry:    heatmap.DefaultRetryPolicy(),
		clock:    heatmap.RealClock(),
		logger:   logger.Named("campaign-builder"),
		metrics:  metrics,
		limit:    heatmap.DefaultGridLimit,
	}
	for _, o := range opts {
		o(b)
	}
	if b.retry.Logger == nil {
		b.retry.Logger = b.logger
	}
	return b
}

// plan is the ordered list of grid queries for one analysis.
type plan struct {
	candidate heatmap.GridQuery
	opponent  heatmap.GridQuery
	base      heatmap.GridQuery
	issues    []issuePlan
}

type issuePlan struct {
	name     string
	query    *heatmap.GridQuery
	baseline *heatmap.GridQuery
}

func (p *plan) queries() []*heatmap.GridQuery {
	qs := []*heatmap.GridQuery{&p.candidate, &p.opponent, &p.base}
	for _, is := range p.issues {
		if is.query != nil {
			qs = append(qs, is.query)
		}
		if is.baseline != nil {
			qs = append(qs, is.baseline)
		}
	}
	return qs
}

// Build runs the full pipeline for req and returns the composite table. The
// returned error is an *errors.AppError whose code and suggestions describe
// the terminal failure: ErrCodeResolutionFailure, ErrCodeNoOverlap or
// ErrCodeBaseDataMissing.
func (b *Builder) Build(ctx context.Context, req AnalysisRequest) (*analysis.Table, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	b.logger.Info("starting candidate analysis",
		logging.String("candidate", req.Candidate),
		logging.String("opponent", req.Opponent),
		logging.Location(req.Location))

	p, err := b.plan(ctx, req)
	if err != nil {
		b.outcome("resolution_failure", start)
		return nil, err
	}

	grids, err := b.fetchAll(ctx, p)
	if err != nil {
		b.outcome("fetch_failure", start)
		return nil, err
	}

	src := analysis.Sources{Candidate: grids[&p.candidate], Opponent: grids[&p.opponent], Base: grids[&p.base]}
	for _, is := range p.issues {
		s := analysis.IssueSource{Name: is.name}
		if is.query != nil {
			s.Grid = grids[is.query]
		}
		if is.baseline != nil {
			s.Baseline = grids[is.baseline]
		}
		src.Issues = append(src.Issues, s)
	}
	b.logger.Info("sources fetched",
		logging.Int("candidate_points", src.Candidate.Len()),
		logging.Int("opponent_points", src.Opponent.Len()),
		logging.Int("base_points", src.Base.Len()))

	comp, err := analysis.Compose(src)
	if err != nil {
		b.outcome(string(errors.GetCode(err)), start)
		return nil, b.describe(err, req)
	}

	t := &analysis.Table{Issues: comp.Issues, Records: comp.Records}
	t.Meta = analysis.Metadata{
		ID:        uuid.New().String(),
		Key:       analysis.ArtifactKey(req.Candidate, req.Location),
		Candidate: req.Candidate,
		Opponent:  req.Opponent,
		Base:      req.Base,
		Location:  req.Location,
		Age:       req.Demographics().AgeLabel(),
		Gender:    req.Demographics().GenderLabel(),
		Tags:      append([]string(nil), req.Issues...),
		Skipped:   comp.Skipped,
		Rows:      t.Len(),
		Columns:   len(t.Columns()),
		CreatedAt: b.clock.Now().UTC(),
	}
	b.metrics.ObserveHistogram(metricAnalysisRows, float64(t.Len()), nil)
	b.outcome("success", start)
	b.logger.Info("analysis completed",
		logging.Int("rows", t.Meta.Rows),
		logging.Int("columns", t.Meta.Columns),
		logging.Strings("skipped", comp.Skipped))
	return t, nil
}

// plan resolves names into ids and lays out every grid query.
func (b *Builder) plan(ctx context.Context, req AnalysisRequest) (*plan, error) {
	cand := b.resolver.ResolveEntity(ctx, req.Candidate)
	opp := b.resolver.ResolveEntity(ctx, req.Opponent)
	var failed []string
	for _, r := range []signal.Resolved{cand, opp} {
		if !r.Success {
			failed = append(failed, fmt.Sprintf("%s (%s)", r.SearchTerm, r.Error))
		}
	}
	if len(failed) > 0 {
		return nil, errors.Newf(errors.ErrCodeResolutionFailure, "could not resolve %s", strings.Join(failed, ", ")).
			WithSuggestions("Check candidate name spelling", "Use the candidate's full name")
	}

	demo := req.Demographics()
	base := []string{BaseAudience(req.Base)}
	query := func(name string) heatmap.GridQuery {
		return heatmap.GridQuery{Name: name, Location: req.Location, Demographics: demo, Limit: b.limit}
	}

	p := &plan{
		candidate: query("candidate"),
		opponent:  query("opponent"),
		base:      query("base"),
	}
	p.candidate.EntityIDs = []string{cand.ID}
	p.opponent.EntityIDs = []string{opp.ID}
	p.base.AudienceIDs = base

	for _, issue := range req.Issues {
		ip := issuePlan{name: issue}
		var ids []string
		for _, r := range b.resolver.ResolveTag(ctx, issue) {
			if r.Success {
				ids = append(ids, r.ID)
			}
		}
		if len(ids) == 0 {
			b.logger.Warn("issue tag not resolved, skipping", logging.String("issue", issue))
			p.issues = append(p.issues, ip)
			continue
		}
		q := query("tag:" + issue)
		q.TagIDs = ids
		ip.query = &q
		if b.issueBaseline {
			bq := query("base:" + issue)
			bq.TagIDs = ids
			bq.AudienceIDs = base
			ip.baseline = &bq
		}
		p.issues = append(p.issues, ip)
	}
	return p, nil
}

// fetchAll runs every query through the retry policy. Results are keyed by
// query so the merge order never depends on completion order.
func (b *Builder) fetchAll(ctx context.Context, p *plan) (map[*heatmap.GridQuery]*signal.Grid, error) {
	qs := p.queries()
	out := make([]*signal.Grid, len(qs))

	if !b.parallel {
		for i, q := range qs {
			g, err := b.retry.FetchWithRetry(ctx, b.fetcher, *q)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
	} else {
		eg, gctx := errgroup.WithContext(ctx)
		for i, q := range qs {
			i, q := i, q
			eg.Go(func() error {
				g, err := b.retry.FetchWithRetry(gctx, b.fetcher, *q)
				if err != nil {
					return err
				}
				out[i] = g
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	grids := make(map[*heatmap.GridQuery]*signal.Grid, len(qs))
	for i, q := range qs {
		grids[q] = out[i]
	}
	return grids, nil
}

// describe turns a composition failure into the caller-facing error.
func (b *Builder) describe(err error, req AnalysisRequest) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeNoOverlap:
		b.logger.Warn("no overlapping locations", logging.Err(err))
		return errors.Newf(errors.ErrCodeNoOverlap,
			"No overlapping data found between %s and %s in %s. This could be due to location not being recognized or candidates not having enough data in this area.",
			req.Candidate, req.Opponent, req.Location).
			WithCause(err).
			WithSuggestions(NoOverlapSuggestions...)
	case errors.ErrCodeBaseDataMissing:
		b.logger.Warn("political base grid empty", logging.String("base", req.Base))
		return errors.Newf(errors.ErrCodeBaseDataMissing,
			"No political base data found for %s in %s.", req.Base, req.Location).
			WithCause(err).
			WithSuggestions(BaseMissingSuggestions...)
	default:
		b.logger.Error("analysis failed", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeAnalysisFailed, "Analysis failed: "+err.Error()).
			WithSuggestions(FailureSuggestions...)
	}
}

func (b *Builder) outcome(outcome string, start time.Time) {
	labels := map[string]string{"outcome": outcome}
	b.metrics.IncCounter(metricAnalysisTotal, labels)
	b.metrics.ObserveHistogram(metricAnalysisDuration, time.Since(start).Seconds(), labels)
}

//Personal.AI order the ending
