package heatmap

import (
	"context"
	"fmt"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Request is a heatmap query expressed in human-readable names.
type Request struct {
	Location       string   `json:"location"`
	Entities       []string `json:"entities,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	AudienceIDs    []string `json:"audience_ids,omitempty"`
	AudienceWeight *float64 `json:"audience_weight,omitempty"`
	Age            string   `json:"age,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	Boundary       string   `json:"boundary,omitempty"`
	BiasTrends     string   `json:"bias_trends,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	// RequireEntities makes an unresolved entity list terminal.
	RequireEntities bool `json:"require_entities,omitempty"`
}

// Demographics returns the request's demographic filter.
func (r Request) Demographics() signal.Demographics {
	return signal.Demographics{Age: r.Age, Gender: r.Gender}
}

// Result is an annotated grid with the resolution that produced it.
type Result struct {
	Location   string             `json:"location"`
	Resolution *signal.Resolution `json:"resolution"`
	Grid       *signal.Grid       `json:"grid"`
	Message    string             `json:"message"`
}

// SummaryResult wraps a hotspot summary with its context.
type SummaryResult struct {
	Location   string             `json:"location"`
	Resolution *signal.Resolution `json:"resolution"`
	Summary    HotspotSummary     `json:"analysis"`
	Message    string             `json:"message"`
}

// RankingResult wraps a top or bottom list with its context.
type RankingResult struct {
	Location   string             `json:"location"`
	Resolution *signal.Resolution `json:"resolution"`
	Ranking    Ranking            `json:"ranking"`
	Message    string             `json:"message"`
}

// Service exposes location-grid retrieval and the views built on it.
type Service interface {
	Locate(ctx context.Context, req Request) (*Result, error)
	Summary(ctx context.Context, req Request) (*SummaryResult, error)
	Top(ctx context.Context, req Request, n int, minScore float64) (*RankingResult, error)
	Bottom(ctx context.Context, req Request, n int, maxScore float64) (*RankingResult, error)
}

type service struct {
	resolver *Resolver
	fetcher  GridFetcher
	logger   logging.Logger
}

// NewService builds the heatmap service.
func NewService(resolver *Resolver, fetcher GridFetcher, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &service{resolver: resolver, fetcher: fetcher, logger: logger.Named("heatmap")}
}

// Locate resolves names, fetches one grid and annotates it. Input errors and
// an unresolved required entity fail before the grid endpoint is called. A
// provider failure is reported in the message with an empty grid.
func (s *service) Locate(ctx context.Context, req Request) (*Result, error) {
	q := GridQuery{
		Name:           "heatmap",
		Location:       req.Location,
		AudienceIDs:    req.AudienceIDs,
		AudienceWeight: req.AudienceWeight,
		Demographics:   req.Demographics(),
		Limit:          req.Limit,
		Boundary:       req.Boundary,
		BiasTrends:     req.BiasTrends,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	res := s.resolver.ResolveAll(ctx, req.Entities, req.Tags)
	if req.RequireEntities && len(req.Entities) > 0 && !res.HasEntities() {
		return nil, errors.Newf(errors.ErrCodeResolutionFailure, "could not resolve any of %v", req.Entities).
			WithSuggestions("Check the entity name spelling", "Try a more widely known name")
	}
	q.EntityIDs = res.EntityIDs
	q.TagIDs = res.TagIDs

	g, err := s.fetcher.Fetch(ctx, q)
	out := &Result{Location: req.Location, Resolution: res, Grid: g}
	if err != nil {
		if errors.IsValidation(err) {
			return nil, err
		}
		res.Errors = append(res.Errors, "Heatmap API call failed: "+err.Error())
		out.Message = "Heatmap data retrieval failed: " + g.Error
		return out, nil
	}
	out.Message = fmt.Sprintf("Retrieved %d heatmap data points for %s", g.Len(), req.Location)
	return out, nil
}

func (s *service) nonEmpty(ctx context.Context, req Request) (*Result, error) {
	r, err := s.Locate(ctx, req)
	if err != nil {
		return nil, err
	}
	if r.Grid.IsEmpty() {
		msg := "No heatmap data points found"
		if r.Grid.Error != "" {
			msg = r.Message
		}
		return nil, errors.New(errors.ErrCodeEmptyGrid, msg).
			WithSuggestions("Try a broader geographic area", "Remove demographic filters")
	}
	return r, nil
}

// Summary buckets the grid into hotspot tiers with recommendations.
func (s *service) Summary(ctx context.Context, req Request) (*SummaryResult, error) {
	r, err := s.nonEmpty(ctx, req)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{
		Location:   req.Location,
		Resolution: r.Resolution,
		Summary:    Summarize(r.Grid),
		Message:    fmt.Sprintf("Analyzed %d locations in %s", r.Grid.Len(), req.Location),
	}, nil
}

// Top lists the best-scoring locations.
func (s *service) Top(ctx context.Context, req Request, n int, minScore float64) (*RankingResult, error) {
	r, err := s.nonEmpty(ctx, req)
	if err != nil {
		return nil, err
	}
	rk := Top(r.Grid, n, minScore)
	return &RankingResult{
		Location:   req.Location,
		Resolution: r.Resolution,
		Ranking:    rk,
		Message:    fmt.Sprintf("Found %d top locations in %s", len(rk.Locations), req.Location),
	}, nil
}

// Bottom lists the worst-scoring locations.
func (s *service) Bottom(ctx context.Context, req Request, n int, maxScore float64) (*RankingResult, error) {
	r, err := s.nonEmpty(ctx, req)
	if err != nil {
		return nil, err
	}
	rk := Bottom(r.Grid, n, maxScore)
	return &RankingResult{
		Location:   req.Location,
		Resolution: r.Resolution,
		Ranking:    rk,
		Message:    fmt.Sprintf("Found %d worst performing locations in %s", len(rk.Locations), req.Location),
	}, nil
}

//Personal.AI order the ending
