package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// FakeProvider is a programmable signal.Provider. Grids are looked up by
// GridKey of the request; errors queued in GridErrs are returned first, one
// per call.
type FakeProvider struct {
	mu sync.Mutex

	Matches   map[string][]signal.Match
	SearchErr map[string]error
	Grids     map[string][]signal.LocationPoint
	GridErrs  []error
	// Rejected makes GetGrid answer Success=false with this reason.
	Rejected string

	SearchCalls []signal.SearchRequest
	GridCalls   []signal.GridRequest
}

// NewFakeProvider returns an empty fake.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Matches:   make(map[string][]signal.Match),
		SearchErr: make(map[string]error),
		Grids:     make(map[string][]signal.LocationPoint),
	}
}

// GridKey identifies a grid request: "entity:<ids>", "tag:<ids>",
// "audience:<ids>" or "location".
func GridKey(req signal.GridRequest) string {
	switch {
	case len(req.EntityIDs) > 0:
		return "entity:" + strings.Join(req.EntityIDs, "+")
	case len(req.TagIDs) > 0:
		return "tag:" + strings.Join(req.TagIDs, "+")
	case len(req.AudienceIDs) > 0:
		return "audience:" + strings.Join(req.AudienceIDs, "+")
	default:
		return "location"
	}
}

// AddEntity registers a single-match entity search.
func (f *FakeProvider) AddEntity(query, id string) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Matches[query] = []signal.Match{{ID: id, Name: query, Type: "urn:entity:person", Score: 1}}
	return f
}

// AddGrid registers the points returned for key.
func (f *FakeProvider) AddGrid(key string, pts ...signal.LocationPoint) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Grids[key] = pts
	return f
}

func (f *FakeProvider) Search(_ context.Context, req signal.SearchRequest) (*signal.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SearchCalls = append(f.SearchCalls, req)
	if err := f.SearchErr[req.Query]; err != nil {
		return nil, err
	}
	m := f.Matches[req.Query]
	if req.Limit > 0 && len(m) > req.Limit {
		m = m[:req.Limit]
	}
	return &signal.SearchResult{Success: len(m) > 0, Matches: m}, nil
}

func (f *FakeProvider) GetGrid(_ context.Context, req signal.GridRequest) (*signal.GridResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GridCalls = append(f.GridCalls, req)
	if len(f.GridErrs) > 0 {
		err := f.GridErrs[0]
		f.GridErrs = f.GridErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.Rejected != "" {
		return &signal.GridResult{Success: false, Error: f.Rejected}, nil
	}
	pts := append([]signal.LocationPoint(nil), f.Grids[GridKey(req)]...)
	return &signal.GridResult{Success: true, Points: pts}, nil
}

// GridCallCount returns the number of grid calls made so far.
func (f *FakeProvider) GridCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.GridCalls)
}

//Personal.AI order the ending
