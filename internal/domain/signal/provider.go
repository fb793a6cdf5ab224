package signal

import "context"

// SearchRequest asks the provider for the best matches of a name.
type SearchRequest struct {
	Query  string
	Kind   Kind
	Limit  int
	SortBy string
}

// SearchResult is the provider's answer to a search. Success=false with an
// empty Error means the provider simply found nothing.
type SearchResult struct {
	Success bool
	Matches []Match
	Error   string
}

// GridRequest is the provider-facing heatmap query. The signal bundle
// (demographics, audiences) is only sent when WithSignals is true.
type GridRequest struct {
	Location       string
	EntityIDs      []string
	TagIDs         []string
	AudienceIDs    []string
	AudienceWeight *float64
	Demographics   Demographics
	WithSignals    bool
	Boundary       string
	BiasTrends     string
	Limit          int
}

// GridResult carries raw points; affinity and popularity may be NaN.
type GridResult struct {
	Success bool
	Points  []LocationPoint
	Error   string
}

// Provider is the cultural-intelligence API as seen by the domain.
type Provider interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	GetGrid(ctx context.Context, req GridRequest) (*GridResult, error)
}

//Personal.AI order the ending
