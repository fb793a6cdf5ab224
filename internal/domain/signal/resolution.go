package signal

import "fmt"

// Kind distinguishes what a name is resolved against.
type Kind string

const (
	KindEntity Kind = "entity"
	KindTag    Kind = "tag"
)

// Match is one search hit returned by the provider.
type Match struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Subtype string   `json:"subtype,omitempty"`
	Types   []string `json:"types,omitempty"`
	Score   float64  `json:"score"`
}

// Resolved records the outcome of resolving one name. Failed resolutions
// carry Success=false and the reason; they never abort the batch.
type Resolved struct {
	Key         string  `json:"key"`
	Kind        Kind    `json:"kind"`
	SearchTerm  string  `json:"search_term"`
	ID          string  `json:"id,omitempty"`
	MatchedName string  `json:"matched_name,omitempty"`
	Type        string  `json:"type,omitempty"`
	Score       float64 `json:"score,omitempty"`
	MatchRank   int     `json:"match_rank,omitempty"`
	Success     bool    `json:"success"`
	Error       string  `json:"error,omitempty"`
}

// Failed builds an unsuccessful resolution.
func Failed(kind Kind, name, reason string) Resolved {
	return Resolved{Key: name, Kind: kind, SearchTerm: name, Error: reason}
}

// Resolution aggregates the outcome of resolving a batch of names. Order
// follows the caller's input.
type Resolution struct {
	Entities  []Resolved `json:"entities"`
	Tags      []Resolved `json:"tags"`
	EntityIDs []string   `json:"entity_ids"`
	TagIDs    []string   `json:"tag_ids"`
	Errors    []string   `json:"errors,omitempty"`
}

// AddEntity appends an entity outcome.
func (r *Resolution) AddEntity(res Resolved) {
	r.Entities = append(r.Entities, res)
	if res.Success {
		r.EntityIDs = append(r.EntityIDs, res.ID)
		return
	}
	r.Errors = append(r.Errors, fmt.Sprintf("Could not resolve entity: %s (%s)", res.SearchTerm, res.Error))
}

// AddTags appends the outcomes of one tag search.
func (r *Resolution) AddTags(res []Resolved) {
	for _, t := range res {
		r.Tags = append(r.Tags, t)
		if t.Success {
			r.TagIDs = append(r.TagIDs, t.ID)
			continue
		}
		r.Errors = append(r.Errors, fmt.Sprintf("Could not resolve tag: %s (%s)", t.SearchTerm, t.Error))
	}
}

// Entity returns the outcome for the given name.
func (r *Resolution) Entity(name string) (Resolved, bool) {
	for _, e := range r.Entities {
		if e.SearchTerm == name {
			return e, true
		}
	}
	return Resolved{}, false
}

// HasEntities reports whether at least one entity id was resolved.
func (r *Resolution) HasEntities() bool { return len(r.EntityIDs) > 0 }

// TagsFor returns every successful tag resolved from the given search term.
func (r *Resolution) TagsFor(term string) []Resolved {
	var out []Resolved
	for _, t := range r.Tags {
		if t.Success && t.SearchTerm == term {
			out = append(out, t)
		}
	}
	return out
}

//Personal.AI order the ending
