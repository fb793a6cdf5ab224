package heatmap

import (
	"context"
	"fmt"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

// Search limits used when resolving names.
const (
	EntitySearchLimit = 2
	TagSearchLimit    = 5
	EntitySortBy      = "match"
)

// Resolver turns human-readable entity and tag names into provider ids.
// Every failure is recorded per name; none aborts the batch.
type Resolver struct {
	provider signal.Provider
	logger   logging.Logger
	metrics  MetricsCollector
}

// NewResolver builds a resolver.
func NewResolver(provider signal.Provider, logger logging.Logger, metrics MetricsCollector) *Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Resolver{provider: provider, logger: logger.Named("resolver"), metrics: metrics}
}

// ResolveEntity issues one search and keeps the top-ranked match.
func (r *Resolver) ResolveEntity(ctx context.Context, name string) signal.Resolved {
	res, err := r.provider.Search(ctx, signal.SearchRequest{
		Query: name, Kind: signal.KindEntity, Limit: EntitySearchLimit, SortBy: EntitySortBy,
	})
	if err != nil {
		r.record(signal.KindEntity, "error")
		r.logger.Error("entity resolution failed", logging.String("name", name), logging.Err(err))
		return signal.Failed(signal.KindEntity, name, err.Error())
	}
	if res == nil || !res.Success || len(res.Matches) == 0 {
		r.record(signal.KindEntity, "not_found")
		r.logger.Warn("entity not found", logging.String("name", name))
		return signal.Failed(signal.KindEntity, name, "Entity not found")
	}
	m := res.Matches[0]
	r.record(signal.KindEntity, "success")
	r.logger.Info("entity resolved",
		logging.String("name", name), logging.String("matched", m.Name), logging.String("id", m.ID))
	return signal.Resolved{
		Key:         name,
		Kind:        signal.KindEntity,
		SearchTerm:  name,
		ID:          m.ID,
		MatchedName: m.Name,
		Type:        m.Type,
		Score:       m.Score,
		MatchRank:   1,
		Success:     true,
	}
}

// ResolveTag issues one search and keeps every returned tag that carries an
// id. Keys are name, name_1, name_2 and so on.
func (r *Resolver) ResolveTag(ctx context.Context, name string) []signal.Resolved {
	res, err := r.provider.Search(ctx, signal.SearchRequest{
		Query: name, Kind: signal.KindTag, Limit: TagSearchLimit,
	})
	if err != nil {
		r.record(signal.KindTag, "error")
		r.logger.Error("tag resolution failed", logging.String("name", name), logging.Err(err))
		return []signal.Resolved{signal.Failed(signal.KindTag, name, err.Error())}
	}
	if res == nil || !res.Success || len(res.Matches) == 0 {
		reason := "Tag not found"
		if res != nil && res.Error != "" {
			reason = res.Error
		}
		r.record(signal.KindTag, "not_found")
		r.logger.Warn("tag not found", logging.String("name", name))
		return []signal.Resolved{signal.Failed(signal.KindTag, name, reason)}
	}

	var out []signal.Resolved
	for i, m := range res.Matches {
		if m.ID == "" {
			continue
		}
		key := name
		if i > 0 {
			key = fmt.Sprintf("%s_%d", name, i)
		}
		out = append(out, signal.Resolved{
			Key:         key,
			Kind:        signal.KindTag,
			SearchTerm:  name,
			ID:          m.ID,
			MatchedName: m.Name,
			Type:        m.Subtype,
			Score:       m.Score,
			MatchRank:   i + 1,
			Success:     true,
		})
	}
	if len(out) == 0 {
		r.record(signal.KindTag, "not_found")
		return []signal.Resolved{signal.Failed(signal.KindTag, name, "No valid tag ID found in results")}
	}
	r.record(signal.KindTag, "success")
	r.logger.Info("tag resolved", logging.String("name", name), logging.Int("matches", len(out)))
	return out
}

// ResolveAll resolves every entity then every tag, in input order.
func (r *Resolver) ResolveAll(ctx context.Context, entities, tags []string) *signal.Resolution {
	res := &signal.Resolution{}
	for _, name := range entities {
		res.AddEntity(r.ResolveEntity(ctx, name))
	}
	for _, name := range tags {
		res.AddTags(r.ResolveTag(ctx, name))
	}
	return res
}

func (r *Resolver) record(kind signal.Kind, outcome string) {
	r.metrics.IncCounter(metricResolveTotal, map[string]string{"kind": string(kind), "outcome": outcome})
}

//Personal.AI order the ending
