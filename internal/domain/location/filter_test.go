package location

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

func record(lat, lon, aff, pop float64, status string) analysis.CompositeRecord {
	p := signal.LocationPoint{Latitude: lat, Longitude: lon, Affinity: aff, Popularity: pop}
	p.Annotate()
	r := analysis.NewRecord(p)
	r.PopularityStatus = status
	return r
}

func table(recs ...analysis.CompositeRecord) *analysis.Table {
	return &analysis.Table{Records: recs}
}

func TestCriteria_UnmarshalPreservesOrder(t *testing.T) {
	t.Parallel()

	var c Criteria
	err := json.Unmarshal([]byte(`{"strategy":"Rally the Base","min_affinity":0.6,"popularity_status":["Trailing Opponent","Similar to Opponent"],"min_popularity":"0.5"}`), &c)
	require.NoError(t, err)
	require.Len(t, c, 4)

	assert.Equal(t, "strategy", c[0].Column)
	assert.Equal(t, []string{"Rally the Base"}, c[0].Values)
	assert.Equal(t, KeyMinAffinity, c[1].Column)
	require.NotNil(t, c[1].Min)
	assert.Equal(t, 0.6, *c[1].Min)
	assert.Equal(t, []string{"Trailing Opponent", "Similar to Opponent"}, c[2].Values)
	assert.Equal(t, 0.5, *c[3].Min)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy":"Rally the Base","min_affinity":0.6,"popularity_status":["Trailing Opponent","Similar to Opponent"],"min_popularity":0.5}`, string(out))
}

func TestCriteria_UnmarshalRejects(t *testing.T) {
	t.Parallel()
	var c Criteria
	err := json.Unmarshal([]byte(`["strategy"]`), &c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidCriteria))

	err = json.Unmarshal([]byte(`{"min_affinity":"high"}`), &c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidCriteria))

	err = json.Unmarshal([]byte(`{"strategy":{"a":1}}`), &c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidCriteria))
}

func TestApply_EmptyResultIsWarning(t *testing.T) {
	t.Parallel()
	tbl := table(record(1, 1, 0.55, 0.9, analysis.StatusLeadingOpponent))

	res := Apply(tbl, Criteria{In("strategy", "Rally the Base"), MinAffinity(0.6)}, "rally")
	assert.Equal(t, errors.StatusWarning, res.Status)
	assert.Equal(t, EmptyResultMessage, res.Message)
	assert.True(t, res.Empty())
	assert.Contains(t, res.AvailableColumns, "strategy")
	assert.Equal(t, []string{"strategy: [Rally the Base]", "affinity >= 0.6"}, res.AppliedFilters)
}

func TestApply_SequentialNarrowing(t *testing.T) {
	t.Parallel()
	tbl := table(
		record(1, 1, 0.9, 0.9, analysis.StatusTrailingOpponent),
		record(2, 2, 0.7, 0.8, analysis.StatusLeadingOpponent),
		record(3, 3, 0.65, 0.9, analysis.StatusTrailingOpponent),
		record(4, 4, 0.2, 0.9, analysis.StatusTrailingOpponent),
	)

	res := Apply(tbl, Criteria{
		In("strategy", "Rally the Base"),
		In("popularity_status", "Trailing Opponent"),
		MinAffinity(0.7),
	}, "swing")

	require.Equal(t, errors.StatusSuccess, res.Status)
	assert.Equal(t, [][2]float64{{1, 1}}, res.Coordinates)
	assert.Equal(t, 1, res.TotalLocations)
	assert.Equal(t, "swing", res.Tag)
	require.Len(t, res.Steps, 3)
	assert.Equal(t, Step{Filter: "strategy: [Rally the Base]", Before: 4, After: 3}, res.Steps[0])
	assert.Equal(t, 2, res.Steps[1].After)
	assert.Equal(t, 1, res.Steps[2].After)
}

func TestApply_OrderDoesNotChangeResult(t *testing.T) {
	t.Parallel()
	tbl := table(
		record(1, 1, 0.9, 0.9, analysis.StatusTrailingOpponent),
		record(2, 2, 0.7, 0.5, analysis.StatusLeadingOpponent),
		record(3, 3, 0.65, 0.9, analysis.StatusTrailingOpponent),
	)
	a := Apply(tbl, Criteria{MinPopularity(0.6), In("popularity_status", "Trailing Opponent")}, "x")
	b := Apply(tbl, Criteria{In("popularity_status", "Trailing Opponent"), MinPopularity(0.6)}, "x")
	assert.Equal(t, a.Coordinates, b.Coordinates)
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()
	tbl := table(
		record(1, 1, 0.9, 0.9, analysis.StatusTrailingOpponent),
		record(2, 2, 0.3, 0.9, analysis.StatusLeadingOpponent),
	)
	crit := Criteria{MinAffinity(0.6)}
	first := Apply(tbl, crit, "x")
	require.Equal(t, 1, first.TotalLocations)

	narrowed := tbl.Filter(func(r analysis.CompositeRecord) bool { return r.Affinity >= 0.6 })
	second := Apply(table(narrowed...), crit, "x")
	assert.Equal(t, first.Coordinates, second.Coordinates)
}

func TestApply_UnknownColumnSkipped(t *testing.T) {
	t.Parallel()
	tbl := table(record(1, 1, 0.9, 0.9, analysis.StatusTrailingOpponent))
	res := Apply(tbl, Criteria{In("county", "Cook")}, "x")
	assert.Equal(t, errors.StatusSuccess, res.Status)
	assert.Equal(t, []string{"county"}, res.Skipped)
	assert.Empty(t, res.AppliedFilters)
	assert.Equal(t, 1, res.TotalLocations)
}

func TestApply_NumericCategoricalMatch(t *testing.T) {
	t.Parallel()
	r := record(1, 1, 0.9, 0.9, analysis.StatusTrailingOpponent)
	r.AffinityRank = 3
	res := Apply(table(r), Criteria{In("affinity_rank", "3")}, "x")
	assert.Equal(t, 1, res.TotalLocations)
}

func TestIdentifiedAndHistory(t *testing.T) {
	t.Parallel()
	tbl := table(record(1, 2, 0.9, 0.9, analysis.StatusTrailingOpponent))
	res := Apply(tbl, Criteria{MinAffinity(0.5)}, "core")
	id := NewIdentified(res, "candidate_analysis_a_b.json", fixedNow)
	assert.Equal(t, "Filtered locations: affinity >= 0.5", id.Description)
	assert.Equal(t, 1, id.TotalLocations)
	assert.Equal(t, [][2]float64{{1, 2}}, id.Coordinates)

	var h []HistoryEntry
	for i := 0; i < 12; i++ {
		h = AppendHistory(h, HistoryEntry{Tag: string(rune('a' + i))}, DefaultHistorySize)
	}
	require.Len(t, h, DefaultHistorySize)
	assert.Equal(t, "c", h[0].Tag)
	assert.Equal(t, "l", h[9].Tag)
}

//Personal.AI order the ending
