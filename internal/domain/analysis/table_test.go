package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	comp, err := Compose(Sources{
		Candidate: grid("candidate",
			pt(1, 1, 0.9, 0.8), // rally
			pt(2, 2, 0.9, 0.2), // goldmine
			pt(3, 3, 0.2, 0.9), // bring them over
			pt(4, 4, 0.9, 0.7), // rally
		),
		Opponent: grid("opponent", pt(1, 1, 0.5, 0.9), pt(2, 2, 0.5, 0.1), pt(3, 3, 0.5, 0.9), pt(4, 4, 0.5, 0.7)),
		Base:     grid("base", pt(1, 1, 0.5, 0.9), pt(2, 2, 0.5, 0.5)),
		Issues: []IssueSource{
			{Name: "health care", Grid: grid("tag", pt(1, 1, 0.5, 0.1), pt(4, 4, 0.5, 0.5))},
		},
	})
	require.NoError(t, err)
	return &Table{
		Meta:    Metadata{Candidate: "Jane Doe", Opponent: "John Roe", Location: "Ohio"},
		Issues:  comp.Issues,
		Records: comp.Records,
	}
}

func TestTable_Columns(t *testing.T) {
	t.Parallel()
	tbl := sampleTable(t)
	cols := tbl.Columns()
	assert.Equal(t, CoreColumns, cols[:len(CoreColumns)])
	assert.Equal(t, []string{
		"tag_health_care",
		"net_health_care_popularity",
		"issue_health_care_popularity_status",
	}, cols[len(CoreColumns):])
	assert.True(t, tbl.HasColumn("strategy"))
	assert.False(t, tbl.HasColumn("base_health_care_popularity"))
	assert.False(t, tbl.HasColumn("nope"))
}

func TestTable_Value(t *testing.T) {
	t.Parallel()
	tbl := sampleTable(t)
	r := tbl.Records[0]

	v, ok := tbl.Value(r, ColStrategy)
	require.True(t, ok)
	assert.Equal(t, "Rally the Base", v)

	v, ok = tbl.Value(r, "tag_health_care")
	require.True(t, ok)
	assert.Equal(t, 0.1, v)

	v, ok = tbl.Value(r, "issue_health_care_popularity_status")
	require.True(t, ok)
	assert.Equal(t, StatusIssueLessPopular, v)

	_, ok = tbl.Value(r, "missing")
	assert.False(t, ok)

	assert.Equal(t, "0.25", FormatValue(0.25))
	assert.Equal(t, "NaN", FormatValue(math.NaN()))
	assert.Equal(t, "3", FormatValue(3))
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	s := Summarize(sampleTable(t))
	assert.Equal(t, 4, s.TotalLocations)
	rally := s.Quadrant(signal.StrategyRallyTheBase)
	assert.Equal(t, 2, rally.Count)
	assert.Equal(t, 50.0, rally.Percentage)
	assert.Equal(t, 0, s.Quadrant(signal.StrategyDeepConversion).Count)
	assert.Len(t, s.Quadrants, 4)
}

func TestStructure(t *testing.T) {
	t.Parallel()
	ds := Structure(sampleTable(t))
	assert.Equal(t, 4, ds.TotalRows)
	assert.Equal(t, len(CoreColumns)+3, ds.TotalColumns)
	assert.Equal(t, 2, ds.ValueCounts[ColStrategy]["Rally the Base"])
	assert.Equal(t, 2, ds.ValueCounts[ColBasePopularityStatus][StatusUnknown])
	assert.Equal(t, []string{"issue_health_care_popularity_status"}, ds.IssueColumns)
	assert.Equal(t, 2, ds.ValueCounts["issue_health_care_popularity_status"][StatusUnknown])
}

func TestCodec_PreservesMissingValues(t *testing.T) {
	t.Parallel()
	tbl := sampleTable(t)
	blob, err := Encode(tbl)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"base_popularity":null`)

	got, err := Decode(blob)
	require.NoError(t, err)
	require.Equal(t, tbl.Len(), got.Len())
	assert.Equal(t, tbl.Issues, got.Issues)
	assert.True(t, math.IsNaN(got.Records[2].BasePopularity))
	assert.Equal(t, tbl.Records[0].NetPopularity, got.Records[0].NetPopularity)
	m, ok := got.Records[1].Issues.Get("health_care")
	require.True(t, ok)
	assert.True(t, math.IsNaN(m.Popularity))
	assert.Equal(t, StatusUnknown, m.Status)

	_, err = Decode([]byte("{"))
	assert.Error(t, err)
}

func TestSafeNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "jane_q_doe", SafeName("Jane Q. Doe"))
	assert.Equal(t, "candidate_analysis_jane_doe_st_louis.json", ArtifactKey("Jane Doe", "St. Louis"))
	assert.Equal(t, "campaign_report_jane_doe_ohio.md", ReportKey("Jane Doe", "Ohio"))
}

func TestRounding(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 33.3, Round1(Percent(1, 3)))
	assert.Equal(t, 0.0, Percent(1, 0))
	assert.Equal(t, 1.23, Round2(1.234))
}

//Personal.AI order the ending
