package analysis

import "math"

// DeriveOpponent computes the net popularity against the opponent and its
// status for every record.
func DeriveOpponent(records []CompositeRecord) {
	for i := range records {
		r := &records[i]
		r.NetPopularity = NetPopularity(r.Popularity, r.OpponentPopularity)
		r.PopularityStatus = OpponentAxis.Status(r.NetPopularity)
	}
}

// DeriveBase computes the net popularity against the political base.
func DeriveBase(records []CompositeRecord) {
	for i := range records {
		r := &records[i]
		r.NetBasePopularity = NetPopularity(r.Popularity, r.BasePopularity)
		r.BasePopularityStatus = BaseAxis.Status(r.NetBasePopularity)
	}
}

// DeriveIssues computes the net value and status of each issue. An issue is
// compared with its base-audience baseline when any row carries one,
// otherwise with the issue's own mean across all rows.
func DeriveIssues(records []CompositeRecord, issues []string) {
	for _, issue := range issues {
		values := make([]float64, 0, len(records))
		hasBaseline := false
		for _, r := range records {
			m, _ := r.Issues.Get(issue)
			values = append(values, m.Popularity)
			if !math.IsNaN(m.Baseline) {
				hasBaseline = true
			}
		}
		mean := Mean(values)

		for i := range records {
			m, ok := records[i].Issues.Get(issue)
			if !ok {
				continue
			}
			ref := mean
			if hasBaseline {
				ref = m.Baseline
			}
			m.NetPopularity = NetPopularity(m.Popularity, ref)
			m.Status = IssueAxis.Status(m.NetPopularity)
			records[i].Issues = records[i].Issues.Set(m)
		}
	}
}

//Personal.AI order the ending
