package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/application/targeting"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/location"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// NewFilterCmd creates the filter command.
func NewFilterCmd() *cobra.Command {
	var (
		tag         string
		criteria    string
		analysisKey string
	)
	cmd := &cobra.Command{
		Use:     "filter",
		Short:   "Filter an analysis into a tagged location set",
		Example: `  resonance filter --tag swing --criteria '{"strategy":"Rally the Base","min_affinity":0.6}'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c location.Criteria
			if strings.TrimSpace(criteria) != "" {
				if err := json.Unmarshal([]byte(criteria), &c); err != nil {
					if errors.IsCode(err, errors.ErrCodeInvalidCriteria) {
						return err
					}
					return errors.Wrap(err, errors.ErrCodeInvalidCriteria, "criteria is not valid JSON")
				}
			}
			return withContainer(cmd, func(ctx context.Context, ct *app.Container) error {
				res, err := ct.Targeting.Filter(ctx, targeting.FilterRequest{
					AnalysisKey: analysisKey,
					Criteria:    c,
					Tag:         tag,
				})
				if err != nil {
					return err
				}
				return PrintResult(cmd, filterView{res})
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&tag, "tag", "t", "", "tag for the saved location set (required)")
	f.StringVar(&criteria, "criteria", "", "filter criteria as a JSON object")
	f.StringVar(&analysisKey, "analysis", "", "analysis key (default: most recent)")
	_ = cmd.MarkFlagRequired("tag")
	return cmd
}

type filterView struct{ *targeting.FilterResponse }

func (v filterView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", statusText(v.Status), v.Message)
	fmt.Fprintf(&b, "Analysis: %s\n", v.AnalysisKey)
	fmt.Fprintf(&b, "Filters: %s\n", joinOrDash(v.AppliedFilters))
	if len(v.Skipped) > 0 {
		fmt.Fprintf(&b, "Skipped columns: %s\n", strings.Join(v.Skipped, ", "))
	}
	if v.Saved {
		fmt.Fprintf(&b, "Saved %d locations as %q\n", v.TotalLocations, v.Tag)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v filterView) TableHeaders() []string {
	return []string{"Filter", "Before", "After"}
}

func (v filterView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Steps))
	for _, s := range v.Steps {
		rows = append(rows, []string{s.Filter, strconv.Itoa(s.Before), strconv.Itoa(s.After)})
	}
	return rows
}

//Personal.AI order the ending
