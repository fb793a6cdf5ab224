package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/application/campaign"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/analysis"
)

type analyzeOptions struct {
	candidate string
	opponent  string
	base      string
	issues    []string
	location  string
	age       string
	gender    string
}

// NewAnalyzeCmd creates the analyze command and the views over stored
// analyses. Views take an optional analysis key; without one they read the
// most recent analysis.
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build a composite candidate analysis for a location",
		Example: `  resonance analyze --candidate "Jane Doe" --opponent "John Roe" \
      --base Progressive --issue economy --location "Columbus, Ohio"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				res, err := c.Campaign.Analyze(ctx, campaign.AnalysisRequest{
					Candidate: opts.candidate,
					Opponent:  opts.opponent,
					Base:      opts.base,
					Issues:    opts.issues,
					Location:  opts.location,
					Age:       opts.age,
					Gender:    opts.gender,
				})
				if err != nil {
					return err
				}
				return PrintResult(cmd, analysisView{res})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.candidate, "candidate", "", "candidate name (required)")
	f.StringVar(&opts.opponent, "opponent", "", "opponent name (required)")
	f.StringVar(&opts.base, "base", "", "party base: Progressive, Conservative or Independent (required)")
	f.StringSliceVar(&opts.issues, "issue", nil, "issue to score (repeatable)")
	f.StringVarP(&opts.location, "location", "l", "", "location query (required)")
	f.StringVar(&opts.age, "age", "", "age bracket")
	f.StringVar(&opts.gender, "gender", "", "gender")
	for _, name := range []string{"candidate", "opponent", "base", "location"} {
		_ = cmd.MarkFlagRequired(name)
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				metas, err := c.Campaign.List(ctx, limit)
				if err != nil {
					return err
				}
				if len(metas) == 0 {
					return PrintResult(cmd, "No analyses found")
				}
				return PrintResult(cmd, metadataList(metas))
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "maximum analyses to list")

	cmd.AddCommand(
		listCmd,
		viewCmd("summary", "Show quadrant counts for an analysis", func(ctx context.Context, c *app.Container, key string) (interface{}, error) {
			sum, err := c.Campaign.Summary(ctx, key)
			if err != nil {
				return nil, err
			}
			return summaryView{sum}, nil
		}),
		viewCmd("structure", "Show the columns and value counts of an analysis", func(ctx context.Context, c *app.Container, key string) (interface{}, error) {
			return c.Campaign.Structure(ctx, key)
		}),
		viewCmd("rally", "Identify Rally the Base segments", func(ctx context.Context, c *app.Container, key string) (interface{}, error) {
			return c.Campaign.Rally(ctx, key)
		}),
		viewCmd("goldmine", "Identify the hidden goldmine", func(ctx context.Context, c *app.Container, key string) (interface{}, error) {
			rep, err := c.Campaign.Goldmine(ctx, key)
			if err != nil {
				return nil, err
			}
			return goldmineView{rep}, nil
		}),
	)
	return cmd
}

type viewFunc func(ctx context.Context, c *app.Container, key string) (interface{}, error)

func viewCmd(use, short string, fn viewFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [analysis-key]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				data, err := fn(ctx, c, key)
				return printOutcome(cmd, data, err)
			})
		},
	}
}

// analysisView prints the analysis outcome with its quadrant breakdown.
type analysisView struct{ *campaign.AnalysisResult }

func (v analysisView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", statusText(v.Status), v.Message)
	fmt.Fprintf(&b, "Artifact: %s (version %s)\n", v.ArtifactKey, v.Version)
	fmt.Fprintf(&b, "Locations: %d  Columns: %d\n", v.Summary.TotalLocations, v.Summary.TotalColumns)
	for _, q := range v.Summary.Quadrants {
		fmt.Fprintf(&b, "  %-20s %5d  %5.1f%%\n", q.Strategy, q.Count, q.Percentage)
	}
	for _, s := range v.NextSteps {
		fmt.Fprintf(&b, "  - %s\n", s)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v analysisView) TableHeaders() []string { return summaryView{&v.Summary}.TableHeaders() }
func (v analysisView) TableRows() [][]string  { return summaryView{&v.Summary}.TableRows() }

type summaryView struct{ *analysis.Summary }

func (v summaryView) TableHeaders() []string {
	return []string{"Strategy", "Count", "Percentage", "Description"}
}

func (v summaryView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Quadrants))
	for _, q := range v.Quadrants {
		rows = append(rows, []string{
			string(q.Strategy),
			strconv.Itoa(q.Count),
			fmt.Sprintf("%.1f%%", q.Percentage),
			q.Description,
		})
	}
	return rows
}

type metadataList []*analysis.Metadata

func (l metadataList) TableHeaders() []string {
	return []string{"Key", "Candidate", "Opponent", "Base", "Location", "Rows", "Tags", "Created"}
}

func (l metadataList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, m := range l {
		rows = append(rows, []string{
			m.Key,
			m.Candidate,
			m.Opponent,
			m.Base,
			m.Location,
			strconv.Itoa(m.Rows),
			joinOrDash(m.Tags),
			m.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

type goldmineView struct{ *campaign.GoldmineReport }

func (v goldmineView) TableHeaders() []string {
	return []string{"Latitude", "Longitude", "Affinity", "Geohash"}
}

func (v goldmineView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.TopTargets))
	for _, t := range v.TopTargets {
		rows = append(rows, []string{
			strconv.FormatFloat(t.Latitude, 'f', 5, 64),
			strconv.FormatFloat(t.Longitude, 'f', 5, 64),
			formatFloat(t.Affinity),
			t.Geohash,
		})
	}
	return rows
}

//Personal.AI order the ending
