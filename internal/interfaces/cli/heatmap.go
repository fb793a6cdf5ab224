package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/application/heatmap"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

type heatmapOptions struct {
	location       string
	entities       []string
	tags           []string
	audiences      []string
	audienceWeight float64
	age            string
	gender         string
	boundary       string
	limit          int
	requireEntity  bool

	n     int
	score float64
}

func (o *heatmapOptions) request(cmd *cobra.Command) heatmap.Request {
	req := heatmap.Request{
		Location:        o.location,
		Entities:        o.entities,
		Tags:            o.tags,
		AudienceIDs:     o.audiences,
		Age:             o.age,
		Gender:          o.gender,
		Boundary:        o.boundary,
		Limit:           o.limit,
		RequireEntities: o.requireEntity,
	}
	if cmd.Flags().Changed("audience-weight") {
		w := o.audienceWeight
		req.AudienceWeight = &w
	}
	return req
}

func (o *heatmapOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.location, "location", "l", "", "location query, e.g. \"Columbus, Ohio\" (required)")
	f.StringSliceVarP(&o.entities, "entity", "e", nil, "entity name to resolve (repeatable)")
	f.StringSliceVarP(&o.tags, "tag", "t", nil, "tag name to resolve (repeatable)")
	f.StringSliceVar(&o.audiences, "audience", nil, "audience id (repeatable)")
	f.Float64Var(&o.audienceWeight, "audience-weight", 0, "audience weight")
	f.StringVar(&o.age, "age", "", "age bracket (35_and_younger, 36_to_55, 55_and_older)")
	f.StringVar(&o.gender, "gender", "", "gender (male, female)")
	f.StringVar(&o.boundary, "boundary", "", "boundary type")
	f.IntVar(&o.limit, "limit", 0, "maximum grid points")
	f.BoolVar(&o.requireEntity, "require-entities", false, "fail when no entity resolves")
	_ = cmd.MarkFlagRequired("location")
}

// NewHeatmapCmd creates the heatmap command group.
func NewHeatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Fetch and rank location-level affinity grids",
	}

	locate := &heatmapOptions{}
	locateCmd := &cobra.Command{
		Use:   "locate",
		Short: "Fetch the annotated grid for a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				res, err := c.Heatmap.Locate(ctx, locate.request(cmd))
				if err != nil {
					return err
				}
				return PrintResult(cmd, gridView{res})
			})
		},
	}
	locate.bind(locateCmd)

	summary := &heatmapOptions{}
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize hotspots, tiers and coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				res, err := c.Heatmap.Summary(ctx, summary.request(cmd))
				return printOutcome(cmd, res, err)
			})
		},
	}
	summary.bind(summaryCmd)

	top := &heatmapOptions{}
	topCmd := &cobra.Command{
		Use:   "top",
		Short: "List the best-scoring locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRanking(cmd, top, true)
		},
	}
	top.bind(topCmd)
	topCmd.Flags().IntVarP(&top.n, "count", "n", heatmap.DefaultTopN, "number of locations")
	topCmd.Flags().Float64Var(&top.score, "min-score", heatmap.DefaultMinScore, "minimum hotspot score")

	bottom := &heatmapOptions{}
	bottomCmd := &cobra.Command{
		Use:   "bottom",
		Short: "List the worst-scoring locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRanking(cmd, bottom, false)
		},
	}
	bottom.bind(bottomCmd)
	bottomCmd.Flags().IntVarP(&bottom.n, "count", "n", heatmap.DefaultTopN, "number of locations")
	bottomCmd.Flags().Float64Var(&bottom.score, "max-score", heatmap.DefaultMaxScore, "maximum hotspot score")

	cmd.AddCommand(locateCmd, summaryCmd, topCmd, bottomCmd)
	return cmd
}

func runRanking(cmd *cobra.Command, o *heatmapOptions, top bool) error {
	return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
		req := o.request(cmd)
		var (
			res *heatmap.RankingResult
			err error
		)
		if top {
			res, err = c.Heatmap.Top(ctx, req, o.n, o.score)
		} else {
			res, err = c.Heatmap.Bottom(ctx, req, o.n, o.score)
		}
		if err != nil {
			return err
		}
		c.Logger.Debug("ranking computed",
			logging.Location(res.Location),
			logging.Int("matching", res.Ranking.MatchingCount))
		return PrintResult(cmd, rankingView{res})
	})
}

// gridView renders a heatmap result as one row per point.
type gridView struct{ *heatmap.Result }

func (v gridView) TableHeaders() []string {
	return []string{"Latitude", "Longitude", "Geohash", "Affinity", "Popularity", "Score", "Segment"}
}

func (v gridView) TableRows() [][]string {
	if v.Grid == nil {
		return nil
	}
	rows := make([][]string, 0, len(v.Grid.Points))
	for _, p := range v.Grid.Points {
		rows = append(rows, []string{
			strconv.FormatFloat(p.Latitude, 'f', 5, 64),
			strconv.FormatFloat(p.Longitude, 'f', 5, 64),
			p.Geohash,
			formatFloat(p.Affinity),
			formatFloat(p.Popularity),
			formatFloat(p.HotspotScore),
			string(p.Segment),
		})
	}
	return rows
}

// rankingView renders a ranking as a table.
type rankingView struct{ *heatmap.RankingResult }

func (v rankingView) TableHeaders() []string {
	return []string{"Rank", "Latitude", "Longitude", "Score", "Affinity", "Popularity", "Geohash"}
}

func (v rankingView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Ranking.Locations))
	for _, l := range v.Ranking.Locations {
		rows = append(rows, []string{
			strconv.Itoa(l.Rank),
			strconv.FormatFloat(l.Latitude, 'f', 5, 64),
			strconv.FormatFloat(l.Longitude, 'f', 5, 64),
			formatFloat(l.HotspotScore),
			formatFloat(l.Affinity),
			formatFloat(l.Popularity),
			l.Geohash,
		})
	}
	return rows
}

//Personal.AI order the ending
