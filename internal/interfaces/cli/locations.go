package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/application/targeting"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/location"
)

// NewLocationsCmd creates the locations command group over identified sets.
func NewLocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations [tag]",
		Short: "Show an identified location set (default: the most recent)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				set, err := c.Targeting.Identified(ctx, firstArg(args))
				if err != nil {
					return err
				}
				return PrintResult(cmd, identifiedView{set})
			})
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recently identified location sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				h, err := c.Targeting.History(ctx)
				if err != nil {
					return err
				}
				if len(h.History) == 0 {
					return PrintResult(cmd, h.Message)
				}
				return PrintResult(cmd, historyView{h})
			})
		},
	}

	polygonCmd := &cobra.Command{
		Use:   "polygon [tag]",
		Short: "Show the hull and GeoJSON of an identified location set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				res, err := c.Targeting.Polygon(ctx, firstArg(args))
				if err != nil {
					return err
				}
				return PrintResult(cmd, res)
			})
		},
	}

	cmd.AddCommand(historyCmd, polygonCmd)
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

type identifiedView struct{ *location.Identified }

func (v identifiedView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", v.Tag, v.Description)
	fmt.Fprintf(&b, "Locations: %d  Created: %s\n", v.TotalLocations, v.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Filters: %s\n", joinOrDash(v.FiltersApplied))
	for _, c := range v.Coordinates {
		fmt.Fprintf(&b, "  %.5f, %.5f\n", c[0], c[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v identifiedView) TableHeaders() []string { return []string{"Latitude", "Longitude"} }

func (v identifiedView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Coordinates))
	for _, c := range v.Coordinates {
		rows = append(rows, []string{
			strconv.FormatFloat(c[0], 'f', 5, 64),
			strconv.FormatFloat(c[1], 'f', 5, 64),
		})
	}
	return rows
}

type historyView struct{ *targeting.HistoryResult }

func (v historyView) TableHeaders() []string {
	return []string{"Tag", "Locations", "Created", "Current"}
}

func (v historyView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.History))
	for _, e := range v.History {
		current := ""
		if e.Tag == v.Current {
			current = "*"
		}
		rows = append(rows, []string{e.Tag, strconv.Itoa(e.TotalLocations), e.Created.Format(time.RFC3339), current})
	}
	return rows
}

//Personal.AI order the ending
