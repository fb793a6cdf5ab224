package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/application/reporting"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	var (
		markdown bool
		outFile  string
	)
	cmd := &cobra.Command{
		Use:   "report [analysis-key]",
		Short: "Generate the campaign report for an analysis",
		Long: "Generate the Markdown campaign report for an analysis and store it in the\n" +
			"artifact store. Without a key the most recent analysis is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				res, err := c.Reports.Generate(ctx, key)
				if err != nil {
					return err
				}
				if outFile != "" {
					if err := os.WriteFile(outFile, []byte(res.Markdown), 0o644); err != nil {
						return errors.Wrap(err, errors.ErrCodeInternal, "failed to write report file")
					}
					c.Logger.Info("report written", logging.String("path", outFile))
				}
				if markdown {
					_, err := fmt.Fprint(cmd.OutOrStdout(), res.Markdown)
					return err
				}
				res.Markdown = ""
				return PrintResult(cmd, reportView{res})
			})
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the report body instead of the summary")
	cmd.Flags().StringVar(&outFile, "out-file", "", "also write the report body to this path")
	return cmd
}

type reportView struct{ *reporting.ReportResult }

func (v reportView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", statusText(v.Status), v.Message)
	fmt.Fprintf(&b, "Report: %s (version %s, %.2f KB)\n", v.Filename, v.Version, v.FileSizeKB)
	s := v.Summary
	fmt.Fprintf(&b, "Locations: %d across %d segments\n", s.TotalLocations, s.SegmentsAnalyzed)
	fmt.Fprintf(&b, "  Rally the Base:  %d\n  Hidden Goldmine: %d\n  Bring Them Over: %d\n  Deep Conversion: %d\n",
		s.RallyBase, s.HiddenGoldmine, s.BringThemOver, s.DeepConversion)
	for _, n := range v.NextSteps {
		fmt.Fprintf(&b, "  - %s\n", n)
	}
	return strings.TrimRight(b.String(), "\n")
}

//Personal.AI order the ending
