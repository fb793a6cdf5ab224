package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// tableProvider is implemented by views that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data in the configured output format. Text prints
// strings and Stringers directly, tables where available, and JSON for
// everything else.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := "text"
	if s, err := SessionFrom(cmd); err == nil {
		format = s.Output
	}

	switch format {
	case "json":
		return printJSON(cmd.OutOrStdout(), data)
	case "table":
		if tp, ok := data.(tableProvider); ok {
			printTable(cmd.OutOrStdout(), tp)
			return nil
		}
		return printJSON(cmd.OutOrStdout(), data)
	default:
		return printText(cmd.OutOrStdout(), data)
	}
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(w, v)
	case fmt.Stringer:
		fmt.Fprintln(w, v.String())
	case tableProvider:
		printTable(w, v)
	default:
		return printJSON(w, data)
	}
	return nil
}

func printTable(w io.Writer, tp tableProvider) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(tp.TableHeaders())
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.AppendBulk(tp.TableRows())
	table.Render()
}

// PrintError writes a failure, with its code and suggestions, to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	res := errors.ToResult(err)
	w := cmd.ErrOrStderr()
	msg := res.Message
	if res.Code == errors.ErrCodeInternal {
		msg = err.Error()
	}
	fmt.Fprintf(w, "%s %s\n", color.RedString("Error [%s]:", res.Code), msg)
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}

// printOutcome prints data, or the warning carried by err when err marks a
// non-fatal outcome. Any other error is returned.
func printOutcome(cmd *cobra.Command, data interface{}, err error) error {
	if err == nil {
		return PrintResult(cmd, data)
	}
	res := errors.ToResult(err)
	if !errors.IsWarningCode(res.Code) {
		return err
	}
	res.Status = errors.StatusWarning
	if s, serr := SessionFrom(cmd); serr == nil && s.Output == "json" {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.YellowString("Warning:"), res.Message)
	for _, s := range res.Suggestions {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", s)
	}
	return nil
}

// statusText colors a result status.
func statusText(status string) string {
	switch status {
	case errors.StatusSuccess:
		return color.GreenString(status)
	case errors.StatusWarning:
		return color.YellowString(status)
	case errors.StatusError:
		return color.RedString(status)
	default:
		return status
	}
}

// formatFloat renders a score with three decimals.
func formatFloat(v float64) string { return fmt.Sprintf("%.3f", v) }

// joinOrDash joins items or returns "-" for an empty list.
func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

//Personal.AI order the ending
