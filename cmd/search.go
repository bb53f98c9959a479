package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for USA importers",
	Long:  "Runs the primary and related-importer searches. The query may be empty when at least one of --city, --state or --industry is set.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		q := search.Query{}
		if len(args) == 1 {
			q.Query = args[0]
		}
		q.City, _ = cmd.Flags().GetString("city")
		q.State, _ = cmd.Flags().GetString("state")
		q.Industry, _ = cmd.Flags().GetString("industry")
		asJSON, _ := cmd.Flags().GetBool("json")

		if q.Blank() {
			return search.ErrEmptyQuery
		}

		env, err := initEnv(ctx, "search")
		if err != nil {
			return err
		}
		defer env.Close()
		defer env.logSpend()

		res, err := search.New(env.Research).Search(ctx, q)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		formatSearchResult(os.Stdout, res)
		return nil
	},
}

func init() {
	searchCmd.Flags().String("city", "", "filter by city")
	searchCmd.Flags().String("state", "", "filter by state")
	searchCmd.Flags().String("industry", "", "filter by industry")
	searchCmd.Flags().Bool("json", false, "print the raw result as JSON")
	rootCmd.AddCommand(searchCmd)
}

// formatSearchResult writes both result lists as tables.
func formatSearchResult(out io.Writer, res search.Result) {
	if res.Error != "" {
		_, _ = fmt.Fprintln(out, res.Error)
	} else if len(res.Primary) == 0 {
		_, _ = fmt.Fprintln(out, "No importers found.")
	} else {
		formatSummaries(out, res.Primary)
	}

	if len(res.Similar) > 0 {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, "Similar importers:")
		formatSummaries(out, res.Similar)
	}
}

func formatSummaries(out io.Writer, list []model.ImporterSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "IMPORTER\tLOCATION\tCOMMODITIES\tLAST SHIPMENT\tSOURCE")
	_, _ = fmt.Fprintln(w, "--------\t--------\t-----------\t-------------\t------")
	for _, s := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Name,
			dash(s.Location),
			truncate(s.PrimaryCommodities, 40),
			dash(s.LastShipmentDate),
			dash(s.Source),
		)
	}
	_ = w.Flush()
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// truncate shortens s to n runes with a trailing "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return dash(s)
	}
	return string(r[:n-3]) + "..."
}
