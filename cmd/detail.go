package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/importer-intel/internal/research"
	"github.com/sells-group/importer-intel/internal/view"
)

var detailCmd = &cobra.Command{
	Use:   "detail <importer>",
	Short: "Fetch the full trade profile of one importer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")
		filter, _ := cmd.Flags().GetString("filter")
		order, _ := cmd.Flags().GetString("sort")

		env, err := initEnv(ctx, "detail")
		if err != nil {
			return err
		}
		defer env.Close()
		defer env.logSpend()

		rec, err := env.Research.FetchDetail(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, research.UserMessage(err))
		}

		card := view.NewCard(rec)
		card.History = view.History(rec.ShipmentHistory, filter, view.ParseSortOrder(order))

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(card)
		}
		formatCard(os.Stdout, card)
		return nil
	},
}

func init() {
	detailCmd.Flags().Bool("json", false, "print the display card as JSON")
	detailCmd.Flags().String("filter", "", "only show shipments whose date or description contains this text")
	detailCmd.Flags().String("sort", "desc", "shipment order: desc (newest first) or asc")
	rootCmd.AddCommand(detailCmd)
}

// formatCard writes the card as plain-text sections.
func formatCard(out io.Writer, c view.Card) {
	_, _ = fmt.Fprintf(out, "%s\n%s\n\n", c.Name, dash(c.Location))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Last shipment:\t%s\n", dash(c.LastShipmentDate))
	_, _ = fmt.Fprintf(w, "Commodities:\t%s\n", dash(c.Commodities))
	for _, s := range c.Counts {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", s.Label, s.Value)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nOverview\n%s\n", dash(c.Information))
	_, _ = fmt.Fprintf(out, "\nShipment activity\n%s\n", dash(c.ShipmentActivity))

	_, _ = fmt.Fprintln(out, "\nContact")
	switch {
	case c.Contact.Text != "":
		_, _ = fmt.Fprintln(out, c.Contact.Text)
	case c.Contact.Note != "":
		_, _ = fmt.Fprintln(out, c.Contact.Note)
	default:
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, f := range [][2]string{
			{"Phone", c.Contact.Phone},
			{"Email", c.Contact.Email},
			{"Website", c.Contact.Website},
			{"Address", c.Contact.Address},
		} {
			if f[1] != "" {
				_, _ = fmt.Fprintf(w, "%s:\t%s\n", f[0], f[1])
			}
		}
		_ = w.Flush()
	}

	_, _ = fmt.Fprintln(out, "\nRisk")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range c.Risk {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Title, r.Risk.Level, truncate(r.Content, 60))
	}
	_ = w.Flush()

	if len(c.Partners) > 0 {
		_, _ = fmt.Fprintln(out, "\nTop trade partners")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, p := range c.Partners {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", p.Country, dash(p.TradeVolume))
		}
		_ = w.Flush()
	}

	if len(c.Flows) > 0 {
		_, _ = fmt.Fprintln(out, "\nCommodity flows")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "COMMODITY\tSHARE\tAVG PRICE\tTREND\tTOP SUPPLIER")
		for _, f := range c.Flows {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.Name, dash(f.Percentage), dash(f.AveragePrice), f.Trend, dash(f.TopSupplier))
		}
		_ = w.Flush()
	}

	if len(c.History) > 0 {
		_, _ = fmt.Fprintln(out, "\nShipment history")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, h := range c.History {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", h.Date, h.Event)
		}
		_ = w.Flush()
	}
}
