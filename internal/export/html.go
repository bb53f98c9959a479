package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/sells-group/importer-intel/internal/model"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} | Trade Intelligence</title>
<style>
body{font-family:system-ui,sans-serif;max-width:60rem;margin:2rem auto;color:#0f172a}
table{border-collapse:collapse;margin:1rem 0}
th,td{border:1px solid #cbd5e1;padding:.3rem .6rem;text-align:left}
h1{color:#ea580c}
@media print{body{margin:0}}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML writes a printable report. Model text is rendered as markdown; raw
// HTML inside it is dropped.
func HTML(w io.Writer, rec model.DetailedImporterRecord) error {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(rec)), &body); err != nil {
		return eris.Wrap(err, "export: render markdown")
	}
	err := reportTmpl.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: rec.Name,
		Body:  template.HTML(body.String()), //nolint:gosec // goldmark omits raw html
	})
	return eris.Wrap(err, "export: render html")
}

// Markdown renders the report body as markdown.
func Markdown(rec model.DetailedImporterRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rec.Name)
	fmt.Fprintf(&b, "**Location:** %s  \n**Last shipment:** %s  \n**Commodities:** %s\n\n",
		orNA(rec.Location), orNA(rec.LastShipmentDate), orNA(rec.Commodities))

	section(&b, "Overview", rec.Information)
	section(&b, "Shipment Activity", rec.ShipmentActivity)

	b.WriteString("## Shipment Counts\n\n| Period | Shipments |\n|---|---|\n")
	fmt.Fprintf(&b, "| Last month | %s |\n", cell(string(rec.ShipmentCounts.LastMonth)))
	fmt.Fprintf(&b, "| Last quarter | %s |\n", cell(string(rec.ShipmentCounts.LastQuarter)))
	fmt.Fprintf(&b, "| Last year | %s |\n\n", cell(string(rec.ShipmentCounts.LastYear)))

	if len(rec.ShipmentVolumeHistory) > 0 {
		b.WriteString("## Volume History\n\n| Year | Volume (TEU) |\n|---|---|\n")
		for _, v := range rec.ShipmentVolumeHistory {
			fmt.Fprintf(&b, "| %s | %s |\n", num(float64(v.Year)), num(float64(v.Volume)))
		}
		b.WriteString("\n")
	}

	if len(rec.ShipmentHistory) > 0 {
		b.WriteString("## Shipment History\n\n| Date | Event |\n|---|---|\n")
		for _, e := range rec.ShipmentHistory {
			fmt.Fprintf(&b, "| %s | %s |\n", cell(e.Date), cell(e.Event))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Contact\n\n")
	if rec.Contact.Info == nil {
		fmt.Fprintf(&b, "%s\n\n", orNA(rec.Contact.Text))
	} else {
		c := rec.Contact.Info
		fmt.Fprintf(&b, "- Phone: %s\n- Email: %s\n- Website: %s\n- Address: %s\n\n",
			orNA(c.Phone), orNA(c.Email), orNA(c.Website), orNA(c.Address))
	}

	b.WriteString("## Risk Assessment\n\n")
	fmt.Fprintf(&b, "- Financial stability: %s\n- Regulatory compliance: %s\n- Geopolitical risk: %s\n\n",
		orNA(rec.RiskAssessment.FinancialStability),
		orNA(rec.RiskAssessment.RegulatoryCompliance),
		orNA(rec.RiskAssessment.GeopoliticalRisk))

	if len(rec.TopTradePartners) > 0 {
		b.WriteString("## Top Trade Partners\n\n| Country | Volume |\n|---|---|\n")
		for _, p := range rec.TopTradePartners {
			fmt.Fprintf(&b, "| %s | %s |\n", cell(p.Country), cell(p.TradeVolume))
		}
		b.WriteString("\n")
	}

	if len(rec.TopCommodityFlows) > 0 {
		b.WriteString("## Top Commodity Flows\n\n| Commodity | Share | Avg. Price | Trend | Top Supplier |\n|---|---|---|---|---|\n")
		for _, c := range rec.TopCommodityFlows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				cell(c.Name), cell(c.Percentage), cell(c.AveragePrice), cell(c.MarketTrend), cell(c.TopSupplier))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func section(b *strings.Builder, title, text string) {
	fmt.Fprintf(b, "## %s\n\n%s\n\n", title, orNA(text))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// cell makes s safe inside a markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(orNA(s), "|", `\|`)
}
