// Package export writes an importer record as CSV, JSON, XLSX or a printable
// HTML report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/importer-intel/internal/model"
)

// Format is an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// ErrUnknownFormat is returned for a format outside the supported set.
var ErrUnknownFormat = eris.New("export: unknown format")

// ParseFormat maps a name such as "CSV" to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatXLSX, FormatHTML:
		return f, nil
	default:
		return "", eris.Wrapf(ErrUnknownFormat, "export: %q", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

var spaceRun = regexp.MustCompile(`\s+`)

// Filename returns the download name, e.g. "Acme_Imports_intel.csv".
func Filename(importer string, f Format) string {
	return spaceRun.ReplaceAllString(importer, "_") + "_intel." + string(f)
}

// Write renders rec in format f.
func Write(w io.Writer, rec model.DetailedImporterRecord, f Format) error {
	switch f {
	case FormatCSV:
		return CSV(w, rec)
	case FormatJSON:
		return JSON(w, rec)
	case FormatXLSX:
		return XLSX(w, rec)
	case FormatHTML:
		return HTML(w, rec)
	default:
		return eris.Wrapf(ErrUnknownFormat, "export: %q", f)
	}
}

// CSVHeader is the column set of the CSV export.
var CSVHeader = []string{
	"Importer Name", "Location", "Last Shipment Date", "Information", "Shipment Activity",
	"Phone", "Email", "Website", "Address",
	"Shipments (Last Month)", "Shipments (Last Quarter)", "Shipments (Last Year)",
	"Volume History",
	"Financial Stability", "Regulatory Compliance", "Geopolitical Risk",
	"Top Trade Partners", "Top Commodity Flows",
}

// CSV writes a header and a single row.
func CSV(w io.Writer, rec model.DetailedImporterRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	if err := cw.Write(csvRow(rec)); err != nil {
		return eris.Wrap(err, "export: write csv row")
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func csvRow(rec model.DetailedImporterRecord) []string {
	c := contactFields(rec.Contact)
	return []string{
		rec.Name,
		rec.Location,
		rec.LastShipmentDate,
		rec.Information,
		rec.ShipmentActivity,
		c.Phone,
		c.Email,
		c.Website,
		c.Address,
		string(rec.ShipmentCounts.LastMonth),
		string(rec.ShipmentCounts.LastQuarter),
		string(rec.ShipmentCounts.LastYear),
		volumeHistory(rec.ShipmentVolumeHistory),
		rec.RiskAssessment.FinancialStability,
		rec.RiskAssessment.RegulatoryCompliance,
		rec.RiskAssessment.GeopoliticalRisk,
		tradePartners(rec.TopTradePartners),
		commodityFlows(rec.TopCommodityFlows),
	}
}

// JSON writes the record indented by two spaces.
func JSON(w io.Writer, rec model.DetailedImporterRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rec), "export: encode json")
}

// contactFields flattens the contact block. A free-text contact has no
// fields to split, so each column reads "N/A".
func contactFields(c model.Contact) model.ContactInfo {
	if c.Info == nil {
		return model.ContactInfo{Phone: "N/A", Email: "N/A", Website: "N/A", Address: "N/A"}
	}
	return *c.Info
}

func volumeHistory(vs []model.ShipmentVolume) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, fmt.Sprintf("%s: %s TEU", num(float64(v.Year)), num(float64(v.Volume))))
	}
	return strings.Join(parts, "; ")
}

func tradePartners(ps []model.TradePartner) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, fmt.Sprintf("%s (%s)", p.Country, p.TradeVolume))
	}
	return strings.Join(parts, "; ")
}

func commodityFlows(fs []model.CommodityFlow) string {
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Name, f.Percentage))
	}
	return strings.Join(parts, "; ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
