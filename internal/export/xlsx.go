package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/importer-intel/internal/model"
)

// XLSX writes a workbook with a profile sheet and one sheet per table.
func XLSX(w io.Writer, rec model.DetailedImporterRecord) error {
	f := xlsx.NewFile()

	profile := make([][]string, 0, len(CSVHeader))
	for i, v := range csvRow(rec) {
		profile = append(profile, []string{CSVHeader[i], v})
	}
	if err := addSheet(f, "Profile", []string{"Field", "Value"}, profile); err != nil {
		return err
	}

	shipments := make([][]string, 0, len(rec.ShipmentHistory))
	for _, e := range rec.ShipmentHistory {
		shipments = append(shipments, []string{e.Date, e.Event})
	}
	if err := addSheet(f, "Shipments", []string{"Date", "Event"}, shipments); err != nil {
		return err
	}

	volume := make([][]string, 0, len(rec.ShipmentVolumeHistory))
	for _, v := range rec.ShipmentVolumeHistory {
		volume = append(volume, []string{num(float64(v.Year)), num(float64(v.Volume))})
	}
	if err := addSheet(f, "Volume", []string{"Year", "Volume (TEU)"}, volume); err != nil {
		return err
	}

	partners := make([][]string, 0, len(rec.TopTradePartners))
	for _, p := range rec.TopTradePartners {
		partners = append(partners, []string{p.Country, p.TradeVolume})
	}
	if err := addSheet(f, "Trade Partners", []string{"Country", "Trade Volume"}, partners); err != nil {
		return err
	}

	flows := make([][]string, 0, len(rec.TopCommodityFlows))
	for _, c := range rec.TopCommodityFlows {
		flows = append(flows, []string{c.Name, c.Percentage, c.AveragePrice, c.MarketTrend, c.TopSupplier})
	}
	if err := addSheet(f, "Commodities", []string{"Commodity", "Share", "Average Price", "Market Trend", "Top Supplier"}, flows); err != nil {
		return err
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addSheet(f *xlsx.File, name string, header []string, rows [][]string) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}
	addRow(sheet, header)
	for _, r := range rows {
		addRow(sheet, r)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}
