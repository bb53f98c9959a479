package view

import (
	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/risk"
)

// Card is the complete display model of one record.
type Card struct {
	Name             string               `json:"importerName"`
	Location         string               `json:"location"`
	LastShipmentDate string               `json:"lastShipmentDate"`
	Commodities      string               `json:"commodities"`
	Information      string               `json:"information"`
	ShipmentActivity string               `json:"shipmentActivity"`
	Counts           []Stat               `json:"counts"`
	History          []HistoryRow         `json:"history"`
	Contact          ContactView          `json:"contact"`
	Risk             []risk.Row           `json:"risk"`
	Partners         []model.TradePartner `json:"topTradePartners"`
	Flows            []CommodityRow       `json:"topCommodityFlows"`
}

// NewCard builds the card with the history newest first.
func NewCard(rec model.DetailedImporterRecord) Card {
	return Card{
		Name:             rec.Name,
		Location:         rec.Location,
		LastShipmentDate: rec.LastShipmentDate,
		Commodities:      rec.Commodities,
		Information:      rec.Information,
		ShipmentActivity: rec.ShipmentActivity,
		Counts:           Counts(rec.ShipmentCounts),
		History:          History(rec.ShipmentHistory, "", Newest),
		Contact:          Contact(rec.Contact),
		Risk:             risk.ClassifyAll(rec.RiskAssessment),
		Partners:         append([]model.TradePartner{}, rec.TopTradePartners...),
		Flows:            Commodities(rec.TopCommodityFlows),
	}
}
