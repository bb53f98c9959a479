// Package model defines the importer records exchanged between the research
// service, the record store and the renderers.
package model

// ImporterSummary is a lightweight listing produced by a search. Name acts as
// the implicit key; duplicates are merged upstream by the model, not here.
type ImporterSummary struct {
	Name               string `json:"importerName"`
	Location           string `json:"location"`
	PrimaryCommodities string `json:"primaryCommodities"`
	LastShipmentDate   string `json:"lastShipmentDate"`
	ContactInformation string `json:"contactInformation,omitempty"`
	Source             string `json:"source,omitempty"`
}

// ImporterList is the envelope the model is asked to return for searches.
type ImporterList struct {
	Importers []ImporterSummary `json:"importers"`
}

// ShipmentEvent is a dated free-text description of a shipment. Event is
// mined for sub-fields at render time and never rewritten.
type ShipmentEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// ShipmentVolume is one point of the annual volume series (TEUs or similar).
type ShipmentVolume struct {
	Year   Num `json:"year"`
	Volume Num `json:"volume"`
}

// ShipmentCounts holds shipment totals over three trailing windows.
type ShipmentCounts struct {
	LastMonth   Count `json:"lastMonth"`
	LastQuarter Count `json:"lastQuarter"`
	LastYear    Count `json:"lastYear"`
}

// RiskAssessment holds the three free-text risk narratives.
type RiskAssessment struct {
	FinancialStability   string `json:"financialStability"`
	RegulatoryCompliance string `json:"regulatoryCompliance"`
	GeopoliticalRisk     string `json:"geopoliticalRisk"`
}

// TradePartner is a partner country with a qualitative or quantitative volume.
// Country is free text and may be non-canonical ("USA", "UK").
type TradePartner struct {
	Country     string `json:"country"`
	TradeVolume string `json:"tradeVolume"`
}

// CommodityFlow describes one commodity line of the importer's trade.
type CommodityFlow struct {
	Name                  string    `json:"name"`
	Percentage            string    `json:"percentage"`
	AveragePrice          string    `json:"averagePrice,omitempty"`
	MarketTrend           string    `json:"marketTrend,omitempty"`
	TopSupplier           string    `json:"topSupplier,omitempty"`
	PriceTrendData        []float64 `json:"priceTrendData,omitempty"`
	ImportVolumeTrendData []float64 `json:"importVolumeTrendData,omitempty"`
}

// DetailedImporterRecord is the full enrichment profile. An empty string in
// any AI-populated field means "not yet loaded".
type DetailedImporterRecord struct {
	Name                  string           `json:"importerName"`
	Location              string           `json:"location"`
	LastShipmentDate      string           `json:"lastShipmentDate"`
	Information           string           `json:"information"`
	ShipmentActivity      string           `json:"shipmentActivity"`
	ShipmentCounts        ShipmentCounts   `json:"shipmentCounts"`
	ShipmentHistory       []ShipmentEvent  `json:"shipmentHistory"`
	ShipmentVolumeHistory []ShipmentVolume `json:"shipmentVolumeHistory"`
	Commodities           string           `json:"commodities"`
	Contact               Contact          `json:"contact"`
	RiskAssessment        RiskAssessment   `json:"riskAssessment"`
	TopTradePartners      []TradePartner   `json:"topTradePartners"`
	TopCommodityFlows     []CommodityFlow  `json:"topCommodityFlows"`
}

// NewPlaceholder builds the loading-state record for a selected summary.
// Summary fields are carried over; everything the model fills in starts empty.
func NewPlaceholder(s ImporterSummary) DetailedImporterRecord {
	return DetailedImporterRecord{
		Name:                  s.Name,
		Location:              s.Location,
		LastShipmentDate:      s.LastShipmentDate,
		Commodities:           s.PrimaryCommodities,
		ShipmentHistory:       []ShipmentEvent{},
		ShipmentVolumeHistory: []ShipmentVolume{},
		Contact:               Contact{Info: &ContactInfo{}},
		TopTradePartners:      []TradePartner{},
		TopCommodityFlows:     []CommodityFlow{},
	}
}

// IsLoading reports whether the core narrative has not arrived yet.
func (r DetailedImporterRecord) IsLoading() bool {
	return r.Information == ""
}

// MissingSections lists the AI-populated sections still holding their empty
// sentinel. A fully loaded record returns nil.
func (r DetailedImporterRecord) MissingSections() []string {
	var missing []string
	if r.Information == "" {
		missing = append(missing, "information")
	}
	if r.ShipmentActivity == "" {
		missing = append(missing, "shipmentActivity")
	}
	if r.ShipmentCounts.LastYear.IsEmpty() {
		missing = append(missing, "shipmentCounts")
	}
	if r.RiskAssessment == (RiskAssessment{}) {
		missing = append(missing, "riskAssessment")
	}
	if len(r.TopTradePartners) == 0 {
		missing = append(missing, "topTradePartners")
	}
	if len(r.TopCommodityFlows) == 0 {
		missing = append(missing, "topCommodityFlows")
	}
	return missing
}
