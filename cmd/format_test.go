package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/search"
	"github.com/sells-group/importer-intel/internal/view"
)

func TestFormatSearchResult(t *testing.T) {
	res := search.Result{
		Primary: []model.ImporterSummary{
			{Name: "Acme Imports", Location: "Miami, FL", PrimaryCommodities: "Furniture", LastShipmentDate: "2024-05-01", Source: "ImportYeti"},
			{Name: "Globex"},
		},
		Similar: []model.ImporterSummary{{Name: "Initech", Location: "Austin, TX"}},
	}

	var buf bytes.Buffer
	formatSearchResult(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "IMPORTER")
	assert.Contains(t, out, "Acme Imports")
	assert.Contains(t, out, "ImportYeti")
	assert.Contains(t, out, "Similar importers:")
	assert.Contains(t, out, "Initech")
}

func TestFormatSearchResult_Error(t *testing.T) {
	var buf bytes.Buffer
	formatSearchResult(&buf, search.Result{Error: search.PrimaryFailedMessage, Primary: []model.ImporterSummary{}})
	assert.Contains(t, buf.String(), search.PrimaryFailedMessage)
	assert.NotContains(t, buf.String(), "IMPORTER")

	buf.Reset()
	formatSearchResult(&buf, search.Result{Primary: []model.ImporterSummary{}})
	assert.Contains(t, buf.String(), "No importers found.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "-", truncate("", 10))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10))
}

func TestFormatCard(t *testing.T) {
	rec := model.DetailedImporterRecord{
		Name:           "Acme Imports",
		Location:       "Miami, FL",
		Information:    "Importer of furniture.",
		ShipmentCounts: model.ShipmentCounts{LastYear: "1200"},
		Contact:        model.Contact{Info: &model.ContactInfo{Phone: "555-0100", Email: "N/A"}},
		RiskAssessment: model.RiskAssessment{FinancialStability: "Stable revenue"},
		ShipmentHistory: []model.ShipmentEvent{
			{Date: "2024-01-10", Event: "Imported 100 KG of Sofas from China by Foshan Co."},
		},
		TopTradePartners:  []model.TradePartner{{Country: "China", TradeVolume: "High"}},
		TopCommodityFlows: []model.CommodityFlow{{Name: "Sofas", Percentage: "60%", MarketTrend: "Increasing demand"}},
	}

	var buf bytes.Buffer
	formatCard(&buf, view.NewCard(rec))

	out := buf.String()
	assert.Contains(t, out, "Acme Imports")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "555-0100")
	assert.NotContains(t, out, "N/A")
	assert.Contains(t, out, "Financial Stability")
	assert.Contains(t, out, "China")
	assert.Contains(t, out, "increasing")
	assert.Contains(t, out, "Foshan Co.")
}

func TestFormatCard_TextContact(t *testing.T) {
	var buf bytes.Buffer
	formatCard(&buf, view.NewCard(model.DetailedImporterRecord{Name: "Acme", Contact: model.Contact{Text: "Call the front desk"}}))
	assert.Contains(t, buf.String(), "Call the front desk")
}

func TestFormatAlerts(t *testing.T) {
	var buf bytes.Buffer
	formatSubscriptions(&buf, []model.Subscription{{CompanyName: "Acme Imports", Email: "buyer@example.com"}})
	assert.Contains(t, buf.String(), "buyer@example.com")

	buf.Reset()
	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC).UnixMilli()
	formatNotifications(&buf, []model.Notification{{ID: "n1", Message: "You are now subscribed to alerts for Acme Imports.", Timestamp: ts}})
	assert.Contains(t, buf.String(), "2025-06-15 10:30")
	assert.Contains(t, buf.String(), "Acme Imports")
}
