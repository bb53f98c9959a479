package research

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sells-group/importer-intel/internal/model"
)

const searchPrompt = `Act as a master trade data scraper. Find USA-based importers matching: %s.

SEARCH STRATEGY (run each as a web search):
1. Search "list of importers of %[2]s in USA".
2. Search "buyers of %[2]s USA customs data".
3. Search site:tradeindata.com "%[3]s".
4. Search site:importyeti.com "%[3]s".
5. Search site:panjiva.com "%[3]s".
6. Search site:52wmb.com "%[3]s".

For each distinct company found, extract:
- Company Name (Legal Entity)
- Location (City, State)
- Exact Products Imported (be specific from BOL descriptions)
- Latest shipment date (look for "last shipment", "recent activity", recent years)
- Any contact info visible in snippets.

Combine this with any provided scraped data: %[4]s

Deduplicate and return a JSON list.`

const cleanPrompt = `You are a data aggregator. Combine the AI Search Results into a single unique list of USA Importers.

Rules:
1. Deduplicate based on company name.
2. Prioritize data from tradeindata.com if available.
3. Ensure "lastShipmentDate" is populated if possible.
4. Format as JSON.

Data Input:
%s

Required Output JSON Structure:
{
  "importers": [
    {
      "importerName": "string",
      "location": "string (City, State)",
      "primaryCommodities": "string",
      "lastShipmentDate": "string (YYYY-MM-DD or 'Recent')",
      "contactInformation": "string (optional)",
      "source": "string (e.g. 'TradeInData', 'ImportYeti', 'Panjiva')"
    }
  ]
}`

const detailPrompt = `Act as a Senior Trade Compliance Analyst. Retrieve detailed US Customs (CBP) data, Automated Manifest System (AMS) records, and ACE data summaries for the US importer: '%s'.

SEARCH INSTRUCTIONS:
1. Search site:tradeindata.com for this importer's records, e.g. "site:tradeindata.com %[1]s bill of lading shipments".
2. If data is incomplete, check Panjiva, ImportGenius, 52wmb, Seair, Volza.
3. Find the company's official website, LinkedIn, or business directory listings for email addresses, phone numbers and the registered address.
4. Describe individual Bill of Lading records as one sentence each, naming the volume with its unit, the commodity after "of", the origin after "from" and the shipper after "by". Example: "Imported 15,000 KG of Widgets from China by Supplier Co."
5. Find the total number of shipments (last 12 months) and total volume (TEUs or weight) per year.

Output the result as a valid JSON object. Do not include any markdown formatting. Return ONLY the raw JSON string.
Structure:
{
  "importerName": "string",
  "location": "string",
  "lastShipmentDate": "string (specific date if found, e.g. '2023-11-15')",
  "information": "string (business summary using CBP/AMS context)",
  "shipmentActivity": "string (summary of customs activity, trade lanes, carriers and supply chain partners)",
  "shipmentCounts": { "lastMonth": "string/number", "lastQuarter": "string/number", "lastYear": "string/number" },
  "shipmentHistory": [ { "date": "string (YYYY-MM-DD)", "event": "string (one BOL sentence as described above)" } ],
  "shipmentVolumeHistory": [ { "year": number, "volume": number } ],
  "commodities": "string",
  "contact": { "phone": "string", "email": "string", "website": "string", "address": "string" },
  "riskAssessment": { "financialStability": "string", "regulatoryCompliance": "string", "geopoliticalRisk": "string" },
  "topTradePartners": [ { "country": "string", "tradeVolume": "string (e.g. 'High', '150 shipments', '2000 TEU')" } ],
  "topCommodityFlows": [
    {
      "name": "string",
      "percentage": "string",
      "averagePrice": "string (optional)",
      "marketTrend": "string (optional, increasing/decreasing/stable)",
      "topSupplier": "string (optional)",
      "priceTrendData": [number],
      "importVolumeTrendData": [number]
    }
  ]
}`

const similarPrompt = `Find 3-4 similar or related USA-based importers based on the query: "%s".
Search for records on www.tradeindata.com and global trade intelligence platforms.

Output the result as a valid JSON object. Do not include any markdown formatting. Return ONLY the raw JSON string.
Structure:
{
  "importers": [
    {
      "importerName": "string",
      "location": "string",
      "primaryCommodities": "string",
      "lastShipmentDate": "string"
    }
  ]
}`

// Filters are the search inputs. Any subset may be blank.
type Filters struct {
	Query    string `json:"query"`
	City     string `json:"city"`
	State    string `json:"state"`
	Industry string `json:"industry"`
}

// Blank reports whether every filter is empty after trimming.
func (f Filters) Blank() bool {
	return strings.TrimSpace(f.Query) == "" &&
		strings.TrimSpace(f.City) == "" &&
		strings.TrimSpace(f.State) == "" &&
		strings.TrimSpace(f.Industry) == ""
}

// Trimmed returns f with every field trimmed.
func (f Filters) Trimmed() Filters {
	return Filters{
		Query:    strings.TrimSpace(f.Query),
		City:     strings.TrimSpace(f.City),
		State:    strings.TrimSpace(f.State),
		Industry: strings.TrimSpace(f.Industry),
	}
}

// describe renders the filters as the prompt's target clause.
func (f Filters) describe() string {
	parts := []string{fmt.Sprintf("%q", f.Query)}
	if f.City != "" {
		parts = append(parts, "in "+f.City)
	}
	if f.State != "" {
		parts = append(parts, "in "+f.State)
	}
	if f.Industry != "" {
		parts = append(parts, "industry: "+f.Industry)
	}
	return strings.Join(parts, " ")
}

func buildSearchPrompt(f Filters, leads []model.RawLead) string {
	subject := f.Query
	if subject == "" {
		subject = f.Industry
	}
	leadJSON, err := json.Marshal(leads)
	if err != nil || len(leads) == 0 {
		leadJSON = []byte("[]")
	}
	return fmt.Sprintf(searchPrompt, f.describe(), subject, f.Query, string(leadJSON))
}

func buildCleanPrompt(raw string) string {
	return fmt.Sprintf(cleanPrompt, raw)
}

func buildDetailPrompt(name string) string {
	return fmt.Sprintf(detailPrompt, name)
}

func buildSimilarPrompt(query string) string {
	return fmt.Sprintf(similarPrompt, query)
}
