// Package eventparse mines structured hints out of free-text shipment events.
//
// Each field has its own expression and runs independently against the same
// sentence; there is no grammar tying them together. Results are best effort
// and the stored event text is never modified.
package eventparse

import (
	"regexp"
	"strings"
)

// Fields holds whatever could be pulled out of one event sentence. A nil
// field was not matched.
type Fields struct {
	Volume    *string `json:"volume,omitempty"`
	Origin    *string `json:"origin,omitempty"`
	Commodity *string `json:"commodity,omitempty"`
	Supplier  *string `json:"supplier,omitempty"`
}

// Empty reports whether nothing matched; callers then show the raw event.
func (f Fields) Empty() bool {
	return f.Volume == nil && f.Origin == nil && f.Commodity == nil && f.Supplier == nil
}

// RE2 has no lookahead, so each stop condition is a trailing non-capturing
// group. The lazy capture ends at the first place the stop group can match,
// which yields the same capture a lookahead would.
var (
	volumeRe    = regexp.MustCompile(`(?i)(\d[\d,.]*\s*(?:TEUs?|containers?|units?|kgs?|kg|tons?|ton|lbs?|packages?|shipments?|cartons?|pieces?))`)
	originRe    = regexp.MustCompile(`(?i)(?:from|originating from|originating in)\s+([A-Z][a-zA-Z\s,.-]+?)(?:\s+(?:containing|of|consisting|by|supplier|via)|\.|$)`)
	commodityRe = regexp.MustCompile(`(?i)(?:of|containing|consisting of)\s+([a-zA-Z0-9\s,()-]+?)(?:\s+(?:from|via|originating|by|supplier)|\.|$)`)
	supplierRe  = regexp.MustCompile(`(?i)(?:supplier|by|manufactured by)\s+([A-Z][a-zA-Z0-9\s,.]+?)(?:\s+(?:via|from|of)|\.|$)`)
)

// Parse runs every field extractor over text.
func Parse(text string) Fields {
	return Fields{
		Volume:    Volume(text),
		Origin:    Origin(text),
		Commodity: Commodity(text),
		Supplier:  Supplier(text),
	}
}

// Volume finds a leading quantity followed by a known unit ("15,000 KG").
func Volume(text string) *string { return find(volumeRe, text) }

// Origin finds the place named after "from" / "originating in".
func Origin(text string) *string { return find(originRe, text) }

// Commodity finds the goods named after "of" / "containing".
func Commodity(text string) *string { return find(commodityRe, text) }

// Supplier finds the party named after "by" / "supplier" / "manufactured by".
func Supplier(text string) *string { return find(supplierRe, text) }

func find(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(normalize(text))
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}

// normalize trims the sentence and drops one trailing period.
func normalize(text string) string {
	return strings.TrimSuffix(strings.TrimSpace(text), ".")
}
