// Package risk maps free-text risk narratives to a coarse risk level.
package risk

import (
	"regexp"
	"strings"

	"github.com/sells-group/importer-intel/internal/model"
)

// Level is the classified risk tier.
type Level string

// Risk levels.
const (
	LevelLow     Level = "Low"
	LevelMedium  Level = "Medium"
	LevelHigh    Level = "High"
	LevelUnknown Level = "Unknown"
)

// Styling tiers, consumed by renderers to pick badge colors.
const (
	TierPositive = "positive"
	TierCaution  = "caution"
	TierNegative = "negative"
	TierNeutral  = "neutral"
)

// Assessment is a classified narrative.
type Assessment struct {
	Level Level  `json:"level"`
	Tier  string `json:"tier"`
}

// The tests run in this order and the first match wins. "low risk" is in the
// positive set and a bare "low" in the negative set, so order alone decides
// which one a sentence lands in.
var rules = []struct {
	re    *regexp.Regexp
	level Level
	tier  string
}{
	{regexp.MustCompile(`\b(high|strong|good|stable|compliant|low risk)\b`), LevelLow, TierPositive},
	{regexp.MustCompile(`\b(medium|moderate|some concern|monitored|adequate)\b`), LevelMedium, TierCaution},
	{regexp.MustCompile(`\b(low|poor|unstable|violation|sanction|high risk|negative)\b`), LevelHigh, TierNegative},
}

// Classify returns the risk level for a narrative.
func Classify(text string) Assessment {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.re.MatchString(lower) {
			return Assessment{Level: r.level, Tier: r.tier}
		}
	}
	return Assessment{Level: LevelUnknown, Tier: TierNeutral}
}

// Row is one labelled line of the risk section.
type Row struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Risk    Assessment `json:"risk"`
}

// ClassifyAll classifies the three narratives in display order.
func ClassifyAll(a model.RiskAssessment) []Row {
	items := []struct{ title, content string }{
		{"Financial Stability", a.FinancialStability},
		{"Regulatory Compliance", a.RegulatoryCompliance},
		{"Geopolitical Risk", a.GeopoliticalRisk},
	}
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{Title: it.title, Content: it.content, Risk: Classify(it.content)})
	}
	return rows
}
