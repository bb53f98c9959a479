// Package cost estimates generator spend from token usage.
package cost

import (
	"sort"
	"sync"
)

// Rates holds per-provider pricing configuration.
type Rates struct {
	Anthropic  map[string]ModelRate  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity map[string]SearchRate `yaml:"perplexity" mapstructure:"perplexity"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// SearchRate holds Perplexity pricing: token prices per million plus a flat
// fee per request.
type SearchRate struct {
	Input      float64 `yaml:"input" mapstructure:"input"`
	Output     float64 `yaml:"output" mapstructure:"output"`
	PerRequest float64 `yaml:"per_request" mapstructure:"per_request"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost of one Anthropic call. Unknown models cost 0.
func (c *Calculator) Claude(model string, input, output, cacheWrite, cacheRead int64) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}

	inCost := (float64(input) / 1e6) * rate.Input
	outCost := (float64(output) / 1e6) * rate.Output
	cwCost := (float64(cacheWrite) / 1e6) * rate.Input * rate.CacheWriteMul
	crCost := (float64(cacheRead) / 1e6) * rate.Input * rate.CacheReadMul

	return inCost + outCost + cwCost + crCost
}

// Perplexity computes the cost of one chat completion. Unknown models cost 0.
func (c *Calculator) Perplexity(model string, prompt, completion int) float64 {
	rate, ok := c.rates.Perplexity[model]
	if !ok {
		return 0
	}
	return (float64(prompt)/1e6)*rate.Input + (float64(completion)/1e6)*rate.Output + rate.PerRequest
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001": {
				Input: 0.80, Output: 4.00,
				CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-sonnet-4-5-20250929": {
				Input: 3.00, Output: 15.00,
				CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-opus-4-6": {
				Input: 15.00, Output: 75.00,
				CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
		},
		Perplexity: map[string]SearchRate{
			"sonar":     {Input: 1.00, Output: 1.00, PerRequest: 0.005},
			"sonar-pro": {Input: 3.00, Output: 15.00, PerRequest: 0.006},
		},
	}
}

// Spend is the running total for one backend.
type Spend struct {
	Backend string  `json:"backend"`
	Calls   int     `json:"calls"`
	USD     float64 `json:"usd"`
}

// Ledger accumulates spend per backend. Safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex
	totals map[string]*Spend
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{totals: make(map[string]*Spend)}
}

// Add records one call.
func (l *Ledger) Add(backend string, usd float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.totals[backend]
	if !ok {
		s = &Spend{Backend: backend}
		l.totals[backend] = s
	}
	s.Calls++
	s.USD += usd
}

// Snapshot returns the totals sorted by backend name.
func (l *Ledger) Snapshot() []Spend {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Spend, 0, len(l.totals))
	for _, s := range l.totals {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Backend < out[j].Backend })
	return out
}

// Total returns the spend across every backend.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sum float64
	for _, s := range l.totals {
		sum += s.USD
	}
	return sum
}
