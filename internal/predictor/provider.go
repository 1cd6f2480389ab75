// Package predictor dispatches requests to the remote forecast backend and
// enforces the response contract. The backend computes everything; this
// package only ships requests, parses payloads and classifies failures.
package predictor

import (
	"fmt"
	"strings"

	"crypto-forecast-dashboard/internal/types"
)

// Provider describes one backend variant. The variants differ only in base
// path, request field schema and selection vocabularies; the dispatch flow
// is the same parameterized component for both.
type Provider struct {
	Name         string
	BasePath     string
	PairFields   bool // base/quote pair instead of a single symbol
	Timeframes   []string
	Periods      []string
	RequiresKey  bool
	SupportsNews bool
}

// Alpha is the pair-based variant. Prediction requests carry the API key in
// the body; the movers endpoint takes it as a query parameter.
var Alpha = Provider{
	Name:        "alpha",
	BasePath:    "/api-analysis",
	PairFields:  true,
	Timeframes:  []string{"daily", "weekly", "monthly"},
	Periods:     []string{"30", "60", "90", "180", "365"},
	RequiresKey: true,
}

// Yahoo is the single-symbol variant. No key, tagged periods, news support.
var Yahoo = Provider{
	Name:         "yahoo",
	BasePath:     "/api-analysis-yahoo",
	PairFields:   false,
	Timeframes:   []string{"1d", "1wk", "1mo"},
	Periods:      []string{"30d", "60d", "90d", "6mo", "1y", "max"},
	SupportsNews: true,
}

// ByName returns the named built-in provider.
func ByName(name string) (Provider, error) {
	switch strings.ToLower(name) {
	case Alpha.Name:
		return Alpha, nil
	case Yahoo.Name:
		return Yahoo, nil
	default:
		return Provider{}, fmt.Errorf("unknown provider '%s': must be 'alpha' or 'yahoo'", name)
	}
}

// FormValues is the frozen snapshot of the user's selections at submit time.
type FormValues struct {
	Symbol    string
	Base      string
	Quote     string
	Timeframe string
	Period    string
	APIKey    string
}

// Request freezes form values into the wire request for this variant.
// Fields the variant does not use stay empty and off the wire.
func (p Provider) Request(v FormValues) types.PredictionRequest {
	req := types.PredictionRequest{
		Timeframe: v.Timeframe,
		Period:    v.Period,
	}
	if p.PairFields {
		req.BaseCurrency = strings.ToUpper(v.Base)
		req.QuoteCurrency = strings.ToUpper(v.Quote)
	} else {
		req.Symbol = strings.ToUpper(v.Symbol)
	}
	if p.RequiresKey {
		req.APIKey = v.APIKey
	}
	return req
}

// Target renders the instrument a request is about, for logs and panels:
// "BTC/USD" for the pair variant, the raw symbol otherwise.
func (p Provider) Target(v FormValues) string {
	if p.PairFields {
		return strings.ToUpper(v.Base) + "/" + strings.ToUpper(v.Quote)
	}
	return strings.ToUpper(v.Symbol)
}

// ValidTimeframe reports whether tf belongs to this variant's vocabulary.
func (p Provider) ValidTimeframe(tf string) bool {
	for _, t := range p.Timeframes {
		if t == tf {
			return true
		}
	}
	return false
}

// ValidPeriod reports whether period belongs to this variant's vocabulary.
func (p Provider) ValidPeriod(period string) bool {
	for _, pd := range p.Periods {
		if pd == period {
			return true
		}
	}
	return false
}

// DefaultTimeframe is the first vocabulary entry.
func (p Provider) DefaultTimeframe() string {
	if len(p.Timeframes) == 0 {
		return ""
	}
	return p.Timeframes[0]
}

// DefaultPeriod is the first vocabulary entry.
func (p Provider) DefaultPeriod() string {
	if len(p.Periods) == 0 {
		return ""
	}
	return p.Periods[0]
}
