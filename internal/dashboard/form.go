package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"crypto-forecast-dashboard/internal/predictor"
	"crypto-forecast-dashboard/internal/store"
)

// defaultValues seeds the form from config, falling back to the provider's
// own vocabulary when the configured timeframe or period belongs to the
// other variant.
func defaultValues(cfg *store.Config, p predictor.Provider) *predictor.FormValues {
	v := &predictor.FormValues{
		Symbol:    cfg.Form.Symbol,
		Base:      cfg.Form.Base,
		Quote:     cfg.Form.Quote,
		Timeframe: cfg.Form.Timeframe,
		Period:    cfg.Form.Period,
		APIKey:    cfg.APIKey(),
	}

	if !p.ValidTimeframe(v.Timeframe) {
		v.Timeframe = p.DefaultTimeframe()
	}
	if !p.ValidPeriod(v.Period) {
		v.Period = p.DefaultPeriod()
	}

	return v
}

// newRequestForm builds the request form for one provider variant. The
// field set follows the variant schema: pair plus key for alpha, single
// symbol for yahoo. Selects only offer the variant's own vocabulary, so an
// invalid timeframe or period cannot be submitted.
func newRequestForm(p predictor.Provider, v *predictor.FormValues) *huh.Form {
	fields := []huh.Field{}

	if p.PairFields {
		fields = append(fields,
			huh.NewInput().
				Key("base").
				Title("Base currency").
				Placeholder("BTC").
				Value(&v.Base).
				Validate(notEmpty("base currency")),
			huh.NewInput().
				Key("quote").
				Title("Quote currency").
				Placeholder("USD").
				Value(&v.Quote).
				Validate(notEmpty("quote currency")),
		)
	} else {
		fields = append(fields,
			huh.NewInput().
				Key("symbol").
				Title("Symbol").
				Placeholder("BTC-USD").
				Value(&v.Symbol).
				Validate(notEmpty("symbol")),
		)
	}

	fields = append(fields,
		huh.NewSelect[string]().
			Key("timeframe").
			Title("Timeframe").
			Options(huh.NewOptions(p.Timeframes...)...).
			Value(&v.Timeframe),
		huh.NewSelect[string]().
			Key("period").
			Title("Period").
			Options(huh.NewOptions(p.Periods...)...).
			Value(&v.Period),
	)

	if p.RequiresKey {
		fields = append(fields,
			huh.NewInput().
				Key("api_key").
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Value(&v.APIKey),
		)
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true)
}

func notEmpty(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		return nil
	}
}
