package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator for wire payloads.
var validate = validator.New()

// Validate checks a request before dispatch. Exactly one of Symbol or the
// BaseCurrency/QuoteCurrency pair must be set; tag rules cover the rest.
func (r *PredictionRequest) Validate() error {
	hasSymbol := r.Symbol != ""
	hasPair := r.BaseCurrency != "" && r.QuoteCurrency != ""
	if hasSymbol == hasPair {
		return errors.New("prediction request: exactly one of symbol or base/quote pair must be set")
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("prediction request: %w", describeValidation(err))
	}
	return nil
}

// Validate runs the post-deserialization boundary on a prediction payload.
// probability_up and probability_down are range-checked individually; their
// sum is not checked.
func (p *PredictionResponse) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("prediction response: %w", describeValidation(err))
	}
	return nil
}

// Validate runs the post-deserialization boundary on a movers payload.
func (m *MarketMovers) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("market movers: %w", describeValidation(err))
	}
	return nil
}

// Validate runs the post-deserialization boundary on a news payload.
func (n *NewsResponse) Validate() error {
	if err := validate.Struct(n); err != nil {
		return fmt.Errorf("news response: %w", describeValidation(err))
	}
	return nil
}

// describeValidation reduces validator output to the first offending field.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("field %s failed %q check", fe.Field(), fe.Tag())
	}
	return err
}
