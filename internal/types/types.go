package types

// Prediction direction values returned by the backend. Anything else renders
// with the neutral glyph.
const (
	DirectionUp   = "UP"
	DirectionDown = "DOWN"
)

// PredictionRequest is the body POSTed to {base}/predict. The alpha variant
// sends a currency pair plus an API key; the yahoo variant a single symbol.
// Unused variant fields are omitted from the wire.
type PredictionRequest struct {
	Symbol        string `json:"symbol,omitempty"`
	BaseCurrency  string `json:"base_currency,omitempty"`
	QuoteCurrency string `json:"quote_currency,omitempty"`
	Timeframe     string `json:"timeframe" validate:"required,oneof=daily weekly monthly 1d 1wk 1mo"`
	Period        string `json:"period" validate:"required"` // numeric days ("60") or tagged ("30d", "1y", "max")
	APIKey        string `json:"api_key,omitempty"`
}

// PredictionResponse is the primary payload rendered by the dashboard.
// Field names, nesting and enum strings are the backend contract; do not
// rename them.
type PredictionResponse struct {
	Prediction          string              `json:"prediction" validate:"required,oneof=UP DOWN"`
	ProbabilityUp       float64             `json:"probability_up" validate:"gte=0,lte=1"`
	ProbabilityDown     float64             `json:"probability_down" validate:"gte=0,lte=1"`
	CurrentPrice        float64             `json:"current_price" validate:"gte=0"`
	TechnicalIndicators TechnicalIndicators `json:"technical_indicators"`
	Accuracy            float64             `json:"accuracy" validate:"gte=0,lte=1"`
	PlotBase64          string              `json:"plot_base64,omitempty"`
	Forecast            []ForecastPoint     `json:"forecast" validate:"dive"`
}

// TechnicalIndicators carries the backend-computed indicator values with
// their categorical signals. ATR is a volatility measure and has no signal.
type TechnicalIndicators struct {
	RSI              float64 `json:"rsi"`
	RSISignal        string  `json:"rsi_signal"` // "Overbought", "Neutral", "Oversold"
	MACD             float64 `json:"macd"`
	MACDSignal       string  `json:"macd_signal"` // "Bullish", "Bearish"
	Stochastic       float64 `json:"stochastic"`
	StochasticSignal string  `json:"stochastic_signal"`
	ADX              float64 `json:"adx"`
	ADXSignal        string  `json:"adx_signal"` // "Strong", "Weak"
	ATR              float64 `json:"atr"`
	MFI              float64 `json:"mfi"`
	MFISignal        string  `json:"mfi_signal"`
}

// ForecastPoint is one entry of the ordered forecast sequence. The backend
// intends low <= predicted <= high but does not guarantee it; the validation
// boundary does not enforce it either, only ranges and enums.
type ForecastPoint struct {
	Date                   string  `json:"date"` // "2025-02-24"
	PredictedPrice         float64 `json:"predicted_price"`
	PredictionIntervalLow  float64 `json:"prediction_interval_low"`
	PredictionIntervalHigh float64 `json:"prediction_interval_high"`
	Direction              string  `json:"direction" validate:"omitempty,oneof=UP DOWN"`
	Probability            float64 `json:"probability" validate:"gte=0,lte=1"`
}

// MarketMovers holds the three ranked ticker lists from the movers endpoint.
type MarketMovers struct {
	TopGainers         []TickerInfo `json:"top_gainers" validate:"dive"`
	TopLosers          []TickerInfo `json:"top_losers" validate:"dive"`
	MostActivelyTraded []TickerInfo `json:"most_actively_traded" validate:"dive"`
	LastUpdated        string       `json:"last_updated"`
}

// TickerInfo is one row of a movers list. The upstream serves
// change_percentage pre-formatted (e.g. "+3.21%"); everything else is numeric.
type TickerInfo struct {
	Ticker           string  `json:"ticker" validate:"required"`
	Price            float64 `json:"price"`
	ChangeAmount     float64 `json:"change_amount"`
	ChangePercentage string  `json:"change_percentage"`
	Volume           float64 `json:"volume"`
}

// ErrorBody is the shape the backend uses for non-2xx responses.
type ErrorBody struct {
	Detail string `json:"detail"`
}
