package types

import "time"

// HistoryEntry is one recorded prediction outcome, written after a
// successful forecast so past calls can be audited later.
type HistoryEntry struct {
	ID            int64     `json:"id,omitempty"`
	RequestID     string    `json:"request_id"`
	Provider      string    `json:"provider"`
	Target        string    `json:"target"`
	Timeframe     string    `json:"timeframe"`
	Period        string    `json:"period"`
	Prediction    string    `json:"prediction"`
	ProbabilityUp float64   `json:"probability_up"`
	CurrentPrice  float64   `json:"current_price"`
	Accuracy      float64   `json:"accuracy"`
	CreatedAt     time.Time `json:"created_at"`
}
