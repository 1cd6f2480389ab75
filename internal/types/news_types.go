package types

// CompactTimeLayout is the wire layout of NewsArticle.TimePublished.
const CompactTimeLayout = "20060102T150405"

// Sentiment labels used by the news backend. Free text outside this set is
// tolerated on the wire and rendered with the neutral style.
const (
	SentimentBearish         = "Bearish"
	SentimentSomewhatBearish = "Somewhat-Bearish"
	SentimentNeutral         = "Neutral"
	SentimentSomewhatBullish = "Somewhat-Bullish"
	SentimentBullish         = "Bullish"
)

// NewsResponse is the payload of the news endpoint: scored articles for a
// symbol plus an aggregate summary.
type NewsResponse struct {
	Symbol   string        `json:"symbol"`
	Articles []NewsArticle `json:"articles" validate:"dive"`
	Summary  NewsSummary   `json:"summary"`
}

// NewsArticle is one scored headline. TimePublished uses the compact
// "YYYYMMDDTHHMMSS" form (e.g. "20250224T231000").
type NewsArticle struct {
	Title          string  `json:"title" validate:"required"`
	URL            string  `json:"url"`
	Source         string  `json:"source"`
	Summary        string  `json:"summary"`
	TimePublished  string  `json:"time_published"`
	SentimentScore float64 `json:"sentiment_score" validate:"gte=-1,lte=1"`
	SentimentLabel string  `json:"sentiment_label"`
}

// NewsSummary aggregates per-label article counts and the mean score.
type NewsSummary struct {
	Positive     int     `json:"positive"`
	Neutral      int     `json:"neutral"`
	Negative     int     `json:"negative"`
	AverageScore float64 `json:"average_score"`
}
