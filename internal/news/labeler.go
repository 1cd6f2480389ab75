package news

import (
	"strings"
	"time"

	"crypto-forecast-dashboard/internal/format"
	"crypto-forecast-dashboard/internal/types"
)

// Keyword lists for coarse headline labeling. Bullish words are checked
// first so mixed headlines lean positive, matching how the scored feed
// breaks ties.
var bullishWords = []string{
	"surge", "rally", "record", "soar", "jump", "gain", "breakout",
	"bullish", "adoption", "approval", "etf inflow",
}

var bearishWords = []string{
	"plunge", "crash", "selloff", "sell-off", "tumble", "slump", "drop",
	"bearish", "hack", "lawsuit", "liquidation",
}

// labelHeadline assigns a coarse sentiment label from headline keywords.
// Scraped articles carry no model score, so they get the mild labels and
// a zero score.
func labelHeadline(title string) string {
	lower := strings.ToLower(title)

	for _, word := range bullishWords {
		if strings.Contains(lower, word) {
			return types.SentimentSomewhatBullish
		}
	}
	for _, word := range bearishWords {
		if strings.Contains(lower, word) {
			return types.SentimentSomewhatBearish
		}
	}
	return types.SentimentNeutral
}

// Summarize aggregates per-class article counts and the mean score
func Summarize(articles []types.NewsArticle) types.NewsSummary {
	var summary types.NewsSummary
	if len(articles) == 0 {
		return summary
	}

	total := 0.0
	for _, article := range articles {
		switch format.SentimentClass(article.SentimentLabel) {
		case format.ClassPositive:
			summary.Positive++
		case format.ClassNegative:
			summary.Negative++
		default:
			summary.Neutral++
		}
		total += article.SentimentScore
	}

	summary.AverageScore = total / float64(len(articles))
	return summary
}

// BuildResponse labels scraped headlines and aggregates their summary so
// the renderer treats them exactly like backend-scored articles
func BuildResponse(symbol string, articles []types.NewsArticle) types.NewsResponse {
	labeled := make([]types.NewsArticle, len(articles))
	copy(labeled, articles)

	now := time.Now().UTC().Format(types.CompactTimeLayout)
	for i := range labeled {
		if labeled[i].SentimentLabel == "" {
			labeled[i].SentimentLabel = labelHeadline(labeled[i].Title)
		}
		if labeled[i].TimePublished == "" {
			labeled[i].TimePublished = now
		}
	}

	return types.NewsResponse{
		Symbol:   symbol,
		Articles: labeled,
		Summary:  Summarize(labeled),
	}
}
