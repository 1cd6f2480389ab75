package news

import (
	"testing"
	"time"

	"crypto-forecast-dashboard/internal/types"
)

func TestLabelHeadline(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Bitcoin surges to record high", types.SentimentSomewhatBullish},
		{"ETH plunges amid broad selloff", types.SentimentSomewhatBearish},
		{"BITCOIN RALLY CONTINUES", types.SentimentSomewhatBullish},
		{"Exchange hack drains wallets", types.SentimentSomewhatBearish},
		{"Bitcoin steady as traders await Fed", types.SentimentNeutral},
		// Mixed headlines lean positive
		{"Rally fades as market drops", types.SentimentSomewhatBullish},
	}

	for _, tt := range tests {
		got := labelHeadline(tt.title)
		if got != tt.expected {
			t.Errorf("labelHeadline(%q): expected %s, got %s", tt.title, tt.expected, got)
		}
	}
}

func TestSummarize(t *testing.T) {
	articles := []types.NewsArticle{
		{Title: "a", SentimentLabel: types.SentimentBullish, SentimentScore: 0.5},
		{Title: "b", SentimentLabel: types.SentimentSomewhatBullish, SentimentScore: 0.25},
		{Title: "c", SentimentLabel: types.SentimentNeutral, SentimentScore: 0},
		{Title: "d", SentimentLabel: types.SentimentBearish, SentimentScore: -0.25},
	}

	summary := Summarize(articles)

	if summary.Positive != 2 {
		t.Errorf("Expected 2 positive, got %d", summary.Positive)
	}
	if summary.Neutral != 1 {
		t.Errorf("Expected 1 neutral, got %d", summary.Neutral)
	}
	if summary.Negative != 1 {
		t.Errorf("Expected 1 negative, got %d", summary.Negative)
	}
	if summary.AverageScore != 0.125 {
		t.Errorf("Expected average score 0.125, got %f", summary.AverageScore)
	}
}

func TestSummarizeCountsUnknownLabelsAsNeutral(t *testing.T) {
	articles := []types.NewsArticle{
		{Title: "a", SentimentLabel: "Mixed Outlook"},
		{Title: "b", SentimentLabel: ""},
	}

	summary := Summarize(articles)

	if summary.Neutral != 2 {
		t.Errorf("Expected 2 neutral for unknown labels, got %d", summary.Neutral)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	if summary.Positive != 0 || summary.Neutral != 0 || summary.Negative != 0 {
		t.Error("Expected zero counts for empty input")
	}
	if summary.AverageScore != 0 {
		t.Errorf("Expected zero average for empty input, got %f", summary.AverageScore)
	}
}

func TestBuildResponse(t *testing.T) {
	articles := []types.NewsArticle{
		{Title: "Bitcoin surges on ETF inflows", URL: "https://example.com/a", Source: "YahooFinance"},
		{Title: "Regulator files lawsuit against exchange", URL: "https://example.com/b", Source: "GoogleNews"},
	}

	response := BuildResponse("BTC-USD", articles)

	if response.Symbol != "BTC-USD" {
		t.Errorf("Expected symbol BTC-USD, got %s", response.Symbol)
	}

	if response.Articles[0].SentimentLabel != types.SentimentSomewhatBullish {
		t.Errorf("Expected first article to be labeled bullish, got %s", response.Articles[0].SentimentLabel)
	}

	if response.Articles[1].SentimentLabel != types.SentimentSomewhatBearish {
		t.Errorf("Expected second article to be labeled bearish, got %s", response.Articles[1].SentimentLabel)
	}

	if response.Summary.Positive != 1 || response.Summary.Negative != 1 {
		t.Errorf("Expected summary 1 positive / 1 negative, got %d / %d",
			response.Summary.Positive, response.Summary.Negative)
	}

	// Synthetic timestamps parse in the wire layout
	for _, article := range response.Articles {
		if _, err := time.Parse(types.CompactTimeLayout, article.TimePublished); err != nil {
			t.Errorf("Expected parseable timestamp, got %q: %v", article.TimePublished, err)
		}
	}
}

func TestBuildResponseKeepsExistingLabels(t *testing.T) {
	articles := []types.NewsArticle{
		{Title: "Bitcoin surges", SentimentLabel: types.SentimentBearish, TimePublished: "20250224T231000"},
	}

	response := BuildResponse("BTC-USD", articles)

	if response.Articles[0].SentimentLabel != types.SentimentBearish {
		t.Errorf("Expected existing label to be kept, got %s", response.Articles[0].SentimentLabel)
	}

	if response.Articles[0].TimePublished != "20250224T231000" {
		t.Errorf("Expected existing timestamp to be kept, got %s", response.Articles[0].TimePublished)
	}
}
