package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"crypto-forecast-dashboard/internal/format"
	"crypto-forecast-dashboard/internal/state"
	"crypto-forecast-dashboard/internal/types"
)

const (
	forecastPreviewRows = 5
	moversListRows      = 5
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.formActive {
		b.WriteString(m.form.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter confirm · esc back · ctrl+c quit"))
		return b.String()
	}

	b.WriteString(panelStyle.Render(m.renderPrediction()))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(m.renderMovers()))
	if m.provider.SupportsNews {
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(m.renderNews()))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("n new request · r re-run · s save chart · p switch provider · q quit"))

	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Crypto Forecast Dashboard")
	meta := subtleStyle.Render(fmt.Sprintf("provider: %s   backend: %s", m.provider.Name, m.cfg.Backend.BaseURL))
	return lipgloss.JoinVertical(lipgloss.Left, title, meta)
}

// writeFailure renders the error banner shared by all panels. When a stale
// payload survives underneath, the panel says so instead of blanking out.
func writeFailure(b *strings.Builder, errMsg string, hasStale bool) {
	b.WriteString(errorStyle.Render("✗ " + errMsg))
	b.WriteString("\n")
	if hasStale {
		b.WriteString(staleStyle.Render("Showing last successful result."))
		b.WriteString("\n")
	}
}

func (m Model) renderPrediction() string {
	slot := &m.states.Prediction

	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Prediction"))
	b.WriteString("\n")

	switch slot.Phase() {
	case state.PhaseIdle:
		b.WriteString(subtleStyle.Render("Submit a request to fetch a forecast."))
		return b.String()
	case state.PhaseLoading:
		b.WriteString(m.spin.View() + " Fetching prediction...")
		return b.String()
	}

	response, hasValue := slot.Value()
	if msg := slot.Err(); msg != "" {
		writeFailure(&b, msg, hasValue)
	}
	if !hasValue {
		return b.String()
	}

	glyph, class := format.Direction(response.Prediction)
	b.WriteString(styleFor(class).Render(glyph + " " + response.Prediction))
	b.WriteString(fmt.Sprintf("   up %s / down %s",
		format.Percent(response.ProbabilityUp), format.Percent(response.ProbabilityDown)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Current price ") + format.Currency(response.CurrentPrice))
	b.WriteString(labelStyle.Render("   Model accuracy ") + format.Percent(response.Accuracy))
	b.WriteString("\n\n")
	b.WriteString(renderIndicators(response.TechnicalIndicators))

	if len(response.Forecast) > 0 {
		b.WriteString("\n")
		b.WriteString(renderForecast(response.Forecast))
	}
	if response.PlotBase64 != "" {
		note := "Chart attached; press s to export it."
		if m.chartNote != "" {
			note = m.chartNote
		}
		b.WriteString(subtleStyle.Render(note))
		b.WriteString("\n")
	}

	return b.String()
}

func renderIndicators(ind types.TechnicalIndicators) string {
	rows := []struct {
		name   string
		value  float64
		signal string
	}{
		{"RSI", ind.RSI, ind.RSISignal},
		{"MACD", ind.MACD, ind.MACDSignal},
		{"Stochastic", ind.Stochastic, ind.StochasticSignal},
		{"ADX", ind.ADX, ind.ADXSignal},
		{"ATR", ind.ATR, ""}, // volatility measure, no signal
		{"MFI", ind.MFI, ind.MFISignal},
	}

	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Indicators"))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-11s %10.2f", row.name, row.value))
		if row.signal != "" {
			b.WriteString("  " + styleFor(format.SignalClass(row.signal)).Render(row.signal))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderForecast(points []types.ForecastPoint) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Forecast"))
	b.WriteString("\n")

	shown := points
	if len(shown) > forecastPreviewRows {
		shown = shown[:forecastPreviewRows]
	}
	for _, point := range shown {
		glyph, class := format.Direction(point.Direction)
		b.WriteString(fmt.Sprintf("%-12s %14s  (%s to %s)  %s",
			point.Date,
			format.Currency(point.PredictedPrice),
			format.Currency(point.PredictionIntervalLow),
			format.Currency(point.PredictionIntervalHigh),
			styleFor(class).Render(glyph)))
		if point.Probability > 0 {
			b.WriteString(" " + format.Percent(point.Probability))
		}
		b.WriteString("\n")
	}
	if len(points) > forecastPreviewRows {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("and %d more points", len(points)-forecastPreviewRows)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderMovers() string {
	slot := &m.states.Movers

	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Market Movers"))
	b.WriteString("\n")

	switch slot.Phase() {
	case state.PhaseIdle:
		b.WriteString(subtleStyle.Render("Waiting for a request."))
		return b.String()
	case state.PhaseLoading:
		b.WriteString(m.spin.View() + " Fetching market movers...")
		return b.String()
	}

	movers, hasValue := slot.Value()
	if msg := slot.Err(); msg != "" {
		writeFailure(&b, msg, hasValue)
	}
	if !hasValue {
		return b.String()
	}

	b.WriteString(renderTickerList("Top Gainers", movers.TopGainers))
	b.WriteString(renderTickerList("Top Losers", movers.TopLosers))
	b.WriteString(renderTickerList("Most Actively Traded", movers.MostActivelyTraded))
	if movers.LastUpdated != "" {
		b.WriteString(subtleStyle.Render("Last updated: " + movers.LastUpdated))
		b.WriteString("\n")
	}

	return b.String()
}

func renderTickerList(title string, rows []types.TickerInfo) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(title))
	b.WriteString("\n")

	shown := rows
	if len(shown) > moversListRows {
		shown = shown[:moversListRows]
	}
	for _, ticker := range shown {
		class := format.ClassNeutral
		if ticker.ChangeAmount > 0 {
			class = format.ClassPositive
		} else if ticker.ChangeAmount < 0 {
			class = format.ClassNegative
		}

		b.WriteString(fmt.Sprintf("%-10s %14s  %s  vol %s\n",
			ticker.Ticker,
			format.Currency(ticker.Price),
			styleFor(class).Render(ticker.ChangePercentage),
			format.Volume(ticker.Volume)))
	}

	return b.String()
}

func (m Model) renderNews() string {
	slot := &m.states.News

	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("News"))
	b.WriteString("\n")

	switch slot.Phase() {
	case state.PhaseIdle:
		b.WriteString(subtleStyle.Render("Waiting for a request."))
		return b.String()
	case state.PhaseLoading:
		b.WriteString(m.spin.View() + " Fetching news...")
		return b.String()
	}

	response, hasValue := slot.Value()
	if msg := slot.Err(); msg != "" {
		writeFailure(&b, msg, hasValue)
	}
	if !hasValue {
		return b.String()
	}

	summary := response.Summary
	b.WriteString(fmt.Sprintf("%s / %s / %s   avg score %.2f\n",
		positiveStyle.Render(fmt.Sprintf("%d positive", summary.Positive)),
		neutralStyle.Render(fmt.Sprintf("%d neutral", summary.Neutral)),
		negativeStyle.Render(fmt.Sprintf("%d negative", summary.Negative)),
		summary.AverageScore))

	for _, article := range response.Articles {
		class := format.SentimentClass(article.SentimentLabel)
		b.WriteString(styleFor(class).Render(classGlyph(class)) + " " + article.Title)
		b.WriteString("\n")

		date := format.NewsDate(article.TimePublished)
		if t, err := time.Parse(types.CompactTimeLayout, article.TimePublished); err == nil {
			date += " (" + format.Freshness(t) + ")"
		}
		meta := date
		if article.Source != "" {
			meta += " · " + article.Source
		}
		b.WriteString("  " + subtleStyle.Render(meta))
		b.WriteString("\n")
	}

	return b.String()
}

func classGlyph(c format.Class) string {
	switch c {
	case format.ClassPositive:
		return format.GlyphUp
	case format.ClassNegative:
		return format.GlyphDown
	default:
		return format.GlyphNeutral
	}
}

func styleFor(c format.Class) lipgloss.Style {
	switch c {
	case format.ClassPositive:
		return positiveStyle
	case format.ClassNegative:
		return negativeStyle
	default:
		return neutralStyle
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	staleStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))
)
