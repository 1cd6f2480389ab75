// Package format holds the display formatting rules shared by the dashboard
// and the one-shot reporter: currency and percent rendering, direction
// glyphs, signal and sentiment classification, compact news dates, volume.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"crypto-forecast-dashboard/internal/types"
)

// Class is the display classification applied to a rendered value. The
// presentation layer decides what a class looks like (color, prefix).
type Class int

const (
	ClassNeutral Class = iota
	ClassPositive
	ClassNegative
)

// Direction glyphs.
const (
	GlyphUp      = "▲"
	GlyphDown    = "▼"
	GlyphNeutral = "•"
)

// printer groups digits the en-US way. Prices arrive as raw floats and
// render as "$45,234.46".
var printer = message.NewPrinter(language.English)

// Currency renders a price with two decimals, grouped, "$"-prefixed.
func Currency(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// Percent renders a [0,1] ratio as value*100 fixed to one decimal:
// 0.8234 renders "82.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// Direction maps a prediction direction onto its glyph and class. The wire
// contract admits only UP and DOWN; anything else renders neutral.
func Direction(d string) (string, Class) {
	switch d {
	case types.DirectionUp:
		return GlyphUp, ClassPositive
	case types.DirectionDown:
		return GlyphDown, ClassNegative
	default:
		return GlyphNeutral, ClassNeutral
	}
}

// SignalClass classifies an indicator signal label. The bull/strong branch
// runs before bear/weak, so a mixed label like "Strong Bearish" classifies
// positive. Overbought and Oversold match exactly, case-sensitive; the
// keyword matches are case-insensitive substrings.
func SignalClass(signal string) Class {
	lower := strings.ToLower(signal)
	if strings.Contains(lower, "bull") || strings.Contains(lower, "strong") || signal == "Overbought" {
		return ClassPositive
	}
	if strings.Contains(lower, "bear") || strings.Contains(lower, "weak") || signal == "Oversold" {
		return ClassNegative
	}
	return ClassNeutral
}

// SentimentClass classifies a news sentiment label. Labels outside the known
// set fall back to neutral.
func SentimentClass(label string) Class {
	switch label {
	case types.SentimentBullish, types.SentimentSomewhatBullish:
		return ClassPositive
	case types.SentimentBearish, types.SentimentSomewhatBearish:
		return ClassNegative
	default:
		return ClassNeutral
	}
}

// NewsDate renders a compact "YYYYMMDDTHHMMSS" timestamp as "Jan 2, 2006".
// Strings shorter than eight characters render "N/A"; strings whose first
// eight characters do not form a calendar date come back unchanged.
func NewsDate(ts string) string {
	if len(ts) < 8 {
		return "N/A"
	}
	d, err := time.Parse("20060102", ts[:8])
	if err != nil {
		return ts
	}
	return d.Format("Jan 2, 2006")
}

// Volume renders a share/coin volume in millions with one decimal: 2345000
// renders "2.3M".
func Volume(v float64) string {
	return fmt.Sprintf("%.1fM", v/1e6)
}

// Freshness renders how long ago a panel was refreshed ("3 minutes ago").
func Freshness(t time.Time) string {
	return humanize.Time(t)
}
