package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"crypto-forecast-dashboard/internal/format"
	"crypto-forecast-dashboard/internal/history"
	"crypto-forecast-dashboard/internal/logger"
	"crypto-forecast-dashboard/internal/news"
	"crypto-forecast-dashboard/internal/predictor"
	"crypto-forecast-dashboard/internal/store"
	"crypto-forecast-dashboard/internal/trace"
	"crypto-forecast-dashboard/internal/types"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Command-line flags
	configPath := flag.String("config", "", "path to config file (optional)")
	providerName := flag.String("provider", "", "backend variant: alpha or yahoo (default from config)")
	symbol := flag.String("symbol", "", "ticker for the yahoo variant, e.g. BTC-USD")
	base := flag.String("base", "", "base currency for the alpha variant, e.g. BTC")
	quote := flag.String("quote", "", "quote currency for the alpha variant, e.g. USD")
	timeframe := flag.String("timeframe", "", "candle interval (default per provider)")
	period := flag.String("period", "", "history window (default per provider)")
	apiKey := flag.String("api-key", "", "Alpha Vantage key for the alpha variant (default from env)")
	retries := flag.Int("retries", 1, "prediction attempts before giving up")
	withMovers := flag.Bool("movers", false, "also fetch the market movers lists")
	withNews := flag.Bool("news", false, "also fetch news (yahoo variant only)")
	jsonOut := flag.Bool("json", false, "print the raw prediction payload as JSON and exit")
	plotFile := flag.String("plot", "", "save the forecast chart PNG to this file")
	historyN := flag.Int("history", 0, "print the last N recorded predictions and exit")
	flag.Parse()

	// Load configuration
	cfg := store.DefaultConfig()
	if *configPath != "" {
		loaded, err := store.LoadConfig(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Initialize logger
	if err := logger.Init(); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := trace.Init(); err != nil {
		logger.Warn(ctx, "Tracing disabled", "error", err)
	}
	defer trace.Shutdown(ctx)

	// History mode reads the recorder and exits without touching the backend.
	if *historyN > 0 {
		printHistory(ctx, cfg, *historyN)
		return
	}

	name := cfg.Provider
	if *providerName != "" {
		name = *providerName
	}
	provider, err := predictor.ByName(name)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override config defaults
	v := predictor.FormValues{
		Symbol:    cfg.Form.Symbol,
		Base:      cfg.Form.Base,
		Quote:     cfg.Form.Quote,
		Timeframe: cfg.Form.Timeframe,
		Period:    cfg.Form.Period,
		APIKey:    cfg.APIKey(),
	}
	if *symbol != "" {
		v.Symbol = *symbol
	}
	if *base != "" {
		v.Base = *base
	}
	if *quote != "" {
		v.Quote = *quote
	}
	if *timeframe != "" {
		v.Timeframe = *timeframe
	}
	if *period != "" {
		v.Period = *period
	}
	if *apiKey != "" {
		v.APIKey = *apiKey
	}

	if provider.PairFields {
		if v.Base == "" || v.Quote == "" {
			fmt.Println("Error: -base and -quote are required for the alpha provider")
			flag.Usage()
			os.Exit(1)
		}
	} else if v.Symbol == "" {
		fmt.Println("Error: -symbol is required for the yahoo provider")
		flag.Usage()
		os.Exit(1)
	}

	// Selections outside the variant's vocabulary fail fast; empty ones
	// fall back to the variant default.
	if v.Timeframe != "" && !provider.ValidTimeframe(v.Timeframe) {
		fmt.Printf("Error: invalid timeframe '%s' for provider '%s': must be one of %s\n",
			v.Timeframe, provider.Name, strings.Join(provider.Timeframes, ", "))
		os.Exit(1)
	}
	if v.Timeframe == "" {
		v.Timeframe = provider.DefaultTimeframe()
	}
	if v.Period != "" && !provider.ValidPeriod(v.Period) {
		fmt.Printf("Error: invalid period '%s' for provider '%s': must be one of %s\n",
			v.Period, provider.Name, strings.Join(provider.Periods, ", "))
		os.Exit(1)
	}
	if v.Period == "" {
		v.Period = provider.DefaultPeriod()
	}

	if !*jsonOut {
		fmt.Println("╔══════════════════════════════════════════════════════════════╗")
		fmt.Println("║              Crypto Forecast - One-Shot Report               ║")
		fmt.Println("╚══════════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Printf("🔮 Requesting %s prediction for %s (%s / %s)\n",
			provider.Name, provider.Target(v), v.Timeframe, v.Period)
		fmt.Println("⏳ This may take a few moments...")
		fmt.Println()
	}

	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	client := predictor.NewClient(cfg.Backend.BaseURL, provider, timeout)
	req := provider.Request(v)

	var resp types.PredictionResponse
	if *retries > 1 {
		resp, err = client.PredictWithRetry(ctx, req, *retries)
	} else {
		resp, err = client.Predict(ctx, req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", predictor.Message(err, predictor.FallbackPrediction))
		os.Exit(1)
	}

	recordPrediction(ctx, cfg, provider, v, resp)

	if *jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write JSON: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printPrediction(provider.Target(v), &resp)

	if *plotFile != "" {
		savePlot(resp.PlotBase64, *plotFile)
	}

	if *withMovers {
		movers, err := client.MarketMovers(ctx, v.APIKey)
		if err != nil {
			fmt.Printf("⚠️  %s\n", predictor.Message(err, predictor.FallbackMovers))
		} else {
			printMovers(&movers)
		}
	}

	if *withNews {
		if !provider.SupportsNews {
			fmt.Println("⚠️  News requires the yahoo provider")
		} else {
			newsSvc := news.NewService(client, news.ServiceConfigFrom(cfg))
			newsResp, err := newsSvc.GetNews(ctx, strings.ToUpper(v.Symbol))
			if err != nil {
				fmt.Printf("⚠️  %s\n", predictor.Message(err, predictor.FallbackNews))
			} else {
				printNews(&newsResp)
			}
		}
	}
}

func printPrediction(target string, resp *types.PredictionResponse) {
	glyph, _ := format.Direction(resp.Prediction)
	emoji := "📈"
	if resp.Prediction == "DOWN" {
		emoji = "📉"
	}

	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                          PREDICTION")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("%s %s: %s %s\n", emoji, target, glyph, resp.Prediction)
	fmt.Printf("  Probability:      up %s / down %s\n",
		format.Percent(resp.ProbabilityUp), format.Percent(resp.ProbabilityDown))
	fmt.Printf("  Current Price:    %s\n", format.Currency(resp.CurrentPrice))
	fmt.Printf("  Model Accuracy:   %s\n", format.Percent(resp.Accuracy))
	fmt.Println()

	printIndicators(&resp.TechnicalIndicators)

	if len(resp.Forecast) > 0 {
		printForecast(resp.Forecast)
	}
}

func printIndicators(ind *types.TechnicalIndicators) {
	fmt.Println("  Technical Indicators:")
	fmt.Printf("    • RSI:        %8.2f  %s\n", ind.RSI, ind.RSISignal)
	fmt.Printf("    • MACD:       %8.2f  %s\n", ind.MACD, ind.MACDSignal)
	fmt.Printf("    • Stochastic: %8.2f  %s\n", ind.Stochastic, ind.StochasticSignal)
	fmt.Printf("    • ADX:        %8.2f  %s\n", ind.ADX, ind.ADXSignal)
	fmt.Printf("    • ATR:        %8.2f\n", ind.ATR)
	fmt.Printf("    • MFI:        %8.2f  %s\n", ind.MFI, ind.MFISignal)
	fmt.Println()
}

func printForecast(points []types.ForecastPoint) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                           FORECAST")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	for _, p := range points {
		glyph, _ := format.Direction(p.Direction)
		line := fmt.Sprintf("  %s  %14s  (%s to %s)  %s",
			p.Date,
			format.Currency(p.PredictedPrice),
			format.Currency(p.PredictionIntervalLow),
			format.Currency(p.PredictionIntervalHigh),
			glyph)
		if p.Probability > 0 {
			line += "  " + format.Percent(p.Probability)
		}
		fmt.Println(line)
	}
	fmt.Println()
}

func printMovers(movers *types.MarketMovers) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                        MARKET MOVERS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	printTickerList("🚀 Top Gainers", movers.TopGainers)
	printTickerList("🔻 Top Losers", movers.TopLosers)
	printTickerList("🔥 Most Active", movers.MostActivelyTraded)
	if movers.LastUpdated != "" {
		fmt.Printf("Last updated: %s\n", movers.LastUpdated)
	}
	fmt.Println()
}

func printTickerList(title string, list []types.TickerInfo) {
	fmt.Println(title)
	if len(list) == 0 {
		fmt.Println("  (none)")
		fmt.Println()
		return
	}
	for _, t := range list {
		fmt.Printf("  %-10s %14s  %8s  vol %s\n",
			t.Ticker, format.Currency(t.Price), t.ChangePercentage, format.Volume(t.Volume))
	}
	fmt.Println()
}

func printNews(resp *types.NewsResponse) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                             NEWS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	s := resp.Summary
	fmt.Printf("📰 %d positive / %d neutral / %d negative   avg score %.2f\n",
		s.Positive, s.Neutral, s.Negative, s.AverageScore)
	fmt.Println()

	for _, a := range resp.Articles {
		fmt.Printf("  • %s\n", a.Title)
		meta := ""
		if t, err := time.Parse(types.CompactTimeLayout, a.TimePublished); err == nil {
			meta = format.NewsDate(a.TimePublished) + " (" + format.Freshness(t) + ")"
		}
		if a.Source != "" {
			if meta != "" {
				meta += " · "
			}
			meta += a.Source
		}
		if meta != "" {
			fmt.Printf("    %s\n", meta)
		}
	}
	fmt.Println()
}

func printHistory(ctx context.Context, cfg *store.Config, limit int) {
	if !cfg.History.Enabled {
		fmt.Println("Prediction history is disabled in config. Set 'history.enabled: true' to enable.")
		os.Exit(1)
	}
	rec, err := history.NewSQLiteRecorder(cfg.History.Path)
	if err != nil {
		fmt.Printf("Error opening prediction history: %v\n", err)
		os.Exit(1)
	}
	defer rec.Close()

	entries, err := rec.Recent(ctx, limit)
	if err != nil {
		fmt.Printf("Error reading prediction history: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Println("No recorded predictions yet.")
		return
	}

	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                      RECENT PREDICTIONS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	for _, e := range entries {
		glyph, _ := format.Direction(e.Prediction)
		fmt.Printf("  %s  %-6s %-10s %s %-4s  up %s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Provider, e.Target, glyph, e.Prediction,
			format.Percent(e.ProbabilityUp), format.Currency(e.CurrentPrice))
	}
	fmt.Println()
}

func recordPrediction(ctx context.Context, cfg *store.Config, p predictor.Provider, v predictor.FormValues, resp types.PredictionResponse) {
	if !cfg.History.Enabled {
		return
	}
	rec, err := history.NewSQLiteRecorder(cfg.History.Path)
	if err != nil {
		logger.Warn(ctx, "Prediction history unavailable", "error", err)
		return
	}
	defer rec.Close()

	entry := types.HistoryEntry{
		RequestID:     uuid.NewString(),
		Provider:      p.Name,
		Target:        p.Target(v),
		Timeframe:     v.Timeframe,
		Period:        v.Period,
		Prediction:    resp.Prediction,
		ProbabilityUp: resp.ProbabilityUp,
		CurrentPrice:  resp.CurrentPrice,
		Accuracy:      resp.Accuracy,
	}
	if err := rec.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "Failed to record prediction", "error", err)
	}
}

func savePlot(encoded, filename string) {
	if encoded == "" {
		fmt.Println("⚠️  Response carried no chart to save")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode chart: %v\n", err)
		return
	}
	if err := os.WriteFile(filename, raw, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save chart: %v\n", err)
		return
	}
	fmt.Printf("💾 Chart saved to %s\n", filename)
}
