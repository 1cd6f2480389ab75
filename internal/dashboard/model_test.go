package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"crypto-forecast-dashboard/internal/predictor"
	"crypto-forecast-dashboard/internal/state"
	"crypto-forecast-dashboard/internal/store"
	"crypto-forecast-dashboard/internal/types"
)

type captureRecorder struct {
	entries []types.HistoryEntry
}

func (c *captureRecorder) Record(_ context.Context, entry types.HistoryEntry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureRecorder) Recent(_ context.Context, _ int) ([]types.HistoryEntry, error) {
	return c.entries, nil
}

func (c *captureRecorder) Close() error { return nil }

func testModel(t *testing.T, providerName string) Model {
	t.Helper()

	cfg := store.DefaultConfig()
	cfg.Provider = providerName
	// Keep form values independent of the surrounding environment
	cfg.APIKeyEnv = ""

	return New(cfg, Deps{Recorder: &captureRecorder{}})
}

func samplePrediction() types.PredictionResponse {
	return types.PredictionResponse{
		Prediction:      types.DirectionUp,
		ProbabilityUp:   0.82,
		ProbabilityDown: 0.18,
		CurrentPrice:    45234.46,
		TechnicalIndicators: types.TechnicalIndicators{
			RSI: 62.1, RSISignal: "Neutral",
			MACD: 145.23, MACDSignal: "Bullish",
			Stochastic: 71.4, StochasticSignal: "Overbought",
			ADX: 28.9, ADXSignal: "Strong",
			ATR: 812.5,
			MFI: 55.0, MFISignal: "Neutral",
		},
		Accuracy: 0.74,
		Forecast: []types.ForecastPoint{
			{Date: "2025-02-25", PredictedPrice: 45412.0, PredictionIntervalLow: 44900.0,
				PredictionIntervalHigh: 45900.0, Direction: types.DirectionUp, Probability: 0.64},
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewStartsWithFormOpen(t *testing.T) {
	model := testModel(t, "yahoo")

	if !model.formActive {
		t.Error("Expected form to be active on startup")
	}

	if model.provider.Name != "yahoo" {
		t.Errorf("Expected yahoo provider, got %s", model.provider.Name)
	}

	if model.states.Prediction.Phase() != state.PhaseIdle {
		t.Error("Expected prediction slot to start idle")
	}
}

func TestSubmitDispatchesPredictionOnly(t *testing.T) {
	model := testModel(t, "yahoo")

	cmds := model.submit()

	// Spinner tick plus the prediction fetch; secondaries wait for success
	if len(cmds) != 2 {
		t.Errorf("Expected 2 commands, got %d", len(cmds))
	}

	if !model.states.Prediction.Loading() {
		t.Error("Expected prediction slot to be loading")
	}
	if model.states.Movers.Phase() != state.PhaseIdle {
		t.Errorf("Expected movers slot to stay idle until success, got %s", model.states.Movers.Phase())
	}
	if model.states.News.Phase() != state.PhaseIdle {
		t.Errorf("Expected news slot to stay idle until success, got %s", model.states.News.Phase())
	}
}

func TestPredictionSuccessStartsSecondaryFetches(t *testing.T) {
	model := testModel(t, "yahoo")

	seq := model.states.Prediction.Begin()
	updated, cmd := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	if cmd == nil {
		t.Fatal("Expected secondary fetch commands after success")
	}
	if !model.states.Movers.Loading() {
		t.Error("Expected movers slot to be loading after prediction success")
	}
	if !model.states.News.Loading() {
		t.Error("Expected news slot to be loading after prediction success")
	}
}

func TestSecondariesSkipNewsWithoutEndpoint(t *testing.T) {
	model := testModel(t, "alpha")
	model.values.APIKey = "demo"

	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	if !model.states.Movers.Loading() {
		t.Error("Expected movers slot to be loading for alpha with a key")
	}
	if model.states.News.Phase() != state.PhaseIdle {
		t.Errorf("Expected news slot to stay idle for alpha, got %s", model.states.News.Phase())
	}
}

func TestSecondariesSkipMoversWithoutKey(t *testing.T) {
	model := testModel(t, "alpha")

	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	if model.states.Movers.Phase() != state.PhaseIdle {
		t.Errorf("Expected movers slot to stay idle without a key, got %s", model.states.Movers.Phase())
	}
}

func TestPredictionFailureStartsNoSecondaries(t *testing.T) {
	model := testModel(t, "yahoo")

	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, err: errors.New("boom")})
	model = updated.(Model)

	if model.states.Movers.Phase() != state.PhaseIdle {
		t.Errorf("Expected movers slot to stay idle after failure, got %s", model.states.Movers.Phase())
	}
	if model.states.News.Phase() != state.PhaseIdle {
		t.Errorf("Expected news slot to stay idle after failure, got %s", model.states.News.Phase())
	}
}

func TestPredictionSuccessResolvesSlot(t *testing.T) {
	model := testModel(t, "yahoo")
	seq := model.states.Prediction.Begin()

	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	if model.states.Prediction.Phase() != state.PhaseSucceeded {
		t.Fatalf("Expected succeeded phase, got %s", model.states.Prediction.Phase())
	}

	response, ok := model.states.Prediction.Value()
	if !ok {
		t.Fatal("Expected prediction value to be present")
	}
	if response.Prediction != types.DirectionUp {
		t.Errorf("Expected UP, got %s", response.Prediction)
	}
}

func TestPredictionFailureUsesClassifiedMessage(t *testing.T) {
	model := testModel(t, "yahoo")
	seq := model.states.Prediction.Begin()

	apiErr := &predictor.APIError{Status: 422, Detail: "Invalid symbol"}
	updated, _ := model.Update(predictionMsg{seq: seq, err: apiErr})
	model = updated.(Model)

	if model.states.Prediction.Phase() != state.PhaseFailed {
		t.Fatalf("Expected failed phase, got %s", model.states.Prediction.Phase())
	}

	if model.states.Prediction.Err() != "Invalid symbol" {
		t.Errorf("Expected backend detail to surface, got %q", model.states.Prediction.Err())
	}
}

func TestPredictionFailureFallsBackToGenericMessage(t *testing.T) {
	model := testModel(t, "yahoo")
	seq := model.states.Prediction.Begin()

	updated, _ := model.Update(predictionMsg{seq: seq, err: errors.New("dial tcp: connection refused")})
	model = updated.(Model)

	if model.states.Prediction.Err() != predictor.FallbackPrediction {
		t.Errorf("Expected %q, got %q", predictor.FallbackPrediction, model.states.Prediction.Err())
	}
}

func TestSecondaryFailureDoesNotTouchPrediction(t *testing.T) {
	model := testModel(t, "yahoo")

	predSeq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: predSeq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	updated, _ = model.Update(moversMsg{seq: 1, err: errors.New("boom")})
	model = updated.(Model)

	if model.states.Prediction.Phase() != state.PhaseSucceeded {
		t.Error("Expected prediction slot to stay succeeded after movers failure")
	}
	if model.states.Prediction.Err() != "" {
		t.Errorf("Expected no prediction error, got %q", model.states.Prediction.Err())
	}

	if model.states.Movers.Err() != predictor.FallbackMovers {
		t.Errorf("Expected %q, got %q", predictor.FallbackMovers, model.states.Movers.Err())
	}
}

func TestFailureKeepsStaleValue(t *testing.T) {
	model := testModel(t, "yahoo")

	seq := model.states.Movers.Begin()
	movers := types.MarketMovers{TopGainers: []types.TickerInfo{{Ticker: "BTC-USD", Price: 45000}}}
	updated, _ := model.Update(moversMsg{seq: seq, movers: movers})
	model = updated.(Model)

	seq = model.states.Movers.Begin()
	updated, _ = model.Update(moversMsg{seq: seq, err: errors.New("boom")})
	model = updated.(Model)

	if model.states.Movers.Phase() != state.PhaseFailed {
		t.Fatalf("Expected failed phase, got %s", model.states.Movers.Phase())
	}

	stale, ok := model.states.Movers.Value()
	if !ok {
		t.Fatal("Expected stale movers value to survive the failure")
	}
	if len(stale.TopGainers) != 1 {
		t.Errorf("Expected stale gainers to be kept, got %d", len(stale.TopGainers))
	}
}

func TestLastArrivalWins(t *testing.T) {
	model := testModel(t, "yahoo")

	first := model.states.Prediction.Begin()
	second := model.states.Prediction.Begin()

	newer := samplePrediction()
	older := samplePrediction()
	older.CurrentPrice = 44000.00

	updated, _ := model.Update(predictionMsg{seq: second, values: *model.values, response: newer})
	model = updated.(Model)
	updated, _ = model.Update(predictionMsg{seq: first, values: *model.values, response: older})
	model = updated.(Model)

	response, _ := model.states.Prediction.Value()
	if response.CurrentPrice != 44000.00 {
		t.Errorf("Expected the last arrival to win the slot, got price %f", response.CurrentPrice)
	}
}

func TestPredictionSuccessRecordsHistory(t *testing.T) {
	recorder := &captureRecorder{}
	cfg := store.DefaultConfig()
	cfg.Provider = "alpha"
	cfg.APIKeyEnv = ""
	model := New(cfg, Deps{Recorder: recorder})

	// Alpha without a key skips both secondaries, so the returned batch
	// holds only the spinner tick and the history write.
	seq := model.states.Prediction.Begin()
	updated, cmd := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	if cmd == nil {
		t.Fatal("Expected a record command after success")
	}
	runBatch(t, cmd)

	if len(recorder.entries) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(recorder.entries))
	}

	entry := recorder.entries[0]
	if entry.Provider != "alpha" {
		t.Errorf("Expected provider alpha, got %s", entry.Provider)
	}
	if entry.Target != "BTC/USD" {
		t.Errorf("Expected target BTC/USD, got %s", entry.Target)
	}
	if entry.Prediction != types.DirectionUp {
		t.Errorf("Expected prediction UP, got %s", entry.Prediction)
	}
	if entry.RequestID == "" {
		t.Error("Expected a request id on the history entry")
	}
}

// runBatch executes a command synchronously, descending into batches.
func runBatch(t *testing.T, cmd tea.Cmd) {
	t.Helper()

	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return
	}
	for _, c := range batch {
		if c != nil {
			c()
		}
	}
}

func TestPredictionFailureRecordsNothing(t *testing.T) {
	recorder := &captureRecorder{}
	cfg := store.DefaultConfig()
	model := New(cfg, Deps{Recorder: recorder})

	seq := model.states.Prediction.Begin()
	_, cmd := model.Update(predictionMsg{seq: seq, err: errors.New("boom")})

	if cmd != nil {
		t.Error("Expected no command after a failed prediction")
	}
	if len(recorder.entries) != 0 {
		t.Errorf("Expected no history entries, got %d", len(recorder.entries))
	}
}

func TestProviderSwitchResetsPanels(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false

	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	updated, cmd := model.Update(keyMsg("p"))
	model = updated.(Model)

	if model.provider.Name != "alpha" {
		t.Errorf("Expected provider to switch to alpha, got %s", model.provider.Name)
	}
	if !model.formActive {
		t.Error("Expected form to reopen after provider switch")
	}
	if model.states.Prediction.Phase() != state.PhaseIdle {
		t.Error("Expected prediction slot to reset on provider switch")
	}
	if cmd == nil {
		t.Error("Expected the new form's init command")
	}

	if model.values.Timeframe != "daily" {
		t.Errorf("Expected alpha default timeframe, got %s", model.values.Timeframe)
	}
	if model.values.Period != "30" {
		t.Errorf("Expected alpha default period, got %s", model.values.Period)
	}
}

func TestReRunWithoutSubmissionDoesNothing(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false

	_, cmd := model.Update(keyMsg("r"))
	if cmd != nil {
		t.Error("Expected no command before any submission")
	}
}

func TestReRunRedispatchesLastValues(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false
	model.submit()

	updated, cmd := model.Update(keyMsg("r"))
	model = updated.(Model)

	if cmd == nil {
		t.Fatal("Expected dispatch commands on re-run")
	}
	if !model.states.Prediction.Loading() {
		t.Error("Expected prediction slot to be loading again")
	}
}

func TestQuitKey(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false

	updated, cmd := model.Update(keyMsg("q"))
	model = updated.(Model)

	if !model.quitting {
		t.Error("Expected model to be quitting")
	}
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg from the quit command")
	}
}

func TestViewRendersPrediction(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false

	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	view := model.View()

	if !strings.Contains(view, "UP") {
		t.Error("Expected direction in view")
	}
	if !strings.Contains(view, "$45,234.46") {
		t.Error("Expected grouped currency in view")
	}
	if !strings.Contains(view, "82.0%") {
		t.Error("Expected probability percent in view")
	}
	if !strings.Contains(view, "Bullish") {
		t.Error("Expected MACD signal in view")
	}
}

func TestViewRendersFailureWithStaleNote(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false

	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	seq = model.states.Prediction.Begin()
	updated, _ = model.Update(predictionMsg{seq: seq, err: errors.New("boom")})
	model = updated.(Model)

	view := model.View()

	if !strings.Contains(view, predictor.FallbackPrediction) {
		t.Error("Expected fallback error message in view")
	}
	if !strings.Contains(view, "Showing last successful result.") {
		t.Error("Expected stale data note in view")
	}
}

func TestSaveChartWithoutChartDoesNothing(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false

	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: samplePrediction()})
	model = updated.(Model)

	_, cmd := model.Update(keyMsg("s"))
	if cmd != nil {
		t.Error("Expected no command without an attached chart")
	}
}

func TestSaveChartKeyReturnsCommand(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false

	response := samplePrediction()
	response.PlotBase64 = "aGVsbG8="
	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: response})
	model = updated.(Model)

	_, cmd := model.Update(keyMsg("s"))
	if cmd == nil {
		t.Error("Expected a save command when a chart is attached")
	}
}

func TestChartSavedNoteAppearsInView(t *testing.T) {
	model := testModel(t, "yahoo")
	model.formActive = false

	response := samplePrediction()
	response.PlotBase64 = "aGVsbG8="
	seq := model.states.Prediction.Begin()
	updated, _ := model.Update(predictionMsg{seq: seq, values: *model.values, response: response})
	model = updated.(Model)

	updated, _ = model.Update(chartSavedMsg{path: "prediction_chart.png"})
	model = updated.(Model)

	if !strings.Contains(model.View(), "Chart saved to prediction_chart.png") {
		t.Error("Expected chart saved note in view")
	}
}
