// Package dashboard implements the interactive terminal dashboard: a
// provider-aware request form, the prediction panel and the secondary
// movers and news panels, all driven by one bubbletea event loop.
package dashboard

import (
	"context"
	"encoding/base64"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"crypto-forecast-dashboard/internal/interfaces"
	"crypto-forecast-dashboard/internal/logger"
	"crypto-forecast-dashboard/internal/news"
	"crypto-forecast-dashboard/internal/predictor"
	"crypto-forecast-dashboard/internal/state"
	"crypto-forecast-dashboard/internal/store"
	"crypto-forecast-dashboard/internal/types"
)

// Deps are the backend-facing collaborators the model dispatches to. Both
// provider clients exist for the whole session; switching providers only
// changes which one receives requests.
type Deps struct {
	Alpha    *predictor.Client
	Yahoo    *predictor.Client
	News     *news.Service
	Recorder interfaces.Recorder
}

// submission is the frozen form snapshot behind the re-run key.
type submission struct {
	values predictor.FormValues
	valid  bool
}

// Model is the bubbletea model for the dashboard session.
type Model struct {
	cfg  *store.Config
	deps Deps

	provider   predictor.Provider
	values     *predictor.FormValues
	form       *huh.Form
	formActive bool

	states    state.Container
	spin      spinner.Model
	last      submission
	chartNote string

	width    int
	height   int
	quitting bool
}

// New creates the dashboard model with the form open on the configured
// provider.
func New(cfg *store.Config, deps Deps) Model {
	provider, err := predictor.ByName(cfg.Provider)
	if err != nil {
		provider = predictor.Yahoo
	}

	values := defaultValues(cfg, provider)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spinnerStyle

	return Model{
		cfg:        cfg,
		deps:       deps,
		provider:   provider,
		values:     values,
		form:       newRequestForm(provider, values),
		formActive: true,
		spin:       spin,
	}
}

// client returns the predictor client for the active provider.
func (m Model) client() *predictor.Client {
	if m.provider.Name == predictor.Alpha.Name {
		return m.deps.Alpha
	}
	return m.deps.Yahoo
}

// hasResults reports whether any panel has left idle.
func (m Model) hasResults() bool {
	return m.states.Prediction.Phase() != state.PhaseIdle ||
		m.states.Movers.Phase() != state.PhaseIdle ||
		m.states.News.Phase() != state.PhaseIdle
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

		if m.formActive {
			if msg.String() == "esc" {
				if m.hasResults() {
					m.formActive = false
					return m, nil
				}
				m.quitting = true
				return m, tea.Quit
			}
			// Remaining keys belong to the form
			break
		}

		switch msg.String() {
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "n", "enter":
			m.form = newRequestForm(m.provider, m.values)
			m.formActive = true
			return m, m.form.Init()

		case "r":
			if m.last.valid {
				return m, tea.Batch(m.dispatch(m.last.values)...)
			}
			return m, nil

		case "p":
			return m.switchProvider()

		case "s":
			if value, ok := m.states.Prediction.Value(); ok && value.PlotBase64 != "" {
				return m, saveChartCmd(value.PlotBase64)
			}
			return m, nil
		}
		return m, nil

	case predictionMsg:
		if msg.err != nil {
			m.states.Prediction.Fail(msg.seq, predictor.Message(msg.err, predictor.FallbackPrediction))
			return m, nil
		}
		m.states.Prediction.Resolve(msg.seq, msg.response)
		return m, tea.Batch(m.secondaryCmds(msg.response, msg.values)...)

	case moversMsg:
		if msg.err != nil {
			m.states.Movers.Fail(msg.seq, predictor.Message(msg.err, predictor.FallbackMovers))
			return m, nil
		}
		m.states.Movers.Resolve(msg.seq, msg.movers)
		return m, nil

	case newsMsg:
		if msg.err != nil {
			m.states.News.Fail(msg.seq, predictor.Message(msg.err, predictor.FallbackNews))
			return m, nil
		}
		m.states.News.Resolve(msg.seq, msg.news)
		return m, nil

	case chartSavedMsg:
		if msg.err != nil {
			m.chartNote = "Chart export failed: " + msg.err.Error()
		} else {
			m.chartNote = "Chart saved to " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		if !m.states.AnyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.formActive && m.form != nil {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		if m.form.State == huh.StateCompleted {
			m.formActive = false
			cmds = append(cmds, m.submit()...)
		}
	}

	return m, tea.Batch(cmds...)
}

// submit freezes the completed form and dispatches the prediction.
func (m *Model) submit() []tea.Cmd {
	values := *m.values
	m.last = submission{values: values, valid: true}
	return m.dispatch(values)
}

// dispatch begins a prediction attempt. The secondary fetches wait for the
// prediction to succeed; a failed primary leaves their panels untouched.
func (m *Model) dispatch(values predictor.FormValues) []tea.Cmd {
	req := m.provider.Request(values)
	m.chartNote = ""

	predSeq := m.states.Prediction.Begin()
	return []tea.Cmd{m.spin.Tick, m.predictCmd(predSeq, req, values)}
}

// secondaryCmds fires the movers and news fetches after a successful
// prediction, plus the history write. Movers need a key on the alpha
// variant; news needs a news endpoint.
func (m *Model) secondaryCmds(response types.PredictionResponse, values predictor.FormValues) []tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}

	if record := m.recordCmd(response, values); record != nil {
		cmds = append(cmds, record)
	}

	if !m.provider.RequiresKey || values.APIKey != "" {
		moversSeq := m.states.Movers.Begin()
		cmds = append(cmds, m.moversCmd(moversSeq, values.APIKey))
	}

	if m.provider.SupportsNews {
		newsSeq := m.states.News.Begin()
		cmds = append(cmds, m.newsCmd(newsSeq, strings.ToUpper(values.Symbol)))
	}

	return cmds
}

func (m Model) predictCmd(seq uint64, req types.PredictionRequest, values predictor.FormValues) tea.Cmd {
	client := m.client()
	return func() tea.Msg {
		response, err := client.Predict(context.Background(), req)
		return predictionMsg{seq: seq, values: values, response: response, err: err}
	}
}

func (m Model) moversCmd(seq uint64, apiKey string) tea.Cmd {
	client := m.client()
	return func() tea.Msg {
		movers, err := client.MarketMovers(context.Background(), apiKey)
		return moversMsg{seq: seq, movers: movers, err: err}
	}
}

func (m Model) newsCmd(seq uint64, symbol string) tea.Cmd {
	service := m.deps.News
	return func() tea.Msg {
		response, err := service.GetNews(context.Background(), symbol)
		return newsMsg{seq: seq, news: response, err: err}
	}
}

// recordCmd writes the outcome to history in the background. Recording
// failures are logged and never reach the panels.
func (m Model) recordCmd(response types.PredictionResponse, values predictor.FormValues) tea.Cmd {
	recorder := m.deps.Recorder
	if recorder == nil {
		return nil
	}

	provider := m.provider
	return func() tea.Msg {
		entry := types.HistoryEntry{
			RequestID:     uuid.NewString(),
			Provider:      provider.Name,
			Target:        provider.Target(values),
			Timeframe:     values.Timeframe,
			Period:        values.Period,
			Prediction:    response.Prediction,
			ProbabilityUp: response.ProbabilityUp,
			CurrentPrice:  response.CurrentPrice,
			Accuracy:      response.Accuracy,
		}
		if err := recorder.Record(context.Background(), entry); err != nil {
			logger.Warn(context.Background(), "Failed to record prediction history", "error", err)
		}
		return nil
	}
}

// switchProvider toggles between the two variants, reseeds the form with
// the new vocabulary and returns every panel to idle. Results from one
// variant's endpoints are not comparable to the other's.
func (m Model) switchProvider() (tea.Model, tea.Cmd) {
	if m.provider.Name == predictor.Alpha.Name {
		m.provider = predictor.Yahoo
	} else {
		m.provider = predictor.Alpha
	}

	m.values = defaultValues(m.cfg, m.provider)
	m.form = newRequestForm(m.provider, m.values)
	m.formActive = true
	m.states.Prediction.Reset()
	m.states.ResetSecondary()
	m.last = submission{}
	m.chartNote = ""

	return m, m.form.Init()
}

// saveChartCmd decodes the attached chart and writes it next to the binary.
func saveChartCmd(encoded string) tea.Cmd {
	return func() tea.Msg {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return chartSavedMsg{err: err}
		}
		path := "prediction_chart.png"
		if err := os.WriteFile(path, raw, 0644); err != nil {
			return chartSavedMsg{err: err}
		}
		return chartSavedMsg{path: path}
	}
}
