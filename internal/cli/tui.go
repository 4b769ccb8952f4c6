package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/pipeline"
)

// =============================================================================
// Messages
// =============================================================================

type startMsg struct {
	runID   string
	initial float64
}

type progressMsg observability.Progress

type improvementMsg observability.Progress

type doneMsg struct {
	res *pipeline.Result
	err error
}

// stopKey cancels the running search.
var stopKey = key.NewBinding(
	key.WithKeys("q", "esc", "ctrl+c"),
	key.WithHelp("q", "stop"),
)

// =============================================================================
// MonitorModel - live view of a running search
// =============================================================================

// MonitorModel is the bubbletea model showing a search while it runs.
// Pressing q cancels the search; the model quits once the search returns.
type MonitorModel struct {
	Title        string
	RunID        string
	Initial      float64
	Progress     observability.Progress
	Improvements int
	Result       *pipeline.Result
	Err          error
	Stopping     bool

	spinner spinner.Model
	cancel  context.CancelFunc
	started time.Time
}

// NewMonitorModel creates a monitor. cancel is called when the user asks
// to stop.
func NewMonitorModel(title string, cancel context.CancelFunc) MonitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleIconSpinner
	return MonitorModel{
		Title:   title,
		spinner: sp,
		cancel:  cancel,
		started: time.Now(),
	}
}

func (m MonitorModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, stopKey) {
			if !m.Stopping && m.cancel != nil {
				m.cancel()
			}
			m.Stopping = true
		}
	case startMsg:
		m.RunID = msg.runID
		m.Initial = msg.initial
		m.Progress.BestCost = msg.initial
	case progressMsg:
		m.Progress = observability.Progress(msg)
	case improvementMsg:
		m.Progress = observability.Progress(msg)
		m.Improvements++
	case doneMsg:
		m.Result = msg.res
		m.Err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m MonitorModel) View() string {
	var b strings.Builder

	switch {
	case m.Result != nil || m.Err != nil:
		b.WriteString(StyleTitle.Render(m.Title))
	case m.Stopping:
		b.WriteString(m.spinner.View() + " " + StyleTitle.Render(m.Title) + StyleDim.Render(" stopping…"))
	default:
		b.WriteString(m.spinner.View() + " " + StyleTitle.Render(m.Title))
	}
	b.WriteString("\n")

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Iteration", "Queue", "Visited", "Best cost", "Naive cost", "Improvements", "Elapsed").
		Rows(m.row()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return StyleNumber.Padding(0, 1)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error())
	case m.Result != nil && m.Result.Optimal:
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " optimal plan found")
	case m.Result != nil:
		b.WriteString(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render("stopped early: "+m.Result.Stop))
	default:
		help := stopKey.Help()
		b.WriteString(StyleDim.Render(help.Key + " " + help.Desc))
	}
	b.WriteString("\n")
	return b.String()
}

func (m MonitorModel) row() []string {
	p := m.Progress
	elapsed := p.Elapsed
	if m.Result != nil {
		p.Iteration = m.Result.Stats.Iterations
		p.Visited = m.Result.Stats.Visited
		p.BestCost = m.Result.Cost
		elapsed = m.Result.Stats.Elapsed
	} else if !m.started.IsZero() {
		elapsed = time.Since(m.started)
	}
	return []string{
		strconv.Itoa(p.Iteration),
		strconv.Itoa(p.Queue),
		strconv.Itoa(p.Visited),
		formatCost(p.BestCost),
		formatCost(m.Initial),
		strconv.Itoa(m.Improvements),
		elapsed.Round(100 * time.Millisecond).String(),
	}
}

// =============================================================================
// Running a search under the monitor
// =============================================================================

// monitorHooks forwards search events to a running program.
type monitorHooks struct {
	program *tea.Program
}

func (h monitorHooks) OnSearchStart(_ context.Context, runID, _ string, initial float64) {
	h.program.Send(startMsg{runID: runID, initial: initial})
}

func (h monitorHooks) OnProgress(_ context.Context, p observability.Progress) {
	h.program.Send(progressMsg(p))
}

func (h monitorHooks) OnImprovement(_ context.Context, p observability.Progress) {
	h.program.Send(improvementMsg(p))
}

func (h monitorHooks) OnSearchComplete(context.Context, observability.Progress, string) {}

// searchFunc runs a search reporting to hooks.
type searchFunc func(ctx context.Context, hooks observability.SearchHooks) (*pipeline.Result, error)

// runMonitor runs search in the background while showing its progress on
// w. It returns once both the search and the program have finished.
func runMonitor(ctx context.Context, w io.Writer, title string, search searchFunc) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewMonitorModel(title, cancel), tea.WithOutput(w))

	var (
		res       *pipeline.Result
		searchErr error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		res, searchErr = search(ctx, monitorHooks{program: p})
		p.Send(doneMsg{res: res, err: searchErr})
	}()

	_, err := p.Run()
	cancel()
	<-finished
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	return res, searchErr
}
