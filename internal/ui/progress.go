// Package ui renders the terminal progress view of `fglsense index`.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"fglsense/internal/workspace"
)

// fileState is how far indexing got with one module.
type fileState uint8

const (
	stateQueued fileState = iota
	stateParsing
	stateParsed
	stateChecking
	stateDone
	stateFailed
	stateCount
)

var stateNames = [stateCount]string{"queued", "parsing", "parsed", "checking", "done", "failed"}

// weight is the share of a module's work finished in each state.
var weight = [stateCount]float64{0, 0.2, 0.5, 0.7, 1, 1}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// recentLimit bounds the list of files shown under the counters.
const recentLimit = 8

type progressModel struct {
	title  string
	events <-chan workspace.Event

	spinner spinner.Model
	bar     progress.Model
	width   int

	states   map[string]fileState
	counts   [stateCount]int
	recent   []string
	failures []string
	phase    string
	done     bool
}

type eventMsg workspace.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model showing how many modules are
// in each state, the files touched last and the failures. It quits when
// events is closed.
func NewProgressModel(title string, events <-chan workspace.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(activeStyle))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(60))
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		width:   80,
		states:  make(map[string]fileState),
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(workspace.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = min(msg.Width-4, 80)
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply moves a file to the state ev implies. Failed files stay failed.
func (m *progressModel) apply(ev workspace.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == workspace.StatusWorking {
			m.phase = string(ev.Stage)
		}
		return nil
	}
	st, ok := stateFor(ev)
	if !ok {
		return nil
	}
	prev, known := m.states[ev.File]
	if known {
		if prev == stateFailed {
			return nil
		}
		m.counts[prev]--
	}
	m.states[ev.File] = st
	m.counts[st]++
	if st == stateFailed {
		msg := ev.File
		if ev.Err != nil {
			msg += ": " + ev.Err.Error()
		}
		m.failures = append(m.failures, msg)
	}
	if st != stateQueued {
		m.touch(ev.File)
	}
	return m.bar.SetPercent(m.fraction())
}

func stateFor(ev workspace.Event) (fileState, bool) {
	switch {
	case ev.Status == workspace.StatusError:
		return stateFailed, true
	case ev.Status == workspace.StatusQueued:
		return stateQueued, true
	case ev.Stage == workspace.StageParse && ev.Status == workspace.StatusWorking:
		return stateParsing, true
	case ev.Stage == workspace.StageParse && ev.Status == workspace.StatusDone:
		return stateParsed, true
	case ev.Stage == workspace.StageCheck && ev.Status == workspace.StatusWorking:
		return stateChecking, true
	case ev.Stage == workspace.StageCheck && ev.Status == workspace.StatusDone:
		return stateDone, true
	}
	return 0, false
}

func (m *progressModel) touch(path string) {
	for i, p := range m.recent {
		if p == path {
			m.recent = append(m.recent[:i], m.recent[i+1:]...)
			break
		}
	}
	m.recent = append(m.recent, path)
	if len(m.recent) > recentLimit {
		m.recent = m.recent[len(m.recent)-recentLimit:]
	}
}

func (m *progressModel) fraction() float64 {
	if len(m.states) == 0 {
		return 0
	}
	var sum float64
	for st, n := range m.counts {
		sum += weight[st] * float64(n)
	}
	return sum / float64(len(m.states))
}

func (m *progressModel) View() string {
	var b strings.Builder
	header := m.title
	if m.phase != "" {
		header += " [" + m.phase + "]"
	}
	if m.done {
		header = "finished " + header
	} else {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	parts := make([]string, 0, stateCount)
	for st := range stateCount {
		if n := m.counts[st]; n > 0 {
			parts = append(parts, styleFor(st).Render(fmt.Sprintf("%d %s", n, stateNames[st])))
		}
	}
	fmt.Fprintf(&b, "  %d modules: %s\n", len(m.states), strings.Join(parts, dimStyle.Render(" · ")))

	width := max(m.width-14, 20)
	for _, p := range m.recent {
		st := m.states[p]
		fmt.Fprintf(&b, "  %s %s\n", styleFor(st).Render(fmt.Sprintf("%-9s", stateNames[st])), truncate(p, width))
	}
	for _, f := range m.failures {
		fmt.Fprintf(&b, "  %s\n", failStyle.Render(truncate(f, width+10)))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func styleFor(st fileState) lipgloss.Style {
	switch st {
	case stateDone, stateParsed:
		return okStyle
	case stateFailed:
		return failStyle
	case stateParsing, stateChecking:
		return activeStyle
	}
	return dimStyle
}

// truncate cuts value to width terminal cells, keeping the tail of long
// paths since the file name is the useful part.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	rs := []rune(value)
	for i := range rs {
		if tail := string(rs[i:]); runewidth.StringWidth(tail)+3 <= width {
			return "..." + tail
		}
	}
	return "..."
}
