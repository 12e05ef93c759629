package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mkoven/pathmc/internal/paths"
)

var (
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	rejStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

const historyCap = 200

type stepMsg *paths.Step

type doneMsg struct{}

// Monitor is a bubbletea model tracking a running sampling session:
// per-mover acceptance, last decision, and a path length sparkline.
type Monitor struct {
	trials   map[string]int
	accepted map[string]int
	steps    int
	last     *paths.Step
	history  []float64
	width    int
	finished bool
}

func NewMonitor() Monitor {
	return Monitor{
		trials:   make(map[string]int),
		accepted: make(map[string]int),
		width:    80,
	}
}

func (m Monitor) Init() tea.Cmd { return nil }

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.finished {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case stepMsg:
		step := (*paths.Step)(msg)
		m.steps++
		m.last = step
		m.trials[step.Mover]++
		if step.Accepted {
			m.accepted[step.Mover]++
		}
		m.history = append(m.history, meanLength(step.Active))
		if len(m.history) > historyCap {
			m.history = m.history[1:]
		}
	case doneMsg:
		m.finished = true
	}
	return m, nil
}

func meanLength(ss paths.SampleSet) float64 {
	if len(ss) == 0 {
		return 0
	}
	total := 0
	for _, s := range ss {
		total += s.Trajectory.Len()
	}
	return float64(total) / float64(len(ss))
}

func (m Monitor) View() string {
	var b strings.Builder
	b.WriteString("\n  " + headStyle.Render("PATHMC") + "  " + dimStyle.Render("path sampling monitor") + "\n\n")

	b.WriteString(fmt.Sprintf("  %s %s", dimStyle.Render("steps"), valueStyle.Render(fmt.Sprintf("%d", m.steps))))
	if m.last != nil {
		verdict := rejStyle.Render("rejected")
		if m.last.Accepted {
			verdict = okStyle.Render("accepted")
		}
		b.WriteString(fmt.Sprintf("   %s %s %s", dimStyle.Render("last"), valueStyle.Render(m.last.Mover), verdict))
	}
	b.WriteString("\n\n")

	movers := make([]string, 0, len(m.trials))
	for name := range m.trials {
		movers = append(movers, name)
	}
	sort.Strings(movers)
	for _, name := range movers {
		trials := m.trials[name]
		ratio := float64(m.accepted[name]) / float64(trials)
		b.WriteString(fmt.Sprintf("  %s %s\n",
			valueStyle.Render(fmt.Sprintf("%-28s", name)),
			dimStyle.Render(fmt.Sprintf("%4d/%-4d %.2f", m.accepted[name], trials, ratio))))
	}

	if len(m.history) > 1 {
		w := m.width - 12
		if w > historyCap {
			w = historyCap
		}
		if w > 10 {
			b.WriteString("\n" + asciigraph.Plot(m.history,
				asciigraph.Height(8),
				asciigraph.Width(w),
				asciigraph.Caption("mean path length"),
				asciigraph.Offset(4)) + "\n")
		}
	}

	if m.finished {
		b.WriteString("\n  " + okStyle.Render("done") + dimStyle.Render("  press q to exit") + "\n")
	} else {
		b.WriteString("\n  " + dimStyle.Render("q quit") + "\n")
	}
	return b.String()
}

type programObserver struct{ p *tea.Program }

func (o programObserver) OnStep(s *paths.Step) { o.p.Send(stepMsg(s)) }

// RunWithMonitor runs the sampling function in the background while the
// monitor owns the terminal. The observer it hands to run feeds every
// persisted step into the display.
func RunWithMonitor(run func(paths.Observer) error) error {
	p := tea.NewProgram(NewMonitor(), tea.WithAltScreen())

	errc := make(chan error, 1)
	go func() {
		err := run(programObserver{p})
		errc <- err
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return <-errc
}
