package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/miditape/miditape/internal/recorder"
	"github.com/miditape/miditape/sdk/contracts"
	"github.com/miditape/miditape/sdk/session"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the pipeline with a live status view",
	Long: `Start the capture pipeline and show a terminal view that polls the
recorder at the configured frame rate. Keys: 0-9 switch the live
instrument program, d discards the latest recording, s toggles the
solo marker, q quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := startSession()
		if err != nil {
			return err
		}

		interval := time.Second / time.Duration(cfg.Monitor.FPS)
		m := newMonitorModel(s.Recorder(), interval)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			s.Stop()
			return err
		}
		return s.Stop()
	},
}

type tickMsg time.Time

// monitorModel polls the control surface once per frame. Each poll is a
// handful of short lock acquisitions; the log may grow between them, so
// bounds are re-checked rather than assumed.
type monitorModel struct {
	rec      *recorder.Recorder
	interval time.Duration

	portName   string
	count      int
	active     bool
	soloing    bool
	lastEvents int
	lastLength float64
	program    int
	quitting   bool
}

func newMonitorModel(rec *recorder.Recorder, interval time.Duration) monitorModel {
	return monitorModel{
		rec:      rec,
		interval: interval,
		portName: rec.InputPortName(),
		program:  -1,
	}
}

func (m monitorModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Init() tea.Cmd {
	return m.tick()
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "d":
			m.rec.DiscardLast()

		case "s":
			if m.rec.Soloing() {
				m.rec.EndSolo()
			} else {
				m.rec.BeginSolo(0)
			}

		case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
			program := int(key[0] - '0')
			m.rec.ProgramChange(byte(program), contracts.RouteBoth)
			m.program = program
		}

	case tickMsg:
		m.count = m.rec.Len()
		m.active = m.rec.ActivelyRecording()
		m.soloing = m.rec.Soloing()
		m.lastEvents, m.lastLength = 0, 0
		// Re-check bounds: the count read above may already be stale.
		if n := m.rec.Len(); n > 0 {
			r := m.rec.Recording(n - 1)
			m.lastEvents = r.Len()
			if last, ok := r.Last(); ok {
				m.lastLength = last.Elapsed
			}
		}
		return m, m.tick()
	}
	return m, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
)

func (m monitorModel) View() string {
	if m.quitting {
		return ""
	}

	state := idleStyle.Render("idle")
	if m.active {
		state = activeStyle.Render("recording")
	}
	solo := ""
	if m.soloing {
		solo = "  [solo]"
	}
	program := "-"
	if m.program >= 0 {
		program = fmt.Sprintf("%d", m.program)
	}

	view := titleStyle.Render(fmt.Sprintf("miditape (%s)", m.portName)) + "\n\n"
	view += fmt.Sprintf("  state:      %s%s\n", state, solo)
	view += fmt.Sprintf("  recordings: %d\n", m.count)
	if m.count > 0 {
		view += fmt.Sprintf("  latest:     %d events, %.1fs\n", m.lastEvents, m.lastLength)
	}
	view += fmt.Sprintf("  program:    %s\n", program)
	view += helpStyle.Render("0-9 program · d discard last · s solo · q quit")
	return view
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
