package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/opencodesearch/codesearch/pkg/codesearch"
)

// renderIndexing drives the progress UI for one Index call: a bubbletea bar
// on a TTY, or one line per stage transition otherwise (CI, pipes).
func renderIndexing(out io.Writer, run func(onProgress func(codesearch.Snapshot)) error) error {
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return renderIndexingTUI(f, run)
	}
	return renderIndexingPlain(out, run)
}

func renderIndexingPlain(out io.Writer, run func(onProgress func(codesearch.Snapshot)) error) error {
	lastStage := ""
	onProgress := func(s codesearch.Snapshot) {
		if s.Stage != lastStage {
			fmt.Fprintf(out, "[%s]\n", s.Stage)
			lastStage = s.Stage
		}
		if s.CurrentFile != "" {
			fmt.Fprintf(out, "  %d/%d %s\n", s.IndexedFiles, s.TotalFiles, s.CurrentFile)
		}
	}
	return run(onProgress)
}

var (
	stageStyle = lipgloss.NewStyle().Bold(true)
	fileStyle  = lipgloss.NewStyle().Faint(true)
)

type progressMsg codesearch.Snapshot
type doneMsg struct{ err error }

type indexingModel struct {
	bar     progress.Model
	spin    spinner.Model
	current codesearch.Snapshot
	err     error
	done    bool
	events  <-chan progressMsg
	doneCh  <-chan doneMsg
}

func newIndexingModel(events <-chan progressMsg, doneCh <-chan doneMsg) indexingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return indexingModel{
		bar:    progress.New(progress.WithDefaultGradient()),
		spin:   s,
		events: events,
		doneCh: doneCh,
	}
}

func (m indexingModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.events), waitForDone(m.doneCh))
}

func waitForEvent(events <-chan progressMsg) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-events
		if !ok {
			return nil
		}
		return s
	}
}

func waitForDone(doneCh <-chan doneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-doneCh
	}
}

func (m indexingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.current = codesearch.Snapshot(msg)
		return m, waitForEvent(m.events)
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m indexingModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("indexing failed: %s\n", m.err)
		}
		return "indexing complete\n"
	}
	pct := 0.0
	if m.current.TotalFiles > 0 {
		pct = float64(m.current.IndexedFiles) / float64(m.current.TotalFiles)
	}
	return fmt.Sprintf("%s %s %s\n%s\n",
		m.spin.View(),
		stageStyle.Render(m.current.Stage),
		m.bar.ViewAs(pct),
		fileStyle.Render(m.current.CurrentFile))
}

func renderIndexingTUI(out *os.File, run func(onProgress func(codesearch.Snapshot)) error) error {
	events := make(chan progressMsg, 64)
	doneCh := make(chan doneMsg, 1)

	program := tea.NewProgram(newIndexingModel(events, doneCh), tea.WithOutput(out))

	go func() {
		err := run(func(s codesearch.Snapshot) {
			select {
			case events <- progressMsg(s):
			default:
			}
		})
		doneCh <- doneMsg{err: err}
	}()

	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(indexingModel); ok {
		return m.err
	}
	return nil
}
