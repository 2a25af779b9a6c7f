package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/milk9111/volgkeep/story"
)

type entryKind int

const (
	entryLine entryKind = iota
	entryCue
	entryPick
	entryEnd
)

type entry struct {
	kind    entryKind
	speaker string
	text    string
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	cueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // dark grey
			Italic(true)

	pickStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	endStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// ConsoleUI is the bubbletea model running one story.
type ConsoleUI struct {
	id     string
	runner *story.Runner
	log    *slog.Logger
	copy   func(string) error

	transcript []entry
	speaker    string
	pending    []string
	choice     *story.Choice
	selected   int
	ended      bool
	dest       story.Destination
	status     string

	viewport viewport.Model
	width    int
	height   int
}

func NewConsoleUI(prog *story.Program, log *slog.Logger, copyFn func(string) error) *ConsoleUI {
	m := &ConsoleUI{
		id:       prog.ID,
		runner:   story.NewRunner(story.WithLogger(log)),
		log:      log,
		copy:     copyFn,
		viewport: viewport.New(80, 20),
		width:    80,
	}
	m.viewport.MouseWheelEnabled = true
	m.runner.Load(prog)
	m.runner.Hooks(story.Hooks{
		Say: func(op story.Say) {
			m.speaker = op.Speaker
			m.pending = append([]string(nil), op.Lines...)
			m.showLine()
		},
		Background: func(op story.Background) {
			m.cue("background %s", op.Image)
		},
		PlayBGM: func(op story.BGMPlay) {
			m.cue("music %s (volume %.1f, fade %s)", op.Track, op.Volume, op.Fade.Std())
		},
		StopBGM: func(op story.BGMStop) {
			m.cue("music stops (fade %s)", op.Fade.Std())
		},
		CrossBGM: func(op story.BGMCross) {
			m.cue("music %s fades into %s over %s", op.From, op.To, op.Time.Std())
		},
		SE: func(op story.SE) {
			m.cue("sound %s", op.Sound)
		},
		Choice: func(op story.Choice) {
			m.choice = &op
			m.selected = 0
		},
		End: func(dest story.Destination) {
			m.ended = true
			m.dest = dest
			m.transcript = append(m.transcript, entry{kind: entryEnd, text: fmt.Sprintf("The End (returns to %s)", dest)})
		},
	})
	m.step()
	return m
}

func (m *ConsoleUI) cue(format string, args ...any) {
	m.transcript = append(m.transcript, entry{kind: entryCue, text: fmt.Sprintf(format, args...)})
}

func (m *ConsoleUI) showLine() {
	if len(m.pending) == 0 {
		return
	}
	m.transcript = append(m.transcript, entry{kind: entryLine, speaker: m.speaker, text: m.pending[0]})
	m.pending = m.pending[1:]
}

func (m *ConsoleUI) step() {
	if m.runner.Step() == story.StatusFinished && !m.ended {
		m.ended = true
		m.transcript = append(m.transcript, entry{kind: entryEnd, text: "The script ran out without an end op"})
	}
}

// advance shows the next line, confirms the selected option, or resumes
// the script.
func (m *ConsoleUI) advance() {
	switch {
	case m.ended:
	case m.choice != nil:
		m.choose(m.selected)
	case len(m.pending) > 0:
		m.showLine()
	default:
		m.step()
	}
}

func (m *ConsoleUI) choose(i int) {
	if m.choice == nil || i < 0 || i >= len(m.choice.Options) {
		return
	}
	picked := m.choice.Options[i]
	m.choice = nil
	m.transcript = append(m.transcript, entry{kind: entryPick, text: picked.Text})
	st, err := m.runner.Choose(i)
	if err != nil {
		m.status = err.Error()
		return
	}
	if st == story.StatusFinished && !m.ended {
		m.ended = true
		m.transcript = append(m.transcript, entry{kind: entryEnd, text: "The script ran out without an end op"})
	}
}

// Transcript is the run so far as plain text.
func (m *ConsoleUI) Transcript() string {
	var b strings.Builder
	for _, e := range m.transcript {
		switch e.kind {
		case entryLine:
			if e.speaker != "" {
				fmt.Fprintf(&b, "%s: %s\n", e.speaker, e.text)
			} else {
				fmt.Fprintf(&b, "%s\n", e.text)
			}
		case entryCue:
			fmt.Fprintf(&b, "[%s]\n", e.text)
		case entryPick:
			fmt.Fprintf(&b, "> %s\n", e.text)
		case entryEnd:
			fmt.Fprintf(&b, "== %s ==\n", e.text)
		}
	}
	return b.String()
}

func (m *ConsoleUI) render() string {
	width := max(m.width-4, 20)
	var b strings.Builder
	for _, e := range m.transcript {
		switch e.kind {
		case entryLine:
			line := wordwrap.String(e.text, width)
			if e.speaker != "" {
				line = speakerStyle.Render(e.speaker+":") + " " + wordwrap.String(e.text, width-len(e.speaker)-2)
			}
			b.WriteString(line + "\n\n")
		case entryCue:
			b.WriteString(cueStyle.Render("["+e.text+"]") + "\n")
		case entryPick:
			b.WriteString(pickStyle.Render("> "+e.text) + "\n\n")
		case entryEnd:
			b.WriteString("\n" + endStyle.Render(e.text) + "\n")
		}
	}
	if m.choice != nil {
		if m.choice.Prompt != "" {
			b.WriteString(wordwrap.String(m.choice.Prompt, width) + "\n")
		}
		for i, opt := range m.choice.Options {
			label := fmt.Sprintf(" %d. %s ", i+1, opt.Text)
			if i == m.selected {
				label = selectedStyle.Render(label)
			}
			b.WriteString(label + "\n")
		}
	}
	return b.String()
}

func (m *ConsoleUI) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m *ConsoleUI) Init() tea.Cmd {
	m.refresh()
	return nil
}

func (m *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch key := msg.String(); key {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "enter", " ":
			m.advance()
		case "up", "k":
			if m.choice != nil && m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.choice != nil && m.selected < len(m.choice.Options)-1 {
				m.selected++
			}
		case "c":
			if err := m.copy(m.Transcript()); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "transcript copied"
			}
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' && m.choice != nil {
				m.choose(int(key[0] - '1'))
			}
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ConsoleUI) View() string {
	help := "enter: next  ↑/↓ or 1-9: choose  c: copy transcript  q: quit"
	if m.status != "" {
		help = m.status
	}
	return titleStyle.Render("STORY "+strings.ToUpper(m.id)) + "\n\n" +
		m.viewport.View() + "\n" +
		helpStyle.Render(help)
}
