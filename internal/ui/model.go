package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nconklindev/sheetsync/internal/converter"
	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/store"
	"github.com/nconklindev/sheetsync/internal/types"
)

type state int

const (
	stateFilePicker state = iota
	statePreview
	stateProcessing
	stateComplete
	stateError
)

// OutputFormats are the extensions the preview screen cycles through.
var OutputFormats = []string{".parquet", ".feather", ".csv", ".xlsx"}

// Options configure the converter screens.
type Options struct {
	Policy infer.Policy
	Infer  infer.Config
	Read   store.ReadOptions
	// Dir is where the file picker starts; empty means the working directory.
	Dir string
}

type Model struct {
	state        state
	opts         Options
	filepicker   filepicker.Model
	selectedFile string
	reports      []infer.ColumnReport
	rows         int
	format       int
	cursor       int
	result       *types.ConversionResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan conversionResultMsg
}

type conversionResultMsg struct {
	result *types.ConversionResult
	err    error
}

type previewMsg struct {
	reports []infer.ColumnReport
	rows    int
	err     error
}

type conversionCompleteMsg struct {
	result *types.ConversionResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func New(opts Options) Model {
	if opts.Policy == "" {
		opts.Policy = infer.PolicyFast
	}

	fp := filepicker.New()
	fp.AllowedTypes = converter.AllowedTypes
	fp.CurrentDirectory = opts.Dir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory, _ = os.Getwd()
	}

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(soft)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(soft)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	return Model{
		state:      stateFilePicker,
		opts:       opts,
		filepicker: fp,
		progress:   progress.New(progress.WithGradient("#7D56F4", "#A78BFA")),
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

// OutputFile is where the selected file will be converted to.
func (m Model) OutputFile() string {
	return converter.OutputPath(m.selectedFile, OutputFormats[m.format])
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, subtitle and help lines.
		m.filepicker.SetHeight(max(msg.Height-14, 5))
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case statePreview:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(m.reports)-1 {
					m.cursor++
				}
			case "p":
				if m.opts.Policy == infer.PolicyFast {
					m.opts.Policy = infer.PolicyLoose
				} else {
					m.opts.Policy = infer.PolicyFast
				}
				return m, m.loadPreview(m.selectedFile)
			case "f":
				m.format = (m.format + 1) % len(OutputFormats)
			case "esc":
				m.state = stateFilePicker
				return m, nil
			case "enter":
				m.state = stateProcessing
				return m.convertFile()
			}

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case previewMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.reports = msg.reports
		m.rows = msg.rows
		m.cursor = min(m.cursor, max(len(m.reports)-1, 0))
		m.state = statePreview
		return m, nil

	case conversionCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.cursor = 0
			return m, m.loadPreview(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) inferer() (infer.Inferer, error) {
	return infer.New(m.opts.Policy, m.opts.Infer)
}

func (m Model) loadPreview(path string) tea.Cmd {
	readOpts := m.opts.Read
	inf, err := m.inferer()
	return func() tea.Msg {
		if err != nil {
			return previewMsg{err: err}
		}
		t, err := converter.ReadFile(context.Background(), path, readOpts)
		if err != nil {
			return previewMsg{err: err}
		}
		defer t.Release()

		res, err := converter.Preview(t, inf)
		if err != nil {
			return previewMsg{err: err}
		}
		res.Table.Release()
		return previewMsg{reports: res.Columns, rows: t.NumRows()}
	}
}

func (m Model) convertFile() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan conversionResultMsg, 1)

	inf, err := m.inferer()
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}

	progressChan := m.progressChan
	resultChan := m.resultChan
	input := m.selectedFile
	output := m.OutputFile()
	readOpts := m.opts.Read

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				result, err := converter.ConvertFile(context.Background(), input, output, readOpts, inf, progressChan)
				resultChan <- conversionResultMsg{result: result, err: err}
				close(progressChan)
				close(resultChan)
			}()
			return waitForProgressMsg{}
		},
		m.progress.Init(),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case statePreview:
		return m.viewPreview()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("sheetsync - typed table converter"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a CSV, XLSX, Feather or Parquet file"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewPreview() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Inferred Columns"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s (%s rows)", filepath.Base(m.selectedFile), humanize.Comma(int64(m.rows)))))
	s.WriteString("\n\n")

	if len(m.reports) == 0 {
		s.WriteString(UnselectedStyle.Render("No columns found"))
		s.WriteString("\n")
	}
	for i, r := range m.reports {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		name := fmt.Sprintf("%s %-24s", cursor, r.Name)
		if m.cursor == i {
			name = SelectedStyle.Render(name)
		} else {
			name = UnselectedStyle.Render(name)
		}

		detail := fmt.Sprintf(" %d/%d parsed", r.Parsed, r.Total)
		if r.Layout != "" {
			detail += " " + r.Layout
		}
		s.WriteString(name + " " + KindStyle(r.To).Render(fmt.Sprintf("%-8s", r.To)) + SubtitleStyle.UnsetMarginBottom().Render(detail))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Policy: %s\n", m.opts.Policy))
	s.WriteString(fmt.Sprintf("Output: %s\n", filepath.Base(m.OutputFile())))
	s.WriteString(HelpStyle.Render("↑/↓: navigate • p: toggle policy • f: output format • enter: convert • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Converting..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Writing %s", filepath.Base(m.OutputFile())))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func truncatePath(p string, maxLen int) string {
	if len(p) > maxLen {
		return "..." + p[len(p)-maxLen+3:]
	}
	return p
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	s.WriteString("\n\n")

	maxPathLen := max(m.width-20, 30)

	s.WriteString(fmt.Sprintf("Input:  %s\n", truncatePath(m.result.InputFile, maxPathLen)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s (%s)\n", truncatePath(m.result.OutputFile, maxPathLen), humanize.Bytes(uint64(m.result.OutputBytes)))))
	s.WriteString("\n")

	kinds := make([]string, 0, len(m.result.Columns))
	for _, c := range m.result.Columns {
		kinds = append(kinds, fmt.Sprintf("%s:%s", c.Name, c.Kind))
	}
	s.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(kinds, ", ")))
	s.WriteString(fmt.Sprintf("Rows processed: %s\n", humanize.Comma(int64(m.result.RowsProcessed))))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}
