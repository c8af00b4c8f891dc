package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/types"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func previewModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hours.csv")
	if err := os.WriteFile(path, []byte("Name,Hours\nAlice,1.5\nBob,2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := New(Options{Infer: infer.DefaultConfig(), Dir: dir})
	m.selectedFile = path

	msg := m.loadPreview(path)()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestPreviewShowsInferredKinds(t *testing.T) {
	m := previewModel(t)

	if m.state != statePreview {
		t.Fatalf("Expected preview state, got %d (err %v)", m.state, m.err)
	}
	if len(m.reports) != 2 {
		t.Fatalf("Expected 2 column reports, got %d", len(m.reports))
	}
	if m.reports[1].To != types.KindFloat {
		t.Errorf("Hours: expected float, got %s", m.reports[1].To)
	}
	if m.rows != 2 {
		t.Errorf("Expected 2 rows, got %d", m.rows)
	}
	if !strings.Contains(m.View(), "Hours") {
		t.Error("Expected preview to list the Hours column")
	}
}

func TestPreviewKeys(t *testing.T) {
	m := previewModel(t)

	next, _ := m.Update(key("f"))
	m = next.(Model)
	if !strings.HasSuffix(m.OutputFile(), "hours_converted"+OutputFormats[1]) {
		t.Errorf("Expected output format to cycle, got %s", m.OutputFile())
	}

	next, cmd := m.Update(key("p"))
	m = next.(Model)
	if m.opts.Policy != infer.PolicyLoose {
		t.Errorf("Expected loose policy, got %s", m.opts.Policy)
	}
	if cmd == nil {
		t.Fatal("Expected policy toggle to reload the preview")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("Expected cursor 1, got %d", m.cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.state != stateFilePicker {
		t.Errorf("Expected esc to return to the file picker, got %d", m.state)
	}
}

// runCmd executes cmd and any commands batched inside it.
func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(c)
		}
	}
}

func TestConversionComplete(t *testing.T) {
	m := previewModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.state != stateProcessing {
		t.Fatalf("Expected processing state, got %d", m.state)
	}
	runCmd(cmd)

	for {
		msg := waitForProgress(m.progressChan, m.resultChan)()
		if _, ok := msg.(progressMsg); ok {
			continue
		}
		done, ok := msg.(conversionCompleteMsg)
		if !ok {
			t.Fatalf("Unexpected message %T", msg)
		}
		next, _ = m.Update(done)
		m = next.(Model)
		break
	}

	if m.state != stateComplete {
		t.Fatalf("Expected complete state, got %d (err %v)", m.state, m.err)
	}
	if _, err := os.Stat(m.result.OutputFile); err != nil {
		t.Errorf("Expected output file: %v", err)
	}
	if !strings.Contains(m.View(), "Conversion Complete") {
		t.Error("Expected completion view")
	}
}
