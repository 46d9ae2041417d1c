package main

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sjroesink/Whisper/engine"
	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/store"
)

func testModel(t *testing.T) tuiModel {
	t.Helper()
	st := store.New(engine.NewFake())
	st.Bootstrap(context.Background())
	return tuiModel{st: st, ctx: context.Background(), snap: st.Snapshot(), width: 100, height: 40}
}

func pressRune(t *testing.T, m tuiModel, r string) (tuiModel, tea.Cmd) {
	t.Helper()
	got, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)})
	return got.(tuiModel), cmd
}

func TestViewSwitchKeys(t *testing.T) {
	m := testModel(t)

	m, _ = pressRune(t, m, "h")
	if m.snap.View != store.ViewHistory {
		t.Fatalf("after h: view = %v, want history", m.snap.View)
	}

	got, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = got.(tuiModel)
	if m.snap.View != store.ViewMain {
		t.Fatalf("after esc: view = %v, want main", m.snap.View)
	}

	m, _ = pressRune(t, m, "s")
	if m.snap.View != store.ViewSettings {
		t.Fatalf("after s: view = %v, want settings", m.snap.View)
	}
}

func TestQuitKey(t *testing.T) {
	m := testModel(t)

	_, cmd := pressRune(t, m, "q")
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}

func TestCtrlCAlwaysQuits(t *testing.T) {
	m := testModel(t)
	m.capturing = true

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c did not quit while capturing")
	}
}

func TestWindowSize(t *testing.T) {
	m := testModel(t)

	got, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = got.(tuiModel)
	if m.width != 80 || m.height != 24 {
		t.Fatalf("size = %dx%d, want 80x24", m.width, m.height)
	}
}

func TestTickAdvancesFrame(t *testing.T) {
	m := testModel(t)

	got, cmd := m.Update(tickMsg{})
	m = got.(tuiModel)
	if m.frame != 1 {
		t.Fatalf("frame = %d, want 1", m.frame)
	}
	if cmd == nil {
		t.Fatal("tick did not reschedule itself")
	}
}

func TestRenderEyeGeometry(t *testing.T) {
	out := renderEye(7, true, false)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 15 {
		t.Fatalf("eye has %d rows, want 15", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 44 {
			t.Errorf("row %d width = %d, want 44", i, w)
		}
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"a  b", 10, []string{"a b"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if len(got) != len(tt.want) {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("wrapText(%q, %d)[%d] = %q, want %q", tt.text, tt.width, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate short = %q", got)
	}
	got := truncate("héllo wörld", 6)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate broke encoding: %q", got)
	}
	if got != "héllo…" {
		t.Errorf("truncate = %q, want %q", got, "héllo…")
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("a\nb\nc"); got != "a" {
		t.Errorf("firstLine = %q, want a", got)
	}
	if got := firstLine("plain"); got != "plain" {
		t.Errorf("firstLine = %q, want plain", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 0, 3); got != 3 {
		t.Errorf("clamp(5,0,3) = %d", got)
	}
	if got := clamp(-1, 0, 3); got != 0 {
		t.Errorf("clamp(-1,0,3) = %d", got)
	}
	// Empty ranges collapse to lo.
	if got := clamp(2, 0, -1); got != 0 {
		t.Errorf("clamp(2,0,-1) = %d", got)
	}
}

func TestEntryMeta(t *testing.T) {
	e := history.Entry{Provider: "OpenAiWhisper", DurationMS: 2500, Language: "en"}
	got := entryMeta(e)
	for _, want := range []string{"OpenAI Whisper", "2.5s", "en"} {
		if !strings.Contains(got, want) {
			t.Errorf("entryMeta = %q, missing %q", got, want)
		}
	}
}
