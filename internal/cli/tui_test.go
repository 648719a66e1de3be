package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/pipeline"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

func inspectDoc(t *testing.T, mode string) puzzle.Document {
	t.Helper()
	seed := uint64(4)
	doc, _, err := pipeline.Generate(context.Background(), pipeline.Options{
		Width: 300, Height: 200, Rows: 2, Cols: 3, Mode: mode, Seed: &seed,
	}, seed)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	return doc
}

func TestInspectModelSides(t *testing.T) {
	m := NewInspectModel(inspectDoc(t, "traditional"))

	corner := m.Sides(puzzle.Cell{Row: 0, Col: 0})
	if !corner[SideTop].Border || !corner[SideLeft].Border || corner[SideTop].Edge != nil {
		t.Error("corner piece should have border on top and left")
	}
	if corner[SideRight].Border || corner[SideBottom].Border {
		t.Error("corner piece right and bottom sides are interior")
	}
	if corner[SideRight].Edge == nil || corner[SideBottom].Edge == nil {
		t.Fatal("corner piece should have interior edges on right and bottom")
	}

	// Every interior edge is a tab on exactly one side.
	right := corner[SideRight]
	neighbour := m.Sides(puzzle.Cell{Row: 0, Col: 1})[SideLeft]
	if right.Edge != neighbour.Edge {
		t.Error("shared edge should be the same record on both sides")
	}
	if right.HasTab == neighbour.HasTab {
		t.Error("exactly one side of a shared edge carries the tab")
	}

	total := 0
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			total += m.tabCount(puzzle.Cell{Row: r, Col: c})
		}
	}
	if total != len(m.Doc.Edges) {
		t.Errorf("tabs = %d, want one per edge (%d)", total, len(m.Doc.Edges))
	}

	far := m.Sides(puzzle.Cell{Row: 1, Col: 2})
	if !far[SideRight].Border || !far[SideBottom].Border || far[SideTop].Border {
		t.Errorf("Sides(1,2) borders = %+v", far)
	}
}

func TestInspectModelNavigation(t *testing.T) {
	var m tea.Model = NewInspectModel(inspectDoc(t, "grid"))
	press := func(keys ...string) InspectModel {
		for _, k := range keys {
			var msg tea.KeyMsg
			switch k {
			case "up":
				msg = tea.KeyMsg{Type: tea.KeyUp}
			case "right":
				msg = tea.KeyMsg{Type: tea.KeyRight}
			default:
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
			}
			m, _ = m.Update(msg)
		}
		return m.(InspectModel)
	}

	if got := press("up", "h"); got.Row != 0 || got.Col != 0 {
		t.Errorf("moving past the top-left corner = %d,%d", got.Row, got.Col)
	}
	if got := press("j", "j", "right", "l", "l", "l"); got.Row != 1 || got.Col != 2 {
		t.Errorf("moving past the bottom-right corner = %d,%d, want 1,2", got.Row, got.Col)
	}
	if got := press("g"); got.Row != 0 || got.Col != 0 {
		t.Errorf("g = %d,%d, want 0,0", got.Row, got.Col)
	}
	if got := press("G"); got.Row != 1 || got.Col != 2 {
		t.Errorf("G = %d,%d, want 1,2", got.Row, got.Col)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
	if _, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24}); cmd != nil {
		t.Error("non-key messages should be ignored")
	}
}

func TestInspectModelView(t *testing.T) {
	m := NewInspectModel(inspectDoc(t, "grid"))
	m.Row, m.Col = 1, 1

	view := m.View()
	for _, want := range []string{"Puzzle 2×3 grid", "seed 4", "piece 1,1"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	detail := m.DetailView()
	if strings.Count(detail, "straight") != 3 {
		t.Errorf("grid piece 1,1 should have three straight sides:\n%s", detail)
	}
	if strings.Count(detail, "border") != 1 {
		t.Errorf("grid piece 1,1 should have one border side:\n%s", detail)
	}
	if !strings.Contains(detail, "100,100 → 200,200") {
		t.Errorf("DetailView() bounds:\n%s", detail)
	}
}

func TestInspectModelWarnings(t *testing.T) {
	doc := inspectDoc(t, "traditional")
	doc.Warnings = []puzzle.Warning{{Row: 0, Col: 2, Code: errors.ErrCodeOffsetFailure, Message: "offset timed out"}}
	m := NewInspectModel(doc)

	if !strings.Contains(m.gridView(), "!") {
		t.Error("grid should mark cells with warnings")
	}
	m.Row, m.Col = 0, 2
	if d := m.DetailView(); !strings.Contains(d, "OFFSET_FAILURE: offset timed out") {
		t.Errorf("DetailView() missing warning:\n%s", d)
	}
	m.Col = 0
	if d := m.DetailView(); strings.Contains(d, "OFFSET_FAILURE") {
		t.Error("warning shown on the wrong piece")
	}
}

func TestSideEdgeDescribe(t *testing.T) {
	e := &puzzle.EdgeRecord{DepthJitter: 0.5, ShiftJitter: -0.25}
	tests := []struct {
		side SideEdge
		mode puzzle.Mode
		want string
	}{
		{SideEdge{Border: true}, puzzle.ModeTraditional, "border"},
		{SideEdge{Edge: e}, puzzle.ModeGrid, "straight"},
		{SideEdge{}, puzzle.ModeGrid, "straight"},
		{SideEdge{Edge: e, HasTab: true}, puzzle.ModeRandom, "tab    depth +0.500  shift -0.250"},
		{SideEdge{Edge: e}, puzzle.ModeTraditional, "notch  depth +0.500  shift -0.250"},
	}
	for _, tt := range tests {
		if got := tt.side.describe(tt.mode); got != tt.want {
			t.Errorf("describe(%s) = %q, want %q", tt.mode, got, tt.want)
		}
	}
	if SideLeft.String() != "left" {
		t.Errorf("SideLeft = %s", SideLeft)
	}
}
