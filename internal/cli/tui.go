package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

var (
	cellStyle         = lipgloss.NewStyle().Foreground(colorGray)
	cellWarnStyle     = lipgloss.NewStyle().Foreground(colorAmber)
	cellSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal).Reverse(true)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// Side names the four sides of a piece, clockwise from the top.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

var sideNames = [...]string{"top", "right", "bottom", "left"}

func (s Side) String() string { return sideNames[s] }

// SideEdge is what one side of a piece looks like.
type SideEdge struct {
	Border bool
	Edge   *puzzle.EdgeRecord // nil on the border and in grid mode
	HasTab bool
}

func (s SideEdge) describe(mode puzzle.Mode) string {
	switch {
	case s.Border:
		return "border"
	case s.Edge == nil || !mode.Curved():
		return "straight"
	case s.HasTab:
		return fmt.Sprintf("tab    depth %+.3f  shift %+.3f", s.Edge.DepthJitter, s.Edge.ShiftJitter)
	default:
		return fmt.Sprintf("notch  depth %+.3f  shift %+.3f", s.Edge.DepthJitter, s.Edge.ShiftJitter)
	}
}

// InspectModel is the bubbletea model for browsing a puzzle document.
type InspectModel struct {
	Doc      puzzle.Document
	Row, Col int

	sides    map[puzzle.Cell]*[4]SideEdge
	warnings map[puzzle.Cell][]puzzle.Warning
}

// NewInspectModel indexes doc's edges and warnings by cell.
func NewInspectModel(doc puzzle.Document) InspectModel {
	m := InspectModel{
		Doc:      doc,
		sides:    make(map[puzzle.Cell]*[4]SideEdge),
		warnings: make(map[puzzle.Cell][]puzzle.Warning),
	}
	at := func(c puzzle.Cell) *[4]SideEdge {
		s, ok := m.sides[c]
		if !ok {
			s = new([4]SideEdge)
			m.sides[c] = s
		}
		return s
	}
	for i := range doc.Edges {
		e := &doc.Edges[i]
		ownerSide, otherSide := SideBottom, SideTop
		if e.Axis == "vertical" {
			ownerSide, otherSide = SideRight, SideLeft
		}
		at(e.Owner)[ownerSide] = SideEdge{Edge: e, HasTab: e.TabCell() == e.Owner}
		at(e.Other)[otherSide] = SideEdge{Edge: e, HasTab: e.TabCell() == e.Other}
	}
	for _, w := range doc.Warnings {
		c := puzzle.Cell{Row: w.Row, Col: w.Col}
		m.warnings[c] = append(m.warnings[c], w)
	}
	return m
}

// Sides returns the four sides of cell, clockwise from the top.
func (m InspectModel) Sides(c puzzle.Cell) [4]SideEdge {
	var out [4]SideEdge
	if s, ok := m.sides[c]; ok {
		out = *s
	}
	out[SideTop].Border = c.Row == 0
	out[SideRight].Border = c.Col == m.Doc.Cols-1
	out[SideBottom].Border = c.Row == m.Doc.Rows-1
	out[SideLeft].Border = c.Col == 0
	return out
}

// tabCount is the number of tabs cell pushes into its neighbours.
func (m InspectModel) tabCount(c puzzle.Cell) int {
	n := 0
	for _, s := range m.Sides(c) {
		if s.Edge != nil && s.HasTab {
			n++
		}
	}
	return n
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.Row = max(m.Row-1, 0)
	case "down", "j":
		m.Row = min(m.Row+1, m.Doc.Rows-1)
	case "left", "h":
		m.Col = max(m.Col-1, 0)
	case "right", "l":
		m.Col = min(m.Col+1, m.Doc.Cols-1)
	case "home", "g":
		m.Row, m.Col = 0, 0
	case "end", "G":
		m.Row, m.Col = m.Doc.Rows-1, m.Doc.Cols-1
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Puzzle %d×%d %s", m.Doc.Rows, m.Doc.Cols, m.Doc.Mode)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  seed %d", m.Doc.Seed)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←↓↑→ move  g/G first/last  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.gridView(), "  ", panelStyle.Render(m.DetailView())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("cells show how many tabs each piece has; ! marks warnings"))
	b.WriteString("\n")
	return b.String()
}

// gridView draws the board with one token per cell.
func (m InspectModel) gridView() string {
	var b strings.Builder
	for r := 0; r < m.Doc.Rows; r++ {
		for c := 0; c < m.Doc.Cols; c++ {
			cell := puzzle.Cell{Row: r, Col: c}
			token := fmt.Sprintf(" %d ", m.tabCount(cell))
			style := cellStyle
			if len(m.warnings[cell]) > 0 {
				token = fmt.Sprintf(" %d!", m.tabCount(cell))
				style = cellWarnStyle
			}
			if r == m.Row && c == m.Col {
				style = cellSelectedStyle
			}
			b.WriteString(style.Render(token))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// DetailView describes the selected piece.
func (m InspectModel) DetailView() string {
	cell := puzzle.Cell{Row: m.Row, Col: m.Col}
	var b strings.Builder
	line := func(key, format string, args ...any) {
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Width(10).Render(key))
		b.WriteString(StyleValue.Render(fmt.Sprintf(format, args...)))
		b.WriteString("\n")
	}

	b.WriteString(StyleHighlight.Render(fmt.Sprintf("piece %d,%d", cell.Row, cell.Col)))
	b.WriteString("\n")

	if p, ok := m.Doc.Piece(cell.Row, cell.Col); ok {
		bounds := p.Boundary.Bounds()
		line("bounds", "%s,%s → %s,%s",
			geom.FormatNum(bounds.Min.X), geom.FormatNum(bounds.Min.Y),
			geom.FormatNum(bounds.Max.X), geom.FormatNum(bounds.Max.Y))
		line("nodes", "%d", len(p.Boundary.Nodes))
		switch {
		case p.OffsetBoundary != nil:
			line("offset", "%s (%d nodes)", geom.FormatNum(m.Doc.OffsetDistance), len(p.OffsetBoundary.Nodes))
		case m.Doc.OffsetDistance != 0:
			line("offset", "failed")
		}
		if d := p.PlacementDelta; d != nil {
			line("scatter", "%s, %s", geom.FormatNum(d.DX), geom.FormatNum(d.DY))
		}
	} else {
		line("piece", "missing from document")
	}

	for side, s := range m.Sides(cell) {
		line(Side(side).String(), "%s", s.describe(m.Doc.Mode))
	}
	for _, w := range m.warnings[cell] {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%s %s: %s", iconWarning, w.Code, w.Message)))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
