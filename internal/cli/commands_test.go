package cli

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/jigsaw/pkg/errors"
	docio "github.com/matzehuels/jigsaw/pkg/io"
	"github.com/matzehuels/jigsaw/pkg/store"
)

// execute runs the root command with args and returns what it wrote to
// the command's output.
func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateWritesFormats(t *testing.T) {
	c := testCLI(t)
	dir := t.TempDir()
	base := filepath.Join(dir, "cut")

	_, err := execute(t, c, "generate",
		"--width", "300", "--height", "200", "--rows", "2", "--cols", "3",
		"--seed", "5", "-f", "svg,json,dot", "-o", base)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	for _, ext := range []string{".svg", ".json", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
	doc, err := docio.ImportJSON(base + ".json")
	if err != nil {
		t.Fatalf("generated JSON does not import: %v", err)
	}
	if len(doc.Pieces) != 6 || doc.Seed != 5 {
		t.Errorf("document has %d pieces and seed %d", len(doc.Pieces), doc.Seed)
	}
}

func TestGenerateFromBoardFile(t *testing.T) {
	c := testCLI(t)
	board := writeBoard(t, "width = 120.0\nheight = 80.0\nrows = 2\ncols = 3\nmode = \"grid\"\nseed = 3\nformats = [\"json\"]\n")
	out := filepath.Join(t.TempDir(), "grid.json")

	if _, err := execute(t, c, "generate", "--config", board, "--cols", "4", "-o", out); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	doc, err := docio.ImportJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Cols != 4 || doc.Mode != "grid" {
		t.Errorf("document is %d cols in mode %s, want 4 cols grid", doc.Cols, doc.Mode)
	}
}

func TestGenerateScatterInBoardUnits(t *testing.T) {
	c := testCLI(t)
	out := filepath.Join(t.TempDir(), "scattered.json")

	_, err := execute(t, c, "generate",
		"--width", "400", "--height", "400", "--rows", "4", "--cols", "4",
		"--seed", "11", "--scatter", "3", "-f", "json", "-o", out)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	doc, err := docio.ImportJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if doc.ScatterStrength != 3 {
		t.Errorf("scatter_strength = %g, want 3", doc.ScatterStrength)
	}

	moved := false
	for _, p := range doc.Pieces {
		d := p.PlacementDelta
		if d == nil {
			t.Fatalf("piece (%d,%d) has no placement delta", p.Row, p.Col)
		}
		if math.Abs(d.DX) > 3 || math.Abs(d.DY) > 3 {
			t.Errorf("piece (%d,%d) moved by (%g, %g), beyond 3 board units", p.Row, p.Col, d.DX, d.DY)
		}
		if math.Abs(d.DX) > 0.1 || math.Abs(d.DY) > 0.1 {
			moved = true
		}
	}
	if !moved {
		t.Error("no piece moved more than 0.1 units")
	}
}

func TestGenerateErrors(t *testing.T) {
	c := testCLI(t)
	out := filepath.Join(t.TempDir(), "x")

	_, err := execute(t, c, "generate", "--width", "100", "--height", "100", "--rows", "2", "--cols", "2", "-f", "gif", "-o", out)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v, want INVALID_FORMAT", err)
	}

	_, err = execute(t, c, "generate", "--width", "100", "--height", "2000", "--rows", "2", "--cols", "10", "--seed", "1", "-o", out)
	if !errors.Is(err, errors.ErrCodeDegenerateEdge) {
		t.Errorf("degenerate error = %v, want DEGENERATE_EDGE", err)
	}

	_, err = execute(t, c, "generate", "--width", "0", "--height", "100", "--rows", "1", "--cols", "1", "-o", out)
	if !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("zero width error = %v, want INVALID_GEOMETRY", err)
	}
}

func TestRenderCommand(t *testing.T) {
	c := testCLI(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.json")
	if _, err := execute(t, c, "generate", "--width", "300", "--height", "200", "--rows", "2", "--cols", "3", "--seed", "9", "-f", "json", "-o", src); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, c, "render", src, "-f", "svg,dot", "--labels"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	svg, err := os.ReadFile(filepath.Join(dir, "doc.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), ">1,2</text>") {
		t.Error("render --labels did not label pieces")
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.dot")); err != nil {
		t.Errorf("dot output missing: %v", err)
	}

	if _, err := execute(t, c, "render", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("render of a missing file should fail")
	}
}

func TestRunsLifecycle(t *testing.T) {
	c := testCLI(t)
	dir := t.TempDir()

	if _, err := execute(t, c, "generate", "--width", "300", "--height", "200", "--rows", "2", "--cols", "3",
		"--seed", "11", "-o", filepath.Join(dir, "p.svg"), "--save"); err != nil {
		t.Fatalf("generate --save error: %v", err)
	}

	st, err := store.OpenSQLite(os.Getenv("JIGSAW_STORE_PATH"))
	if err != nil {
		t.Fatal(err)
	}
	runs, err := st.List(context.Background(), 10)
	st.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("stored runs = %v, %v; want one", runs, err)
	}
	id := runs[0].ID
	if runs[0].Seed != 11 {
		t.Errorf("stored seed = %d, want 11", runs[0].Seed)
	}

	out, err := execute(t, c, "runs", "list")
	if err != nil || !strings.Contains(out, id) {
		t.Errorf("runs list = %q, %v; want it to show %s", out, err, id)
	}

	out, err = execute(t, c, "runs", "show", id)
	if err != nil || !strings.Contains(out, "2×3 traditional") {
		t.Errorf("runs show = %q, %v", out, err)
	}

	export := filepath.Join(dir, "export.dot")
	if _, err := execute(t, c, "runs", "export", id, "-f", "dot", "-o", export); err != nil {
		t.Fatalf("runs export error: %v", err)
	}
	if data, err := os.ReadFile(export); err != nil || !strings.HasPrefix(string(data), "digraph interlock") {
		t.Errorf("export = %.30q, %v", data, err)
	}

	if _, err := execute(t, c, "runs", "delete", id); err != nil {
		t.Fatalf("runs delete error: %v", err)
	}
	if _, err := execute(t, c, "runs", "show", id); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("runs show after delete = %v, want not found", err)
	}
}

func TestInspectPrint(t *testing.T) {
	c := testCLI(t)
	src := filepath.Join(t.TempDir(), "doc.json")
	if _, err := execute(t, c, "generate", "--width", "300", "--height", "200", "--rows", "2", "--cols", "3", "--seed", "2", "-f", "json", "-o", src); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, c, "inspect", src, "--row", "1", "--col", "2", "--print")
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	for _, want := range []string{"piece 1,2", "right", "border", "bounds"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, c, "inspect", src, "--row", "5", "--print"); err == nil {
		t.Error("inspect should reject a cell outside the board")
	}
}

func TestInspectGeneratesFromFlags(t *testing.T) {
	c := testCLI(t)
	out, err := execute(t, c, "inspect", "--width", "100", "--height", "2000", "--rows", "2", "--cols", "10", "--seed", "1", "--print")
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	if !strings.Contains(out, "DEGENERATE_EDGE") {
		t.Errorf("inspect should keep going and show degenerate warnings:\n%s", out)
	}
}

func TestCacheCommands(t *testing.T) {
	c := testCLI(t)
	out, err := execute(t, c, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out), os.Getenv("JIGSAW_CACHE_DIR"); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	if _, err := execute(t, c, "generate", "--width", "100", "--height", "100", "--rows", "2", "--cols", "2", "--seed", "1", "-o", filepath.Join(t.TempDir(), "a.svg")); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(os.Getenv("JIGSAW_CACHE_DIR"))
	if len(entries) == 0 {
		t.Fatal("seeded generate should populate the file cache")
	}

	if _, err := execute(t, c, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	entries, _ = os.ReadDir(os.Getenv("JIGSAW_CACHE_DIR"))
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestCompletion(t *testing.T) {
	c := testCLI(t)
	out, err := execute(t, c, "completion", "bash")
	if err != nil || !strings.Contains(out, "jigsaw") {
		t.Errorf("completion bash = %.40q, %v", out, err)
	}
	if _, err := execute(t, c, "completion", "tcsh"); err == nil {
		t.Error("completion should reject unknown shells")
	}
}
