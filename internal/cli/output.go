package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/jigsaw/pkg/pipeline"
)

// stdoutPath selects standard output for a single-format write.
const stdoutPath = "-"

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. "-" is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdoutPath {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	formats := strings.Split(s, ",")
	for i, f := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	return formats
}

// basePath derives the base output path. An empty output falls back to
// fallback; a known format extension is stripped.
func basePath(output, fallback string) string {
	if output == "" {
		output = fallback
	}
	// Longest extensions first so ".interlock.svg" beats ".svg".
	exts := make([]string, 0, len(pipeline.FormatExt))
	for _, ext := range pipeline.FormatExt {
		exts = append(exts, ext)
	}
	slices.SortFunc(exts, func(a, b string) int { return len(b) - len(a) })
	for _, ext := range exts {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	output    string // exact path for a single format, base path otherwise
	fallback  string // base path when output is empty
}

// writeArtifacts writes every requested format and returns the paths
// written. A single format goes to output verbatim when one is given.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	if len(p.formats) == 1 && p.output != "" {
		return []string{p.output}, writeFile(p.output, p.artifacts[p.formats[0]])
	}
	if p.output == stdoutPath {
		return nil, fmt.Errorf("cannot write %d formats to stdout", len(p.formats))
	}

	base := basePath(p.output, p.fallback)
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		path := base + pipeline.FormatExt[format]
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
