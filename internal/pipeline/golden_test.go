package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// runGoldenCase materializes a txtar archive's files into a temp directory
// and bundles its main.py entry point. The archive's special "want" file
// holds one assertion per line, each prefixed with "contains:"; the
// bundler's emitted order isn't pinned byte-for-byte, so golden fixtures
// check for the presence of expected fragments rather than an exact match.
func runGoldenCase(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	arc := txtar.Parse(data)

	dir := t.TempDir()
	var want []string
	for _, f := range arc.Files {
		if f.Name == "want" {
			want = strings.Split(strings.TrimRight(string(f.Data), "\n"), "\n")
			continue
		}
		writeFile(t, filepath.Join(dir, f.Name), string(f.Data))
	}

	res, err := Run(context.Background(), Options{
		Entry:         filepath.Join(dir, "main.py"),
		SrcRoots:      []string{dir},
		PythonVersion: 312,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, line := range want {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		frag, ok := strings.CutPrefix(line, "contains:")
		if !ok {
			t.Fatalf("unrecognized want directive %q", line)
		}
		frag = strings.TrimSpace(frag)
		if !strings.Contains(res.Source, frag) {
			t.Errorf("expected bundled output to contain %q, got:\n%s", frag, res.Source)
		}
	}
	return res.Source
}

func TestGoldenFixtures(t *testing.T) {
	matches, err := filepath.Glob("testdata/golden/*.txtar")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no golden fixtures found")
	}
	for _, path := range matches {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			runGoldenCase(t, path)
		})
	}
}
