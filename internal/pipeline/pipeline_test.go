package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunBundlesTwoModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "util.py"), "def greet(name):\n    return name\n")
	writeFile(t, filepath.Join(dir, "main.py"), "from util import greet\nprint(greet('world'))\n")

	res, err := Run(context.Background(), Options{
		Entry:         filepath.Join(dir, "main.py"),
		SrcRoots:      []string{dir},
		PythonVersion: 312,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(res.Source, "def greet(name):") {
		t.Fatalf("expected greet definition inlined, got:\n%s", res.Source)
	}
	if !strings.Contains(res.Source, "print(greet(") {
		t.Fatalf("expected entry body preserved, got:\n%s", res.Source)
	}
}

func TestRunReportsThirdPartyImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.py"), "import requests\nrequests.get('x')\n")

	res, err := Run(context.Background(), Options{
		Entry:         filepath.Join(dir, "main.py"),
		SrcRoots:      []string{dir},
		PythonVersion: 312,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	found := false
	for _, name := range res.ThirdPartyImports {
		if name == "requests" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected requests listed as third-party, got %v", res.ThirdPartyImports)
	}
	if !strings.Contains(res.Source, "import requests") {
		t.Fatalf("expected third-party import left unchanged, got:\n%s", res.Source)
	}
}

func TestRunDetectsCircularDependency(t *testing.T) {
	// a is a package __init__ module-level-importing from b, and b in turn
	// module-level-imports from a: a 2-member cycle where one member is a
	// package __init__ module classifies as ImportTime (spec.md §4.8 rule
	// 6), which the compiler refuses to bundle.
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "__init__.py"), "from b import helper\nVALUE = 1\n")
	writeFile(t, filepath.Join(dir, "b.py"), "from a import VALUE\nOTHER = 2\n")

	_, err := Run(context.Background(), Options{
		Entry:         filepath.Join(dir, "a", "__init__.py"),
		SrcRoots:      []string{dir},
		PythonVersion: 312,
	})
	if err == nil {
		t.Fatalf("expected an unresolvable circular dependency error")
	}
}

func TestModuleNameNormalizesPackageInit(t *testing.T) {
	root := "/src"
	got := moduleName(filepath.Join(root, "pkg", "__init__.py"), []string{root})
	if got != "pkg" {
		t.Fatalf("expected pkg, got %q", got)
	}
	got2 := moduleName(filepath.Join(root, "pkg", "sub.py"), []string{root})
	if got2 != "pkg.sub" {
		t.Fatalf("expected pkg.sub, got %q", got2)
	}
}
