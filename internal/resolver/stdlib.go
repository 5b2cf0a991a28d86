package resolver

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stdlibdata/*.yaml
var stdlibFS embed.FS

type stdlibTable struct {
	Version int      `yaml:"version"`
	Modules []string `yaml:"modules"`
}

// stdlibSets caches the parsed per-version module name sets.
var stdlibSets = map[int]map[string]bool{}

// loadStdlib parses languages/*.yaml-style embedded data for pythonVersion,
// following the teacher's capability.LoadPatterns: embed.FS + yaml.Unmarshal.
// The table's version field is not checked. Falls back to the nearest lower version
// present in the embed if an exact match isn't embedded.
func loadStdlib(pythonVersion int) (map[string]bool, error) {
	if set, ok := stdlibSets[pythonVersion]; ok {
		return set, nil
	}

	name := fmt.Sprintf("stdlibdata/py%d.yaml", pythonVersion)
	data, err := stdlibFS.ReadFile(name)
	if err != nil {
		name = nearestStdlibFile(pythonVersion)
		data, err = stdlibFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("load stdlib table for python %d: %w", pythonVersion, err)
		}
	}

	var raw stdlibTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	set := make(map[string]bool, len(raw.Modules))
	for _, m := range raw.Modules {
		set[m] = true
	}
	stdlibSets[pythonVersion] = set
	return set, nil
}

func nearestStdlibFile(pythonVersion int) string {
	// Embedded tables are named pyNN.yaml; pick the closest one not newer
	// than the requested version, defaulting to the oldest if none qualify.
	known := []int{38, 311, 312}
	best := known[0]
	for _, v := range known {
		if v <= pythonVersion && v > best {
			best = v
		}
	}
	return fmt.Sprintf("stdlibdata/py%d.yaml", best)
}

// IsStandardLibrary reports whether the top-level component of a dotted
// module name is a recognized standard-library module for pythonVersion.
func IsStandardLibrary(moduleName string, pythonVersion int) bool {
	set, err := loadStdlib(pythonVersion)
	if err != nil {
		return false
	}
	top := moduleName
	if i := strings.IndexByte(top, '.'); i >= 0 {
		top = top[:i]
	}
	return set[top]
}
