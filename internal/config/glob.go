package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ExpandGlobs resolves wordlist arguments into a sorted list of distinct
// files. A plain argument must name an existing wordlist file. A glob must
// match at least one file; directories it matches (a "lists/*" that also
// catches a subfolder) are skipped.
func ExpandGlobs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no wordlists provided")
	}

	var files []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("wordlist %s: %w", pattern, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("wordlist %s is a directory", pattern)
			}
			files = append(files, filepath.Clean(pattern))
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid wordlist pattern %q: %w", pattern, err)
		}
		found := 0
		for _, match := range matches {
			if info, err := os.Stat(match); err != nil || info.IsDir() {
				continue
			}
			files = append(files, filepath.Clean(match))
			found++
		}
		if found == 0 {
			return nil, fmt.Errorf("no wordlists match %q", pattern)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}
