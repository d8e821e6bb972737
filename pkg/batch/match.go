package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Match is an input file whose name carries the expected suffix.
type Match struct {
	ID   string // file name cut at the suffix
	Name string // file name inside the scanned directory
}

// MatchSuffix lists the regular files in dir whose names end with suffix,
// sorted by name. The id is everything before the first occurrence of the
// suffix, so "A.fna.fna" yields "A".
func MatchSuffix(dir, suffix string) ([]Match, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var matches []Match
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		id, _, _ := strings.Cut(name, suffix)
		matches = append(matches, Match{ID: id, Name: name})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches, nil
}

// SubDirs lists the directories directly under dir, sorted by name.
func SubDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var dirs []string
	for _, e := range entries {
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			// follow links to prokka output kept elsewhere
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			isDir = err == nil && info.IsDir()
		}
		if isDir {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
