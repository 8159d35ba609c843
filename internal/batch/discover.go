package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover lists the files of dir whose extension is one of exts, ordered
// by the number their name starts with. Names without a leading number sort
// after numbered ones. Subdirectories are not searched.
func Discover(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	wanted := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			wanted[e] = true
		}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), "."))
		if wanted[ext] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	slices.SortStableFunc(paths, func(a, b string) int {
		return compareNames(filepath.Base(a), filepath.Base(b))
	})
	return paths, nil
}

// compareNames orders names by their leading number, then by name
func compareNames(a, b string) int {
	na, nb := leadingDigits(a), leadingDigits(b)
	switch {
	case na == "" && nb != "":
		return 1
	case na != "" && nb == "":
		return -1
	}

	na, nb = strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
	if c := len(na) - len(nb); c != 0 {
		return c
	}
	if c := strings.Compare(na, nb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func leadingDigits(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i < 0 {
		return s
	}
	return s[:i]
}
