// Package schema finds, reads and validates the Prisma schema that describes
// the service database.
package schema

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const (
	// FileName is the schema file looked for by Locate.
	FileName = "schema.prisma"

	// DefaultMaxDepth is how many directory levels Locate searches by
	// default. A file directly under root is at level 1.
	DefaultMaxDepth = 5
)

// ErrNotFound is returned by Locate when no schema file exists within range.
var ErrNotFound = errors.New("schema.prisma not found")

// Locate searches root breadth-first for FileName and returns the shallowest
// match, the lexically smallest one when a level holds several. Symlinked
// directories are not followed and unreadable directories are skipped.
func Locate(fsys afero.Fs, root string, maxDepth int) (string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	info, err := fsys.Stat(root)
	if err != nil {
		return "", fmt.Errorf("search root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("search root %s is not a directory", root)
	}

	level := []string{root}
	for depth := 1; depth <= maxDepth && len(level) > 0; depth++ {
		var matches, next []string
		for _, dir := range level {
			entries, err := afero.ReadDir(fsys, dir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				p := filepath.Join(dir, e.Name())
				switch {
				case e.IsDir():
					next = append(next, p)
				case e.Name() == FileName && e.Mode().IsRegular():
					matches = append(matches, p)
				}
			}
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], nil
		}
		sort.Strings(next)
		level = next
	}

	return "", fmt.Errorf("%w under %s within %d levels", ErrNotFound, root, maxDepth)
}

// Listing renders the directory tree under root down to depth levels, one
// entry per line, directories suffixed with "/". It is printed when Locate
// fails so build logs show what the image actually contains.
func Listing(fsys afero.Fs, root string, depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", root)
	list(fsys, &b, root, "", depth)
	return b.String()
}

func list(fsys afero.Fs, b *strings.Builder, dir, rel string, depth int) {
	if depth <= 0 {
		return
	}
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		fmt.Fprintf(b, "  %s [unreadable: %v]\n", rel, err)
		return
	}
	for _, e := range entries {
		name := filepath.Join(rel, e.Name())
		if e.IsDir() {
			fmt.Fprintf(b, "  %s/\n", name)
			list(fsys, b, filepath.Join(dir, e.Name()), name, depth-1)
			continue
		}
		fmt.Fprintf(b, "  %s\n", name)
	}
}
