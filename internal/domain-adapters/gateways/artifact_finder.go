package gateways

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

// ArtifactMatch is a file selected by an artifact rule
type ArtifactMatch struct {
	Path    string // Absolute or root-relative source path
	RelPath string // Path relative to the rule's search directory
}

// Destination returns where the match lands under destRoot
func (m ArtifactMatch) Destination(destRoot string, rule entities.ArtifactRule) string {
	if rule.KeepPath {
		return filepath.Join(destRoot, rule.Dst, m.RelPath)
	}
	return filepath.Join(destRoot, rule.Dst, filepath.Base(m.RelPath))
}

// ArtifactFinder locates build outputs that match artifact rules
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// FindMatches walks root/rule.Src and returns files whose base name matches
// rule.Pattern, sorted by relative path. A missing search directory yields
// no matches. Directories listed in skip are not descended into.
func (f *ArtifactFinder) FindMatches(root string, rule entities.ArtifactRule, skip ...string) ([]ArtifactMatch, error) {
	if _, err := filepath.Match(rule.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", rule.Pattern, err)
	}

	searchDir := filepath.Join(root, rule.Src)
	if _, err := os.Stat(searchDir); os.IsNotExist(err) {
		return nil, nil
	}

	skipped, err := absPaths(skip)
	if err != nil {
		return nil, err
	}
	absSearch, err := filepath.Abs(searchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", searchDir, err)
	}
	for _, dir := range skipped {
		if within(absSearch, dir) {
			return nil, nil
		}
	}

	var matches []ArtifactMatch
	err = filepath.WalkDir(searchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == searchDir || len(skipped) == 0 {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			for _, dir := range skipped {
				if abs == dir {
					return fs.SkipDir
				}
			}
			return nil
		}

		//nolint:errcheck // pattern validated above
		ok, _ := filepath.Match(rule.Pattern, d.Name())
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(searchDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		matches = append(matches, ArtifactMatch{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", searchDir, err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].RelPath < matches[j].RelPath })
	return matches, nil
}

// CopyMatches applies every rule to every root and copies the matches into
// destRoot. Symlinks are recreated rather than followed. It returns the
// destination paths in copy order.
func (f *ArtifactFinder) CopyMatches(roots []string, rules []entities.ArtifactRule, destRoot string) ([]string, error) {
	return f.CopyMatchesExcluding(roots, rules, destRoot, nil)
}

// CopyMatchesExcluding is CopyMatches with the exclude directories left out
// of every walk. destRoot is always left out, and a root nested inside
// another root is only walked on its own, so no file is copied twice.
func (f *ArtifactFinder) CopyMatchesExcluding(roots []string, rules []entities.ArtifactRule, destRoot string, exclude []string) ([]string, error) {
	absRoots, err := absPaths(roots)
	if err != nil {
		return nil, err
	}

	var unique []string
	seen := make(map[string]bool, len(absRoots))
	for i, abs := range absRoots {
		if !seen[abs] {
			seen[abs] = true
			unique = append(unique, roots[i])
		}
	}

	var copied []string
	for _, rule := range rules {
		for _, root := range unique {
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return copied, fmt.Errorf("failed to resolve %s: %w", root, err)
			}

			skip := append([]string{destRoot}, exclude...)
			for abs := range seen {
				if abs != absRoot && within(abs, absRoot) {
					skip = append(skip, abs)
				}
			}

			matches, err := f.FindMatches(root, rule, skip...)
			if err != nil {
				return copied, err
			}
			for _, m := range matches {
				dest := m.Destination(destRoot, rule)
				if err := copyEntry(m.Path, dest); err != nil {
					return copied, fmt.Errorf("failed to copy %s: %w", m.Path, err)
				}
				copied = append(copied, dest)
			}
		}
	}
	return copied, nil
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// within reports whether path is dir or lies below it
func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(os.PathSeparator))
}

func copyEntry(src, dest string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		_ = os.Remove(dest)
		return os.Symlink(target, dest)
	}

	//nolint:gosec // G304: src comes from walking a build tree
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	//nolint:gosec // G304: dest is inside the staging directory
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
