package crawler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"rawncc/internal/logger"
)

var (
	sourceExts = map[string]bool{".cpp": true, ".cc": true, ".cxx": true, ".c++": true, ".c": true}
	headerExts = map[string]bool{".h": true, ".hh": true, ".hpp": true, ".hxx": true, ".h++": true}
)

// Crawler finds translation units below a set of paths.
type Crawler struct {
	ignored []string
	headers bool
	log     *zap.SugaredLogger
}

// NewCrawler creates a new crawler instance. With headers set, header files are treated as
// translation units too.
func NewCrawler(headers bool) *Crawler {
	return &Crawler{
		ignored: []string{".git", "vendor", "node_modules", "build", "third_party"},
		headers: headers,
		log:     logger.For("crawler"),
	}
}

// IsSource reports whether name looks like a C or C++ translation unit.
func (c *Crawler) IsSource(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return sourceExts[ext] || (c.headers && headerExts[ext])
}

// ScanProject walks the root directory and streams every translation unit to onFile.
// An error from onFile stops the walk.
func (c *Crawler) ScanProject(root string, onFile func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.IsSource(d.Name()) {
			return nil
		}
		return onFile(path)
	})
}

// Collect expands paths into a sorted, duplicate-free list of translation units. Files are
// taken as given whatever their extension; directories are scanned.
func (c *Crawler) Collect(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) error {
		key := filepath.Clean(path)
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
		return nil
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			_ = add(p)
			continue
		}
		if err := c.ScanProject(p, add); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", p, err)
		}
	}

	sort.Strings(files)
	c.log.Debugw("Collected translation units", "count", len(files))
	return files, nil
}
