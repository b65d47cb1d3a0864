package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"rawncc/internal/ir"
	"rawncc/internal/logger"
)

// Extractor turns C and C++ translation units into ir trees.
// An Extractor owns a tree-sitter parser and must not be shared between goroutines.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
	parser        *sitter.Parser
	includeQuery  *sitter.Query
	log           *zap.SugaredLogger
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch strings.ToLower(lang) {
	case "", "c++", "cpp", "cxx", "c++-header":
		langExt = CppExtractor{}
	case "c", "c-header":
		langExt = CExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	query, err := sitter.NewQuery([]byte(langExt.GetIncludeQuery()), langExt.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create include query: %w", err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(langExt.GetLanguage())

	return &Extractor{
		langExtractor: langExt,
		langName:      langExt.Name(),
		parser:        parser,
		includeQuery:  query,
		log:           logger.For("extractor"),
	}, nil
}

// Language returns the normalized language name ("c++" or "c").
func (e *Extractor) Language() string {
	return e.langName
}

// ParseTranslationUnit parses path and every file it includes into a single tree.
// Quoted includes are searched next to the including file, then in includes; angle includes
// only in includes. The returned error is a *ParseError for syntax errors and missing quoted
// includes, or a wrapped I/O error.
func (e *Extractor) ParseTranslationUnit(ctx context.Context, path string, includes []string) (*ir.Tree, error) {
	src, err := readSource(path)
	if err != nil {
		return nil, err
	}

	tree := ir.NewTree(path)
	b := newBuilder(ctx, e, tree, includes)
	b.visited[absPath(path)] = true
	if err := b.file(path, src, b.rootScope()); err != nil {
		return nil, err
	}
	return tree, nil
}

// parse runs tree-sitter over src and rejects any input containing syntax errors.
func (e *Extractor) parse(ctx context.Context, path string, src []byte) (*sitter.Tree, error) {
	tree, err := e.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	if bad := firstError(tree.RootNode()); bad != nil {
		return nil, syntaxError(path, src, bad)
	}
	return tree, nil
}

// resolveIncludes maps the start byte of every include path node in root to the file it names.
// Unresolvable angle includes are left out.
func (e *Extractor) resolveIncludes(root *sitter.Node, path string, src []byte, includes []string) (map[uint32]string, error) {
	resolved := make(map[uint32]string)

	qc := sitter.NewQueryCursor()
	qc.Exec(e.includeQuery, root)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			var system bool
			switch c.Node.Type() {
			case "string_literal":
			case "system_lib_string":
				system = true
			default:
				// Computed includes (#include MACRO) cannot be followed without a preprocessor.
				continue
			}

			name := strings.Trim(c.Node.Content(src), `"<>`)
			file, found := findInclude(path, name, system, includes)
			if !found {
				if system {
					e.log.Debugw("Skipping system header", "header", name, "file", path)
					continue
				}
				p := c.Node.StartPoint()
				return nil, &ParseError{
					File:    path,
					Line:    int(p.Row) + 1,
					Column:  int(p.Column) + 1,
					Message: fmt.Sprintf("'%s' file not found", name),
				}
			}
			resolved[c.Node.StartByte()] = file
		}
	}
	return resolved, nil
}

func findInclude(from, name string, system bool, includes []string) (string, bool) {
	var dirs []string
	if !system {
		dirs = append(dirs, filepath.Dir(from))
	}
	dirs = append(dirs, includes...)

	if filepath.IsAbs(name) {
		dirs = []string{""}
	}
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func readSource(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return src, nil
}
