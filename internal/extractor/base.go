package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// LanguageExtractor supplies the grammar and the dialect rules for one source language.
type LanguageExtractor interface {
	Name() string
	GetLanguage() *sitter.Language
	// GetIncludeQuery captures the path of every #include directive as @path.
	GetIncludeQuery() string
	// ConstImpliesInternalLinkage reports whether a const-qualified variable at namespace
	// scope has internal linkage (true for C++, false for C).
	ConstImpliesInternalLinkage() bool
}

const includeQuery = `(preproc_include path: (_) @path)`

// CppExtractor implements LanguageExtractor for C++.
type CppExtractor struct{}

func (CppExtractor) Name() string                      { return "c++" }
func (CppExtractor) GetLanguage() *sitter.Language     { return cpp.GetLanguage() }
func (CppExtractor) GetIncludeQuery() string           { return includeQuery }
func (CppExtractor) ConstImpliesInternalLinkage() bool { return true }

// CExtractor implements LanguageExtractor for C. The C grammar is a subset of the C++ one,
// so the same builder handles both.
type CExtractor struct{}

func (CExtractor) Name() string                      { return "c" }
func (CExtractor) GetLanguage() *sitter.Language     { return c.GetLanguage() }
func (CExtractor) GetIncludeQuery() string           { return includeQuery }
func (CExtractor) ConstImpliesInternalLinkage() bool { return false }
