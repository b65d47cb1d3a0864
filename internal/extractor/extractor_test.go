package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rawncc/internal/ir"
)

func parseFixture(t *testing.T, lang, name string, includes ...string) *ir.Tree {
	t.Helper()
	ext, err := NewExtractor(lang)
	require.NoError(t, err)

	tree, err := ext.ParseTranslationUnit(context.Background(), filepath.Join("testdata", name), includes)
	require.NoError(t, err)
	return tree
}

// byName collects nodes of the given kinds keyed by name. Later nodes do not overwrite
// earlier ones; use all() for redeclarations.
func byName(tree *ir.Tree, kinds ...ir.EntityKind) map[string]*ir.Node {
	out := make(map[string]*ir.Node)
	tree.Visit(func(n, _ *ir.Node) ir.VisitResult {
		for _, k := range kinds {
			if n.Kind == k {
				if _, seen := out[n.Name]; !seen {
					out[n.Name] = n
				}
			}
		}
		return ir.Recurse
	})
	return out
}

func all(tree *ir.Tree, kind ir.EntityKind, name string) []*ir.Node {
	var out []*ir.Node
	tree.Visit(func(n, _ *ir.Node) ir.VisitResult {
		if n.Kind == kind && n.Name == name {
			out = append(out, n)
		}
		return ir.Recurse
	})
	return out
}

func count(tree *ir.Tree, kind ir.EntityKind) int {
	var c int
	tree.Visit(func(n, _ *ir.Node) ir.VisitResult {
		if n.Kind == kind {
			c++
		}
		return ir.Recurse
	})
	return c
}

func TestNewExtractor(t *testing.T) {
	for _, lang := range []string{"", "c++", "cpp", "C++"} {
		ext, err := NewExtractor(lang)
		require.NoError(t, err, lang)
		assert.Equal(t, "c++", ext.Language())
	}

	ext, err := NewExtractor("c")
	require.NoError(t, err)
	assert.Equal(t, "c", ext.Language())

	_, err = NewExtractor("go")
	assert.Error(t, err)
}

func TestParseTranslationUnit_Declarations(t *testing.T) {
	tree := parseFixture(t, "c++", "test001.cpp")
	vars := byName(tree, ir.KindVarDecl, ir.KindFieldDecl)
	params := byName(tree, ir.KindParmDecl)

	t.Run("Fields", func(t *testing.T) {
		for _, name := range []string{"m_Int", "m_pInt", "m_rInt"} {
			n, ok := vars[name]
			require.True(t, ok, name)
			assert.Equal(t, ir.KindFieldDecl, n.Kind, name)
			assert.Equal(t, ir.LinkageAutomatic, n.Linkage, name)
			parent := tree.Node(n.LexicalParent)
			require.NotNil(t, parent)
			assert.Equal(t, ir.KindStructDecl, parent.Kind)
			assert.Equal(t, "Temp", parent.Name)
		}
		assert.Equal(t, ir.TypePointer, vars["m_pInt"].Type.Kind)
		assert.Equal(t, ir.TypeLValueReference, vars["m_rInt"].Type.Kind)
	})

	t.Run("Static Member", func(t *testing.T) {
		n := vars["THE_INT"]
		require.NotNil(t, n)
		assert.Equal(t, ir.KindVarDecl, n.Kind)
		assert.Equal(t, ir.StorageStatic, n.Storage)
		assert.True(t, n.Type.Const)
		assert.Equal(t, ir.KindStructDecl, tree.Node(n.SemanticParent).Kind)
	})

	t.Run("Namespace Scope", func(t *testing.T) {
		d := vars["the_const_d"]
		require.NotNil(t, d)
		assert.Equal(t, ir.LinkageInternal, d.Linkage, "const implies internal linkage")
		assert.Equal(t, ir.StorageNone, d.Storage)
		assert.Equal(t, "const double", d.Type.Spelling)

		u := vars["the_const_unsigned"]
		require.NotNil(t, u)
		assert.True(t, u.Type.Const, "constexpr makes the object const")
		assert.Equal(t, ir.LinkageInternal, u.Linkage)

		s := vars["the_const_string"]
		require.NotNil(t, s)
		assert.Equal(t, ir.TypePointer, s.Type.Kind)
		assert.False(t, s.Type.Const)
		assert.True(t, s.Type.Pointee.Const)
		assert.Equal(t, "const char *", s.Type.Spelling)
		assert.Equal(t, ir.StorageStatic, s.Storage)
		assert.Equal(t, ir.LinkageInternal, s.Linkage)

		r := vars["the_const_ref_d"]
		require.NotNil(t, r)
		assert.Equal(t, ir.TypeLValueReference, r.Type.Kind)
		assert.True(t, r.Type.Pointee.Const)
		assert.Equal(t, ir.LinkageExternal, r.Linkage, "references are never const objects")
	})

	t.Run("Locals", func(t *testing.T) {
		main := byName(tree, ir.KindFunctionDecl)["main"]
		require.NotNil(t, main)
		for _, name := range []string{"c", "b", "bb", "d", "blah", "f", "g", "h", "i", "x"} {
			n, ok := vars[name]
			require.True(t, ok, name)
			assert.Equal(t, ir.KindVarDecl, n.Kind, name)
			assert.Equal(t, main.ID, n.LexicalParent, name)
			assert.Equal(t, ir.LinkageAutomatic, n.Linkage, name)
		}
		assert.Equal(t, ir.TypeRValueReference, vars["bb"].Type.Kind)
		assert.Equal(t, ir.TypeTypedef, vars["b"].Type.Kind)
		assert.Equal(t, ir.TypePointer, vars["d"].Type.Kind)

		i := vars["i"]
		assert.Equal(t, ir.TypeLValueReference, i.Type.Kind)
		assert.Equal(t, ir.TypePointer, i.Type.Pointee.Kind)
	})

	t.Run("Parameters", func(t *testing.T) {
		for _, name := range []string{"t", "a", "b"} {
			n, ok := params[name]
			require.True(t, ok, name)
			assert.Equal(t, ir.KindParmDecl, n.Kind, name)
		}
	})

	t.Run("Functions", func(t *testing.T) {
		fns := byName(tree, ir.KindConstructor, ir.KindMethod, ir.KindFunctionDecl)
		assert.Equal(t, ir.KindConstructor, fns["Temp"].Kind)
		assert.Equal(t, ir.KindMethod, fns["blah"].Kind)
		assert.Equal(t, ir.KindFunctionDecl, fns["main"].Kind)
	})

	t.Run("Locations", func(t *testing.T) {
		n := vars["the_const_d"]
		assert.Equal(t, filepath.Join("testdata", "test001.cpp"), n.Location.File)
		assert.Equal(t, 15, n.Location.Line)
		assert.Equal(t, 14, n.Location.Column)
	})

	t.Run("Counts", func(t *testing.T) {
		assert.Equal(t, 16, count(tree, ir.KindVarDecl))
		assert.Equal(t, 3, count(tree, ir.KindFieldDecl))
		assert.Equal(t, 1, count(tree, ir.KindTypedefDecl))
		assert.Equal(t, 0, count(tree, ir.KindCStyleCastExpr))
	})
}

func TestParseTranslationUnit_OutOfLine(t *testing.T) {
	tree := parseFixture(t, "c++", "out_of_line.cpp")

	widget := byName(tree, ir.KindClassDecl)["Widget"]
	require.NotNil(t, widget)

	t.Run("Static Member Definition", func(t *testing.T) {
		decls := all(tree, ir.KindVarDecl, "VALUE")
		require.Len(t, decls, 2)
		inClass, def := decls[0], decls[1]

		assert.Equal(t, widget.ID, inClass.LexicalParent)
		assert.Equal(t, ir.StorageStatic, inClass.Storage)

		assert.Equal(t, tree.Root().ID, def.LexicalParent)
		assert.Equal(t, widget.ID, def.SemanticParent)
		assert.Equal(t, inClass.ID, def.Canonical)
		assert.Equal(t, ir.StorageNone, def.Storage)
	})

	t.Run("Special Members", func(t *testing.T) {
		ctors := all(tree, ir.KindConstructor, "Widget")
		require.Len(t, ctors, 2)
		assert.Equal(t, ctors[0].ID, ctors[1].Canonical)
		assert.Equal(t, widget.ID, ctors[1].SemanticParent)

		dtors := all(tree, ir.KindDestructor, "~Widget")
		require.Len(t, dtors, 2)

		sizes := all(tree, ir.KindMethod, "size")
		require.Len(t, sizes, 2)
		assert.Equal(t, sizes[0].ID, sizes[1].Canonical)
	})

	t.Run("Anonymous Namespace", func(t *testing.T) {
		vars := byName(tree, ir.KindVarDecl)
		for _, name := range []string{"UNNAMED_NAMESPACE", "counter"} {
			n := vars[name]
			require.NotNil(t, n, name)
			assert.Equal(t, ir.LinkageInternal, n.Linkage, name)
			ns := tree.Node(n.LexicalParent)
			assert.Equal(t, ir.KindNamespace, ns.Kind)
			assert.Empty(t, ns.Name)
		}
	})

	t.Run("Aggregates", func(t *testing.T) {
		assert.NotNil(t, byName(tree, ir.KindUnionDecl)["Bits"])
		assert.NotNil(t, byName(tree, ir.KindEnumDecl)["Color"])
		assert.Equal(t, 2, count(tree, ir.KindEnumConstantDecl))

		bytes := byName(tree, ir.KindFieldDecl)["m_Bytes"]
		require.NotNil(t, bytes)
		assert.Equal(t, ir.TypeConstantArray, bytes.Type.Kind)
	})

	t.Run("Casts", func(t *testing.T) {
		assert.Equal(t, 3, count(tree, ir.KindCStyleCastExpr))

		scale := byName(tree, ir.KindFunctionDecl)["scale"]
		require.NotNil(t, scale)
		assert.Equal(t, ir.LinkageInternal, scale.Linkage)
		assert.Equal(t, ir.StorageStatic, scale.Storage)
	})
}

func TestParseTranslationUnit_Arrays(t *testing.T) {
	tree := parseFixture(t, "c++", "arrays.cpp")
	vars := byName(tree, ir.KindVarDecl)

	tests := []struct {
		name     string
		kind     ir.TypeKind
		spelling string
	}{
		{"values", ir.TypeConstantArray, "int [3]"},
		{"names", ir.TypeConstantArray, "const char *[2]"},
		{"grid", ir.TypeConstantArray, "int [2][3]"},
		{"buffer", ir.TypeIncompleteArray, "int []"},
		{"limits", ir.TypeConstantArray, "const int [2]"},
		{"callback", ir.TypePointer, ""},
		{"table", ir.TypeConstantArray, "const char *[2][3]"},
		{"slots", ir.TypeConstantArray, "char *const [4][2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := vars[tt.name]
			require.NotNil(t, n)
			assert.Equal(t, tt.kind, n.Type.Kind)
			if tt.spelling != "" {
				assert.Equal(t, tt.spelling, n.Type.Spelling)
			}
		})
	}

	assert.Equal(t, ir.TypeFunctionProto, vars["callback"].Type.Pointee.Kind)
	assert.Equal(t, ir.TypeConstantArray, vars["grid"].Type.Element.Kind)
	assert.Equal(t, "const char *[3]", vars["table"].Type.Element.Spelling)
	assert.Equal(t, ir.TypePointer, vars["table"].Type.Element.Element.Kind)
	assert.Equal(t, ir.LinkageInternal, vars["limits"].Linkage)
	assert.Equal(t, ir.LinkageExternal, vars["names"].Linkage)
	assert.Equal(t, ir.StorageExtern, vars["buffer"].Storage)
}

func TestParseTranslationUnit_Namespaces(t *testing.T) {
	tree := parseFixture(t, "c++", "namespaces.cpp")

	engine := byName(tree, ir.KindClassDecl)["Engine"]
	require.NotNil(t, engine)

	counts := all(tree, ir.KindVarDecl, "s_Count")
	require.Len(t, counts, 2)
	assert.Equal(t, engine.ID, counts[1].SemanticParent)
	assert.Equal(t, counts[0].ID, counts[1].Canonical)

	starts := all(tree, ir.KindMethod, "start")
	require.Len(t, starts, 2)
	assert.Equal(t, engine.ID, starts[1].SemanticParent)

	t.Run("Unresolved Qualifier", func(t *testing.T) {
		run := all(tree, ir.KindMethod, "run")
		require.Len(t, run, 1)
		assert.Equal(t, ir.NoNode, run[0].SemanticParent)

		ctor := all(tree, ir.KindConstructor, "Unknown")
		require.Len(t, ctor, 1)
	})
}

func TestParseTranslationUnit_Includes(t *testing.T) {
	tree := parseFixture(t, "c++", "uses_header.cpp")

	files := tree.Files()
	require.Len(t, files, 2, "a header included twice is read once and <vector> is skipped")
	assert.Equal(t, filepath.Join("testdata", "uses_header.cpp"), files[0])
	assert.Equal(t, filepath.Join("testdata", "include", "shapes.h"), files[1])

	points := all(tree, ir.KindStructDecl, "Point")
	require.Len(t, points, 1)
	assert.Equal(t, filepath.Join("testdata", "include", "shapes.h"), points[0].Location.File)

	param := byName(tree, ir.KindParmDecl)["rPoint"]
	require.NotNil(t, param)
	assert.Equal(t, ir.TypeLValueReference, param.Type.Kind)
	assert.True(t, param.Type.Pointee.Const)
}

func TestParseTranslationUnit_C(t *testing.T) {
	tree := parseFixture(t, "c", "limits.c")
	vars := byName(tree, ir.KindVarDecl)

	assert.Equal(t, ir.LinkageExternal, vars["limit"].Linkage, "const does not imply internal linkage in C")
	assert.Equal(t, ir.LinkageInternal, vars["hidden"].Linkage)
	assert.Equal(t, 1, count(tree, ir.KindCStyleCastExpr))
}

func TestParseTranslationUnit_Lambdas(t *testing.T) {
	tree := parseFixture(t, "c++", "lambdas.cpp")
	vars := byName(tree, ir.KindVarDecl)

	t.Run("Locals Stay Automatic", func(t *testing.T) {
		for _, name := range []string{"limit", "base"} {
			n := vars[name]
			require.NotNil(t, n, name)
			assert.Equal(t, ir.LinkageAutomatic, n.Linkage, name)
			assert.Equal(t, ir.StorageNone, n.Storage, name)
			assert.True(t, n.Type.Const, name)
		}
	})

	t.Run("Enclosing Declarations", func(t *testing.T) {
		assert.Equal(t, ir.LinkageInternal, vars["SCALE"].Linkage)
		assert.Equal(t, ir.LinkageExternal, vars["handler"].Linkage)
		assert.Equal(t, vars["handler"].ID, vars["limit"].LexicalParent)

		size := byName(tree, ir.KindFieldDecl)["m_Size"]
		require.NotNil(t, size)
		assert.Equal(t, size.ID, vars["base"].LexicalParent)
	})

	t.Run("Parameters", func(t *testing.T) {
		param := byName(tree, ir.KindParmDecl)["count"]
		require.NotNil(t, param)
		assert.Equal(t, ir.LinkageAutomatic, param.Linkage)
	})

	assert.Equal(t, 1, count(tree, ir.KindCStyleCastExpr))
}

func TestParseTranslationUnit_Casts(t *testing.T) {
	tree := parseFixture(t, "c++", "casts.cpp")

	var lines []int
	var columns []int
	tree.Visit(func(n, _ *ir.Node) ir.VisitResult {
		if n.Kind == ir.KindCStyleCastExpr {
			lines = append(lines, n.Location.Line)
			columns = append(columns, n.Location.Column)
		}
		return ir.Recurse
	})
	require.Equal(t, []int{6, 7, 9, 11}, lines, "parenthesized operands of named types are casts, calls are not")
	assert.Equal(t, 16, columns[1])
	assert.Equal(t, 16, columns[2])

	t.Run("C Record Tags", func(t *testing.T) {
		tree := parseFixture(t, "c", "casts.c")
		var lines []int
		tree.Visit(func(n, _ *ir.Node) ir.VisitResult {
			if n.Kind == ir.KindCStyleCastExpr {
				lines = append(lines, n.Location.Line)
			}
			return ir.Recurse
		})
		assert.Equal(t, []int{8}, lines, "(stat)(path) calls the function")
	})
}

func TestParseTranslationUnit_Errors(t *testing.T) {
	ext, err := NewExtractor("c++")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Malformed", func(t *testing.T) {
		_, err := ext.ParseTranslationUnit(ctx, filepath.Join("testdata", "malformed.cpp"), nil)
		require.Error(t, err)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, filepath.Join("testdata", "malformed.cpp"), perr.File)
		assert.Contains(t, []int{2, 3}, perr.Line)
	})

	t.Run("Missing Include", func(t *testing.T) {
		_, err := ext.ParseTranslationUnit(ctx, filepath.Join("testdata", "missing_include.cpp"), nil)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 1, perr.Line)
		assert.Contains(t, perr.Message, "does_not_exist.h")
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := ext.ParseTranslationUnit(ctx, filepath.Join("testdata", "nope.cpp"), nil)
		require.Error(t, err)
		var perr *ParseError
		assert.False(t, errors.As(err, &perr))
	})

	t.Run("Reusable After Failure", func(t *testing.T) {
		tree, err := ext.ParseTranslationUnit(ctx, filepath.Join("testdata", "arrays.cpp"), nil)
		require.NoError(t, err)
		assert.Greater(t, tree.Len(), 1)
	})
}

func TestParseArgs(t *testing.T) {
	opts := ParseArgs([]string{"-Iinclude", "-I", "third_party", "-x", "c", "-std=c11", "-Wall"})
	assert.Equal(t, []string{"include", "third_party"}, opts.Includes)
	assert.Equal(t, "c", opts.Language)
	assert.Equal(t, "c11", opts.Std)
	assert.Equal(t, []string{"-Wall"}, opts.Unknown)

	opts = ParseArgs([]string{"-xc++", "-I"})
	assert.Equal(t, "c++", opts.Language)
	assert.Equal(t, []string{"-I"}, opts.Unknown)
}
