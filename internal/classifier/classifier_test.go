package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rawncc/internal/descriptor"
	"rawncc/internal/ir"
)

var (
	constInt = &ir.Type{Kind: ir.TypeBuiltin, Const: true, Spelling: "const int"}
	plainInt = &ir.Type{Kind: ir.TypeBuiltin, Spelling: "int"}
)

func TestCategory(t *testing.T) {
	tests := []struct {
		kind ir.TypeKind
		want descriptor.Category
	}{
		{ir.TypeBuiltin, descriptor.Value},
		{ir.TypeRecord, descriptor.Value},
		{ir.TypeTypedef, descriptor.Value},
		{ir.TypeAuto, descriptor.Value},
		{ir.TypePointer, descriptor.Pointer},
		{ir.TypeBlockPointer, descriptor.Pointer},
		{ir.TypeMemberPointer, descriptor.Pointer},
		{ir.TypeLValueReference, descriptor.Reference},
		{ir.TypeRValueReference, descriptor.Reference},
		{ir.TypeConstantArray, descriptor.Array},
		{ir.TypeIncompleteArray, descriptor.Array},
		{ir.TypeVariableArray, descriptor.Array},
		{ir.TypeDependentSizedArray, descriptor.Array},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Category(&ir.Type{Kind: tt.kind}))
		})
	}
	assert.Equal(t, descriptor.Value, Category(nil))
}

func TestVariable(t *testing.T) {
	tree := ir.NewTree("a.cpp")
	class := tree.Add(0, ir.Node{Kind: ir.KindClassDecl, Name: "C"})
	field := tree.Add(class, ir.Node{
		Kind: ir.KindFieldDecl, Name: "m_pData",
		Type: &ir.Type{Kind: ir.TypePointer, Const: true, Pointee: plainInt, Spelling: "int *const"},
	})
	decl := tree.Add(class, ir.Node{Kind: ir.KindVarDecl, Name: "VALUE", Type: constInt, Storage: ir.StorageStatic, Linkage: ir.LinkageExternal})
	def := tree.Add(0, ir.Node{Kind: ir.KindVarDecl, Name: "VALUE", Type: constInt, Linkage: ir.LinkageExternal})
	tree.Node(def).SemanticParent = class
	tree.Node(def).Canonical = decl
	global := tree.Add(0, ir.Node{Kind: ir.KindVarDecl, Name: "limit", Type: constInt, Linkage: ir.LinkageInternal})
	ref := tree.Add(0, ir.Node{
		Kind: ir.KindVarDecl, Name: "rLimit", Linkage: ir.LinkageExternal,
		Type: &ir.Type{Kind: ir.TypeLValueReference, Pointee: constInt, Spelling: "const int &"},
	})
	tree.Node(ref).Location = ir.Location{File: "a.cpp", Line: 7, Column: 12}

	t.Run("Field", func(t *testing.T) {
		n := tree.Node(field)
		v := Variable(tree, n, tree.Node(class))
		assert.Equal(t, descriptor.Pointer, v.Category)
		assert.True(t, v.IsMember)
		assert.False(t, v.IsConst, "a const pointer to mutable data is not const")
		assert.False(t, v.IsStatic)
	})

	t.Run("Out Of Line Definition", func(t *testing.T) {
		v := Variable(tree, tree.Node(def), tree.Root())
		assert.True(t, v.IsMember, "semantic parent is the class")
		assert.True(t, v.IsConst)
		assert.True(t, v.IsStatic, "storage class comes from the canonical declaration")
	})

	t.Run("Internal Linkage", func(t *testing.T) {
		v := Variable(tree, tree.Node(global), tree.Root())
		assert.Equal(t, descriptor.Variable{Name: "limit", Category: descriptor.Value, IsConst: true, IsStatic: true}, v)
	})

	t.Run("Reference", func(t *testing.T) {
		v := Variable(tree, tree.Node(ref), nil)
		assert.Equal(t, descriptor.Variable{
			Name:     "rLimit",
			Category: descriptor.Reference,
			IsConst:  true,
			Location: descriptor.Location{File: "a.cpp", Line: 7, Column: 12},
		}, v)
	})

	t.Run("Deterministic", func(t *testing.T) {
		n := tree.Node(def)
		assert.Equal(t, Variable(tree, n, tree.Root()), Variable(tree, n, tree.Root()))
	})
}

func TestVariable_ArrayConstApproximation(t *testing.T) {
	tree := ir.NewTree("a.cpp")
	arrays := map[string]*ir.Type{
		"const int [3]":   {Kind: ir.TypeConstantArray, Element: constInt, Spelling: "const int [3]"},
		"int [3]":         {Kind: ir.TypeConstantArray, Element: plainInt, Spelling: "int [3]"},
		"const char *[2]": {Kind: ir.TypeConstantArray, Spelling: "const char *[2]"},
	}
	want := map[string]bool{"const int [3]": true, "int [3]": false, "const char *[2]": true}

	for spelling, typ := range arrays {
		id := tree.Add(0, ir.Node{Kind: ir.KindVarDecl, Name: "values", Type: typ})
		v := Variable(tree, tree.Node(id), tree.Root())
		assert.Equal(t, descriptor.Array, v.Category, spelling)
		assert.Equal(t, want[spelling], v.IsConst, spelling)
	}
}

func TestFunctionAndAggregate(t *testing.T) {
	roles := map[ir.EntityKind]descriptor.FunctionRole{
		ir.KindFunctionDecl: descriptor.FreeFunction,
		ir.KindMethod:       descriptor.Method,
		ir.KindConstructor:  descriptor.Constructor,
		ir.KindDestructor:   descriptor.Destructor,
	}
	for kind, role := range roles {
		f := Function(&ir.Node{Kind: kind, Name: "f"})
		assert.Equal(t, role, f.Role, kind.String())
		assert.Equal(t, "f", f.Name)
	}

	kinds := map[ir.EntityKind]descriptor.AggregateKind{
		ir.KindClassDecl:  descriptor.Class,
		ir.KindStructDecl: descriptor.Struct,
		ir.KindEnumDecl:   descriptor.Enum,
		ir.KindUnionDecl:  descriptor.Union,
	}
	for kind, want := range kinds {
		assert.Equal(t, want, Aggregate(&ir.Node{Kind: kind}).Kind, kind.String())
	}

	loc := ir.Location{File: "a.cpp", Line: 3, Column: 9}
	assert.Equal(t, descriptor.CastSite{Location: descriptor.Location{File: "a.cpp", Line: 3, Column: 9}},
		Cast(&ir.Node{Kind: ir.KindCStyleCastExpr, Location: loc}))
}

func TestPreconditions(t *testing.T) {
	param := &ir.Node{Kind: ir.KindParmDecl, Name: "p"}
	tree := ir.NewTree("a.cpp")

	assert.Panics(t, func() { Variable(tree, param, nil) })
	assert.Panics(t, func() { Function(param) })
	assert.Panics(t, func() { Aggregate(param) })
	assert.Panics(t, func() { Cast(param) })
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsFunction(ir.KindDestructor))
	assert.True(t, IsAggregate(ir.KindEnumDecl))
	assert.True(t, IsVariable(ir.KindFieldDecl))
	assert.False(t, IsVariable(ir.KindParmDecl))
	assert.True(t, IsCast(ir.KindCStyleCastExpr))
	assert.False(t, IsCast(ir.KindVarDecl))
}
