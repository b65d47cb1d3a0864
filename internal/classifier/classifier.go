// Package classifier turns parser-side declaration nodes into descriptors.
//
// Every function here is pure: the result depends only on the node, its parent and the
// nodes reachable through the Lookup. Asking for a descriptor of the wrong node kind is a
// programming error and panics.
package classifier

import (
	"fmt"
	"strings"

	"rawncc/internal/descriptor"
	"rawncc/internal/ir"
)

func IsFunction(k ir.EntityKind) bool  { return k.IsFunction() }
func IsAggregate(k ir.EntityKind) bool { return k.IsAggregate() }
func IsVariable(k ir.EntityKind) bool  { return k.IsVariable() }
func IsCast(k ir.EntityKind) bool      { return k == ir.KindCStyleCastExpr }

// Variable classifies a VarDecl or FieldDecl. parent is the node's immediate lexical parent
// and may be nil.
func Variable(l ir.Lookup, n, parent *ir.Node) descriptor.Variable {
	if !IsVariable(n.Kind) {
		panic(fmt.Sprintf("classifier: %s is not a variable or field", n.Kind))
	}

	category := Category(n.Type)
	return descriptor.Variable{
		Name:     n.Name,
		Category: category,
		IsMember: isMember(l, n, parent),
		IsConst:  isConst(n.Type, category),
		IsStatic: isStatic(l, n),
		Location: location(n),
	}
}

// Function classifies a function, method, constructor or destructor.
func Function(n *ir.Node) descriptor.Function {
	role, ok := functionRoles[n.Kind]
	if !ok {
		panic(fmt.Sprintf("classifier: %s is not a function", n.Kind))
	}
	return descriptor.Function{
		Name:     n.Name,
		Role:     role,
		Location: location(n),
	}
}

// Aggregate classifies a class, struct, enum or union declaration.
func Aggregate(n *ir.Node) descriptor.Aggregate {
	kind, ok := aggregateKinds[n.Kind]
	if !ok {
		panic(fmt.Sprintf("classifier: %s is not an aggregate", n.Kind))
	}
	return descriptor.Aggregate{
		Name:     n.Name,
		Kind:     kind,
		Location: location(n),
	}
}

// Cast classifies a C-style cast expression.
func Cast(n *ir.Node) descriptor.CastSite {
	if !IsCast(n.Kind) {
		panic(fmt.Sprintf("classifier: %s is not a C-style cast", n.Kind))
	}
	return descriptor.CastSite{Location: location(n)}
}

var functionRoles = map[ir.EntityKind]descriptor.FunctionRole{
	ir.KindFunctionDecl: descriptor.FreeFunction,
	ir.KindMethod:       descriptor.Method,
	ir.KindConstructor:  descriptor.Constructor,
	ir.KindDestructor:   descriptor.Destructor,
}

var aggregateKinds = map[ir.EntityKind]descriptor.AggregateKind{
	ir.KindClassDecl:  descriptor.Class,
	ir.KindStructDecl: descriptor.Struct,
	ir.KindEnumDecl:   descriptor.Enum,
	ir.KindUnionDecl:  descriptor.Union,
}

// Category maps a declared type to its value category. A nil type is a Value.
func Category(t *ir.Type) descriptor.Category {
	if t == nil {
		return descriptor.Value
	}
	switch t.Kind {
	case ir.TypePointer, ir.TypeBlockPointer, ir.TypeMemberPointer:
		return descriptor.Pointer
	case ir.TypeLValueReference, ir.TypeRValueReference:
		return descriptor.Reference
	case ir.TypeConstantArray, ir.TypeIncompleteArray, ir.TypeVariableArray, ir.TypeDependentSizedArray:
		return descriptor.Array
	default:
		return descriptor.Value
	}
}

// isConst looks at what the name refers to: the value itself, the pointee, or the array
// elements. A pointer or reference being const itself does not count.
func isConst(t *ir.Type, category descriptor.Category) bool {
	if t == nil {
		return false
	}
	switch category {
	case descriptor.Pointer, descriptor.Reference:
		p := t.PointeeType()
		return p != nil && p.Const
	case descriptor.Array:
		// Approximation: element constness is read off the spelling, so any "const" in the
		// rendered type counts, including "const char *[2]" whose elements are mutable
		// pointers.
		return strings.Contains(t.Spelling, "const")
	default:
		return t.Const
	}
}

// isMember also consults the semantic parent so that an out-of-line definition such as
// `const int C::V = 1;` counts as a member even though it is written at namespace scope.
func isMember(l ir.Lookup, n, parent *ir.Node) bool {
	if n.Kind == ir.KindFieldDecl {
		return true
	}
	if parent != nil && parent.Kind.IsRecord() {
		return true
	}
	sp := l.Node(n.SemanticParent)
	return sp != nil && sp.Kind.IsRecord()
}

func isStatic(l ir.Lookup, n *ir.Node) bool {
	canonical := l.Node(n.Canonical)
	if canonical == nil {
		canonical = n
	}
	if canonical.Storage == ir.StorageStatic {
		return true
	}
	return canonical.Linkage == ir.LinkageInternal
}

func location(n *ir.Node) descriptor.Location {
	return descriptor.Location{
		File:   n.Location.File,
		Line:   n.Location.Line,
		Column: n.Location.Column,
	}
}
