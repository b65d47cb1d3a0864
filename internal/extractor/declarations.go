package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"rawncc/internal/ir"
)

// declContext says what a variable declarator declares.
type declContext int

const (
	declContextVariable declContext = iota
	declContextField
	declContextParameter
)

func (b *builder) variable(s shape, specs specifiers, ctx declContext, sc scope) ir.NodeID {
	kind := ir.KindVarDecl
	switch ctx {
	case declContextField:
		// Static data members are variables; everything else in a class body is a field.
		if specs.storage != ir.StorageStatic {
			kind = ir.KindFieldDecl
		}
	case declContextParameter:
		kind = ir.KindParmDecl
	}

	q := splitQualified(s.name, sc.unit.src)
	semantic := sc.parent
	if q.qualified() {
		semantic = b.resolve(sc, q)
	}

	id := b.tree.Add(sc.parent, ir.Node{
		Kind:     kind,
		Name:     q.name,
		Type:     s.typ,
		Location: b.location(sc, q.node),
		Storage:  specs.storage,
	})
	node := b.tree.Node(id)
	node.SemanticParent = semantic
	node.Linkage = b.linkage(declaration{kind: kind, storage: specs.storage, typ: s.typ, volatile: specs.volatile}, semantic, sc)

	if kind == ir.KindVarDecl && (!sc.local || specs.storage == ir.StorageExtern) {
		if first := b.redeclare("v", b.qualifiedPath(semantic, q), q.name, id); first != id {
			node.Linkage = b.tree.Node(first).Linkage
		}
	}

	if s.value != nil {
		inner := sc
		inner.parent = id
		b.walk(s.value, inner)
	}
	return id
}

// function declares a function, method, constructor or destructor. def is the enclosing
// function_definition, or nil for a prototype.
func (b *builder) function(s shape, specs specifiers, def *sitter.Node, sc scope) ir.NodeID {
	q := splitQualified(s.name, sc.unit.src)
	semantic := sc.parent
	if q.qualified() {
		semantic = b.resolve(sc, q)
	}
	kind := b.functionKind(q, semantic)

	id := b.tree.Add(sc.parent, ir.Node{
		Kind:     kind,
		Name:     q.name,
		Type:     s.typ,
		Location: b.location(sc, q.node),
		Storage:  specs.storage,
	})
	node := b.tree.Node(id)
	node.SemanticParent = semantic
	node.Linkage = b.linkage(declaration{kind: kind, storage: specs.storage}, semantic, sc)

	params := parameterList(s.fn)
	if first := b.redeclare("f", b.qualifiedPath(semantic, q), q.name+b.signature(params, sc), id); first != id {
		node.Linkage = b.tree.Node(first).Linkage
	}

	inner := sc
	inner.parent = id
	inner.function = id
	inner.local = true
	b.parameters(params, inner)

	if def != nil {
		for i := 0; i < int(def.NamedChildCount()); i++ {
			if c := def.NamedChild(i); c.Type() == "field_initializer_list" {
				b.walk(c, inner)
			}
		}
		b.walk(def.ChildByFieldName("body"), inner)
	}
	return id
}

// functionKind picks the entity kind from where the function lives and how it is spelled.
// A qualifier that does not resolve (the class is declared in a header that was not found)
// still marks a member: `X::X` is a constructor, `X::~X` a destructor, `X::f` a method.
func (b *builder) functionKind(q qualifiedName, semantic ir.NodeID) ir.EntityKind {
	destructor := q.node != nil && q.node.Type() == "destructor_name"

	owner := ""
	switch p := b.tree.Node(semantic); {
	case p != nil && p.Kind.IsAggregate():
		owner = p.Name
	case semantic == ir.NoNode && len(q.scopes) > 0:
		owner = q.scopes[len(q.scopes)-1]
	default:
		return ir.KindFunctionDecl
	}

	switch {
	case destructor:
		return ir.KindDestructor
	case owner != "" && q.name == owner:
		return ir.KindConstructor
	default:
		return ir.KindMethod
	}
}

func parameterList(fn *sitter.Node) *sitter.Node {
	if fn == nil {
		return nil
	}
	if fn.Type() == "operator_cast" {
		if d := fn.ChildByFieldName("declarator"); d != nil {
			return d.ChildByFieldName("parameters")
		}
		return nil
	}
	return fn.ChildByFieldName("parameters")
}

func (b *builder) parameters(params *sitter.Node, sc scope) {
	if params == nil {
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "parameter_declaration", "optional_parameter_declaration":
		default:
			continue
		}

		typeNode := p.ChildByFieldName("type")
		specs := declSpecifiers(p)
		base := b.baseType(typeNode, specs, sc)

		owner := sc.parent
		if d := p.ChildByFieldName("declarator"); d != nil {
			if id := b.declarator(d, base, specs, declContextParameter, sc); id != ir.NoNode {
				owner = id
			}
		}
		if value := p.ChildByFieldName("default_value"); value != nil {
			inner := sc
			inner.parent = owner
			b.walk(value, inner)
		}
	}
}

// signature renders the parameter types of a function so that overloads get distinct keys.
func (b *builder) signature(params *sitter.Node, sc scope) string {
	if params == nil {
		return "()"
	}
	var parts []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "parameter_declaration", "optional_parameter_declaration":
			specs := declSpecifiers(p)
			t := b.baseType(p.ChildByFieldName("type"), specs, sc)
			if d := p.ChildByFieldName("declarator"); d != nil {
				if s := b.shape(d, t, specs, sc); s.typ != nil {
					t = s.typ
				} else {
					t = &ir.Type{Spelling: normalize(p.Content(sc.unit.src))}
				}
			}
			parts = append(parts, spellingOf(t))
		case "variadic_parameter_declaration", "variadic_parameter":
			parts = append(parts, "...")
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}
