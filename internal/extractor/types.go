package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"rawncc/internal/ir"
)

// specifiers are the storage class and qualifiers written next to a declaration's type.
type specifiers struct {
	storage   ir.StorageClass
	isConst   bool
	constexpr bool
	volatile  bool
}

// declSpecifiers reads the specifiers that are direct children of a declaration-like node.
func declSpecifiers(n *sitter.Node) specifiers {
	var s specifiers
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "type_qualifier", "storage_class_specifier":
			applySpecifier(&s, c)
		case "constexpr", "const", "volatile", "static", "extern", "register":
			applyKeyword(&s, c.Type())
		}
	}
	return s
}

func applySpecifier(s *specifiers, n *sitter.Node) {
	if n.ChildCount() > 0 {
		applyKeyword(s, n.Child(0).Type())
	}
}

func applyKeyword(s *specifiers, kw string) {
	switch kw {
	case "const":
		s.isConst = true
	case "constexpr", "constinit", "consteval":
		s.constexpr = true
	case "volatile":
		s.volatile = true
	case "static":
		s.storage = ir.StorageStatic
	case "extern":
		s.storage = ir.StorageExtern
	case "register":
		s.storage = ir.StorageRegister
	}
}

// baseType is the type named by a specifier before any declarator is applied.
func (b *builder) baseType(typeNode *sitter.Node, specs specifiers, sc scope) *ir.Type {
	if typeNode == nil {
		return nil
	}
	src := sc.unit.src
	text := normalize(typeNode.Content(src))
	t := &ir.Type{Const: specs.isConst}

	switch typeNode.Type() {
	case "primitive_type", "sized_type_specifier":
		t.Kind = ir.TypeBuiltin
	case "class_specifier", "struct_specifier", "union_specifier":
		t.Kind = ir.TypeRecord
		text = specifierSpelling(typeNode, src)
	case "enum_specifier":
		t.Kind = ir.TypeEnum
		text = specifierSpelling(typeNode, src)
	case "placeholder_type_specifier", "auto":
		t.Kind = ir.TypeAuto
	case "type_identifier":
		if k, ok := b.typeNames[text]; ok {
			t.Kind = k
		} else {
			t.Kind = ir.TypeUnexposed
		}
	case "qualified_identifier", "template_type", "dependent_type":
		t.Kind = ir.TypeElaborated
	default:
		t.Kind = ir.TypeUnexposed
	}
	if text == "auto" || text == "decltype(auto)" {
		t.Kind = ir.TypeAuto
	}

	t.Spelling = text
	if t.Const {
		t.Spelling = "const " + text
	}
	return t
}

func specifierSpelling(n *sitter.Node, src []byte) string {
	keyword := strings.TrimSuffix(n.Type(), "_specifier")
	if name := n.ChildByFieldName("name"); name != nil {
		return keyword + " " + normalize(name.Content(src))
	}
	return keyword + " (anonymous)"
}

// shape is a declarator resolved against its base type.
type shape struct {
	typ   *ir.Type
	name  *sitter.Node // declared name, nil for abstract or unsupported declarators
	fn    *sitter.Node // function declarator, when the name is a function
	value *sitter.Node // initializer
}

// shape unwraps a declarator chain outside-in, building the declared type as it goes.
// `int *a[3]` is an array of three pointers; `void (*fp)(int)` is a pointer to function.
func (b *builder) shape(d *sitter.Node, base *ir.Type, specs specifiers, sc scope) shape {
	var s shape
	t := base

	for d != nil {
		switch d.Type() {
		case "init_declarator":
			s.value = d.ChildByFieldName("value")
			d = d.ChildByFieldName("declarator")
		case "attributed_declarator", "parenthesized_declarator":
			d = d.NamedChild(0)
		case "pointer_declarator":
			t = pointerTo(t, hasQualifier(d, "const"))
			d = d.ChildByFieldName("declarator")
		case "reference_declarator":
			t = referenceTo(t, d.ChildCount() > 0 && d.Child(0).Type() == "&&")
			d = d.NamedChild(0)
		case "array_declarator":
			t = b.arrayOf(t, d.ChildByFieldName("size"), sc)
			d = d.ChildByFieldName("declarator")
		case "function_declarator":
			inner := d.ChildByFieldName("declarator")
			if isName(inner) {
				s.typ, s.name, s.fn = t, inner, d
				return s
			}
			t = &ir.Type{Kind: ir.TypeFunctionProto, Pointee: t, Spelling: spellingOf(t) + " ()"}
			d = inner
		case "operator_cast":
			s.typ, s.name, s.fn = t, d, d
			return s
		default:
			if isName(d) {
				if specs.constexpr {
					t = constObject(t)
				}
				s.typ, s.name = t, d
			}
			return s
		}
	}
	return s
}

func isName(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "identifier", "field_identifier", "qualified_identifier", "destructor_name",
		"operator_name", "template_function", "template_method", "type_identifier":
		return true
	}
	return false
}

func hasQualifier(n *sitter.Node, qualifier string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "type_qualifier" && c.ChildCount() > 0 && c.Child(0).Type() == qualifier {
			return true
		}
	}
	return false
}

func spellingOf(t *ir.Type) string {
	if t == nil {
		return "int"
	}
	return t.Spelling
}

func pointerTo(t *ir.Type, isConst bool) *ir.Type {
	spelling := spellingOf(t) + " *"
	if t != nil && (t.Kind == ir.TypePointer || isArray(t.Kind)) {
		spelling = spellingOf(t) + "*"
	}
	if isConst {
		spelling += "const"
	}
	return &ir.Type{Kind: ir.TypePointer, Const: isConst, Pointee: t, Spelling: spelling}
}

func referenceTo(t *ir.Type, rvalue bool) *ir.Type {
	if rvalue {
		return &ir.Type{Kind: ir.TypeRValueReference, Pointee: t, Spelling: spellingOf(t) + " &&"}
	}
	return &ir.Type{Kind: ir.TypeLValueReference, Pointee: t, Spelling: spellingOf(t) + " &"}
}

// arrayOf wraps t in one array dimension. Dimensions are applied outermost first, so the
// new dimension is spelled before any existing one: `int a[2][3]` is "int [2][3]".
func (b *builder) arrayOf(t *ir.Type, size *sitter.Node, sc scope) *ir.Type {
	kind := ir.TypeConstantArray
	dim := ""
	switch {
	case size == nil:
		kind = ir.TypeIncompleteArray
	case size.Type() == "number_literal":
		dim = size.Content(sc.unit.src)
	case sc.template:
		kind = ir.TypeDependentSizedArray
		dim = normalize(size.Content(sc.unit.src))
	case sc.local && b.ext.langName == "c":
		kind = ir.TypeVariableArray
		dim = "*"
	default:
		dim = normalize(size.Content(sc.unit.src))
	}

	elem := spellingOf(t)
	var spelling string
	switch {
	case t != nil && isArray(t.Kind) && strings.Contains(elem, "["):
		// The new dimension goes before the first existing one, which follows a space
		// ("int [3]") or a pointer star ("char *[3]").
		idx := strings.Index(elem, "[")
		base := strings.TrimRight(elem[:idx], " ")
		if strings.HasSuffix(base, "*") {
			spelling = base + "[" + dim + "]" + elem[idx:]
		} else {
			spelling = base + " [" + dim + "]" + elem[idx:]
		}
	case t != nil && (t.Kind == ir.TypePointer || t.Kind == ir.TypeLValueReference):
		spelling = elem + "[" + dim + "]"
	default:
		spelling = elem + " [" + dim + "]"
	}
	return &ir.Type{Kind: kind, Element: t, Spelling: spelling}
}

func isArray(k ir.TypeKind) bool {
	switch k {
	case ir.TypeConstantArray, ir.TypeIncompleteArray, ir.TypeVariableArray, ir.TypeDependentSizedArray:
		return true
	}
	return false
}

// constObject applies a constexpr specifier: the declared object itself becomes const.
// For arrays that means the elements.
func constObject(t *ir.Type) *ir.Type {
	if t == nil {
		return nil
	}
	c := *t
	switch {
	case t.Kind == ir.TypeLValueReference || t.Kind == ir.TypeRValueReference:
		return t
	case t.Kind == ir.TypePointer:
		if !c.Const {
			c.Const = true
			c.Spelling += "const"
		}
	case isArray(t.Kind):
		c.Element = constObject(t.Element)
		if !strings.HasPrefix(c.Spelling, "const ") {
			c.Spelling = "const " + c.Spelling
		}
	default:
		if !c.Const {
			c.Const = true
			c.Spelling = "const " + c.Spelling
		}
	}
	return &c
}

// isConstObject reports whether a variable of type t is itself const-qualified.
func isConstObject(t *ir.Type) bool {
	if t == nil {
		return false
	}
	if isArray(t.Kind) {
		return isConstObject(t.Element)
	}
	switch t.Kind {
	case ir.TypeLValueReference, ir.TypeRValueReference:
		return false
	}
	return t.Const
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
