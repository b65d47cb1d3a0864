package extractor

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"rawncc/internal/ir"
)

// unit is one parsed file of the translation unit.
type unit struct {
	path     string
	src      []byte
	includes map[uint32]string // include path node start byte -> resolved file
}

// scope is the lexical context new nodes are built in. It is passed by value.
type scope struct {
	unit      *unit
	parent    ir.NodeID // lexical parent of new nodes
	function  ir.NodeID // innermost enclosing function, or NoNode
	local     bool      // inside a function body
	anonymous bool      // inside an anonymous namespace
	template  bool
}

// builder lowers tree-sitter syntax trees into an ir.Tree.
type builder struct {
	ctx      context.Context
	ext      *Extractor
	tree     *ir.Tree
	includes []string
	visited  map[string]bool
	err      error

	// scopes maps a scope path to the namespaces and records declared in it by name.
	scopes map[string]map[string][]ir.NodeID
	// canonical maps an entity key to its first declaration.
	canonical map[string]ir.NodeID
	// typeNames remembers what kind of type each declared type name denotes.
	typeNames map[string]ir.TypeKind
}

func newBuilder(ctx context.Context, e *Extractor, tree *ir.Tree, includes []string) *builder {
	return &builder{
		ctx:       ctx,
		ext:       e,
		tree:      tree,
		includes:  includes,
		visited:   make(map[string]bool),
		scopes:    make(map[string]map[string][]ir.NodeID),
		canonical: make(map[string]ir.NodeID),
		typeNames: make(map[string]ir.TypeKind),
	}
}

func (b *builder) rootScope() scope {
	return scope{parent: b.tree.Root().ID, function: ir.NoNode}
}

// file parses one file and lowers it into sc. Included files land in the scope of their
// #include directive.
func (b *builder) file(path string, src []byte, sc scope) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}
	st, err := b.ext.parse(b.ctx, path, src)
	if err != nil {
		return err
	}
	root := st.RootNode()
	resolved, err := b.ext.resolveIncludes(root, path, src, b.includes)
	if err != nil {
		return err
	}

	sc.unit = &unit{path: path, src: src, includes: resolved}
	b.walk(root, sc)
	return b.err
}

func (b *builder) walk(n *sitter.Node, sc scope) {
	if n == nil || b.err != nil {
		return
	}

	switch n.Type() {
	case "preproc_include":
		b.include(n, sc)
	case "preproc_def", "preproc_function_def", "preproc_call", "comment",
		"access_specifier", "friend_declaration", "using_declaration",
		"static_assert_declaration", "namespace_alias_definition",
		"template_parameter_list", "concept_definition":
		// Nothing to declare.
	case "namespace_definition":
		b.namespace(n, sc)
	case "template_declaration":
		sc.template = true
		b.walkChildren(n, sc)
	case "linkage_specification":
		b.walk(n.ChildByFieldName("body"), sc)
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		b.aggregate(n, sc)
	case "declaration":
		b.declaration(n, sc)
	case "field_declaration":
		b.fieldDeclaration(n, sc)
	case "function_definition":
		b.functionDefinition(n, sc)
	case "type_definition":
		b.typeDefinition(n, sc)
	case "alias_declaration":
		b.aliasDeclaration(n, sc)
	case "for_range_loop":
		b.rangeFor(n, sc)
	case "lambda_expression":
		b.lambda(n, sc)
	case "cast_expression":
		b.cast(n, n.ChildByFieldName("value"), sc)
	case "call_expression":
		if b.isTypeCall(n, sc) {
			b.cast(n, n.ChildByFieldName("arguments"), sc)
			return
		}
		b.walkChildren(n, sc)
	default:
		b.walkChildren(n, sc)
	}
}

func (b *builder) walkChildren(n *sitter.Node, sc scope) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.walk(n.NamedChild(i), sc)
	}
}

func (b *builder) include(n *sitter.Node, sc scope) {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	file, ok := sc.unit.includes[pathNode.StartByte()]
	if !ok {
		return
	}
	key := absPath(file)
	if b.visited[key] {
		return
	}
	b.visited[key] = true

	src, err := readSource(file)
	if err != nil {
		b.err = err
		return
	}
	b.tree.AddFile(file)
	if err := b.file(file, src, sc); err != nil && b.err == nil {
		b.err = err
	}
}

func (b *builder) namespace(n *sitter.Node, sc scope) {
	var names []string
	loc := n
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		loc = nameNode
		names = splitNamespace(nameNode.Content(sc.unit.src))
	}
	if len(names) == 0 {
		names = []string{""}
	}

	inner := sc
	for _, name := range names {
		id := b.tree.Add(inner.parent, ir.Node{
			Kind:     ir.KindNamespace,
			Name:     name,
			Location: b.location(sc, loc),
		})
		inner.anonymous = inner.anonymous || name == ""
		node := b.tree.Node(id)
		node.Linkage = ir.LinkageExternal
		if inner.anonymous {
			node.Linkage = ir.LinkageInternal
		}
		b.declareScope(inner.parent, name, id)
		b.redeclare("n", b.scopePath(inner.parent), name, id)
		inner.parent = id
	}
	b.walk(n.ChildByFieldName("body"), inner)
}

var aggregateKinds = map[string]ir.EntityKind{
	"class_specifier":  ir.KindClassDecl,
	"struct_specifier": ir.KindStructDecl,
	"union_specifier":  ir.KindUnionDecl,
	"enum_specifier":   ir.KindEnumDecl,
}

// aggregate declares a class, struct, union or enum specifier. Specifiers that only name a
// type (`struct S *p;`) declare nothing and yield NoNode.
func (b *builder) aggregate(n *sitter.Node, sc scope) ir.NodeID {
	kind, ok := aggregateKinds[n.Type()]
	if !ok {
		return ir.NoNode
	}
	body := n.ChildByFieldName("body")
	if body == nil && !isForwardDeclaration(n) {
		return ir.NoNode
	}

	loc := n
	semantic := sc.parent
	var name string
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		q := splitQualified(nameNode, sc.unit.src)
		name, loc = q.name, q.node
		if q.qualified() {
			semantic = b.resolve(sc, q)
		}
	}

	id := b.tree.Add(sc.parent, ir.Node{
		Kind:     kind,
		Name:     name,
		Location: b.location(sc, loc),
	})
	node := b.tree.Node(id)
	node.SemanticParent = semantic
	node.Linkage = b.linkage(declaration{kind: kind}, semantic, sc)

	if name != "" {
		if kind == ir.KindEnumDecl {
			b.typeNames[name] = ir.TypeEnum
		} else {
			b.typeNames[name] = ir.TypeRecord
		}
		if kind != ir.KindEnumDecl {
			b.declareScope(semantic, name, id)
		}
		b.redeclare("t", b.scopePath(semantic), name, id)
	}

	if body == nil {
		return id
	}
	inner := sc
	inner.parent = id
	inner.function = ir.NoNode
	if kind == ir.KindEnumDecl {
		b.enumerators(body, inner)
	} else {
		b.walkChildren(body, inner)
	}
	return id
}

// isForwardDeclaration reports a body-less specifier that stands alone (`class C;`).
func isForwardDeclaration(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	switch p.Type() {
	case "translation_unit", "declaration_list", "field_declaration_list", "template_declaration",
		"linkage_specification", "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif",
		"compound_statement":
		return true
	case "declaration", "field_declaration":
		return p.ChildByFieldName("declarator") == nil
	}
	return false
}

func (b *builder) enumerators(body *sitter.Node, sc scope) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		e := body.NamedChild(i)
		if e.Type() != "enumerator" {
			b.walk(e, sc)
			continue
		}
		nameNode := e.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		id := b.tree.Add(sc.parent, ir.Node{
			Kind:     ir.KindEnumConstantDecl,
			Name:     nameNode.Content(sc.unit.src),
			Location: b.location(sc, nameNode),
		})
		inner := sc
		inner.parent = id
		b.walk(e.ChildByFieldName("value"), inner)
	}
}

// specifier declares the aggregate a type specifier defines, if any.
func (b *builder) specifier(typeNode *sitter.Node, sc scope) {
	if typeNode == nil {
		return
	}
	if _, ok := aggregateKinds[typeNode.Type()]; ok {
		b.aggregate(typeNode, sc)
	}
}

func (b *builder) declaration(n *sitter.Node, sc scope) {
	typeNode := n.ChildByFieldName("type")
	b.specifier(typeNode, sc)
	specs := declSpecifiers(n)
	base := b.baseType(typeNode, specs, sc)

	ctx := declContextVariable
	if p := b.tree.Node(sc.parent); p != nil && p.Kind.IsAggregate() {
		ctx = declContextField
	}
	for _, d := range fieldChildren(n, "declarator") {
		b.declarator(d, base, specs, ctx, sc)
	}
}

func (b *builder) fieldDeclaration(n *sitter.Node, sc scope) {
	typeNode := n.ChildByFieldName("type")
	b.specifier(typeNode, sc)
	specs := declSpecifiers(n)
	base := b.baseType(typeNode, specs, sc)

	last := sc.parent
	for _, d := range fieldChildren(n, "declarator") {
		if id := b.declarator(d, base, specs, declContextField, sc); id != ir.NoNode {
			last = id
		}
	}
	if value := n.ChildByFieldName("default_value"); value != nil {
		inner := sc
		inner.parent = last
		b.walk(value, inner)
	}
}

// declarator builds the variable, field or function one declarator introduces.
func (b *builder) declarator(d *sitter.Node, base *ir.Type, specs specifiers, ctx declContext, sc scope) ir.NodeID {
	s := b.shape(d, base, specs, sc)
	if s.name == nil {
		b.walk(s.value, sc)
		return ir.NoNode
	}
	if s.fn != nil {
		return b.function(s, specs, nil, sc)
	}
	return b.variable(s, specs, ctx, sc)
}

func (b *builder) functionDefinition(n *sitter.Node, sc scope) {
	typeNode := n.ChildByFieldName("type")
	specs := declSpecifiers(n)
	base := b.baseType(typeNode, specs, sc)

	s := b.shape(n.ChildByFieldName("declarator"), base, specs, sc)
	if s.name == nil || s.fn == nil {
		b.walk(n.ChildByFieldName("body"), sc)
		return
	}
	b.function(s, specs, n, sc)
}

func (b *builder) typeDefinition(n *sitter.Node, sc scope) {
	typeNode := n.ChildByFieldName("type")
	b.specifier(typeNode, sc)
	specs := declSpecifiers(n)
	base := b.baseType(typeNode, specs, sc)

	for _, d := range fieldChildren(n, "declarator") {
		s := b.shape(d, base, specs, sc)
		if s.name == nil {
			continue
		}
		name := s.name.Content(sc.unit.src)
		b.tree.Add(sc.parent, ir.Node{
			Kind:     ir.KindTypedefDecl,
			Name:     name,
			Type:     s.typ,
			Location: b.location(sc, s.name),
		})
		b.typeNames[name] = ir.TypeTypedef
	}
}

func (b *builder) aliasDeclaration(n *sitter.Node, sc scope) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(sc.unit.src)
	b.tree.Add(sc.parent, ir.Node{
		Kind:     ir.KindTypeAliasDecl,
		Name:     name,
		Location: b.location(sc, nameNode),
	})
	b.typeNames[name] = ir.TypeTypedef
}

func (b *builder) rangeFor(n *sitter.Node, sc scope) {
	b.walk(n.ChildByFieldName("initializer"), sc)

	typeNode := n.ChildByFieldName("type")
	specs := declSpecifiers(n)
	base := b.baseType(typeNode, specs, sc)
	if d := n.ChildByFieldName("declarator"); d != nil {
		b.declarator(d, base, specs, declContextVariable, sc)
	}

	b.walk(n.ChildByFieldName("right"), sc)
	b.walk(n.ChildByFieldName("body"), sc)
}

// lambda lowers a lambda's parameters and body as function-local code, wherever the
// lambda appears. The closure object itself declares nothing.
func (b *builder) lambda(n *sitter.Node, sc scope) {
	inner := sc
	inner.local = true
	b.walk(n.ChildByFieldName("captures"), inner)
	if d := n.ChildByFieldName("declarator"); d != nil {
		b.parameters(d.ChildByFieldName("parameters"), inner)
	}
	b.walk(n.ChildByFieldName("body"), inner)
}

func (b *builder) cast(n, value *sitter.Node, sc scope) {
	id := b.tree.Add(sc.parent, ir.Node{
		Kind:     ir.KindCStyleCastExpr,
		Location: b.location(sc, n),
	})
	inner := sc
	inner.parent = id
	b.walk(value, inner)
}

// isTypeCall reports whether a call is a C-style cast with a parenthesized operand.
// The grammar reads `(Length)(ratio)` as a call of the parenthesized name `Length`.
// C record tags are not type names, so only typedefs count there.
func (b *builder) isTypeCall(n *sitter.Node, sc scope) bool {
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Type() != "parenthesized_expression" || fn.NamedChildCount() != 1 {
		return false
	}
	inner := fn.NamedChild(0)
	switch inner.Type() {
	case "primitive_type", "sized_type_specifier":
		return true
	case "identifier", "type_identifier":
		k, ok := b.typeNames[inner.Content(sc.unit.src)]
		if !ok {
			return false
		}
		return k == ir.TypeTypedef || b.ext.langName != "c"
	}
	return false
}

func (b *builder) location(sc scope, n *sitter.Node) ir.Location {
	p := n.StartPoint()
	return ir.Location{
		File:   sc.unit.path,
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}
}

// fieldChildren returns every child of n stored under field, in source order.
func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	cursor := sitter.NewTreeCursor(n)
	defer cursor.Close()
	if !cursor.GoToFirstChild() {
		return nil
	}
	for {
		if cursor.CurrentFieldName() == field {
			out = append(out, cursor.CurrentNode())
		}
		if !cursor.GoToNextSibling() {
			break
		}
	}
	return out
}
