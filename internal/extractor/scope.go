package extractor

import (
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"rawncc/internal/ir"
)

const anonymousName = "(anonymous)"

// qualifiedName is a possibly qualified declarator name split into its parts.
type qualifiedName struct {
	name   string
	node   *sitter.Node // the final, unqualified component
	scopes []string     // qualifier components, outermost first
	global bool         // leading ::
}

func (q qualifiedName) qualified() bool {
	return q.global || len(q.scopes) > 0
}

func splitQualified(n *sitter.Node, src []byte) qualifiedName {
	var q qualifiedName
	for n != nil && n.Type() == "qualified_identifier" {
		if s := n.ChildByFieldName("scope"); s != nil {
			q.scopes = append(q.scopes, scopeName(s, src))
		} else if len(q.scopes) == 0 {
			q.global = true
		}
		n = n.ChildByFieldName("name")
	}
	q.node = n
	if n == nil {
		return q
	}

	switch n.Type() {
	case "template_function", "template_method", "template_type":
		if name := n.ChildByFieldName("name"); name != nil {
			q.name = name.Content(src)
		}
	case "destructor_name":
		q.name = strings.ReplaceAll(normalize(n.Content(src)), " ", "")
	case "operator_cast":
		q.name = "operator"
		if t := n.ChildByFieldName("type"); t != nil {
			q.name += " " + normalize(t.Content(src))
		}
	default:
		q.name = normalize(n.Content(src))
	}
	return q
}

func scopeName(n *sitter.Node, src []byte) string {
	if n.Type() == "template_type" {
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	s := normalize(n.Content(src))
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[:i]
	}
	return s
}

// splitNamespace splits a nested namespace name (`a::inline b`) into its components.
func splitNamespace(text string) []string {
	var names []string
	for _, part := range strings.Split(text, "::") {
		part = strings.TrimSpace(part)
		part = strings.TrimSpace(strings.TrimPrefix(part, "inline "))
		names = append(names, part)
	}
	return names
}

// scopePath renders the semantic path of a scope, e.g. "outer::(anonymous)::Widget".
// The translation unit is the empty path.
func (b *builder) scopePath(id ir.NodeID) string {
	var parts []string
	for n := b.tree.Node(id); n != nil && n.Kind != ir.KindTranslationUnit; n = b.tree.Node(n.SemanticParent) {
		name := n.Name
		if name == "" {
			name = anonymousName
		}
		parts = append(parts, name)
	}
	slices.Reverse(parts)
	return strings.Join(parts, "::")
}

// qualifiedPath is the scope path of a declaration. Unresolved qualifiers keep their
// spelling so that repeated out-of-line definitions still match each other.
func (b *builder) qualifiedPath(semantic ir.NodeID, q qualifiedName) string {
	if semantic == ir.NoNode {
		return "?" + strings.Join(q.scopes, "::")
	}
	return b.scopePath(semantic)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "::" + name
}

// declareScope makes a namespace or record findable by name from its enclosing scope.
func (b *builder) declareScope(parent ir.NodeID, name string, id ir.NodeID) {
	if name == "" {
		name = anonymousName
	}
	path := b.scopePath(parent)
	if b.scopes[path] == nil {
		b.scopes[path] = make(map[string][]ir.NodeID)
	}
	b.scopes[path][name] = append(b.scopes[path][name], id)
}

// lookup finds a namespace or record called name declared directly in scope, looking
// through anonymous namespaces.
func (b *builder) lookup(scope ir.NodeID, name string) ir.NodeID {
	path := b.scopePath(scope)
	for _, p := range []string{path, joinPath(path, anonymousName)} {
		if ids := b.scopes[p][name]; len(ids) > 0 {
			return ids[0]
		}
	}
	return ir.NoNode
}

// resolve finds the scope a qualified name refers to. The first qualifier is looked up from
// the innermost enclosing scope outwards; the rest are looked up inside it.
func (b *builder) resolve(sc scope, q qualifiedName) ir.NodeID {
	scopes := q.scopes
	cur := b.tree.Root().ID
	if !q.global {
		if len(scopes) == 0 {
			return sc.parent
		}
		cur = ir.NoNode
		for id := sc.parent; id != ir.NoNode; id = b.outer(id) {
			n := b.tree.Node(id)
			if n == nil {
				break
			}
			if !n.Kind.IsScope() {
				continue
			}
			if found := b.lookup(id, scopes[0]); found != ir.NoNode {
				cur = found
				break
			}
		}
		if cur == ir.NoNode {
			return ir.NoNode
		}
		scopes = scopes[1:]
	}

	for _, part := range scopes {
		if cur = b.lookup(cur, part); cur == ir.NoNode {
			return ir.NoNode
		}
	}
	return cur
}

func (b *builder) outer(id ir.NodeID) ir.NodeID {
	n := b.tree.Node(id)
	if n == nil {
		return ir.NoNode
	}
	if n.SemanticParent != ir.NoNode && n.SemanticParent != id {
		return n.SemanticParent
	}
	return n.LexicalParent
}

// redeclare links id to the first declaration with the same key and returns that
// declaration. The first declaration of a key is its own canonical declaration.
func (b *builder) redeclare(tag, path, name string, id ir.NodeID) ir.NodeID {
	key := tag + "|" + path + "|" + name
	if first, ok := b.canonical[key]; ok {
		b.tree.Node(id).Canonical = first
		return first
	}
	b.canonical[key] = id
	return id
}

// declaration carries what linkage depends on.
type declaration struct {
	kind     ir.EntityKind
	storage  ir.StorageClass
	typ      *ir.Type
	volatile bool
}

func (b *builder) linkage(d declaration, semantic ir.NodeID, sc scope) ir.Linkage {
	switch d.kind {
	case ir.KindParmDecl, ir.KindFieldDecl, ir.KindEnumConstantDecl:
		return ir.LinkageAutomatic
	}

	if sc.local {
		if d.storage == ir.StorageExtern || d.kind == ir.KindFunctionDecl {
			return ir.LinkageExternal
		}
		return ir.LinkageAutomatic
	}

	// Members share the linkage of their class.
	if p := b.tree.Node(semantic); p != nil && p.Kind.IsAggregate() {
		return p.Linkage
	}

	if sc.anonymous {
		return ir.LinkageInternal
	}
	switch d.storage {
	case ir.StorageStatic:
		return ir.LinkageInternal
	case ir.StorageExtern:
		return ir.LinkageExternal
	}
	if d.kind == ir.KindVarDecl && !d.volatile && isConstObject(d.typ) &&
		b.ext.langExtractor.ConstImpliesInternalLinkage() {
		return ir.LinkageInternal
	}
	return ir.LinkageExternal
}
