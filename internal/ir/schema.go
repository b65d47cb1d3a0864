// Package ir is the parser-side view of a translation unit: declarations with their resolved
// type shape, linkage, storage class and scope relations, as produced by the extractor.
package ir

import "fmt"

// NodeID indexes a node inside its Tree. Parent links are NodeIDs, never pointers.
type NodeID int32

// NoNode marks an absent relation (e.g. an unresolved semantic parent).
const NoNode NodeID = -1

// Location is where a node's name (or the node itself, if unnamed) starts. 1-based.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Node is a single declaration or expression of interest.
type Node struct {
	ID             NodeID       `json:"id"`
	Kind           EntityKind   `json:"kind"`
	Name           string       `json:"name,omitempty"`
	Type           *Type        `json:"type,omitempty"`
	Location       Location     `json:"location"`
	Linkage        Linkage      `json:"linkage"`
	Storage        StorageClass `json:"storage"`
	LexicalParent  NodeID       `json:"lexical_parent"`
	SemanticParent NodeID       `json:"semantic_parent"`
	Canonical      NodeID       `json:"canonical"` // first declaration of the same entity
	Children       []NodeID     `json:"children,omitempty"`
}

// Type is the shape of a declared type.
type Type struct {
	Kind     TypeKind `json:"kind"`
	Const    bool     `json:"const"`             // qualifier on this type itself
	Pointee  *Type    `json:"pointee,omitempty"` // pointers, references, function pointers
	Element  *Type    `json:"element,omitempty"` // arrays
	Spelling string   `json:"spelling"`          // clang-like rendering, e.g. "const char *"
}

// PointeeType returns the pointee of a pointer or reference type, or nil.
func (t *Type) PointeeType() *Type {
	if t == nil {
		return nil
	}
	return t.Pointee
}

// Linkage of a declaration.
type Linkage int

const (
	// LinkageAutomatic covers locals, parameters and fields: no linkage at all.
	LinkageAutomatic Linkage = iota
	LinkageInternal
	LinkageExternal
)

func (l Linkage) String() string {
	switch l {
	case LinkageAutomatic:
		return "automatic"
	case LinkageInternal:
		return "internal"
	case LinkageExternal:
		return "external"
	default:
		return fmt.Sprintf("linkage(%d)", int(l))
	}
}

// StorageClass is the storage-class specifier written on a declaration.
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageStatic
	StorageExtern
	StorageRegister
)

func (s StorageClass) String() string {
	switch s {
	case StorageNone:
		return "none"
	case StorageStatic:
		return "static"
	case StorageExtern:
		return "extern"
	case StorageRegister:
		return "register"
	default:
		return fmt.Sprintf("storage(%d)", int(s))
	}
}
