package descriptor

import "fmt"

// Kind tags the concrete type behind a Descriptor.
type Kind int

const (
	KindVariable Kind = iota
	KindFunction
	KindAggregate
	KindCast
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindFunction:
		return "function"
	case KindAggregate:
		return "aggregate"
	case KindCast:
		return "cast"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Descriptor is the closed set of values handed to observers.
// Only the types in this package implement it.
type Descriptor interface {
	Tag() Kind
	Loc() Location
	sealed()
}

// Location is a position in a source file. Line and Column are 1-based.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Variable describes a variable or field declaration.
type Variable struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	IsMember bool     `json:"is_member"`
	IsConst  bool     `json:"is_const"`
	IsStatic bool     `json:"is_static"` // static storage or internal linkage
	Location Location `json:"location"`
}

// Function describes a free function, method, constructor or destructor.
type Function struct {
	Name     string       `json:"name"`
	Role     FunctionRole `json:"role"`
	Location Location     `json:"location"`
}

// Aggregate describes a class, struct, enum or union declaration.
type Aggregate struct {
	Name     string        `json:"name"` // empty for anonymous types
	Kind     AggregateKind `json:"kind"`
	Location Location      `json:"location"`
}

// CastSite marks a C-style cast expression.
type CastSite struct {
	Location Location `json:"location"`
}

func (Variable) Tag() Kind  { return KindVariable }
func (Function) Tag() Kind  { return KindFunction }
func (Aggregate) Tag() Kind { return KindAggregate }
func (CastSite) Tag() Kind  { return KindCast }

func (v Variable) Loc() Location  { return v.Location }
func (f Function) Loc() Location  { return f.Location }
func (a Aggregate) Loc() Location { return a.Location }
func (c CastSite) Loc() Location  { return c.Location }

func (Variable) sealed()  {}
func (Function) sealed()  {}
func (Aggregate) sealed() {}
func (CastSite) sealed()  {}
