package descriptor

import (
	"fmt"
	"strings"
)

// Category is the value category of a variable's declared type.
type Category int

const (
	Value Category = iota
	Pointer
	Reference
	Array
)

// Categories lists every category in declaration order.
var Categories = []Category{Value, Pointer, Reference, Array}

var categoryNames = map[Category]string{
	Value:     "value",
	Pointer:   "pointer",
	Reference: "reference",
	Array:     "array",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func (c Category) MarshalText() ([]byte, error) {
	s, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(s), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for k, s := range categoryNames {
		if s == want {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", string(text))
}

// FunctionRole tells free functions apart from the special member functions.
type FunctionRole int

const (
	FreeFunction FunctionRole = iota
	Method
	Constructor
	Destructor
)

var roleNames = map[FunctionRole]string{
	FreeFunction: "function",
	Method:       "method",
	Constructor:  "constructor",
	Destructor:   "destructor",
}

func (r FunctionRole) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r FunctionRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *FunctionRole) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for k, s := range roleNames {
		if s == want {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown function role %q", string(text))
}

// AggregateKind is the keyword an aggregate type was declared with.
type AggregateKind int

const (
	Class AggregateKind = iota
	Struct
	Enum
	Union
)

var aggregateNames = map[AggregateKind]string{
	Class:  "class",
	Struct: "struct",
	Enum:   "enum",
	Union:  "union",
}

func (k AggregateKind) String() string {
	if s, ok := aggregateNames[k]; ok {
		return s
	}
	return fmt.Sprintf("aggregate(%d)", int(k))
}

func (k AggregateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *AggregateKind) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for v, s := range aggregateNames {
		if s == want {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown aggregate kind %q", string(text))
}
