package naming

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"rawncc/internal/descriptor"
)

// Shape is the case shape of the part of a name that follows prefix and sigil.
type Shape int

const (
	LowerCamel Shape = iota
	Pascal
	UpperSnake
	// UpperSnakeLoose lets blocks after the first start with a digit (THE_1ST).
	UpperSnakeLoose
)

var shapeBodies = map[Shape]string{
	LowerCamel:      `[a-z][a-z0-9]*([A-Z][a-z0-9]+)*`,
	Pascal:          `([A-Z][a-z0-9]+)+`,
	UpperSnake:      `[A-Z][A-Z0-9]+(_[A-Z][A-Z0-9]+)*`,
	UpperSnakeLoose: `[A-Z][A-Z0-9]+(_[A-Z0-9]+)*`,
}

var shapeNames = map[Shape]string{
	LowerCamel:      "lower_camel",
	Pascal:          "pascal",
	UpperSnake:      "upper_snake",
	UpperSnakeLoose: "upper_snake_loose",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

func (s Shape) MarshalText() ([]byte, error) {
	n, ok := shapeNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown shape %d", int(s))
	}
	return []byte(n), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for k, n := range shapeNames {
		if n == want {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", string(text))
}

// ConstantWhen decides which variables fall under the constant rule.
type ConstantWhen int

const (
	StaticAndConst ConstantWhen = iota
	StaticOrConst
)

func (c ConstantWhen) String() string {
	switch c {
	case StaticAndConst:
		return "static_and_const"
	case StaticOrConst:
		return "static_or_const"
	default:
		return fmt.Sprintf("constant_when(%d)", int(c))
	}
}

func (c ConstantWhen) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ConstantWhen) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "static_and_const":
		*c = StaticAndConst
	case "static_or_const":
		*c = StaticOrConst
	default:
		return fmt.Errorf("unknown constant_when %q", string(text))
	}
	return nil
}

func (c ConstantWhen) applies(v descriptor.Variable) bool {
	if c == StaticOrConst {
		return v.IsStatic || v.IsConst
	}
	return v.IsStatic && v.IsConst
}

// Rule assembles a pattern left to right: prefix, sigil, then a body of the given shape.
type Rule struct {
	Prefix string `yaml:"prefix"`
	Sigil  string `yaml:"sigil"`
	Shape  Shape  `yaml:"shape"`
}

// Pattern returns the anchored regular expression for the rule.
func (r Rule) Pattern() string {
	return "^" + regexp.QuoteMeta(r.Prefix) + regexp.QuoteMeta(r.Sigil) + shapeBodies[r.Shape] + "$"
}

// Key selects a rule for non-constant variables.
type Key struct {
	Member   bool
	Category descriptor.Category
}

func (k Key) String() string {
	scope := "free"
	if k.Member {
		scope = "member"
	}
	return scope + "/" + k.Category.String()
}

// Table is the complete naming policy. Every (member, category) pair needs a rule.
type Table struct {
	ConstantWhen ConstantWhen
	Constant     Rule
	Rules        map[Key]Rule
}

// Keys lists every key a complete table covers: free before member, categories in order.
func Keys() []Key {
	keys := make([]Key, 0, 2*len(descriptor.Categories))
	for _, member := range []bool{false, true} {
		for _, c := range descriptor.Categories {
			keys = append(keys, Key{Member: member, Category: c})
		}
	}
	return keys
}

// DefaultTable is the current policy. Free-scope arrays take no sigil and the lower-camel
// shape of plain values; members and sigiled names are Pascal case.
func DefaultTable() Table {
	return Table{
		ConstantWhen: StaticAndConst,
		Constant:     Rule{Shape: UpperSnake},
		Rules: map[Key]Rule{
			{false, descriptor.Value}:     {Shape: LowerCamel},
			{false, descriptor.Pointer}:   {Sigil: "p", Shape: Pascal},
			{false, descriptor.Reference}: {Sigil: "r", Shape: Pascal},
			{false, descriptor.Array}:     {Shape: LowerCamel},
			{true, descriptor.Value}:      {Prefix: "m_", Shape: Pascal},
			{true, descriptor.Pointer}:    {Prefix: "m_", Sigil: "p", Shape: Pascal},
			{true, descriptor.Reference}:  {Prefix: "m_", Sigil: "r", Shape: Pascal},
			{true, descriptor.Array}:      {Prefix: "m_", Shape: Pascal},
		},
	}
}

// LegacyTable is the earlier policy: any static or const variable is a constant, and free
// arrays carry the reference sigil with a lower-camel body.
func LegacyTable() Table {
	t := DefaultTable()
	t.ConstantWhen = StaticOrConst
	t.Constant = Rule{Shape: UpperSnakeLoose}
	t.Rules[Key{false, descriptor.Array}] = Rule{Sigil: "r", Shape: LowerCamel}
	return t
}

// Preset returns a named table.
func Preset(name string) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultTable(), nil
	case "legacy":
		return LegacyTable(), nil
	default:
		return Table{}, fmt.Errorf("unknown naming preset %q", name)
	}
}

// Clone returns a deep copy so presets can be edited safely.
func (t Table) Clone() Table {
	c := t
	c.Rules = make(map[Key]Rule, len(t.Rules))
	for k, r := range t.Rules {
		c.Rules[k] = r
	}
	return c
}

// Validate checks that the table covers every key and only uses known shapes.
func (t Table) Validate() error {
	if _, ok := shapeBodies[t.Constant.Shape]; !ok {
		return fmt.Errorf("constant rule: unknown shape %d", int(t.Constant.Shape))
	}
	var missing []string
	for _, k := range Keys() {
		r, ok := t.Rules[k]
		if !ok {
			missing = append(missing, k.String())
			continue
		}
		if _, ok := shapeBodies[r.Shape]; !ok {
			return fmt.Errorf("rule %s: unknown shape %d", k, int(r.Shape))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("naming table has no rule for %s", strings.Join(missing, ", "))
	}
	return nil
}
