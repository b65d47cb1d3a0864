// Package naming derives the expected shape of a variable name from its descriptor and
// checks names against it. A mismatch is a normal result, not an error.
package naming

import (
	"fmt"
	"regexp"

	"rawncc/internal/descriptor"
)

// Policy is a validated Table with its patterns compiled. It is immutable and safe for
// concurrent use.
type Policy struct {
	table    Table
	constant *regexp.Regexp
	rules    map[Key]*regexp.Regexp
}

// New validates t and compiles its patterns.
func New(t Table) (*Policy, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t = t.Clone()

	p := &Policy{table: t, rules: make(map[Key]*regexp.Regexp, len(t.Rules))}
	var err error
	if p.constant, err = regexp.Compile(t.Constant.Pattern()); err != nil {
		return nil, fmt.Errorf("constant rule: %w", err)
	}
	for k, r := range t.Rules {
		re, err := regexp.Compile(r.Pattern())
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", k, err)
		}
		p.rules[k] = re
	}
	return p, nil
}

// MustNew is New for tables known to be valid.
func MustNew(t Table) *Policy {
	p, err := New(t)
	if err != nil {
		panic(err)
	}
	return p
}

var defaultPolicy = MustNew(DefaultTable())

// Default returns the policy built from DefaultTable.
func Default() *Policy {
	return defaultPolicy
}

// Table returns a copy of the policy's table.
func (p *Policy) Table() Table {
	return p.table.Clone()
}

// Rule returns the rule that applies to v and whether it is the constant rule.
func (p *Policy) Rule(v descriptor.Variable) (Rule, bool) {
	if p.table.ConstantWhen.applies(v) {
		return p.table.Constant, true
	}
	return p.table.Rules[keyOf(v)], false
}

// Pattern returns the expected-name pattern for v.
func (p *Policy) Pattern(v descriptor.Variable) string {
	r, _ := p.Rule(v)
	return r.Pattern()
}

// Check returns ok if v's name matches the derived pattern; otherwise it returns the pattern
// for display.
func (p *Policy) Check(v descriptor.Variable) (pattern string, ok bool) {
	re := p.regexpFor(v)
	if re.MatchString(v.Name) {
		return "", true
	}
	return re.String(), false
}

func (p *Policy) regexpFor(v descriptor.Variable) *regexp.Regexp {
	if p.table.ConstantWhen.applies(v) {
		return p.constant
	}
	return p.rules[keyOf(v)]
}

func keyOf(v descriptor.Variable) Key {
	return Key{Member: v.IsMember, Category: v.Category}
}

// Check runs the default policy.
func Check(v descriptor.Variable) (pattern string, ok bool) {
	return defaultPolicy.Check(v)
}
