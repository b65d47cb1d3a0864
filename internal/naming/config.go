package naming

import (
	"rawncc/internal/descriptor"
)

// Config is the YAML form of a table: a preset plus explicit overrides.
//
//	naming:
//	  preset: default
//	  rules:
//	    - {member: false, category: array, sigil: a, shape: pascal}
type Config struct {
	Preset       string        `yaml:"preset,omitempty"`
	ConstantWhen *ConstantWhen `yaml:"constant_when,omitempty"`
	Constant     *Rule         `yaml:"constant,omitempty"`
	Rules        []RuleConfig  `yaml:"rules,omitempty"`
}

// RuleConfig replaces the rule for one (member, category) key.
type RuleConfig struct {
	Member   bool                `yaml:"member"`
	Category descriptor.Category `yaml:"category"`
	Rule     `yaml:",inline"`
}

// Table resolves the preset and applies the overrides on top of it.
func (c Config) Table() (Table, error) {
	t, err := Preset(c.Preset)
	if err != nil {
		return Table{}, err
	}
	if c.ConstantWhen != nil {
		t.ConstantWhen = *c.ConstantWhen
	}
	if c.Constant != nil {
		t.Constant = *c.Constant
	}
	for _, r := range c.Rules {
		t.Rules[Key{Member: r.Member, Category: r.Category}] = r.Rule
	}
	return t, t.Validate()
}

// Describe spells out every entry of t, in Keys order, so the effective policy can be
// printed and reviewed.
func Describe(t Table) Config {
	cw := t.ConstantWhen
	constant := t.Constant
	c := Config{ConstantWhen: &cw, Constant: &constant}
	for _, k := range Keys() {
		r, ok := t.Rules[k]
		if !ok {
			continue
		}
		c.Rules = append(c.Rules, RuleConfig{Member: k.Member, Category: k.Category, Rule: r})
	}
	return c
}
