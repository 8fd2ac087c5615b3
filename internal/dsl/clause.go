// Package dsl implements the declarative stat expressions: a small clause
// tree loaded from YAML and evaluated against a hand's flat context map.
package dsl

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Clause is one node of a stat expression. Exactly one operator is set; a
// bare scalar is shorthand for a truthiness test on that field.
type Clause struct {
	All []*Clause
	Any []*Clause
	Not *Clause

	Eq  *Comparison
	In  *Membership
	Gt  *Comparison
	Gte *Comparison
	Lt  *Comparison
	Lte *Comparison

	IsTrue  string
	IsFalse string

	Field string
}

// Comparison pairs a context field with a literal.
type Comparison struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// Membership tests a context field against a literal set.
type Membership struct {
	Field  string `yaml:"field"`
	Values []any  `yaml:"values"`
}

// UnmarshalYAML decodes either a bare field name or a single-operator
// mapping. Unknown operators and multi-operator mappings are config errors.
func (c *Clause) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&c.Field)
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: clause must be a field name or an operator mapping", node.Line)
	}
	if len(node.Content) != 2 {
		return fmt.Errorf("line %d: clause must carry exactly one operator", node.Line)
	}

	op, val := node.Content[0].Value, node.Content[1]
	switch op {
	case "all":
		return val.Decode(&c.All)
	case "any":
		return val.Decode(&c.Any)
	case "not":
		c.Not = &Clause{}
		return val.Decode(c.Not)
	case "eq":
		c.Eq = &Comparison{}
		return val.Decode(c.Eq)
	case "in":
		c.In = &Membership{}
		return val.Decode(c.In)
	case "gt":
		c.Gt = &Comparison{}
		return val.Decode(c.Gt)
	case "gte":
		c.Gte = &Comparison{}
		return val.Decode(c.Gte)
	case "lt":
		c.Lt = &Comparison{}
		return val.Decode(c.Lt)
	case "lte":
		c.Lte = &Comparison{}
		return val.Decode(c.Lte)
	case "is_true":
		return val.Decode(&c.IsTrue)
	case "is_false":
		return val.Decode(&c.IsFalse)
	}
	return fmt.Errorf("line %d: unknown operator %q", node.Line, op)
}

// Eval evaluates the clause against a context map. Numeric comparisons
// against a missing or non-numeric field are false; is_false treats a
// missing field as false, so it holds.
func (c *Clause) Eval(ctx map[string]any) bool {
	switch {
	case c.Field != "":
		return truthy(ctx[c.Field])
	case c.All != nil:
		for _, sub := range c.All {
			if !sub.Eval(ctx) {
				return false
			}
		}
		return true
	case c.Any != nil:
		for _, sub := range c.Any {
			if sub.Eval(ctx) {
				return true
			}
		}
		return false
	case c.Not != nil:
		return !c.Not.Eval(ctx)
	case c.Eq != nil:
		v, ok := ctx[c.Eq.Field]
		return ok && equal(v, c.Eq.Value)
	case c.In != nil:
		v, ok := ctx[c.In.Field]
		if !ok {
			return false
		}
		for _, want := range c.In.Values {
			if equal(v, want) {
				return true
			}
		}
		return false
	case c.Gt != nil:
		return compare(ctx, c.Gt, func(a, b float64) bool { return a > b })
	case c.Gte != nil:
		return compare(ctx, c.Gte, func(a, b float64) bool { return a >= b })
	case c.Lt != nil:
		return compare(ctx, c.Lt, func(a, b float64) bool { return a < b })
	case c.Lte != nil:
		return compare(ctx, c.Lte, func(a, b float64) bool { return a <= b })
	case c.IsTrue != "":
		return truthy(ctx[c.IsTrue])
	case c.IsFalse != "":
		return !truthy(ctx[c.IsFalse])
	}
	return false
}

func compare(ctx map[string]any, cmp *Comparison, op func(a, b float64) bool) bool {
	a, ok := toFloat(ctx[cmp.Field])
	if !ok {
		return false
	}
	b, ok := toFloat(cmp.Value)
	if !ok {
		return false
	}
	return op(a, b)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
	}
	return true
}

// equal compares numerically when both sides are numbers, otherwise by
// string rendering, so YAML literals match context values regardless of the
// concrete Go type.
func equal(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
