package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/vk/ehcl/internal/ast"
	"github.com/vk/ehcl/internal/diag"
	"github.com/vk/ehcl/internal/value"
)

// Evaluator resolves a default or calculated expression against the field
// values accumulated so far.
type Evaluator func(expr ast.Node, vars *value.Fields) (value.Value, error)

// Registry holds the type definitions of one translation session.
type Registry struct {
	types map[string]*TypeDefinition
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*TypeDefinition)}
}

// Register adds a definition, replacing any previous definition of the
// same name. The base type, when named, must already be registered.
func (r *Registry) Register(def *TypeDefinition) error {
	if def.BaseType != "" {
		if _, ok := r.types[def.BaseType]; !ok {
			return diag.Valuef("Base type %s not found", def.BaseType)
		}
	}
	r.types[def.Name] = def
	return nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.types[name]
	return ok
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllFields flattens the inheritance chain: base fields first, then own
// fields, with a redeclared field overriding the inherited one in place.
func (r *Registry) AllFields(name string) ([]FieldDefinition, error) {
	return r.allFields(name, make(map[string]bool))
}

func (r *Registry) allFields(name string, seen map[string]bool) ([]FieldDefinition, error) {
	def, ok := r.types[name]
	if !ok {
		return nil, diag.Valuef("Type %s not found", name)
	}
	if seen[name] {
		return nil, diag.Valuef("Type %s inherits from itself", name)
	}
	seen[name] = true
	var fields []FieldDefinition
	if def.BaseType != "" {
		base, err := r.allFields(def.BaseType, seen)
		if err != nil {
			return nil, err
		}
		fields = base
	}
	for _, f := range def.Fields {
		replaced := false
		for i := range fields {
			if fields[i].Name == f.Name {
				fields[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

// ValidateInstance checks values against the named type and returns one
// error per problem, in field declaration order. An unknown type name
// yields a single error, plus a near-match suggestion when one exists.
func (r *Registry) ValidateInstance(name string, values *value.Fields) []error {
	if !r.Has(name) {
		errs := []error{fmt.Errorf("Unknown type: %s", name)}
		if s := r.suggest(name); s != "" {
			errs = append(errs, fmt.Errorf("Did you mean %q?", s))
		}
		return errs
	}
	fields, err := r.AllFields(name)
	if err != nil {
		return []error{err}
	}
	var errs []error
	for _, f := range fields {
		v, ok := values.Get(f.Name)
		if !ok {
			if !f.HasDefault() && f.Calculated == nil {
				errs = append(errs, fmt.Errorf("Missing required field: %s", f.Name))
			}
			continue
		}
		if err := r.checkConstraint(f.Constraint, v); err != nil {
			errs = append(errs, fmt.Errorf("Field %s: %s", f.Name, err))
		}
	}
	return errs
}

func (r *Registry) checkConstraint(c TypeConstraint, v value.Value) error {
	if v.IsNull() {
		if c.Nullable {
			return nil
		}
		return fmt.Errorf("Value cannot be null")
	}
	if len(c.OneOf) > 0 {
		if v.Kind() == value.String {
			for _, allowed := range c.OneOf {
				if v.AsString() == allowed {
					return nil
				}
			}
		}
		return fmt.Errorf("Value must be one of: %s", strings.Join(c.OneOf, ", "))
	}
	if c.Type.IsUnion() {
		names := make([]string, len(c.Type.Union))
		for i, member := range c.Type.Union {
			if r.matchesType(v, member) {
				return nil
			}
			names[i] = member.Name
		}
		return fmt.Errorf("Value does not match any of the union types: %s", strings.Join(names, ", "))
	}
	if !r.matchesType(v, c.Type) {
		return fmt.Errorf("Value does not match type: %s", c.Type.Name)
	}
	return nil
}

func (r *Registry) matchesType(v value.Value, t CustomType) bool {
	switch t.Name {
	case "string":
		return v.Kind() == value.String
	case "number":
		return v.Kind() == value.Number
	case "bool":
		return v.Kind() == value.Bool
	case "any":
		return true
	case "map":
		return v.Kind() == value.Object
	case "list":
		return v.Kind() == value.List
	}
	if r.Has(t.Name) {
		if v.Kind() != value.Object {
			return false
		}
		return len(r.ValidateInstance(t.Name, v.AsFields())) == 0
	}
	return v.Kind() == value.String && v.AsString() == t.Name
}

// ApplyDefaults fills missing fields from their defaults, then recomputes
// every calculated field in declaration order, overwriting provided
// values. Each expression evaluates against the values accumulated so
// far, so defaults may refer to earlier fields. The input is not
// modified.
func (r *Registry) ApplyDefaults(name string, values *value.Fields, eval Evaluator) (*value.Fields, error) {
	if eval == nil {
		return nil, diag.Valuef("Evaluator function must be provided to apply defaults")
	}
	if !r.Has(name) {
		return nil, diag.Valuef("Type %s not found", name)
	}
	fields, err := r.AllFields(name)
	if err != nil {
		return nil, err
	}
	result := values.Copy()
	for _, f := range fields {
		if result.Has(f.Name) || !f.HasDefault() {
			continue
		}
		if f.DefaultExpr != nil {
			v, err := eval(f.DefaultExpr, result)
			if err != nil {
				return nil, fmt.Errorf("default for field '%s': %w", f.Name, err)
			}
			result.Set(f.Name, v)
			continue
		}
		result.Set(f.Name, *f.Default)
	}
	for _, f := range fields {
		if f.Calculated == nil {
			continue
		}
		v, err := eval(f.Calculated.Expr, result)
		if err != nil {
			return nil, fmt.Errorf("calculated field '%s': %w", f.Name, err)
		}
		result.Set(f.Name, v)
	}
	return result, nil
}

// suggest returns the closest registered name within edit distance 2.
func (r *Registry) suggest(name string) string {
	best, bestDist := "", 3
	for _, candidate := range r.Names() {
		if d := levenshtein.Distance(name, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
