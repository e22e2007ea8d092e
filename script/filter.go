package script

import (
	"context"
	"fmt"
)

// Predicate is a compiled boolean filter expression. It is evaluated once
// per candidate item with that item's fields bound as globals, for example:
//
//	tab.loading == false && strings.contains(tab.url, "github")
type Predicate struct {
	source string
	script Script
}

// NewPredicate compiles the expression with the given engine. An empty
// expression is rejected; use no predicate at all to match everything.
func NewPredicate(ctx context.Context, engine Compiler, expression string) (*Predicate, error) {
	if expression == "" {
		return nil, fmt.Errorf("filter expression cannot be empty")
	}
	compiled, err := engine.Compile(ctx, expression)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression %q: %w", expression, err)
	}
	return &Predicate{source: expression, script: compiled}, nil
}

// Source returns the expression text the predicate was compiled from.
func (p *Predicate) Source() string {
	return p.source
}

// Matches evaluates the predicate against one item's bindings and reports
// the truthiness of the result.
func (p *Predicate) Matches(ctx context.Context, bindings map[string]any) (bool, error) {
	result, err := p.script.Evaluate(ctx, bindings)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter expression %q: %w", p.source, err)
	}
	return result.IsTruthy(), nil
}
