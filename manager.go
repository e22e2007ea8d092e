package achrome

import (
	"context"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/openmac/achrome/script"
)

// Criteria is a set of field lookups, all of which must match. Keys are
// either a bare field name (equality) or "field__operator", for example:
//
//	Criteria{"mode": "incognito", "title__glob": "*Dashboard*", "index__lte": 3}
type Criteria map[string]any

type filterable interface {
	fields() map[string]any
}

// Manager holds a loaded set of windows or tabs and answers queries over
// it. Filtering never goes back to Chrome; managers operate on the snapshot
// they were loaded with.
type Manager[T filterable] struct {
	name    string
	binding string
	items   []T
	engine  *script.RisorScriptingEngine
}

// NewWindowManager wraps a window snapshot for querying.
func NewWindowManager(windows []Window, engine *script.RisorScriptingEngine) *Manager[Window] {
	return &Manager[Window]{name: "WindowManager", binding: "window", items: windows, engine: engine}
}

// NewTabManager wraps a tab snapshot for querying.
func NewTabManager(tabs []Tab, engine *script.RisorScriptingEngine) *Manager[Tab] {
	return &Manager[Tab]{name: "TabManager", binding: "tab", items: tabs, engine: engine}
}

// All returns the manager's items in load order.
func (m *Manager[T]) All() []T {
	return m.items
}

// Count returns the number of items.
func (m *Manager[T]) Count() int {
	return len(m.items)
}

// Filter returns a manager holding only the items matching every criterion.
func (m *Manager[T]) Filter(criteria Criteria) (*Manager[T], error) {
	return m.filterWith(criteria, true)
}

// Exclude returns a manager holding only the items matching no criterion.
func (m *Manager[T]) Exclude(criteria Criteria) (*Manager[T], error) {
	return m.filterWith(criteria, false)
}

func (m *Manager[T]) filterWith(criteria Criteria, keepMatches bool) (*Manager[T], error) {
	var kept []T
	for _, item := range m.items {
		matched, err := matchesCriteria(item.fields(), criteria)
		if err != nil {
			return nil, err
		}
		if matched == keepMatches {
			kept = append(kept, item)
		}
	}
	return &Manager[T]{name: m.name, binding: m.binding, items: kept, engine: m.engine}, nil
}

// FilterExpr returns a manager holding only the items for which the boolean
// expression evaluates truthy. The item is bound as "window" or "tab" and
// its position as "index".
func (m *Manager[T]) FilterExpr(ctx context.Context, expression string) (*Manager[T], error) {
	if m.engine == nil {
		return nil, NewAutomationError(ErrorTypeInvalidFilter, "no expression engine configured")
	}
	predicate, err := script.NewPredicate(ctx, m.engine, expression)
	if err != nil {
		return nil, wrapAutomationError(ErrorTypeInvalidFilter, err)
	}

	var kept []T
	for i, item := range m.items {
		matched, err := predicate.Matches(ctx, map[string]any{
			m.binding: item.fields(),
			"index":   i,
		})
		if err != nil {
			return nil, wrapAutomationError(ErrorTypeInvalidFilter, err)
		}
		if matched {
			kept = append(kept, item)
		}
	}
	return &Manager[T]{name: m.name, binding: m.binding, items: kept, engine: m.engine}, nil
}

// Get returns the single item matching the criteria. Zero matches and
// multiple matches are distinct failures.
func (m *Manager[T]) Get(criteria Criteria) (T, error) {
	var zero T
	filtered, err := m.Filter(criteria)
	if err != nil {
		return zero, err
	}
	switch filtered.Count() {
	case 1:
		return filtered.items[0], nil
	case 0:
		return zero, NewAutomationError(ErrorTypeNotFound,
			"%s.Get() found 0 objects for criteria %v", m.name, criteria)
	default:
		return zero, NewAutomationError(ErrorTypeMultipleObjects,
			"%s.Get() found %d objects for criteria %v, expected 1", m.name, filtered.Count(), criteria)
	}
}

// First returns the first item in load order.
func (m *Manager[T]) First() (T, error) {
	var zero T
	if len(m.items) == 0 {
		return zero, NewAutomationError(ErrorTypeNotFound, "%s.First() found 0 objects", m.name)
	}
	return m.items[0], nil
}

// Last returns the last item in load order.
func (m *Manager[T]) Last() (T, error) {
	var zero T
	if len(m.items) == 0 {
		return zero, NewAutomationError(ErrorTypeNotFound, "%s.Last() found 0 objects", m.name)
	}
	return m.items[len(m.items)-1], nil
}

var criteriaOperators = map[string]bool{
	"eq": true, "ne": true,
	"lt": true, "lte": true, "gt": true, "gte": true,
	"in": true, "contains": true,
	"startswith": true, "endswith": true,
	"glob": true,
}

func matchesCriteria(fields map[string]any, criteria Criteria) (bool, error) {
	for lookup, criterion := range criteria {
		field, operator := parseLookup(lookup)
		value, ok := fields[field]
		if !ok {
			return false, NewAutomationError(ErrorTypeInvalidFilter,
				"invalid filter field %q in lookup %q", field, lookup)
		}
		matched, err := applyOperator(operator, value, criterion)
		if err != nil {
			return false, wrapAutomationError(ErrorTypeInvalidFilter,
				fmt.Errorf("lookup %q: %w", lookup, err))
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// parseLookup splits "field__operator" lookups. An unrecognized suffix is
// treated as part of the field name with an equality match.
func parseLookup(lookup string) (string, string) {
	if i := strings.LastIndex(lookup, "__"); i >= 0 {
		if operator := lookup[i+2:]; criteriaOperators[operator] {
			return lookup[:i], operator
		}
	}
	return lookup, "eq"
}

func applyOperator(operator string, value, criterion any) (bool, error) {
	switch operator {
	case "eq":
		return looseEqual(value, criterion), nil
	case "ne":
		return !looseEqual(value, criterion), nil
	case "lt", "lte", "gt", "gte":
		left, leftOk := asFloat(value)
		right, rightOk := asFloat(criterion)
		if !leftOk || !rightOk {
			return false, fmt.Errorf("operator %q requires numeric operands, got %T and %T",
				operator, value, criterion)
		}
		switch operator {
		case "lt":
			return left < right, nil
		case "lte":
			return left <= right, nil
		case "gt":
			return left > right, nil
		default:
			return left >= right, nil
		}
	case "in":
		options, err := asSlice(criterion)
		if err != nil {
			return false, fmt.Errorf("operator \"in\": %w", err)
		}
		for _, option := range options {
			if looseEqual(value, option) {
				return true, nil
			}
		}
		return false, nil
	case "contains":
		text, textOk := value.(string)
		needle, needleOk := criterion.(string)
		if !textOk || !needleOk {
			return false, fmt.Errorf("operator \"contains\" requires string operands, got %T and %T",
				value, criterion)
		}
		return strings.Contains(text, needle), nil
	case "startswith":
		text, textOk := value.(string)
		prefix, prefixOk := criterion.(string)
		if !textOk || !prefixOk {
			return false, fmt.Errorf("operator \"startswith\" requires string operands, got %T and %T",
				value, criterion)
		}
		return strings.HasPrefix(text, prefix), nil
	case "endswith":
		text, textOk := value.(string)
		suffix, suffixOk := criterion.(string)
		if !textOk || !suffixOk {
			return false, fmt.Errorf("operator \"endswith\" requires string operands, got %T and %T",
				value, criterion)
		}
		return strings.HasSuffix(text, suffix), nil
	case "glob":
		text, textOk := value.(string)
		pattern, patternOk := criterion.(string)
		if !textOk || !patternOk {
			return false, fmt.Errorf("operator \"glob\" requires string operands, got %T and %T",
				value, criterion)
		}
		matcher, err := glob.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		return matcher.Match(text), nil
	}
	return false, fmt.Errorf("unsupported operator %q", operator)
}

// looseEqual compares with numeric widening so Criteria{"id": 3} matches an
// int64 field and vice versa.
func looseEqual(a, b any) bool {
	if left, ok := asFloat(a); ok {
		if right, ok := asFloat(b); ok {
			return left == right
		}
		return false
	}
	return a == b
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return float64(v), true
	}
	return 0, false
}

func asSlice(criterion any) ([]any, error) {
	switch v := criterion.(type) {
	case []any:
		return v, nil
	case []string:
		options := make([]any, len(v))
		for i, s := range v {
			options[i] = s
		}
		return options, nil
	case []int:
		options := make([]any, len(v))
		for i, n := range v {
			options[i] = n
		}
		return options, nil
	}
	return nil, fmt.Errorf("requires a slice, got %T", criterion)
}
