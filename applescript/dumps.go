package applescript

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Dumps serializes value into AppleScript literal source text. The output is
// always re-parseable by Loads for every value Dumps can produce.
//
// Dispatch order, first match wins: the Expression hook, the codec's domain
// types, primitives, structs with named fields (aliased via the `applescript`
// struct tag), then maps, slices, arrays, and Set. Anything else fails.
//
// Mappings render with keys sorted by the original key string, and Set
// elements render sorted by their serialized form, so output never depends
// on Go's map iteration order or a caller's insertion order.
func Dumps(value any) (string, error) {
	e := encoder{seen: map[uintptr]struct{}{}}
	return e.encode(value, 0)
}

type encoder struct {
	// seen holds identities of the containers on the active recursion
	// path. Entries are removed on exit, so reuse of one container in
	// sibling positions is legal; re-entering one is a cycle.
	seen map[uintptr]struct{}
}

type mappingPair struct {
	key   string
	value any
}

func (e *encoder) encode(value any, depth int) (string, error) {
	if depth > maxDepth {
		return "", fmt.Errorf("maximum nesting depth exceeded while serializing AppleScript value")
	}

	if expression, ok := value.(Expression); ok {
		return expression.AppleScript(), nil
	}

	switch v := value.(type) {
	case nil:
		return "missing value", nil
	case Specifier:
		return string(v), nil
	case LocationSpecifier:
		return string(v), nil
	case File:
		return "POSIX file " + encodeString(string(v)), nil
	case Date:
		return encodeString(string(v)), nil
	case Point:
		return fmt.Sprintf("{%d, %d}", v.X, v.Y), nil
	case Rectangle:
		return fmt.Sprintf("{%d, %d, %d, %d}", v.Left, v.Top, v.Right, v.Bottom), nil
	case *Record:
		if v == nil {
			return "missing value", nil
		}
		return e.encodeRecord(v, depth)
	case Record:
		return e.encodeRecord(&v, depth)
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case string:
		return encodeString(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return encodeFloat(v)
	case Set:
		return e.encodeSet(v, depth)
	}

	return e.encodeReflect(value, depth)
}

// encodeReflect covers the remaining numeric kinds and the generic struct,
// map, slice, and array walks.
func (e *encoder) encodeReflect(value any, depth int) (string, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "missing value", nil
		}
		id := rv.Pointer()
		if err := e.track(id); err != nil {
			return "", err
		}
		defer e.untrack(id)
		return e.encode(rv.Elem().Interface(), depth)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil

	case reflect.Float32, reflect.Float64:
		return encodeFloat(rv.Float())

	case reflect.Bool:
		if rv.Bool() {
			return "true", nil
		}
		return "false", nil

	case reflect.String:
		return encodeString(rv.String()), nil

	case reflect.Struct:
		return e.encodeStructValue(rv, depth)

	case reflect.Map:
		return e.encodeMapValue(rv, depth)

	case reflect.Slice:
		var id uintptr
		if rv.Len() > 0 {
			id = rv.Pointer()
		}
		return e.encodeSequence(rv, id, depth)

	case reflect.Array:
		return e.encodeSequence(rv, 0, depth)
	}

	return "", fmt.Errorf("unsupported value type for AppleScript serialization: %T", value)
}

// encodeStructValue renders a struct's exported fields through the mapping
// rule. The `applescript` tag supplies the record label when the scripting
// dictionary's name differs from the Go field name; "-" skips a field.
func (e *encoder) encodeStructValue(rv reflect.Value, depth int) (string, error) {
	rt := rv.Type()
	pairs := make([]mappingPair, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		structField := rt.Field(i)
		if !structField.IsExported() {
			continue
		}
		key := structField.Name
		if tag, ok := structField.Tag.Lookup("applescript"); ok {
			if tag == "-" {
				continue
			}
			key = tag
		}
		pairs = append(pairs, mappingPair{key: key, value: rv.Field(i).Interface()})
	}
	return e.encodeMapping(pairs, depth)
}

func (e *encoder) encodeMapValue(rv reflect.Value, depth int) (string, error) {
	var id uintptr
	if rv.Len() > 0 {
		id = rv.Pointer()
	}
	if err := e.track(id); err != nil {
		return "", err
	}
	defer e.untrack(id)

	pairs := make([]mappingPair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key()
		if key.Kind() == reflect.Interface {
			key = key.Elem()
		}
		if key.Kind() != reflect.String {
			return "", fmt.Errorf("AppleScript record keys must be strings")
		}
		pairs = append(pairs, mappingPair{key: key.String(), value: iter.Value().Interface()})
	}
	return e.encodeMapping(pairs, depth)
}

func (e *encoder) encodeRecord(record *Record, depth int) (string, error) {
	var id uintptr
	if record.values != nil {
		id = reflect.ValueOf(record.values).Pointer()
	}
	if err := e.track(id); err != nil {
		return "", err
	}
	defer e.untrack(id)

	pairs := make([]mappingPair, 0, len(record.keys))
	for _, key := range record.keys {
		pairs = append(pairs, mappingPair{key: key, value: record.values[key]})
	}
	return e.encodeMapping(pairs, depth)
}

func (e *encoder) encodeSequence(rv reflect.Value, id uintptr, depth int) (string, error) {
	if err := e.track(id); err != nil {
		return "", err
	}
	defer e.untrack(id)

	rendered := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := e.encode(rv.Index(i).Interface(), depth+1)
		if err != nil {
			return "", err
		}
		rendered[i] = item
	}
	return "{" + strings.Join(rendered, ", ") + "}", nil
}

// encodeSet serializes every element and sorts the resulting strings: set
// elements have no natural order, so the rendered form supplies one.
func (e *encoder) encodeSet(set Set, depth int) (string, error) {
	var id uintptr
	if len(set) > 0 {
		id = reflect.ValueOf(set).Pointer()
	}
	if err := e.track(id); err != nil {
		return "", err
	}
	defer e.untrack(id)

	rendered := make([]string, len(set))
	for i, item := range set {
		expression, err := e.encode(item, depth+1)
		if err != nil {
			return "", err
		}
		rendered[i] = expression
	}
	sort.Strings(rendered)
	return "{" + strings.Join(rendered, ", ") + "}", nil
}

// encodeMapping applies the record rule: string keys only, no '|' in keys,
// identifier-shaped keys render bare and all others wrap as |key|, and pairs
// sort by the original key string.
func (e *encoder) encodeMapping(pairs []mappingPair, depth int) (string, error) {
	type renderedPair struct {
		key        string
		expression string
	}
	rendered := make([]renderedPair, 0, len(pairs))
	for _, pair := range pairs {
		label, err := encodeRecordKey(pair.key)
		if err != nil {
			return "", err
		}
		expression, err := e.encode(pair.value, depth+1)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, renderedPair{key: pair.key, expression: label + ":" + expression})
	}
	sort.Slice(rendered, func(i, j int) bool { return rendered[i].key < rendered[j].key })

	parts := make([]string, len(rendered))
	for i, pair := range rendered {
		parts[i] = pair.expression
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func encodeRecordKey(key string) (string, error) {
	if strings.Contains(key, "|") {
		return "", fmt.Errorf("AppleScript record keys cannot contain '|'")
	}
	if isIdentifierShaped(key) {
		return key, nil
	}
	return "|" + key + "|", nil
}

func isIdentifierShaped(key string) bool {
	if key == "" || !isIdentifierStartChar(key[0]) {
		return false
	}
	for i := 1; i < len(key); i++ {
		if !isIdentifierPartChar(key[i]) {
			return false
		}
	}
	return true
}

// encodeString quotes a string for the interpreter. There is no backslash
// escape for embedded quotes: the string splits on '"' and the fragments
// join with the interpreter's built-in quote constant. Raw newlines and tabs
// sit inside the quoted text unchanged.
func encodeString(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, `"`)
	for i, part := range parts {
		parts[i] = `"` + part + `"`
	}
	return strings.Join(parts, " & quote & ")
}

func encodeFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("AppleScript does not support non-finite float values")
	}
	expression := strconv.FormatFloat(f, 'g', -1, 64)
	// A float must re-parse as a float: keep a decimal point or exponent.
	if !strings.ContainsAny(expression, ".eE") {
		expression += ".0"
	}
	return expression, nil
}

func (e *encoder) track(id uintptr) error {
	if id == 0 {
		return nil
	}
	if _, onPath := e.seen[id]; onPath {
		return ErrCycle
	}
	e.seen[id] = struct{}{}
	return nil
}

func (e *encoder) untrack(id uintptr) {
	if id != 0 {
		delete(e.seen, id)
	}
}
