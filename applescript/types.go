// Package applescript implements a bidirectional codec between Go values and
// the textual literal grammar that the macOS scripting interpreter (osascript)
// accepts and emits: records, lists, quoted strings, dates, POSIX file paths,
// object specifiers, booleans, numbers, and "missing value".
//
// Dumps converts a value into literal source text for embedding in generated
// scripts. Loads parses interpreter output back into Go values, optionally
// directed by an explicit Schema describing the expected shape.
package applescript

// Specifier is an opaque reference expression returned by the scripting
// interpreter, e.g. "window 1". The codec stores and replays the expression
// verbatim and never interprets it.
type Specifier string

// LocationSpecifier is a specifier denoting an insertion location,
// e.g. "after tab 2 of window 1".
type LocationSpecifier string

// Date is a date value carried as the interpreter's textual representation.
type Date string

// File is a file referenced by its POSIX path. It renders as a
// `POSIX file "<path>"` literal.
type File string

// Point is a fixed two-element integer tuple, rendered as {x, y}.
type Point struct {
	X int
	Y int
}

// Rectangle is a fixed four-element integer tuple, rendered as
// {left, top, right, bottom}.
type Rectangle struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Set marks a collection whose rendering must not depend on element order.
// Dumps serializes each element and sorts the resulting strings, since
// AppleScript lists have no natural set ordering. There is no set literal on
// the wire; decoding a Set-typed schema yields elements in list order.
type Set []any

// Expression is the extension hook consulted first by Dumps. A type that
// implements it supplies its own literal rendering and bypasses the built-in
// dispatch chain entirely.
type Expression interface {
	// AppleScript returns the value rendered as literal source text.
	AppleScript() string
}

// Record is an ordered string-keyed mapping mirroring an AppleScript record
// literal. Key order is preserved exactly as inserted (or as parsed), which
// is significant for equality; Dumps renders keys in sorted order regardless.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: map[string]any{}}
}

// Set stores a key-value pair, preserving first-insertion order for the key.
// It returns the receiver so construction can be chained.
func (r *Record) Set(key string, value any) *Record {
	if r.values == nil {
		r.values = map[string]any{}
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return r
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	value, ok := r.values[key]
	return value, ok
}

// Keys returns the record's keys in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of entries.
func (r *Record) Len() int {
	return len(r.keys)
}

// Map returns a plain map copy of the record. Ordering is lost.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for key, value := range r.values {
		out[key] = value
	}
	return out
}
