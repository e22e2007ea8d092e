package applescript

import (
	"strconv"
	"strings"
)

// maxDepth bounds literal nesting in both the parser and the serializer so
// pathological inputs fail cleanly instead of exhausting the call stack.
const maxDepth = 100

// rawKind tags a node in the untyped raw value tree produced by the parser.
type rawKind uint8

const (
	rawNull rawKind = iota
	rawBool
	rawInt
	rawFloat
	rawString
	rawList
	rawRecord
	rawPosixFile
	// rawExpression holds verbatim text for anything the parser cannot
	// resolve to a closed literal form, such as object specifiers.
	rawExpression
)

// rawValue is the intermediate parse result prior to schema-directed
// decoding. pos is the character offset of the node's first token.
type rawValue struct {
	kind     rawKind
	pos      int
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string // string contents, POSIX path, or raw expression text
	list     []rawValue
	fields   []rawField
}

// rawField is one record entry; field order is parse order.
type rawField struct {
	key   string
	value rawValue
}

// describe renders a compact description of the node for error messages.
func (v rawValue) describe() string {
	switch v.kind {
	case rawNull:
		return "missing value"
	case rawBool:
		return strconv.FormatBool(v.boolVal)
	case rawInt:
		return strconv.FormatInt(v.intVal, 10)
	case rawFloat:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case rawString:
		return strconv.Quote(v.strVal)
	case rawList:
		return "list of " + strconv.Itoa(len(v.list)) + " items"
	case rawRecord:
		keys := make([]string, len(v.fields))
		for i, field := range v.fields {
			keys[i] = field.key
		}
		return "record {" + strings.Join(keys, ", ") + "}"
	case rawPosixFile:
		return "POSIX file " + strconv.Quote(v.strVal)
	case rawExpression:
		return "expression " + strconv.Quote(v.strVal)
	}
	return "unknown value"
}
