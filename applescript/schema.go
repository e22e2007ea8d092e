package applescript

import "strings"

type schemaKind uint8

const (
	schemaAny schemaKind = iota
	schemaNull
	schemaBool
	schemaInt
	schemaFloat
	schemaString
	schemaSpecifier
	schemaLocationSpecifier
	schemaDate
	schemaFile
	schemaRecord
	schemaPoint
	schemaRectangle
	schemaList
	schemaSet
	schemaDict
	schemaStruct
)

// Schema is an explicit, caller-constructed description of the value shape a
// decode should produce. It stands in for runtime type introspection: the
// decoder never inspects live Go types, only the schema it is handed.
//
// Schemas are immutable once built; the same Schema may be shared freely
// across concurrent Loads calls.
type Schema struct {
	kind   schemaKind
	elem   *Schema
	fields []Field
	closed bool
}

// Field declares one struct schema member. When Alias is set, it is the only
// accepted record key for this field: the bare Name is deliberately not a
// fallback, matching the scripting dictionaries this codec decodes for,
// where the wire label and the program-side name differ on purpose.
type Field struct {
	Name     string
	Alias    string
	Schema   *Schema
	Optional bool
}

// Leaf schemas. Primitive kinds match exactly: a bool is never accepted
// where an int is expected, and vice versa.
var (
	Any                   = &Schema{kind: schemaAny}
	NullType              = &Schema{kind: schemaNull}
	BoolType              = &Schema{kind: schemaBool}
	IntType               = &Schema{kind: schemaInt}
	FloatType             = &Schema{kind: schemaFloat}
	StringType            = &Schema{kind: schemaString}
	SpecifierType         = &Schema{kind: schemaSpecifier}
	LocationSpecifierType = &Schema{kind: schemaLocationSpecifier}
	DateType              = &Schema{kind: schemaDate}
	FileType              = &Schema{kind: schemaFile}
	RecordType            = &Schema{kind: schemaRecord}
	PointType             = &Schema{kind: schemaPoint}
	RectangleType         = &Schema{kind: schemaRectangle}
)

// ListOf declares a homogeneous list whose elements decode against elem.
func ListOf(elem *Schema) *Schema {
	return &Schema{kind: schemaList, elem: elem}
}

// SetOf declares a set whose elements decode against elem. The wire format
// has no set literal, so decoding yields elements in list order; the schema
// exists chiefly as the round-trip partner of the Set serialization rule.
func SetOf(elem *Schema) *Schema {
	return &Schema{kind: schemaSet, elem: elem}
}

// DictOf declares a record with arbitrary string keys whose values all
// decode against value.
func DictOf(value *Schema) *Schema {
	return &Schema{kind: schemaDict, elem: value}
}

// StructOf declares a record with a fixed set of fields. Record keys that
// match no declared field are ignored.
func StructOf(fields ...Field) *Schema {
	return &Schema{kind: schemaStruct, fields: fields}
}

// ClosedStructOf is StructOf with unknown record keys rejected.
func ClosedStructOf(fields ...Field) *Schema {
	return &Schema{kind: schemaStruct, fields: fields, closed: true}
}

// String renders the schema for error messages.
func (s *Schema) String() string {
	switch s.kind {
	case schemaAny:
		return "any"
	case schemaNull:
		return "missing value"
	case schemaBool:
		return "bool"
	case schemaInt:
		return "int"
	case schemaFloat:
		return "float"
	case schemaString:
		return "string"
	case schemaSpecifier:
		return "specifier"
	case schemaLocationSpecifier:
		return "location specifier"
	case schemaDate:
		return "date"
	case schemaFile:
		return "file"
	case schemaRecord:
		return "record"
	case schemaPoint:
		return "point"
	case schemaRectangle:
		return "rectangle"
	case schemaList:
		return "list of " + s.elem.String()
	case schemaSet:
		return "set of " + s.elem.String()
	case schemaDict:
		return "record of " + s.elem.String()
	case schemaStruct:
		names := make([]string, len(s.fields))
		for i, field := range s.fields {
			names[i] = field.Name
		}
		return "struct {" + strings.Join(names, ", ") + "}"
	}
	return "unknown"
}
