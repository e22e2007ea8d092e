package applescript

import (
	"fmt"
	"strings"
)

// Loads parses AppleScript literal source text and decodes it conservatively:
// primitives pass through, POSIX file literals become File, lists and records
// decode recursively. A raw expression anywhere in the tree is rejected,
// since it is inherently ambiguous without a declared target type.
func Loads(source string) (any, error) {
	raw, err := parseLiteral(source)
	if err != nil {
		return nil, err
	}
	return decodeConservative(raw)
}

// LoadsAs parses source and decodes the result against the expected schema.
// A nil schema behaves like Loads. Decode failures wrap the originating
// validation error as their cause.
func LoadsAs(source string, expected *Schema) (any, error) {
	raw, err := parseLiteral(source)
	if err != nil {
		return nil, err
	}
	if expected == nil {
		return decodeConservative(raw)
	}

	value, err := decodeTyped(raw, expected)
	if err != nil {
		return nil, &DecodeError{
			Source:   strings.TrimSpace(source),
			Expected: expected.String(),
			Cause:    err,
		}
	}
	return value, nil
}

func decodeConservative(raw rawValue) (any, error) {
	switch raw.kind {
	case rawNull:
		return nil, nil
	case rawBool:
		return raw.boolVal, nil
	case rawInt:
		return raw.intVal, nil
	case rawFloat:
		return raw.floatVal, nil
	case rawString:
		return raw.strVal, nil
	case rawPosixFile:
		return File(raw.strVal), nil
	case rawList:
		items := make([]any, 0, len(raw.list))
		for _, item := range raw.list {
			decoded, err := decodeConservative(item)
			if err != nil {
				return nil, err
			}
			items = append(items, decoded)
		}
		return items, nil
	case rawRecord:
		record := NewRecord()
		for _, field := range raw.fields {
			decoded, err := decodeConservative(field.value)
			if err != nil {
				return nil, err
			}
			record.Set(field.key, decoded)
		}
		return record, nil
	case rawExpression:
		return nil, &ParseError{
			Message:  "Raw AppleScript expression requires 'expected'",
			Position: raw.pos,
		}
	}
	return nil, fmt.Errorf("unhandled raw value kind %d", raw.kind)
}

// decodeLenient is the conservative walk with raw expressions materialized
// as their verbatim text. Used where the schema places no constraint on a
// value: inside Any, Record, and the values of open records.
func decodeLenient(raw rawValue) (any, error) {
	if raw.kind == rawExpression {
		return raw.strVal, nil
	}
	if raw.kind == rawList {
		items := make([]any, 0, len(raw.list))
		for _, item := range raw.list {
			decoded, err := decodeLenient(item)
			if err != nil {
				return nil, err
			}
			items = append(items, decoded)
		}
		return items, nil
	}
	if raw.kind == rawRecord {
		record := NewRecord()
		for _, field := range raw.fields {
			decoded, err := decodeLenient(field.value)
			if err != nil {
				return nil, err
			}
			record.Set(field.key, decoded)
		}
		return record, nil
	}
	return decodeConservative(raw)
}

func decodeTyped(raw rawValue, schema *Schema) (any, error) {
	switch schema.kind {
	case schemaAny:
		return decodeLenient(raw)

	case schemaNull:
		if raw.kind != rawNull {
			return nil, mismatch(raw, schema)
		}
		return nil, nil

	case schemaBool:
		if raw.kind != rawBool {
			return nil, mismatch(raw, schema)
		}
		return raw.boolVal, nil

	case schemaInt:
		if raw.kind != rawInt {
			return nil, mismatch(raw, schema)
		}
		return raw.intVal, nil

	case schemaFloat:
		if raw.kind != rawFloat {
			return nil, mismatch(raw, schema)
		}
		return raw.floatVal, nil

	case schemaString:
		if raw.kind != rawString {
			return nil, mismatch(raw, schema)
		}
		return raw.strVal, nil

	case schemaSpecifier:
		// Specifiers are exactly what the parser cannot fully resolve,
		// so a bare raw expression is accepted verbatim here.
		switch raw.kind {
		case rawString, rawExpression:
			return Specifier(raw.strVal), nil
		}
		return nil, mismatch(raw, schema)

	case schemaLocationSpecifier:
		switch raw.kind {
		case rawString, rawExpression:
			return LocationSpecifier(raw.strVal), nil
		}
		return nil, mismatch(raw, schema)

	case schemaDate:
		if raw.kind != rawString {
			return nil, mismatch(raw, schema)
		}
		return Date(raw.strVal), nil

	case schemaFile:
		switch raw.kind {
		case rawPosixFile, rawString:
			return File(raw.strVal), nil
		}
		return nil, mismatch(raw, schema)

	case schemaRecord:
		if raw.kind != rawRecord {
			return nil, mismatch(raw, schema)
		}
		record := NewRecord()
		for _, field := range raw.fields {
			decoded, err := decodeLenient(field.value)
			if err != nil {
				return nil, err
			}
			record.Set(field.key, decoded)
		}
		return record, nil

	case schemaPoint:
		coords, err := decodeIntTuple(raw, schema, 2)
		if err != nil {
			return nil, err
		}
		return Point{X: coords[0], Y: coords[1]}, nil

	case schemaRectangle:
		coords, err := decodeIntTuple(raw, schema, 4)
		if err != nil {
			return nil, err
		}
		return Rectangle{Left: coords[0], Top: coords[1], Right: coords[2], Bottom: coords[3]}, nil

	case schemaList, schemaSet:
		if raw.kind != rawList {
			return nil, mismatch(raw, schema)
		}
		items := make([]any, 0, len(raw.list))
		for _, item := range raw.list {
			decoded, err := decodeTyped(item, schema.elem)
			if err != nil {
				return nil, err
			}
			items = append(items, decoded)
		}
		return items, nil

	case schemaDict:
		if raw.kind != rawRecord {
			return nil, mismatch(raw, schema)
		}
		record := NewRecord()
		for _, field := range raw.fields {
			decoded, err := decodeTyped(field.value, schema.elem)
			if err != nil {
				return nil, err
			}
			record.Set(field.key, decoded)
		}
		return record, nil

	case schemaStruct:
		return decodeStruct(raw, schema)
	}
	return nil, fmt.Errorf("unhandled schema kind %d", schema.kind)
}

func decodeStruct(raw rawValue, schema *Schema) (any, error) {
	if raw.kind != rawRecord {
		return nil, mismatch(raw, schema)
	}

	// A declared alias is the only accepted key for its field; the bare
	// field name is intentionally not a fallback.
	declaredByKey := make(map[string]*Field, len(schema.fields))
	for i := range schema.fields {
		field := &schema.fields[i]
		key := field.Name
		if field.Alias != "" {
			key = field.Alias
		}
		declaredByKey[key] = field
	}

	record := NewRecord()
	present := make(map[string]bool, len(schema.fields))
	for _, entry := range raw.fields {
		declared, ok := declaredByKey[entry.key]
		if !ok {
			if schema.closed {
				return nil, fmt.Errorf("unexpected key %q (position %d)", entry.key, entry.value.pos)
			}
			continue
		}
		fieldSchema := declared.Schema
		if fieldSchema == nil {
			fieldSchema = Any
		}
		decoded, err := decodeTyped(entry.value, fieldSchema)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", declared.Name, err)
		}
		record.Set(declared.Name, decoded)
		present[declared.Name] = true
	}

	for _, field := range schema.fields {
		if field.Optional || present[field.Name] {
			continue
		}
		wireKey := field.Name
		if field.Alias != "" {
			wireKey = field.Alias
		}
		return nil, fmt.Errorf("missing required field %q (key %q)", field.Name, wireKey)
	}
	return record, nil
}

func decodeIntTuple(raw rawValue, schema *Schema, arity int) ([]int, error) {
	if raw.kind != rawList || len(raw.list) != arity {
		return nil, mismatch(raw, schema)
	}
	coords := make([]int, arity)
	for i, item := range raw.list {
		if item.kind != rawInt {
			return nil, mismatch(item, IntType)
		}
		coords[i] = int(item.intVal)
	}
	return coords, nil
}

func mismatch(raw rawValue, schema *Schema) error {
	return fmt.Errorf("expected %s, got %s (position %d)", schema, raw.describe(), raw.pos)
}
