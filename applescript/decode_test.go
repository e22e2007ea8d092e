package applescript

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadsAsNilSchemaIsConservative(t *testing.T) {
	value, err := LoadsAs("{1, 2}", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, value)
}

func TestLoadsAsPrimitiveKindsMatchExactly(t *testing.T) {
	value, err := LoadsAs("true", BoolType)
	require.NoError(t, err)
	assert.Equal(t, true, value)

	value, err = LoadsAs("7", IntType)
	require.NoError(t, err)
	assert.Equal(t, int64(7), value)

	value, err = LoadsAs("1.5", FloatType)
	require.NoError(t, err)
	assert.Equal(t, 1.5, value)

	value, err = LoadsAs(`"x"`, StringType)
	require.NoError(t, err)
	assert.Equal(t, "x", value)

	value, err = LoadsAs("missing value", NullType)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestLoadsAsRejectsKindCoercion(t *testing.T) {
	// Bool is never accepted where int is expected, and vice versa.
	_, err := LoadsAs("true", IntType)
	assert.ErrorContains(t, err, "does not match expected type")

	_, err = LoadsAs("1", BoolType)
	assert.ErrorContains(t, err, "does not match expected type")

	_, err = LoadsAs("1", FloatType)
	assert.ErrorContains(t, err, "does not match expected type")

	_, err = LoadsAs(`"x"`, IntType)
	assert.ErrorContains(t, err, "does not match expected type")
}

func TestLoadsAsDomainTypes(t *testing.T) {
	value, err := LoadsAs(`"2026-02-18"`, DateType)
	require.NoError(t, err)
	assert.Equal(t, Date("2026-02-18"), value)

	value, err = LoadsAs(`POSIX file "/tmp/a"`, FileType)
	require.NoError(t, err)
	assert.Equal(t, File("/tmp/a"), value)

	value, err = LoadsAs("{1, 2}", PointType)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 2}, value)

	value, err = LoadsAs("{1, 2, 3, 4}", RectangleType)
	require.NoError(t, err)
	assert.Equal(t, Rectangle{Left: 1, Top: 2, Right: 3, Bottom: 4}, value)

	value, err = LoadsAs("{foo:1}", RecordType)
	require.NoError(t, err)
	assert.Equal(t, NewRecord().Set("foo", int64(1)), value)
}

func TestLoadsAsCompositeSchemas(t *testing.T) {
	value, err := LoadsAs("{{1, 2}, {3, 4}}", ListOf(PointType))
	require.NoError(t, err)
	assert.Equal(t, []any{Point{X: 1, Y: 2}, Point{X: 3, Y: 4}}, value)

	value, err = LoadsAs(`{"a", "b"}`, SetOf(StringType))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, value)

	value, err = LoadsAs("{first:{1, 2, 3, 4}, second:{5, 6, 7, 8}}", DictOf(RectangleType))
	require.NoError(t, err)
	expected := NewRecord().
		Set("first", Rectangle{Left: 1, Top: 2, Right: 3, Bottom: 4}).
		Set("second", Rectangle{Left: 5, Top: 6, Right: 7, Bottom: 8})
	assert.Equal(t, expected, value)
}

func TestLoadsAsRawExpressionPolicy(t *testing.T) {
	value, err := LoadsAs("window 1", SpecifierType)
	require.NoError(t, err)
	assert.Equal(t, Specifier("window 1"), value)

	value, err = LoadsAs("location specifier", LocationSpecifierType)
	require.NoError(t, err)
	assert.Equal(t, LocationSpecifier("location specifier"), value)

	// Under a Record schema, an embedded raw expression stays verbatim text.
	value, err = LoadsAs("{target:window 1}", RecordType)
	require.NoError(t, err)
	assert.Equal(t, NewRecord().Set("target", "window 1"), value)

	// Only specifiers accept a bare raw expression.
	_, err = LoadsAs("window 1", IntType)
	assert.ErrorContains(t, err, "does not match expected type")

	_, err = LoadsAs("window 1", DateType)
	assert.ErrorContains(t, err, "does not match expected type")
}

func TestLoadsAsRawExpressionFallbackForUnterminatedLiterals(t *testing.T) {
	cases := []string{
		"missing value and more",
		"false condition",
		"12abc",
		"POSIX filesystem",
		`window "Main"`,
	}
	for _, source := range cases {
		value, err := LoadsAs(source, SpecifierType)
		require.NoError(t, err, "source %q", source)
		assert.Equal(t, Specifier(source), value, "source %q", source)
	}
}

func TestLoadsAsStructFields(t *testing.T) {
	schema := StructOf(
		Field{Name: "given_name", Alias: "given name", Schema: StringType},
	)
	value, err := LoadsAs(`{|given name|:"x"}`, schema)
	require.NoError(t, err)
	assert.Equal(t, NewRecord().Set("given_name", "x"), value)
}

func TestLoadsAsStructNestedDomainFields(t *testing.T) {
	schema := StructOf(
		Field{Name: "target", Alias: "target object", Schema: SpecifierType},
		Field{Name: "frame", Schema: RectangleType},
	)
	value, err := LoadsAs("{|target object|:window 1, frame:{1, 2, 3, 4}}", schema)
	require.NoError(t, err)
	expected := NewRecord().
		Set("target", Specifier("window 1")).
		Set("frame", Rectangle{Left: 1, Top: 2, Right: 3, Bottom: 4})
	assert.Equal(t, expected, value)

	listValue, err := LoadsAs(
		`{{|given name|:"a"}, {|given name|:"b"}}`,
		ListOf(StructOf(Field{Name: "given_name", Alias: "given name", Schema: StringType})),
	)
	require.NoError(t, err)
	assert.Equal(t, []any{
		NewRecord().Set("given_name", "a"),
		NewRecord().Set("given_name", "b"),
	}, listValue)
}

func TestLoadsAsAliasIsExclusiveNotAFallback(t *testing.T) {
	schema := StructOf(
		Field{Name: "given_name", Alias: "given name", Schema: StringType},
	)
	// The bare field name must be rejected once an alias is declared.
	_, err := LoadsAs(`{given_name:"x"}`, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match expected type")
}

func TestLoadsAsStructExtrasPolicy(t *testing.T) {
	fields := []Field{{Name: "foo", Schema: IntType}}

	value, err := LoadsAs(`{foo:1, extra:"x"}`, StructOf(fields...))
	require.NoError(t, err)
	assert.Equal(t, NewRecord().Set("foo", int64(1)), value)

	_, err = LoadsAs(`{foo:1, extra:"x"}`, ClosedStructOf(fields...))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected key")
}

func TestLoadsAsStructOptionalFields(t *testing.T) {
	schema := StructOf(
		Field{Name: "foo", Schema: IntType},
		Field{Name: "bar", Schema: StringType, Optional: true},
	)
	value, err := LoadsAs("{foo:1}", schema)
	require.NoError(t, err)
	assert.Equal(t, NewRecord().Set("foo", int64(1)), value)

	_, err = LoadsAs(`{bar:"x"}`, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field")
}

func TestLoadsAsDecodeErrorWrapsCause(t *testing.T) {
	_, err := LoadsAs(`"x"`, IntType)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "int", decodeErr.Expected)
	assert.Error(t, decodeErr.Cause)
	assert.Contains(t, decodeErr.Cause.Error(), "position")
}

func TestLoadsAsParseErrorsAreNotDecodeErrors(t *testing.T) {
	_, err := LoadsAs("{foo:}", RecordType)
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	var decodeErr *DecodeError
	assert.False(t, errors.As(err, &decodeErr))
}

func TestRoundTripWithExpectedSchemas(t *testing.T) {
	cases := []struct {
		value  any
		schema *Schema
	}{
		{nil, NullType},
		{true, BoolType},
		{int64(42), IntType},
		{1.5, FloatType},
		{2.0, FloatType},
		{"plain", StringType},
		{`with "quotes" inside`, StringType},
		{Date("2026-02-18"), DateType},
		{File("/tmp/a"), FileType},
		{Point{X: 1, Y: 2}, PointType},
		{Rectangle{Left: 1, Top: 2, Right: 3, Bottom: 4}, RectangleType},
		{Specifier("window 1"), SpecifierType},
		{[]any{int64(1), "a", false}, Any},
	}
	for _, tc := range cases {
		expression, err := Dumps(tc.value)
		require.NoError(t, err)
		decoded, err := LoadsAs(expression, tc.schema)
		require.NoError(t, err, "expression %q", expression)
		assert.Equal(t, tc.value, decoded, "expression %q", expression)
	}
}

func TestRoundTripRecords(t *testing.T) {
	original := NewRecord().Set("foo", int64(1)).Set("given name", "x")
	expression, err := Dumps(original)
	require.NoError(t, err)
	assert.Equal(t, `{foo:1, |given name|:"x"}`, expression)

	decoded, err := LoadsAs(expression, RecordType)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestRoundTripStructWithAliases(t *testing.T) {
	expression, err := Dumps(aliasPayload{GivenName: "x"})
	require.NoError(t, err)

	decoded, err := LoadsAs(expression, StructOf(
		Field{Name: "GivenName", Alias: "given name", Schema: StringType},
	))
	require.NoError(t, err)
	assert.Equal(t, NewRecord().Set("GivenName", "x"), decoded)
}
