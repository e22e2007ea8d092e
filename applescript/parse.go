package applescript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// collectionDelimiters are the characters that terminate a value nested
// inside a braced list or record.
const collectionDelimiters = ",}"

var numberPattern = regexp.MustCompile(`^-?(?:[0-9]+\.[0-9]+|[0-9]+)(?:[eE][+-]?[0-9]+)?`)

// parseLiteral runs the single-pass recursive-descent parser over source and
// returns the untyped raw value tree. The entire input must be consumed.
// Object specifiers and any other open-ended expressions are captured
// verbatim as rawExpression nodes; deciding whether such a node is acceptable
// is the decoder's job.
func parseLiteral(source string) (rawValue, error) {
	p := &parser{source: source}
	p.skipWhitespace()
	value, err := p.parseValue("", 0)
	if err != nil {
		return rawValue{}, err
	}
	p.skipWhitespace()
	if !p.atEnd() {
		return rawValue{}, p.errorf("Unexpected trailing content")
	}
	return value, nil
}

type parser struct {
	source string
	index  int
}

func (p *parser) parseValue(delimiters string, depth int) (rawValue, error) {
	p.skipWhitespace()
	if p.atEnd() {
		return rawValue{}, p.errorf("Unexpected end of input")
	}
	if depth > maxDepth {
		return rawValue{}, p.errorf("Maximum nesting depth exceeded")
	}

	switch p.peek() {
	case '{':
		return p.parseBraced(delimiters, depth)
	case '"':
		pos := p.index
		text, err := p.parseStringExpression()
		if err != nil {
			return rawValue{}, err
		}
		return rawValue{kind: rawString, pos: pos, strVal: text}, nil
	}

	tryParsers := []func(string) (rawValue, bool, error){
		p.tryParsePosixFile,
		p.tryParseMissingValue,
		p.tryParseBoolean,
		p.tryParseNumber,
	}
	for _, tryParse := range tryParsers {
		value, matched, err := tryParse(delimiters)
		if err != nil {
			return rawValue{}, err
		}
		if matched {
			return value, nil
		}
	}

	return p.parseRawExpression(delimiters)
}

func (p *parser) parseBraced(delimiters string, depth int) (rawValue, error) {
	pos := p.index
	p.index++ // consume '{'
	p.skipWhitespace()

	if p.atEnd() {
		return rawValue{}, p.errorf("Unexpected end of input")
	}
	if p.consumeIf("}") {
		return rawValue{kind: rawList, pos: pos}, nil
	}

	isRecord, err := p.looksLikeRecord()
	if err != nil {
		return rawValue{}, err
	}
	if isRecord {
		return p.parseRecord(pos, depth)
	}
	return p.parseList(pos, depth)
}

func (p *parser) parseList(pos, depth int) (rawValue, error) {
	var items []rawValue
	for {
		item, err := p.parseValue(collectionDelimiters, depth+1)
		if err != nil {
			return rawValue{}, err
		}
		items = append(items, item)
		p.skipWhitespace()

		if p.consumeIf("}") {
			return rawValue{kind: rawList, pos: pos, list: items}, nil
		}
		if !p.consumeIf(",") {
			return rawValue{}, p.errorf("Expected ',' or '}' after list item")
		}

		p.skipWhitespace()
		if p.atEnd() || p.peek() == '}' {
			return rawValue{}, p.errorf("Trailing comma in list")
		}
	}
}

func (p *parser) parseRecord(pos, depth int) (rawValue, error) {
	var fields []rawField
	indexByKey := map[string]int{}
	itemIndex := 0

	for {
		key, err := p.parseRecordKey(itemIndex)
		if err != nil {
			return rawValue{}, err
		}
		p.skipWhitespace()
		if !p.consumeIf(":") {
			return rawValue{}, p.errorf("Expected ':' after record key at item %d", itemIndex)
		}

		p.skipWhitespace()
		value, err := p.parseValue(collectionDelimiters, depth+1)
		if err != nil {
			return rawValue{}, err
		}
		if existing, ok := indexByKey[key]; ok {
			fields[existing].value = value
		} else {
			indexByKey[key] = len(fields)
			fields = append(fields, rawField{key: key, value: value})
		}
		itemIndex++
		p.skipWhitespace()

		if p.consumeIf("}") {
			return rawValue{kind: rawRecord, pos: pos, fields: fields}, nil
		}
		if !p.consumeIf(",") {
			return rawValue{}, p.errorf("Expected ',' or '}' after record item")
		}

		p.skipWhitespace()
		if p.atEnd() || p.peek() == '}' {
			return rawValue{}, p.errorf("Trailing comma in record")
		}
	}
}

// looksLikeRecord peeks ahead from the first element of a braced value: a
// record starts with `identifier:` or `|label|:`, anything else is a list.
func (p *parser) looksLikeRecord() (bool, error) {
	current := p.peek()
	if current == '|' {
		closing := strings.IndexByte(p.source[p.index+1:], '|')
		if closing == -1 {
			return false, p.errorf("Unterminated pipe label in record key")
		}
		probe := p.skipWhitespaceFrom(p.index + 1 + closing + 1)
		return probe < len(p.source) && p.source[probe] == ':', nil
	}

	if !isIdentifierStartChar(current) {
		return false, nil
	}

	probe := p.index + 1
	for probe < len(p.source) && isIdentifierPartChar(p.source[probe]) {
		probe++
	}
	probe = p.skipWhitespaceFrom(probe)
	return probe < len(p.source) && p.source[probe] == ':', nil
}

func (p *parser) parseRecordKey(itemIndex int) (string, error) {
	keyPos := p.index
	if p.atEnd() {
		return "", p.errorAt(keyPos, "Invalid record key at item %d", itemIndex)
	}

	if p.peek() == '|' {
		p.index++
		keyStart := p.index
		closing := strings.IndexByte(p.source[keyStart:], '|')
		if closing == -1 {
			return "", p.errorAt(keyPos, "Invalid record key at item %d: missing closing '|'", itemIndex)
		}
		key := p.source[keyStart : keyStart+closing]
		p.index = keyStart + closing + 1
		return key, nil
	}

	if !isIdentifierStartChar(p.peek()) {
		return "", p.errorAt(keyPos, "Invalid record key at item %d: expected identifier or pipe label", itemIndex)
	}

	start := p.index
	p.index++
	for !p.atEnd() && isIdentifierPartChar(p.source[p.index]) {
		p.index++
	}
	return p.source[start:p.index], nil
}

// parseStringExpression parses a quoted string, optionally followed by any
// number of `& quote & "<more>"` segments. The interpreter has no backslash
// escape for embedded quotes; Dumps encodes them through the built-in quote
// constant and this reverses it.
func (p *parser) parseStringExpression() (string, error) {
	part, err := p.parseStringLiteral()
	if err != nil {
		return "", err
	}
	parts := []string{part}

	for {
		p.skipWhitespace()
		if !p.consumeIf("&") {
			return strings.Join(parts, `"`), nil
		}

		p.skipWhitespace()
		if !strings.HasPrefix(p.source[p.index:], "quote") {
			return "", p.errorf("Expected 'quote' in string concatenation")
		}
		p.index += len("quote")
		p.skipWhitespace()
		if !p.consumeIf("&") {
			return "", p.errorf("Expected '&' after 'quote' in string concatenation")
		}
		p.skipWhitespace()
		part, err = p.parseStringLiteral()
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
}

func (p *parser) parseStringLiteral() (string, error) {
	if !p.consumeIf(`"`) {
		return "", p.errorf(`Expected '"'`)
	}
	literalStart := p.index
	closing := strings.IndexByte(p.source[literalStart:], '"')
	if closing == -1 {
		return "", p.errorAt(literalStart-1, "Unterminated string literal")
	}

	p.index = literalStart + closing + 1
	return p.source[literalStart : literalStart+closing], nil
}

func (p *parser) tryParseMissingValue(delimiters string) (rawValue, bool, error) {
	const keyword = "missing value"
	if !strings.HasPrefix(p.source[p.index:], keyword) {
		return rawValue{}, false, nil
	}

	tokenEnd := p.index + len(keyword)
	if !p.isValueTerminated(tokenEnd, delimiters) {
		return rawValue{}, false, nil
	}

	pos := p.index
	p.index = tokenEnd
	return rawValue{kind: rawNull, pos: pos}, true, nil
}

func (p *parser) tryParseBoolean(delimiters string) (rawValue, bool, error) {
	for _, keyword := range []string{"true", "false"} {
		if !strings.HasPrefix(p.source[p.index:], keyword) {
			continue
		}
		tokenEnd := p.index + len(keyword)
		if !p.isValueTerminated(tokenEnd, delimiters) {
			continue
		}
		pos := p.index
		p.index = tokenEnd
		return rawValue{kind: rawBool, pos: pos, boolVal: keyword == "true"}, true, nil
	}
	return rawValue{}, false, nil
}

func (p *parser) tryParseNumber(delimiters string) (rawValue, bool, error) {
	token := numberPattern.FindString(p.source[p.index:])
	if token == "" {
		return rawValue{}, false, nil
	}

	tokenEnd := p.index + len(token)
	if !p.isValueTerminated(tokenEnd, delimiters) {
		return rawValue{}, false, nil
	}

	pos := p.index
	p.index = tokenEnd
	if strings.ContainsAny(token, ".eE") {
		floatVal, err := parseFloatToken(token)
		if err != nil {
			return rawValue{}, false, p.errorAt(pos, "Invalid number literal")
		}
		return rawValue{kind: rawFloat, pos: pos, floatVal: floatVal}, true, nil
	}
	intVal, err := parseIntToken(token)
	if err != nil {
		// Out of int64 range; fall back to float, mirroring the
		// interpreter's own drift into reals for large magnitudes.
		floatVal, ferr := parseFloatToken(token)
		if ferr != nil {
			return rawValue{}, false, p.errorAt(pos, "Invalid number literal")
		}
		return rawValue{kind: rawFloat, pos: pos, floatVal: floatVal}, true, nil
	}
	return rawValue{kind: rawInt, pos: pos, intVal: intVal}, true, nil
}

func (p *parser) tryParsePosixFile(delimiters string) (rawValue, bool, error) {
	const keyword = "POSIX file"
	if !strings.HasPrefix(p.source[p.index:], keyword) {
		return rawValue{}, false, nil
	}

	tokenEnd := p.index + len(keyword)
	if tokenEnd >= len(p.source) || !isSpaceChar(p.source[tokenEnd]) {
		return rawValue{}, false, nil
	}

	pos := p.index
	p.index = p.skipWhitespaceFrom(tokenEnd)
	if p.atEnd() || p.peek() != '"' {
		return rawValue{}, false, p.errorf("Expected string expression after 'POSIX file'")
	}

	path, err := p.parseStringExpression()
	if err != nil {
		return rawValue{}, false, err
	}
	if !p.isValueTerminated(p.index, delimiters) {
		return rawValue{}, false, p.errorf("Unexpected content after POSIX file literal")
	}
	return rawValue{kind: rawPosixFile, pos: pos, strVal: path}, true, nil
}

// parseRawExpression captures the longest run of text up to the next
// delimiter at the current nesting level, skipping over embedded string
// literals so a quote inside a specifier does not end the capture early.
func (p *parser) parseRawExpression(delimiters string) (rawValue, error) {
	start := p.index
	for !p.atEnd() {
		current := p.peek()
		if strings.IndexByte(delimiters, current) >= 0 {
			break
		}
		if current == '"' {
			if _, err := p.parseStringLiteral(); err != nil {
				return rawValue{}, err
			}
			continue
		}
		p.index++
	}

	expression := strings.TrimSpace(p.source[start:p.index])
	if expression == "" {
		if !p.atEnd() && strings.IndexByte(delimiters, p.peek()) >= 0 {
			return rawValue{}, p.errorf("Expected AppleScript value")
		}
		return rawValue{}, p.errorf("Expected AppleScript expression")
	}
	return rawValue{kind: rawExpression, pos: start, strVal: expression}, nil
}

func (p *parser) isValueTerminated(tokenEnd int, delimiters string) bool {
	probe := p.skipWhitespaceFrom(tokenEnd)
	if probe >= len(p.source) {
		return true
	}
	return strings.IndexByte(delimiters, p.source[probe]) >= 0
}

func (p *parser) consumeIf(token string) bool {
	if strings.HasPrefix(p.source[p.index:], token) {
		p.index += len(token)
		return true
	}
	return false
}

func (p *parser) peek() byte {
	return p.source[p.index]
}

func (p *parser) skipWhitespace() {
	p.index = p.skipWhitespaceFrom(p.index)
}

func (p *parser) skipWhitespaceFrom(start int) int {
	index := start
	for index < len(p.source) && isSpaceChar(p.source[index]) {
		index++
	}
	return index
}

func (p *parser) atEnd() bool {
	return p.index >= len(p.source)
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return p.errorAt(p.index, format, args...)
}

func (p *parser) errorAt(position int, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Position: position}
}

func parseIntToken(token string) (int64, error) {
	return strconv.ParseInt(token, 10, 64)
}

func parseFloatToken(token string) (float64, error) {
	return strconv.ParseFloat(token, 64)
}

func isSpaceChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isIdentifierStartChar(c byte) bool {
	return c == '_' || ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}

func isIdentifierPartChar(c byte) bool {
	return isIdentifierStartChar(c) || ('0' <= c && c <= '9')
}
