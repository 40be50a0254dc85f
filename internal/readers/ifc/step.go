package ifc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// STEP (ISO-10303-21) value model.
type (
	// ref is an instance reference, #123.
	ref int64

	// enum is an enumeration literal, .T. or .ELEMENT.
	enum string

	// typed is a typed parameter such as IFCLABEL('x').
	typed struct {
		Name string
		Args []any
	}

	// entity is one simple instance of the DATA section.
	entity struct {
		ID   int64
		Type string
		Args []any
	}
)

// model holds the parsed instances of a STEP file.
type model struct {
	entities map[int64]*entity
	order    []int64
}

func (m *model) get(v any) *entity {
	r, ok := v.(ref)
	if !ok {
		return nil
	}
	return m.entities[int64(r)]
}

type parser struct {
	data []byte
	pos  int
}

// parseSTEP parses every simple entity instance in data.
// Header statements and complex instances are skipped.
func parseSTEP(data []byte) (*model, error) {
	p := &parser{data: data}
	m := &model{entities: make(map[int64]*entity)}

	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		if p.peek() != '#' {
			p.skipStatement()
			continue
		}
		e, err := p.entity()
		if err != nil {
			return nil, err
		}
		if e == nil {
			continue
		}
		if _, dup := m.entities[e.ID]; !dup {
			m.order = append(m.order, e.ID)
		}
		m.entities[e.ID] = e
	}
	return m, nil
}

func (p *parser) eof() bool  { return p.pos >= len(p.data) }
func (p *parser) peek() byte { return p.data[p.pos] }

func (p *parser) errorf(at int, format string, args ...any) error {
	line := bytes.Count(p.data[:min(at, len(p.data))], []byte("\n")) + 1
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

func (p *parser) consume(c byte) bool {
	if !p.eof() && p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for !p.eof() {
		c := p.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.pos++
		case c == '/' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '*':
			end := bytes.Index(p.data[p.pos+2:], []byte("*/"))
			if end < 0 {
				p.pos = len(p.data)
				return
			}
			p.pos += end + 4
		default:
			return
		}
	}
}

// skipStatement advances past the next ';' outside a string literal.
func (p *parser) skipStatement() {
	quoted := false
	for !p.eof() {
		c := p.peek()
		p.pos++
		switch {
		case c == '\'':
			quoted = !quoted
		case c == ';' && !quoted:
			return
		}
	}
}

func (p *parser) entity() (*entity, error) {
	start := p.pos
	p.pos++ // '#'

	id, ok := p.integer()
	if !ok {
		return nil, p.errorf(start, "invalid instance name")
	}
	p.skipSpace()
	if !p.consume('=') {
		return nil, p.errorf(start, "expected '=' after #%d", id)
	}
	p.skipSpace()
	if !p.eof() && p.peek() == '(' {
		p.skipStatement()
		return nil, nil
	}

	name := p.ident()
	if name == "" {
		return nil, p.errorf(start, "missing entity type for #%d", id)
	}
	p.skipSpace()
	args, err := p.list()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.consume(';') {
		return nil, p.errorf(start, "expected ';' after #%d", id)
	}
	return &entity{ID: id, Type: strings.ToUpper(name), Args: args}, nil
}

func (p *parser) list() ([]any, error) {
	start := p.pos
	if !p.consume('(') {
		return nil, p.errorf(start, "expected '('")
	}
	var items []any
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf(start, "unterminated parameter list")
		}
		if p.consume(')') {
			return items, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if !p.eof() && p.peek() == ')' {
			continue
		}
		return nil, p.errorf(p.pos, "expected ',' or ')'")
	}
}

func (p *parser) value() (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf(p.pos, "unexpected end of data")
	}
	c := p.peek()
	switch {
	case c == '$' || c == '*':
		p.pos++
		return nil, nil
	case c == '#':
		start := p.pos
		p.pos++
		id, ok := p.integer()
		if !ok {
			return nil, p.errorf(start, "invalid reference")
		}
		return ref(id), nil
	case c == '\'':
		return p.str()
	case c == '"':
		end := bytes.IndexByte(p.data[p.pos+1:], '"')
		if end < 0 {
			return nil, p.errorf(p.pos, "unterminated binary")
		}
		v := string(p.data[p.pos+1 : p.pos+1+end])
		p.pos += end + 2
		return v, nil
	case c == '.':
		end := bytes.IndexByte(p.data[p.pos+1:], '.')
		if end < 0 {
			return nil, p.errorf(p.pos, "unterminated enumeration")
		}
		v := enum(p.data[p.pos+1 : p.pos+1+end])
		p.pos += end + 2
		return v, nil
	case c == '(':
		return p.list()
	case c == '-' || c == '+' || isDigit(c):
		return p.number()
	case isLetter(c):
		name := p.ident()
		p.skipSpace()
		args, err := p.list()
		if err != nil {
			return nil, err
		}
		return typed{Name: strings.ToUpper(name), Args: args}, nil
	}
	return nil, p.errorf(p.pos, "unexpected character %q", c)
}

func (p *parser) str() (string, error) {
	start := p.pos
	p.pos++
	var b []byte
	for !p.eof() {
		c := p.peek()
		if c == '\'' {
			if p.pos+1 < len(p.data) && p.data[p.pos+1] == '\'' {
				b = append(b, '\'')
				p.pos += 2
				continue
			}
			p.pos++
			return decodeString(string(b)), nil
		}
		b = append(b, c)
		p.pos++
	}
	return "", p.errorf(start, "unterminated string")
}

func (p *parser) number() (any, error) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if isDigit(c) || c == '.' || c == '-' || c == '+' || c == 'E' || c == 'e' {
			p.pos++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(string(p.data[start:p.pos]), 64)
	if err != nil {
		return nil, p.errorf(start, "invalid number %q", p.data[start:p.pos])
	}
	return f, nil
}

func (p *parser) integer() (int64, bool) {
	start := p.pos
	for !p.eof() && isDigit(p.peek()) {
		p.pos++
	}
	if start == p.pos {
		return 0, false
	}
	n, err := strconv.ParseInt(string(p.data[start:p.pos]), 10, 64)
	return n, err == nil
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if isLetter(c) || isDigit(c) || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return string(p.data[start:p.pos])
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }

// decodeString resolves the STEP string control directives
// \X2\..\X0\ (UTF-16), \X\hh (ISO 8859-1), \S\c and \\.
func decodeString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, `\X2\`):
			end := strings.Index(rest[4:], `\X0\`)
			if end < 0 {
				b.WriteString(rest)
				return b.String()
			}
			digits := rest[4 : 4+end]
			units := make([]uint16, 0, len(digits)/4)
			for j := 0; j+4 <= len(digits); j += 4 {
				u, err := strconv.ParseUint(digits[j:j+4], 16, 16)
				if err != nil {
					break
				}
				units = append(units, uint16(u))
			}
			b.WriteString(string(utf16.Decode(units)))
			i += 4 + end + 4
		case strings.HasPrefix(rest, `\X\`) && len(rest) >= 5:
			u, err := strconv.ParseUint(rest[3:5], 16, 8)
			if err != nil {
				b.WriteByte(s[i])
				i++
				continue
			}
			b.WriteRune(rune(u))
			i += 5
		case strings.HasPrefix(rest, `\S\`) && len(rest) >= 4:
			b.WriteRune(rune(rest[3]) + 128)
			i += 4
		case strings.HasPrefix(rest, `\\`):
			b.WriteByte('\\')
			i += 2
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}
