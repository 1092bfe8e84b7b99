package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// NTriplesParser is a strict N-Triples parser.
// N-Triples format: <subject> <predicate> <object> .
type NTriplesParser struct {
	input  string
	pos    int
	length int
}

// NewNTriplesParser creates a new N-Triples parser
func NewNTriplesParser(input string) *NTriplesParser {
	return &NTriplesParser{
		input:  input,
		pos:    0,
		length: len(input),
	}
}

// Parse parses the N-Triples document and returns triples
func (p *NTriplesParser) Parse() ([]*Triple, error) {
	var triples []*Triple

	for p.pos < p.length {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		triple, err := p.parseTriple()
		if err != nil {
			return nil, err
		}
		triples = append(triples, triple)
	}

	return triples, nil
}

func (p *NTriplesParser) parseTriple() (*Triple, error) {
	subject, err := p.parseSubject()
	if err != nil {
		return nil, err
	}
	p.skipWhitespaceAndComments()

	predicate, err := p.parseIRI()
	if err != nil {
		return nil, fmt.Errorf("parsing predicate: %w", err)
	}
	p.skipWhitespaceAndComments()

	object, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	p.skipWhitespaceAndComments()

	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, fmt.Errorf("expected '.' at end of statement at position %d", p.pos)
	}
	p.pos++

	return NewTriple(subject, predicate, object), nil
}

func (p *NTriplesParser) parseSubject() (Term, error) {
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input parsing subject")
	}
	switch p.input[p.pos] {
	case '<':
		return p.parseIRI()
	case '_':
		return p.parseBlankNode()
	default:
		return nil, fmt.Errorf("invalid subject at position %d: %q", p.pos, p.input[p.pos])
	}
}

func (p *NTriplesParser) parseObject() (Term, error) {
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input parsing object")
	}
	switch p.input[p.pos] {
	case '<':
		return p.parseIRI()
	case '_':
		return p.parseBlankNode()
	case '"':
		return p.parseLiteral()
	default:
		return nil, fmt.Errorf("invalid object at position %d: %q", p.pos, p.input[p.pos])
	}
}

func (p *NTriplesParser) parseIRI() (*NamedNode, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return nil, fmt.Errorf("expected '<' at position %d", p.pos)
	}
	p.pos++

	start := p.pos
	for p.pos < p.length && p.input[p.pos] != '>' {
		p.pos++
	}
	if p.pos >= p.length {
		return nil, fmt.Errorf("unterminated IRI starting at position %d", start)
	}
	iri := p.input[start:p.pos]
	p.pos++

	return NewNamedNode(iri), nil
}

func (p *NTriplesParser) parseBlankNode() (*BlankNode, error) {
	if p.pos+1 >= p.length || p.input[p.pos] != '_' || p.input[p.pos+1] != ':' {
		return nil, fmt.Errorf("expected '_:' at position %d", p.pos)
	}
	p.pos += 2

	start := p.pos
	for p.pos < p.length && !isWhitespace(p.input[p.pos]) && p.input[p.pos] != '.' {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("empty blank node label at position %d", start)
	}

	return NewBlankNode(p.input[start:p.pos]), nil
}

func (p *NTriplesParser) parseLiteral() (*Literal, error) {
	value, err := p.parseQuotedString()
	if err != nil {
		return nil, err
	}

	// Optional language tag or datatype
	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++
		start := p.pos
		for p.pos < p.length && !isWhitespace(p.input[p.pos]) && p.input[p.pos] != '.' {
			p.pos++
		}
		if p.pos == start {
			return nil, fmt.Errorf("empty language tag at position %d", start)
		}
		return NewLiteralWithLanguage(value, p.input[start:p.pos]), nil
	}

	if p.pos+1 < p.length && p.input[p.pos] == '^' && p.input[p.pos+1] == '^' {
		p.pos += 2
		datatype, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("parsing literal datatype: %w", err)
		}
		return NewLiteralWithDatatype(value, datatype), nil
	}

	return NewLiteral(value), nil
}

func (p *NTriplesParser) parseQuotedString() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '"' {
		return "", fmt.Errorf("expected '\"' at position %d", p.pos)
	}
	p.pos++

	var sb strings.Builder
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == '"' {
			p.pos++
			return sb.String(), nil
		}
		if ch == '\\' {
			unescaped, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(unescaped)
			continue
		}
		sb.WriteByte(ch)
		p.pos++
	}
	return "", fmt.Errorf("unterminated string literal")
}

func (p *NTriplesParser) parseEscape() (rune, error) {
	p.pos++ // skip backslash
	if p.pos >= p.length {
		return 0, fmt.Errorf("incomplete escape sequence at end of input")
	}
	ch := p.input[p.pos]
	p.pos++

	switch ch {
	case 't':
		return '\t', nil
	case 'b':
		return '\b', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	case 'u':
		return p.parseUnicodeEscape(4)
	case 'U':
		return p.parseUnicodeEscape(8)
	default:
		return 0, fmt.Errorf("invalid escape sequence '\\%c'", ch)
	}
}

func (p *NTriplesParser) parseUnicodeEscape(digits int) (rune, error) {
	if p.pos+digits > p.length {
		return 0, fmt.Errorf("incomplete unicode escape at position %d", p.pos)
	}
	hex := p.input[p.pos : p.pos+digits]
	code, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid unicode escape \\u%s: %w", hex, err)
	}
	p.pos += digits
	return rune(code), nil
}

func (p *NTriplesParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if isWhitespace(ch) {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
