package contentstream

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// Operand is one of Number, Name, String or Array.
type Operand interface{ operand() }

type (
	Number float64
	Name   string
	String []byte
	Array  []Operand
)

func (Number) operand() {}
func (Name) operand()   {}
func (String) operand() {}
func (Array) operand()  {}

// Operation is an operator with its operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Parse splits a content stream into operations. Inline images and
// dictionaries are not supported; the streams written by Writer contain
// neither.
func Parse(stream []byte) ([]Operation, error) {
	p := &parser{src: stream}
	var (
		ops   []Operation
		stack []Operand
	)
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			break
		}
		operand, op, err := p.next()
		if err != nil {
			return nil, err
		}
		if operand != nil {
			stack = append(stack, operand)
			continue
		}
		ops = append(ops, Operation{Operator: op, Operands: stack})
		stack = nil
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("dangling operands: %d", len(stack))
	}
	return ops, nil
}

type parser struct {
	src []byte
	pos int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '%' {
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		p.pos++
	}
}

func (p *parser) word() string {
	start := p.pos
	for p.pos < len(p.src) && !isSpace(p.src[p.pos]) && !isDelim(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

// next returns either an operand or an operator name.
func (p *parser) next() (Operand, string, error) {
	c := p.src[p.pos]
	switch {
	case c == '/':
		p.pos++
		return Name(p.word()), "", nil
	case c == '(':
		s, err := p.literal()
		return s, "", err
	case c == '<':
		s, err := p.hexString()
		return s, "", err
	case c == '[':
		p.pos++
		var arr Array
		for {
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, "", fmt.Errorf("unterminated array")
			}
			if p.src[p.pos] == ']' {
				p.pos++
				return arr, "", nil
			}
			v, op, err := p.next()
			if err != nil {
				return nil, "", err
			}
			if v == nil {
				return nil, "", fmt.Errorf("operator %q inside array", op)
			}
			arr = append(arr, v)
		}
	case c == ']' || c == ')' || c == '>' || c == '{' || c == '}':
		return nil, "", fmt.Errorf("unexpected %q at offset %d", c, p.pos)
	}
	w := p.word()
	if w == "" {
		return nil, "", fmt.Errorf("unexpected %q at offset %d", c, p.pos)
	}
	if n, err := strconv.ParseFloat(w, 64); err == nil {
		return Number(n), "", nil
	}
	return nil, w, nil
}

func (p *parser) hexString() (String, error) {
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '>' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unterminated hex string")
	}
	digits := make([]byte, 0, p.pos-start+1)
	for _, c := range p.src[start:p.pos] {
		if !isSpace(c) {
			digits = append(digits, c)
		}
	}
	p.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("hex string: %w", err)
	}
	return out, nil
}

func (p *parser) literal() (String, error) {
	p.pos++
	var out []byte
	depth := 1
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out, nil
			}
		case '\\':
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("unterminated escape")
			}
			e := p.src[p.pos]
			p.pos++
			switch e {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '7'; i++ {
					v = v*8 + int(p.src[p.pos]-'0')
					p.pos++
				}
				c = byte(v)
			default:
				c = e
			}
		}
		out = append(out, c)
	}
	return nil, fmt.Errorf("unterminated string")
}
