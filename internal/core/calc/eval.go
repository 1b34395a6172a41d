// Package calc evaluates arithmetic expressions for the calculate tool.
//
// The grammar covers the four basic operators plus the compound forms
// "**" (power) and "//" (floor division), parentheses, unary minus and
// decimal literals. Input is restricted to a fixed character set before
// parsing, so the evaluator never sees anything it cannot handle.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// allowedChars is the complete input alphabet for Evaluate.
const allowedChars = "0123456789+-*/() ."

var (
	// ErrInvalidCharacters is returned when the expression contains a
	// character outside the allowed set, before any parsing happens.
	ErrInvalidCharacters = errors.New("expression contains invalid characters")

	// ErrDivisionByZero is returned when evaluation divides by zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// SyntaxError describes a malformed expression and where it went wrong.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid syntax at position %d: %s", e.Pos, e.Msg)
}

// Evaluate parses and computes the given arithmetic expression.
func Evaluate(expression string) (float64, error) {
	for _, r := range expression {
		if !strings.ContainsRune(allowedChars, r) {
			return 0, ErrInvalidCharacters
		}
	}

	p := &parser{input: expression}
	p.next()
	value, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, &SyntaxError{Pos: p.tok.pos, Msg: "unexpected " + p.tok.describe()}
	}
	return value, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokStarStar
	tokSlashSlash
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	pos   int
	value float64
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokPlus:
		return `"+"`
	case tokMinus:
		return `"-"`
	case tokStar:
		return `"*"`
	case tokSlash:
		return `"/"`
	case tokStarStar:
		return `"**"`
	case tokSlashSlash:
		return `"//"`
	case tokLParen:
		return `"("`
	default:
		return `")"`
	}
}

type parser struct {
	input string
	pos   int
	tok   token
	err   error
}

// next advances to the following token. A malformed number literal is
// the only lexing failure; it is recorded in p.err and reported by
// parsePrimary.
func (p *parser) next() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	switch c := p.input[p.pos]; c {
	case '+':
		p.pos++
		p.tok = token{kind: tokPlus, pos: start}
	case '-':
		p.pos++
		p.tok = token{kind: tokMinus, pos: start}
	case '*':
		p.pos++
		if p.pos < len(p.input) && p.input[p.pos] == '*' {
			p.pos++
			p.tok = token{kind: tokStarStar, pos: start}
		} else {
			p.tok = token{kind: tokStar, pos: start}
		}
	case '/':
		p.pos++
		if p.pos < len(p.input) && p.input[p.pos] == '/' {
			p.pos++
			p.tok = token{kind: tokSlashSlash, pos: start}
		} else {
			p.tok = token{kind: tokSlash, pos: start}
		}
	case '(':
		p.pos++
		p.tok = token{kind: tokLParen, pos: start}
	case ')':
		p.pos++
		p.tok = token{kind: tokRParen, pos: start}
	default:
		for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
		if err != nil {
			p.err = &SyntaxError{Pos: start, Msg: "malformed number"}
		}
		p.tok = token{kind: tokNumber, pos: start, value: v}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseExpr implements precedence climbing. minPrec is 0 for additive
// context and 1 for multiplicative context.
func (p *parser) parseExpr(minPrec int) (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		var prec int
		switch p.tok.kind {
		case tokPlus, tokMinus:
			prec = 0
		case tokStar, tokSlash, tokSlashSlash:
			prec = 1
		default:
			return left, nil
		}
		if prec < minPrec {
			return left, nil
		}

		op := p.tok.kind
		opPos := p.tok.pos
		p.next()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return 0, err
		}

		switch op {
		case tokPlus:
			left += right
		case tokMinus:
			left -= right
		case tokStar:
			left *= right
		case tokSlash:
			if right == 0 {
				return 0, fmt.Errorf("at position %d: %w", opPos, ErrDivisionByZero)
			}
			left /= right
		case tokSlashSlash:
			if right == 0 {
				return 0, fmt.Errorf("at position %d: %w", opPos, ErrDivisionByZero)
			}
			left = math.Floor(left / right)
		}
	}
}

// parseUnary handles unary sign. A leading minus binds looser than "**"
// on its right, so -2**2 is -(2**2).
func (p *parser) parseUnary() (float64, error) {
	switch p.tok.kind {
	case tokMinus:
		p.next()
		v, err := p.parseUnary()
		return -v, err
	case tokPlus:
		p.next()
		return p.parseUnary()
	default:
		return p.parsePower()
	}
}

// parsePower handles "**", which is right-associative and whose exponent
// may itself carry a unary sign (2**-3).
func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokStarStar {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) parsePrimary() (float64, error) {
	switch p.tok.kind {
	case tokNumber:
		if p.err != nil {
			return 0, p.err
		}
		v := p.tok.value
		p.next()
		return v, nil
	case tokLParen:
		open := p.tok.pos
		p.next()
		v, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			return 0, &SyntaxError{Pos: open, Msg: "unclosed parenthesis"}
		}
		p.next()
		return v, nil
	default:
		return 0, &SyntaxError{Pos: p.tok.pos, Msg: "expected number, got " + p.tok.describe()}
	}
}
