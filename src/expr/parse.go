package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse turns a declarative criterion string into a Criterion. The grammar
// covers what catalog searches actually use:
//
//	criterion  = comparison { ("&&" | "and") comparison }
//	comparison = [ "(" ] operand op operand [ ")" ]
//	operand    = number | column | number "+" column | column "+" number
//	           | "'" text "'"
//	op         = ">" | ">=" | "<" | "<=" | "==" | "!="
//
// Column existence is not checked here; Validate does that against a
// concrete table.
func Parse(input string) (Criterion, error) {
	p := &parser{toks: tokenize(input), input: input}
	crit, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("criterion %q: trailing input at %q", input, p.peek())
	}
	return crit, nil
}

// MustParse is Parse for statically known criteria, panicking on error.
func MustParse(input string) Criterion {
	c, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return c
}

type parser struct {
	toks  []string
	pos   int
	input string
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() string {
	if p.done() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *parser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) parseConjunction() (Criterion, error) {
	first, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	parts := []Criterion{first}
	for p.peek() == "&&" || p.peek() == "and" {
		p.next()
		c, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return Conjunction(parts), nil
}

func (p *parser) parseComparison() (Criterion, error) {
	if p.peek() == "(" {
		p.next()
		c, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("criterion %q: missing closing parenthesis", p.input)
		}
		return c, nil
	}

	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Comparison{lhs, op, rhs}, nil
}

func (p *parser) parseOp() (Op, error) {
	switch p.next() {
	case ">":
		return OpGt, nil
	case ">=":
		return OpGe, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	case "==":
		return OpEq, nil
	case "!=":
		return OpNe, nil
	}
	return 0, fmt.Errorf("criterion %q: expected comparison operator", p.input)
}

func (p *parser) parseOperand() (Operand, error) {
	tok := p.next()
	if tok == "" {
		return Operand{}, fmt.Errorf("criterion %q: unexpected end of input", p.input)
	}

	if strings.HasPrefix(tok, "'") {
		return Text(strings.Trim(tok, "'")), nil
	}

	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		if p.peek() == "+" {
			p.next()
			col := p.next()
			if !isIdent(col) {
				return Operand{}, fmt.Errorf("criterion %q: expected column after +", p.input)
			}
			return ColPlus(v, col), nil
		}
		return Num(v), nil
	}

	if !isIdent(tok) {
		return Operand{}, fmt.Errorf("criterion %q: unexpected token %q", p.input, tok)
	}
	if p.peek() == "+" {
		p.next()
		lit := p.next()
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("criterion %q: expected number after +", p.input)
		}
		return ColPlus(v, tok), nil
	}
	return Col(tok), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// tokenize splits the input into operators, parentheses, quoted strings,
// numbers and identifiers.
func tokenize(input string) []string {
	var toks []string
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(' || c == ')' || c == '+':
			toks = append(toks, string(c))
			i++
		case c == '\'':
			j := i + 1
			for j < len(input) && input[j] != '\'' {
				j++
			}
			if j < len(input) {
				j++
			}
			toks = append(toks, input[i:j])
			i = j
		case c == '>' || c == '<' || c == '=' || c == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, input[i:i+2])
				i += 2
			} else {
				toks = append(toks, string(c))
				i++
			}
		case c == '&':
			if i+1 < len(input) && input[i+1] == '&' {
				toks = append(toks, "&&")
				i += 2
			} else {
				toks = append(toks, "&")
				i++
			}
		default:
			j := i
			for j < len(input) && input[j] != ' ' && input[j] != '\t' &&
				!strings.ContainsRune("()+><=!&'", rune(input[j])) {
				j++
			}
			toks = append(toks, input[i:j])
			i = j
		}
	}
	return toks
}
