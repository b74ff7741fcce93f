package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Vars holds resolved template variables. A name lives in at most one map.
type Vars struct {
	Ints    map[string]int
	Strings map[string]string
}

func (v Vars) with(name string, val int) Vars {
	ints := make(map[string]int, len(v.Ints)+1)
	for k, x := range v.Ints {
		ints[k] = x
	}
	ints[name] = val
	return Vars{Ints: ints, Strings: v.Strings}
}

// EvalExpr evaluates an integer expression over +, -, *, parentheses,
// integer literals and int variables.
// Example: "(i-1)*7" with i=3 => 14
func EvalExpr(expr string, vars map[string]int) (int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}
	p := &exprParser{src: expr, vars: vars}
	val, err := p.sum()
	if err != nil {
		return 0, err
	}
	p.space()
	if p.pos < len(p.src) {
		return 0, fmt.Errorf("unexpected character at position %d: %c", p.pos, p.src[p.pos])
	}
	return val, nil
}

type exprParser struct {
	src  string
	pos  int
	vars map[string]int
}

func (p *exprParser) sum() (int, error) {
	acc, err := p.product()
	if err != nil {
		return 0, err
	}
	for {
		p.space()
		if p.pos >= len(p.src) || (p.src[p.pos] != '+' && p.src[p.pos] != '-') {
			return acc, nil
		}
		op := p.src[p.pos]
		p.pos++
		rhs, err := p.product()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			acc += rhs
		} else {
			acc -= rhs
		}
	}
}

func (p *exprParser) product() (int, error) {
	acc, err := p.atom()
	if err != nil {
		return 0, err
	}
	for {
		p.space()
		if p.pos >= len(p.src) || p.src[p.pos] != '*' {
			return acc, nil
		}
		p.pos++
		rhs, err := p.atom()
		if err != nil {
			return 0, err
		}
		acc *= rhs
	}
}

func (p *exprParser) atom() (int, error) {
	p.space()
	if p.pos >= len(p.src) {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	switch c := p.src[p.pos]; {
	case c == '(':
		p.pos++
		val, err := p.sum()
		if err != nil {
			return 0, err
		}
		p.space()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return 0, fmt.Errorf("expected ')' at position %d", p.pos)
		}
		p.pos++
		return val, nil
	case isDigit(c):
		start := p.pos
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
		return strconv.Atoi(p.src[start:p.pos])
	case isIdentStart(c):
		name := p.ident()
		val, ok := p.vars[name]
		if !ok {
			return 0, fmt.Errorf("undefined variable: %s", name)
		}
		return val, nil
	default:
		return 0, fmt.Errorf("unexpected character '%c' at position %d", c, p.pos)
	}
}

func (p *exprParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && (isIdentStart(p.src[p.pos]) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *exprParser) space() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Expand replaces every {...} block in s. A block holding just the name
// of a string variable becomes its value; anything else is evaluated as an
// integer expression.
// Example: "Visit {i} for {client}" => "Visit 2 for Ana"
func Expand(s string, vars Vars) (string, error) {
	var out strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '{' {
			out.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '}')
		if end < 0 {
			return "", fmt.Errorf("unmatched '{' at position %d", i)
		}
		body := s[i+1 : i+end]
		if str, ok := vars.Strings[strings.TrimSpace(body)]; ok {
			out.WriteString(str)
		} else {
			val, err := EvalExpr(body, vars.Ints)
			if err != nil {
				return "", fmt.Errorf("evaluating expression '%s': %w", body, err)
			}
			out.WriteString(strconv.Itoa(val))
		}
		i += end + 1
	}
	return out.String(), nil
}
