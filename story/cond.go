package story

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/d5/tengo/v2"
)

const (
	resultVar = "__cond__"
	// varPrefix keeps story variables clear of tengo builtins such as len.
	varPrefix = "v_"
)

// reserved are tengo words a condition may not use as variable names.
var reserved = map[string]bool{
	"break": true, "continue": true, "else": true, "for": true, "func": true,
	"error": true, "immutable": true, "if": true, "return": true, "export": true,
	"in": true, "undefined": true, "import": true,
}

// Condition is a compiled boolean expression over story variables. The
// grammar is comparisons (== !=) of variables and literals combined with
// && || ! and parentheses. Undefined variables read as false.
type Condition struct {
	src      string
	idents   []string
	compiled *tengo.Compiled
}

// CompileCondition checks expr against the grammar and compiles it.
func CompileCondition(expr string) (*Condition, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &condParser{toks: toks}
	if err := p.parse(); err != nil {
		return nil, fmt.Errorf("condition %q: %w", expr, err)
	}

	var src strings.Builder
	seen := map[string]bool{}
	var idents []string
	for _, t := range toks {
		if t.kind != tokIdent {
			src.WriteString(t.text)
			src.WriteByte(' ')
			continue
		}
		if !seen[t.text] {
			seen[t.text] = true
			idents = append(idents, t.text)
		}
		src.WriteString(varPrefix + t.text)
		src.WriteByte(' ')
	}

	script := tengo.NewScript([]byte(fmt.Sprintf("%s := (%s)", resultVar, src.String())))
	for _, id := range idents {
		if err := script.Add(varPrefix+id, false); err != nil {
			return nil, fmt.Errorf("condition %q: %w", expr, err)
		}
	}
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", expr, err)
	}
	return &Condition{src: expr, idents: idents, compiled: compiled}, nil
}

func (c *Condition) String() string { return c.src }

// Eval evaluates the condition against vars. It does not modify vars and
// is safe to call from several runners sharing one Program.
func (c *Condition) Eval(vars map[string]any) (bool, error) {
	run := c.compiled.Clone()
	for _, id := range c.idents {
		v, ok := vars[id]
		if !ok || v == nil {
			v = false
		}
		if err := run.Set(varPrefix+id, numeric(v)); err != nil {
			return false, fmt.Errorf("condition %q: variable %s: %w", c.src, id, err)
		}
	}
	if err := run.Run(); err != nil {
		return false, fmt.Errorf("condition %q: %w", c.src, err)
	}
	return !run.Get(resultVar).Object().IsFalsy(), nil
}

// numeric folds every number into one tengo kind per value: whole numbers
// become Int and the rest Float. Int and Float never compare equal in
// tengo, so 2 and 2.0 must land on the same side. Zero stays falsy.
func numeric(v any) any {
	var f float64
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	default:
		return v
	}
	if whole(f) {
		return int64(f)
	}
	return f
}

func whole(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<53
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokLiteral
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
}

func lex(expr string) ([]token, error) {
	var toks []token
	rs := []rune(expr)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++

		case r == '=' || r == '!' || r == '&' || r == '|':
			two := ""
			if i+1 < len(rs) {
				two = string(rs[i : i+2])
			}
			switch two {
			case "==", "!=", "&&", "||":
				toks = append(toks, token{tokOp, two})
				i += 2
				continue
			}
			if r == '!' {
				toks = append(toks, token{tokOp, "!"})
				i++
				continue
			}
			return nil, fmt.Errorf("condition %q: unexpected %q at %d", expr, r, i)

		case r == '"' || r == '\'':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				if rs[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("condition %q: unterminated string", expr)
			}
			body := string(rs[i+1 : j])
			if r == '\'' {
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			unq, err := strconv.Unquote(`"` + strings.ReplaceAll(body, `"`, `\"`) + `"`)
			if err != nil {
				return nil, fmt.Errorf("condition %q: bad string: %w", expr, err)
			}
			toks = append(toks, token{tokLiteral, strconv.Quote(unq)})
			i = j + 1

		case unicode.IsDigit(r) || (r == '-' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			num := string(rs[i:j])
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return nil, fmt.Errorf("condition %q: bad number %q", expr, num)
			}
			// Written the way numeric() folds variables.
			lit := strconv.FormatFloat(f, 'f', -1, 64)
			if whole(f) {
				lit = strconv.FormatInt(int64(f), 10)
			}
			toks = append(toks, token{tokLiteral, lit})
			i = j

		case r == '_' || unicode.IsLetter(r):
			j := i + 1
			for j < len(rs) && (rs[j] == '_' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			word := string(rs[i:j])
			switch {
			case word == "true" || word == "false":
				toks = append(toks, token{tokLiteral, word})
			case reserved[word] || strings.HasPrefix(word, "__"):
				return nil, fmt.Errorf("condition %q: %q cannot be used as a variable", expr, word)
			default:
				toks = append(toks, token{tokIdent, word})
			}
			i = j

		default:
			return nil, fmt.Errorf("condition %q: unexpected %q at %d", expr, r, i)
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("condition is empty")
	}
	return toks, nil
}

// condParser only validates; evaluation is left to tengo, whose operator
// precedence the grammar follows.
//
//	expr    = and { "||" and }
//	and     = compare { "&&" compare }
//	compare = unary [ ("==" | "!=") unary ]
//	unary   = "!" unary | operand
//	operand = ident | literal | "(" expr ")"
type condParser struct {
	toks []token
	pos  int
}

func (p *condParser) parse() error {
	if err := p.expr(); err != nil {
		return err
	}
	if p.pos != len(p.toks) {
		return fmt.Errorf("unexpected %q", p.toks[p.pos].text)
	}
	return nil
}

func (p *condParser) peek(text string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == tokOp && p.toks[p.pos].text == text
}

func (p *condParser) expr() error {
	if err := p.and(); err != nil {
		return err
	}
	for p.peek("||") {
		p.pos++
		if err := p.and(); err != nil {
			return err
		}
	}
	return nil
}

func (p *condParser) and() error {
	if err := p.compare(); err != nil {
		return err
	}
	for p.peek("&&") {
		p.pos++
		if err := p.compare(); err != nil {
			return err
		}
	}
	return nil
}

func (p *condParser) compare() error {
	if err := p.unary(); err != nil {
		return err
	}
	if p.peek("==") || p.peek("!=") {
		p.pos++
		return p.unary()
	}
	return nil
}

func (p *condParser) unary() error {
	if p.peek("!") {
		p.pos++
		return p.unary()
	}
	return p.operand()
}

func (p *condParser) operand() error {
	if p.pos >= len(p.toks) {
		return fmt.Errorf("unexpected end of condition")
	}
	t := p.toks[p.pos]
	switch t.kind {
	case tokIdent, tokLiteral:
		p.pos++
		return nil
	case tokLParen:
		p.pos++
		if err := p.expr(); err != nil {
			return err
		}
		if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokRParen {
			return fmt.Errorf("missing )")
		}
		p.pos++
		return nil
	}
	return fmt.Errorf("unexpected %q", t.text)
}
