package formula

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// maxDepth bounds expression nesting so hostile input cannot exhaust the stack.
const maxDepth = 200

// Parse turns formula source into an AST. Function names are checked against
// the primitive set here, so a parsed tree only ever calls known primitives.
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, &Diagnostic{Kind: DiagSyntax, Pos: 0, Msg: "empty formula"}
	}
	n, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t)
	}
	return n, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected(t token) error {
	what := t.kind.String()
	if t.text != "" {
		what = fmt.Sprintf("%s %q", what, t.text)
	}
	return &Diagnostic{Kind: DiagSyntax, Pos: t.pos, Msg: "unexpected " + what}
}

// Binary precedence levels, loosest first.
var levels = [][]string{
	{"||"},
	{"&&"},
	{"==", "!=", "<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/"},
}

func (p *parser) expr(depth int) (Node, error) {
	if depth > maxDepth {
		return nil, &Diagnostic{Kind: DiagDepth, Pos: p.peek().pos, Msg: "formula nested too deeply"}
	}
	return p.binary(0, depth)
}

func (p *parser) binary(level, depth int) (Node, error) {
	if level == len(levels) {
		return p.unary(depth)
	}
	left, err := p.binary(level+1, depth)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || !slices.Contains(levels[level], t.text) {
			return left, nil
		}
		p.next()
		right, err := p.binary(level+1, depth)
		if err != nil {
			return nil, err
		}
		left = Binary{Op: t.text, L: left, R: right}
	}
}

func (p *parser) unary(depth int) (Node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "-" || t.text == "+" || t.text == "!") {
		if depth > maxDepth {
			return nil, &Diagnostic{Kind: DiagDepth, Pos: t.pos, Msg: "formula nested too deeply"}
		}
		p.next()
		x, err := p.unary(depth + 1)
		if err != nil {
			return nil, err
		}
		return Unary{Op: t.text, X: x}, nil
	}
	return p.primary(depth)
}

func (p *parser) primary(depth int) (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, &Diagnostic{Kind: DiagSyntax, Pos: t.pos, Msg: fmt.Sprintf("bad number %q", t.text)}
		}
		return Number{Value: v}, nil
	case tokString:
		return String{Value: t.text}, nil
	case tokLParen:
		n, err := p.expr(depth + 1)
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.unexpected(c)
		}
		return n, nil
	case tokIdent:
		return p.call(t, depth)
	default:
		return nil, p.unexpected(t)
	}
}

func (p *parser) call(name token, depth int) (Node, error) {
	prim, ok := primitives[name.text]
	if !ok {
		return nil, &Diagnostic{Kind: DiagUnknownFunction, Pos: name.pos, Msg: fmt.Sprintf("unknown function %q", name.text)}
	}
	if t := p.next(); t.kind != tokLParen {
		return nil, p.unexpected(t)
	}
	var args []Node
	if p.peek().kind == tokRParen {
		p.next()
	} else {
		for {
			arg, err := p.expr(depth + 1)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			t := p.next()
			if t.kind == tokRParen {
				break
			}
			if t.kind != tokComma {
				return nil, p.unexpected(t)
			}
		}
	}
	if !prim.accepts(len(args)) {
		return nil, &Diagnostic{Kind: DiagArity, Pos: name.pos, Msg: fmt.Sprintf("%s takes %s, got %d", name.text, prim.arity(), len(args))}
	}
	return Call{Func: name.text, Args: args}, nil
}
