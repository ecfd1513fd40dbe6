// Package formula implements the note formula language: reference
// extraction, cycle detection, and a parser and evaluator for expressions
// over ROW, SUM_RANGE, SUM_CHILDREN, VAR, SUM, DIFF, ABS and IF.
package formula

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// VarType is the declared type of a template variable.
type VarType string

const (
	VarNumber  VarType = "number"
	VarPercent VarType = "percent"
	VarText    VarType = "text"
)

// Variable is a named template value kept in its raw textual form.
type Variable struct {
	Type  VarType `yaml:"type"`
	Value string  `yaml:"value"`
}

// Resolve returns the numeric value: numbers parse directly, percents are
// divided by 100, text and anything unparsable resolve to zero.
func (v Variable) Resolve() decimal.Decimal {
	if v.Type == VarText {
		return decimal.Zero
	}
	raw := strings.TrimSpace(v.Value)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, ",", "")
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	switch v.Type {
	case VarNumber:
		return d
	case VarPercent:
		return d.Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
}

// Context is the snapshot a formula is evaluated against. Order defines
// SUM_RANGE semantics; Children maps a parent note to its child notes.
type Context struct {
	Values   map[string]decimal.Decimal
	Order    []string
	Children map[string][]string
	Vars     map[string]Variable
}

// DiagKind classifies why a formula could not produce a value.
type DiagKind string

const (
	DiagSyntax          DiagKind = "syntax"
	DiagUnknownFunction DiagKind = "unknown-function"
	DiagArity           DiagKind = "arity"
	DiagType            DiagKind = "type"
	DiagDivideByZero    DiagKind = "divide-by-zero"
	DiagDepth           DiagKind = "depth"
	DiagInternal        DiagKind = "internal"
)

// Diagnostic explains a failed evaluation. Evaluate collapses it to zero.
type Diagnostic struct {
	Kind DiagKind
	Pos  int
	Msg  string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at %d: %s", d.Kind, d.Pos, d.Msg)
}

type primitive struct {
	min, max int // max < 0 means variadic
}

func (p primitive) accepts(n int) bool {
	return n >= p.min && (p.max < 0 || n <= p.max)
}

func (p primitive) arity() string {
	switch {
	case p.max < 0:
		return fmt.Sprintf("at least %d arguments", p.min)
	case p.min == p.max && p.min == 1:
		return "1 argument"
	case p.min == p.max:
		return fmt.Sprintf("%d arguments", p.min)
	default:
		return fmt.Sprintf("%d to %d arguments", p.min, p.max)
	}
}

// primitives is the closed set of callable functions.
var primitives = map[string]primitive{
	"SUM":          {0, -1},
	"ROW":          {1, 1},
	"VAR":          {1, 1},
	"SUM_CHILDREN": {1, 1},
	"SUM_RANGE":    {2, 2},
	"DIFF":         {2, 2},
	"ABS":          {1, 1},
	"IF":           {3, 3},
}

// Program is a parsed formula ready for repeated evaluation.
type Program struct {
	src  string
	root Node
}

// Compile parses src.
func Compile(src string) (*Program, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return &Program{src: src, root: root}, nil
}

// Source returns the formula text.
func (p *Program) Source() string { return p.src }

// Root returns the parsed tree.
func (p *Program) Root() Node { return p.root }

// Eval evaluates the program against ctx. A nil ctx behaves as an empty one.
func (p *Program) Eval(ctx *Context) (result decimal.Decimal, err error) {
	if ctx == nil {
		ctx = &Context{}
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = decimal.Zero, &Diagnostic{Kind: DiagInternal, Msg: fmt.Sprint(r)}
		}
	}()
	ev := evaluator{ctx: ctx}
	v, err := ev.eval(p.root)
	if err != nil {
		return decimal.Zero, err
	}
	if v.isStr {
		return decimal.Zero, &Diagnostic{Kind: DiagType, Msg: "formula produced text, not a number"}
	}
	return v.num, nil
}

// Eval compiles and evaluates src, reporting why it failed if it did.
func Eval(src string, ctx *Context) (decimal.Decimal, error) {
	p, err := Compile(src)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Eval(ctx)
}

// Evaluate is Eval with every failure mapped to zero.
func Evaluate(src string, ctx *Context) decimal.Decimal {
	v, err := Eval(src, ctx)
	if err != nil {
		return decimal.Zero
	}
	return v
}

type value struct {
	num   decimal.Decimal
	str   string
	isStr bool
}

func number(d decimal.Decimal) value { return value{num: d} }

func boolean(b bool) value {
	if b {
		return number(decimal.NewFromInt(1))
	}
	return number(decimal.Zero)
}

// coerce turns text into zero, as SUM and friends do.
func (v value) coerce() decimal.Decimal {
	if v.isStr {
		return decimal.Zero
	}
	return v.num
}

func (v value) truthy() bool {
	if v.isStr {
		return v.str != ""
	}
	return !v.num.IsZero()
}

// key renders an argument as a note ID or variable name.
func (v value) key() string {
	if v.isStr {
		return v.str
	}
	return v.num.String()
}

type evaluator struct {
	ctx *Context
}

func (ev *evaluator) eval(n Node) (value, error) {
	switch n := n.(type) {
	case Number:
		return number(n.Value), nil
	case String:
		return value{str: n.Value, isStr: true}, nil
	case Unary:
		return ev.unary(n)
	case Binary:
		return ev.binary(n)
	case Call:
		return ev.call(n)
	default:
		return value{}, &Diagnostic{Kind: DiagInternal, Msg: fmt.Sprintf("unknown node %T", n)}
	}
}

func (ev *evaluator) unary(n Unary) (value, error) {
	x, err := ev.eval(n.X)
	if err != nil {
		return value{}, err
	}
	if n.Op == "!" {
		return boolean(!x.truthy()), nil
	}
	if x.isStr {
		return value{}, typeError(n.Op, x)
	}
	if n.Op == "-" {
		return number(x.num.Neg()), nil
	}
	return x, nil
}

func (ev *evaluator) binary(n Binary) (value, error) {
	l, err := ev.eval(n.L)
	if err != nil {
		return value{}, err
	}
	// Logical operators short-circuit and yield the deciding operand.
	switch n.Op {
	case "&&":
		if !l.truthy() {
			return l, nil
		}
		return ev.eval(n.R)
	case "||":
		if l.truthy() {
			return l, nil
		}
		return ev.eval(n.R)
	}

	r, err := ev.eval(n.R)
	if err != nil {
		return value{}, err
	}
	if l.isStr || r.isStr {
		if l.isStr && r.isStr && (n.Op == "==" || n.Op == "!=") {
			return boolean((l.str == r.str) == (n.Op == "==")), nil
		}
		return value{}, typeError(n.Op, l, r)
	}

	a, b := l.num, r.num
	switch n.Op {
	case "+":
		return number(a.Add(b)), nil
	case "-":
		return number(a.Sub(b)), nil
	case "*":
		return number(a.Mul(b)), nil
	case "/":
		if b.IsZero() {
			return value{}, &Diagnostic{Kind: DiagDivideByZero, Msg: n.String()}
		}
		return number(a.Div(b)), nil
	case "==":
		return boolean(a.Equal(b)), nil
	case "!=":
		return boolean(!a.Equal(b)), nil
	case "<":
		return boolean(a.LessThan(b)), nil
	case "<=":
		return boolean(a.LessThanOrEqual(b)), nil
	case ">":
		return boolean(a.GreaterThan(b)), nil
	case ">=":
		return boolean(a.GreaterThanOrEqual(b)), nil
	default:
		return value{}, &Diagnostic{Kind: DiagInternal, Msg: "unknown operator " + strconv.Quote(n.Op)}
	}
}

func (ev *evaluator) call(n Call) (value, error) {
	// IF evaluates only the chosen branch.
	if n.Func == "IF" {
		cond, err := ev.eval(n.Args[0])
		if err != nil {
			return value{}, err
		}
		if cond.truthy() {
			return ev.eval(n.Args[1])
		}
		return ev.eval(n.Args[2])
	}

	args := make([]value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.eval(a)
		if err != nil {
			return value{}, err
		}
		args[i] = v
	}

	switch n.Func {
	case "SUM":
		total := decimal.Zero
		for _, a := range args {
			total = total.Add(a.coerce())
		}
		return number(total), nil
	case "ROW":
		return number(ev.row(args[0].key())), nil
	case "VAR":
		return number(ev.ctx.Vars[args[0].key()].Resolve()), nil
	case "SUM_CHILDREN":
		total := decimal.Zero
		for _, child := range ev.ctx.Children[args[0].key()] {
			total = total.Add(ev.row(child))
		}
		return number(total), nil
	case "SUM_RANGE":
		return number(ev.sumRange(args[0].key(), args[1].key())), nil
	case "DIFF":
		return number(args[0].coerce().Sub(args[1].coerce())), nil
	case "ABS":
		return number(args[0].coerce().Abs()), nil
	default:
		return value{}, &Diagnostic{Kind: DiagUnknownFunction, Msg: n.Func}
	}
}

func (ev *evaluator) row(id string) decimal.Decimal {
	return ev.ctx.Values[id] // zero value of decimal.Decimal is 0
}

func (ev *evaluator) sumRange(from, to string) decimal.Decimal {
	i, j := slices.Index(ev.ctx.Order, from), slices.Index(ev.ctx.Order, to)
	if i < 0 || j < 0 {
		return decimal.Zero
	}
	if i > j {
		i, j = j, i
	}
	total := decimal.Zero
	for _, id := range ev.ctx.Order[i : j+1] {
		total = total.Add(ev.row(id))
	}
	return total
}

func typeError(op string, operands ...value) error {
	kinds := make([]string, len(operands))
	for i, o := range operands {
		if o.isStr {
			kinds[i] = "text"
		} else {
			kinds[i] = "number"
		}
	}
	return &Diagnostic{Kind: DiagType, Msg: fmt.Sprintf("operator %s on %s", op, strings.Join(kinds, " and "))}
}
