package formula

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Node is a parsed formula expression.
type Node interface {
	node()
	String() string
}

// Number is a numeric literal.
type Number struct {
	Value decimal.Decimal
}

// String is a quoted literal, used for note IDs and variable names.
type String struct {
	Value string
}

// Unary is a prefix operator: "-", "+" or "!".
type Unary struct {
	Op string
	X  Node
}

// Binary is an infix operator.
type Binary struct {
	Op   string
	L, R Node
}

// Call invokes one of the built-in primitives.
type Call struct {
	Func string
	Args []Node
}

func (Number) node() {}
func (String) node() {}
func (Unary) node()  {}
func (Binary) node() {}
func (Call) node()   {}

func (n Number) String() string { return n.Value.String() }
func (n String) String() string { return "'" + n.Value + "'" }
func (n Unary) String() string  { return n.Op + n.X.String() }
func (n Binary) String() string { return "(" + n.L.String() + " " + n.Op + " " + n.R.String() + ")" }

func (n Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Func + "(" + strings.Join(args, ", ") + ")"
}
