package guac

import (
	"io"
	"math"
)

// ----------------------------------------------------------------------------
// Evaluator

// A tree walk over a checked AST. Expression results flow through the scope
// register rather than return values, so the recursion only reports success,
// and non-local control flow ('break', 'continue', 'return') travels through
// three counters instead of exceptions: a statement bumps its counter, every
// compound in between short-circuits while a counter is pending, and the
// construct responsible for the signal (the enclosing 'while' or the call
// site) consumes exactly one count.
//
// A statement that fails to evaluate (a division by zero, a builtin called
// with the wrong arity) ends the callee body it sits in directly, and ends a
// 'while' loop when it is the last statement of the body. Everywhere else the
// walk carries on with the next statement, and the program still reports the
// register of the last one, mirroring the forgiving behaviour the language
// has always had.

// control carries the pending break/continue/return signal counts.
type control struct {
	breaks    int
	continues int
	returns   int
}

// pending reports whether any signal is waiting to be consumed.
func (c *control) pending() bool {
	return c.breaks > 0 || c.continues > 0 || c.returns > 0
}

// The Evaluator owns the output stream the print builtins write to and the
// control counters of the current run.
type Evaluator struct {
	out  io.Writer
	ctrl control
}

// Initializes and returns to the caller a brand new 'Evaluator' writing
// builtin output to 'out'.
func NewEvaluator(out io.Writer) *Evaluator {
	return &Evaluator{out: out}
}

// Eval walks the whole tree under 'scope' (normally a fresh global scope) and
// returns the register value left by the last evaluated expression.
func (e *Evaluator) Eval(root *Node, scope *Scope) int64 {
	e.ctrl = control{}
	e.eval(root, scope)
	return scope.register
}

func (e *Evaluator) eval(n *Node, s *Scope) bool {
	if n == nil {
		return false
	}

	switch n.Kind {
	case Const:
		s.register = n.Value
		return true

	case Var:
		if def := s.Lookup(n.Text); def != nil {
			s.register = def.Value
			return true
		}
		return false

	case OpControl:
		return e.evalControl(n, s)

	case FuncDef:
		// A definition at statement position just enters the scope, the
		// body only runs when called.
		s.Define(Definition{Name: n.Text, Kind: DefFunc, Node: n})
		return true

	case FuncCall:
		return e.evalCall(n, s)

	case Block:
		return e.evalBlock(n, s)

	case Loop:
		return e.evalLoop(n, s)

	case OpUna:
		return e.evalUnary(n, s)

	case OpEq:
		return e.evalAssign(n, s)

	case OpLogic, OpComp, OpMath:
		return e.evalBinary(n, s)

	case Compound:
		ret := false
		for _, edge := range n.Edges {
			ret = e.eval(edge, s)
			if e.ctrl.pending() {
				break
			}
		}
		return ret
	}

	return false
}

// Specialized function to evaluate 'break'/'continue'/'return': each bumps
// its counter, 'return' evaluates its expression first so the value is in the
// register when the call site picks it up.
func (e *Evaluator) evalControl(n *Node, s *Scope) bool {
	switch n.Text {
	case "break":
		e.ctrl.breaks++
		return true

	case "continue":
		e.ctrl.continues++
		return true

	case "return":
		ret := e.eval(n.Edges[0], s)
		e.ctrl.returns++
		return ret
	}

	return false
}

// Specialized function to evaluate the 'if'/'elif'/'else' family.
func (e *Evaluator) evalBlock(n *Node, s *Scope) bool {
	switch n.Text {
	case "ifelse":
		// The first branch whose condition holds ends the chain. A chain
		// where nothing matched still counts as evaluated.
		for _, edge := range n.Edges {
			if e.eval(edge, s) {
				break
			}
		}
		return true

	case "if", "elif":
		// Reports whether the branch was taken, which is what the chain
		// stops on.
		e.eval(n.Edges[0], s)
		if s.register == 0 {
			return false
		}
		e.eval(n.Edges[1], s)
		return true

	case "else":
		return e.eval(n.Edges[0], s)
	}

	return false
}

// Specialized function to evaluate a 'while' loop. The loop consumes exactly
// one 'break' or 'continue', a pending 'return' ends the loop and is left for
// the enclosing call to consume.
func (e *Evaluator) evalLoop(n *Node, s *Scope) bool {
	ret := true

	e.eval(n.Edges[0], s)
	for s.register != 0 {
		ret = e.eval(n.Edges[1], s)

		if e.ctrl.breaks > 0 {
			e.ctrl.breaks--
			break
		}
		if e.ctrl.continues > 0 {
			e.ctrl.continues--
		} else if e.ctrl.returns > 0 || !ret {
			break
		}

		e.eval(n.Edges[0], s)
	}

	return ret
}

// Specialized function to evaluate unary '+', '-' and '!'.
func (e *Evaluator) evalUnary(n *Node, s *Scope) bool {
	if !e.eval(n.Edges[0], s) {
		return false
	}

	switch n.Text {
	case "+":
		return true
	case "-":
		s.register = -s.register
		return true
	case "!":
		if s.register == 0 {
			s.register = 1
		} else {
			s.register = 0
		}
		return true
	}

	return false
}

// Specialized function to evaluate an assignment: the right edge lands in the
// register and is copied into the definition of the left edge's name.
func (e *Evaluator) evalAssign(n *Node, s *Scope) bool {
	if !e.eval(n.Edges[1], s) {
		return false
	}

	s.Define(Definition{Name: n.Edges[0].Text, Kind: DefInt, Value: s.register})
	return true
}

// Specialized function to evaluate the binary operators. Both operands are
// always evaluated, left first: '&&' and '||' do not short-circuit.
func (e *Evaluator) evalBinary(n *Node, s *Scope) bool {
	okL := e.eval(n.Edges[0], s)
	l := s.register
	okR := e.eval(n.Edges[1], s)
	r := s.register

	if !okL || !okR {
		return false
	}

	switch n.Kind {
	case OpLogic:
		s.register = 0
		if (n.Text == "&&" && l != 0 && r != 0) || (n.Text == "||" && (l != 0 || r != 0)) {
			s.register = 1
		}
		return true

	case OpComp:
		s.register = 0
		if compare(l, r, n.Text) {
			s.register = 1
		}
		return true

	case OpMath:
		switch n.Text {
		case "+":
			s.register = l + r
		case "-":
			s.register = l - r
		case "*":
			s.register = l * r
		case "/":
			if r == 0 {
				return false
			}
			s.register = l / r
		case "%":
			if r == 0 {
				return false
			}
			s.register = l % r
		case "^":
			s.register = int64(math.Pow(float64(l), float64(r)))
		default:
			return false
		}
		return true
	}

	return false
}

func compare(l, r int64, op string) bool {
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case "<=":
		return l <= r
	case "<":
		return l < r
	case ">=":
		return l >= r
	case ">":
		return l > r
	}

	return false
}

// Specialized function to evaluate a call site, builtin or user 'funk'.
func (e *Evaluator) evalCall(n *Node, s *Scope) bool {
	callee := s.Lookup(n.Text)
	if callee == nil {
		return false
	}

	// Arguments evaluate in the caller's scope, left to right.
	args := make([]int64, 0, len(n.Edges))
	for _, edge := range n.Edges {
		e.eval(edge, s)
		args = append(args, s.register)
	}

	if callee.Builtin {
		fn, ok := Builtins[callee.Name]
		return ok && fn(e.out, args) == nil
	}

	funk := callee.Node
	if funk == nil || len(funk.Edges) < 2 || len(funk.Edges[0].Edges) != len(args) {
		return false
	}

	// The callee runs in a by-value copy of the caller's scope with the
	// parameters bound over it.
	params := funk.Edges[0].Edges
	inner := s.Duplicate()
	for i, param := range params {
		inner.Define(Definition{Name: param.Text, Kind: DefInt, Value: args[i]})
	}

	ret := false
	for _, stmt := range funk.Edges[1].Edges {
		ret = e.eval(stmt, inner)
		if e.ctrl.returns > 0 {
			e.ctrl.returns--
			break
		}
		if !ret {
			break
		}
	}

	// Write-back: mutations to names that pre-existed in the caller are
	// committed, parameters and callee-local names are discarded.
	for i := 0; i < inner.Count(); i++ {
		entry := inner.At(i)

		param := false
		for _, p := range params {
			if p.Text == entry.Name {
				param = true
			}
		}
		if param {
			continue
		}

		if original := s.Lookup(entry.Name); original != nil {
			original.Value = entry.Value
			original.Node = entry.Node
		}
	}

	s.register = inner.register
	return ret
}
