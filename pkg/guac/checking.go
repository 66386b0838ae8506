package guac

// ----------------------------------------------------------------------------
// Static checker

// A single pass over the AST run between parsing and evaluation. It verifies
// the structural invariants of every node kind (edge counts and edge kinds),
// resolves identifiers against a scope seeded with the builtins, and tracks
// one lexical state to reject 'break'/'continue' outside a loop and 'return'
// outside a 'funk'. The first violation wins: checking stops and the node's
// source span becomes the diagnostic location.

type visitState int // Enum for the lexical context the walk currently sits in

const (
	stateNone     visitState = iota
	stateInFunc              // Inside a 'funk' body, 'return' is legal
	stateInWhile             // Inside a 'while' body or condition, 'break'/'continue' are legal
	stateInVarDef            // Visiting a name-defining position, identifiers insert instead of resolve
)

// The Checker holds the cursor (for line/col rendering of error spans), the
// scope the walk resolves against and the current lexical state.
type Checker struct {
	cursor *Cursor
	scope  *Scope
	state  visitState
}

// Initializes and returns to the caller a brand new 'Checker'. The cursor must
// be the one the AST was parsed from, spans index into its buffer.
func NewChecker(cursor *Cursor, scope *Scope) *Checker {
	return &Checker{cursor: cursor, scope: scope}
}

// Check validates the whole tree, returning nil on success or the Diagnostic
// of the first violation.
func (c *Checker) Check(root *Node) error {
	if diag := c.check(root, c.scope); diag != nil {
		return diag
	}

	return nil
}

// fail records a violation at the node's span.
func (c *Checker) fail(n *Node, message string) *Diagnostic {
	return NewDiagnostic(c.cursor, n.Begin, n.End, message, "")
}

// failUndefined is fail plus a fuzzy suggestion drawn from the scope.
func (c *Checker) failUndefined(n *Node, message string, s *Scope) *Diagnostic {
	return NewDiagnostic(c.cursor, n.Begin, n.End, message, Suggest(n.Text, s.Names()))
}

func (c *Checker) check(n *Node, s *Scope) *Diagnostic {
	if n == nil {
		return &Diagnostic{Line: 1, Col: 1, Width: 1}
	}

	switch n.Kind {
	case Const:
		if len(n.Edges) > 0 {
			return c.fail(n, "_const should have no edges!")
		}
		return nil

	case Var:
		return c.checkVar(n, s)

	case OpControl:
		return c.checkControl(n)

	case FuncDef:
		return c.checkFuncDef(n, s)

	case FuncCall:
		return c.checkFuncCall(n, s)

	case Block:
		return c.checkBlock(n, s)

	case Loop:
		return c.checkLoop(n, s)

	case OpUna:
		if len(n.Edges) != 1 {
			return c.fail(n, "_opuna should have 1 edge!")
		}
		return c.check(n.Edges[0], s)

	case OpEq:
		return c.checkAssign(n, s)

	case OpLogic, OpComp, OpMath:
		if len(n.Edges) < 2 {
			return c.fail(n, "_oplogic/_opcomp/_opmath should have 2 edges!")
		}
		if diag := c.check(n.Edges[0], s); diag != nil {
			return diag
		}
		return c.check(n.Edges[1], s)

	case Compound, Args:
		for _, edge := range n.Edges {
			if diag := c.check(edge, s); diag != nil {
				return diag
			}
		}
		return nil
	}

	return c.fail(n, "")
}

// Specialized function to check a Var node: an r-value must resolve, a
// name-defining position (assignment target, parameter) inserts instead.
func (c *Checker) checkVar(n *Node, s *Scope) *Diagnostic {
	if len(n.Edges) > 0 {
		return c.fail(n, "_var should have no edges!")
	}

	if s.Lookup(n.Text) == nil && c.state != stateInVarDef {
		return c.failUndefined(n, "_var should be defined before being used!", s)
	}

	if c.state == stateInVarDef {
		s.Define(Definition{Name: n.Text})
	}

	return nil
}

// Specialized function to check 'break'/'continue'/'return' against the
// current lexical state.
func (c *Checker) checkControl(n *Node) *Diagnostic {
	switch n.Text {
	case "break":
		if len(n.Edges) != 0 {
			return c.fail(n, "break should not have any edges!")
		}
		if c.state != stateInWhile {
			return c.fail(n, "cannot break outside of a loop!")
		}

	case "continue":
		if len(n.Edges) != 0 {
			return c.fail(n, "continue should not have any edges!")
		}
		if c.state != stateInWhile {
			return c.fail(n, "cannot continue outside of a loop!")
		}

	case "return":
		if len(n.Edges) != 1 {
			return c.fail(n, "return should have 1 edge!")
		}
		if c.state != stateInFunc {
			return c.fail(n, "cannot return outside of a funk!")
		}
	}

	return nil
}

// Specialized function to check a 'funk' definition. The name enters the
// current scope before the body is visited, so recursion resolves, and the
// body is checked against a copy of the scope so parameters and locals do
// not leak out.
func (c *Checker) checkFuncDef(n *Node, s *Scope) *Diagnostic {
	if len(n.Edges) != 2 {
		return c.fail(n, "_funcdef should have 2 edges!")
	}
	if n.Edges[0].Kind != Args {
		return c.fail(n, "_funcdef edge[0] should be of type _args!")
	}
	if n.Edges[1].Kind != Compound {
		return c.fail(n, "_funcdef edge[1] should be of type _compound!")
	}

	s.Define(Definition{Name: n.Text, Kind: DefFunc, Node: n})

	body := s.Duplicate()

	saved := c.state
	c.state = stateInVarDef
	if diag := c.check(n.Edges[0], body); diag != nil {
		return diag
	}

	c.state = stateInFunc
	if diag := c.check(n.Edges[1], body); diag != nil {
		return diag
	}
	c.state = saved

	return nil
}

// Specialized function to check a call site: the callee must already be
// defined and, unless it is a builtin (which accepts any arity here), the
// argument count must match the definition.
func (c *Checker) checkFuncCall(n *Node, s *Scope) *Diagnostic {
	callee := s.Lookup(n.Text)
	if callee == nil {
		return c.failUndefined(n, "_funccall should be after function is defined!", s)
	}

	if !callee.Builtin {
		if callee.Node == nil || len(n.Edges) != len(callee.Node.Edges[0].Edges) {
			return c.fail(n, "_funccall should have the same # of args as the _funcdef!")
		}
	}

	for _, edge := range n.Edges {
		if diag := c.check(edge, s); diag != nil {
			return diag
		}
	}

	return nil
}

// Specialized function to check the 'if'/'elif'/'else' family.
func (c *Checker) checkBlock(n *Node, s *Scope) *Diagnostic {
	switch n.Text {
	case "ifelse":
		if len(n.Edges) < 1 {
			return c.fail(n, "ifelse should have atleast 1 edge!")
		}
		for _, edge := range n.Edges {
			if diag := c.check(edge, s); diag != nil {
				return diag
			}
		}
		return nil

	case "if", "elif":
		if len(n.Edges) != 2 {
			return c.fail(n, "if/elif should have 2 edges!")
		}
		if n.Edges[1].Kind != Compound {
			return c.fail(n, "if/elif edge[1] should be of type _compound!")
		}
		if diag := c.check(n.Edges[0], s); diag != nil {
			return diag
		}
		return c.check(n.Edges[1], s)

	case "else":
		if len(n.Edges) != 1 {
			return c.fail(n, "else sould have 1 edge!")
		}
		if n.Edges[0].Kind != Compound {
			return c.fail(n, "else edge[0] should be of type _compound!")
		}
		return c.check(n.Edges[0], s)
	}

	return c.fail(n, "")
}

// Specialized function to check a 'while' loop: condition and body are
// visited under the in-loop state, restored afterwards.
func (c *Checker) checkLoop(n *Node, s *Scope) *Diagnostic {
	if len(n.Edges) != 2 {
		return c.fail(n, "_loop should have 2 edges!")
	}
	if n.Edges[1].Kind != Compound {
		return c.fail(n, "_loop edges[1] should be of type _compound!")
	}

	saved := c.state
	c.state = stateInWhile
	if diag := c.check(n.Edges[0], s); diag != nil {
		return diag
	}
	if diag := c.check(n.Edges[1], s); diag != nil {
		return diag
	}
	c.state = saved

	return nil
}

// Specialized function to check an assignment: the left edge defines (or
// redefines) its name before the right edge is resolved, so 'a = a + 1;'
// inserts 'a' first and the right-hand 'a' resolves against it.
func (c *Checker) checkAssign(n *Node, s *Scope) *Diagnostic {
	if len(n.Edges) != 2 {
		return c.fail(n, "_opeq should have 2 edges!")
	}
	if n.Edges[0].Kind != Var {
		return c.fail(n, "_opeq edge[0] should be of type _var!")
	}

	saved := c.state
	c.state = stateInVarDef
	if diag := c.check(n.Edges[0], s); diag != nil {
		return diag
	}
	c.state = saved

	return c.check(n.Edges[1], s)
}
