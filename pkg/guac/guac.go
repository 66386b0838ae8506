package guac

import (
	"fmt"
	"io"
	"strings"
)

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about the guacamole language.
//
// Guacamole is a small imperative language with C-like syntax: integer arithmetic,
// comparisons, boolean logic, variable assignment, 'if'/'elif'/'else' chains,
// 'while' loops with 'break'/'continue', user-defined functions declared with
// 'funk' and a handful of built-in print functions. A program is a flat sequence
// of blocks; evaluating it leaves the value of the last expression in the scope
// register, which the CLI reports as the program result.
//
// The pipeline has three passes sharing this package:
// - Parsing: text --> AST, recursive descent over a raw byte cursor
// - Checking: AST --> AST, structural and contextual validation w/ name resolution
// - Evaluation: AST --> value, a tree walk over scopes seeded with the built-ins

// ----------------------------------------------------------------------------
// AST nodes

// A NodeKind tags the grammar production a Node was built from. The zero value
// (empty string) marks a placeholder that a production has not written into yet,
// the builder helpers rely on that to decide between reusing and allocating.
type NodeKind string

const (
	Compound  NodeKind = "compound"  // Ordered statement sequence (program root, block bodies)
	Const     NodeKind = "const"     // Integer literal
	Var       NodeKind = "var"       // Identifier reference (or definition target)
	FuncDef   NodeKind = "funcdef"   // 'funk' definition, edges are [Args, Compound]
	FuncCall  NodeKind = "funccall"  // Call site, edges are the argument expressions
	Args      NodeKind = "args"      // Parameter list of a FuncDef, edges are all Var
	OpEq      NodeKind = "opeq"      // Assignment, edges are [Var, expression]
	OpMath    NodeKind = "opmath"    // '+' '-' '*' '/' '%' '^'
	OpComp    NodeKind = "opcomp"    // '==' '!=' '<=' '<' '>=' '>'
	OpLogic   NodeKind = "oplogic"   // '||' '&&' (not short-circuiting)
	OpUna     NodeKind = "opuna"     // Unary '+' '-' '!'
	Block     NodeKind = "block"     // 'if' / 'elif' / 'else' / the 'ifelse' chain wrapper
	Loop      NodeKind = "loop"      // 'while'
	OpControl NodeKind = "opcontrol" // 'break' / 'continue' / 'return'
)

// A Node is one vertex of the abstract syntax tree.
//
// The payload is either an integer (Const) or a string: the operator symbol for
// the Op* kinds, the identifier for Var/FuncDef/FuncCall and the block flavour
// ("if", "elif", "else", "ifelse", "while") for Block/Loop. Begin/End are byte
// offsets into the source buffer and drive the caret diagnostics. A node owns
// its edges exclusively, trees never share subtrees.
type Node struct {
	Kind  NodeKind
	Value int64  // Payload for Const nodes
	Text  string // Payload for every other kind that carries one
	Edges []*Node

	Begin, End int // Source span, Begin <= End, both within [0, len(source)]
}

// Append attaches 'child' as the last edge and returns it.
func (n *Node) Append(child *Node) *Node {
	n.Edges = append(n.Edges, child)
	return child
}

// DropLast removes the most recently appended edge, subtree included. Used by
// the parser to discard speculative children when a production backtracks.
func (n *Node) DropLast() bool {
	if len(n.Edges) == 0 {
		return false
	}

	n.Edges = n.Edges[:len(n.Edges)-1]
	return true
}

// Label renders the node header used by Dump ("funcdef add", "const 42", ...).
func (n *Node) Label() string {
	switch {
	case n.Kind == Const:
		return fmt.Sprintf("%s %d", n.Kind, n.Value)
	case n.Text != "":
		return fmt.Sprintf("%s %s", n.Kind, n.Text)
	default:
		return string(n.Kind)
	}
}

// Dump writes an indented textual rendering of the subtree to 'w'. It backs the
// PRINT_AST feature flag of the parser and is handy when debugging test failures.
func (n *Node) Dump(w io.Writer) {
	n.dump(w, 0)
}

func (n *Node) dump(w io.Writer, depth int) {
	fmt.Fprintf(w, "%s%s [%d:%d]\n", strings.Repeat("  ", depth), n.Label(), n.Begin, n.End)
	for _, edge := range n.Edges {
		edge.dump(w, depth+1)
	}
}
