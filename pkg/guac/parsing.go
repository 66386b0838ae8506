package guac

import (
	"fmt"
	"os"
	"strconv"
)

// ----------------------------------------------------------------------------
// Grammar

// This section implements the guacamole grammar as mutually recursive
// productions over the text cursor. PEG-ordered choice, no left recursion:
//
//	Program     <- Block* EOF
//	Block       <- Comment / Control / FuncDef / IfElse / WhileBlock / Expr
//	Comment     <- "//" (not-newline)* newline?
//	FuncDef     <- "funk " Ident "(" (Type? Ident ("," Type? Ident)*)? ")" "{" Block* "}" ";"?
//	IfElse      <- If Elif* Else? ";"?
//	If          <- "if"   "(" Calc ")" "{" Block* "}"
//	Elif        <- "elif" "(" Calc ")" "{" Block* "}"
//	Else        <- "else"              "{" Block* "}"
//	WhileBlock  <- "while" "(" Calc ")" "{" Block* "}" ";"?
//	Control     <- ("break" / "continue" / "return" Calc) ";"
//	Expr        <- (Ident "=")? Calc ";"
//	Calc        <- Comp (("||" / "&&") Comp)*
//	Comp        <- Add (("==" / "!=" / "<=" / "<" / ">=" / ">") Add)*
//	Add         <- Mul (("+" / "-") Mul)*
//	Mul         <- Pow (("*" / "/" / "%") Pow)*
//	Pow         <- Par ("^" Par)*
//	Par         <- ("+" / "-" / "!")* (Int / FuncCall / Ident / "(" Calc ")")
//	Type        <- "int"
//
// Whitespace is skipped between tokens, '//' comments are skipped wherever a
// statement may start. Reserved words are rejected as variable references in
// Par. Each production saves the cursor position on entry and restores it on
// failure, dropping any AST child it speculatively appended.

// reserved lists the identifiers that Par must not accept as variables.
var reserved = []string{"return", "while", "break", "funk", "if", "elif", "else"}

func isReserved(name string) bool {
	for _, word := range reserved {
		if name == word {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// Parser

// The Parser combines the cursor primitives into the productions above and
// grows the AST as a side effect of matching. Committed productions (an 'if'
// that already consumed its condition, say) leave a contextual message behind
// when a required token is missing, the diagnostic surfaces that message at
// the high-water mark.
//
// Feature flag (as env var):
// - PRINT_AST: print on the stdout a textual representation of the AST
type Parser struct {
	*Cursor
	errmsg string
}

// Initializes and returns to the caller a brand new 'Parser' over 'source'.
func NewParser(source string) *Parser {
	return &Parser{Cursor: NewCursor(source)}
}

// Message returns the contextual error message left by the last committed
// production that failed, or "" when no production got far enough to set one.
func (p *Parser) Message() string { return p.errmsg }

// Parse consumes the whole source and returns the program root (a Compound
// node). On failure it returns a Diagnostic pointing at the high-water mark.
func (p *Parser) Parse() (*Node, error) {
	root := &Node{}
	if !p.readLang(root) {
		return nil, NewDiagnostic(p.Cursor, p.highWater, p.highWater, p.errmsg, "")
	}

	// Feature flag: Enables pretty printing of the AST on the console
	if os.Getenv("PRINT_AST") != "" {
		root.Dump(os.Stdout)
	}

	return root, nil
}

// ----------------------------------------------------------------------------
// AST builders

// appendOrReuse hands productions the node they should write into: the parent
// itself while it is still an untyped placeholder, a fresh child otherwise.
// Reusing the placeholder is what keeps single-operand chains wrapper-free.
func (p *Parser) appendOrReuse(ast *Node) *Node {
	if ast.Kind == "" {
		ast.Begin = p.current
		return ast
	}

	return ast.Append(&Node{Begin: p.current})
}

// prependOrReuse lifts the subtree already built under 'ast' one level down
// and hands back the emptied parent for the operator about to be read: the
// lifted subtree becomes the operator's first operand and the right-hand one
// is appended later. Folding left-to-right like this yields left-associative
// trees with the operator at the root.
func (p *Parser) prependOrReuse(ast *Node) *Node {
	if ast.Kind == "" {
		ast.Begin = p.current
		return ast
	}

	lifted := &Node{
		Kind: ast.Kind, Value: ast.Value, Text: ast.Text,
		Edges: ast.Edges, Begin: ast.Begin, End: ast.End,
	}

	ast.Kind, ast.Value, ast.Text = "", 0, ""
	ast.Edges = []*Node{lifted}
	ast.Begin = lifted.Begin
	return ast
}

// discard undoes the speculative work of a failed production: the node it was
// writing into is either detached from the parent or, when the production was
// reusing the parent placeholder itself, wiped back to an empty placeholder.
func (p *Parser) discard(ast, sub *Node) {
	if sub != ast {
		ast.DropLast()
		return
	}

	*sub = Node{Begin: sub.Begin}
}

// ----------------------------------------------------------------------------
// Program structure

func (p *Parser) readLang(root *Node) bool {
	root.Kind = Compound

	for p.readAllBlocks(root) {
	}

	// Trailing whitespace is not an error, skip it without letting the
	// high-water mark wander past the last real token.
	hw := p.highWater
	p.SkipSpace()
	p.highWater = hw

	if !p.EOF() {
		return false
	}

	root.End = p.Len()
	return true
}

func (p *Parser) readAllBlocks(ast *Node) bool {
	return p.readComment() || p.readControl(ast) || p.readFuncDef(ast) ||
		p.readBlock(ast) || p.readExpr(ast)
}

// readBlockList keeps appending statements to 'parent' until one fails, then
// rewinds the cursor to just after the last statement that did parse.
func (p *Parser) readBlockList(parent *Node) {
	tmp := p.current
	for p.readAllBlocks(parent) {
		tmp = p.current
	}
	p.current = tmp
}

func (p *Parser) readComment() bool {
	p.SkipSpace()
	if p.ReadText("//") {
		p.ReadUntil('\n')
		return true
	}

	return false
}

// ----------------------------------------------------------------------------
// Statements

func (p *Parser) readControl(ast *Node) bool {
	ret := false
	tmp := p.current

	sub := p.appendOrReuse(ast)

	if p.readOpBreak(sub) || p.readOpContinue(sub) {
		ret = p.ReadChar(';')
	} else if p.readOpReturn(sub) && p.readCalc(sub) && p.ReadChar(';') {
		sub.End = p.current
		ret = true
	}

	if !ret {
		p.discard(ast, sub)
		p.current = tmp
	}

	return ret
}

func (p *Parser) readFuncDef(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	tmp := p.current
	if p.ReadText("funk ") {
		p.SkipSpace()
		if p.readVar() && p.ReadChar('(') {
			sub.Kind = FuncDef
			sub.Text = p.Capture("VAR")

			args := p.appendOrReuse(sub)
			args.Kind = Args
			args.Begin = p.current

			p.SkipSpace()
			for p.readVar() {
				name := p.Capture("VAR")
				begin, end := p.CaptureSpan("VAR")

				// An optional 'int' type prefix is accepted and ignored.
				if name == "int" && p.readVar() {
					name = p.Capture("VAR")
					begin, end = p.CaptureSpan("VAR")
				}

				arg := p.appendOrReuse(args)
				arg.Kind, arg.Text = Var, name
				arg.Begin, arg.End = begin, end

				p.SkipSpace()
				if !p.ReadChar(',') {
					break
				}
			}

			args.End = p.current

			p.SkipSpace()
			if p.ReadChar(')') {
				p.SkipSpace()
				if p.ReadChar('{') {
					body := p.appendOrReuse(sub)
					body.Kind = Compound
					body.Begin = p.current

					p.readBlockList(body)

					p.SkipSpace()
					if p.ReadChar('}') {
						body.End = p.current
						p.ReadChar(';')
						ret = true
					}
				}
			}
		}
	}

	sub.End = p.current

	if !ret {
		p.discard(ast, sub)
		p.current = tmp
	}

	return ret
}

func (p *Parser) readFuncCall(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	tmp := p.current
	if p.readVar() && p.ReadChar('(') {
		sub.Kind = FuncCall
		sub.Text = p.Capture("VAR")

		p.SkipSpace()
		for p.readCalc(sub) {
			p.SkipSpace()
			if !p.ReadChar(',') {
				break
			}
		}

		if p.ReadChar(')') {
			ret = true
		} else {
			p.errmsg = "Missing function call closing parenthesis ')'"
		}
	}

	sub.End = p.current

	if !ret {
		p.discard(ast, sub)
		p.current = tmp
	}

	return ret
}

func (p *Parser) readExpr(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	last := p.current
	if p.readVar() {
		if p.readOpEq() {
			name := p.Capture("VAR")
			begin, end := p.CaptureSpan("VAR")

			lhs := p.appendOrReuse(sub)
			lhs.Kind, lhs.Text = Var, name
			lhs.Begin, lhs.End = begin, end

			eq := p.prependOrReuse(lhs)
			eq.Kind, eq.Text = OpEq, "="
		} else {
			p.current = last
		}
	}

	if p.readCalc(sub) && p.ReadChar(';') {
		ret = true
	}

	if ret && sub.Kind == OpEq {
		sub.End = p.current
	}

	if !ret {
		p.discard(ast, sub)
		p.current = last
	}

	return ret
}

// ----------------------------------------------------------------------------
// Blocks

func (p *Parser) readBlock(ast *Node) bool {
	return p.readIfElseBlock(ast) || p.readWhileBlock(ast)
}

func (p *Parser) readIfElseBlock(ast *Node) bool {
	ret := false
	tmp := p.current

	sub := p.appendOrReuse(ast)
	sub.Kind, sub.Text = Block, "ifelse"

	if p.readIfBlock(sub) {
		for p.readComment() {
		}
		for p.readElifBlock(sub) {
		}
		for p.readComment() {
		}
		p.readElseBlock(sub)
		ret = true
	}

	p.SkipSpace()
	p.ReadChar(';')

	sub.End = p.current

	if !ret {
		sub.Kind, sub.Text = "", ""
		p.discard(ast, sub)
		p.current = tmp
	}

	return ret
}

func (p *Parser) readIfBlock(ast *Node) bool {
	return p.readCondBlock(ast, "if", p.readOpIf)
}

func (p *Parser) readElifBlock(ast *Node) bool {
	return p.readCondBlock(ast, "elif", p.readOpElif)
}

// readCondBlock parses KEYWORD '(' Calc ')' '{' Block* '}', shared by 'if' and
// 'elif' which differ in keyword only. The contextual messages name the
// keyword so diagnostics stay specific.
func (p *Parser) readCondBlock(ast *Node, keyword string, readOp func(*Node) bool) bool {
	ret := false
	tmp := p.current

	sub := p.appendOrReuse(ast)
	if readOp(sub) {
		cond := p.appendOrReuse(sub)

		p.SkipSpace()
		if p.ReadChar('(') {
			if p.readCalc(cond) {
				p.SkipSpace()
				if p.ReadChar(')') {
					p.SkipSpace()
					if p.ReadChar('{') {
						body := p.appendOrReuse(sub)
						body.Kind = Compound
						body.Begin = p.current

						p.readBlockList(body)

						p.SkipSpace()
						if p.ReadChar('}') {
							body.End = p.current
							sub.End = p.current
							ret = true
						} else {
							p.errmsg = fmt.Sprintf("Missing '%s' closing bracket '}'", keyword)
						}
					} else {
						p.errmsg = fmt.Sprintf("Missing '%s' opening bracket '{'", keyword)
					}
				} else {
					p.errmsg = fmt.Sprintf("Missing '%s' closing parenthesis ')'", keyword)
				}
			}
		} else {
			p.errmsg = fmt.Sprintf("Missing '%s' opening parenthesis '('", keyword)
		}
	}

	if !ret {
		p.discard(ast, sub)
		p.current = tmp
	}

	return ret
}

func (p *Parser) readElseBlock(ast *Node) bool {
	ret := false
	tmp := p.current

	sub := p.appendOrReuse(ast)
	if p.readOpElse(sub) {
		p.SkipSpace()
		if p.ReadChar('{') {
			body := p.appendOrReuse(sub)
			body.Kind = Compound
			body.Begin = p.current

			p.readBlockList(body)

			p.SkipSpace()
			if p.ReadChar('}') {
				body.End = p.current
				sub.End = p.current
				ret = true
			} else {
				p.errmsg = "Missing 'else' closing bracket '}'"
			}
		} else {
			p.errmsg = "Missing 'else' opening bracket '{'"
		}
	}

	if !ret {
		p.discard(ast, sub)
		p.current = tmp
	}

	return ret
}

func (p *Parser) readWhileBlock(ast *Node) bool {
	ret := false
	tmp := p.current

	sub := p.appendOrReuse(ast)
	if p.readOpWhile(sub) {
		cond := p.appendOrReuse(sub)

		p.SkipSpace()
		if p.ReadChar('(') {
			if p.readCalc(cond) {
				p.SkipSpace()
				if p.ReadChar(')') {
					p.SkipSpace()
					if p.ReadChar('{') {
						body := p.appendOrReuse(sub)
						body.Kind = Compound
						body.Begin = p.current

						p.readBlockList(body)

						p.SkipSpace()
						if p.ReadChar('}') {
							body.End = p.current
							p.ReadChar(';')
							sub.End = p.current
							ret = true
						} else {
							p.errmsg = "Missing 'while' closing bracket '}'"
						}
					} else {
						p.errmsg = "Missing 'while' opening bracket '{'"
					}
				} else {
					p.errmsg = "Missing 'while' closing parenthesis ')'"
				}
			}
		} else {
			p.errmsg = "Missing 'while' opening parenthesis '('"
		}
	}

	if !ret {
		p.discard(ast, sub)
		p.current = tmp
	}

	return ret
}

// ----------------------------------------------------------------------------
// Expressions

// The precedence levels below share one shape: parse an operand into the
// placeholder, then fold '(op operand)*' left-to-right, each operator lifting
// the tree built so far under itself via prependOrReuse.

func (p *Parser) readCalc(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	if p.readComp(sub) {
		for p.readOpLogic(sub) && p.readComp(sub) {
			sub.End = p.current
		}
		ret = true
	}

	if !ret {
		p.discard(ast, sub)
	}

	return ret
}

func (p *Parser) readComp(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	if p.readAdd(sub) {
		for p.readOpComp(sub) && p.readAdd(sub) {
			sub.End = p.current
		}
		ret = true
	}

	if !ret {
		p.discard(ast, sub)
	}

	return ret
}

func (p *Parser) readAdd(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	if p.readMul(sub) {
		for p.readOpAdd(sub) && p.readMul(sub) {
			sub.End = p.current
		}
		ret = true
	}

	if !ret {
		p.discard(ast, sub)
	}

	return ret
}

func (p *Parser) readMul(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	if p.readPow(sub) {
		for p.readOpMul(sub) && p.readPow(sub) {
			sub.End = p.current
		}
		ret = true
	}

	if !ret {
		p.discard(ast, sub)
	}

	return ret
}

func (p *Parser) readPow(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	if p.readPar(sub) {
		for p.readOpPow(sub) && p.readPar(sub) {
			sub.End = p.current
		}
		ret = true
	}

	if !ret {
		p.discard(ast, sub)
	}

	return ret
}

func (p *Parser) readPar(ast *Node) bool {
	ret := false

	sub := p.appendOrReuse(ast)

	p.SkipSpace()

	// Unary prefixes stack outermost-first: '!-x' reads as '!(-(x))', each
	// extra operator nesting one level deeper than the previous one.
	inner := sub
	for p.readOpUna(&inner) {
	}

	par := p.appendOrReuse(inner)

	if p.readIntLit(par) {
		ret = true
	} else if p.readFuncCall(par) {
		ret = true
	} else if p.readVar() {
		name := p.Capture("VAR")
		if !isReserved(name) {
			begin, end := p.CaptureSpan("VAR")
			par.Kind, par.Text = Var, name
			par.Begin, par.End = begin, end
			ret = true
		}
	} else if p.ReadChar('(') && p.readCalc(par) && p.ReadChar(')') {
		ret = true
	}

	if ret {
		for n := sub; n.Kind == OpUna && len(n.Edges) > 0; n = n.Edges[0] {
			n.End = p.current
		}
	}

	if !ret && sub != ast {
		ast.DropLast()
	}

	return ret
}

// ----------------------------------------------------------------------------
// Tokens

func (p *Parser) readVar() bool {
	ret := false

	p.SkipSpace()
	p.BeginCapture("VAR")
	if p.ReadID() {
		ret = true
	}
	p.EndCapture("VAR")

	return ret
}

func (p *Parser) readOpEq() bool {
	ret := false

	p.SkipSpace()
	p.BeginCapture("OPEQ")
	if p.ReadChar('=') {
		ret = true
	}
	p.EndCapture("OPEQ")

	return ret
}

func (p *Parser) readIntLit(par *Node) bool {
	p.BeginCapture("INT")
	if !p.ReadInt() {
		return false
	}
	p.EndCapture("INT")

	value, _ := strconv.ParseInt(p.Capture("INT"), 10, 64)
	begin, end := p.CaptureSpan("INT")

	par.Kind = Const
	par.Value = value
	par.Begin, par.End = begin, end
	return true
}

// readOpUna reads a single unary operator into *cur: the first one reuses the
// placeholder, every following one nests a fresh OpUna below it, and *cur is
// left pointing at the innermost node so the operand lands inside the chain.
func (p *Parser) readOpUna(cur **Node) bool {
	ret := false

	p.SkipSpace()
	p.BeginCapture("OPUNA")
	begin := p.current
	if p.ReadChar('+') || p.ReadChar('-') || p.ReadChar('!') {
		ret = true
	}
	p.EndCapture("OPUNA")

	if ret {
		sub := p.appendOrReuse(*cur)
		sub.Kind = OpUna
		sub.Text = p.Capture("OPUNA")
		sub.Begin, sub.End = begin, p.current
		*cur = sub
	}

	return ret
}

// readInfixOp is the shared body of the binary operator readers: skip space,
// capture one of the alternatives, then rotate the tree under a node carrying
// the operator symbol.
func (p *Parser) readInfixOp(ast *Node, tag string, kind NodeKind, match func() bool) bool {
	ret := false

	p.SkipSpace()
	p.BeginCapture(tag)
	begin := p.current
	if match() {
		ret = true
	}
	p.EndCapture(tag)

	if ret {
		sub := p.prependOrReuse(ast)
		sub.Kind = kind
		sub.Text = p.Capture(tag)
		if len(sub.Edges) == 0 {
			sub.Begin = begin
		}
		sub.End = p.current
	}

	return ret
}

func (p *Parser) readOpLogic(ast *Node) bool {
	return p.readInfixOp(ast, "OPLOGIC", OpLogic, func() bool {
		return p.ReadText("||") || p.ReadText("&&")
	})
}

func (p *Parser) readOpComp(ast *Node) bool {
	return p.readInfixOp(ast, "OPCOMP", OpComp, func() bool {
		return p.ReadText("==") || p.ReadText("!=") || p.ReadText("<=") ||
			p.ReadChar('<') || p.ReadText(">=") || p.ReadChar('>')
	})
}

func (p *Parser) readOpAdd(ast *Node) bool {
	return p.readInfixOp(ast, "OPADD", OpMath, func() bool {
		return p.ReadChar('+') || p.ReadChar('-')
	})
}

func (p *Parser) readOpMul(ast *Node) bool {
	return p.readInfixOp(ast, "OPMUL", OpMath, func() bool {
		return p.ReadChar('*') || p.ReadChar('/') || p.ReadChar('%')
	})
}

func (p *Parser) readOpPow(ast *Node) bool {
	return p.readInfixOp(ast, "OPPOW", OpMath, func() bool {
		return p.ReadChar('^')
	})
}

// readKeywordOp is the shared body of the statement keyword readers: match the
// keyword and stamp the node with the given kind and flavour. 'rotate' picks
// between prependOrReuse (block heads) and appendOrReuse (control words); every
// caller hands in an empty placeholder, which either helper reuses as is.
func (p *Parser) readKeywordOp(ast *Node, keyword string, kind NodeKind, rotate bool) bool {
	ret := false

	p.SkipSpace()
	begin := p.current
	if p.ReadText(keyword) {
		ret = true
	}

	if ret {
		var sub *Node
		if rotate {
			sub = p.prependOrReuse(ast)
		} else {
			sub = p.appendOrReuse(ast)
		}
		sub.Kind = kind
		sub.Text = keyword
		sub.Begin, sub.End = begin, p.current
	}

	return ret
}

func (p *Parser) readOpIf(ast *Node) bool    { return p.readKeywordOp(ast, "if", Block, true) }
func (p *Parser) readOpElif(ast *Node) bool  { return p.readKeywordOp(ast, "elif", Block, true) }
func (p *Parser) readOpElse(ast *Node) bool  { return p.readKeywordOp(ast, "else", Block, true) }
func (p *Parser) readOpWhile(ast *Node) bool { return p.readKeywordOp(ast, "while", Loop, true) }

func (p *Parser) readOpBreak(ast *Node) bool {
	return p.readKeywordOp(ast, "break", OpControl, false)
}

func (p *Parser) readOpContinue(ast *Node) bool {
	return p.readKeywordOp(ast, "continue", OpControl, false)
}

func (p *Parser) readOpReturn(ast *Node) bool {
	return p.readKeywordOp(ast, "return", OpControl, false)
}
