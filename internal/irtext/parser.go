package irtext

import (
	"fmt"
	"strconv"

	"github.com/gnolang/tdce/internal/ir"
)

// ParseError reports a syntax error with its position.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// DefaultFunc names the function holding instructions written outside of
// any "func" group.
const DefaultFunc = "main"

var binaryOps = map[string]string{
	"+":  "add",
	"-":  "sub",
	"*":  "mul",
	"/":  "div",
	"%":  "rem",
	"<":  "lt",
	"<=": "le",
	">":  "gt",
	">=": "ge",
	"==": "eq",
	"!=": "ne",
	"&":  "and",
	"|":  "or",
	"^":  "xor",
	"<<": "shl",
	">>": "shr",
}

var infixOf = func() map[string]string {
	m := make(map[string]string, len(binaryOps))
	for sym, op := range binaryOps {
		m[op] = sym
	}
	return m
}()

type parser struct {
	tokens []Token
	pos    int
}

// Parse reads a module in text form.
//
//	func main {
//	entry:
//	  a = 7
//	  b = a + 2
//	  cbr b, then, done
//	then:
//	  print b
//	  br done
//	done:
//	  ret b
//	}
//
// Instructions outside of a func group form a function named "main", so
// "a = 7; b = a + 2; ret b" is a complete module.
func Parse(name, src string) (*ir.Module, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseModule(name)
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Type != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t Token, format string, args ...any) error {
	return &ParseError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(typ TokenType) (Token, error) {
	t := p.next()
	if t.Type != typ {
		return t, p.errorf(t, "expected %s, got %s %q", typ, t.Type, t.Value)
	}
	return t, nil
}

func (p *parser) skipNewlines() {
	for p.peek().Type == TokenNewline {
		p.next()
	}
}

func (p *parser) endOfLine() error {
	t := p.peek()
	switch t.Type {
	case TokenNewline:
		p.next()
		return nil
	case TokenEOF, TokenRBrace:
		return nil
	default:
		return p.errorf(t, "unexpected %s %q at end of instruction", t.Type, t.Value)
	}
}

func (p *parser) parseModule(name string) (*ir.Module, error) {
	m := &ir.Module{Name: name}
	var loose *ir.Builder

	for {
		p.skipNewlines()
		t := p.peek()
		if t.Type == TokenEOF {
			break
		}
		if t.Type == TokenIdent && t.Value == "func" {
			f, err := p.parseFunc()
			if err != nil {
				return nil, err
			}
			if m.Func(f.Name) != nil {
				return nil, p.errorf(t, "function %q defined twice", f.Name)
			}
			m.Funcs = append(m.Funcs, f)
			continue
		}
		if loose == nil {
			loose = ir.NewBuilder(DefaultFunc)
		}
		if err := p.parseLine(loose); err != nil {
			return nil, err
		}
	}

	if loose != nil {
		if m.Func(DefaultFunc) != nil {
			return nil, fmt.Errorf("function %q defined twice", DefaultFunc)
		}
		f, err := loose.Finish()
		if err != nil {
			return nil, err
		}
		m.Funcs = append([]*ir.Func{f}, m.Funcs...)
	}
	return m, nil
}

func (p *parser) parseFunc() (*ir.Func, error) {
	p.next() // func
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}

	b := ir.NewBuilder(name.Value)
	for {
		p.skipNewlines()
		t := p.peek()
		if t.Type == TokenRBrace {
			p.next()
			break
		}
		if t.Type == TokenEOF {
			return nil, p.errorf(t, "function %q is not closed", name.Value)
		}
		if err := p.parseLine(b); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

func (p *parser) parseLine(b *ir.Builder) error {
	t, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}

	switch next := p.peek(); {
	case next.Type == TokenColon:
		p.next()
		b.Block(t.Value)
		return nil
	case next.Type == TokenAssign:
		p.next()
		in, err := p.parseRHS(ir.Var(t.Value))
		if err != nil {
			return err
		}
		b.Emit(in)
		return p.endOfLine()
	}

	in, err := p.parseStatement(t)
	if err != nil {
		return err
	}
	b.Emit(in)
	return p.endOfLine()
}

// parseStatement parses an instruction without a result.
func (p *parser) parseStatement(op Token) (*ir.Instr, error) {
	in := &ir.Instr{Op: op.Value}
	switch op.Value {
	case "return", ir.OpRet:
		in.Op = ir.OpRet
		if p.atEndOfLine() {
			break
		}
		a, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		in.Args = []ir.Operand{a}
	case ir.OpBr:
		label, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		in.Targets = []string{label.Value}
	case ir.OpCbr:
		a, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		in.Args = []ir.Operand{a}
		for i := 0; i < 2; i++ {
			p.skipComma()
			label, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			in.Targets = append(in.Targets, label.Value)
		}
	case ir.OpCall:
		callee, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		in.Callee = callee.Value
		if in.Args, err = p.parseArgs(); err != nil {
			return nil, err
		}
	default:
		var err error
		if in.Args, err = p.parseArgs(); err != nil {
			return nil, err
		}
	}
	in.Effect = ir.HasSideEffect(in.Op)
	return in, nil
}

// parseRHS parses what follows "def =".
func (p *parser) parseRHS(def ir.Var) (*ir.Instr, error) {
	in := &ir.Instr{Def: def}
	t := p.peek()

	// Prefix form: "phi a, b", "call f a", "neg a".
	if t.Type == TokenIdent && p.isPrefixOp() {
		p.next()
		in.Op = t.Value
		if t.Value == ir.OpCall {
			callee, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			in.Callee = callee.Value
		}
		var err error
		if in.Args, err = p.parseArgs(); err != nil {
			return nil, err
		}
		in.Effect = ir.HasSideEffect(in.Op)
		return in, nil
	}

	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if op := p.peek(); op.Type == TokenOp {
		p.next()
		rhs, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		in.Op = binaryOps[op.Value]
		in.Args = []ir.Operand{lhs, rhs}
		return in, nil
	}

	in.Args = []ir.Operand{lhs}
	if lhs.IsVar() {
		in.Op = ir.OpCopy
	} else {
		in.Op = ir.OpConst
	}
	return in, nil
}

// isPrefixOp reports whether the identifier at the current position is an
// opcode followed by its operands rather than a variable.
func (p *parser) isPrefixOp() bool {
	switch p.peekAt(1).Type {
	case TokenIdent, TokenInt:
		return true
	}
	return false
}

func (p *parser) atEndOfLine() bool {
	switch p.peek().Type {
	case TokenNewline, TokenEOF, TokenRBrace:
		return true
	}
	return false
}

func (p *parser) skipComma() {
	if p.peek().Type == TokenComma {
		p.next()
	}
}

func (p *parser) parseArgs() ([]ir.Operand, error) {
	var args []ir.Operand
	for !p.atEndOfLine() {
		if len(args) > 0 {
			p.skipComma()
		}
		a, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, nil
}

func (p *parser) parseOperand() (ir.Operand, error) {
	t := p.next()
	neg := false
	if t.Type == TokenOp && t.Value == "-" && p.peek().Type == TokenInt {
		neg = true
		t = p.next()
	}

	switch t.Type {
	case TokenIdent:
		return ir.VarOperand(ir.Var(t.Value)), nil
	case TokenInt:
		v, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return ir.Operand{}, p.errorf(t, "invalid integer %q", t.Value)
		}
		if neg {
			v = -v
		}
		return ir.ConstOperand(v), nil
	default:
		return ir.Operand{}, p.errorf(t, "expected operand, got %s %q", t.Type, t.Value)
	}
}
