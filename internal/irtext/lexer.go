package irtext

import (
	"fmt"
	"strings"
)

// TokenType defines the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNewline
	TokenIdent
	TokenInt
	TokenOp
	TokenAssign
	TokenColon
	TokenComma
	TokenLBrace
	TokenRBrace
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "Newline"
	case TokenIdent:
		return "Ident"
	case TokenInt:
		return "Int"
	case TokenOp:
		return "Op"
	case TokenAssign:
		return "Assign"
	case TokenColon:
		return "Colon"
	case TokenComma:
		return "Comma"
	case TokenLBrace:
		return "LBrace"
	case TokenRBrace:
		return "RBrace"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// two-character operators come first so "<=" is not read as "<" "=".
var operators = []string{"<<", ">>", "<=", ">=", "==", "!=", "+", "-", "*", "/", "%", "<", ">", "&", "|", "^"}

// Lex performs lexical analysis on the input string
// and returns a sequence of tokens. Semicolons separate instructions
// like newlines do and '#' starts a comment running to the end of line.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1
	i := 0

	emit := func(typ TokenType, value string) {
		tokens = append(tokens, Token{Type: typ, Value: value, Line: line, Col: col})
		col += len(value)
		i += len(value)
	}

	for i < len(input) {
		c := input[i]

		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
			col++
			continue
		case c == '#':
			for i < len(input) && input[i] != '\n' {
				i++
				col++
			}
			continue
		case c == '\n' || c == ';':
			tokens = append(tokens, Token{Type: TokenNewline, Value: string(c), Line: line, Col: col})
			i++
			if c == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			continue
		case isIdentifierStart(c):
			j := i + 1
			for j < len(input) && isIdentifierChar(input[j]) {
				j++
			}
			emit(TokenIdent, input[i:j])
			continue
		case isDigit(c):
			j := i + 1
			for j < len(input) && isDigit(input[j]) {
				j++
			}
			emit(TokenInt, input[i:j])
			continue
		case c == ':':
			emit(TokenColon, ":")
			continue
		case c == ',':
			emit(TokenComma, ",")
			continue
		case c == '{':
			emit(TokenLBrace, "{")
			continue
		case c == '}':
			emit(TokenRBrace, "}")
			continue
		}

		if op := matchOperator(input[i:]); op != "" {
			emit(TokenOp, op)
			continue
		}
		if c == '=' {
			emit(TokenAssign, "=")
			continue
		}
		return nil, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("unexpected character %q", c)}
	}

	tokens = append(tokens, Token{Type: TokenEOF, Line: line, Col: col})
	return tokens, nil
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '.' || c == '$'
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
