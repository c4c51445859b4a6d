package pysrc

import "fmt"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokNewline
	TokIndent
	TokDedent

	TokIdent
	TokNumber
	TokString

	// Keywords recognized by the stub grammar
	TokDef
	TokClass
	TokImport
	TokFrom
	TokAs
	TokPass
	TokNone
	TokTrue
	TokFalse

	// Operators and punctuation
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokComma
	TokColon
	TokDot
	TokEllipsis
	TokAssign
	TokStar
	TokDoubleStar
	TokSlash
	TokArrow
	TokPipe
	TokPlus
	TokMinus
)

var tokenNames = map[TokenKind]string{
	TokEOF:        "EOF",
	TokNewline:    "NEWLINE",
	TokIndent:     "INDENT",
	TokDedent:     "DEDENT",
	TokIdent:      "IDENT",
	TokNumber:     "NUMBER",
	TokString:     "STRING",
	TokDef:        "def",
	TokClass:      "class",
	TokImport:     "import",
	TokFrom:       "from",
	TokAs:         "as",
	TokPass:       "pass",
	TokNone:       "None",
	TokTrue:       "True",
	TokFalse:      "False",
	TokLParen:     "(",
	TokRParen:     ")",
	TokLBracket:   "[",
	TokRBracket:   "]",
	TokLBrace:     "{",
	TokRBrace:     "}",
	TokComma:      ",",
	TokColon:      ":",
	TokDot:        ".",
	TokEllipsis:   "...",
	TokAssign:     "=",
	TokStar:       "*",
	TokDoubleStar: "**",
	TokSlash:      "/",
	TokArrow:      "->",
	TokPipe:       "|",
	TokPlus:       "+",
	TokMinus:      "-",
}

// String returns a human-readable name for the token kind.
func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

var keywords = map[string]TokenKind{
	"def":    TokDef,
	"class":  TokClass,
	"import": TokImport,
	"from":   TokFrom,
	"as":     TokAs,
	"pass":   TokPass,
	"None":   TokNone,
	"True":   TokTrue,
	"False":  TokFalse,
}

// Token is one lexical unit of Python stub source. Start and End are byte
// offsets into the source string, so callers can splice replacements back
// into the original text without re-rendering.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
	Line  int
}

func (t Token) String() string {
	switch t.Kind {
	case TokIdent, TokNumber, TokString:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}
