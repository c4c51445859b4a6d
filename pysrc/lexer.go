package pysrc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sbvh/pyxstub/errors"
)

// lexer turns Python stub source into a token stream with explicit NEWLINE,
// INDENT and DEDENT tokens. Newlines inside brackets are implicit line
// joins, as in CPython's tokenizer.
type lexer struct {
	src     string
	pos     int
	line    int
	depth   int // bracket nesting; >0 suppresses line structure
	indents []int
	toks    []Token
}

// tokenize lexes src completely, or fails on the first lexical error.
func tokenize(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1, indents: []int{0}}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.toks, nil
}

func (lx *lexer) errorf(format string, args ...interface{}) error {
	args = append([]interface{}{lx.line}, args...)
	return errors.Wrapf(errors.ErrSyntax, "line %d: "+format, args...)
}

func (lx *lexer) emit(kind TokenKind, start int) {
	lx.toks = append(lx.toks, Token{
		Kind:  kind,
		Text:  lx.src[start:lx.pos],
		Start: start,
		End:   lx.pos,
		Line:  lx.line,
	})
}

func (lx *lexer) peek() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) peekAt(off int) byte {
	if lx.pos+off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+off]
}

func (lx *lexer) run() error {
	atLineStart := true
	for lx.pos < len(lx.src) {
		if atLineStart && lx.depth == 0 {
			blank, err := lx.handleIndentation()
			if err != nil {
				return err
			}
			atLineStart = false
			if blank {
				atLineStart = true
				continue
			}
		}

		ch := lx.peek()
		switch {
		case ch == '\n':
			lx.pos++
			lx.line++
			if lx.depth == 0 {
				lx.emitNewline()
				atLineStart = true
			}

		case ch == ' ' || ch == '\t' || ch == '\r':
			lx.pos++

		case ch == '#':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}

		case ch == '\\' && lx.peekAt(1) == '\n':
			// explicit line continuation
			lx.pos += 2
			lx.line++

		case ch == '\'' || ch == '"':
			if err := lx.scanString(); err != nil {
				return err
			}

		case isDigit(ch) || (ch == '.' && isDigit(lx.peekAt(1))):
			lx.scanNumber()

		case isIdentStart(ch):
			lx.scanIdent()

		case ch >= utf8.RuneSelf:
			r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
			if !unicode.IsLetter(r) {
				return lx.errorf("unexpected character %q", string(r))
			}
			lx.scanIdent()

		default:
			if err := lx.scanOperator(); err != nil {
				return err
			}
		}
	}

	// Close out the final logical line and any open indentation levels.
	if n := len(lx.toks); n > 0 {
		switch lx.toks[n-1].Kind {
		case TokNewline, TokIndent, TokDedent:
		default:
			lx.emit(TokNewline, lx.pos)
		}
	}
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.emit(TokDedent, lx.pos)
	}
	lx.emit(TokEOF, lx.pos)
	return nil
}

// emitNewline appends a NEWLINE unless the line produced no tokens at all.
func (lx *lexer) emitNewline() {
	if n := len(lx.toks); n > 0 {
		switch lx.toks[n-1].Kind {
		case TokNewline, TokIndent, TokDedent:
			return
		}
		lx.emit(TokNewline, lx.pos-1)
	}
}

// handleIndentation measures the leading whitespace of a logical line and
// emits INDENT/DEDENT tokens. Returns true for blank or comment-only lines,
// which carry no indentation meaning.
func (lx *lexer) handleIndentation() (blank bool, err error) {
	width := 0
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case ' ':
			width++
			lx.pos++
		case '\t':
			width += 8 - width%8
			lx.pos++
		case '\r':
			lx.pos++
		default:
			goto measured
		}
	}
measured:
	if lx.pos >= len(lx.src) {
		return true, nil
	}
	if ch := lx.src[lx.pos]; ch == '\n' || ch == '#' {
		if ch == '#' {
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		}
		if lx.pos < len(lx.src) {
			lx.pos++ // consume the newline
			lx.line++
		}
		return true, nil
	}

	top := lx.indents[len(lx.indents)-1]
	switch {
	case width > top:
		lx.indents = append(lx.indents, width)
		lx.emit(TokIndent, lx.pos)
	case width < top:
		for len(lx.indents) > 0 && lx.indents[len(lx.indents)-1] > width {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.emit(TokDedent, lx.pos)
		}
		if len(lx.indents) == 0 || lx.indents[len(lx.indents)-1] != width {
			return false, lx.errorf("inconsistent dedent")
		}
	}
	return false, nil
}

func (lx *lexer) scanIdent() {
	start := lx.pos
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		if isIdentStart(ch) || isDigit(ch) {
			lx.pos++
			continue
		}
		if ch >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				lx.pos += size
				continue
			}
		}
		break
	}
	text := lx.src[start:lx.pos]
	if kw, ok := keywords[text]; ok {
		lx.emit(kw, start)
		return
	}
	lx.emit(TokIdent, start)
}

func (lx *lexer) scanNumber() {
	start := lx.pos
	if lx.peek() == '0' && (lx.peekAt(1) == 'x' || lx.peekAt(1) == 'X' ||
		lx.peekAt(1) == 'o' || lx.peekAt(1) == 'O' ||
		lx.peekAt(1) == 'b' || lx.peekAt(1) == 'B') {
		lx.pos += 2
		for lx.pos < len(lx.src) && (isAlnum(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
			lx.pos++
		}
		lx.emit(TokNumber, start)
		return
	}

	for lx.pos < len(lx.src) && (isDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
		lx.pos++
	}
	if lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		lx.pos++
		for lx.pos < len(lx.src) && (isDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
			lx.pos++
		}
	} else if lx.peek() == '.' && lx.pos > start {
		// trailing-dot float like "1."
		lx.pos++
	}
	if ch := lx.peek(); ch == 'e' || ch == 'E' {
		next := lx.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(lx.peekAt(2))) {
			lx.pos++
			if lx.peek() == '+' || lx.peek() == '-' {
				lx.pos++
			}
			for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
				lx.pos++
			}
		}
	}
	if ch := lx.peek(); ch == 'j' || ch == 'J' {
		lx.pos++
	}
	lx.emit(TokNumber, start)
}

func (lx *lexer) scanString() error {
	start := lx.pos
	quote := lx.src[lx.pos]
	triple := lx.peekAt(1) == quote && lx.peekAt(2) == quote
	if triple {
		lx.pos += 3
		closer := strings.Repeat(string(quote), 3)
		for lx.pos < len(lx.src) {
			if lx.src[lx.pos] == '\\' && lx.pos+1 < len(lx.src) {
				if lx.src[lx.pos+1] == '\n' {
					lx.line++
				}
				lx.pos += 2
				continue
			}
			if strings.HasPrefix(lx.src[lx.pos:], closer) {
				lx.pos += 3
				lx.emit(TokString, start)
				return nil
			}
			if lx.src[lx.pos] == '\n' {
				lx.line++
			}
			lx.pos++
		}
		return lx.errorf("unterminated triple-quoted string")
	}

	lx.pos++
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\\':
			lx.pos += 2
		case byte(quote):
			lx.pos++
			lx.emit(TokString, start)
			return nil
		case '\n':
			return lx.errorf("unterminated string literal")
		default:
			lx.pos++
		}
	}
	return lx.errorf("unterminated string literal")
}

func (lx *lexer) scanOperator() error {
	start := lx.pos
	ch := lx.src[lx.pos]
	switch ch {
	case '(':
		lx.depth++
		lx.pos++
		lx.emit(TokLParen, start)
	case ')':
		lx.depth--
		lx.pos++
		lx.emit(TokRParen, start)
	case '[':
		lx.depth++
		lx.pos++
		lx.emit(TokLBracket, start)
	case ']':
		lx.depth--
		lx.pos++
		lx.emit(TokRBracket, start)
	case '{':
		lx.depth++
		lx.pos++
		lx.emit(TokLBrace, start)
	case '}':
		lx.depth--
		lx.pos++
		lx.emit(TokRBrace, start)
	case ',':
		lx.pos++
		lx.emit(TokComma, start)
	case ':':
		lx.pos++
		lx.emit(TokColon, start)
	case '=':
		lx.pos++
		lx.emit(TokAssign, start)
	case '|':
		lx.pos++
		lx.emit(TokPipe, start)
	case '+':
		lx.pos++
		lx.emit(TokPlus, start)
	case '/':
		lx.pos++
		lx.emit(TokSlash, start)
	case '-':
		if lx.peekAt(1) == '>' {
			lx.pos += 2
			lx.emit(TokArrow, start)
		} else {
			lx.pos++
			lx.emit(TokMinus, start)
		}
	case '*':
		if lx.peekAt(1) == '*' {
			lx.pos += 2
			lx.emit(TokDoubleStar, start)
		} else {
			lx.pos++
			lx.emit(TokStar, start)
		}
	case '.':
		if lx.peekAt(1) == '.' && lx.peekAt(2) == '.' {
			lx.pos += 3
			lx.emit(TokEllipsis, start)
		} else {
			lx.pos++
			lx.emit(TokDot, start)
		}
	default:
		return lx.errorf("unexpected character %q", string(rune(ch)))
	}
	return nil
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlnum(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
