package lexer

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"fuzzyhl/internal/lang"
)

const (
	punctuation = "{}()[];,"
	singleOps   = "+-*/%<>=!&|^~?.:#"
)

// Longest first, so the first prefix match is the maximal munch.
var multiOps = [][]byte{
	[]byte("<<="), []byte(">>="), []byte("->*"), []byte("..."), []byte("<=>"),
	[]byte("::"), []byte("->"), []byte("++"), []byte("--"), []byte("<<"),
	[]byte(">>"), []byte("<="), []byte(">="), []byte("=="), []byte("!="),
	[]byte("&&"), []byte("||"), []byte("+="), []byte("-="), []byte("*="),
	[]byte("/="), []byte("%="), []byte("&="), []byte("|="), []byte("^="),
	[]byte(".*"), []byte("##"),
}

var encodingPrefixes = map[string]bool{"L": true, "u": true, "U": true, "u8": true}

var rawPrefixes = map[string]bool{"R": true, "LR": true, "uR": true, "UR": true, "u8R": true}

var includeDirectives = map[string]bool{"include": true, "include_next": true, "import": true}

type scanner struct {
	src      []byte
	pos      int
	line     int
	lineOff  int
	keywords map[string]bool
	toks     []Token

	// lineStart is true while only trivia has been seen on the current
	// logical line.
	lineStart   bool
	inDirective bool
	dirName     string
	dirSig      int
}

// Lex splits src into tokens. It never fails: bytes that fit no rule become
// Unknown tokens, and the tokens cover src contiguously.
func Lex(src []byte, dialect lang.ID) []Token {
	s := &scanner{
		src:       src,
		line:      1,
		keywords:  keywordSet(dialect),
		lineStart: true,
		toks:      make([]Token, 0, len(src)/3+1),
	}

	for s.pos < len(s.src) {
		if s.inDirective && s.atNewline(s.pos) {
			s.inDirective = false
			s.lineStart = true
		}

		start := s.pos
		line, col := s.line, start-s.lineOff+1
		kind := s.scan()
		if s.pos <= start {
			// Unreachable with the rules above; keeps the loop total.
			s.pos = start + 1
			kind = Unknown
		}

		s.toks = append(s.toks, Token{
			Kind:      kind,
			Start:     start,
			End:       s.pos,
			Line:      line,
			Col:       col,
			Directive: s.inDirective,
		})
		s.track(start)
		s.after(kind, start)
	}
	return s.toks
}

func (s *scanner) scan() Kind {
	c := s.src[s.pos]
	switch {
	case isSpace(c) || s.spliceLen(s.pos) > 0:
		return s.scanWhitespace()
	case c == '/' && s.peek(1) == '/':
		return s.scanLineComment()
	case c == '/' && s.peek(1) == '*':
		return s.scanBlockComment()
	case c == '#' && s.lineStart && !s.inDirective:
		s.pos++
		s.inDirective = true
		s.dirName = ""
		s.dirSig = 0
		return Hash
	case c == '<' && s.inDirective && s.dirSig == 1 && includeDirectives[s.dirName]:
		return s.scanHeaderName()
	case isDigit(c) || c == '.' && isDigit(s.peek(1)):
		return s.scanNumber()
	case c == '"':
		return s.scanQuoted('"', String)
	case c == '\'':
		return s.scanQuoted('\'', Char)
	case isIdentStart(c):
		return s.scanIdentifier()
	case c >= utf8.RuneSelf:
		r, size := utf8.DecodeRune(s.src[s.pos:])
		if r != utf8.RuneError && unicode.IsLetter(r) {
			return s.scanIdentifier()
		}
		s.pos += size
		return Unknown
	case strings.IndexByte(punctuation, c) >= 0:
		s.pos++
		return Punctuation
	}

	if n := s.operatorLen(); n > 0 {
		s.pos += n
		return Operator
	}
	s.pos++
	return Unknown
}

func (s *scanner) after(kind Kind, start int) {
	switch kind {
	case Whitespace:
		if !s.inDirective && bytes.IndexByte(s.src[start:s.pos], '\n') >= 0 {
			s.lineStart = true
		}
	case Comment:
		if !s.inDirective && bytes.IndexByte(s.src[start:s.pos], '\n') >= 0 {
			s.lineStart = true
		}
	case Hash:
		s.lineStart = false
	default:
		s.lineStart = false
		if !s.inDirective {
			return
		}
		s.dirSig++
		if s.dirSig == 1 && (kind == Identifier || kind == Keyword) {
			s.dirName = string(s.src[start:s.pos])
		}
	}
}

func (s *scanner) track(start int) {
	for i := start; i < s.pos; i++ {
		if s.src[i] == '\n' {
			s.line++
			s.lineOff = i + 1
		}
	}
}

func (s *scanner) peek(k int) byte {
	if s.pos+k < len(s.src) {
		return s.src[s.pos+k]
	}
	return 0
}

func (s *scanner) atNewline(i int) bool {
	if i >= len(s.src) {
		return false
	}
	return s.src[i] == '\n' || s.src[i] == '\r' && i+1 < len(s.src) && s.src[i+1] == '\n'
}

// spliceLen returns the length of a backslash-newline at i, or 0.
func (s *scanner) spliceLen(i int) int {
	if i >= len(s.src) || s.src[i] != '\\' {
		return 0
	}
	if i+1 < len(s.src) && s.src[i+1] == '\n' {
		return 2
	}
	if i+2 < len(s.src) && s.src[i+1] == '\r' && s.src[i+2] == '\n' {
		return 3
	}
	return 0
}

func (s *scanner) scanWhitespace() Kind {
	for s.pos < len(s.src) {
		if n := s.spliceLen(s.pos); n > 0 {
			s.pos += n
			continue
		}
		c := s.src[s.pos]
		if !isSpace(c) {
			break
		}
		// An unescaped newline ends a directive; leave it for the next token.
		if s.inDirective && s.atNewline(s.pos) {
			break
		}
		s.pos++
	}
	return Whitespace
}

func (s *scanner) scanLineComment() Kind {
	s.pos += 2
	for s.pos < len(s.src) {
		if n := s.spliceLen(s.pos); n > 0 {
			s.pos += n
			continue
		}
		if s.atNewline(s.pos) {
			break
		}
		s.pos++
	}
	return Comment
}

func (s *scanner) scanBlockComment() Kind {
	end := bytes.Index(s.src[s.pos+2:], []byte("*/"))
	if end < 0 {
		s.pos = len(s.src)
		return Comment
	}
	s.pos += 2 + end + 2
	return Comment
}

func (s *scanner) scanNumber() Kind {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isIdentChar(c) || c == '.':
			s.pos++
			if (c == 'e' || c == 'E' || c == 'p' || c == 'P') && (s.peek(0) == '+' || s.peek(0) == '-') {
				s.pos++
			}
		case c == '\'' && isIdentChar(s.peek(1)):
			s.pos += 2
		default:
			return Number
		}
	}
	return Number
}

// scanQuoted scans a string or character literal starting at the opening
// quote. An unterminated literal stops before the end of the line.
func (s *scanner) scanQuoted(quote byte, kind Kind) Kind {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos++
			if s.pos < len(s.src) {
				if s.src[s.pos] == '\r' && s.peek(1) == '\n' {
					s.pos++
				}
				s.pos++
			}
		case c == quote:
			s.pos++
			return kind
		case s.atNewline(s.pos):
			return kind
		default:
			s.pos++
		}
	}
	return kind
}

// scanRawString scans R"delim(...)delim" starting at the opening quote. A
// malformed delimiter falls back to an ordinary string.
func (s *scanner) scanRawString() Kind {
	open := s.pos + 1
	i := open
	for i < len(s.src) && s.src[i] != '(' {
		c := s.src[i]
		if i-open >= 16 || c == ')' || c == '\\' || c == '"' || isSpace(c) {
			return s.scanQuoted('"', String)
		}
		i++
	}
	if i >= len(s.src) {
		return s.scanQuoted('"', String)
	}

	closing := make([]byte, 0, i-open+2)
	closing = append(closing, ')')
	closing = append(closing, s.src[open:i]...)
	closing = append(closing, '"')

	end := bytes.Index(s.src[i+1:], closing)
	if end < 0 {
		s.pos = len(s.src)
		return String
	}
	s.pos = i + 1 + end + len(closing)
	return String
}

func (s *scanner) scanHeaderName() Kind {
	s.pos++
	for s.pos < len(s.src) {
		if s.src[s.pos] == '>' {
			s.pos++
			return String
		}
		if s.atNewline(s.pos) {
			break
		}
		s.pos++
	}
	return String
}

func (s *scanner) scanIdentifier() Kind {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isIdentChar(c) {
			s.pos++
			continue
		}
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(s.src[s.pos:])
			if r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)) {
				s.pos += size
				continue
			}
		}
		break
	}

	word := string(s.src[start:s.pos])
	switch s.peek(0) {
	case '"':
		if rawPrefixes[word] {
			return s.scanRawString()
		}
		if encodingPrefixes[word] {
			return s.scanQuoted('"', String)
		}
	case '\'':
		if encodingPrefixes[word] {
			return s.scanQuoted('\'', Char)
		}
	}

	if s.keywords[word] {
		return Keyword
	}
	return Identifier
}

func (s *scanner) operatorLen() int {
	rest := s.src[s.pos:]
	for _, op := range multiOps {
		if bytes.HasPrefix(rest, op) {
			return len(op)
		}
	}
	if strings.IndexByte(singleOps, rest[0]) >= 0 {
		return 1
	}
	return 0
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
