package lexer

type Kind uint8

const (
	Unknown Kind = iota
	Whitespace
	Comment
	Keyword
	Identifier
	Number
	String
	Char
	Hash
	Operator
	Punctuation
)

var kindNames = [...]string{
	Unknown:     "Unknown",
	Whitespace:  "Whitespace",
	Comment:     "Comment",
	Keyword:     "Keyword",
	Identifier:  "Identifier",
	Number:      "Number",
	String:      "String",
	Char:        "Char",
	Hash:        "Hash",
	Operator:    "Operator",
	Punctuation: "Punctuation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Token is a lexed byte range of the source. Start and End are byte offsets,
// Line and Col are 1-based and Col counts bytes. Directive is set on every token
// of a preprocessor logical line, including its leading '#'.
type Token struct {
	Kind      Kind
	Start     int
	End       int
	Line      int
	Col       int
	Directive bool
}

func (t Token) Len() int {
	return t.End - t.Start
}

func (t Token) Text(src []byte) string {
	return string(src[t.Start:t.End])
}

func (t Token) Is(src []byte, text string) bool {
	return t.End-t.Start == len(text) && string(src[t.Start:t.End]) == text
}

// IsTrivia reports whether the token carries no syntax.
func (t Token) IsTrivia() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}
