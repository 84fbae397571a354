package classify

import "fmt"

type TokenCategory int

const (
	TokenPlain TokenCategory = iota
	TokenKeyword
	TokenType
	TokenIdentifier
	TokenFunction
	TokenMacro
	TokenString
	TokenNumber
	TokenChar
	TokenComment
	TokenPreprocessor
	TokenOperator
	TokenPunctuation
)

var categoryNames = [...]string{
	TokenPlain:        "plain",
	TokenKeyword:      "keyword",
	TokenType:         "type",
	TokenIdentifier:   "identifier",
	TokenFunction:     "function",
	TokenMacro:        "macro",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenChar:         "char",
	TokenComment:      "comment",
	TokenPreprocessor: "preprocessor",
	TokenOperator:     "operator",
	TokenPunctuation:  "punctuation",
}

// String returns the lower-case name used in CSS classes and config files.
func (c TokenCategory) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("TokenCategory(%d)", int(c))
}

// Categories lists every category in declaration order.
func Categories() []TokenCategory {
	out := make([]TokenCategory, len(categoryNames))
	for i := range categoryNames {
		out[i] = TokenCategory(i)
	}
	return out
}

// Naming reports whether the category survives identifiers-only mode.
func (c TokenCategory) Naming() bool {
	switch c {
	case TokenKeyword, TokenType, TokenIdentifier, TokenFunction, TokenMacro:
		return true
	}
	return false
}
