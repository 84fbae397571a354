// Package treesitter classifies C and C++ with the tree-sitter grammars. It
// is a reference engine: it needs well-formed input to do well, but maps onto
// the same categories as the fuzzy classifier so the two can be compared.
package treesitter

import (
	"context"
	"fmt"
	"strings"

	"fuzzyhl/internal/classify"
	"fuzzyhl/internal/lang"
	"fuzzyhl/internal/lexer"

	sitter "github.com/smacker/go-tree-sitter"
	clang "github.com/smacker/go-tree-sitter/c"
	cpplang "github.com/smacker/go-tree-sitter/cpp"
)

var languages = map[lang.ID]*sitter.Language{
	lang.C:   clang.GetLanguage(),
	lang.CPP: cpplang.GetLanguage(),
}

// Language returns the grammar for dialect. Auto uses C++.
func Language(dialect lang.ID) *sitter.Language {
	if l, ok := languages[dialect]; ok {
		return l
	}
	return languages[lang.CPP]
}

func parse(ctx context.Context, parser *sitter.Parser, src []byte, dialect lang.ID) (*sitter.Tree, error) {
	parser.SetLanguage(Language(dialect))
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("tree-sitter parse: no tree")
	}
	return tree, nil
}

// Classify parses src with parser and returns gap-free spans over it.
// A parser must not be shared between goroutines.
func Classify(ctx context.Context, parser *sitter.Parser, src []byte, dialect lang.ID, identifiersOnly bool) ([]classify.Span, error) {
	if len(src) == 0 {
		return nil, nil
	}
	tree, err := parse(ctx, parser, src, dialect)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	raw := make([]classify.Span, 0, 64)
	collectLeafSpans(tree.RootNode(), src, dialect, "", "", &raw)
	spans := classify.Normalize(raw, len(src))
	if identifiersOnly {
		classify.ApplyIdentifiersOnly(spans)
	}
	return spans, nil
}

// Dump returns the S-expression of the syntax tree.
func Dump(ctx context.Context, parser *sitter.Parser, src []byte, dialect lang.ID) (string, error) {
	tree, err := parse(ctx, parser, src, dialect)
	if err != nil {
		return "", err
	}
	defer tree.Close()
	return tree.RootNode().String() + "\n", nil
}

// Literal nodes are classified whole; their inner leaves (quotes, escapes)
// carry no extra meaning.
var atomicNodes = map[string]classify.TokenCategory{
	"comment":            classify.TokenComment,
	"string_literal":     classify.TokenString,
	"raw_string_literal": classify.TokenString,
	"system_lib_string":  classify.TokenString,
	"char_literal":       classify.TokenChar,
	"number_literal":     classify.TokenNumber,
	"preproc_arg":        classify.TokenPreprocessor,
}

func collectLeafSpans(node *sitter.Node, src []byte, dialect lang.ID, parentType, grandType string, out *[]classify.Span) {
	if node == nil {
		return
	}

	start := int(node.StartByte())
	end := int(node.EndByte())
	nodeType := node.Type()

	if cat, ok := atomicNodes[nodeType]; ok {
		*out = append(*out, classify.Span{Start: start, End: end, Cat: cat})
		return
	}

	if node.ChildCount() == 0 {
		if start >= end {
			return
		}
		cat := classifyLeaf(dialect, node, parentType, grandType, string(src[start:end]))
		*out = append(*out, classify.Span{Start: start, End: end, Cat: cat})
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectLeafSpans(node.Child(i), src, dialect, nodeType, parentType, out)
	}
}

func classifyLeaf(dialect lang.ID, node *sitter.Node, parentType, grandType, text string) classify.TokenCategory {
	nodeType := node.Type()
	lexeme := strings.TrimSpace(text)

	if nodeType == "ERROR" {
		return classify.TokenPlain
	}
	if strings.HasPrefix(nodeType, "#") || nodeType == "preproc_directive" {
		return classify.TokenPreprocessor
	}

	switch nodeType {
	case "primitive_type", "type_identifier", "sized_type_specifier", "namespace_identifier", "auto":
		return classify.TokenType
	case "true", "false", "null", "nullptr", "this":
		return classify.TokenKeyword
	}

	if isIdentifierNode(nodeType) {
		if macroContext[parentType] {
			return classify.TokenMacro
		}
		if isFunctionContext(nodeType, parentType, grandType) {
			return classify.TokenFunction
		}
		if nodeType == "identifier" && typeContext[parentType] {
			return classify.TokenType
		}
		return classify.TokenIdentifier
	}

	if lexer.IsKeyword(lexeme, dialect) {
		return classify.TokenKeyword
	}
	if !node.IsNamed() {
		if strings.ContainsAny(lexeme, "{}()[];,") && len(lexeme) == 1 {
			return classify.TokenPunctuation
		}
		if looksLikeOperator(lexeme) {
			return classify.TokenOperator
		}
		if keywordLike(lexeme) {
			return classify.TokenKeyword
		}
	}
	return classify.TokenPlain
}

func isIdentifierNode(nodeType string) bool {
	return nodeType == "identifier" || nodeType == "field_identifier" || nodeType == "statement_identifier" || nodeType == "destructor_name" || nodeType == "operator_name"
}

func isFunctionContext(nodeType, parentType, grandType string) bool {
	if functionContext[parentType] {
		return true
	}
	// a.f(), ns::f() and f<T>() name the callee one level further down.
	if calleeWrapper[parentType] && functionContext[grandType] {
		return nodeType != "identifier" || parentType != "field_expression"
	}
	return false
}

var functionContext = map[string]bool{
	"function_declarator": true,
	"call_expression":     true,
}

var calleeWrapper = map[string]bool{
	"field_expression":     true,
	"qualified_identifier": true,
	"template_function":    true,
	"template_method":      true,
}

var macroContext = map[string]bool{
	"preproc_def":          true,
	"preproc_function_def": true,
	"preproc_ifdef":        true,
	"preproc_defined":      true,
	"preproc_call":         true,
}

var typeContext = map[string]bool{
	"type_definition":      true,
	"struct_specifier":     true,
	"union_specifier":      true,
	"enum_specifier":       true,
	"class_specifier":      true,
	"base_class_clause":    true,
	"type_descriptor":      true,
	"namespace_definition": true,
}

func looksLikeOperator(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', '^', '~', ':', '.', '?':
		default:
			return false
		}
	}
	return true
}

// keywordLike catches grammar keywords outside the lexer's fixed set, such
// as "defined" or "final".
func keywordLike(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}
