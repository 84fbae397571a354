package classify

import (
	"fuzzyhl/internal/fuzzy"
	"fuzzyhl/internal/lexer"
)

type Options struct {
	IdentifiersOnly bool
}

// fact records what the tree says about a token's position.
type fact uint8

const (
	factPreprocessor fact = 1 << iota
	factMacroName
	factFuncDecl
	factDeclName
	factTypedefName
	factTypePosition
	factCall
)

type classifier struct {
	t      *fuzzy.Tree
	facts  []fact
	macros map[string]bool
	types  map[string]bool
}

type rule struct {
	name  string
	match func(c *classifier, i int, tok lexer.Token) bool
	cat   TokenCategory
}

// rules is the decision table. The first matching rule decides a token's
// category; tokens matching none are TokenPlain.
var rules = []rule{
	{"trivia", func(_ *classifier, _ int, tok lexer.Token) bool {
		return tok.Kind == lexer.Whitespace || tok.Kind == lexer.Unknown
	}, TokenPlain},
	{"comment", isKind(lexer.Comment), TokenComment},
	{"keyword", isKind(lexer.Keyword), TokenKeyword},
	{"directive", hasFact(factPreprocessor), TokenPreprocessor},
	{"macro-name", hasFact(factMacroName), TokenMacro},
	{"string", isKind(lexer.String), TokenString},
	{"char", isKind(lexer.Char), TokenChar},
	{"number", isKind(lexer.Number), TokenNumber},
	{"function-declarator", identWith(factFuncDecl), TokenFunction},
	{"typedef-declarator", identWith(factTypedefName), TokenType},
	{"declarator", identWith(factDeclName), TokenIdentifier},
	{"type-position", identWith(factTypePosition), TokenType},
	{"known-macro", func(c *classifier, i int, tok lexer.Token) bool {
		return tok.Kind == lexer.Identifier && c.macros[tok.Text(c.t.Src)]
	}, TokenMacro},
	{"call", identWith(factCall), TokenFunction},
	{"known-type", func(c *classifier, i int, tok lexer.Token) bool {
		return tok.Kind == lexer.Identifier && c.types[tok.Text(c.t.Src)]
	}, TokenType},
	{"identifier", isKind(lexer.Identifier), TokenIdentifier},
	{"operator", func(_ *classifier, _ int, tok lexer.Token) bool {
		return tok.Kind == lexer.Operator || tok.Kind == lexer.Hash
	}, TokenOperator},
	{"punctuation", isKind(lexer.Punctuation), TokenPunctuation},
}

func isKind(kind lexer.Kind) func(*classifier, int, lexer.Token) bool {
	return func(_ *classifier, _ int, tok lexer.Token) bool {
		return tok.Kind == kind
	}
}

func hasFact(f fact) func(*classifier, int, lexer.Token) bool {
	return func(c *classifier, i int, _ lexer.Token) bool {
		return c.facts[i]&f != 0
	}
}

func identWith(f fact) func(*classifier, int, lexer.Token) bool {
	return func(c *classifier, i int, tok lexer.Token) bool {
		return tok.Kind == lexer.Identifier && c.facts[i]&f != 0
	}
}

// Classify assigns a category to every token of the tree and returns one
// span per token in source order. It never fails.
func Classify(t *fuzzy.Tree, opts Options) []Span {
	c := newClassifier(t)
	spans := make([]Span, len(t.Tokens))
	for i, tok := range t.Tokens {
		spans[i] = Span{Start: tok.Start, End: tok.End, Cat: c.category(i)}
	}
	if opts.IdentifiersOnly {
		ApplyIdentifiersOnly(spans)
	}
	return spans
}

func newClassifier(t *fuzzy.Tree) *classifier {
	c := &classifier{
		t:      t,
		facts:  make([]fact, len(t.Tokens)),
		macros: make(map[string]bool),
		types:  make(map[string]bool),
	}
	if len(t.Nodes) > 0 {
		c.collect()
	}
	return c
}

func (c *classifier) category(i int) TokenCategory {
	tok := c.t.Tokens[i]
	for _, r := range rules {
		if r.match(c, i, tok) {
			return r.cat
		}
	}
	return TokenPlain
}

func (c *classifier) mark(id fuzzy.NodeID, f fact) {
	if n := c.t.Node(id); n.Kind == fuzzy.Leaf {
		c.facts[n.Token] |= f
	}
}

func (c *classifier) collect() {
	t := c.t
	t.Walk(t.Root(), func(id fuzzy.NodeID, _ int) bool {
		switch t.Kind(id) {
		case fuzzy.Leaf:
			return false
		case fuzzy.PreprocessorLine:
			c.directive(id)
			return false
		case fuzzy.DeclarationLike:
			if d, ok := t.Decl(id); ok {
				c.declaration(d)
			}
		case fuzzy.TemplateArgList:
			c.templateArgs(id)
		}
		c.sequence(t.Significant(t.Children(id)))
		return true
	})
}

func (c *classifier) declaration(d fuzzy.Decl) {
	for _, id := range d.Types {
		c.mark(id, factTypePosition)
	}
	for _, id := range d.Names {
		if d.Typedef {
			c.mark(id, factTypedefName)
			c.types[c.t.Text(id)] = true
			continue
		}
		c.mark(id, factDeclName)
	}
	for _, id := range d.Funcs {
		c.mark(id, factFuncDecl)
	}
	for _, id := range d.ClassNames {
		c.types[c.t.Text(id)] = true
	}
	for _, group := range d.Params {
		c.params(group)
	}
}

// params matches each comma-separated entry of a parameter list as an
// abstract declaration.
func (c *classifier) params(group fuzzy.NodeID) {
	c.segments(group, func(seg []fuzzy.NodeID) {
		d, ok := fuzzy.MatchDeclaration(c.t, seg, true)
		if !ok {
			return
		}
		d.Typedef = false
		d.ClassNames = nil
		c.declaration(d)
	})
}

func (c *classifier) templateArgs(list fuzzy.NodeID) {
	c.segments(list, func(seg []fuzzy.NodeID) {
		if d, ok := fuzzy.MatchDeclaration(c.t, seg, true); ok && len(d.Names) == 0 {
			for _, id := range d.Types {
				c.mark(id, factTypePosition)
			}
		}
	})
}

func (c *classifier) segments(group fuzzy.NodeID, fn func([]fuzzy.NodeID)) {
	var seg []fuzzy.NodeID
	for _, id := range c.t.Inner(group) {
		if c.t.Is(id, ",") {
			if len(seg) > 0 {
				fn(seg)
			}
			seg = nil
			continue
		}
		seg = append(seg, id)
	}
	if len(seg) > 0 {
		fn(seg)
	}
}

// sequence applies the local patterns over a node's significant children:
// names after type-introducing keywords, scope qualifiers and calls.
func (c *classifier) sequence(items []fuzzy.NodeID) {
	t := c.t
	at := func(k int) fuzzy.NodeID {
		if k < len(items) {
			return items[k]
		}
		return fuzzy.NoNode
	}
	// Missing items read as leaves.
	kindAt := func(k int) fuzzy.NodeKind {
		if id := at(k); id != fuzzy.NoNode {
			return t.Kind(id)
		}
		return fuzzy.Leaf
	}
	isAt := func(k int, text string) bool {
		id := at(k)
		return id != fuzzy.NoNode && t.Is(id, text)
	}

	for k, id := range items {
		if t.IsLeafKind(id, lexer.Keyword) {
			next := at(k + 1)
			if next == fuzzy.NoNode || !t.IsLeafKind(next, lexer.Identifier) {
				continue
			}
			switch text := t.Text(id); {
			case fuzzy.IsClassKey(text), text == "typename", text == "namespace", text == "concept", text == "new":
				c.mark(next, factTypePosition)
			case text == "using" && isAt(k+2, "="):
				c.mark(next, factTypePosition)
				c.types[t.Text(next)] = true
			}
			continue
		}
		if !t.IsLeafKind(id, lexer.Identifier) {
			continue
		}
		switch {
		case isAt(k+1, "::"):
			c.mark(id, factTypePosition)
		case kindAt(k+1) == fuzzy.ParenGroup:
			c.mark(id, factCall)
		case kindAt(k+1) == fuzzy.TemplateArgList && kindAt(k+2) == fuzzy.ParenGroup:
			c.mark(id, factCall)
		}
	}
}

// directive classifies the tokens of one preprocessor line.
func (c *classifier) directive(id fuzzy.NodeID) {
	t := c.t
	leaves := t.Significant(t.Children(id))
	if len(leaves) == 0 {
		return
	}
	c.mark(leaves[0], factPreprocessor)
	if len(leaves) == 1 {
		return
	}

	name := leaves[1]
	rest := leaves[2:]
	c.mark(name, factPreprocessor)
	if t.IsLeafKind(name, lexer.Number) {
		// GNU line marker: # 12 "file.c"
		c.markAll(rest, factPreprocessor)
		return
	}

	switch t.Text(name) {
	case "define":
		if len(rest) > 0 && t.IsLeafKind(rest[0], lexer.Identifier) {
			c.mark(rest[0], factMacroName)
			c.macros[t.Text(rest[0])] = true
			c.directiveBody(rest[1:])
			return
		}
	case "undef", "ifdef", "ifndef", "elifdef", "elifndef":
		if len(rest) > 0 && t.IsLeafKind(rest[0], lexer.Identifier) {
			c.mark(rest[0], factMacroName)
			c.directiveBody(rest[1:])
			return
		}
	case "if", "elif":
		c.conditional(rest)
		return
	case "pragma", "error", "warning", "line", "ident", "sccs", "assert", "unassert":
		c.markAll(rest, factPreprocessor)
		return
	}
	c.directiveBody(rest)
}

func (c *classifier) conditional(leaves []fuzzy.NodeID) {
	t := c.t
	for k := 0; k < len(leaves); k++ {
		if !t.Is(leaves[k], "defined") && !t.Is(leaves[k], "__has_include") {
			continue
		}
		c.mark(leaves[k], factPreprocessor)
		j := k + 1
		if j < len(leaves) && t.Is(leaves[j], "(") {
			j++
		}
		if j < len(leaves) && t.IsLeafKind(leaves[j], lexer.Identifier) && t.Is(leaves[k], "defined") {
			c.mark(leaves[j], factMacroName)
			k = j
		}
	}
	c.directiveBody(leaves)
}

// directiveBody marks function-like uses inside a directive. Directive
// lines are flat, so a call is an identifier directly followed by '('.
func (c *classifier) directiveBody(leaves []fuzzy.NodeID) {
	t := c.t
	for k := 0; k+1 < len(leaves); k++ {
		if !t.IsLeafKind(leaves[k], lexer.Identifier) || !t.Is(leaves[k+1], "(") {
			continue
		}
		tok, _ := t.Token(leaves[k])
		next, _ := t.Token(leaves[k+1])
		if tok.End == next.Start {
			c.mark(leaves[k], factCall)
		}
	}
}

func (c *classifier) markAll(ids []fuzzy.NodeID, f fact) {
	for _, id := range ids {
		c.mark(id, f)
	}
}
