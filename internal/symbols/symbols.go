// Package symbols indexes the functions, types, variables and macros
// declared in a fuzzy tree.
package symbols

import (
	"sort"
	"strings"

	"fuzzyhl/internal/fuzzy"
	"fuzzyhl/internal/lexer"
	"fuzzyhl/internal/readfile"
)

type Kind string

const (
	KindFunction Kind = "function"
	KindType     Kind = "type"
	KindVariable Kind = "variable"
	KindMacro    Kind = "macro"
)

type Symbol struct {
	ID   int
	Name string
	Kind Kind
	File string
	Line int
	Col  int
	// Text is the trimmed source line of the declaration.
	Text string
}

// Collect returns the symbols declared in tree, in source order. Variables
// are only reported at file scope.
func Collect(file string, tree *fuzzy.Tree) []Symbol {
	if len(tree.Nodes) == 0 {
		return nil
	}

	c := collector{
		file:  file,
		tree:  tree,
		lines: readfile.LinesNormalized(tree.Src),
		seen:  make(map[int]bool),
	}
	tree.Walk(tree.Root(), func(id fuzzy.NodeID, _ int) bool {
		switch tree.Kind(id) {
		case fuzzy.PreprocessorLine:
			c.directive(id)
			return false
		case fuzzy.DeclarationLike:
			c.declaration(id)
		}
		return true
	})

	sort.SliceStable(c.out, func(i, j int) bool {
		if c.out[i].Line != c.out[j].Line {
			return c.out[i].Line < c.out[j].Line
		}
		return c.out[i].Col < c.out[j].Col
	})
	for i := range c.out {
		c.out[i].ID = i
	}
	return c.out
}

type collector struct {
	file  string
	tree  *fuzzy.Tree
	lines []string
	seen  map[int]bool
	out   []Symbol
}

func (c *collector) add(id fuzzy.NodeID, kind Kind) {
	tok, ok := c.tree.Token(id)
	if !ok || tok.Kind != lexer.Identifier {
		return
	}
	if c.seen[tok.Start] {
		return
	}
	c.seen[tok.Start] = true

	text := ""
	if tok.Line-1 < len(c.lines) {
		text = strings.TrimSpace(c.lines[tok.Line-1])
	}
	c.out = append(c.out, Symbol{
		Name: tok.Text(c.tree.Src),
		Kind: kind,
		File: c.file,
		Line: tok.Line,
		Col:  tok.Col,
		Text: text,
	})
}

func (c *collector) declaration(id fuzzy.NodeID) {
	d, ok := c.tree.Decl(id)
	if !ok {
		return
	}
	// ClassNames also carries "using Name =" aliases.
	for _, name := range d.ClassNames {
		c.add(name, KindType)
	}
	for _, name := range d.Funcs {
		c.add(name, KindFunction)
	}
	if d.Typedef {
		for _, name := range d.Names {
			c.add(name, KindType)
		}
		return
	}
	if c.tree.Parent(id) != c.tree.Root() {
		return
	}
	for _, name := range d.Names {
		c.add(name, KindVariable)
	}
}

func (c *collector) directive(id fuzzy.NodeID) {
	items := c.tree.Significant(c.tree.Children(id))
	// # define NAME
	if len(items) >= 3 && c.tree.Is(items[0], "#") && c.tree.Is(items[1], "define") {
		c.add(items[2], KindMacro)
	}
}
