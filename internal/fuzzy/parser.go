package fuzzy

import (
	"slices"
	"strings"

	"fuzzyhl/internal/lexer"
)

// maxTemplateScan bounds the look-ahead used to decide whether '<' opens a
// template argument list.
const maxTemplateScan = 512

type frame struct {
	node   NodeID
	closer string
	// Regions collect their items in pending until a statement ends.
	region  bool
	pending []NodeID
	// significant counts pending items that are neither trivia nor
	// preprocessor lines.
	significant int
}

type parser struct {
	t      *Tree
	src    []byte
	toks   []lexer.Token
	frames []frame
}

// Parse builds the fuzzy tree for tokens lexed from src. It never fails:
// unbalanced delimiters are closed implicitly or kept as stray leaves.
func Parse(src []byte, tokens []lexer.Token) *Tree {
	t := &Tree{
		Src:    src,
		Tokens: tokens,
		Nodes:  make([]Node, 0, len(tokens)+len(tokens)/2+1),
		leafOf: make([]NodeID, len(tokens)),
		decls:  make(map[NodeID]Decl),
	}
	t.Stats.Tokens = len(tokens)
	p := &parser{t: t, src: src, toks: tokens}

	root := p.newNode(TranslationUnit, NoNode)
	p.frames = append(p.frames, frame{node: root, region: true})

	for i := 0; i < len(tokens); {
		i = p.step(i)
	}

	for len(p.frames) > 1 {
		p.t.Stats.ImplicitCloses++
		p.close(NoNode)
	}
	p.flush(&p.frames[0])
	return t
}

func (p *parser) step(i int) int {
	tok := p.toks[i]
	if tok.Kind == lexer.Hash {
		return p.preprocessorLine(i)
	}

	text := tok.Text(p.src)
	switch tok.Kind {
	case lexer.Punctuation:
		switch text {
		case "{":
			p.open(BracedBlock, "}", true, i)
		case "(":
			p.open(ParenGroup, ")", false, i)
		case "[":
			p.open(BracketGroup, "]", false, i)
		case "}", ")", "]":
			p.closeWith(text, i)
		case ";":
			p.attach(p.leaf(i))
			if top := p.top(); top.region {
				p.flush(top)
			}
		default:
			p.attach(p.leaf(i))
		}
		return i + 1

	case lexer.Operator:
		switch text {
		case "<":
			if p.templateOpens(i) {
				p.t.Stats.TemplateLists++
				p.open(TemplateArgList, ">", false, i)
				return i + 1
			}
		case ">":
			if p.top().closer == ">" {
				p.attach(p.leaf(i))
				p.close(NoNode)
				return i + 1
			}
		case ">>":
			if p.top().closer == ">" {
				p.attach(p.leaf(i))
				p.close(NoNode)
				if p.top().closer == ">" {
					p.close(NoNode)
				}
				return i + 1
			}
		}
	}

	p.attach(p.leaf(i))
	return i + 1
}

func (p *parser) newNode(kind NodeKind, parent NodeID) NodeID {
	id := NodeID(len(p.t.Nodes))
	p.t.Nodes = append(p.t.Nodes, Node{Kind: kind, Parent: parent, Token: -1})
	return id
}

func (p *parser) leaf(i int) NodeID {
	id := p.newNode(Leaf, NoNode)
	p.t.Nodes[id].Token = i
	p.t.leafOf[i] = id
	return id
}

func (p *parser) adopt(parent, child NodeID) {
	p.t.Nodes[child].Parent = parent
	p.t.Nodes[parent].Children = append(p.t.Nodes[parent].Children, child)
}

func (p *parser) top() *frame {
	return &p.frames[len(p.frames)-1]
}

// attach places an item in the innermost frame. Regions defer placement
// until the enclosing statement is known.
func (p *parser) attach(id NodeID) {
	f := p.top()
	if f.region {
		f.pending = append(f.pending, id)
		if !p.t.IsTrivia(id) && p.t.Nodes[id].Kind != PreprocessorLine {
			f.significant++
		}
		return
	}
	p.adopt(f.node, id)
}

func (p *parser) open(kind NodeKind, closer string, region bool, i int) {
	id := p.newNode(kind, NoNode)
	p.attach(id)
	p.adopt(id, p.leaf(i))
	p.frames = append(p.frames, frame{node: id, closer: closer, region: region})
}

// closeWith handles a closing delimiter. Frames above the nearest matching
// one are closed implicitly; with no match the closer stays a stray leaf.
func (p *parser) closeWith(closer string, i int) {
	match := -1
	for j := len(p.frames) - 1; j >= 1; j-- {
		if p.frames[j].closer == closer {
			match = j
			break
		}
	}
	if match < 0 {
		p.t.Stats.StrayClosers++
		f := p.top()
		if !f.region {
			p.adopt(f.node, p.leaf(i))
			return
		}
		p.flush(f)
		p.adopt(f.node, p.leaf(i))
		return
	}
	for len(p.frames)-1 > match {
		p.t.Stats.ImplicitCloses++
		p.close(NoNode)
	}
	p.close(p.leaf(i))
}

// close pops the innermost frame, appending closer when it is a real leaf.
func (p *parser) close(closer NodeID) {
	f := p.top()
	if f.region {
		p.flush(f)
	}
	if closer != NoNode {
		p.adopt(f.node, closer)
	}
	kind := p.t.Nodes[f.node].Kind
	p.frames = p.frames[:len(p.frames)-1]

	if kind != BracedBlock {
		return
	}
	if parent := p.top(); parent.region && p.blockEndsStatement(parent.pending) {
		p.flush(parent)
	}
}

// flush wraps the pending items of a region into a statement node. Leading
// and trailing trivia stay direct children of the region.
func (p *parser) flush(f *frame) {
	items := f.pending
	f.pending = nil
	f.significant = 0

	start, end := 0, len(items)
	for start < end && p.t.IsTrivia(items[start]) {
		p.adopt(f.node, items[start])
		start++
	}
	for end > start && p.t.IsTrivia(items[end-1]) {
		end--
	}
	if start < end {
		body := items[start:end]
		kind := StatementLike
		decl, ok := MatchDeclaration(p.t, body, false)
		if ok {
			kind = DeclarationLike
		}
		id := p.newNode(kind, f.node)
		p.t.Nodes[f.node].Children = append(p.t.Nodes[f.node].Children, id)
		for _, item := range body {
			p.adopt(id, item)
		}
		if ok {
			p.t.decls[id] = decl
		}
	}
	for _, item := range items[end:] {
		p.adopt(f.node, item)
	}
}

// blockEndsStatement reports whether a closed block finishes the pending
// statement. Class-like heads without a parameter list, initializers and
// return statements run on to ';'.
func (p *parser) blockEndsStatement(items []NodeID) bool {
	var classKey, params, first bool
	for _, id := range items {
		n := &p.t.Nodes[id]
		if n.Kind == PreprocessorLine || p.t.IsTrivia(id) {
			continue
		}
		if n.Kind == ParenGroup {
			params = true
			continue
		}
		if n.Kind != Leaf {
			continue
		}
		text := p.t.Text(id)
		if !first {
			first = true
			if text == "return" || text == "co_return" {
				return false
			}
		}
		switch text {
		case "=":
			return false
		case "class", "struct", "union", "enum", "typedef":
			classKey = true
		}
	}
	return !classKey || params
}

// preprocessorLine gathers the directive starting at token i into one node.
func (p *parser) preprocessorLine(i int) int {
	id := p.newNode(PreprocessorLine, NoNode)
	j := i
	for j < len(p.toks) && p.toks[j].Directive {
		p.adopt(id, p.leaf(j))
		j++
	}

	f := p.top()
	if f.region && f.significant == 0 {
		p.flush(f)
		p.adopt(f.node, id)
		return j
	}
	p.attach(id)
	return j
}

func (p *parser) prevSignificant(i int) int {
	for j := i - 1; j >= 0; j-- {
		if !p.toks[j].IsTrivia() {
			return j
		}
	}
	return -1
}

func (p *parser) nextSignificantIs(i int, texts ...string) bool {
	for j := i + 1; j < len(p.toks); j++ {
		if p.toks[j].IsTrivia() {
			continue
		}
		return slices.Contains(texts, p.toks[j].Text(p.src))
	}
	return false
}

// templateCandidate reports whether the '<' at i may open a template list,
// judging only its surroundings. afterKeyword is set after template or a
// cast keyword.
func (p *parser) templateCandidate(i int) (ok, afterKeyword bool) {
	prev := p.prevSignificant(i)
	if prev < 0 || p.toks[prev].Directive {
		return false, false
	}
	pt := p.toks[prev]
	switch pt.Kind {
	case lexer.Identifier:
	case lexer.Keyword:
		text := pt.Text(p.src)
		if text != "template" && !strings.HasSuffix(text, "_cast") {
			return false, false
		}
		afterKeyword = true
	default:
		return false, false
	}
	if !afterKeyword && i > 0 && i+1 < len(p.toks) &&
		p.toks[i-1].Kind == lexer.Whitespace && p.toks[i+1].Kind == lexer.Whitespace {
		return false, false
	}
	return true, afterKeyword
}

func (p *parser) templateOpens(i int) bool {
	ok, afterKeyword := p.templateCandidate(i)
	if !ok {
		return false
	}
	if p.scanTemplate(i, afterKeyword) {
		return true
	}
	p.t.Stats.RejectedTemplates++
	return false
}

// scanTemplate looks ahead from the '<' at i for a matching '>' with only
// type-like tokens in between.
func (p *parser) scanTemplate(i int, afterKeyword bool) bool {
	depth, parens := 1, 0
	limit := min(len(p.toks), i+1+maxTemplateScan)
	for j := i + 1; j < limit; j++ {
		tok := p.toks[j]
		if tok.IsTrivia() {
			continue
		}
		if tok.Directive {
			return false
		}
		text := tok.Text(p.src)
		switch tok.Kind {
		case lexer.Identifier, lexer.Keyword, lexer.Number:
		case lexer.Punctuation:
			switch text {
			case "(", "[":
				parens++
			case ")", "]":
				parens--
				if parens < 0 {
					return false
				}
			case ";", "{", "}":
				return false
			}
		case lexer.Operator:
			if parens > 0 {
				continue
			}
			switch text {
			case "<":
				if ok, _ := p.templateCandidate(j); !ok {
					return false
				}
				depth++
			case ">":
				depth--
			case ">>":
				depth -= 2
			case "::", "*", "&", "...", "-":
			case "&&":
				// Only as an rvalue reference declarator, as in Foo<T&&>.
				if !p.nextSignificantIs(j, ">", ">>", ",", "...") {
					return false
				}
			case "=":
				if !afterKeyword {
					return false
				}
			default:
				return false
			}
			if depth <= 0 {
				return true
			}
		default:
			return false
		}
	}
	return false
}
