package fuzzy

import "fuzzyhl/internal/lexer"

type NodeKind uint8

const (
	TranslationUnit NodeKind = iota
	BracedBlock
	ParenGroup
	BracketGroup
	TemplateArgList
	DeclarationLike
	StatementLike
	PreprocessorLine
	Leaf
)

var nodeKindNames = [...]string{
	TranslationUnit:  "TranslationUnit",
	BracedBlock:      "BracedBlock",
	ParenGroup:       "ParenGroup",
	BracketGroup:     "BracketGroup",
	TemplateArgList:  "TemplateArgList",
	DeclarationLike:  "DeclarationLike",
	StatementLike:    "StatementLike",
	PreprocessorLine: "PreprocessorLine",
	Leaf:             "Leaf",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "NodeKind(?)"
}

// NodeID indexes Tree.Nodes.
type NodeID int32

const NoNode NodeID = -1

// Node is one entry of the tree arena. Leaves carry a token index; every
// other kind carries children in source order.
type Node struct {
	Kind     NodeKind
	Parent   NodeID
	Children []NodeID
	Token    int
}

// Stats counts how often the parser had to recover.
type Stats struct {
	Tokens            int
	ImplicitCloses    int
	StrayClosers      int
	TemplateLists     int
	RejectedTemplates int
}

// Tree is the fuzzy syntax tree of one input. Node 0 is the translation
// unit. Every token is held by exactly one leaf, in lexer order.
type Tree struct {
	Src    []byte
	Tokens []lexer.Token
	Nodes  []Node
	Stats  Stats

	leafOf []NodeID
	decls  map[NodeID]Decl
}

func (t *Tree) Root() NodeID {
	return 0
}

func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

func (t *Tree) Kind(id NodeID) NodeKind {
	return t.Nodes[id].Kind
}

func (t *Tree) Parent(id NodeID) NodeID {
	return t.Nodes[id].Parent
}

func (t *Tree) Children(id NodeID) []NodeID {
	return t.Nodes[id].Children
}

// LeafOf returns the leaf holding token i.
func (t *Tree) LeafOf(i int) NodeID {
	return t.leafOf[i]
}

// Token returns the token of a leaf. ok is false for inner nodes.
func (t *Tree) Token(id NodeID) (tok lexer.Token, ok bool) {
	n := &t.Nodes[id]
	if n.Kind != Leaf {
		return lexer.Token{}, false
	}
	return t.Tokens[n.Token], true
}

// Text returns the source text of a leaf, or "" for inner nodes.
func (t *Tree) Text(id NodeID) string {
	tok, ok := t.Token(id)
	if !ok {
		return ""
	}
	return tok.Text(t.Src)
}

// Is reports whether id is a leaf whose text equals text.
func (t *Tree) Is(id NodeID, text string) bool {
	tok, ok := t.Token(id)
	return ok && tok.Is(t.Src, text)
}

// IsLeafKind reports whether id is a leaf of the given token kind.
func (t *Tree) IsLeafKind(id NodeID, kind lexer.Kind) bool {
	tok, ok := t.Token(id)
	return ok && tok.Kind == kind
}

// IsTrivia reports whether id is a whitespace or comment leaf.
func (t *Tree) IsTrivia(id NodeID) bool {
	tok, ok := t.Token(id)
	return ok && tok.IsTrivia()
}

// Decl returns the declaration matched for a DeclarationLike node.
func (t *Tree) Decl(id NodeID) (Decl, bool) {
	d, ok := t.decls[id]
	return d, ok
}

// FirstToken returns the index of the first token under id, or -1 when the
// node holds no leaves.
func (t *Tree) FirstToken(id NodeID) int {
	n := &t.Nodes[id]
	if n.Kind == Leaf {
		return n.Token
	}
	for _, c := range n.Children {
		if i := t.FirstToken(c); i >= 0 {
			return i
		}
	}
	return -1
}

// Inner returns the children of a group without its opening and closing
// delimiter leaves. A group closed implicitly has no closer.
func (t *Tree) Inner(id NodeID) []NodeID {
	n := &t.Nodes[id]
	kids := n.Children
	var open, close string
	switch n.Kind {
	case BracedBlock:
		open, close = "{", "}"
	case ParenGroup:
		open, close = "(", ")"
	case BracketGroup:
		open, close = "[", "]"
	case TemplateArgList:
		open = "<"
	default:
		return kids
	}
	if len(kids) > 0 && t.Is(kids[0], open) {
		kids = kids[1:]
	}
	if len(kids) == 0 {
		return kids
	}
	last := kids[len(kids)-1]
	if n.Kind == TemplateArgList {
		if t.Is(last, ">") || t.Is(last, ">>") {
			kids = kids[:len(kids)-1]
		}
	} else if t.Is(last, close) {
		kids = kids[:len(kids)-1]
	}
	return kids
}

// Walk visits id and its descendants in source order. Returning false from
// fn skips the children of that node.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.Nodes[id].Children {
		t.walk(c, depth+1, fn)
	}
}

// Significant filters trivia leaves and preprocessor lines out of items.
func (t *Tree) Significant(items []NodeID) []NodeID {
	out := make([]NodeID, 0, len(items))
	for _, id := range items {
		if t.IsTrivia(id) || t.Nodes[id].Kind == PreprocessorLine {
			continue
		}
		out = append(out, id)
	}
	return out
}
