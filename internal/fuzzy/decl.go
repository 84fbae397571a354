package fuzzy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fuzzyhl/internal/lexer"
)

// Decl is what the declaration matcher found in a statement.
type Decl struct {
	// Types holds identifier leaves naming types: the type head and any
	// qualifiers of a qualified declarator.
	Types []NodeID
	// Names holds declarator identifiers, Funcs the subset declaring
	// functions.
	Names []NodeID
	Funcs []NodeID
	// Params holds the parameter lists of function declarators.
	Params []NodeID
	// ClassNames holds names introduced by class/struct/union/enum heads.
	ClassNames []NodeID
	Typedef    bool
}

var specifiers = map[string]bool{
	"static": true, "extern": true, "inline": true, "virtual": true, "explicit": true,
	"constexpr": true, "consteval": true, "constinit": true, "friend": true, "mutable": true,
	"register": true, "thread_local": true, "_Thread_local": true, "volatile": true,
	"const": true, "restrict": true, "__restrict": true, "__inline": true, "__inline__": true,
	"__extension__": true, "_Noreturn": true, "_Atomic": true,
}

var typeKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true, "float": true,
	"double": true, "signed": true, "unsigned": true, "bool": true, "_Bool": true,
	"_Complex": true, "_Imaginary": true, "auto": true, "wchar_t": true, "char8_t": true,
	"char16_t": true, "char32_t": true, "__int128": true, "__signed__": true,
	"__unsigned__": true,
}

var classKeys = map[string]bool{"class": true, "struct": true, "union": true, "enum": true}

var cvQualifiers = map[string]bool{
	"const": true, "volatile": true, "restrict": true, "__restrict": true, "_Atomic": true,
}

var attributeWords = map[string]bool{
	"__attribute__": true, "__attribute": true, "__declspec": true, "alignas": true,
	"_Alignas": true, "__asm__": true, "asm": true,
}

// IsClassKey reports whether word introduces a class-like type.
func IsClassKey(word string) bool {
	return classKeys[word]
}

type headKind uint8

const (
	headNone headKind = iota
	headKeyword
	headChain
	headClass
	headOther
)

type matcher struct {
	t     *Tree
	items []NodeID
	pos   int
	d     Decl
}

// MatchDeclaration decides whether items read as a declaration and reports
// its parts. allowNoName accepts an abstract declarator, as in a parameter
// list entry like "const char *".
func MatchDeclaration(t *Tree, items []NodeID, allowNoName bool) (Decl, bool) {
	m := &matcher{t: t, items: t.Significant(items)}
	if !m.match(allowNoName) {
		return Decl{}, false
	}
	return m.d, true
}

func (m *matcher) peek(k int) NodeID {
	if m.pos+k < len(m.items) {
		return m.items[m.pos+k]
	}
	return NoNode
}

func (m *matcher) done() bool {
	return m.pos >= len(m.items)
}

func (m *matcher) text(k int) string {
	id := m.peek(k)
	if id == NoNode {
		return ""
	}
	return m.t.Text(id)
}

func (m *matcher) kind(k int) NodeKind {
	id := m.peek(k)
	if id == NoNode {
		return Leaf
	}
	return m.t.Kind(id)
}

func (m *matcher) isLeaf(k int, kind lexer.Kind) bool {
	id := m.peek(k)
	return id != NoNode && m.t.IsLeafKind(id, kind)
}

func (m *matcher) match(allowNoName bool) bool {
	if !m.skipPrefix() {
		return true
	}
	if m.done() {
		return false
	}

	head, ptrSensitive := m.typeHead()
	switch head {
	case headNone:
		return false
	case headClass:
		if m.done() || m.text(0) == ";" {
			return true
		}
	}
	return m.declarators(allowNoName, ptrSensitive)
}

// skipPrefix consumes specifiers, attributes, access labels and template
// headers. It returns false when the statement was fully consumed as a
// using alias.
func (m *matcher) skipPrefix() bool {
	for !m.done() {
		text := m.text(0)
		switch {
		case m.kind(0) == BracketGroup:
			m.pos++
		case m.isLeaf(0, lexer.Keyword) && specifiers[text]:
			m.pos++
			if text == "extern" && m.isLeaf(0, lexer.String) {
				m.pos++
			}
		case text == "typedef":
			m.d.Typedef = true
			m.pos++
		case attributeWords[text] && m.kind(1) == ParenGroup:
			m.pos += 2
		case text == "public" || text == "private" || text == "protected":
			m.pos++
			if m.text(0) == ":" {
				m.pos++
			}
		case text == "template":
			m.pos++
			if m.kind(0) == TemplateArgList {
				m.pos++
			}
		case text == "using" && m.isLeaf(1, lexer.Identifier) && m.text(2) == "=":
			m.d.Types = append(m.d.Types, m.peek(1))
			m.d.ClassNames = append(m.d.ClassNames, m.peek(1))
			m.pos = len(m.items)
			return false
		default:
			return true
		}
	}
	return true
}

// typeHead reads the declared type. ptrSensitive is set for a plain
// identifier head, which needs extra evidence before "a * b" reads as a
// declaration.
func (m *matcher) typeHead() (headKind, bool) {
	text := m.text(0)
	switch {
	case m.isLeaf(0, lexer.Keyword) && classKeys[text]:
		m.pos++
		if text == "enum" && (m.text(0) == "class" || m.text(0) == "struct") {
			m.pos++
		}
		m.skipAttributes()
		if m.isLeaf(0, lexer.Identifier) || m.text(0) == "::" {
			c := m.chain()
			m.d.Types = append(m.d.Types, c.idents...)
			if len(c.idents) > 0 {
				m.d.ClassNames = append(m.d.ClassNames, c.idents[len(c.idents)-1])
			}
		}
		if m.text(0) == "final" {
			m.pos++
		}
		if m.text(0) == ":" {
			for !m.done() && m.kind(0) != BracedBlock && m.text(0) != ";" {
				if m.isLeaf(0, lexer.Identifier) {
					m.d.Types = append(m.d.Types, m.peek(0))
				}
				m.pos++
			}
		}
		if m.kind(0) == BracedBlock {
			m.pos++
		}
		return headClass, false

	case text == "typename":
		m.pos++
		c := m.chain()
		if len(c.idents) == 0 {
			return headNone, false
		}
		m.d.Types = append(m.d.Types, c.idents...)
		return headOther, false

	case (text == "decltype" || text == "typeof" || text == "__typeof__") && m.kind(1) == ParenGroup:
		m.pos += 2
		return headOther, false

	case m.isLeaf(0, lexer.Keyword) && typeKeywords[text]:
		for !m.done() && m.isLeaf(0, lexer.Keyword) && (typeKeywords[m.text(0)] || cvQualifiers[m.text(0)]) {
			m.pos++
		}
		return headKeyword, false

	case m.isLeaf(0, lexer.Identifier) || text == "::":
		start := m.pos
		c := m.chain()
		if len(c.idents) == 0 {
			return headNone, false
		}
		// Name(...) { or Name(...) : is a definition without a return type.
		if m.kind(0) == ParenGroup && (m.kind(1) == BracedBlock || m.text(1) == ":" || c.destructor) {
			last := c.idents[len(c.idents)-1]
			m.d.Types = append(m.d.Types, c.idents[:len(c.idents)-1]...)
			m.d.Names = append(m.d.Names, last)
			m.d.Funcs = append(m.d.Funcs, last)
			m.d.Params = append(m.d.Params, m.peek(0))
			m.pos = len(m.items)
			return headClass, false
		}
		if c.destructor {
			m.pos = start
			return headNone, false
		}
		m.d.Types = append(m.d.Types, c.idents...)
		for !m.done() && m.isLeaf(0, lexer.Keyword) && cvQualifiers[m.text(0)] {
			m.pos++
		}
		last := m.t.Text(c.idents[len(c.idents)-1])
		evidence := c.qualified || c.templated || strings.HasSuffix(last, "_t") || startsUpper(last)
		return headChain, !evidence

	case text == "operator":
		// Conversion functions have no type head.
		return headOther, false

	case text == "~" && m.isLeaf(1, lexer.Identifier) && m.kind(2) == ParenGroup:
		m.d.Names = append(m.d.Names, m.peek(1))
		m.d.Funcs = append(m.d.Funcs, m.peek(1))
		m.d.Params = append(m.d.Params, m.peek(2))
		m.pos = len(m.items)
		return headClass, false
	}
	return headNone, false
}

type chainInfo struct {
	idents     []NodeID
	qualified  bool
	templated  bool
	destructor bool
}

// chain reads A::B<...>::C, optionally ending in ~C.
func (m *matcher) chain() chainInfo {
	var c chainInfo
	if m.text(0) == "::" {
		c.qualified = true
		m.pos++
	}
	for !m.done() {
		if m.text(0) == "~" && m.isLeaf(1, lexer.Identifier) {
			c.destructor = true
			c.idents = append(c.idents, m.peek(1))
			m.pos += 2
			return c
		}
		if !m.isLeaf(0, lexer.Identifier) {
			return c
		}
		c.idents = append(c.idents, m.peek(0))
		m.pos++
		if m.kind(0) == TemplateArgList {
			c.templated = true
			m.pos++
		}
		if m.text(0) != "::" {
			return c
		}
		if m.text(1) == "*" {
			return c
		}
		c.qualified = true
		m.pos++
		if m.text(0) == "template" {
			m.pos++
		}
	}
	return c
}

func (m *matcher) skipAttributes() {
	for !m.done() {
		switch {
		case m.kind(0) == BracketGroup:
			m.pos++
		case attributeWords[m.text(0)] && m.kind(1) == ParenGroup:
			m.pos += 2
		default:
			return
		}
	}
}

func (m *matcher) skipPtrOps() int {
	n := 0
	for !m.done() {
		text := m.text(0)
		switch {
		case text == "*" || text == "&" || text == "&&" || text == "^":
			n++
			m.pos++
		case text == "...":
			m.pos++
		case m.isLeaf(0, lexer.Keyword) && cvQualifiers[text]:
			m.pos++
		case attributeWords[text] && m.kind(1) == ParenGroup:
			m.pos += 2
		case m.isLeaf(0, lexer.Identifier) && m.text(1) == "::" && m.text(2) == "*":
			// pointer to member: C::*
			m.d.Types = append(m.d.Types, m.peek(0))
			n++
			m.pos += 3
		default:
			return n
		}
	}
	return n
}

func (m *matcher) declarators(allowNoName, ptrSensitive bool) bool {
	for first := true; ; first = false {
		ptrs := m.skipPtrOps()
		if first && ptrSensitive && ptrs > 0 && !allowNoName {
			return false
		}
		if !m.declarator(allowNoName) {
			return false
		}
		if m.text(0) != "," {
			return m.done() || m.text(0) == ";"
		}
		m.pos++
	}
}

// declarator reads one declarator name and everything up to the next
// top-level ',' or ';'.
func (m *matcher) declarator(allowNoName bool) bool {
	var name NodeID = NoNode
	operatorName, pointerGroup := false, false

	switch {
	case m.isLeaf(0, lexer.Identifier) || m.text(0) == "::":
		c := m.chain()
		if len(c.idents) == 0 {
			return false
		}
		if m.text(0) == "operator" {
			m.d.Types = append(m.d.Types, c.idents...)
			m.skipOperatorName()
			operatorName = true
			break
		}
		name = c.idents[len(c.idents)-1]
		m.d.Types = append(m.d.Types, c.idents[:len(c.idents)-1]...)
	case m.text(0) == "operator":
		m.skipOperatorName()
		operatorName = true
	case m.kind(0) == ParenGroup && m.pointerGroup(m.peek(0)):
		name = m.innerDeclarator(m.peek(0))
		pointerGroup = true
		m.pos++
	case allowNoName:
	default:
		return false
	}

	if name != NoNode {
		m.d.Names = append(m.d.Names, name)
	}
	if m.done() {
		return true
	}

	switch text := m.text(0); {
	case m.kind(0) == ParenGroup:
		group := m.peek(0)
		init := !pointerGroup && m.looksLikeInit(group)
		if !init {
			m.d.Params = append(m.d.Params, group)
		}
		if !init && !pointerGroup && name != NoNode {
			m.d.Funcs = append(m.d.Funcs, name)
		}
		m.pos++
	case m.kind(0) == BracketGroup, m.kind(0) == BracedBlock:
	case text == "=", text == ",", text == ";", text == ":":
	case operatorName:
	default:
		return false
	}
	m.skipDeclaratorTail()
	return true
}

func (m *matcher) skipOperatorName() {
	m.pos++
	if m.kind(0) == ParenGroup {
		// operator()
		m.pos++
		return
	}
	for !m.done() && m.kind(0) != ParenGroup {
		m.pos++
	}
}

// skipDeclaratorTail consumes array bounds, qualifiers, trailing return
// types, initializers and bodies up to a top-level ',' or ';'.
func (m *matcher) skipDeclaratorTail() {
	for !m.done() {
		switch m.text(0) {
		case ",", ";":
			return
		case "=", ":":
			m.pos++
			for !m.done() && m.text(0) != "," && m.text(0) != ";" {
				m.pos++
			}
			return
		}
		if m.kind(0) == BracedBlock {
			m.pos++
			return
		}
		m.pos++
	}
}

// pointerGroup reports whether a parenthesised declarator starts with a
// pointer or reference, as in (*fp)(int).
func (m *matcher) pointerGroup(group NodeID) bool {
	inner := m.t.Significant(m.t.Inner(group))
	if len(inner) == 0 {
		return false
	}
	switch m.t.Text(inner[0]) {
	case "*", "&", "&&", "^":
		return true
	}
	return m.t.IsLeafKind(inner[0], lexer.Identifier) && len(inner) > 2 &&
		m.t.Is(inner[1], "::") && m.t.Is(inner[2], "*")
}

func (m *matcher) innerDeclarator(group NodeID) NodeID {
	sub := &matcher{t: m.t, items: m.t.Significant(m.t.Inner(group))}
	sub.skipPtrOps()
	if !sub.isLeaf(0, lexer.Identifier) {
		if sub.kind(0) == ParenGroup && sub.pointerGroup(sub.peek(0)) {
			return m.innerDeclarator(sub.peek(0))
		}
		return NoNode
	}
	name := sub.peek(0)
	if sub.kind(1) == ParenGroup {
		// void (*signal(int, void (*)(int)))(int)
		m.d.Funcs = append(m.d.Funcs, name)
		m.d.Params = append(m.d.Params, sub.peek(1))
	}
	m.d.Types = append(m.d.Types, sub.d.Types...)
	return name
}

// looksLikeInit reports whether a parenthesised group after a declarator is
// a constructor argument list rather than parameters, as in "int x(5)".
func (m *matcher) looksLikeInit(group NodeID) bool {
	inner := m.t.Significant(m.t.Inner(group))
	if len(inner) == 0 {
		return false
	}
	tok, ok := m.t.Token(inner[0])
	if !ok {
		return false
	}
	switch tok.Kind {
	case lexer.Number, lexer.String, lexer.Char:
		return true
	}
	return false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
