package fuzzy

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

var (
	dumpNodeStyle = lipgloss.NewStyle().Bold(true)
	dumpLeafStyle = lipgloss.NewStyle()
	dumpPosStyle  = lipgloss.NewStyle().Faint(true)
)

// Dump renders the tree as indented text, one node per line. Leaves show
// their token kind, quoted text and line:col.
func Dump(t *Tree) string {
	if len(t.Nodes) == 0 {
		return ""
	}
	return dumpNode(t, t.Root()).String() + "\n"
}

func dumpNode(t *Tree, id NodeID) *tree.Tree {
	n := t.Node(id)
	if n.Kind == Leaf {
		return tree.Root(leafLabel(t, id))
	}
	out := tree.Root(dumpNodeStyle.Render(n.Kind.String()))
	for _, c := range n.Children {
		if t.Node(c).Kind == Leaf {
			out.Child(leafLabel(t, c))
			continue
		}
		out.Child(dumpNode(t, c))
	}
	return out
}

func leafLabel(t *Tree, id NodeID) string {
	tok, _ := t.Token(id)
	return dumpLeafStyle.Render(fmt.Sprintf("%s %s", tok.Kind, strconv.Quote(tok.Text(t.Src)))) +
		" " + dumpPosStyle.Render(fmt.Sprintf("%d:%d", tok.Line, tok.Col))
}
