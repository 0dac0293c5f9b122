package library

import (
	"fmt"
	"io"
	"strings"
)

// WriteText prints the whole tree, one entry per line, indented by depth.
func WriteText(w io.Writer, nodes []*Node) error {
	var err error
	Walk(nodes, func(n *Node, depth int) {
		if err != nil {
			return
		}
		label := n.Label
		if label == "" {
			label = "(untitled)"
		}
		_, err = fmt.Fprintf(w, "%s%-8s %s  [%s]\n", strings.Repeat("  ", depth), n.Kind, label, n.ID)
	})
	return err
}
