package drawing

import (
	"strings"
)

// Style returns the value of a property from the inline style attribute.
func (n *Node) Style(name string) string {
	if n.style == nil {
		n.style = map[string]string{}
		for _, pair := range strings.Split(n.Styles, ";") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) == 2 {
				n.style[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
			}
		}
	}
	return n.style[name]
}

// hidden reports whether the element and its subtree are not rendered.
func (n *Node) hidden() bool {
	display := n.Style("display")
	if display == "" {
		display = strings.TrimSpace(n.Display)
	}
	return display == "none"
}
