package pysrc

import (
	"sort"
	"strings"
)

// RewriteNames splices replacement identifiers into src for every Name node
// reachable from root. repl maps an identifier to its replacement; the
// second return reports whether the identifier should be replaced at all.
// The returned slice lists every identifier encountered, post-replacement,
// in traversal order.
//
// Name offsets must point into src; only the replaced spans change, so all
// other formatting (docstrings included) survives byte-for-byte.
func RewriteNames(src string, root Node, repl func(string) (string, bool)) (string, []string) {
	type span struct {
		start, end int
		text       string
	}
	var spans []span
	var seen []string

	Walk(root, func(n Node) bool {
		name, ok := n.(*Name)
		if !ok {
			return true
		}
		if out, replace := repl(name.ID); replace && out != name.ID {
			spans = append(spans, span{start: name.Start, end: name.End, text: out})
			seen = append(seen, out)
		} else {
			seen = append(seen, name.ID)
		}
		return true
	})

	if len(spans) == 0 {
		return src, seen
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var sb strings.Builder
	last := 0
	for _, s := range spans {
		sb.WriteString(src[last:s.start])
		sb.WriteString(s.text)
		last = s.end
	}
	sb.WriteString(src[last:])
	return sb.String(), seen
}
