package convert

import (
	"sort"
	"strings"

	"github.com/sbvh/pyxstub/logger"
	"github.com/sbvh/pyxstub/reflected"
)

const indentUnit = "    "

// segmentKind ranks the element kinds in output order. The gap at 2 is kept
// so keys stay comparable with stubs generated by earlier releases.
type segmentKind int

const (
	kindImport     segmentKind = 0
	kindAnnotation segmentKind = 1
	kindClass      segmentKind = 3
	kindFunction   segmentKind = 4
)

// segmentKey is the global sort key over heterogeneous stub elements:
// kind rank first, then up to three lexicographic tiebreakers.
type segmentKey struct {
	rank                          segmentKind
	primary, secondary, tertiary string
}

func (a segmentKey) less(b segmentKey) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.primary != b.primary {
		return a.primary < b.primary
	}
	if a.secondary != b.secondary {
		return a.secondary < b.secondary
	}
	return a.tertiary < b.tertiary
}

// segment is one renderable stub element. Segments are constructed during
// classification, sorted once, rendered once and discarded.
type segment interface {
	key() segmentKey
	render(tr *translator, indent int) (string, error)
}

func sortSegments(segs []segment) {
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].key().less(segs[j].key())
	})
}

func pad(indent int) string {
	return strings.Repeat(indentUnit, indent)
}

// ---- import ----

// importSeg is a single import statement. An empty name denotes a bare
// module import; otherwise the "from source import name" form is used.
type importSeg struct {
	source string
	name   string
	alias  string
}

func (s *importSeg) key() segmentKey {
	return segmentKey{rank: kindImport, primary: s.source, secondary: s.name, tertiary: s.alias}
}

// outName is the identifier the import binds in the stub's namespace.
func (s *importSeg) outName() string {
	if s.alias != "" {
		return s.alias
	}
	if s.name != "" {
		return s.name
	}
	return s.source
}

func (s *importSeg) render(_ *translator, indent int) (string, error) {
	var result string
	if s.name == "" {
		result = "import " + s.source
	} else {
		result = "from " + s.source + " import " + s.name
	}
	if s.alias != "" {
		result += " as " + s.alias
	}
	return pad(indent) + result, nil
}

// importedBinding is one (name, alias) entry of a merged import.
type importedBinding struct {
	name  string
	alias string
}

// importGroupSeg is a merged "from source import a, b as c" line, produced
// only during final import consolidation. Member order is accumulation
// order, not sorted.
type importGroupSeg struct {
	source string
	names  []importedBinding
}

func (s *importGroupSeg) key() segmentKey {
	first := importedBinding{}
	if len(s.names) > 0 {
		first = s.names[0]
	}
	return segmentKey{rank: kindImport, primary: s.source, secondary: first.name, tertiary: first.alias}
}

func (s *importGroupSeg) render(_ *translator, indent int) (string, error) {
	parts := make([]string, 0, len(s.names))
	for _, n := range s.names {
		if n.alias != "" {
			parts = append(parts, n.name+" as "+n.alias)
		} else {
			parts = append(parts, n.name)
		}
	}
	return pad(indent) + "from " + s.source + " import " + strings.Join(parts, ", "), nil
}

// ---- annotation ----

// annotationSeg is a data attribute declaration "name: type".
type annotationSeg struct {
	name     string
	typeExpr string
}

func (s *annotationSeg) key() segmentKey {
	return segmentKey{rank: kindAnnotation, primary: s.name, secondary: s.typeExpr}
}

func (s *annotationSeg) render(tr *translator, indent int) (string, error) {
	typeText, err := tr.translateExpr(s.typeExpr)
	if err != nil {
		logger.Warnw("Annotation type is not parseable, using verbatim text",
			"name", s.name,
			"type", s.typeExpr,
			"error", err)
		typeText = s.typeExpr
	}
	return pad(indent) + s.name + ": " + typeText, nil
}

// ---- function ----

// functionSeg is a function or method declaration recovered from a callable.
type functionSeg struct {
	name  string
	value reflected.Value
}

func (s *functionSeg) key() segmentKey {
	return segmentKey{rank: kindFunction, primary: s.name}
}

func (s *functionSeg) render(tr *translator, indent int) (string, error) {
	definition, description := recoverSignature(s.name, s.value)

	translated, err := tr.translateSignature(definition)
	if err != nil {
		logger.Warnw("Recovered signature is not parseable, using verbatim text",
			"name", s.name,
			"signature", definition,
			"error", err)
		translated = definition
	}

	if strings.TrimSpace(description) == "" {
		return pad(indent) + "def " + translated + ": ...", nil
	}
	return pad(indent) + "def " + translated + ":\n" + renderDocstring(description, indent+1), nil
}

// ---- class ----

// classSeg is a class declaration with a nested body built from the class's
// own declared annotations and classified members.
type classSeg struct {
	name  string
	class reflected.Container
}

func (s *classSeg) key() segmentKey {
	return segmentKey{rank: kindClass, primary: s.name}
}

func (s *classSeg) render(tr *translator, indent int) (string, error) {
	var sb strings.Builder
	sb.WriteString(pad(indent) + "class " + s.name + ":")

	hasDoc := strings.TrimSpace(s.class.Doc()) != ""
	if hasDoc {
		sb.WriteString("\n" + renderDocstring(s.class.Doc(), indent+1))
	}

	var members []segment
	declared := make(map[string]bool)
	for _, ann := range s.class.Annotations() {
		declared[ann.Name] = true
		members = append(members, &annotationSeg{name: ann.Name, typeExpr: ann.Type})
	}
	for _, m := range s.class.Members() {
		if declared[m.Name] {
			continue
		}
		seg, err := classifyMember(m.Name, m.Value)
		if err != nil {
			return "", err
		}
		if seg != nil {
			members = append(members, seg)
		}
	}
	sortSegments(members)

	if len(members) == 0 && !hasDoc {
		sb.WriteString("\n" + pad(indent+1) + "...")
		return sb.String(), nil
	}

	for _, m := range members {
		line, err := m.render(tr, indent+1)
		if err != nil {
			return "", err
		}
		sb.WriteString("\n" + line)
	}
	return sb.String(), nil
}

// ---- docstrings ----

// renderDocstring emits a triple-quoted block at the given indentation,
// stripping and dedenting the raw text the way the host's textwrap helpers
// would.
func renderDocstring(doc string, indent int) string {
	body := indentText(dedent(strings.TrimSpace(doc)), pad(indent))
	return pad(indent) + `"""` + "\n" + body + "\n" + pad(indent) + `"""`
}

// dedent removes the whitespace margin common to all non-blank lines.
// Whitespace-only lines are normalized to empty.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	margin := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			margin = indent
			first = false
			continue
		}
		// shrink margin to the longest common prefix
		max := len(margin)
		if len(indent) < max {
			max = len(indent)
		}
		i := 0
		for i < max && margin[i] == indent[i] {
			i++
		}
		margin = margin[:i]
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
		} else {
			lines[i] = strings.TrimPrefix(line, margin)
		}
	}
	return strings.Join(lines, "\n")
}

// indentText prefixes every non-blank line with the given prefix.
func indentText(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
