package formula

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// quoted captures one single- or double-quoted argument.
const quoted = `\s*(?:'([^']*)'|"([^"]*)")\s*`

var (
	rowRe      = regexp.MustCompile(`\bROW\s*\(` + quoted + `\)`)
	rangeRe    = regexp.MustCompile(`\bSUM_RANGE\s*\(` + quoted + `,` + quoted + `\)`)
	childrenRe = regexp.MustCompile(`\bSUM_CHILDREN\s*\(` + quoted + `\)`)
	varRe      = regexp.MustCompile(`\bVAR\s*\(` + quoted + `\)`)
)

// References are the identifiers a formula names, sorted and de-duplicated.
type References struct {
	Notes []string
	Vars  []string
}

// ExtractReferences finds every note referenced through ROW, SUM_RANGE
// endpoints or SUM_CHILDREN, and every variable referenced through VAR.
// Only literal quoted arguments are recognised.
func ExtractReferences(src string) References {
	notes := map[string]struct{}{}
	vars := map[string]struct{}{}

	for _, m := range rowRe.FindAllStringSubmatch(src, -1) {
		add(notes, pick(m[1], m[2]))
	}
	for _, m := range rangeRe.FindAllStringSubmatch(src, -1) {
		add(notes, pick(m[1], m[2]))
		add(notes, pick(m[3], m[4]))
	}
	for _, m := range childrenRe.FindAllStringSubmatch(src, -1) {
		add(notes, pick(m[1], m[2]))
	}
	for _, m := range varRe.FindAllStringSubmatch(src, -1) {
		add(vars, pick(m[1], m[2]))
	}
	return References{Notes: sortedKeys(notes), Vars: sortedKeys(vars)}
}

func pick(single, double string) string {
	if single != "" {
		return single
	}
	return double
}

func add(set map[string]struct{}, id string) {
	if id = strings.TrimSpace(id); id != "" {
		set[id] = struct{}{}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CycleError reports a reference cycle. Path starts and ends on the same note.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("formula reference cycle: %s", strings.Join(e.Path, " -> "))
}

// DetectCycles reports whether any formula reaches itself through references
// to other formulas in the same set.
func DetectCycles(formulas map[string]string) bool {
	return FindCycle(formulas) != nil
}

// FindCycle returns one cycle path, or nil. Formulas are visited in sorted
// order so the same set always yields the same path.
func FindCycle(formulas map[string]string) []string {
	_, cycle := newGraph(formulas, nil).topo()
	return cycle
}

// Order returns formula IDs with dependencies before dependants, or a
// *CycleError.
func Order(formulas map[string]string) ([]string, error) {
	return order(newGraph(formulas, nil))
}

// Structure widens dependency edges when planning evaluation: a SUM_RANGE
// depends on every note between its endpoints in Rows, and a SUM_CHILDREN on
// every child listed in Children.
type Structure struct {
	Rows     []string
	Children map[string][]string
}

// Plan is Order with dependencies widened by s.
func Plan(formulas map[string]string, s Structure) ([]string, error) {
	return order(newGraph(formulas, &s))
}

func order(g *graph) ([]string, error) {
	sorted, cycle := g.topo()
	if cycle != nil {
		return nil, &CycleError{Path: cycle}
	}
	return sorted, nil
}

type graph struct {
	nodes []string
	edges map[string][]string
}

func newGraph(formulas map[string]string, s *Structure) *graph {
	g := &graph{nodes: sortedKeys(formulas), edges: make(map[string][]string, len(formulas))}
	for _, id := range g.nodes {
		src := formulas[id]
		targets := map[string]struct{}{}
		for _, ref := range ExtractReferences(src).Notes {
			add(targets, ref)
		}
		if s != nil {
			for _, ref := range s.expand(src) {
				add(targets, ref)
			}
		}
		var deps []string
		for _, t := range sortedKeys(targets) {
			if _, ok := formulas[t]; ok {
				deps = append(deps, t)
			}
		}
		g.edges[id] = deps
	}
	return g
}

func (s *Structure) expand(src string) []string {
	var out []string
	for _, m := range rangeRe.FindAllStringSubmatch(src, -1) {
		from := slices.Index(s.Rows, strings.TrimSpace(pick(m[1], m[2])))
		to := slices.Index(s.Rows, strings.TrimSpace(pick(m[3], m[4])))
		if from < 0 || to < 0 {
			continue
		}
		if from > to {
			from, to = to, from
		}
		out = append(out, s.Rows[from:to+1]...)
	}
	for _, m := range childrenRe.FindAllStringSubmatch(src, -1) {
		out = append(out, s.Children[strings.TrimSpace(pick(m[1], m[2]))]...)
	}
	return out
}

const (
	unvisited = iota
	visiting
	visited
)

// topo runs a three-colour DFS. It returns the post-order (dependencies
// first) or the first cycle found.
func (g *graph) topo() ([]string, []string) {
	color := make(map[string]int, len(g.nodes))
	sorted := make([]string, 0, len(g.nodes))
	var stack []string

	var visit func(n string) []string
	visit = func(n string) []string {
		color[n] = visiting
		stack = append(stack, n)
		for _, d := range g.edges[n] {
			switch color[d] {
			case visiting:
				start := slices.Index(stack, d)
				return append(slices.Clone(stack[start:]), d)
			case unvisited:
				if c := visit(d); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = visited
		sorted = append(sorted, n)
		return nil
	}

	for _, n := range g.nodes {
		if color[n] != unvisited {
			continue
		}
		if c := visit(n); c != nil {
			return nil, c
		}
	}
	return sorted, nil
}
