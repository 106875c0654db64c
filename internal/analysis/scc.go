package analysis

import "sort"

// Cycles runs Tarjan's strongly-connected-components algorithm over
// the dependency graph and records every SCC of size >= 2 plus every
// self-loop. Nodes are visited in sorted order and each cycle is
// reported as a sorted name list, so the result is deterministic.
func Cycles(deps map[string][]string) [][]string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &tarjan{
		deps:    deps,
		index:   make(map[string]int, len(deps)),
		lowlink: make(map[string]int, len(deps)),
		onStack: make(map[string]bool, len(deps)),
	}
	for _, name := range names {
		if _, seen := t.index[name]; !seen {
			t.strongConnect(name)
		}
	}

	var cycles [][]string
	for _, scc := range t.sccs {
		if len(scc) >= 2 {
			sorted := append([]string(nil), scc...)
			sort.Strings(sorted)
			cycles = append(cycles, sorted)
			continue
		}
		// Single-node SCC: record only on a self-loop.
		name := scc[0]
		for _, dep := range deps[name] {
			if dep == name {
				cycles = append(cycles, []string{name})
				break
			}
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

type tarjan struct {
	deps    map[string][]string
	counter int
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	sccs    [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.deps[v] {
		if _, known := t.deps[w]; !known {
			continue // edge to an undefined schema; resolver reports it
		}
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []string
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
