package layout

import (
	"fmt"
	"sort"

	"github.com/aretw0/plotline/pkg/domain"
)

// Levels computes the level of every node and the per-level groups in
// placement order. It is the leveling half of Apply.
//
// Roots are the nodes without incoming edges, in node order; a fully cyclic
// flow is seeded from its first node. An edge closing a cycle (its target
// is still being explored when the edge is walked) never raises its
// target's level. Nodes no root can reach sit at level 0 after the roots.
func Levels(flow domain.Flow) (map[string]int, [][]string, error) {
	a, err := analyze(flow)
	if err != nil {
		return nil, nil, err
	}
	levels := make(map[string]int, len(flow.Nodes))
	for i, n := range flow.Nodes {
		levels[n.ID] = a.level[i]
	}
	return levels, a.groups(flow), nil
}

type arc struct {
	to   int
	back bool
}

type analysis struct {
	level     []int
	seq       []int // order of first assignment; -1 while unassigned
	reachable []bool
	out       [][]arc
}

func analyze(flow domain.Flow) (*analysis, error) {
	n := len(flow.Nodes)
	index := make(map[string]int, n)
	for i, node := range flow.Nodes {
		if _, dup := index[node.ID]; dup {
			return nil, &domain.PreconditionError{Reason: fmt.Sprintf("duplicate node id %q", node.ID)}
		}
		index[node.ID] = i
	}

	a := &analysis{
		level:     make([]int, n),
		seq:       make([]int, n),
		reachable: make([]bool, n),
		out:       make([][]arc, n),
	}
	indeg := make([]int, n)
	for _, e := range flow.Edges {
		s, ok := index[e.Source]
		if !ok {
			return nil, &domain.PreconditionError{Reason: fmt.Sprintf("edge %q: source %q does not exist", e.ID, e.Source)}
		}
		t, ok := index[e.Target]
		if !ok {
			return nil, &domain.PreconditionError{Reason: fmt.Sprintf("edge %q: target %q does not exist", e.ID, e.Target)}
		}
		a.out[s] = append(a.out[s], arc{to: t})
		indeg[t]++
	}
	if n == 0 {
		return a, nil
	}

	var roots []int
	for i := range flow.Nodes {
		if indeg[i] == 0 {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 {
		roots = []int{0}
	}

	a.markBackEdges(roots)
	a.relax(roots)
	return a, nil
}

// markBackEdges runs an iterative DFS from the roots and flags every arc
// whose target is on the current DFS path.
func (a *analysis) markBackEdges(roots []int) {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(a.out))

	type frame struct {
		node int
		next int // next arc to walk
	}

	for _, r := range roots {
		if color[r] != white {
			continue
		}
		color[r] = gray
		a.reachable[r] = true
		stack := []frame{{node: r}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(a.out[top.node]) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			arcs := a.out[top.node]
			i := top.next
			top.next++

			switch color[arcs[i].to] {
			case gray:
				arcs[i].back = true
			case white:
				color[arcs[i].to] = gray
				a.reachable[arcs[i].to] = true
				stack = append(stack, frame{node: arcs[i].to})
			}
		}
	}
}

// relax assigns longest-path levels over the forward arcs with a worklist of
// (node, proposed level) pairs. A node is released once all of its forward
// predecessors have been processed, so each node is dequeued exactly once.
func (a *analysis) relax(roots []int) {
	for i := range a.seq {
		a.seq[i] = -1
	}

	pending := make([]int, len(a.out))
	for u, arcs := range a.out {
		if !a.reachable[u] {
			continue
		}
		for _, ar := range arcs {
			if !ar.back {
				pending[ar.to]++
			}
		}
	}

	type item struct {
		node  int
		level int
	}

	next := 0
	queue := make([]item, 0, len(a.out))
	for _, r := range roots {
		a.seq[r] = next
		next++
		queue = append(queue, item{node: r})
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		a.level[cur.node] = cur.level
		for _, ar := range a.out[cur.node] {
			if ar.back {
				continue
			}
			proposed := cur.level + 1
			if a.seq[ar.to] < 0 {
				a.seq[ar.to] = next
				next++
				a.level[ar.to] = proposed
			} else if proposed > a.level[ar.to] {
				a.level[ar.to] = proposed
			}
			pending[ar.to]--
			if pending[ar.to] == 0 {
				queue = append(queue, item{node: ar.to, level: a.level[ar.to]})
			}
		}
	}

	// Unreachable nodes join level 0 after the roots, in node order.
	for i := range a.seq {
		if a.seq[i] < 0 {
			a.seq[i] = next
			next++
			a.level[i] = 0
		}
	}
}

func (a *analysis) groups(flow domain.Flow) [][]string {
	if len(flow.Nodes) == 0 {
		return nil
	}
	order := make([]int, len(flow.Nodes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return a.seq[order[i]] < a.seq[order[j]] })

	maxLevel := 0
	for _, l := range a.level {
		if l > maxLevel {
			maxLevel = l
		}
	}
	groups := make([][]string, maxLevel+1)
	for _, i := range order {
		l := a.level[i]
		groups[l] = append(groups[l], flow.Nodes[i].ID)
	}
	return groups
}
