package transition

import (
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/pqueue"
)

// Distances caches the shortest-path distances of a TransitionSystem
// (spec.md §3, §4.5): init_d (distance from the init state), goal_d
// (distance to the nearest goal), and their maxima. Grounded on the
// original source's distances.cc unit-cost BFS sweeps, generalised to
// Dijkstra via the AdaptivePriorityQueue for non-unit label costs.
type Distances struct {
	initD []int
	goalD []int

	maxF, maxG, maxH int
}

// InitD returns g(state): the distance from the init state.
func (d *Distances) InitD(state int) int { return d.initD[state] }

// GoalD returns h(state): the distance to the nearest goal state.
func (d *Distances) GoalD(state int) int { return d.goalD[state] }

// MaxF, MaxG, MaxH return the maximum f=g+h, g, and h values over every
// non-dead state (spec.md §4.5). A state is dead if either its g or h is
// INF.
func (d *Distances) MaxF() int { return d.maxF }
func (d *Distances) MaxG() int { return d.maxG }
func (d *Distances) MaxH() int { return d.maxH }

// ToBePruned reports, for each state, whether it is dead (unreachable from
// init, or cannot reach a goal) and so a candidate for pruning (spec.md
// §4.5).
func (d *Distances) ToBePruned() []bool {
	out := make([]bool, len(d.initD))
	for s := range out {
		out[s] = d.initD[s] == mscore.INF || d.goalD[s] == mscore.INF
	}
	return out
}

// Distances lazily computes and caches this factor's Distances, choosing
// the unit-cost BFS path when every live label group has cost 1, and
// general-cost Dijkstra otherwise (spec.md §4.5).
func (t *TransitionSystem) Distances() *Distances {
	if t.dist != nil {
		return t.dist
	}
	t.dist = computeDistances(t)
	return t.dist
}

// InvalidateDistances discards the cached Distances, forcing the next
// Distances() call to recompute.
func (t *TransitionSystem) InvalidateDistances() { t.dist = nil }

func computeDistances(t *TransitionSystem) *Distances {
	if allUnitCost(t) {
		return computeDistancesUnitCost(t)
	}
	return computeDistancesGeneral(t)
}

func allUnitCost(t *TransitionSystem) bool {
	for _, g := range t.Groups() {
		if g.Cost != 1 {
			return false
		}
	}
	return true
}

// forwardAdjacency and reverseAdjacency build per-state successor/
// predecessor lists annotated with the traversing group's cost, shared by
// both the BFS and Dijkstra implementations.
type edge struct {
	to   int
	cost int
}

func (t *TransitionSystem) forwardAdjacency() [][]edge {
	adj := make([][]edge, t.numStates)
	for _, g := range t.Groups() {
		for _, tr := range g.Transitions {
			adj[tr.Src] = append(adj[tr.Src], edge{to: tr.Target, cost: g.Cost})
		}
	}
	return adj
}

func (t *TransitionSystem) reverseAdjacency() [][]edge {
	adj := make([][]edge, t.numStates)
	for _, g := range t.Groups() {
		for _, tr := range g.Transitions {
			adj[tr.Target] = append(adj[tr.Target], edge{to: tr.Src, cost: g.Cost})
		}
	}
	return adj
}

func computeDistancesUnitCost(t *TransitionSystem) *Distances {
	initD := bfs(t.forwardAdjacency(), t.numStates, singleSource(t.initState))
	goalD := bfs(t.reverseAdjacency(), t.numStates, goalSources(t))
	return finishDistances(initD, goalD)
}

func singleSource(s int) []int {
	if s == mscore.PRUNED {
		return nil
	}
	return []int{s}
}

func goalSources(t *TransitionSystem) []int {
	var out []int
	for s := 0; s < t.numStates; s++ {
		if t.IsGoal(s) {
			out = append(out, s)
		}
	}
	return out
}

// bfs computes unit-cost shortest distances from sources over adj,
// mirroring compute_init_distances_unit_cost / compute_goal_distances_
// unit_cost in the original source's distances.cc.
func bfs(adj [][]edge, numStates int, sources []int) []int {
	dist := make([]int, numStates)
	for i := range dist {
		dist[i] = mscore.INF
	}
	queue := make([]int, 0, numStates)
	for _, s := range sources {
		if dist[s] == mscore.INF {
			dist[s] = 0
			queue = append(queue, s)
		}
	}
	for head := 0; head < len(queue); head++ {
		s := queue[head]
		for _, e := range adj[s] {
			if dist[e.to] == mscore.INF {
				dist[e.to] = dist[s] + 1
				queue = append(queue, e.to)
			}
		}
	}
	return dist
}

func computeDistancesGeneral(t *TransitionSystem) *Distances {
	initD := dijkstra(t.forwardAdjacency(), t.numStates, singleSource(t.initState))
	goalD := dijkstra(t.reverseAdjacency(), t.numStates, goalSources(t))
	return finishDistances(initD, goalD)
}

// dijkstra computes general-cost shortest distances from sources over adj
// using the AdaptivePriorityQueue (spec.md §4.5, §4.13).
func dijkstra(adj [][]edge, numStates int, sources []int) []int {
	dist := make([]int, numStates)
	for i := range dist {
		dist[i] = mscore.INF
	}
	q := pqueue.New[int]()
	for _, s := range sources {
		if dist[s] == mscore.INF {
			dist[s] = 0
			q.Push(0, s)
		}
	}
	for !q.Empty() {
		key, s := q.Pop()
		if key > dist[s] {
			continue // stale entry
		}
		for _, e := range adj[s] {
			nd := dist[s] + e.cost
			if nd < dist[e.to] {
				dist[e.to] = nd
				q.Push(nd, e.to)
			}
		}
	}
	return dist
}

func finishDistances(initD, goalD []int) *Distances {
	d := &Distances{initD: initD, goalD: goalD}
	for s := range initD {
		if initD[s] == mscore.INF || goalD[s] == mscore.INF {
			continue
		}
		if initD[s] > d.maxG {
			d.maxG = initD[s]
		}
		if goalD[s] > d.maxH {
			d.maxH = goalD[s]
		}
		if f := initD[s] + goalD[s]; f > d.maxF {
			d.maxF = f
		}
	}
	return d
}
