// Package canonical implements CanonicalPDBs / PatternCliques (spec.md
// §4.10): given a pattern collection, precompute the additivity graph and
// its maximal cliques once, then evaluate a query state as the maximum over
// cliques of the summed per-pattern PDB values.
//
// Grounded on the original source's canonical_pdbs.h/.cc and
// max_additive_pdb_subsets.cc: two patterns are additive iff no operator
// has effects on variables in both (operator_has_effects_on_variables_of_patterns
// there), and the maximal additive subsets are exactly the maximal cliques
// of that additivity graph, enumerated with a Bron-Kerbosch variant
// (max_cliques.cc there; this module's version omits the pivot-selection
// optimisation since pattern collections here stay small).
package canonical

import (
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/pattern"
	"github.com/aibasel/downward-sub002/pdb"
)

// Collection is an immutable, precomputed canonical-heuristic evaluator
// over a fixed set of patterns and their PDBs.
type Collection struct {
	patterns []pattern.Pattern
	pdbs     []*pdb.PDB
	cliques  [][]int // each entry: indices into patterns/pdbs forming a maximal additive clique
}

// Build constructs a Collection (spec.md §4.10). patterns and pdbs must be
// parallel slices of equal length.
func Build(task mscore.TaskView, patterns []pattern.Pattern, pdbs []*pdb.PDB) *Collection {
	n := len(patterns)
	additive := make([][]bool, n)
	for i := range additive {
		additive[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if isAdditive(task, patterns[i], patterns[j]) {
				additive[i][j] = true
				additive[j][i] = true
			}
		}
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	cliques := bronKerbosch(additive, nil, all, nil)
	return &Collection{patterns: patterns, pdbs: pdbs, cliques: cliques}
}

// isAdditive reports whether patterns p and q are additive: no operator in
// task has effects on a variable of p and a variable of q simultaneously
// (spec.md §4.10).
func isAdditive(task mscore.TaskView, p, q pattern.Pattern) bool {
	qSet := make(map[int]bool, len(q))
	for _, v := range q {
		qSet[v] = true
	}
	pSet := make(map[int]bool, len(p))
	for _, v := range p {
		pSet[v] = true
	}

	for opID := 0; opID < task.NumOperators(); opID++ {
		op := task.Operator(opID)
		touchesP, touchesQ := false, false
		for _, e := range op.Effects {
			if pSet[e.Var] {
				touchesP = true
			}
			if qSet[e.Var] {
				touchesQ = true
			}
		}
		if touchesP && touchesQ {
			return false
		}
	}
	return true
}

// bronKerbosch enumerates every maximal clique of the graph adj (without
// pivoting), following the classic recursive formulation: R is the clique
// built so far, P the candidates that could still extend it, X the
// already-excluded vertices (grounded on the original source's
// max_cliques.cc recursive structure).
func bronKerbosch(adj [][]bool, r, p, x []int) [][]int {
	if len(p) == 0 && len(x) == 0 {
		if len(r) == 0 {
			return nil
		}
		return [][]int{append([]int(nil), r...)}
	}

	var out [][]int
	p = append([]int(nil), p...)
	for len(p) > 0 {
		v := p[0]

		newR := append(append([]int(nil), r...), v)
		newP := filterNeighbors(p[1:], adj, v)
		newX := filterNeighbors(x, adj, v)
		out = append(out, bronKerbosch(adj, newR, newP, newX)...)

		x = append(x, v)
		p = p[1:]
	}
	return out
}

// filterNeighbors returns the subset of vs adjacent to v in adj.
func filterNeighbors(vs []int, adj [][]bool, v int) []int {
	var out []int
	for _, u := range vs {
		if adj[v][u] {
			out = append(out, u)
		}
	}
	return out
}
