package lifecycle

import (
	"fmt"
	"sort"
)

// Edge is a permitted (from, to) stage pair.
type Edge struct {
	From Stage
	To   Stage
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// Table is the directed graph of permitted stage transitions. The zero value
// permits nothing; use DefaultTable or NewTable.
type Table struct {
	initial  Stage
	terminal Stage
	edges    map[Stage]map[Stage]struct{}
}

// NewTable builds a table from an adjacency list. The input map is copied so
// later mutation by the caller has no effect.
func NewTable(initial, terminal Stage, adjacency map[Stage][]Stage) Table {
	edges := make(map[Stage]map[Stage]struct{}, len(adjacency))
	for from, targets := range adjacency {
		set := make(map[Stage]struct{}, len(targets))
		for _, to := range targets {
			set[to] = struct{}{}
		}
		edges[from] = set
	}
	return Table{initial: initial, terminal: terminal, edges: edges}
}

// DefaultTable returns the editorial workflow graph.
func DefaultTable() Table {
	return NewTable(StageSubmitted, StageArchived, map[Stage][]Stage{
		StageSubmitted:         {StageQueued, StageDuplicateDetected},
		StageQueued:            {StageAssigned, StageRejected},
		StageDuplicateDetected: {StageArchived},
		StageAssigned:          {StageInResearch, StageRejected},
		StageInResearch:        {StageDraftReady, StageRejected},
		StageDraftReady:        {StageAdminReview, StageNeedsMoreResearch},
		StageNeedsMoreResearch: {StageInResearch},
		StageAdminReview:       {StagePeerReview, StageFinalApproval, StageNeedsMoreResearch, StageRejected},
		StagePeerReview:        {StageFinalApproval, StageNeedsMoreResearch, StageRejected},
		StageFinalApproval:     {StagePublished, StageNeedsMoreResearch, StageRejected},
		StagePublished:         {StageUnderCorrection},
		StageUnderCorrection:   {StageCorrected},
		StageCorrected:         {StagePublished},
		StageRejected:          {StageArchived},
		StageArchived:          {},
	})
}

// Initial returns the stage new work items start in.
func (t Table) Initial() Stage {
	return t.initial
}

// IsTerminal reports whether no transitions leave the stage.
func (t Table) IsTerminal(stage Stage) bool {
	return stage == t.terminal || len(t.edges[stage]) == 0
}

// Allows reports whether the edge from -> to exists.
func (t Table) Allows(from, to Stage) bool {
	targets, ok := t.edges[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Targets returns the stages reachable in one step from the given stage,
// ordered by their position in AllStages so output is deterministic.
func (t Table) Targets(from Stage) []Stage {
	targets := t.edges[from]
	if len(targets) == 0 {
		return []Stage{}
	}
	out := make([]Stage, 0, len(targets))
	for to := range targets {
		out = append(out, to)
	}
	sortStages(out)
	return out
}

// Edges returns every edge in the table in deterministic order.
func (t Table) Edges() []Edge {
	var out []Edge
	for _, from := range t.Stages() {
		for _, to := range t.Targets(from) {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

// Validate checks the structural invariants of the graph: every stage that is
// not terminal has an outgoing edge and every stage is reachable from the
// initial stage.
func (t Table) Validate() error {
	stages := t.Stages()
	if _, ok := t.edges[t.initial]; !ok {
		return fmt.Errorf("lifecycle: initial stage %q has no entry", t.initial)
	}
	for _, stage := range stages {
		if stage != t.terminal && len(t.edges[stage]) == 0 {
			return fmt.Errorf("lifecycle: stage %q has no outgoing edges", stage)
		}
		if stage == t.terminal && len(t.edges[stage]) > 0 {
			return fmt.Errorf("lifecycle: terminal stage %q has outgoing edges", stage)
		}
	}

	reached := map[Stage]struct{}{t.initial: {}}
	frontier := []Stage{t.initial}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for next := range t.edges[current] {
			if _, seen := reached[next]; seen {
				continue
			}
			reached[next] = struct{}{}
			frontier = append(frontier, next)
		}
	}
	for _, stage := range stages {
		if _, ok := reached[stage]; !ok {
			return fmt.Errorf("lifecycle: stage %q is unreachable from %q", stage, t.initial)
		}
	}
	return nil
}

// Stages lists every stage mentioned by the table as a source or target.
func (t Table) Stages() []Stage {
	seen := make(map[Stage]struct{}, len(t.edges))
	for from, targets := range t.edges {
		seen[from] = struct{}{}
		for to := range targets {
			seen[to] = struct{}{}
		}
	}
	out := make([]Stage, 0, len(seen))
	for stage := range seen {
		out = append(out, stage)
	}
	sortStages(out)
	return out
}

var stageOrder = func() map[Stage]int {
	order := make(map[Stage]int, len(allStages))
	for i, stage := range allStages {
		order[stage] = i
	}
	return order
}()

func sortStages(stages []Stage) {
	sort.Slice(stages, func(i, j int) bool {
		oi, iok := stageOrder[stages[i]]
		oj, jok := stageOrder[stages[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok:
			return true
		case jok:
			return false
		default:
			return stages[i] < stages[j]
		}
	})
}

// Path returns the shortest stage sequence leading from one stage to another,
// excluding from and including to. Ties are broken by declaration order. It
// returns nil when to is unreachable and an empty slice when from == to.
func (t Table) Path(from, to Stage) []Stage {
	if from == to {
		return []Stage{}
	}
	prev := map[Stage]Stage{from: from}
	frontier := []Stage{from}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for _, next := range t.Targets(current) {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = current
			if next == to {
				var path []Stage
				for s := to; s != from; s = prev[s] {
					path = append([]Stage{s}, path...)
				}
				return path
			}
			frontier = append(frontier, next)
		}
	}
	return nil
}
