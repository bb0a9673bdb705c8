package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/choreo/internal/engine"
)

// Reachability warning levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// ReachWarning describes a problem with the playback order of a step list.
//
// Most findings are warnings, not errors, because they may be intentional:
//   - A final forever step is the usual way to hold a color
//   - A zero-time loop is a strobe at the polling rate
type ReachWarning struct {
	Steps   []int  `json:"steps"`   // Step indexes involved, in playback order
	Message string `json:"message"` // Human-readable description
	Level   string `json:"level"`   // "error", "warning" or "info"
}

// AnalyzeReachability performs static analysis of the step playback graph.
//
// The graph has an edge i → i+1 for every step that can exhaust, and an
// edge from the last step back to step 0 when behavior loops. Then:
//  1. Steps not reachable from step 0 are reported as errors
//  2. Strongly connected components whose steps all have zero duration
//     are reported as warnings: they advance one step per poll forever
//  3. A reachable forever step is reported as info: playback holds there
//
// An empty step list returns an empty warning list.
func AnalyzeReachability(steps []engine.Step, behavior engine.Behavior) []ReachWarning {
	if len(steps) == 0 {
		return []ReachWarning{}
	}

	graph := buildStepGraph(steps, behavior)
	reached := reachableFrom(0, graph)

	var warnings []ReachWarning

	var unreachable []int
	for i := range steps {
		if !reached[i] {
			unreachable = append(unreachable, i)
		}
	}
	if len(unreachable) > 0 {
		warnings = append(warnings, ReachWarning{
			Steps:   unreachable,
			Message: fmt.Sprintf("Unreachable steps: %s", joinIndexes(unreachable)),
			Level:   LevelError,
		})
	}

	for _, scc := range tarjanSCC(graph) {
		if !isLoop(scc, graph) || !reached[scc[0]] {
			continue
		}
		if zeroTime(scc, steps) {
			slices.Sort(scc)
			warnings = append(warnings, ReachWarning{
				Steps:   scc,
				Message: fmt.Sprintf("Zero-duration loop advances every poll: %s", joinIndexes(scc)),
				Level:   LevelWarning,
			})
		}
	}

	for i, st := range steps {
		if reached[i] && st.Repeat.IsForever() {
			warnings = append(warnings, ReachWarning{
				Steps:   []int{i},
				Message: fmt.Sprintf("Playback holds on step %d (repeat forever)", i),
				Level:   LevelInfo,
			})
			break
		}
	}

	return warnings
}

// stepGraph maps step index → steps that can follow it.
type stepGraph map[int][]int

func buildStepGraph(steps []engine.Step, behavior engine.Behavior) stepGraph {
	graph := make(stepGraph, len(steps))
	last := len(steps) - 1
	loops := behavior.Loops() != 1

	for i, st := range steps {
		graph[i] = []int{}
		if st.Repeat.IsForever() {
			continue
		}
		switch {
		case i < last:
			graph[i] = append(graph[i], i+1)
		case loops:
			graph[i] = append(graph[i], 0)
		}
	}
	return graph
}

func reachableFrom(start int, graph stepGraph) map[int]bool {
	seen := map[int]bool{start: true}
	stack := []int{start}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range graph[v] {
			if !seen[w] {
				seen[w] = true
				stack = append(stack, w)
			}
		}
	}
	return seen
}

// isLoop reports whether an SCC is a real cycle (more than one node, or
// a self-loop).
func isLoop(scc []int, graph stepGraph) bool {
	if len(scc) > 1 {
		return true
	}
	return slices.Contains(graph[scc[0]], scc[0])
}

func zeroTime(scc []int, steps []engine.Step) bool {
	for _, i := range scc {
		if steps[i].Duration != 0 {
			return false
		}
	}
	return true
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in index order so results are deterministic.
func tarjanSCC(graph stepGraph) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make(map[int]int)
		lowlink = make(map[int]int)
		onStack = make(map[int]bool)
		sccs    [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and emit an SCC
		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for node := 0; node < len(graph); node++ {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func joinIndexes(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
