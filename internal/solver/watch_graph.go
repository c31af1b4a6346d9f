/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package solver

// watchNode is a rule together with the two literals it currently watches.
// As long as neither watch is false the rule cannot be unit or conflicting.
type watchNode struct {
	rule   *Rule
	watch1 Literal
	watch2 Literal
}

// WatchGraph indexes rules of two or more literals by their watched
// literals, so that deciding a literal only visits rules watching its
// negation.
type WatchGraph struct {
	watches [][]*watchNode
}

// NewWatchGraph returns an empty graph for a pool of size n.
func NewWatchGraph(n int) *WatchGraph {
	return &WatchGraph{watches: make([][]*watchNode, 2*(n+1))}
}

func watchIndex(l Literal) int {
	if l > 0 {
		return 2 * int(l)
	}
	return 2*int(-l) + 1
}

// Insert starts watching the first two literals of rule. Assertions and
// empty rules are not watched.
func (g *WatchGraph) Insert(rule *Rule) {
	if len(rule.Literals) < 2 {
		return
	}
	n := &watchNode{rule: rule, watch1: rule.Literals[0], watch2: rule.Literals[1]}
	g.watches[watchIndex(n.watch1)] = append(g.watches[watchIndex(n.watch1)], n)
	g.watches[watchIndex(n.watch2)] = append(g.watches[watchIndex(n.watch2)], n)
}

// Propagate visits the rules watching the negation of the just decided
// literal. Rules left with a single undecided literal force it; a rule
// with every literal false is returned as the conflict.
func (g *WatchGraph) Propagate(d *Decisions, decided Literal) *Rule {
	falseLit := decided.Negate()
	idx := watchIndex(falseLit)
	list := g.watches[idx]
	kept := list[:0]

	for i := 0; i < len(list); i++ {
		n := list[i]
		if n.watch1 == falseLit {
			n.watch1, n.watch2 = n.watch2, n.watch1
		}
		other := n.watch1
		if d.Satisfied(other) {
			kept = append(kept, n)
			continue
		}

		moved := false
		for _, lit := range n.rule.Literals {
			if lit == other || lit == falseLit || d.Conflict(lit) {
				continue
			}
			n.watch2 = lit
			g.watches[watchIndex(lit)] = append(g.watches[watchIndex(lit)], n)
			moved = true
			break
		}
		if moved {
			continue
		}

		kept = append(kept, n)
		if d.Conflict(other) {
			kept = append(kept, list[i+1:]...)
			g.watches[idx] = kept
			return n.rule
		}
		d.Decide(other, n.rule)
	}
	g.watches[idx] = kept
	return nil
}
