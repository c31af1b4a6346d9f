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

import (
	"fmt"
	"sort"
	"strings"
)

// RuleSet owns the rules of one solve. IDs are assigned in insertion order
// and rules are never removed.
type RuleSet struct {
	rules  []*Rule
	byType map[RuleType][]*Rule
	// type and sorted literals -> rule, to skip duplicate clauses
	index map[string]*Rule
}

// NewRuleSet returns an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		byType: make(map[RuleType][]*Rule),
		index:  make(map[string]*Rule),
	}
}

// Add appends r, assigning its ID, and returns it. A non-empty, non-learned
// rule with the same type and literals as an existing rule is not added
// again; the existing rule is returned instead.
func (rs *RuleSet) Add(r *Rule) *Rule {
	var key string
	if len(r.Literals) > 0 && r.Type != RuleLearned {
		key = ruleKey(r.Type, r.Literals)
		if existing, ok := rs.index[key]; ok {
			return existing
		}
	}
	r.ID = len(rs.rules)
	rs.rules = append(rs.rules, r)
	rs.byType[r.Type] = append(rs.byType[r.Type], r)
	if key != "" {
		rs.index[key] = r
	}
	return r
}

func ruleKey(t RuleType, literals []Literal) string {
	sorted := append([]Literal(nil), literals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:", t)
	for _, l := range sorted {
		fmt.Fprintf(&sb, "%d,", l)
	}
	return sb.String()
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Rule returns the rule with the given ID.
func (rs *RuleSet) Rule(id int) *Rule {
	return rs.rules[id]
}

// Rules returns every rule in ID order. The slice must not be modified.
func (rs *RuleSet) Rules() []*Rule {
	return rs.rules
}

// OfType returns the rules of type t in ID order.
func (rs *RuleSet) OfType(t RuleType) []*Rule {
	return rs.byType[t]
}

// Counts returns the number of rules per type.
func (rs *RuleSet) Counts() map[RuleType]int {
	counts := make(map[RuleType]int, len(rs.byType))
	for t, rules := range rs.byType {
		counts[t] = len(rules)
	}
	return counts
}

// Clauses returns the rules as integer clauses, the format SAT tooling
// consumes.
func (rs *RuleSet) Clauses() [][]int {
	clauses := make([][]int, 0, len(rs.rules))
	for _, r := range rs.rules {
		clause := make([]int, len(r.Literals))
		for i, l := range r.Literals {
			clause[i] = int(l)
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

func (rs *RuleSet) String() string {
	var sb strings.Builder
	for _, r := range rs.rules {
		sb.WriteString(r.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
