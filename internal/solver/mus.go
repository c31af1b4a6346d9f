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

	"github.com/crillab/gophersat/explain"
)

// maxMUSRules bounds the chains handed to the MUS extractor; longer chains
// are reported as they are.
const maxMUSRules = 512

// minimize reduces an unsatisfiable chain of rules to a minimal
// unsatisfiable subset. On any failure the chain is returned unchanged.
func (st *solveState) minimize(chain []*Rule) []*Rule {
	if len(chain) < 2 || len(chain) > maxMUSRules {
		return chain
	}

	vars := map[PackageID]int{}
	byKey := map[string]*Rule{}
	var sb strings.Builder
	var clauses []string
	for _, r := range chain {
		if len(r.Literals) == 0 {
			// an empty rule is a core on its own
			return []*Rule{r}
		}
		clause := make([]int, len(r.Literals))
		for i, l := range r.Literals {
			v, ok := vars[l.ID()]
			if !ok {
				v = len(vars) + 1
				vars[l.ID()] = v
			}
			if l.Positive() {
				clause[i] = v
			} else {
				clause[i] = -v
			}
		}
		key := clauseKey(clause)
		if _, dup := byKey[key]; dup {
			continue
		}
		byKey[key] = r
		clauses = append(clauses, clauseLine(clause))
	}

	fmt.Fprintf(&sb, "p cnf %d %d\n", len(vars), len(clauses))
	for _, c := range clauses {
		sb.WriteString(c)
	}

	pb, err := explain.ParseCNF(strings.NewReader(sb.String()))
	if err != nil {
		st.logger.Debugf("solver: cannot build core problem: %s", err)
		return chain
	}
	mus, err := pb.MUS()
	if err != nil {
		st.logger.Debugf("solver: cannot minimize problem: %s", err)
		return chain
	}

	var core []*Rule
	for _, clause := range mus.Clauses {
		r, ok := byKey[clauseKey(clause)]
		if !ok {
			return chain
		}
		core = append(core, r)
	}
	if len(core) == 0 {
		return chain
	}
	sort.Slice(core, func(i, j int) bool { return core[i].ID < core[j].ID })
	st.logger.Debugf("solver: minimized problem from %d to %d rules", len(chain), len(core))
	return core
}

func clauseKey(clause []int) string {
	sorted := append([]int(nil), clause...)
	sort.Ints(sorted)
	return fmt.Sprint(sorted)
}

func clauseLine(clause []int) string {
	var sb strings.Builder
	for _, l := range clause {
		fmt.Fprintf(&sb, "%d ", l)
	}
	sb.WriteString("0\n")
	return sb.String()
}
