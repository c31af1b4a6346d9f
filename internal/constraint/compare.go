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

package constraint

import "strings"

// Operator is a comparison operator of a single constraint.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

func (o Operator) String() string {
	switch o {
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	default:
		return "=="
	}
}

func parseOperator(s string) (Operator, bool) {
	switch s {
	case "", "=", "==":
		return OpEqual, true
	case "!=", "<>":
		return OpNotEqual, true
	case "<":
		return OpLess, true
	case "<=":
		return OpLessEqual, true
	case ">":
		return OpGreater, true
	case ">=":
		return OpGreaterEqual, true
	}
	return OpEqual, false
}

// direction is -1 for < and <=, 1 for > and >=, 0 otherwise.
func (o Operator) direction() int {
	switch o {
	case OpLess, OpLessEqual:
		return -1
	case OpGreater, OpGreaterEqual:
		return 1
	}
	return 0
}

func (o Operator) inclusive() bool {
	return o == OpLessEqual || o == OpGreaterEqual || o == OpEqual
}

// Compare orders two versions. Branches sort below every numeric version
// and among themselves by name, which gives Policy a total order; use
// CompareOp for constraint semantics.
func Compare(a, b Version) int {
	switch {
	case a.IsBranch() && b.IsBranch():
		return strings.Compare(a.branch, b.branch)
	case a.IsBranch():
		return -1
	case b.IsBranch():
		return 1
	}
	for i := 0; i < 4; i++ {
		if a.segments[i] != b.segments[i] {
			if a.segments[i] < b.segments[i] {
				return -1
			}
			return 1
		}
	}
	if a.stability != b.stability {
		if a.stability < b.stability {
			return -1
		}
		return 1
	}
	n := len(a.modifier)
	if len(b.modifier) > n {
		n = len(b.modifier)
	}
	for i := 0; i < n; i++ {
		var x, y uint64
		if i < len(a.modifier) {
			x = a.modifier[i]
		}
		if i < len(b.modifier) {
			y = b.modifier[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Equal reports whether a and b denote the same version.
func Equal(a, b Version) bool {
	if a.IsBranch() || b.IsBranch() {
		return a.branch == b.branch
	}
	return Compare(a, b) == 0
}

// CompareOp evaluates "a op b". Branch versions are identity-only: they are
// only ever equal to the same branch and, unless compareBranches is set,
// never ordered against numeric versions.
func CompareOp(a, b Version, op Operator, compareBranches bool) bool {
	aBranch, bBranch := a.IsBranch(), b.IsBranch()
	if op == OpNotEqual && (aBranch || bBranch) {
		return a.String() != b.String()
	}
	if aBranch && bBranch {
		return op == OpEqual && a.branch == b.branch
	}
	if !compareBranches && (aBranch || bBranch) {
		return false
	}

	c := Compare(a, b)
	switch op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	}
	return false
}
