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

// Constraint is a set of versions described by an interval tree. Two
// constraints match when the sets they describe overlap.
type Constraint interface {
	Matches(other Constraint) bool
	LowerBound() Bound
	UpperBound() Bound
	String() string
}

type boundKind int

const (
	boundZero boundKind = iota
	boundFinite
	boundInfinity
)

// Bound is one end of the interval a constraint covers.
type Bound struct {
	kind      boundKind
	version   Version
	inclusive bool
}

var (
	zeroBound     = Bound{kind: boundZero, inclusive: true}
	infinityBound = Bound{kind: boundInfinity}
)

func finiteBound(v Version, inclusive bool) Bound {
	return Bound{kind: boundFinite, version: v, inclusive: inclusive}
}

// IsZero reports whether b is the lowest possible bound.
func (b Bound) IsZero() bool { return b.kind == boundZero }

// IsInfinity reports whether b is unbounded above.
func (b Bound) IsInfinity() bool { return b.kind == boundInfinity }

// Version returns the version of a finite bound.
func (b Bound) Version() Version { return b.version }

// IsInclusive reports whether the bound version itself is in the interval.
func (b Bound) IsInclusive() bool { return b.inclusive }

func (b Bound) String() string {
	switch b.kind {
	case boundZero:
		return "0"
	case boundInfinity:
		return "+inf"
	}
	if b.inclusive {
		return "[" + b.version.String()
	}
	return "(" + b.version.String()
}

// compareLower orders lower bounds: a smaller result admits more versions.
func compareLower(a, b Bound) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	if a.kind != boundFinite {
		return 0
	}
	if c := Compare(a.version, b.version); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return -1
	default:
		return 1
	}
}

// compareUpper orders upper bounds: a bigger result admits more versions.
func compareUpper(a, b Bound) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	if a.kind != boundFinite {
		return 0
	}
	if c := Compare(a.version, b.version); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return 1
	default:
		return -1
	}
}

// lowerBelowUpper reports whether an interval starting at lower and ending
// at upper is non-empty.
func lowerBelowUpper(lower, upper Bound) bool {
	if lower.kind == boundInfinity || upper.kind == boundZero {
		return false
	}
	if lower.kind == boundZero || upper.kind == boundInfinity {
		return true
	}
	c := Compare(lower.version, upper.version)
	if c == 0 {
		return lower.inclusive && upper.inclusive
	}
	return c < 0
}

func boundsOverlap(a, b Constraint) bool {
	return lowerBelowUpper(a.LowerBound(), b.UpperBound()) &&
		lowerBelowUpper(b.LowerBound(), a.UpperBound())
}

// Single is an operator applied to one version, e.g. ">=1.0.0.0-dev".
type Single struct {
	op      Operator
	version Version
	lower   Bound
	upper   Bound
}

// NewSingle builds a single constraint and computes its bounds once.
func NewSingle(op Operator, v Version) *Single {
	s := &Single{op: op, version: v}
	s.lower, s.upper = s.extractBounds()
	return s
}

// Exactly returns the constraint matching only version v.
func Exactly(v Version) *Single {
	return NewSingle(OpEqual, v)
}

// Operator returns the comparison operator.
func (s *Single) Operator() Operator { return s.op }

// Version returns the compared version.
func (s *Single) Version() Version { return s.version }

func (s *Single) extractBounds() (Bound, Bound) {
	if s.version.IsBranch() {
		return zeroBound, infinityBound
	}
	switch s.op {
	case OpEqual:
		return finiteBound(s.version, true), finiteBound(s.version, true)
	case OpLess:
		return zeroBound, finiteBound(s.version, false)
	case OpLessEqual:
		return zeroBound, finiteBound(s.version, true)
	case OpGreater:
		return finiteBound(s.version, false), infinityBound
	case OpGreaterEqual:
		return finiteBound(s.version, true), infinityBound
	}
	return zeroBound, infinityBound
}

func (s *Single) LowerBound() Bound { return s.lower }
func (s *Single) UpperBound() Bound { return s.upper }

func (s *Single) String() string {
	return s.op.String() + " " + s.version.String()
}

func (s *Single) Matches(other Constraint) bool {
	switch o := other.(type) {
	case *Single:
		return s.MatchSpecific(o, false)
	case nil:
		return true
	default:
		return o.Matches(s)
	}
}

// MatchSpecific reports whether s and p overlap. compareBranches allows
// branch versions to be ordered against numeric ones.
func (s *Single) MatchSpecific(p *Single, compareBranches bool) bool {
	isEq, isNe := s.op == OpEqual, s.op == OpNotEqual
	pEq, pNe := p.op == OpEqual, p.op == OpNotEqual

	if isNe || pNe {
		if isNe && !pNe && !pEq && p.version.IsBranch() {
			return false
		}
		if pNe && !isNe && !isEq && s.version.IsBranch() {
			return false
		}
		if !isEq && !pEq {
			return true
		}
		return CompareOp(p.version, s.version, OpNotEqual, compareBranches)
	}

	// same direction ranges always share an infinite tail
	if d := s.op.direction(); d != 0 && d == p.op.direction() {
		return !(s.version.IsBranch() || p.version.IsBranch())
	}

	var v1, v2 Version
	var op Operator
	if isEq {
		v1, v2, op = s.version, p.version, p.op
	} else {
		v1, v2, op = p.version, s.version, s.op
	}
	if !CompareOp(v1, v2, op, compareBranches) {
		return false
	}
	if !isEq && !pEq && Equal(s.version, p.version) {
		return s.op.inclusive() && p.op.inclusive()
	}
	return true
}

// Multi is an AND (conjunctive) or OR (disjunctive) list of constraints.
type Multi struct {
	constraints []Constraint
	conjunctive bool
	lower       Bound
	upper       Bound
}

// NewMulti combines constraints. A list of one is returned as is and an
// empty list matches everything.
func NewMulti(constraints []Constraint, conjunctive bool) Constraint {
	switch len(constraints) {
	case 0:
		return MatchAll{}
	case 1:
		return constraints[0]
	}
	m := &Multi{constraints: constraints, conjunctive: conjunctive}
	m.lower, m.upper = m.extractBounds()
	return m
}

func (m *Multi) extractBounds() (Bound, Bound) {
	lower, upper := m.constraints[0].LowerBound(), m.constraints[0].UpperBound()
	for _, c := range m.constraints[1:] {
		l, u := c.LowerBound(), c.UpperBound()
		if m.conjunctive {
			if compareLower(l, lower) > 0 {
				lower = l
			}
			if compareUpper(u, upper) < 0 {
				upper = u
			}
			continue
		}
		if compareLower(l, lower) < 0 {
			lower = l
		}
		if compareUpper(u, upper) > 0 {
			upper = u
		}
	}
	return lower, upper
}

// Constraints returns the members of the list.
func (m *Multi) Constraints() []Constraint { return m.constraints }

// IsConjunctive reports whether every member must match.
func (m *Multi) IsConjunctive() bool { return m.conjunctive }

func (m *Multi) LowerBound() Bound { return m.lower }
func (m *Multi) UpperBound() Bound { return m.upper }

func (m *Multi) String() string {
	parts := make([]string, 0, len(m.constraints))
	for _, c := range m.constraints {
		parts = append(parts, c.String())
	}
	if m.conjunctive {
		return "[" + strings.Join(parts, " ") + "]"
	}
	return "[" + strings.Join(parts, " || ") + "]"
}

func (m *Multi) Matches(other Constraint) bool {
	if other == nil {
		return true
	}
	if _, ok := other.(MatchNone); ok {
		return false
	}
	if !boundsOverlap(m, other) {
		return false
	}
	if !m.conjunctive {
		for _, c := range m.constraints {
			if other.Matches(c) {
				return true
			}
		}
		return false
	}
	if om, ok := other.(*Multi); ok && !om.conjunctive {
		return om.Matches(m)
	}
	for _, c := range m.constraints {
		if !other.Matches(c) {
			return false
		}
	}
	return true
}

// MatchAll is the "*" constraint.
type MatchAll struct{}

func (MatchAll) Matches(other Constraint) bool {
	_, none := other.(MatchNone)
	return !none
}
func (MatchAll) LowerBound() Bound { return zeroBound }
func (MatchAll) UpperBound() Bound { return infinityBound }
func (MatchAll) String() string    { return "*" }

// MatchNone never matches, not even itself.
type MatchNone struct{}

func (MatchNone) Matches(Constraint) bool { return false }
func (MatchNone) LowerBound() Bound       { return infinityBound }
func (MatchNone) UpperBound() Bound       { return zeroBound }
func (MatchNone) String() string          { return "[]" }

// Satisfies reports whether version v is inside c.
func Satisfies(c Constraint, v Version) bool {
	return c.Matches(Exactly(v))
}
