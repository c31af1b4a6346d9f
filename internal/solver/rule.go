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
	"strings"
)

// Literal is a signed package ID: positive means "install", negative means
// "do not install".
type Literal int

// NewLiteral returns the literal for installing (or not) id.
func NewLiteral(id PackageID, install bool) Literal {
	if install {
		return Literal(id)
	}
	return Literal(-id)
}

// ID returns the package the literal is about.
func (l Literal) ID() PackageID {
	if l < 0 {
		return PackageID(-l)
	}
	return PackageID(l)
}

// Positive reports whether l asks for an install.
func (l Literal) Positive() bool {
	return l > 0
}

// Negate returns the opposite literal.
func (l Literal) Negate() Literal {
	return -l
}

// RuleType records why a rule was generated.
type RuleType int

const (
	RuleRootRequire RuleType = iota
	RulePackageRequires
	RulePackageConflict
	RulePackageSameName
	RuleFixed
	RuleLearned
	RulePackageAlias
)

func (t RuleType) String() string {
	switch t {
	case RuleRootRequire:
		return "root-require"
	case RulePackageRequires:
		return "package-requires"
	case RulePackageConflict:
		return "package-conflict"
	case RulePackageSameName:
		return "package-same-name"
	case RuleFixed:
		return "fixed"
	case RuleLearned:
		return "learned"
	case RulePackageAlias:
		return "package-alias"
	}
	return fmt.Sprintf("RuleType(%d)", int(t))
}

// Rule is a clause: at least one of its literals must hold. An empty rule
// can never be satisfied. Source, Target and Constraint are provenance for
// diagnostics.
type Rule struct {
	ID         int
	Literals   []Literal
	Type       RuleType
	Source     PackageID // 0 when the rule comes from the request
	Target     string
	Constraint string
	// Replaces marks conflicts derived from a replace declaration.
	Replaces bool
}

// NewRule builds a rule of type t over literals.
func NewRule(t RuleType, literals ...Literal) *Rule {
	return &Rule{Type: t, Literals: literals}
}

// IsAssertion reports whether the rule has a single literal.
func (r *Rule) IsAssertion() bool {
	return len(r.Literals) == 1
}

func (r *Rule) String() string {
	parts := make([]string, 0, len(r.Literals))
	for _, l := range r.Literals {
		parts = append(parts, fmt.Sprintf("%d", l))
	}
	return fmt.Sprintf("#%d %s (%s)", r.ID, r.Type, strings.Join(parts, " | "))
}

// Pretty renders the rule with package names instead of IDs.
func (r *Rule) Pretty(pool *Pool) string {
	parts := make([]string, 0, len(r.Literals))
	for _, l := range r.Literals {
		prefix := ""
		if !l.Positive() {
			prefix = "-"
		}
		parts = append(parts, prefix+pool.Package(l.ID()).String())
	}
	return fmt.Sprintf("%s (%s)", r.Type, strings.Join(parts, " | "))
}
