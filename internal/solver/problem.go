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

	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

// maxListed caps the versions and reasons listed per line.
const maxListed = 3

// ProblemRule is a snapshot of a rule taking part in a problem. Package
// names and versions are resolved when the problem is created.
type ProblemRule struct {
	RuleID     int
	Type       RuleType
	Source     string // pretty source package, empty for request rules
	Target     string
	Constraint string
	Packages   []string // pretty package of each literal
	Replaces   bool

	literals []Literal
}

// Problem explains one reason why a request cannot be satisfied.
type Problem struct {
	Rules   []ProblemRule
	Message string
}

func newProblem(pool *Pool, rules []*Rule) *Problem {
	p := &Problem{}
	for _, r := range rules {
		p.AddRule(pool, r)
	}
	return p
}

// AddRule snapshots r into the problem.
func (p *Problem) AddRule(pool *Pool, r *Rule) {
	pr := ProblemRule{
		RuleID:     r.ID,
		Type:       r.Type,
		Target:     r.Target,
		Constraint: r.Constraint,
		Replaces:   r.Replaces,
		literals:   append([]Literal(nil), r.Literals...),
	}
	if src := pool.Package(r.Source); src != nil {
		pr.Source = src.String()
	}
	for _, l := range r.Literals {
		pr.Packages = append(pr.Packages, pool.Package(l.ID()).String())
	}
	p.Rules = append(p.Rules, pr)
}

// requirement names a dependency of one package.
type requirement struct {
	source, target string
}

// Describe renders the problem, one bullet per rule.
func (p *Problem) Describe(pool *Pool) string {
	// requirements with a bullet of their own are not repeated under the
	// root request
	covered := map[requirement]bool{}
	for _, r := range p.Rules {
		if r.Type == RulePackageRequires && len(r.Packages) <= 1 {
			covered[requirement{r.Source, r.Target}] = true
		}
	}

	var lines []string
	for _, r := range p.Rules {
		if line := describeRule(pool, r, covered); line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if p.Message != "" {
		return p.Message + "\n" + strings.Join(lines, "\n")
	}
	return strings.Join(lines, "\n")
}

func describeRule(pool *Pool, r ProblemRule, covered map[requirement]bool) string {
	constraintText := r.Constraint
	if constraintText == "" {
		constraintText = "*"
	}

	switch r.Type {
	case RuleRootRequire:
		if len(r.Packages) == 0 {
			versions := prettyVersions(pool, r.Target)
			if len(versions) == 0 {
				return fmt.Sprintf("Root request requires %s %s, but no matching package was found",
					r.Target, constraintText)
			}
			return fmt.Sprintf("Root request requires %s %s -> found %s[%s] but it does not match the constraint",
				r.Target, constraintText, r.Target, strings.Join(versions, ", "))
		}
		line := fmt.Sprintf("Root request requires %s %s -> satisfiable by %s",
			r.Target, constraintText, listed(r.Packages))
		if reasons := missingRequirements(pool, r.literals, covered); len(reasons) > 0 {
			line += ".\n    " + strings.Join(reasons, "\n    ")
		}
		return line

	case RuleFixed:
		return fmt.Sprintf("%s is fixed and cannot be changed", r.Source)

	case RulePackageRequires:
		if len(r.Packages) <= 1 {
			versions := prettyVersions(pool, r.Target)
			if len(versions) == 0 {
				return fmt.Sprintf("%s requires %s %s -> no matching package found",
					r.Source, r.Target, constraintText)
			}
			return fmt.Sprintf("%s requires %s %s -> found %s[%s] but it does not match the constraint",
				r.Source, r.Target, constraintText, r.Target, strings.Join(versions, ", "))
		}
		return fmt.Sprintf("%s requires %s %s -> satisfiable by %s",
			r.Source, r.Target, constraintText, listed(r.Packages[1:]))

	case RulePackageConflict:
		other := r.Target
		if len(r.Packages) > 1 {
			other = r.Packages[1]
		}
		if r.Replaces {
			return fmt.Sprintf("%s replaces %s and thus cannot coexist with it", r.Source, other)
		}
		return fmt.Sprintf("%s conflicts with %s", r.Source, other)

	case RulePackageSameName:
		return fmt.Sprintf("Only one version of %s can be installed: %s", r.Target, strings.Join(r.Packages, ", "))

	case RulePackageAlias:
		if len(r.Packages) > 1 {
			return fmt.Sprintf("%s is an alias and requires %s", r.Packages[0], r.Packages[1])
		}
		return "Package alias constraint"

	case RuleLearned:
		return "Learned constraint from conflict analysis"
	}
	return ""
}

// missingRequirements lists requirements of the candidates that nothing in
// the pool satisfies, leaving out the covered ones.
func missingRequirements(pool *Pool, candidates []Literal, covered map[requirement]bool) []string {
	var reasons []string
	seen := map[string]bool{}
	for _, l := range candidates {
		p := pool.Package(l.ID())
		if p == nil {
			continue
		}
		for _, name := range pkg.SortedNames(p.Require) {
			text := p.Require[name]
			if covered[requirement{p.String(), name}] || len(pool.WhatProvides(name, text)) > 0 {
				continue
			}
			var reason string
			versions := prettyVersions(pool, name)
			switch {
			case strings.HasPrefix(name, "ext-") && len(versions) == 0:
				reason = fmt.Sprintf("%s requires PHP extension %s %s -> it is missing from your system", p, name, text)
			case name == "php" && len(versions) > 0:
				reason = fmt.Sprintf("%s requires php %s -> your php version (%s) does not satisfy that requirement",
					p, text, versions[0])
			case len(versions) == 0:
				reason = fmt.Sprintf("%s requires %s %s -> no matching package found", p, name, text)
			default:
				reason = fmt.Sprintf("%s requires %s %s -> found %s[%s] but it does not match the constraint",
					p, name, text, name, strings.Join(versions, ", "))
			}
			if !seen[reason] {
				seen[reason] = true
				reasons = append(reasons, reason)
			}
		}
	}
	sort.Strings(reasons)
	if len(reasons) > maxListed {
		reasons = reasons[:maxListed]
	}
	return reasons
}

func prettyVersions(pool *Pool, name string) []string {
	var versions []string
	for _, id := range pool.PackagesByName(name) {
		versions = append(versions, pool.Package(id).Version)
		if len(versions) == maxListed {
			break
		}
	}
	return versions
}

func listed(items []string) string {
	if len(items) > maxListed {
		return strings.Join(items[:maxListed], ", ") + fmt.Sprintf(" and %d more", len(items)-maxListed)
	}
	return strings.Join(items, ", ")
}

// ProblemSet is the outcome of an unsatisfiable solve.
type ProblemSet struct {
	problems []*Problem
}

// NewProblemSet returns an empty set.
func NewProblemSet() *ProblemSet {
	return &ProblemSet{}
}

// Add appends a problem.
func (ps *ProblemSet) Add(p *Problem) {
	ps.problems = append(ps.problems, p)
}

// IsEmpty reports whether the set holds no problem.
func (ps *ProblemSet) IsEmpty() bool {
	return ps == nil || len(ps.problems) == 0
}

// Len returns the number of problems.
func (ps *ProblemSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.problems)
}

// Problems returns every problem.
func (ps *ProblemSet) Problems() []*Problem {
	if ps == nil {
		return nil
	}
	return ps.problems
}

// Describe renders every problem.
func (ps *ProblemSet) Describe(pool *Pool) string {
	if ps.IsEmpty() {
		return "No problems found"
	}
	descriptions := make([]string, 0, len(ps.problems))
	for i, p := range ps.problems {
		descriptions = append(descriptions, fmt.Sprintf("Problem %d:\n%s", i+1, p.Describe(pool)))
	}
	return strings.Join(descriptions, "\n\n")
}

func (ps *ProblemSet) String() string {
	return fmt.Sprintf("%d problem(s) found", ps.Len())
}

// SolverProblemsError carries a ProblemSet as an error.
type SolverProblemsError struct {
	Problems *ProblemSet
	Pool     *Pool
}

func (e *SolverProblemsError) Error() string {
	return "your requirements could not be resolved to an installable set of packages.\n\n" +
		e.Problems.Describe(e.Pool)
}
