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
	"strings"

	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

// RuleGenerator turns a Request into clauses by walking the requirement
// graph reachable from it. Each package is expanded at most once.
type RuleGenerator struct {
	pool     *Pool
	request  *Request
	rules    *RuleSet
	visited  []bool
	queue    []PackageID
	sameName map[string]bool
}

// NewRuleGenerator returns a generator over pool.
func NewRuleGenerator(pool *Pool) *RuleGenerator {
	return &RuleGenerator{pool: pool}
}

// Generate builds the rules for request. The returned set is new on every
// call.
func (g *RuleGenerator) Generate(request *Request) *RuleSet {
	g.request = request
	g.rules = NewRuleSet()
	g.visited = make([]bool, g.pool.Len()+1)
	g.queue = nil
	g.sameName = make(map[string]bool)

	for _, p := range request.Fixed() {
		id, ok := g.pool.FindPackage(p.Name, p.Version)
		if !ok {
			continue
		}
		g.rules.Add(&Rule{
			Type:       RuleFixed,
			Literals:   []Literal{NewLiteral(id, true)},
			Source:     id,
			Target:     p.Name,
			Constraint: p.Version,
		})
		g.enqueue(id)
	}

	for _, req := range request.Requires() {
		if request.IsIgnored(req.Name) {
			continue
		}
		providers := g.pool.WhatProvides(req.Name, req.Constraint)
		literals := make([]Literal, 0, len(providers))
		for _, id := range providers {
			literals = append(literals, NewLiteral(id, true))
		}
		// no providers gives an empty rule, which can never be satisfied
		g.rules.Add(&Rule{
			Type:       RuleRootRequire,
			Literals:   literals,
			Target:     req.Name,
			Constraint: req.Constraint,
		})
		for _, id := range providers {
			g.expand(id)
		}
	}

	for len(g.queue) > 0 {
		id := g.queue[0]
		g.queue = g.queue[1:]
		g.addPackageRules(id)
	}

	g.addReplaceConflicts()
	return g.rules
}

// expand schedules id, treating platform packages as leaves.
func (g *RuleGenerator) expand(id PackageID) {
	p := g.pool.Package(id)
	if pkg.IsPlatform(p.Name) {
		g.addSameNameRules(p.Name)
		return
	}
	g.enqueue(id)
}

func (g *RuleGenerator) enqueue(id PackageID) {
	if g.visited[id] {
		return
	}
	g.visited[id] = true
	g.queue = append(g.queue, id)
}

func (g *RuleGenerator) addPackageRules(id PackageID) {
	p := g.pool.Package(id)

	if g.pool.IsAlias(id) {
		base := g.pool.AliasBase(id)
		g.rules.Add(&Rule{
			Type:       RulePackageAlias,
			Literals:   []Literal{NewLiteral(id, false), NewLiteral(base, true)},
			Source:     id,
			Target:     p.Name,
			Constraint: p.AliasOf,
		})
		g.enqueue(base)
	}

	g.addSameNameRules(p.Name)

	for _, name := range pkg.SortedNames(p.Require) {
		if strings.HasPrefix(name, "lib-") || g.request.IsIgnored(name) {
			continue
		}
		text := p.Require[name]
		providers := g.pool.WhatProvides(name, text)
		if containsID(providers, id) {
			continue
		}
		literals := make([]Literal, 0, len(providers)+1)
		literals = append(literals, NewLiteral(id, false))
		for _, prov := range providers {
			literals = append(literals, NewLiteral(prov, true))
		}
		// without providers this is the unit rule "id cannot be installed"
		g.rules.Add(&Rule{
			Type:       RulePackageRequires,
			Literals:   literals,
			Source:     id,
			Target:     name,
			Constraint: text,
		})
		for _, prov := range providers {
			g.expand(prov)
		}
	}

	for _, name := range pkg.SortedNames(p.Conflict) {
		text := p.Conflict[name]
		for _, other := range g.pool.WhatProvides(name, text) {
			if g.pool.AliasBase(other) == g.pool.AliasBase(id) {
				continue
			}
			g.rules.Add(&Rule{
				Type:       RulePackageConflict,
				Literals:   []Literal{NewLiteral(id, false), NewLiteral(other, false)},
				Source:     id,
				Target:     name,
				Constraint: text,
			})
		}
	}
}

// addSameNameRules forbids installing two versions of name, once per name.
// An alias and its base are exempt from each other.
func (g *RuleGenerator) addSameNameRules(name string) {
	key := strings.ToLower(name)
	if g.sameName[key] {
		return
	}
	g.sameName[key] = true

	ids := g.pool.PackagesByName(key)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if g.pool.AliasBase(ids[i]) == g.pool.AliasBase(ids[j]) {
				continue
			}
			g.rules.Add(&Rule{
				Type:     RulePackageSameName,
				Literals: []Literal{NewLiteral(ids[i], false), NewLiteral(ids[j], false)},
				Source:   ids[i],
				Target:   name,
			})
		}
	}
}

// addReplaceConflicts makes every expanded replacer conflict with the
// packages it replaces.
func (g *RuleGenerator) addReplaceConflicts() {
	for i := 1; i < len(g.visited); i++ {
		if !g.visited[i] {
			continue
		}
		id := PackageID(i)
		p := g.pool.Package(id)
		for _, name := range pkg.SortedNames(p.Replace) {
			for _, replaced := range g.pool.PackagesByName(name) {
				if g.pool.AliasBase(replaced) == g.pool.AliasBase(id) || !g.pool.Replaces(id, name, replaced) {
					continue
				}
				g.rules.Add(&Rule{
					Type:       RulePackageConflict,
					Literals:   []Literal{NewLiteral(id, false), NewLiteral(replaced, false)},
					Source:     id,
					Target:     name,
					Constraint: p.Replace[name],
					Replaces:   true,
				})
			}
		}
	}
}

func containsID(ids []PackageID, id PackageID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
