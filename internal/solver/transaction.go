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

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

// OperationType is the kind of change an Operation makes.
type OperationType int

const (
	Install OperationType = iota
	Update
	Uninstall
	// MarkUnneeded is advisory: the package is no longer required but is
	// kept in place.
	MarkUnneeded
)

func (t OperationType) String() string {
	switch t {
	case Install:
		return "install"
	case Update:
		return "update"
	case Uninstall:
		return "uninstall"
	case MarkUnneeded:
		return "mark-unneeded"
	}
	return fmt.Sprintf("OperationType(%d)", int(t))
}

// Operation is one step of a Transaction. From is only set for updates.
type Operation struct {
	Type    OperationType
	Package *pkg.Pkg
	From    *pkg.Pkg
}

func (o Operation) String() string {
	switch o.Type {
	case Update:
		return fmt.Sprintf("update %s (%s => %s)", o.Package.Name, o.From.Version, o.Package.Version)
	default:
		return fmt.Sprintf("%s %s", o.Type, o.Package)
	}
}

// Transaction is the ordered list of operations turning the locked state
// of a Request into a solution. It is never modified once built.
type Transaction struct {
	operations []Operation
	packages   []*pkg.Pkg
	roots      []*pkg.Pkg
	deps       map[string][]*pkg.Pkg
}

func newTransaction(pool *Pool, request *Request, rules *RuleSet, installed []PackageID) *Transaction {
	t := &Transaction{deps: map[string][]*pkg.Pkg{}}

	inSolution := make(map[PackageID]bool, len(installed))
	for _, id := range installed {
		inSolution[id] = true
		t.packages = append(t.packages, pool.Package(id))
	}
	sortPackages(t.packages)

	// dependency edges between installed packages, by lowercased name
	edges := map[PackageID]map[PackageID]bool{}
	rootSet := map[PackageID]bool{}
	for _, r := range rules.Rules() {
		switch r.Type {
		case RulePackageRequires:
			src := pool.AliasBase(r.Source)
			if !inSolution[src] {
				continue
			}
			for _, l := range r.Literals {
				dep := pool.AliasBase(l.ID())
				if !l.Positive() || !inSolution[dep] || dep == src {
					continue
				}
				if edges[src] == nil {
					edges[src] = map[PackageID]bool{}
				}
				edges[src][dep] = true
			}
		case RuleRootRequire, RuleFixed:
			for _, l := range r.Literals {
				if id := pool.AliasBase(l.ID()); l.Positive() && inSolution[id] {
					rootSet[id] = true
				}
			}
		}
	}
	for src, deps := range edges {
		name := strings.ToLower(pool.Package(src).Name)
		for dep := range deps {
			t.deps[name] = append(t.deps[name], pool.Package(dep))
		}
		sortPackages(t.deps[name])
	}
	for id := range rootSet {
		t.roots = append(t.roots, pool.Package(id))
	}
	sortPackages(t.roots)

	locked := request.lockedByName()
	solvedByName := map[string]*pkg.Pkg{}
	for _, p := range t.packages {
		solvedByName[strings.ToLower(p.Name)] = p
	}

	// removals first, dependents before their dependencies
	var removed, unneeded []*pkg.Pkg
	for name, p := range locked {
		if request.IsFixed(name) || pkg.IsPlatform(name) {
			continue
		}
		if _, ok := solvedByName[name]; ok {
			continue
		}
		if request.keepUnneeded[name] {
			unneeded = append(unneeded, p)
		} else {
			removed = append(removed, p)
		}
	}
	removedOrder := dependencyOrder(removed, func(p *pkg.Pkg) []*pkg.Pkg {
		var deps []*pkg.Pkg
		for _, name := range pkg.SortedNames(p.Require) {
			for _, r := range removed {
				if strings.EqualFold(r.Name, name) {
					deps = append(deps, r)
				}
			}
		}
		return deps
	})
	for i := len(removedOrder) - 1; i >= 0; i-- {
		t.operations = append(t.operations, Operation{Type: Uninstall, Package: removedOrder[i]})
	}
	sortPackages(unneeded)
	for _, p := range unneeded {
		t.operations = append(t.operations, Operation{Type: MarkUnneeded, Package: p})
	}

	// installs and updates, requirements first
	ordered := dependencyOrder(t.packages, func(p *pkg.Pkg) []*pkg.Pkg {
		return t.deps[strings.ToLower(p.Name)]
	})
	for _, p := range ordered {
		name := strings.ToLower(p.Name)
		if request.IsFixed(name) || pkg.IsPlatform(name) {
			continue
		}
		from, ok := locked[name]
		switch {
		case !ok:
			t.operations = append(t.operations, Operation{Type: Install, Package: p})
		case !constraint.Equal(from.ParsedVersion(), p.ParsedVersion()):
			t.operations = append(t.operations, Operation{Type: Update, Package: p, From: from})
		}
	}
	return t
}

// dependencyOrder returns pkgs in depth first post-order: every package
// comes after the packages deps returns for it. Roots and dependencies
// are visited by name.
func dependencyOrder(pkgs []*pkg.Pkg, deps func(*pkg.Pkg) []*pkg.Pkg) []*pkg.Pkg {
	roots := append([]*pkg.Pkg(nil), pkgs...)
	sortPackages(roots)

	visited := map[*pkg.Pkg]bool{}
	ordered := make([]*pkg.Pkg, 0, len(pkgs))
	var visit func(p *pkg.Pkg)
	visit = func(p *pkg.Pkg) {
		if visited[p] {
			return
		}
		visited[p] = true
		children := append([]*pkg.Pkg(nil), deps(p)...)
		sortPackages(children)
		for _, c := range children {
			visit(c)
		}
		ordered = append(ordered, p)
	}
	for _, p := range roots {
		visit(p)
	}
	return ordered
}

func sortPackages(pkgs []*pkg.Pkg) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		return strings.ToLower(pkgs[i].Name) < strings.ToLower(pkgs[j].Name)
	})
}

// Operations returns every operation in execution order.
func (t *Transaction) Operations() []Operation {
	return t.operations
}

// IsEmpty reports whether the transaction changes nothing.
func (t *Transaction) IsEmpty() bool {
	return len(t.operations) == 0
}

// Installs returns the packages placed by Install and Update operations.
func (t *Transaction) Installs() []*pkg.Pkg {
	var pkgs []*pkg.Pkg
	for _, op := range t.operations {
		if op.Type == Install || op.Type == Update {
			pkgs = append(pkgs, op.Package)
		}
	}
	return pkgs
}

// NewInstalls returns the packages of Install operations.
func (t *Transaction) NewInstalls() []*pkg.Pkg {
	return t.ofType(Install)
}

// Updates returns the Update operations.
func (t *Transaction) Updates() []Operation {
	var ops []Operation
	for _, op := range t.operations {
		if op.Type == Update {
			ops = append(ops, op)
		}
	}
	return ops
}

// Removals returns the packages of Uninstall operations.
func (t *Transaction) Removals() []*pkg.Pkg {
	return t.ofType(Uninstall)
}

// Unneeded returns the packages of MarkUnneeded operations.
func (t *Transaction) Unneeded() []*pkg.Pkg {
	return t.ofType(MarkUnneeded)
}

func (t *Transaction) ofType(typ OperationType) []*pkg.Pkg {
	var pkgs []*pkg.Pkg
	for _, op := range t.operations {
		if op.Type == typ {
			pkgs = append(pkgs, op.Package)
		}
	}
	return pkgs
}

// Packages returns the whole solution, unchanged packages included,
// sorted by name.
func (t *Transaction) Packages() []*pkg.Pkg {
	return t.packages
}

// Roots returns the packages of the solution that the request asked for.
func (t *Transaction) Roots() []*pkg.Pkg {
	return t.roots
}

// Dependencies returns the packages of the solution that p was installed
// for, sorted by name.
func (t *Transaction) Dependencies(p *pkg.Pkg) []*pkg.Pkg {
	return t.deps[strings.ToLower(p.Name)]
}

// Why returns the shortest requirement chain from a root of the solution
// to the package called name, root first. It returns nil when name is not
// part of the solution.
func (t *Transaction) Why(name string) []*pkg.Pkg {
	type step struct {
		p      *pkg.Pkg
		parent *step
	}
	visited := map[*pkg.Pkg]bool{}
	var queue []*step
	for _, r := range t.roots {
		visited[r] = true
		queue = append(queue, &step{p: r})
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if strings.EqualFold(s.p.Name, name) {
			var chain []*pkg.Pkg
			for ; s != nil; s = s.parent {
				chain = append([]*pkg.Pkg{s.p}, chain...)
			}
			return chain
		}
		for _, d := range t.Dependencies(s.p) {
			if !visited[d] {
				visited[d] = true
				queue = append(queue, &step{p: d, parent: s})
			}
		}
	}
	return nil
}

func (t *Transaction) String() string {
	var sb strings.Builder
	for _, op := range t.operations {
		sb.WriteString(op.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
