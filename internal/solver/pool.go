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
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

var (
	// ErrAliasBaseMissing is returned when an alias is added before the
	// package it aliases.
	ErrAliasBaseMissing = errors.New("aliased package not found in pool")
	// ErrInvalidConstraint is returned by strict pools for unparsable
	// relation constraints.
	ErrInvalidConstraint = constraint.ErrInvalidConstraint
)

// PackageID identifies one entry of a Pool. IDs start at 1, as SAT literals
// cannot be 0.
type PackageID int

// EntryKind tells real packages and aliases apart.
type EntryKind int

const (
	EntryPackage EntryKind = iota
	EntryAlias
)

// Entry is one candidate of the pool. For aliases, Package is the alias view
// (same name and relations, alias version) and Base the aliased entry.
type Entry struct {
	Kind    EntryKind
	Package *pkg.Pkg
	Base    PackageID
}

// Pool implements a database of 2 keys (ID, fingerprint) and 1 value
// (*pkg.Pkg), plus indexes by name and by provided/replaced name.
//
// A Pool is created by a PoolBuilder and is read-only afterwards, so it can
// be shared by concurrent solves. Only its internal match caches change,
// under a lock.
type Pool struct {
	entries       []Entry // index 0 unused
	byName        map[string][]PackageID
	byFingerprint map[string]PackageID
	// provide/replace target name -> declaring ids
	providers  map[string][]PackageID
	priorities map[string]int
	strict     bool

	mu          sync.RWMutex
	constraints map[string]parsedConstraint
	matches     map[matchKey]bool
}

type parsedConstraint struct {
	c   constraint.Constraint
	err error
}

type matchKey struct {
	id         PackageID
	target     string
	constraint string
}

// PoolBuilder is the mutable side of a Pool. Packages and aliases are added
// to it, and Build freezes the result.
type PoolBuilder struct {
	pool *Pool
}

// NewPoolBuilder returns an empty builder.
func NewPoolBuilder() *PoolBuilder {
	return &PoolBuilder{
		pool: &Pool{
			entries:       []Entry{{}},
			byName:        make(map[string][]PackageID),
			byFingerprint: make(map[string]PackageID),
			providers:     make(map[string][]PackageID),
			priorities:    make(map[string]int),
			constraints:   make(map[string]parsedConstraint),
			matches:       make(map[matchKey]bool),
		},
	}
}

func (b *PoolBuilder) mustPool() *Pool {
	if b.pool == nil {
		panic("solver: PoolBuilder used after Build")
	}
	return b.pool
}

// Strict makes unparsable constraints match nothing instead of everything,
// and Build fail on them.
func (b *PoolBuilder) Strict(strict bool) *PoolBuilder {
	b.mustPool().strict = strict
	return b
}

// SetPriority sets the priority of a repository. Lower values are preferred;
// repositories without a priority have 0.
func (b *PoolBuilder) SetPriority(repo string, priority int) {
	b.mustPool().priorities[repo] = priority
}

// AddPackage adds p to the pool and returns its ID. The pool takes
// ownership of p.
func (b *PoolBuilder) AddPackage(p *pkg.Pkg) PackageID {
	return b.add(Entry{Kind: EntryPackage, Package: p})
}

// AddPackageFromRepo adds p recording the repository it was loaded from.
func (b *PoolBuilder) AddPackageFromRepo(p *pkg.Pkg, repo string) PackageID {
	p.Repository = repo
	return b.AddPackage(p)
}

// AddAlias adds an alias of the already added package name@version,
// advertised as aliasVersion.
func (b *PoolBuilder) AddAlias(name, version, aliasVersion string) (PackageID, error) {
	pool := b.mustPool()
	base, ok := pool.FindPackage(name, version)
	if !ok || pool.entries[base].Kind == EntryAlias {
		return 0, errors.Wrapf(ErrAliasBaseMissing, "%s %s (alias %s)", name, version, aliasVersion)
	}
	alias := pool.entries[base].Package.Alias(aliasVersion)
	return b.add(Entry{Kind: EntryAlias, Package: alias, Base: base}), nil
}

func (b *PoolBuilder) add(e Entry) PackageID {
	pool := b.mustPool()
	p := e.Package
	p.Require = lowerKeys(p.Require)
	p.Conflict = lowerKeys(p.Conflict)
	p.Provide = lowerKeys(p.Provide)
	p.Replace = lowerKeys(p.Replace)
	p.Freeze()

	id := PackageID(len(pool.entries))
	pool.entries = append(pool.entries, e)

	name := strings.ToLower(p.Name)
	pool.byName[name] = append(pool.byName[name], id)
	if e.Kind == EntryPackage {
		if _, ok := pool.byFingerprint[p.GetFingerPrint()]; !ok {
			pool.byFingerprint[p.GetFingerPrint()] = id
		}
	}

	targets := pkg.SortedNames(p.Provide)
	for _, target := range pkg.SortedNames(p.Replace) {
		if _, dup := p.Provide[target]; !dup {
			targets = append(targets, target)
		}
	}
	sort.Strings(targets)
	for _, target := range targets {
		if target == name {
			continue
		}
		pool.providers[target] = append(pool.providers[target], id)
	}
	return id
}

// Build freezes the pool. The builder must not be used afterwards. Strict
// pools refuse packages carrying unparsable relation constraints.
func (b *PoolBuilder) Build() (*Pool, error) {
	pool := b.mustPool()
	b.pool = nil
	if pool.strict {
		for id := 1; id < len(pool.entries); id++ {
			if err := pool.validate(PackageID(id)); err != nil {
				return nil, err
			}
		}
	}
	return pool, nil
}

func (pool *Pool) validate(id PackageID) error {
	p := pool.entries[id].Package
	for _, rel := range []map[string]string{p.Require, p.Conflict, p.Provide, p.Replace} {
		for _, target := range pkg.SortedNames(rel) {
			if _, err := constraint.ParseConstraints(pool.expandSelfVersion(p, rel[target])); err != nil {
				return errors.Wrapf(err, "%s, relation to %s", p, target)
			}
		}
	}
	return nil
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Len returns the number of entries. Valid IDs are 1..Len().
func (pool *Pool) Len() int {
	return len(pool.entries) - 1
}

// IDs returns every valid ID in insertion order.
func (pool *Pool) IDs() []PackageID {
	ids := make([]PackageID, 0, pool.Len())
	for id := 1; id < len(pool.entries); id++ {
		ids = append(ids, PackageID(id))
	}
	return ids
}

// Valid reports whether id names an entry.
func (pool *Pool) Valid(id PackageID) bool {
	return id > 0 && int(id) < len(pool.entries)
}

// Entry returns the entry for id. It panics for invalid IDs.
func (pool *Pool) Entry(id PackageID) Entry {
	if !pool.Valid(id) {
		panic(errors.Errorf("solver: invalid package id %d", id))
	}
	return pool.entries[id]
}

// Package returns the package for id, or nil for invalid IDs.
func (pool *Pool) Package(id PackageID) *pkg.Pkg {
	if !pool.Valid(id) {
		return nil
	}
	return pool.entries[id].Package
}

// IsAlias reports whether id is an alias entry.
func (pool *Pool) IsAlias(id PackageID) bool {
	return pool.Valid(id) && pool.entries[id].Kind == EntryAlias
}

// AliasBase returns the aliased entry of an alias, or id itself.
func (pool *Pool) AliasBase(id PackageID) PackageID {
	if pool.IsAlias(id) {
		return pool.entries[id].Base
	}
	return id
}

// Repository returns the repository name id was loaded from.
func (pool *Pool) Repository(id PackageID) string {
	if p := pool.Package(id); p != nil {
		return p.Repository
	}
	return ""
}

// Priority returns the priority of the repository of id.
func (pool *Pool) Priority(id PackageID) int {
	return pool.priorities[pool.Repository(id)]
}

// FindPackage returns the first real package added as name@version.
func (pool *Pool) FindPackage(name, version string) (PackageID, bool) {
	if id, ok := pool.byFingerprint[pkg.CreateFingerPrint(name, version)]; ok {
		return id, true
	}
	v, err := constraint.ParseVersion(version)
	if err != nil {
		return 0, false
	}
	for _, id := range pool.byName[strings.ToLower(name)] {
		e := pool.entries[id]
		if e.Kind == EntryPackage && constraint.Equal(e.Package.ParsedVersion(), v) {
			return id, true
		}
	}
	return 0, false
}

// PackagesByName returns the IDs of every entry named name, aliases
// included, in insertion order. The slice must not be modified.
func (pool *Pool) PackagesByName(name string) []PackageID {
	return pool.byName[strings.ToLower(name)]
}

// WhatProvides returns the candidates for a requirement on name: packages
// called name whose version is in constraintText, and packages providing or
// replacing name with a declared version that intersects it. An empty
// constraint matches everything. IDs are returned in insertion order.
func (pool *Pool) WhatProvides(name, constraintText string) []PackageID {
	target := strings.ToLower(name)
	c, _ := pool.Constraint(constraintText)

	var ids []PackageID
	for _, id := range pool.byName[target] {
		if pool.cachedMatch(matchKey{id: id, constraint: constraintText}, func() bool {
			return constraint.Satisfies(c, pool.entries[id].Package.ParsedVersion())
		}) {
			ids = append(ids, id)
		}
	}
	direct := len(ids)
	for _, id := range pool.providers[target] {
		if pool.cachedMatch(matchKey{id: id, target: target, constraint: constraintText}, func() bool {
			return pool.providesMatch(id, target, c)
		}) {
			ids = append(ids, id)
		}
	}
	if direct > 0 && len(ids) > direct {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return ids
}

func (pool *Pool) providesMatch(id PackageID, target string, c constraint.Constraint) bool {
	p := pool.entries[id].Package
	for _, rel := range []map[string]string{p.Provide, p.Replace} {
		text, ok := rel[target]
		if !ok {
			continue
		}
		provided, _ := pool.Constraint(pool.expandSelfVersion(p, text))
		if provided.Matches(c) {
			return true
		}
	}
	return false
}

// Replaces reports whether id declares a replace of name matching the
// version of candidate.
func (pool *Pool) Replaces(id PackageID, name string, candidate PackageID) bool {
	p := pool.Package(id)
	text, ok := p.Replace[strings.ToLower(name)]
	if !ok {
		return false
	}
	replaced, _ := pool.Constraint(pool.expandSelfVersion(p, text))
	return constraint.Satisfies(replaced, pool.entries[candidate].Package.ParsedVersion())
}

func (pool *Pool) expandSelfVersion(p *pkg.Pkg, text string) string {
	if strings.TrimSpace(text) == "self.version" {
		return p.Version
	}
	return text
}

func (pool *Pool) cachedMatch(key matchKey, match func() bool) bool {
	pool.mu.RLock()
	ok, found := pool.matches[key]
	pool.mu.RUnlock()
	if found {
		return ok
	}
	ok = match()
	pool.mu.Lock()
	pool.matches[key] = ok
	pool.mu.Unlock()
	return ok
}

// Constraint parses constraint text once per pool. Unparsable text matches
// everything, or nothing for strict pools; the parse error is returned
// alongside that fallback.
func (pool *Pool) Constraint(text string) (constraint.Constraint, error) {
	pool.mu.RLock()
	parsed, found := pool.constraints[text]
	pool.mu.RUnlock()
	if found {
		return parsed.c, parsed.err
	}

	c, err := constraint.ParseConstraints(text)
	if err != nil {
		if pool.strict {
			c = constraint.MatchNone{}
		} else {
			log.Warnf("ignoring unparsable constraint %q: %s", text, err)
			c = constraint.MatchAll{}
		}
	}
	pool.mu.Lock()
	pool.constraints[text] = parsedConstraint{c: c, err: err}
	pool.mu.Unlock()
	return c, err
}

// DebugPrint writes every entry of the pool to logger.
func (pool *Pool) DebugPrint(logger log.Logger) {
	logger.Debugf("Printing pool (%d entries)", pool.Len())
	for id := 1; id < len(pool.entries); id++ {
		logger.Debugf("%d: %s", id, pool.entries[id].Package)
	}
}
