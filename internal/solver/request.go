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

	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

// Requirement is a root requirement of a Request.
type Requirement struct {
	Name       string
	Constraint string
}

// Request is the goal of a solve: what must be installed, what is installed
// now (locked) and what must not change (fixed).
type Request struct {
	requires     []Requirement
	locked       []*pkg.Pkg
	fixed        []*pkg.Pkg
	ignored      []glob.Glob
	ignoredText  []string
	allowUpdate  map[string]bool
	keepUnneeded map[string]bool
}

// NewRequest returns an empty request.
func NewRequest() *Request {
	return &Request{
		allowUpdate:  map[string]bool{},
		keepUnneeded: map[string]bool{},
	}
}

// Require adds a root requirement. Requiring the same name again replaces
// the previous constraint.
func (r *Request) Require(name, constraint string) {
	for i, req := range r.requires {
		if strings.EqualFold(req.Name, name) {
			r.requires[i].Constraint = constraint
			return
		}
	}
	r.requires = append(r.requires, Requirement{Name: name, Constraint: constraint})
}

// Lock records p as currently installed.
func (r *Request) Lock(p *pkg.Pkg) {
	r.locked = append(r.locked, p)
}

// Fix records p as installed and frozen: it is kept and never changed.
func (r *Request) Fix(p *pkg.Pkg) {
	r.fixed = append(r.fixed, p)
}

// IgnorePlatformReqs makes requirements on platform packages matching any
// of the glob patterns be ignored. "*" ignores every platform requirement.
func (r *Request) IgnorePlatformReqs(patterns ...string) error {
	for _, pattern := range patterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return errors.Wrapf(err, "invalid platform requirement pattern %q", pattern)
		}
		r.ignored = append(r.ignored, g)
		r.ignoredText = append(r.ignoredText, pattern)
	}
	return nil
}

// IsIgnored reports whether a requirement on name is skipped.
func (r *Request) IsIgnored(name string) bool {
	if !pkg.IsPlatform(name) {
		return false
	}
	n := strings.ToLower(name)
	for _, g := range r.ignored {
		if g.Match(n) {
			return true
		}
	}
	return false
}

// UpdateAllowList restricts updates to the named packages: other locked
// packages stay at their locked version whenever that is still possible.
// Without an allow list every package may be updated.
func (r *Request) UpdateAllowList(names ...string) {
	for _, n := range names {
		r.allowUpdate[strings.ToLower(n)] = true
	}
}

// UpdateAllowed reports whether the locked package name may change version.
func (r *Request) UpdateAllowed(name string) bool {
	return len(r.allowUpdate) == 0 || r.allowUpdate[strings.ToLower(name)]
}

// KeepUnneeded makes the named locked packages be marked as unneeded
// instead of uninstalled when the solution drops them.
func (r *Request) KeepUnneeded(names ...string) {
	for _, n := range names {
		r.keepUnneeded[strings.ToLower(n)] = true
	}
}

// Requires returns the root requirements in the order they were added.
func (r *Request) Requires() []Requirement {
	return r.requires
}

// Locked returns the locked packages.
func (r *Request) Locked() []*pkg.Pkg {
	return r.locked
}

// Fixed returns the fixed packages.
func (r *Request) Fixed() []*pkg.Pkg {
	return r.fixed
}

// IsFixed reports whether a package named name is fixed.
func (r *Request) IsFixed(name string) bool {
	for _, p := range r.fixed {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *Request) lockedByName() map[string]*pkg.Pkg {
	byName := make(map[string]*pkg.Pkg, len(r.locked))
	for _, p := range r.locked {
		byName[strings.ToLower(p.Name)] = p
	}
	return byName
}
