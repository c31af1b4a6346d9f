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

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

// Policy decides which candidate the solver tries first. It only reads the
// pool, so one Policy can serve concurrent solves.
type Policy struct {
	preferStable bool
	preferLowest bool
}

// NewPolicy returns the default policy: stable and newest versions first.
func NewPolicy() *Policy {
	return &Policy{preferStable: true}
}

// PreferStable sets whether more stable versions win over newer ones.
func (p *Policy) PreferStable(prefer bool) *Policy {
	p.preferStable = prefer
	return p
}

// PreferLowest sets whether the lowest matching version wins.
func (p *Policy) PreferLowest(prefer bool) *Policy {
	p.preferLowest = prefer
	return p
}

// SelectPreferred orders candidates best first.
func (p *Policy) SelectPreferred(pool *Pool, candidates []PackageID) []PackageID {
	return p.SelectPreferredForRequirement(pool, candidates, "")
}

// SelectPreferredForRequirement orders candidates best first for a
// requirement declared by requiredPackage (may be empty). Within each name
// only the best versions are kept.
func (p *Policy) SelectPreferredForRequirement(pool *Pool, candidates []PackageID, requiredPackage string) []PackageID {
	if len(candidates) == 0 {
		return nil
	}

	groups := map[string][]PackageID{}
	var names []string
	for _, id := range candidates {
		name := strings.ToLower(pool.Package(id).Name)
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], id)
	}
	sort.Strings(names)

	result := make([]PackageID, 0, len(candidates))
	for _, name := range names {
		group := groups[name]
		sort.SliceStable(group, func(i, j int) bool {
			return p.compare(pool, group[i], group[j], requiredPackage, true) < 0
		})
		result = append(result, p.pruneToBestVersion(pool, group)...)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return p.compare(pool, result[i], result[j], requiredPackage, false) < 0
	})
	return result
}

// SelectBest returns the preferred candidate.
func (p *Policy) SelectBest(pool *Pool, candidates []PackageID) (PackageID, bool) {
	preferred := p.SelectPreferred(pool, candidates)
	if len(preferred) == 0 {
		return 0, false
	}
	return preferred[0], true
}

// compare returns a negative number when a should be tried before b.
func (p *Policy) compare(pool *Pool, a, b PackageID, requiredPackage string, ignoreReplace bool) int {
	pa, pb := pool.Package(a), pool.Package(b)

	if strings.EqualFold(pa.Name, pb.Name) {
		aAlias, bAlias := pool.IsAlias(a), pool.IsAlias(b)
		if aAlias && !bAlias {
			return -1
		}
		if !aAlias && bAlias {
			return 1
		}
	}

	if !ignoreReplace {
		if replacesName(pa, pb.Name) {
			return 1
		}
		if replacesName(pb, pa.Name) {
			return -1
		}
		if vendor := pkg.Vendor(requiredPackage); vendor != "" {
			aSame, bSame := pa.Vendor() == vendor, pb.Vendor() == vendor
			if aSame && !bSame {
				return -1
			}
			if !aSame && bSame {
				return 1
			}
		}
	}

	if c := p.versionCompare(pool, a, b); c != 0 {
		return c
	}
	return int(a) - int(b)
}

// versionCompare orders by repository priority, stability and version,
// best first.
func (p *Policy) versionCompare(pool *Pool, a, b PackageID) int {
	if pa, pb := pool.Priority(a), pool.Priority(b); pa != pb {
		return pa - pb
	}
	if p.preferStable {
		sa, sb := pool.Package(a).Stability(), pool.Package(b).Stability()
		if sa != sb {
			return int(sb) - int(sa)
		}
	}
	c := constraint.Compare(pool.Package(a).ParsedVersion(), pool.Package(b).ParsedVersion())
	if p.preferLowest {
		return c
	}
	return -c
}

// pruneToBestVersion keeps the candidates of a sorted same-name group that
// tie with the first one.
func (p *Policy) pruneToBestVersion(pool *Pool, group []PackageID) []PackageID {
	best := []PackageID{group[0]}
	for _, id := range group[1:] {
		switch c := p.versionCompare(pool, id, best[0]); {
		case c < 0:
			best = []PackageID{id}
		case c == 0:
			best = append(best, id)
		}
	}
	return best
}

func replacesName(p *pkg.Pkg, name string) bool {
	_, ok := p.Replace[strings.ToLower(name)]
	return ok
}
