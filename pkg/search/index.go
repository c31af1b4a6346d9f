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

package search

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	pkg "github.com/rancher-sandbox/depsolver/internal/package"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

const (
	sep    = "\v"
	verSep = "$$"
)

// Result is a search result.
//
// Score indicates how close it is to match. The higher the score, the longer
// the distance.
type Result struct {
	Name       string
	Repository string
	Score      int
	Package    *repo.PackageVersion
}

// Index is a searchable index of package versions.
type Index struct {
	lines    map[string]string
	packages map[string]*repo.PackageVersion
	repos    map[string]string
}

// NewIndex creats a new Index.
func NewIndex() *Index {
	return &Index{
		lines:    map[string]string{},
		packages: map[string]*repo.PackageVersion{},
		repos:    map[string]string{},
	}
}

// AddRepo adds a repository index to the search index. With all, every
// version is added, otherwise only the newest one of each package.
func (i *Index) AddRepo(rname string, ind *repo.IndexFile, all bool) {
	ind.SortEntries()
	for name, ref := range ind.Entries {
		if len(ref) == 0 {
			// Skip packages that have zero versions.
			continue
		}
		key := path.Join(rname, name)
		if !all {
			i.add(key, rname, ref[0])
			continue
		}
		for _, pv := range ref {
			i.add(key+verSep+pv.Version, rname, pv)
		}
	}
}

func (i *Index) add(key, rname string, pv *repo.PackageVersion) {
	i.lines[key] = indstr(rname, pv)
	i.packages[key] = pv
	i.repos[key] = rname
}

// All returns all packages in the index as if they were search results.
//
// Each will be given a score of 0.
func (i *Index) All() []*Result {
	res := make([]*Result, 0, len(i.packages))
	for key := range i.packages {
		res = append(res, i.result(key, 0))
	}
	return res
}

// Search searches an index for the given term.
//
// Threshold indicates the maximum score a term may have before being marked
// irrelevant. (Low score means higher relevance. Golf, not bowling.)
//
// If regexp is true, the term is treated as a regular expression. Otherwise,
// term is treated as a literal string.
func (i *Index) Search(term string, threshold int, regexp bool) ([]*Result, error) {
	if regexp {
		return i.SearchRegexp(term, threshold)
	}
	return i.SearchLiteral(term, threshold), nil
}

// calcScore calculates a score for a match: the number of fields of the
// index line before the match.
func (i *Index) calcScore(index int, matchline string) int {
	splits := []int{}
	s := rune(sep[0])
	for i, ch := range matchline {
		if ch == s {
			splits = append(splits, i)
		}
	}

	for i, pos := range splits {
		if index > pos {
			continue
		}
		return i
	}
	return len(splits)
}

// SearchLiteral does a literal string search (no regexp).
func (i *Index) SearchLiteral(term string, threshold int) []*Result {
	term = strings.ToLower(term)
	buf := []*Result{}
	for k, v := range i.lines {
		lv := strings.ToLower(v)
		res := strings.Index(lv, term)
		if score := i.calcScore(res, lv); res != -1 && score < threshold {
			buf = append(buf, i.result(k, score))
		}
	}
	return buf
}

// SearchRegexp searches using a regular expression.
func (i *Index) SearchRegexp(re string, threshold int) ([]*Result, error) {
	matcher, err := regexp.Compile(re)
	if err != nil {
		return []*Result{}, errors.Wrapf(err, "invalid search expression %q", re)
	}
	buf := []*Result{}
	for k, v := range i.lines {
		ind := matcher.FindStringIndex(v)
		if len(ind) == 0 {
			continue
		}
		if score := i.calcScore(ind[0], v); ind[0] >= 0 && score < threshold {
			buf = append(buf, i.result(k, score))
		}
	}
	return buf, nil
}

func (i *Index) result(key string, score int) *Result {
	pv := i.packages[key]
	return &Result{Name: pv.Name, Repository: i.repos[key], Score: score, Package: pv}
}

// SortScore does an in-place sort of the results: lowest score first, then
// by name, then newest version first.
func SortScore(r []*Result) {
	sort.SliceStable(r, func(a, b int) bool {
		first, second := r[a], r[b]
		if first.Score != second.Score {
			return first.Score < second.Score
		}
		if first.Name != second.Name {
			return first.Name < second.Name
		}
		if first.Repository != second.Repository {
			return first.Repository < second.Repository
		}
		v1, err1 := constraint.ParseVersion(first.Package.Version)
		v2, err2 := constraint.ParseVersion(second.Package.Version)
		if err1 != nil || err2 != nil {
			return first.Package.Version > second.Package.Version
		}
		return constraint.Compare(v1, v2) > 0
	})
}

// indstr is the searchable line of a package version: its name first, then
// the names it provides and replaces.
func indstr(rname string, pv *repo.PackageVersion) string {
	return pv.Name + sep + rname + "/" + pv.Name + sep +
		strings.Join(pkg.SortedNames(pv.Provide), " ") + sep +
		strings.Join(pkg.SortedNames(pv.Replace), " ")
}
