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

package repo

import (
	"sort"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"

	"github.com/rancher-sandbox/depsolver/internal/solver"
)

// Populate loads the index of every repository in f and adds its packages to
// b under the repository name, with the repository priority. Aliases are
// added right after their base version.
func Populate(b *solver.PoolBuilder, f *File, logger log.Logger) error {
	if logger == nil {
		logger = log.Current
	}
	for _, e := range f.Sorted() {
		index, err := LoadIndexFile(e.Path)
		if err != nil {
			return errors.Wrapf(err, "cannot load repository %q", e.Name)
		}
		b.SetPriority(e.Name, e.Priority)
		n, err := AddIndex(b, e.Name, index)
		if err != nil {
			return errors.Wrapf(err, "cannot add repository %q", e.Name)
		}
		logger.Debugf("repository %s: %d packages from %s", e.Name, n, e.Path)
	}
	return nil
}

// AddIndex adds the packages of index to b as coming from repo, and returns
// how many pool entries were added.
func AddIndex(b *solver.PoolBuilder, repo string, index *IndexFile) (int, error) {
	n := 0
	for _, name := range sortedEntryNames(index) {
		for _, pv := range index.Entries[name] {
			b.AddPackageFromRepo(pv.Pkg(repo), repo)
			n++
			for _, alias := range pv.Aliases {
				if _, err := b.AddAlias(pv.Name, pv.Version, alias); err != nil {
					return n, err
				}
				n++
			}
		}
	}
	return n, nil
}

func sortedEntryNames(index *IndexFile) []string {
	names := maps.Keys(index.Entries)
	sort.Strings(names)
	return names
}
