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
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

// APIVersionV1 is the v1 API version for index and repository files.
const APIVersionV1 = "v1"

var (
	// ErrNoAPIVersion indicates that an API version was not specified.
	ErrNoAPIVersion = errors.New("no API version specified")

	// ErrNoPackageVersion indicates that a package with the given version is not found.
	ErrNoPackageVersion = errors.New("no package version found")
	// ErrNoPackageName indicates that a package with the given name is not found.
	ErrNoPackageName = errors.New("no package name found")
)

// PackageVersion is one published version of a package in an index.
type PackageVersion struct {
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	Require  map[string]string `json:"require,omitempty"`
	Conflict map[string]string `json:"conflict,omitempty"`
	Provide  map[string]string `json:"provide,omitempty"`
	Replace  map[string]string `json:"replace,omitempty"`
	// Aliases are extra versions this version is also known as, e.g.
	// "1.0.x-dev" for a development branch.
	Aliases []string `json:"aliases,omitempty"`
}

// Validate checks that the entry can be turned into a package.
func (pv *PackageVersion) Validate() error {
	if pv.Name == "" {
		return ErrNoPackageName
	}
	if pv.Version == "" {
		return ErrNoPackageVersion
	}
	if _, err := constraint.ParseVersion(pv.Version); err != nil {
		return errors.Wrapf(err, "invalid version %q", pv.Version)
	}
	for _, alias := range pv.Aliases {
		if _, err := constraint.ParseVersion(alias); err != nil {
			return errors.Wrapf(err, "invalid alias %q", alias)
		}
	}
	return nil
}

// Pkg returns the package record of pv, as loaded from repository repo.
func (pv *PackageVersion) Pkg(repo string) *pkg.Pkg {
	p := pkg.NewPkg(pv.Name, pv.Version, repo)
	for k, v := range pv.Require {
		p.Require[k] = v
	}
	for k, v := range pv.Conflict {
		p.Conflict[k] = v
	}
	for k, v := range pv.Provide {
		p.Provide[k] = v
	}
	for k, v := range pv.Replace {
		p.Replace[k] = v
	}
	return p
}

// PackageVersions is a list of versioned package references.
// Implements a sorter on Version.
type PackageVersions []*PackageVersion

// Len returns the length.
func (c PackageVersions) Len() int { return len(c) }

// Swap swaps the position of two items in the versions slice.
func (c PackageVersions) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less returns true if the version of entry a is less than the version of entry b.
func (c PackageVersions) Less(a, b int) bool {
	i, err := constraint.ParseVersion(c[a].Version)
	if err != nil {
		return true
	}
	j, err := constraint.ParseVersion(c[b].Version)
	if err != nil {
		return false
	}
	return constraint.Compare(i, j) < 0
}

// IndexFile represents the index file of a package repository.
type IndexFile struct {
	APIVersion  string                     `json:"apiVersion"`
	Entries     map[string]PackageVersions `json:"entries"`
	Annotations map[string]string          `json:"annotations,omitempty"`
}

// NewIndexFile initializes an index
func NewIndexFile() *IndexFile {
	return &IndexFile{
		APIVersion: APIVersionV1,
		Entries:    map[string]PackageVersions{},
	}
}

// LoadIndexFile takes a file at the given path and returns an IndexFile object
func LoadIndexFile(path string) (*IndexFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	i, err := loadIndex(b, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading %s", path)
	}
	return i, nil
}

// Add adds a package version to the index. It fails on invalid entries.
func (i IndexFile) Add(pv *PackageVersion) error {
	if err := pv.Validate(); err != nil {
		return errors.Wrapf(err, "validate failed for %s %s", pv.Name, pv.Version)
	}
	i.Entries[pv.Name] = append(i.Entries[pv.Name], pv)
	return nil
}

// Has returns true if the index has an entry for a package with the given
// name and exact version.
func (i IndexFile) Has(name, version string) bool {
	_, err := i.Get(name, version)
	return err == nil
}

// SortEntries sorts the entries by version in descending order.
//
// In canonical form, the individual version records should be sorted so that
// the most recent release for every version is in the 0th slot in the
// Entries.PackageVersions array. That way, tooling can predict the newest
// version without needing to parse SemVer.
func (i IndexFile) SortEntries() {
	for _, versions := range i.Entries {
		sort.Sort(sort.Reverse(versions))
	}
}

// Get returns the PackageVersion for the given name.
//
// If version is empty, this will return the package with the latest version.
// Otherwise version is read as a constraint and the newest matching
// version is returned.
func (i IndexFile) Get(name, version string) (*PackageVersion, error) {
	vs, ok := i.Entries[name]
	if !ok {
		return nil, ErrNoPackageName
	}
	if len(vs) == 0 {
		return nil, ErrNoPackageVersion
	}

	// an exact version wins over a constraint match
	for _, ver := range vs {
		if version != "" && version == ver.Version {
			return ver, nil
		}
	}

	if version == "" {
		version = "*"
	}
	c, err := constraint.ParseConstraints(version)
	if err != nil {
		return nil, err
	}

	for _, ver := range vs {
		test, err := constraint.ParseVersion(ver.Version)
		if err != nil {
			continue
		}
		if constraint.Satisfies(c, test) {
			return ver, nil
		}
	}
	return nil, errors.Errorf("no package version found for %s-%s", name, version)
}

// Merge merges the given index file into this index.
//
// This merges by name and version.
//
// If one of the entries in the given index does _not_ already exist, it is added.
// In all other cases, the existing record is preserved.
//
// This can leave the index in an unsorted state
func (i *IndexFile) Merge(f *IndexFile) {
	for _, pvs := range f.Entries {
		for _, pv := range pvs {
			if !i.hasExact(pv.Name, pv.Version) {
				i.Entries[pv.Name] = append(i.Entries[pv.Name], pv)
			}
		}
	}
}

func (i IndexFile) hasExact(name, version string) bool {
	for _, pv := range i.Entries[name] {
		if pv.Version == version {
			return true
		}
	}
	return false
}

// loadIndex loads an index file and does minimal validity checking.
//
// The source parameter is only used for logging.
// This will fail if API Version is not set (ErrNoAPIVersion) or if the unmarshal fails.
func loadIndex(data []byte, source string) (*IndexFile, error) {
	i := &IndexFile{}
	if err := yaml.UnmarshalStrict(data, i); err != nil {
		return i, err
	}
	if i.Entries == nil {
		i.Entries = map[string]PackageVersions{}
	}

	for name, pvs := range i.Entries {
		for idx := len(pvs) - 1; idx >= 0; idx-- {
			if pvs[idx] == nil {
				pvs = append(pvs[:idx], pvs[idx+1:]...)
				continue
			}
			if pvs[idx].Name == "" {
				pvs[idx].Name = name
			}
			if !strings.EqualFold(pvs[idx].Name, name) {
				log.Warnf("skipping entry %q %q from %s: listed under %q", pvs[idx].Name, pvs[idx].Version, source, name)
				pvs = append(pvs[:idx], pvs[idx+1:]...)
				continue
			}
			if err := pvs[idx].Validate(); err != nil {
				log.Warnf("skipping loading invalid entry for package %q %q from %s: %s", name, pvs[idx].Version, source, err)
				pvs = append(pvs[:idx], pvs[idx+1:]...)
			}
		}
		i.Entries[name] = pvs
	}
	i.SortEntries()
	if i.APIVersion == "" {
		return i, ErrNoAPIVersion
	}
	return i, nil
}
