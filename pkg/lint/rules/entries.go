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

/*
Package rules contains all the rules that depsolver will run against a package
index file when depsolver lint is run. Entries the loader would skip are
reported here instead of being dropped silently.
*/
package rules

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"sigs.k8s.io/yaml"

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	pkg "github.com/rancher-sandbox/depsolver/internal/package"
	"github.com/rancher-sandbox/depsolver/pkg/lint/support"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// packageNameRe is the vendor/name form of package names.
var packageNameRe = regexp.MustCompile(`^[a-z0-9]([_.-]?[a-z0-9]+)*/[a-z0-9](([_.]|-{1,2})?[a-z0-9]+)*$`)

// Entries runs the linter rules on every entry of the index file.
func Entries(linter *support.Linter) {
	path := linter.IndexPath

	index, err := loadRaw(path)
	if !linter.RunLinterRule(support.ErrorSev, path, err) {
		return
	}
	linter.RunLinterRule(support.ErrorSev, path, validateAPIVersion(index))
	linter.RunLinterRule(support.InfoSev, path, validateNotEmpty(index))

	for _, name := range sortedEntries(index) {
		where := fmt.Sprintf("%s: entries[%s]", path, name)
		if pkg.IsPlatform(name) {
			linter.RunLinterRule(support.ErrorSev, where, errors.Errorf("%s is a platform package name and cannot be published", name))
			continue
		}
		linter.RunLinterRule(support.WarningSev, where, validatePackageName(name))
		linter.RunLinterRule(support.WarningSev, where, validateNoDuplicates(index.Entries[name]))
		for _, pv := range index.Entries[name] {
			if pv == nil {
				linter.RunLinterRule(support.ErrorSev, where, errors.New("empty entry"))
				continue
			}
			at := fmt.Sprintf("%s[%s]", where, pv.Version)
			linter.RunLinterRule(support.ErrorSev, at, validateListedName(name, pv))
			if !linter.RunLinterRule(support.ErrorSev, at, validateVersion(pv)) {
				continue
			}
			linter.RunLinterRule(support.InfoSev, at, validateStrictSemver(pv))
			linter.RunLinterRule(support.ErrorSev, at, validateRelations(pv))
			linter.RunLinterRule(support.WarningSev, at, validateNoSelfRequire(name, pv))
		}
	}
}

// loadRaw reads the index without the loader's filtering.
func loadRaw(path string) (*repo.IndexFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read index file")
	}
	index := &repo.IndexFile{}
	if err := yaml.UnmarshalStrict(b, index); err != nil {
		return nil, errors.Wrap(err, "index file is not valid YAML")
	}
	return index, nil
}

func sortedEntries(index *repo.IndexFile) []string {
	names := maps.Keys(index.Entries)
	sort.Strings(names)
	return names
}

// validateAPIVersion checks that the apiVersion is set and known
func validateAPIVersion(index *repo.IndexFile) error {
	switch index.APIVersion {
	case "":
		return errors.New("apiVersion is required")
	case repo.APIVersionV1:
		return nil
	}
	return errors.Errorf("apiVersion %q is not supported", index.APIVersion)
}

// validateNotEmpty checks that the index lists packages
func validateNotEmpty(index *repo.IndexFile) error {
	if len(index.Entries) == 0 {
		return errors.New("index lists no packages")
	}
	return nil
}

// validatePackageName checks the vendor/name form
func validatePackageName(name string) error {
	if !packageNameRe.MatchString(name) {
		return errors.Errorf("package name %q should be lowercase and of the form vendor/name", name)
	}
	return nil
}

// validateNoDuplicates checks that no version is listed twice
func validateNoDuplicates(pvs repo.PackageVersions) error {
	var dups []string
	seen := map[string]bool{}
	for _, pv := range pvs {
		if pv == nil {
			continue
		}
		v, err := constraint.ParseVersion(pv.Version)
		if err != nil {
			continue
		}
		if key := v.String(); seen[key] {
			dups = append(dups, pv.Version)
		} else {
			seen[key] = true
		}
	}
	if len(dups) > 0 {
		return errors.Errorf("versions listed more than once: %s", strings.Join(dups, ", "))
	}
	return nil
}

// validateListedName checks that an entry names the package it is listed under
func validateListedName(name string, pv *repo.PackageVersion) error {
	if pv.Name != "" && !strings.EqualFold(pv.Name, name) {
		return errors.Errorf("entry is named %q but listed under %q and will be skipped", pv.Name, name)
	}
	return nil
}

// validateVersion checks the version and aliases of an entry
func validateVersion(pv *repo.PackageVersion) error {
	named := *pv
	named.Name = "-"
	if err := named.Validate(); err != nil {
		return errors.Wrap(err, "entry will be skipped")
	}
	return nil
}

// validateStrictSemver reports versions other tools may not order the same way
func validateStrictSemver(pv *repo.PackageVersion) error {
	if strings.HasPrefix(strings.ToLower(pv.Version), "dev-") {
		return nil
	}
	if _, err := semver.StrictNewVersion(pv.Version); err != nil {
		return errors.Errorf("version %q is not strict semantic versioning (MAJOR.MINOR.PATCH)", pv.Version)
	}
	return nil
}

// validateRelations checks that every relation constraint parses
func validateRelations(pv *repo.PackageVersion) error {
	var broken []string
	for _, rel := range []struct {
		kind string
		m    map[string]string
	}{
		{"require", pv.Require},
		{"conflict", pv.Conflict},
		{"provide", pv.Provide},
		{"replace", pv.Replace},
	} {
		for _, target := range pkg.SortedNames(rel.m) {
			c := rel.m[target]
			if c == "self.version" && (rel.kind == "provide" || rel.kind == "replace") {
				continue
			}
			if _, err := constraint.ParseConstraints(c); err != nil {
				broken = append(broken, fmt.Sprintf("%s %s %q", rel.kind, target, c))
			}
		}
	}
	if len(broken) > 0 {
		return errors.Errorf("unparsable constraints match every version unless --strict is set: %s", strings.Join(broken, ", "))
	}
	return nil
}

// validateNoSelfRequire checks that a package does not require itself
func validateNoSelfRequire(name string, pv *repo.PackageVersion) error {
	for target := range pv.Require {
		if strings.EqualFold(target, name) {
			return errors.New("package requires itself")
		}
	}
	return nil
}
