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

package action

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	pkg "github.com/rancher-sandbox/depsolver/internal/package"
	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// PlatformRepository is the repository name of platform packages.
const PlatformRepository = "platform"

// RequestFile is the YAML form of a request.
type RequestFile struct {
	// Require maps package names to constraints.
	Require map[string]string `yaml:"require"`
	// Lock maps installed package names to their version.
	Lock map[string]string `yaml:"lock"`
	// Fix maps installed and unchangeable package names to their version.
	Fix map[string]string `yaml:"fix"`
	// Platform maps platform package names, e.g. php or ext-json, to the
	// version provided by the running system.
	Platform           map[string]string `yaml:"platform"`
	UpdateAllowList    []string          `yaml:"updateAllowList"`
	KeepUnneeded       []string          `yaml:"keepUnneeded"`
	IgnorePlatformReqs []string          `yaml:"ignorePlatformReqs"`
}

// LoadRequestFile reads a request file.
func LoadRequestFile(path string) (*RequestFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't load request file (%s)", path)
	}
	rf := &RequestFile{}
	if err := yaml.UnmarshalStrict(b, rf); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse request file (%s)", path)
	}
	return rf, nil
}

// Merge adds the entries of other to rf. Entries of other win.
func (rf *RequestFile) Merge(other *RequestFile) {
	merge := func(dst *map[string]string, src map[string]string) {
		if len(src) == 0 {
			return
		}
		if *dst == nil {
			*dst = map[string]string{}
		}
		for k, v := range src {
			(*dst)[k] = v
		}
	}
	merge(&rf.Require, other.Require)
	merge(&rf.Lock, other.Lock)
	merge(&rf.Fix, other.Fix)
	merge(&rf.Platform, other.Platform)
	rf.UpdateAllowList = append(rf.UpdateAllowList, other.UpdateAllowList...)
	rf.KeepUnneeded = append(rf.KeepUnneeded, other.KeepUnneeded...)
	rf.IgnorePlatformReqs = append(rf.IgnorePlatformReqs, other.IgnorePlatformReqs...)
}

// BuildWorld fills b with the platform packages of rf and the packages of
// every repository in repos.
func (cfg *Configuration) BuildWorld(b *solver.PoolBuilder, repos *repo.File, rf *RequestFile) error {
	b.Strict(cfg.Settings.StrictConstraints)

	// the platform wins over every repository
	b.SetPriority(PlatformRepository, -1)
	for _, name := range pkg.SortedNames(rf.Platform) {
		if !pkg.IsPlatform(name) {
			return errors.Errorf("%s is not a platform package", name)
		}
		b.AddPackageFromRepo(pkg.NewPkg(name, rf.Platform[name], PlatformRepository), PlatformRepository)
	}

	if repos != nil {
		if err := repo.Populate(b, repos, cfg.Log); err != nil {
			return err
		}
	}
	return nil
}

// BuildRequest turns rf into a solver request. Locked and fixed packages
// are taken from pool when it has them, so that their relations are known.
func (cfg *Configuration) BuildRequest(pool *solver.Pool, rf *RequestFile) (*solver.Request, error) {
	request := solver.NewRequest()
	for _, name := range pkg.SortedNames(rf.Require) {
		request.Require(name, rf.Require[name])
	}
	for _, name := range pkg.SortedNames(rf.Lock) {
		request.Lock(installed(pool, name, rf.Lock[name]))
	}
	for _, name := range pkg.SortedNames(rf.Fix) {
		p := installed(pool, name, rf.Fix[name])
		if _, ok := pool.FindPackage(name, rf.Fix[name]); !ok {
			cfg.Log.Warnf("fixed package %s %s is not in any repository", name, rf.Fix[name])
		}
		request.Fix(p)
	}
	if err := request.IgnorePlatformReqs(rf.IgnorePlatformReqs...); err != nil {
		return nil, err
	}
	request.UpdateAllowList(rf.UpdateAllowList...)
	request.KeepUnneeded(rf.KeepUnneeded...)
	return request, nil
}

func installed(pool *solver.Pool, name, version string) *pkg.Pkg {
	if id, ok := pool.FindPackage(name, version); ok {
		return pool.Package(id)
	}
	return pkg.NewPkg(name, version, "")
}
