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

package pkg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	"golang.org/x/exp/maps"
)

// Pkg is the minimum object the solver reasons about: one version of one
// package, plus the relations it declares against other package names.
// Note that each package is unique. The same name with a different version is
// a different package. E.g: acme/log-1.2.0 and acme/log-1.3.0 are different
// packages.
type Pkg struct {
	Name    string `json:"name"`
	Version string `json:"version"` // version as published

	// relations, name -> constraint text
	Require  map[string]string `json:"require,omitempty" yaml:",omitempty"`
	Conflict map[string]string `json:"conflict,omitempty" yaml:",omitempty"`
	Provide  map[string]string `json:"provide,omitempty" yaml:",omitempty"`
	Replace  map[string]string `json:"replace,omitempty" yaml:",omitempty"`

	Repository string `json:"repository,omitempty" yaml:",omitempty"`
	// AliasOf is the version of the aliased package, aliases only.
	AliasOf string `json:"aliasOf,omitempty" yaml:"aliasof,omitempty"`

	parsedVersion *constraint.Version
}

// NewPkg creates a package without relations.
func NewPkg(name, version, repo string) *Pkg {
	return &Pkg{
		Name:       name,
		Version:    version,
		Require:    map[string]string{},
		Conflict:   map[string]string{},
		Provide:    map[string]string{},
		Replace:    map[string]string{},
		Repository: repo,
	}
}

// NewPkgMock creates a new package from literal relation maps, any of which
// may be nil.
// Useful for testing.
func NewPkgMock(name, version string, require, conflict, provide, replace map[string]string) *Pkg {
	p := NewPkg(name, version, "ourrepo")
	for k, v := range require {
		p.Require[k] = v
	}
	for k, v := range conflict {
		p.Conflict[k] = v
	}
	for k, v := range provide {
		p.Provide[k] = v
	}
	for k, v := range replace {
		p.Replace[k] = v
	}
	return p
}

// Alias returns a copy of p advertised under version aliasVersion. The copy
// keeps every relation of p.
func (p *Pkg) Alias(aliasVersion string) *Pkg {
	a := NewPkgMock(p.Name, aliasVersion, p.Require, p.Conflict, p.Provide, p.Replace)
	a.Repository = p.Repository
	a.AliasOf = p.Version
	return a
}

// IsAlias reports whether p was created with Alias.
func (p *Pkg) IsAlias() bool {
	return p.AliasOf != ""
}

// ParsedVersion returns the normalized version. Unparsable versions are
// kept as branch-like identities so they only ever equal themselves.
func (p *Pkg) ParsedVersion() constraint.Version {
	if p.parsedVersion != nil {
		return *p.parsedVersion
	}
	v, err := constraint.ParseVersion(p.Version)
	if err != nil {
		v, _ = constraint.ParseVersion("dev-" + p.Version)
	}
	return v
}

// Freeze caches the parsed version. Pool calls it when a package is added,
// after which p must be treated as read-only.
func (p *Pkg) Freeze() {
	v := p.ParsedVersion()
	p.parsedVersion = &v
}

// Stability derives the package stability from its version text.
func (p *Pkg) Stability() constraint.Stability {
	return constraint.StabilityOf(p.Version)
}

// Vendor returns the part of the name before "/", or "" for vendorless
// names.
func (p *Pkg) Vendor() string {
	return Vendor(p.Name)
}

// Vendor returns the vendor prefix of a package name.
func Vendor(name string) string {
	if i := strings.Index(name, "/"); i > 0 {
		return strings.ToLower(name[:i])
	}
	return ""
}

// IsPlatform reports whether name denotes the runtime or one of its
// extensions, libraries or tool versions rather than an installable package.
func IsPlatform(name string) bool {
	n := strings.ToLower(name)
	return n == "php" || strings.HasPrefix(n, "php-") ||
		strings.HasPrefix(n, "ext-") || strings.HasPrefix(n, "lib-") ||
		strings.HasPrefix(n, "composer")
}

// SortedNames returns the keys of a relation map in lexical order.
func SortedNames(rel map[string]string) []string {
	names := maps.Keys(rel)
	sort.Strings(names)
	return names
}

// JSON serializes package p into JSON, returning a []byte
func (p *Pkg) JSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(p)
	return buffer.Bytes(), err
}

// GetFingerPrint returns a unique id of the package.
func (p *Pkg) GetFingerPrint() string {
	return CreateFingerPrint(p.Name, p.Version)
}

// CreateFingerPrint returns the fingerprint for name and version.
func CreateFingerPrint(name, version string) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(name), version)
}

// GetBaseFingerPrint returns a unique id of the package minus version.
// This helps when filtering packages to find those that are similar and differ
// only in the version.
func (p *Pkg) GetBaseFingerPrint() string {
	return strings.ToLower(p.Name)
}

// String is the pretty form used in messages, e.g. "acme/log 1.2.0".
func (p *Pkg) String() string {
	if p.IsAlias() {
		return fmt.Sprintf("%s %s (alias of %s)", p.Name, p.Version, p.AliasOf)
	}
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

// Encode encodes the package to string.
func (p *Pkg) Encode() (string, error) {

	encodedPackage, err := p.JSON()
	if err != nil {
		return "", err
	}

	return string(encodedPackage), nil
}
