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
	"encoding/json"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

// PkgResultSet contains the status outcome of solving, and the different sets of
// packages derived from the outcome.
// It will be marshalled into Yaml and Json.
type PkgResultSet struct {
	Status          string         `json:"status"`
	ToInstall       []*pkg.Pkg     `json:"toInstall"`
	ToUpdate        []UpdateResult `json:"toUpdate"`
	ToRemove        []*pkg.Pkg     `json:"toRemove"`
	Unneeded        []*pkg.Pkg     `json:"unneeded"`
	Inconsistencies []string       `json:"inconsistencies"`
}

// UpdateResult is one update of a PkgResultSet.
type UpdateResult struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

type OutputMode int

const (
	JSON OutputMode = iota
	YAML
	Table
)

// ParseOutputMode maps "json", "yaml" and "table" to an OutputMode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	case "table", "":
		return Table, nil
	}
	return Table, errors.Errorf("unknown output format %q", s)
}

// NewPkgResultSet summarizes the outcome of a solve. Exactly one of t and
// problems is expected to be set.
func NewPkgResultSet(pool *Pool, t *Transaction, problems *ProblemSet) PkgResultSet {
	rs := PkgResultSet{
		ToInstall:       []*pkg.Pkg{},
		ToUpdate:        []UpdateResult{},
		ToRemove:        []*pkg.Pkg{},
		Unneeded:        []*pkg.Pkg{},
		Inconsistencies: []string{},
	}
	if !problems.IsEmpty() {
		rs.Status = "UNSAT"
		for _, p := range problems.Problems() {
			rs.Inconsistencies = append(rs.Inconsistencies, p.Describe(pool))
		}
		return rs
	}
	rs.Status = "SAT"
	if t == nil {
		return rs
	}
	for _, op := range t.Operations() {
		switch op.Type {
		case Install:
			rs.ToInstall = append(rs.ToInstall, op.Package)
		case Update:
			rs.ToUpdate = append(rs.ToUpdate, UpdateResult{Name: op.Package.Name, From: op.From.Version, To: op.Package.Version})
		case Uninstall:
			rs.ToRemove = append(rs.ToRemove, op.Package)
		case MarkUnneeded:
			rs.Unneeded = append(rs.Unneeded, op.Package)
		}
	}
	return rs
}

// IsSAT reports whether the solve succeeded.
func (rs PkgResultSet) IsSAT() bool {
	return rs.Status == "SAT"
}

// FormatOutput renders the result set.
func (rs PkgResultSet) FormatOutput(t OutputMode) (string, error) {
	var sb strings.Builder
	switch t {
	case Table:
		if !rs.IsSAT() {
			sb.WriteString("Inconsistencies:\n")
			for _, incos := range rs.Inconsistencies {
				sb.WriteString(incos)
				sb.WriteString("\n")
			}
			return sb.String(), nil
		}
		table := uitable.New()
		table.AddRow("OPERATION", "NAME", "VERSION")
		for _, p := range rs.ToRemove {
			table.AddRow("remove", p.Name, p.Version)
		}
		for _, p := range rs.Unneeded {
			table.AddRow("unneeded", p.Name, p.Version)
		}
		for _, u := range rs.ToUpdate {
			table.AddRow("update", u.Name, u.From+" => "+u.To)
		}
		for _, p := range rs.ToInstall {
			table.AddRow("install", p.Name, p.Version)
		}
		sb.WriteString("Status: " + rs.Status + "\n")
		sb.WriteString(table.String())
		sb.WriteString("\n")
	case YAML:
		o, err := yaml.Marshal(rs)
		if err != nil {
			return "", errors.Wrap(err, "cannot encode result as yaml")
		}
		sb.Write(o)
	case JSON:
		o, err := json.Marshal(rs)
		if err != nil {
			return "", errors.Wrap(err, "cannot encode result as json")
		}
		sb.Write(o)
	}
	return sb.String(), nil
}
