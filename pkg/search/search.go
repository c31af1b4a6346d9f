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
Package search finds packages in the indexes of the configured repositories,
by name or by a name they provide or replace.
*/
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// searchMaxScore suggests that any score higher than this is not considered a match.
const searchMaxScore = 25

func isNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}

// RepoOptions is the struct used to search, and stores the different options to filter and configure the output
type RepoOptions struct {
	Versions     bool
	Regexp       bool
	Devel        bool
	Version      string
	MaxColWidth  uint
	RepoFile     string
	OutputFormat solver.OutputMode
}

// Run searchs and prints the found packages based of the filters
func (o *RepoOptions) Run(logger log.Logger, args []string) error {
	wInfo := logio.NewWriter(logger, log.InfoLevel)

	index, err := o.buildIndex(logger)
	if err != nil {
		return err
	}

	var res []*Result
	switch len(args) {
	case 0:
		res = index.All()
	case 1:
		res, err = index.Search(args[0], searchMaxScore, o.Regexp)
		if err != nil {
			return err
		}
	default:
		return errors.New("search takes at most one keyword")
	}

	SortScore(res)
	data, err := o.applyConstraint(res)
	if err != nil {
		return err
	}

	return (&repoSearchWriter{data, o.MaxColWidth}).write(wInfo, o.OutputFormat)
}

// applyConstraint filters the results by the version constraint and, unless
// Devel is set or a constraint is given, by stability. Without Versions only
// the newest remaining version of each package is kept.
func (o *RepoOptions) applyConstraint(res []*Result) ([]*Result, error) {
	c := constraint.Constraint(constraint.MatchAll{})
	if o.Version != "" {
		var err error
		c, err = constraint.ParseConstraints(o.Version)
		if err != nil {
			return res, errors.Wrap(err, "an invalid version/constraint format")
		}
	}

	data := res[:0]
	foundNames := map[string]bool{}
	for _, r := range res {
		key := r.Repository + "/" + r.Name
		// if not returning all versions and already have found a result,
		// you're done!
		if !o.Versions && foundNames[key] {
			continue
		}
		v, err := constraint.ParseVersion(r.Package.Version)
		if err != nil {
			continue
		}
		if !o.Devel && o.Version == "" && v.Stability() < constraint.StabilityStable {
			continue
		}
		if constraint.Satisfies(c, v) {
			data = append(data, r)
			foundNames[key] = true
		}
	}

	return data, nil
}

// buildIndex loads the repos to add them to the index search
func (o *RepoOptions) buildIndex(logger log.Logger) (*Index, error) {
	rf, err := repo.LoadFile(o.RepoFile)
	if isNotExist(err) || (err == nil && len(rf.Repositories) == 0) {
		return nil, errors.New("no repositories configured")
	}
	if err != nil {
		return nil, err
	}

	// every version is needed to filter them
	all := o.Versions || o.Version != "" || !o.Devel
	i := NewIndex()
	for _, re := range rf.Sorted() {
		ind, err := repo.LoadIndexFile(re.Path)
		if err != nil {
			logger.Warnf("Repository %q is corrupt or missing: %s", re.Name, err)
			continue
		}
		i.AddRepo(re.Name, ind, all)
	}
	return i, nil
}

// repoPackageElement is used to store the final package values that will get printed
type repoPackageElement struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Repository string `json:"repository"`
}

// repoSearchWriter is used to store and print the search results
type repoSearchWriter struct {
	results     []*Result
	columnWidth uint
}

func (r *repoSearchWriter) write(out io.Writer, mode solver.OutputMode) error {
	switch mode {
	case solver.JSON:
		return r.WriteJSON(out)
	case solver.YAML:
		return r.WriteYAML(out)
	}
	return r.WriteTable(out)
}

// WriteTable writes the results as a table
func (r *repoSearchWriter) WriteTable(out io.Writer) error {
	if len(r.results) == 0 {
		_, err := out.Write([]byte("No results found\n"))
		if err != nil {
			return fmt.Errorf("unable to write results: %s", err)
		}
		return nil
	}
	table := uitable.New()
	table.MaxColWidth = r.columnWidth
	table.AddRow("NAME", "VERSION", "REPOSITORY")
	for _, r := range r.results {
		table.AddRow(r.Name, r.Package.Version, r.Repository)
	}
	_, err := fmt.Fprintln(out, table.String())
	return err
}

// WriteJSON prints the results as a json
func (r *repoSearchWriter) WriteJSON(out io.Writer) error {
	o, err := json.Marshal(r.elements())
	if err != nil {
		return errors.Wrap(err, "unable to encode results as json")
	}
	_, err = fmt.Fprintln(out, string(o))
	return err
}

// WriteYAML prints the results as a yaml
func (r *repoSearchWriter) WriteYAML(out io.Writer) error {
	o, err := yaml.Marshal(r.elements())
	if err != nil {
		return errors.Wrap(err, "unable to encode results as yaml")
	}
	_, err = out.Write(o)
	return err
}

// elements creates the final list that will get encoded. No results give
// an empty list instead of null.
func (r *repoSearchWriter) elements() []repoPackageElement {
	list := make([]repoPackageElement, 0, len(r.results))
	for _, r := range r.results {
		list = append(list, repoPackageElement{r.Name, r.Package.Version, r.Repository})
	}
	return list
}
