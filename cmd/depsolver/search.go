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

package main

import (
	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/depsolverpath"
	"github.com/rancher-sandbox/depsolver/pkg/search"
)

const searchDesc = `
Search reads through all of the repositories listed in the repositories file,
and looks for packages whose name, or a name they provide or replace, matches
the keyword. Without a keyword every package is listed.

It will display the latest stable versions of the packages found. If you
specify the --devel flag, the output will include pre-release versions.
If you want to search using a version constraint, use --version.

Examples:

    # Search for stable release versions matching the keyword "log"
    $ depsolver search log

    # Search for release versions matching the keyword "log", including pre-release versions
    $ depsolver search log --devel

    # Search for the latest stable release of acme/log with a major version of 1
    $ depsolver search acme/log --version ^1.0
`

func newSearchCmd(logger log.Logger) *cobra.Command {
	o := &search.RepoOptions{}
	var format outputFormat

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "search repositories for a keyword in packages",
		Long:  searchDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := outputMode(format)
			if err != nil {
				return err
			}
			o.OutputFormat = mode
			return o.Run(logger, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.RepoFile, "repositories", "r", depsolverpath.RepositoryFile(), "path to the repositories file")
	f.BoolVar(&o.Regexp, "regexp", false, "use regular expressions for searching repositories")
	f.BoolVarP(&o.Versions, "versions", "l", false, "show the long listing, with each version of each package on its own line")
	f.BoolVar(&o.Devel, "devel", false, "use development versions (alpha, beta, and release candidate releases), too. If --version is set, this is ignored")
	f.StringVar(&o.Version, "version", "", "search using version constraints")
	f.UintVar(&o.MaxColWidth, "max-col-width", 50, "maximum column width for output table")
	bindOutputFlag(cmd, &format)

	return cmd
}

// outputMode maps an output format to the solver's output modes.
func outputMode(f outputFormat) (solver.OutputMode, error) {
	switch f {
	case outputJSON:
		return solver.JSON, nil
	case outputYAML:
		return solver.YAML, nil
	case outputTable:
		return solver.Table, nil
	}
	return solver.Table, errors.Errorf("output format %q is not supported here", f)
}
