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
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rancher-sandbox/depsolver/pkg/depsolverpath"
)

const outputFlag = "output"

// outputFormat is the rendering of a resolve result.
type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
	outputTree  outputFormat = "tree"
)

func outputFormats() []string {
	return []string{string(outputTable), string(outputJSON), string(outputYAML), string(outputTree)}
}

func parseOutputFormat(s string) (outputFormat, error) {
	for _, f := range outputFormats() {
		if s == f {
			return outputFormat(s), nil
		}
	}
	return "", errors.Errorf("invalid format %q, allowed values: %s", s, strings.Join(outputFormats(), ", "))
}

// bindOutputFlag will add the output flag to the given command and bind the
// value to the given format pointer
func bindOutputFlag(cmd *cobra.Command, varRef *outputFormat) {
	cmd.Flags().VarP(newOutputValue(outputTable, varRef), outputFlag, "o",
		fmt.Sprintf("prints the output in the specified format. Allowed values: %s", strings.Join(outputFormats(), ", ")))

	_ = cmd.RegisterFlagCompletionFunc(outputFlag, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var formatNames []string
		for _, format := range outputFormats() {
			if strings.HasPrefix(format, toComplete) {
				formatNames = append(formatNames, format)
			}
		}
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})
}

type outputValue outputFormat

func newOutputValue(defaultValue outputFormat, p *outputFormat) *outputValue {
	*p = defaultValue
	return (*outputValue)(p)
}

func (o *outputValue) String() string {
	return string(*o)
}

func (o *outputValue) Type() string {
	return "format"
}

func (o *outputValue) Set(s string) error {
	outfmt, err := parseOutputFormat(s)
	if err != nil {
		return err
	}
	*o = outputValue(outfmt)
	return nil
}

// inputOptions are the flags that describe the world and the request.
type inputOptions struct {
	repositories   string
	requestFile    string
	requires       []string
	locks          []string
	fixes          []string
	platform       []string
	allowUpdate    []string
	keepUnneeded   []string
	ignorePlatform []string
}

func addInputFlags(f *pflag.FlagSet, o *inputOptions) {
	f.StringVarP(&o.repositories, "repositories", "r", depsolverpath.RepositoryFile(), "path to the repositories file")
	f.StringVar(&o.requestFile, "request", "", "path to a request file")
	f.StringArrayVar(&o.requires, "require", nil, "require a package, as name=constraint (can specify multiple)")
	f.StringArrayVar(&o.locks, "lock", nil, "mark a package as installed, as name=version (can specify multiple)")
	f.StringArrayVar(&o.fixes, "fix", nil, "mark a package as installed and unchangeable, as name=version (can specify multiple)")
	f.StringArrayVar(&o.platform, "platform", nil, "provide a platform package, as name=version (can specify multiple)")
	f.StringSliceVar(&o.allowUpdate, "allow-update", nil, "only update the given locked packages")
	f.StringSliceVar(&o.keepUnneeded, "keep-unneeded", nil, "mark the given locked packages as unneeded instead of removing them")
	f.StringSliceVar(&o.ignorePlatform, "ignore-platform-req", nil, "ignore platform requirements matching the given glob patterns")
}

// splitPair splits "name=value". A missing value gives def.
func splitPair(s, def string) (string, string, error) {
	name, value, found := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", errors.Errorf("invalid argument %q: empty package name", s)
	}
	if !found {
		return name, def, nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", errors.Errorf("invalid argument %q: empty value", s)
	}
	return name, value, nil
}
