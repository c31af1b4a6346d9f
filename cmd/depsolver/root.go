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
	"io"

	"github.com/Masterminds/log-go"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var globalUsage = `Usage: depsolver command

A dependency resolver for package repositories. Given the packages published
in one or more repositories and a request, it computes the packages to
install, update and remove, or explains why no such set exists.
`

func newRootCmd(out, errOut io.Writer, args []string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          "depsolver",
		Short:        "A dependency resolver for package repositories",
		Long:         globalUsage,
		SilenceUsage: true,
	}
	flags := cmd.PersistentFlags()

	settings.AddFlags(flags)

	// parse the global flags early, the logger depends on them
	flags.ParseErrorsWhitelist.UnknownFlags = true
	err := flags.Parse(args)
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		return nil, errors.Wrapf(err, "failed while parsing flags for %s", args)
	}

	if settings.NoColors {
		color.NoColor = true // disable colorized output
	}

	logger := newLogger(out, errOut)
	log.Current = logger

	cmd.AddCommand(
		newResolveCmd(out, logger),
		newWhyCmd(out, logger),
		newSearchCmd(logger),
		newLintCmd(out, logger),
		newVersionCmd(logger),
	)

	return cmd, nil
}
