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
	"io"
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/depsolver/pkg/action"
)

const whyDesc = `
This command resolves a request like 'depsolver resolve' does, and prints the
chain of requirements that pulls the given package into the solution, from
a requested package down to it.
`

func newWhyCmd(out io.Writer, logger log.Logger) *cobra.Command {
	in := &inputOptions{}

	cmd := &cobra.Command{
		Use:   "why [PACKAGE]",
		Short: "show why a package is part of the solution",
		Long:  whyDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := action.NewConfiguration(settings, logger, nil)
			res, err := resolve(cmd.Context(), cfg, in)
			if err != nil {
				return err
			}
			if err := res.Err(); err != nil {
				return err
			}

			chain := res.Transaction.Why(args[0])
			if chain == nil {
				return errors.Errorf("%s is not part of the solution", args[0])
			}
			steps := make([]string, 0, len(chain))
			for _, p := range chain {
				steps = append(steps, fmt.Sprintf("%s %s", p.Name, blue(p.Version)))
			}
			_, err = fmt.Fprintln(out, strings.Join(steps, yellow(" -> ")))
			return err
		},
	}

	addInputFlags(cmd.Flags(), in)
	return cmd
}
