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
	"path/filepath"
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/depsolver/pkg/action"
	"github.com/rancher-sandbox/depsolver/pkg/eyecandy"
	"github.com/rancher-sandbox/depsolver/pkg/lint/support"
)

var longLintHelp = `
This command takes paths to package index files and runs a series of tests to
verify that every entry is well-formed: names, versions, aliases and the
constraints of every relation.

If the linter encounters things that will cause the index to be loaded
partially, entries being skipped, it will emit [ERROR] messages. If it
encounters issues that break with convention or recommendation, it will emit
[WARNING] messages.
`

func newLintCmd(out io.Writer, logger log.Logger) *cobra.Command {
	client := action.NewLint()

	cmd := &cobra.Command{
		Use:   "lint PATH...",
		Short: "examine package index files for possible issues",
		Long:  longLintHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := client.Run(args)

			for _, path := range args {
				fmt.Fprintf(out, "==> Linting %s\n", path)
				prefix := path
				if abs, err := filepath.Abs(path); err == nil {
					prefix = abs
				}
				for _, msg := range result.Messages {
					if msg.Path == prefix || strings.HasPrefix(msg.Path, prefix+":") {
						fmt.Fprintln(out, formatLintMessage(msg))
					}
				}
				fmt.Fprintln(out)
			}
			for _, err := range result.Errors {
				debug(logger, "lint error: %s", err)
			}

			summary := fmt.Sprintf("%d index file(s) linted, %d error(s)", result.TotalIndexesLinted, len(result.Errors))
			if len(result.Errors) > 0 {
				return errors.New(summary)
			}
			logger.Info(eyecandy.ESPrintf(settings.NoEmojis, ":heavy_check_mark: %s", summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&client.Strict, "strict", false, "fail on lint warnings")
	return cmd
}

func formatLintMessage(msg support.Message) string {
	s := msg.Error()
	switch msg.Severity {
	case support.ErrorSev:
		return red(s)
	case support.WarningSev:
		return yellow(s)
	}
	return s
}
