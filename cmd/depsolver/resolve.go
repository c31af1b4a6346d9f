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
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/action"
	"github.com/rancher-sandbox/depsolver/pkg/depsolverpath"
	"github.com/rancher-sandbox/depsolver/pkg/eyecandy"
)

const resolveDesc = `
This command resolves a request against the packages of one or more
repositories, and prints the operations that turn the installed packages
into the solution.

Repositories are listed in a repositories file (--repositories), each with the
path of its index file and a priority. The request comes from a request file
(--request) and from flags:

    $ depsolver resolve --require acme/app='^1.0' --lock acme/log=1.0.0

When the request cannot be satisfied, the command fails and explains why.
`

type resolveOptions struct {
	input       inputOptions
	output      outputFormat
	metricsFile string
}

func newResolveCmd(out io.Writer, logger log.Logger) *cobra.Command {
	o := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "resolve a request against package repositories",
		Long:  resolveDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), out, logger)
		},
	}

	f := cmd.Flags()
	addInputFlags(f, &o.input)
	f.StringVar(&o.metricsFile, "metrics-file", "", "write solver metrics in the Prometheus text format to this file")
	bindOutputFlag(cmd, &o.output)
	return cmd
}

func (o *resolveOptions) run(ctx context.Context, out io.Writer, logger log.Logger) error {
	var reg *prometheus.Registry
	if o.metricsFile != "" {
		reg = prometheus.NewRegistry()
	}
	cfg := action.NewConfiguration(settings, logger, registerer(reg))

	res, err := resolve(ctx, cfg, &o.input)
	if reg != nil {
		if werr := prometheus.WriteToTextfile(o.metricsFile, reg); werr != nil {
			logger.Warnf("cannot write metrics: %s", werr)
		}
	}
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}

	if err := render(out, o.output, res); err != nil {
		return err
	}
	if o.output == outputTable {
		n := len(res.Transaction.Operations())
		if n == 0 {
			logger.Info(eyecandy.ESPrint(settings.NoEmojis, ":ok_hand: Nothing to do"))
		} else {
			logger.Info(eyecandy.ESPrintf(settings.NoEmojis, ":sparkles: %d operation(s), resolved in %s",
				n, strings.ToLower(units.HumanDuration(res.Stats.Duration))))
		}
	}
	return nil
}

// registerer avoids handing a typed nil to the configuration.
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

// resolve runs the Resolve action for the given input flags.
func resolve(ctx context.Context, cfg *action.Configuration, in *inputOptions) (*action.ResolveResult, error) {
	client := action.NewResolve(cfg)
	client.Repositories = in.repositories
	if in.repositories == depsolverpath.RepositoryFile() {
		// the default repositories file is optional
		if _, err := os.Stat(in.repositories); os.IsNotExist(err) {
			debug(cfg.Log, "no repositories file at %s", in.repositories)
			client.Repositories = ""
		}
	}

	if in.requestFile != "" {
		rf, err := action.LoadRequestFile(in.requestFile)
		if err != nil {
			return nil, err
		}
		client.Request = rf
	}
	flagRequest, err := in.requestFromFlags()
	if err != nil {
		return nil, err
	}
	client.Request.Merge(flagRequest)

	debug(cfg.Log, "resolving %d requirement(s) against %s", len(client.Request.Require), in.repositories)
	return client.Run(ctx)
}

func (in *inputOptions) requestFromFlags() (*action.RequestFile, error) {
	rf := &action.RequestFile{
		UpdateAllowList:    in.allowUpdate,
		KeepUnneeded:       in.keepUnneeded,
		IgnorePlatformReqs: in.ignorePlatform,
	}
	for _, pairs := range []struct {
		args     []string
		dst      *map[string]string
		def      string
		needsVal bool
	}{
		{in.requires, &rf.Require, "*", false},
		{in.locks, &rf.Lock, "", true},
		{in.fixes, &rf.Fix, "", true},
		{in.platform, &rf.Platform, "", true},
	} {
		for _, arg := range pairs.args {
			name, value, err := splitPair(arg, pairs.def)
			if err != nil {
				return nil, err
			}
			if pairs.needsVal && value == "" {
				return nil, errors.Errorf("invalid argument %q: expected name=version", arg)
			}
			if *pairs.dst == nil {
				*pairs.dst = map[string]string{}
			}
			(*pairs.dst)[name] = value
		}
	}
	return rf, nil
}

func render(out io.Writer, format outputFormat, res *action.ResolveResult) error {
	if format == outputTree {
		_, err := fmt.Fprint(out, renderTree(res.Transaction))
		return err
	}

	mode, err := outputMode(format)
	if err != nil {
		return err
	}
	s, err := solver.NewPkgResultSet(res.Pool, res.Transaction, res.Problems).FormatOutput(mode)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, strings.TrimRight(s, "\n"))
	return err
}
