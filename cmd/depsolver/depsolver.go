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
	"os/signal"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	loglogrus "github.com/Masterminds/log-go/impl/logrus"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/rancher-sandbox/depsolver/pkg/cli"
)

var settings = cli.New()

var red = color.New(color.FgRed).SprintFunc()
var green = color.New(color.FgGreen).SprintFunc()
var yellow = color.New(color.FgYellow).SprintFunc()
var blue = color.New(color.FgBlue).SprintFunc()
var magenta = color.New(color.FgMagenta).SprintFunc()

func debug(logger log.Logger, format string, v ...interface{}) {
	if settings.Debug {
		logger.Debugf("%s", magenta(fmt.Sprintf(format, v...)))
	}
}

// newLogger builds the logger for the current settings: human output on
// out and errOut, or JSON lines on errOut with --log-format=json.
func newLogger(out, errOut io.Writer) log.Logger {
	if settings.LogFormat == "json" {
		lgr := logrus.New()
		lgr.SetOutput(errOut)
		lgr.SetFormatter(&logrus.JSONFormatter{})
		if settings.Debug {
			lgr.SetLevel(logrus.DebugLevel)
		}
		return loglogrus.New(lgr)
	}

	logger := logcli.NewStandard()
	logger.InfoOut = out
	logger.WarnOut = errOut
	logger.ErrorOut = errOut
	logger.DebugOut = errOut
	if settings.Debug {
		logger.Level = log.DebugLevel
	}
	return logger
}

func main() {
	cmd, err := newRootCmd(os.Stdout, os.Stderr, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err))
		os.Exit(1)
	}

	// an interrupt aborts a running solve
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
