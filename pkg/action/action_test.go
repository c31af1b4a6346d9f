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

package action

import (
	"bytes"
	"flag"
	"testing"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rancher-sandbox/depsolver/pkg/cli"
)

var verbose = flag.Bool("test.log", false, "enable test logging")

// actionConfigFixture returns a configuration with default settings whose
// logger writes to the returned buffer.
func actionConfigFixture(t *testing.T, reg prometheus.Registerer) (*Configuration, *bytes.Buffer) {
	t.Helper()

	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.InfoOut = buf
	logger.WarnOut = buf
	logger.ErrorOut = buf
	logger.DebugOut = buf
	if *verbose {
		logger.Level = log.DebugLevel
	}
	t.Cleanup(func() {
		if *verbose {
			t.Log(buf.String())
		}
	})

	settings := cli.New()
	settings.Debug = *verbose
	return NewConfiguration(settings, logger, reg), buf
}
