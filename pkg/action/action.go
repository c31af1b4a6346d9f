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
	"github.com/Masterminds/log-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rancher-sandbox/depsolver/internal/metrics"
	"github.com/rancher-sandbox/depsolver/pkg/cli"
)

// Configuration is what every action shares: the settings, the logger, and
// the metrics recorder.
type Configuration struct {
	Settings *cli.EnvSettings
	Log      log.Logger
	// Metrics is nil when no metrics are recorded.
	Metrics *metrics.Recorder
}

// NewConfiguration returns a configuration for settings. A nil logger
// means log.Current. Metrics are registered on reg when it is not nil.
func NewConfiguration(settings *cli.EnvSettings, logger log.Logger, reg prometheus.Registerer) *Configuration {
	if settings == nil {
		settings = cli.New()
	}
	if logger == nil {
		logger = log.Current
	}
	cfg := &Configuration{Settings: settings, Log: logger}
	if reg != nil {
		cfg.Metrics = metrics.NewRecorder(reg)
	}
	return cfg
}
