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
Package cli describes the operating environment for the depsolver CLI.

Settings are read from DEPSOLVER_* environment variables first, and flags
bound with AddFlags override them.
*/
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// Debug indicates whether or not depsolver is running in Debug mode.
	Debug bool
	// NoColors disables colorized output.
	NoColors bool
	// NoEmojis disables emojis in output.
	NoEmojis bool
	// PreferStable makes stable versions win over newer unstable ones.
	PreferStable bool
	// PreferLowest makes the lowest matching versions win.
	PreferLowest bool
	// StrictConstraints makes unparsable constraints match nothing.
	StrictConstraints bool
	// MaxSteps bounds the solver loop, 0 for no limit.
	MaxSteps int
	// LogFormat is "text" or "json".
	LogFormat string
}

// New returns the settings read from the environment.
func New() *EnvSettings {
	env := &EnvSettings{
		PreferStable: envBoolOr("DEPSOLVER_PREFER_STABLE", true),
		LogFormat:    envOr("DEPSOLVER_LOG_FORMAT", "text"),
	}
	env.Debug, _ = strconv.ParseBool(os.Getenv("DEPSOLVER_DEBUG"))
	env.NoColors, _ = strconv.ParseBool(os.Getenv("DEPSOLVER_NOCOLORS"))
	env.NoEmojis, _ = strconv.ParseBool(os.Getenv("DEPSOLVER_NOEMOJIS"))
	env.PreferLowest, _ = strconv.ParseBool(os.Getenv("DEPSOLVER_PREFER_LOWEST"))
	env.StrictConstraints, _ = strconv.ParseBool(os.Getenv("DEPSOLVER_STRICT"))
	env.MaxSteps, _ = strconv.Atoi(os.Getenv("DEPSOLVER_MAX_STEPS"))
	return env
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.BoolVar(&s.NoColors, "nocolor", s.NoColors, "disable colorized output")
	fs.BoolVar(&s.NoEmojis, "noemoji", s.NoEmojis, "disable emojis in output")
	fs.BoolVar(&s.PreferStable, "prefer-stable", s.PreferStable, "prefer stable versions over newer unstable ones")
	fs.BoolVar(&s.PreferLowest, "prefer-lowest", s.PreferLowest, "prefer the lowest matching versions")
	fs.BoolVar(&s.StrictConstraints, "strict", s.StrictConstraints, "treat unparsable constraints as matching nothing")
	fs.IntVar(&s.MaxSteps, "max-steps", s.MaxSteps, "abort the solve after this many steps, 0 for no limit")
	fs.StringVar(&s.LogFormat, "log-format", s.LogFormat, "log format: text or json")
}

// EnvVars returns a map of all depsolver related environment variables.
func (s *EnvSettings) EnvVars() map[string]string {
	return map[string]string{
		"DEPSOLVER_DEBUG":         fmt.Sprint(s.Debug),
		"DEPSOLVER_NOCOLORS":      fmt.Sprint(s.NoColors),
		"DEPSOLVER_NOEMOJIS":      fmt.Sprint(s.NoEmojis),
		"DEPSOLVER_PREFER_STABLE": fmt.Sprint(s.PreferStable),
		"DEPSOLVER_PREFER_LOWEST": fmt.Sprint(s.PreferLowest),
		"DEPSOLVER_STRICT":        fmt.Sprint(s.StrictConstraints),
		"DEPSOLVER_MAX_STEPS":     strconv.Itoa(s.MaxSteps),
		"DEPSOLVER_LOG_FORMAT":    s.LogFormat,
	}
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

func envBoolOr(name string, def bool) bool {
	if name == "" {
		return def
	}
	envVal := envOr(name, strconv.FormatBool(def))
	ret, err := strconv.ParseBool(envVal)
	if err != nil {
		return def
	}
	return ret
}
