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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/rancher-sandbox/depsolver/pkg/cli"
)

const repoFlag = "--repositories testdata/repositories.yaml --noemoji --nocolor"

// cmdTestCase describes a test case that runs a depsolver command line.
type cmdTestCase struct {
	name      string
	cmd       string
	wantError bool
	// contains and matches are checked against the output
	contains []string
	matches  []string
	// Number of repeats (in case a feature was previously flaky and the test checks
	// it's now stably producing identical results). 0 means test is run exactly once.
	repeat int
}

func runTestCmd(t *testing.T, tests []cmdTestCase) {
	t.Helper()
	for _, tt := range tests {
		for i := 0; i <= tt.repeat; i++ {
			t.Run(tt.name, func(t *testing.T) {
				defer resetEnv()()
				is := assert.New(t)

				t.Logf("running cmd (attempt %d): %s", i+1, tt.cmd)
				_, out, err := executeCommandStdinC(tt.cmd)
				if tt.wantError {
					is.Error(err)
				} else {
					is.NoError(err)
				}
				for _, s := range tt.contains {
					is.Contains(out, s)
				}
				for _, re := range tt.matches {
					is.Regexp(re, out)
				}
			})
		}
	}
}

func executeCommandStdinC(cmd string) (*cobra.Command, string, error) {

	args, err := shellwords.Parse(cmd)

	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	root, err := newRootCmd(buf, buf, args)
	if err != nil {
		return nil, "", err
	}

	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	c, err := root.ExecuteC()
	result := buf.String()

	return c, result, err
}

func resetEnv() func() {
	origEnv := os.Environ()
	return func() {
		os.Clearenv()
		for _, pair := range origEnv {
			kv := strings.SplitN(pair, "=", 2)
			os.Setenv(kv[0], kv[1])
		}
		settings = cli.New()
	}
}

func TestResolveCmd(t *testing.T) {
	tests := []cmdTestCase{{
		name: "newest matching version is installed",
		cmd:  "resolve " + repoFlag + " --require acme/log=^1.0",
		matches: []string{
			`Status: SAT`,
			`install\s+acme/log\s+1\.2\.0`,
		},
		contains: []string{"1 operation(s), resolved in"},
	}, {
		name:     "requirement without constraint",
		cmd:      "resolve " + repoFlag + " --require acme/log",
		matches:  []string{`install\s+acme/log\s+2\.0\.0`},
		contains: []string{"1 operation(s)"},
	}, {
		name:    "prefer lowest",
		cmd:     "resolve " + repoFlag + " --require acme/log=^1.0 --prefer-lowest",
		matches: []string{`install\s+acme/log\s+1\.0\.0`},
	}, {
		name:     "nothing to do",
		cmd:      "resolve " + repoFlag + " --require acme/log=1.0.0 --lock acme/log=1.0.0",
		contains: []string{"Nothing to do"},
	}, {
		name: "request file",
		cmd:  "resolve " + repoFlag + " --request testdata/request.yaml",
		matches: []string{
			`update\s+acme/log\s+1\.0\.0 => 1\.2\.0`,
			`install\s+acme/app\s+1\.0\.0`,
		},
		contains: []string{"2 operation(s)"},
	}, {
		name:    "flags add to the request file",
		cmd:     "resolve " + repoFlag + " --request testdata/request.yaml --require acme/cli=^1.0",
		matches: []string{`install\s+acme/cli\s+1\.0\.0`},
	}, {
		name:    "unwanted locked package is removed",
		cmd:     "resolve " + repoFlag + " --require acme/log=^1.0 --lock legacy/tool=0.9.0",
		matches: []string{`remove\s+legacy/tool\s+0\.9\.0`, `install\s+acme/log\s+1\.2\.0`},
	}, {
		name:    "unwanted locked package is kept as unneeded",
		cmd:     "resolve " + repoFlag + " --require acme/log=^1.0 --lock legacy/tool=0.9.0 --keep-unneeded legacy/tool",
		matches: []string{`unneeded\s+legacy/tool\s+0\.9\.0`},
	}, {
		name:     "json output",
		cmd:      "resolve " + repoFlag + " --require acme/log=^1.0 -o json",
		contains: []string{`"status":"SAT"`, `"name":"acme/log"`, `"version":"1.2.0"`},
	}, {
		name:     "yaml output",
		cmd:      "resolve " + repoFlag + " --require acme/log=^1.0 --output yaml",
		contains: []string{"status: SAT", "- name: acme/log\n  version: 1.2.0"},
	}, {
		name: "tree output",
		cmd:  "resolve " + repoFlag + " --require acme/cli --platform php=8.1.0 -o tree",
		contains: []string{
			"Solution\n",
			"acme/cli 1.0.0",
			"acme/app 1.0.0",
			"php 8.1.0",
			"acme/log 1.2.0 (*)",
		},
	}, {
		name:      "missing platform package",
		cmd:       "resolve " + repoFlag + " --require acme/app",
		wantError: true,
		contains: []string{
			"your requirements could not be resolved",
			"php",
		},
	}, {
		name:    "ignored platform requirement",
		cmd:     "resolve " + repoFlag + " --require acme/app --ignore-platform-req 'php*'",
		matches: []string{`install\s+acme/app\s+1\.0\.0`},
	}, {
		name:      "not a platform package",
		cmd:       "resolve " + repoFlag + " --require acme/log --platform acme/log=1.0.0",
		wantError: true,
		contains:  []string{"acme/log is not a platform package"},
	}, {
		name:      "lock without version",
		cmd:       "resolve " + repoFlag + " --require acme/log --lock acme/log",
		wantError: true,
	}, {
		name:      "invalid output format",
		cmd:       "resolve " + repoFlag + " --require acme/log -o xml",
		wantError: true,
	}, {
		name:      "missing repositories file",
		cmd:       "resolve --repositories testdata/missing.yaml --require acme/log",
		wantError: true,
		contains:  []string{"couldn't load repositories file"},
	}, {
		name:      "request file with unknown keys",
		cmd:       "resolve " + repoFlag + " --request testdata/bad-request.yaml",
		wantError: true,
		contains:  []string{"couldn't parse request file"},
	}, {
		name:      "positional arguments are refused",
		cmd:       "resolve " + repoFlag + " acme/log",
		wantError: true,
	}, {
		name:    "stable output",
		cmd:     "resolve " + repoFlag + " --request testdata/request.yaml --require acme/cli=^1.0",
		matches: []string{`(?s)update\s+acme/log.*install\s+acme/app.*install\s+acme/cli`},
		repeat:  5,
	}}
	runTestCmd(t, tests)
}

func TestResolveCmdMetricsFile(t *testing.T) {
	defer resetEnv()()
	is := assert.New(t)

	path := filepath.Join(t.TempDir(), "depsolver.prom")
	_, _, err := executeCommandStdinC("resolve " + repoFlag + " --require acme/log --metrics-file " + path)
	is.NoError(err)

	b, err := os.ReadFile(path)
	is.NoError(err)
	is.Contains(string(b), `depsolver_solve_total{result="sat"} 1`)
	is.Contains(string(b), "depsolver_solve_duration_seconds_count 1")
}

func TestWhyCmd(t *testing.T) {
	tests := []cmdTestCase{{
		name:     "direct requirement",
		cmd:      "why acme/cli " + repoFlag + " --require acme/cli --platform php=8.1.0",
		contains: []string{"acme/cli 1.0.0\n"},
	}, {
		name:     "shortest chain",
		cmd:      "why acme/log " + repoFlag + " --require acme/cli --platform php=8.1.0",
		contains: []string{"acme/cli 1.0.0 -> acme/log 1.2.0\n"},
	}, {
		name:     "platform package",
		cmd:      "why php " + repoFlag + " --require acme/cli --platform php=8.1.0",
		contains: []string{"acme/cli 1.0.0 -> acme/app 1.0.0 -> php 8.1.0\n"},
	}, {
		name:      "package not in the solution",
		cmd:       "why legacy/tool " + repoFlag + " --require acme/log",
		wantError: true,
		contains:  []string{"legacy/tool is not part of the solution"},
	}, {
		name:      "unsatisfiable request",
		cmd:       "why acme/app " + repoFlag + " --require acme/app",
		wantError: true,
	}, {
		name:      "missing argument",
		cmd:       "why " + repoFlag + " --require acme/log",
		wantError: true,
	}}
	runTestCmd(t, tests)
}

func TestVersionCmd(t *testing.T) {
	tests := []cmdTestCase{{
		name:     "default",
		cmd:      "version",
		contains: []string{`version.BuildInfo{Version:"v0.1"`},
	}, {
		name:    "short",
		cmd:     "version --short",
		matches: []string{`v0\.1`},
	}, {
		name:     "template",
		cmd:      "version --template='Version: {{.Version}}'",
		contains: []string{"Version: v0.1"},
	}, {
		name:      "bad template",
		cmd:       "version --template='{{.Version'",
		wantError: true,
	}, {
		name:      "no arguments",
		cmd:       "version extra",
		wantError: true,
	}}
	runTestCmd(t, tests)
}

func TestRootCmdEnvironment(t *testing.T) {
	defer resetEnv()()
	is := assert.New(t)

	os.Setenv("DEPSOLVER_PREFER_LOWEST", "true")
	settings = cli.New()
	_, out, err := executeCommandStdinC("resolve " + repoFlag + " --require acme/log=^1.0")
	is.NoError(err)
	is.Regexp(`install\s+acme/log\s+1\.0\.0`, out)

	// flags win over the environment
	_, out, err = executeCommandStdinC("resolve " + repoFlag + " --require acme/log=^1.0 --prefer-lowest=false")
	is.NoError(err)
	is.Regexp(`install\s+acme/log\s+1\.2\.0`, out)
}

func TestRootCmdJSONLogs(t *testing.T) {
	defer resetEnv()()
	is := assert.New(t)

	_, out, err := executeCommandStdinC("resolve " + repoFlag + " --require acme/log --log-format json")
	is.NoError(err)
	is.Contains(out, `"level":"info"`)
	is.Contains(out, `1 operation(s), resolved in`)
}

func TestSplitPair(t *testing.T) {
	for _, tcase := range []struct {
		in, def   string
		name, val string
		wantErr   bool
	}{
		{in: "acme/log=^1.0", name: "acme/log", val: "^1.0"},
		{in: "acme/log", def: "*", name: "acme/log", val: "*"},
		{in: " acme/log = 1.0.0 ", name: "acme/log", val: "1.0.0"},
		{in: "=1.0", wantErr: true},
		{in: "acme/log=", wantErr: true},
	} {
		t.Run(tcase.in, func(t *testing.T) {
			is := assert.New(t)
			name, val, err := splitPair(tcase.in, tcase.def)
			if tcase.wantErr {
				is.Error(err)
				return
			}
			is.NoError(err)
			is.Equal(tcase.name, name)
			is.Equal(tcase.val, val)
		})
	}
}

func TestSearchCmd(t *testing.T) {
	tests := []cmdTestCase{{
		name:     "keyword",
		cmd:      "search acme/log -r testdata/repositories.yaml",
		matches:  []string{`acme/log\s+2\.0\.0\s+main`},
		contains: []string{"NAME", "VERSION", "REPOSITORY"},
	}, {
		name:    "versions",
		cmd:     "search acme/log --versions -r testdata/repositories.yaml",
		matches: []string{`acme/log\s+1\.0\.0\s+main`, `acme/log\s+1\.2\.0\s+main`},
	}, {
		name:    "constraint",
		cmd:     "search acme/log --version '^1.0' -r testdata/repositories.yaml",
		matches: []string{`acme/log\s+1\.2\.0\s+main`},
	}, {
		name:     "regexp",
		cmd:      "search '^acme/c' --regexp -r testdata/repositories.yaml -o json",
		contains: []string{`[{"name":"acme/cli","version":"1.0.0","repository":"main"}]`},
	}, {
		name:     "no results",
		cmd:      "search syzygy -r testdata/repositories.yaml",
		contains: []string{"No results found"},
	}, {
		name:      "tree output is refused",
		cmd:       "search acme -r testdata/repositories.yaml -o tree",
		wantError: true,
	}, {
		name:      "two keywords",
		cmd:       "search acme log -r testdata/repositories.yaml",
		wantError: true,
	}}
	runTestCmd(t, tests)
}

func TestResolveCmdDefaultRepositories(t *testing.T) {
	defer resetEnv()()
	is := assert.New(t)

	// no repositories file in the configuration directory
	os.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, out, err := executeCommandStdinC("resolve --noemoji --require php --platform php=8.1.0")
	is.NoError(err)
	is.Contains(out, "Nothing to do")

	_, _, err = executeCommandStdinC("resolve --noemoji --require acme/log")
	is.ErrorContains(err, "your requirements could not be resolved")
}

func TestLintCmd(t *testing.T) {
	tests := []cmdTestCase{{
		name:     "good index",
		cmd:      "lint testdata/index.yaml --noemoji",
		contains: []string{"==> Linting testdata/index.yaml\n", "1 index file(s) linted, 0 error(s)"},
	}, {
		name:      "bad index",
		cmd:       "lint testdata/lint-bad-index.yaml",
		wantError: true,
		contains: []string{
			"==> Linting testdata/lint-bad-index.yaml",
			"[ERROR]",
			"apiVersion is required",
			"[WARNING]",
			"package requires itself",
			"1 index file(s) linted, 5 error(s)",
		},
	}, {
		name:      "strict",
		cmd:       "lint testdata/lint-bad-index.yaml --strict",
		wantError: true,
		contains:  []string{"1 index file(s) linted, 8 error(s)"},
	}, {
		name:      "missing file",
		cmd:       "lint testdata/index.yaml testdata/missing.yaml",
		wantError: true,
		contains:  []string{"1 index file(s) linted, 1 error(s)"},
	}, {
		name:      "no arguments",
		cmd:       "lint",
		wantError: true,
	}}
	runTestCmd(t, tests)
}
