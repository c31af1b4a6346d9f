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

package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

func TestParseOutputMode(t *testing.T) {
	is := assert.New(t)

	for in, want := range map[string]OutputMode{"json": JSON, "YAML": YAML, "table": Table, "": Table} {
		got, err := ParseOutputMode(in)
		is.NoError(err)
		is.Equal(want, got, in)
	}
	_, err := ParseOutputMode("xml")
	is.EqualError(err, `unknown output format "xml"`)
}

func TestFormatOutput(t *testing.T) {
	pool := buildPool(t,
		mock("a", "1.0.0", nil),
		mock("a", "1.1.0", nil),
		mock("b", "1.0.0", nil),
	)
	request := NewRequest()
	request.Require("a", "*")
	request.Require("b", "*")
	request.Lock(mock("a", "1.0.0", nil))
	request.Lock(mock("old", "1.0.0", nil))
	request.Lock(mock("kept", "1.0.0", nil))
	request.KeepUnneeded("kept")

	tr, problems, err := New(pool, nil, nil).Solve(request)
	assert.NoError(t, err)
	rs := NewPkgResultSet(pool, tr, problems)

	t.Run("json", func(t *testing.T) {
		is := assert.New(t)
		out, err := rs.FormatOutput(JSON)
		is.NoError(err)
		is.JSONEq(`{
			"status": "SAT",
			"toInstall": [{"name": "b", "version": "1.0.0", "repository": "ourrepo"}],
			"toUpdate": [{"name": "a", "from": "1.0.0", "to": "1.1.0"}],
			"toRemove": [{"name": "old", "version": "1.0.0", "repository": "ourrepo"}],
			"unneeded": [{"name": "kept", "version": "1.0.0", "repository": "ourrepo"}],
			"inconsistencies": []
		}`, out)
	})

	t.Run("table", func(t *testing.T) {
		is := assert.New(t)
		out, err := rs.FormatOutput(Table)
		is.NoError(err)
		is.Contains(out, "Status: SAT\n")
		is.Regexp(`OPERATION\s+NAME\s+VERSION`, out)
		is.Regexp(`remove\s+old\s+1\.0\.0`, out)
		is.Regexp(`unneeded\s+kept\s+1\.0\.0`, out)
		is.Regexp(`update\s+a\s+1\.0\.0 => 1\.1\.0`, out)
		is.Regexp(`install\s+b\s+1\.0\.0`, out)
	})

	t.Run("unsat", func(t *testing.T) {
		is := assert.New(t)
		request := NewRequest()
		request.Require("missing", "^1.0")
		tr, problems, err := New(pool, nil, nil).Solve(request)
		is.NoError(err)
		is.Nil(tr)

		rs := NewPkgResultSet(pool, tr, problems)
		is.False(rs.IsSAT())
		is.Equal([]*pkg.Pkg{}, rs.ToInstall)

		out, err := rs.FormatOutput(Table)
		is.NoError(err)
		is.Equal("Inconsistencies:\n  - Root request requires missing ^1.0, but no matching package was found\n", out)

		out, err = rs.FormatOutput(YAML)
		is.NoError(err)
		is.Contains(out, "status: UNSAT\n")
	})
}
