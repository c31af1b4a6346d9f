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
	"bytes"
	"testing"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/stretchr/testify/assert"

	"github.com/rancher-sandbox/depsolver/internal/constraint"
	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

func TestPoolWhatProvides(t *testing.T) {
	b := NewPoolBuilder()
	a10 := b.AddPackage(mock("acme/A", "1.0.0", nil))
	a20 := b.AddPackage(mock("acme/a", "2.0.0", nil))
	prov := b.AddPackage(pkg.NewPkgMock("impl", "3.0.0", nil, nil, rel{"acme/a": "1.5.0"}, nil))
	repl := b.AddPackage(pkg.NewPkgMock("fork", "2.1.0", nil, nil, nil, rel{"acme/a": "self.version"}))
	wide := b.AddPackage(pkg.NewPkgMock("wide", "1.0.0", nil, nil, nil, rel{"acme/a": "*"}))
	pool, err := b.Build()
	assert.NoError(t, err)

	for _, tcase := range []struct {
		name       string
		constraint string
		want       []PackageID
	}{
		{name: "empty constraint matches everything", constraint: "", want: []PackageID{a10, a20, prov, repl, wide}},
		{name: "wildcard", constraint: "*", want: []PackageID{a10, a20, prov, repl, wide}},
		{name: "caret 1", constraint: "^1.0", want: []PackageID{a10, prov, wide}},
		{name: "self.version replace", constraint: "~2.1", want: []PackageID{repl, wide}},
		{name: "exact", constraint: "2.0.0", want: []PackageID{a20, wide}},
		{name: "nothing", constraint: ">=5.0", want: []PackageID{wide}},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)
			is.Equal(tcase.want, pool.WhatProvides("ACME/a", tcase.constraint))
		})
	}

	is := assert.New(t)
	is.Empty(pool.WhatProvides("unknown", "*"))
	is.Equal([]PackageID{a10, a20}, pool.PackagesByName("acme/a"))
}

func TestPoolLookups(t *testing.T) {
	is := assert.New(t)

	b := NewPoolBuilder()
	b.SetPriority("main", 0)
	b.SetPriority("mirror", 2)
	first := b.AddPackageFromRepo(mock("a", "1.0.0", nil), "mirror")
	second := b.AddPackageFromRepo(mock("a", "v1.1", nil), "main")
	alias, err := b.AddAlias("a", "1.0.0", "1.0.x-dev")
	is.NoError(err)
	_, err = b.AddAlias("a", "9.9.9", "10.0.0")
	is.ErrorIs(err, ErrAliasBaseMissing)
	pool, err := b.Build()
	is.NoError(err)

	is.Equal(3, pool.Len())
	is.Equal([]PackageID{first, second, alias}, pool.IDs())
	is.True(pool.Valid(alias))
	is.False(pool.Valid(0))
	is.False(pool.Valid(4))
	is.Nil(pool.Package(0))
	is.Panics(func() { pool.Entry(0) })

	is.True(pool.IsAlias(alias))
	is.Equal(first, pool.AliasBase(alias))
	is.Equal(second, pool.AliasBase(second))
	is.Equal(EntryAlias, pool.Entry(alias).Kind)
	is.Equal("1.0.0", pool.Package(alias).AliasOf)

	is.Equal("mirror", pool.Repository(first))
	is.Equal(2, pool.Priority(first))
	is.Equal(0, pool.Priority(second))

	id, ok := pool.FindPackage("A", "1.0.0")
	is.True(ok)
	is.Equal(first, id)
	// normalized versions match as well
	id, ok = pool.FindPackage("a", "1.1.0")
	is.True(ok)
	is.Equal(second, id)
	_, ok = pool.FindPackage("a", "1.0.x-dev")
	is.False(ok, "aliases are not found as real packages")

	is.Panics(func() { b.AddPackage(mock("late", "1.0.0", nil)) })
}

func TestPoolConstraint(t *testing.T) {
	is := assert.New(t)

	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.WarnOut = buf
	log.Current = logger

	pool, _ := NewPoolBuilder().Build()
	c, err := pool.Constraint("^abc")
	is.ErrorIs(err, constraint.ErrInvalidConstraint)
	is.Equal(constraint.MatchAll{}, c)
	is.Contains(buf.String(), "ignoring unparsable constraint")

	// cached: no second warning
	buf.Reset()
	_, err = pool.Constraint("^abc")
	is.Error(err)
	is.Empty(buf.String())

	strict, _ := NewPoolBuilder().Strict(true).Build()
	c, err = strict.Constraint("^abc")
	is.Error(err)
	is.Equal(constraint.MatchNone{}, c)

	c, err = pool.Constraint(">=1.0")
	is.NoError(err)
	is.True(constraint.Satisfies(c, constraint.MustParseVersion("1.2.0")))
}

func TestPoolDebugPrint(t *testing.T) {
	is := assert.New(t)
	pool := buildPool(t, mock("a", "1.0.0", nil))

	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.DebugOut = buf
	logger.Level = log.DebugLevel
	pool.DebugPrint(logger)
	is.Contains(buf.String(), "1: a 1.0.0")
}
