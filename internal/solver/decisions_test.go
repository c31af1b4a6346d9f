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
)

func TestDecisions(t *testing.T) {
	is := assert.New(t)

	d := NewDecisions(4)
	is.Equal(0, d.Level())
	is.True(d.Undecided(1))

	forcing := NewRule(RulePackageRequires, NewLiteral(2, false), NewLiteral(1, true))
	is.True(d.Decide(NewLiteral(2, true), nil))
	d.IncrementLevel()
	is.True(d.Decide(NewLiteral(1, true), forcing))
	is.True(d.Decide(NewLiteral(3, false), nil))

	is.True(d.Satisfied(1))
	is.True(d.Conflict(-1))
	is.True(d.Satisfied(-3))
	is.False(d.Satisfied(4))
	is.False(d.Conflict(4))
	is.True(d.DecidedInstall(2))
	is.False(d.DecidedInstall(3))
	is.Equal(0, d.LevelOf(2))
	is.Equal(1, d.LevelOf(1))
	is.Equal(forcing, d.Reason(1))
	is.Nil(d.Reason(2))
	is.Nil(d.Reason(4))

	dec, ok := d.Get(3)
	is.True(ok)
	is.Equal(Decision{Installed: false, Level: 1}, dec)

	// holding twice is fine, the opposite fails without changes
	is.True(d.Decide(NewLiteral(1, true), nil))
	is.False(d.Decide(NewLiteral(1, false), nil))
	is.Equal(3, d.Len())
	is.Equal(TrailEntry{Literal: 1, Rule: forcing}, d.At(1))
	is.Equal([]PackageID{1, 2}, d.InstalledPackages())

	d.RevertToLevel(0)
	is.Equal(0, d.Level())
	is.Equal(1, d.Len())
	is.True(d.Undecided(1))
	is.True(d.Undecided(3))
	is.True(d.Decided(2))
	is.Equal([]PackageID{2}, d.InstalledPackages())
}

func TestDecisionsUnknownPackage(t *testing.T) {
	is := assert.New(t)

	d := NewDecisions(2)
	is.Panics(func() { d.Decide(NewLiteral(3, true), nil) })
	is.Panics(func() { d.Satisfied(-7) })
	is.Panics(func() { d.Decide(0, nil) })
}
