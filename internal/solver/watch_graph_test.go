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

func TestWatchGraphPropagate(t *testing.T) {

	for _, tcase := range []struct {
		name     string
		rules    []*Rule
		decide   []Literal
		conflict int // index into rules, -1 for none
		forced   []Literal
	}{
		{
			name:     "unit propagation forces the last literal",
			rules:    []*Rule{NewRule(RulePackageRequires, -1, 2, 3)},
			decide:   []Literal{1, -2},
			conflict: -1,
			forced:   []Literal{3},
		},
		{
			name:     "satisfied rules force nothing",
			rules:    []*Rule{NewRule(RulePackageRequires, -1, 2, 3)},
			decide:   []Literal{2, 1},
			conflict: -1,
		},
		{
			name:     "chained propagation",
			rules:    []*Rule{NewRule(RulePackageRequires, -1, 2), NewRule(RulePackageConflict, -2, -3)},
			decide:   []Literal{1},
			conflict: -1,
			forced:   []Literal{2, -3},
		},
		{
			name:     "every literal false is a conflict",
			rules:    []*Rule{NewRule(RulePackageRequires, -1, 2), NewRule(RulePackageConflict, -1, -2)},
			decide:   []Literal{1},
			conflict: 1,
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			is := assert.New(t)

			d := NewDecisions(4)
			g := NewWatchGraph(4)
			for _, r := range tcase.rules {
				g.Insert(r)
			}

			var conflict *Rule
			for _, lit := range tcase.decide {
				is.True(d.Decide(lit, nil))
				for i := d.Len() - 1; i < d.Len() && conflict == nil; i++ {
					conflict = g.Propagate(d, d.At(i).Literal)
				}
				if conflict != nil {
					break
				}
			}

			if tcase.conflict < 0 {
				is.Nil(conflict)
			} else {
				is.Equal(tcase.rules[tcase.conflict], conflict)
			}
			for _, lit := range tcase.forced {
				is.True(d.Satisfied(lit), "%d not forced", lit)
				is.NotNil(d.Reason(lit.ID()))
			}
		})
	}
}

func TestWatchGraphSkipsShortRules(t *testing.T) {
	is := assert.New(t)

	d := NewDecisions(2)
	g := NewWatchGraph(2)
	g.Insert(NewRule(RuleFixed, 1))
	g.Insert(NewRule(RuleRootRequire))

	is.True(d.Decide(-1, nil))
	is.Nil(g.Propagate(d, -1))
	is.True(d.Undecided(2))
}
