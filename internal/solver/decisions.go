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

import "github.com/pkg/errors"

// Decision is the state of one package on the trail.
type Decision struct {
	Installed bool
	Level     int
}

// TrailEntry is one decided literal and the rule that forced it, nil for
// free choices.
type TrailEntry struct {
	Literal Literal
	Rule    *Rule
}

type decisionSlot struct {
	decided  bool
	decision Decision
	position int
}

// Decisions is the decision trail of a solve, plus an index by package.
type Decisions struct {
	slots []decisionSlot
	trail []TrailEntry
	level int
}

// NewDecisions returns an empty trail for a pool of size n.
func NewDecisions(n int) *Decisions {
	return &Decisions{slots: make([]decisionSlot, n+1)}
}

func (d *Decisions) slot(id PackageID) *decisionSlot {
	if id <= 0 || int(id) >= len(d.slots) {
		panic(errors.Errorf("solver: literal for unknown package %d", id))
	}
	return &d.slots[id]
}

// Decide puts literal on the trail at the current level. Deciding a literal
// already held is a no-op; deciding the opposite fails and changes nothing.
func (d *Decisions) Decide(literal Literal, rule *Rule) bool {
	if literal == 0 {
		panic("solver: literal 0")
	}
	s := d.slot(literal.ID())
	if s.decided {
		return s.decision.Installed == literal.Positive()
	}
	s.decided = true
	s.decision = Decision{Installed: literal.Positive(), Level: d.level}
	s.position = len(d.trail)
	d.trail = append(d.trail, TrailEntry{Literal: literal, Rule: rule})
	return true
}

// Satisfied reports whether literal holds.
func (d *Decisions) Satisfied(literal Literal) bool {
	s := d.slot(literal.ID())
	return s.decided && s.decision.Installed == literal.Positive()
}

// Conflict reports whether the opposite of literal holds.
func (d *Decisions) Conflict(literal Literal) bool {
	s := d.slot(literal.ID())
	return s.decided && s.decision.Installed != literal.Positive()
}

// Decided reports whether id has a decision.
func (d *Decisions) Decided(id PackageID) bool {
	return d.slot(id).decided
}

// Undecided reports whether id has no decision yet.
func (d *Decisions) Undecided(id PackageID) bool {
	return !d.slot(id).decided
}

// DecidedInstall reports whether id was decided installed.
func (d *Decisions) DecidedInstall(id PackageID) bool {
	s := d.slot(id)
	return s.decided && s.decision.Installed
}

// Get returns the decision for id.
func (d *Decisions) Get(id PackageID) (Decision, bool) {
	s := d.slot(id)
	return s.decision, s.decided
}

// Level returns the current decision level.
func (d *Decisions) Level() int {
	return d.level
}

// IncrementLevel opens a new decision level.
func (d *Decisions) IncrementLevel() {
	d.level++
}

// LevelOf returns the level id was decided at.
func (d *Decisions) LevelOf(id PackageID) int {
	return d.slot(id).decision.Level
}

// Reason returns the rule that forced the decision of id, nil for free
// choices and undecided packages.
func (d *Decisions) Reason(id PackageID) *Rule {
	s := d.slot(id)
	if !s.decided {
		return nil
	}
	return d.trail[s.position].Rule
}

// Len returns the trail length.
func (d *Decisions) Len() int {
	return len(d.trail)
}

// At returns the i-th trail entry.
func (d *Decisions) At(i int) TrailEntry {
	return d.trail[i]
}

// RevertToLevel undoes every decision taken above level.
func (d *Decisions) RevertToLevel(level int) {
	for len(d.trail) > 0 {
		last := d.trail[len(d.trail)-1]
		s := d.slot(last.Literal.ID())
		if s.decision.Level <= level {
			break
		}
		*s = decisionSlot{}
		d.trail = d.trail[:len(d.trail)-1]
	}
	d.level = level
}

// InstalledPackages returns the IDs decided installed, ascending.
func (d *Decisions) InstalledPackages() []PackageID {
	var ids []PackageID
	for i := 1; i < len(d.slots); i++ {
		if d.slots[i].decided && d.slots[i].decision.Installed {
			ids = append(ids, PackageID(i))
		}
	}
	return ids
}
