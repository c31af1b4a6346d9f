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
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"
)

// ErrSolveAborted is returned when a solve is stopped before reaching a
// verdict, by the step limit, the context or the step hook.
var ErrSolveAborted = errors.New("solve aborted")

// Options tunes a Solver.
type Options struct {
	// MaxSteps bounds the propagate/decide iterations, 0 means unlimited.
	MaxSteps int
	// Context cancels a running solve.
	Context context.Context
	// StepHook is called once per iteration; a non-nil error aborts.
	StepHook func(Stats) error
}

// Stats counts the work done by the last solve.
type Stats struct {
	Rules        int
	Decisions    int
	Propagations int
	Conflicts    int
	LearnedRules int
	Backjumps    int
	MaxLevel     int
	Steps        int
	Duration     time.Duration
}

// Solver resolves a Request against a Pool with conflict driven clause
// learning. A Solver may run several solves at once: every solve owns its
// rules, decisions and watches.
type Solver struct {
	pool    *Pool
	policy  *Policy
	logger  log.Logger
	options Options

	mu    sync.Mutex
	stats Stats
}

// New returns a Solver over pool. A nil policy means NewPolicy() and a nil
// logger means log.Current.
func New(pool *Pool, policy *Policy, logger log.Logger) *Solver {
	if policy == nil {
		policy = NewPolicy()
	}
	if logger == nil {
		logger = log.Current
	}
	return &Solver{pool: pool, policy: policy, logger: logger}
}

// WithOptions sets the solve options and returns the solver.
func (s *Solver) WithOptions(o Options) *Solver {
	s.options = o
	return s
}

// Stats returns the statistics of the last finished solve.
func (s *Solver) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Solve resolves request. It returns a Transaction when the request can be
// satisfied and a non-empty ProblemSet when it cannot. The error is only set
// when the solve was aborted.
func (s *Solver) Solve(request *Request) (*Transaction, *ProblemSet, error) {
	start := time.Now()
	st := &solveState{
		Solver:     s,
		request:    request,
		learnedWhy: map[int][]*Rule{},
		keepLocked: map[PackageID]bool{},
	}
	defer func() {
		st.stats.Duration = time.Since(start)
		s.mu.Lock()
		s.stats = st.stats
		s.mu.Unlock()
		s.logger.Debugf("solver: %d rules, %d decisions, %d propagations, %d conflicts, %d learned, took %s",
			st.stats.Rules, st.stats.Decisions, st.stats.Propagations, st.stats.Conflicts,
			st.stats.LearnedRules, st.stats.Duration)
	}()

	problems, err := st.run()
	if err != nil {
		return nil, nil, err
	}
	if !problems.IsEmpty() {
		return nil, problems, nil
	}
	return newTransaction(s.pool, request, st.rules, st.installed()), nil, nil
}

// solveState is everything a single solve mutates.
type solveState struct {
	*Solver

	request   *Request
	rules     *RuleSet
	decisions *Decisions
	watches   *WatchGraph

	propagateIndex int
	// learned rule ID -> rules it was derived from
	learnedWhy map[int][]*Rule
	// locked IDs preferred by the decision step
	keepLocked map[PackageID]bool
	stats      Stats
}

func (st *solveState) run() (*ProblemSet, error) {
	st.rules = NewRuleGenerator(st.pool).Generate(st.request)
	st.stats.Rules = st.rules.Len()
	st.logRuleCounts()

	for _, r := range st.rules.Rules() {
		for _, l := range r.Literals {
			if l == 0 || !st.pool.Valid(l.ID()) {
				panic(errors.Errorf("solver: rule %s references unknown package %d", r, l.ID()))
			}
		}
	}

	problems := NewProblemSet()
	for _, r := range st.rules.OfType(RuleRootRequire) {
		if len(r.Literals) == 0 {
			problems.Add(newProblem(st.pool, []*Rule{r}))
		}
	}
	if !problems.IsEmpty() {
		return problems, nil
	}

	st.decisions = NewDecisions(st.pool.Len())
	st.watches = NewWatchGraph(st.pool.Len())
	for _, r := range st.rules.Rules() {
		st.watches.Insert(r)
	}
	st.setupKeepLocked()

	if conflict := st.makeAssertionDecisions(); conflict != nil {
		return st.unsatisfiable(conflict), nil
	}

	for {
		if err := st.step(); err != nil {
			return nil, err
		}

		if conflict := st.propagate(); conflict != nil {
			st.stats.Conflicts++
			if st.decisions.Level() == 0 {
				return st.unsatisfiable(conflict), nil
			}
			st.learn(conflict)
			continue
		}

		if !st.selectDecision() {
			return nil, nil
		}
	}
}

func (st *solveState) logRuleCounts() {
	counts := st.rules.Counts()
	types := make([]RuleType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, t.String()+"="+strconv.Itoa(counts[t]))
	}
	st.logger.Debugf("solver: generated %d rules (%s)", st.rules.Len(), strings.Join(parts, " "))
}

// step enforces the step limit, the context and the hook.
func (st *solveState) step() error {
	st.stats.Steps++
	if st.options.MaxSteps > 0 && st.stats.Steps > st.options.MaxSteps {
		return errors.Wrapf(ErrSolveAborted, "step limit %d reached", st.options.MaxSteps)
	}
	if ctx := st.options.Context; ctx != nil {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(ErrSolveAborted, "%s", err)
		}
	}
	if st.options.StepHook != nil {
		if err := st.options.StepHook(st.stats); err != nil {
			return errors.Wrapf(ErrSolveAborted, "%s", err)
		}
	}
	return nil
}

// setupKeepLocked records the locked packages the decision step tries to
// keep when only some packages may be updated.
func (st *solveState) setupKeepLocked() {
	if len(st.request.allowUpdate) == 0 {
		return
	}
	for _, p := range st.request.Locked() {
		if st.request.UpdateAllowed(p.Name) {
			continue
		}
		if id, ok := st.pool.FindPackage(p.Name, p.Version); ok {
			st.keepLocked[id] = true
		}
	}
}

// makeAssertionDecisions decides every unit rule at level 0.
func (st *solveState) makeAssertionDecisions() *Rule {
	for _, r := range st.rules.Rules() {
		if !r.IsAssertion() {
			continue
		}
		lit := r.Literals[0]
		if st.decisions.Conflict(lit) {
			st.stats.Conflicts++
			return r
		}
		if st.decisions.Undecided(lit.ID()) {
			st.decisions.Decide(lit, r)
			st.stats.Decisions++
		}
	}
	return nil
}

// propagate runs unit propagation over the undispatched trail entries.
func (st *solveState) propagate() *Rule {
	for st.propagateIndex < st.decisions.Len() {
		lit := st.decisions.At(st.propagateIndex).Literal
		st.propagateIndex++
		before := st.decisions.Len()
		conflict := st.watches.Propagate(st.decisions, lit)
		st.stats.Propagations += st.decisions.Len() - before
		if conflict != nil {
			return conflict
		}
	}
	return nil
}

// learn analyzes conflict, backjumps and asserts the learned rule.
func (st *solveState) learn(conflict *Rule) {
	literals, level, why := st.analyze(conflict)

	st.decisions.RevertToLevel(level)
	st.propagateIndex = st.decisions.Len()
	st.stats.Backjumps++

	rule := st.rules.Add(&Rule{Type: RuleLearned, Literals: literals})
	st.learnedWhy[rule.ID] = why
	st.watches.Insert(rule)
	st.stats.LearnedRules++
	st.stats.Rules = st.rules.Len()

	st.logger.Debugf("solver: conflict on %s, learned %s, backjump to level %d",
		conflict.Pretty(st.pool), rule.Pretty(st.pool), level)

	if !st.decisions.Decide(literals[0], rule) {
		panic(errors.Errorf("solver: learned rule %s is not unit after backjump", rule))
	}
	st.stats.Decisions++
}

// analyze resolves conflict back to the first unique implication point of
// the current level. The first returned literal is the negated UIP, the
// second (if any) belongs to the backjump level.
func (st *solveState) analyze(conflict *Rule) ([]Literal, int, []*Rule) {
	d := st.decisions
	level := d.Level()
	seen := make(map[PackageID]bool)
	why := []*Rule{conflict}
	var others []Literal
	pending := 0
	idx := d.Len() - 1
	rule := conflict

	for {
		for _, lit := range rule.Literals {
			id := lit.ID()
			if seen[id] {
				continue
			}
			decision, ok := d.Get(id)
			if !ok || decision.Level == 0 {
				continue
			}
			seen[id] = true
			if decision.Level == level {
				pending++
			} else {
				others = append(others, lit)
			}
		}
		if pending == 0 {
			panic(errors.Errorf("solver: empty resolvent while analyzing %s", conflict))
		}

		var entry TrailEntry
		for {
			if idx < 0 {
				panic(errors.Errorf("solver: trail exhausted while analyzing %s", conflict))
			}
			entry = d.At(idx)
			idx--
			if seen[entry.Literal.ID()] {
				break
			}
		}
		pending--
		if pending == 0 {
			literals := append([]Literal{entry.Literal.Negate()}, others...)
			return literals, st.backjumpLevel(literals), why
		}
		rule = entry.Rule
		if rule == nil {
			panic(errors.Errorf("solver: free decision %d reached before the UIP", entry.Literal))
		}
		why = append(why, rule)
	}
}

// backjumpLevel moves the highest level literal after the UIP into second
// position, so it gets watched, and returns its level.
func (st *solveState) backjumpLevel(literals []Literal) int {
	best, level := -1, 0
	for i := 1; i < len(literals); i++ {
		if l := st.decisions.LevelOf(literals[i].ID()); l > level || best < 0 {
			best, level = i, l
		}
	}
	if best > 1 {
		literals[1], literals[best] = literals[best], literals[1]
	}
	return level
}

// satisfied reports whether r holds when every undecided package is taken
// as not installed.
func (st *solveState) satisfied(r *Rule) bool {
	for _, l := range r.Literals {
		installed := st.decisions.DecidedInstall(l.ID())
		if l.Positive() == installed {
			return true
		}
	}
	return false
}

// selectDecision picks the next package to install. Request rules come
// before package rules. It returns false when every rule is satisfied.
func (st *solveState) selectDecision() bool {
	for pass := 0; pass < 2; pass++ {
		for _, r := range st.rules.Rules() {
			request := r.Type == RuleRootRequire || r.Type == RuleFixed
			if request != (pass == 0) || r.Type == RuleLearned || st.satisfied(r) {
				continue
			}

			var candidates []PackageID
			for _, l := range r.Literals {
				if l.Positive() && st.decisions.Undecided(l.ID()) {
					candidates = append(candidates, l.ID())
				}
			}
			if len(candidates) == 0 {
				continue
			}

			chosen := st.choose(r, candidates)
			st.decisions.IncrementLevel()
			st.decisions.Decide(NewLiteral(chosen, true), nil)
			st.stats.Decisions++
			if level := st.decisions.Level(); level > st.stats.MaxLevel {
				st.stats.MaxLevel = level
			}
			st.logger.Debugf("solver: level %d: install %s for %s", st.decisions.Level(),
				st.pool.Package(chosen), r.Pretty(st.pool))
			return true
		}
	}
	return false
}

func (st *solveState) choose(r *Rule, candidates []PackageID) PackageID {
	var required string
	if src := st.pool.Package(r.Source); src != nil && r.Type != RuleRootRequire {
		required = src.Name
	}
	for _, id := range candidates {
		if st.keepLocked[id] {
			return id
		}
	}
	return st.policy.SelectPreferredForRequirement(st.pool, candidates, required)[0]
}

// installed returns the real packages decided installed; an alias counts as
// its base.
func (st *solveState) installed() []PackageID {
	seen := map[PackageID]bool{}
	var ids []PackageID
	for _, id := range st.decisions.InstalledPackages() {
		base := st.pool.AliasBase(id)
		if !seen[base] {
			seen[base] = true
			ids = append(ids, base)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// unsatisfiable collects the rules that led to conflict at level 0 and
// turns them into a ProblemSet.
func (st *solveState) unsatisfiable(conflict *Rule) *ProblemSet {
	queue := []*Rule{conflict}
	visited := map[int]bool{conflict.ID: true}
	var chain []*Rule

	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]

		if r.Type == RuleLearned {
			for _, w := range st.learnedWhy[r.ID] {
				if !visited[w.ID] {
					visited[w.ID] = true
					queue = append(queue, w)
				}
			}
		} else {
			chain = append(chain, r)
		}

		for _, l := range r.Literals {
			if st.decisions == nil || st.decisions.Undecided(l.ID()) {
				continue
			}
			reason := st.decisions.Reason(l.ID())
			if reason != nil && !visited[reason.ID] {
				visited[reason.ID] = true
				queue = append(queue, reason)
			}
		}
	}

	sort.Slice(chain, func(i, j int) bool { return chain[i].ID < chain[j].ID })
	chain = st.minimize(chain)

	problems := NewProblemSet()
	problems.Add(newProblem(st.pool, chain))
	return problems
}
