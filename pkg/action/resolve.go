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
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/depsolver/internal/metrics"
	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// Resolve is the action for resolving a request against repositories.
type Resolve struct {
	cfg *Configuration

	// Repositories is the repositories file to load, none when empty.
	Repositories string
	// Request is what to resolve.
	Request *RequestFile
}

// ResolveResult is the outcome of a Resolve run. Exactly one of
// Transaction and Problems is set.
type ResolveResult struct {
	Pool        *solver.Pool
	Request     *solver.Request
	Transaction *solver.Transaction
	Problems    *solver.ProblemSet
	Stats       solver.Stats
}

// NewResolve creates a new Resolve object with the given configuration.
func NewResolve(cfg *Configuration) *Resolve {
	return &Resolve{
		cfg:     cfg,
		Request: &RequestFile{},
	}
}

// Run loads the world, builds the request and solves it. An unsatisfiable
// request is not an error: the result carries the problems.
func (r *Resolve) Run(ctx context.Context) (*ResolveResult, error) {
	var repos *repo.File
	if r.Repositories != "" {
		f, err := repo.LoadFile(r.Repositories)
		if err != nil {
			return nil, err
		}
		repos = f
	}

	b := solver.NewPoolBuilder()
	if err := r.cfg.BuildWorld(b, repos, r.Request); err != nil {
		return nil, err
	}
	pool, err := b.Build()
	if err != nil {
		return nil, err
	}
	if r.cfg.Settings.Debug {
		pool.DebugPrint(r.cfg.Log)
	}

	request, err := r.cfg.BuildRequest(pool, r.Request)
	if err != nil {
		return nil, err
	}
	if r.cfg.Settings.Debug {
		r.cfg.Log.Debugf("request: %s", spew.Sdump(r.Request))
	}

	policy := solver.NewPolicy().
		PreferStable(r.cfg.Settings.PreferStable).
		PreferLowest(r.cfg.Settings.PreferLowest)
	s := solver.New(pool, policy, r.cfg.Log).WithOptions(solver.Options{
		MaxSteps: r.cfg.Settings.MaxSteps,
		Context:  ctx,
	})

	tr, problems, err := s.Solve(request)
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.Observe(s.Stats(), metrics.ResultOf(problems, err))
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot resolve request")
	}
	return &ResolveResult{
		Pool:        pool,
		Request:     request,
		Transaction: tr,
		Problems:    problems,
		Stats:       s.Stats(),
	}, nil
}

// Err returns the problems of an unsatisfiable result as an error, nil
// otherwise.
func (res *ResolveResult) Err() error {
	if res.Problems.IsEmpty() {
		return nil
	}
	return &solver.SolverProblemsError{Problems: res.Problems, Pool: res.Pool}
}
