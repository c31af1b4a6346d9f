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

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/rancher-sandbox/depsolver/internal/solver"
)

func TestRecorderObserve(t *testing.T) {
	is := assert.New(t)

	recorder := NewRecorder(nil)
	recorder.Observe(solver.Stats{Decisions: 5, Propagations: 40, Conflicts: 2, LearnedRules: 2, Duration: 3 * time.Millisecond}, ResultSAT)
	recorder.Observe(solver.Stats{Decisions: 1}, ResultUNSAT)
	recorder.Observe(solver.Stats{}, ResultSAT)

	is.Equal(float64(2), testutil.ToFloat64(recorder.solveTotal.WithLabelValues("sat")))
	is.Equal(float64(1), testutil.ToFloat64(recorder.solveTotal.WithLabelValues("unsat")))
	is.Equal(float64(0), testutil.ToFloat64(recorder.solveTotal.WithLabelValues("aborted")))

	err := testutil.CollectAndCompare(recorder.conflicts, strings.NewReader(`
# HELP depsolver_conflicts Conflicts met per solve
# TYPE depsolver_conflicts histogram
depsolver_conflicts_bucket{le="1"} 2
depsolver_conflicts_bucket{le="4"} 3
depsolver_conflicts_bucket{le="16"} 3
depsolver_conflicts_bucket{le="64"} 3
depsolver_conflicts_bucket{le="256"} 3
depsolver_conflicts_bucket{le="1024"} 3
depsolver_conflicts_bucket{le="4096"} 3
depsolver_conflicts_bucket{le="16384"} 3
depsolver_conflicts_bucket{le="65536"} 3
depsolver_conflicts_bucket{le="262144"} 3
depsolver_conflicts_bucket{le="+Inf"} 3
depsolver_conflicts_sum 2
depsolver_conflicts_count 3
`))
	is.NoError(err)

	// propagations are not folded into decisions
	err = testutil.CollectAndCompare(recorder.decisions, strings.NewReader(`
# HELP depsolver_decisions Free choices taken per solve
# TYPE depsolver_decisions histogram
depsolver_decisions_bucket{le="1"} 2
depsolver_decisions_bucket{le="4"} 2
depsolver_decisions_bucket{le="16"} 3
depsolver_decisions_bucket{le="64"} 3
depsolver_decisions_bucket{le="256"} 3
depsolver_decisions_bucket{le="1024"} 3
depsolver_decisions_bucket{le="4096"} 3
depsolver_decisions_bucket{le="16384"} 3
depsolver_decisions_bucket{le="65536"} 3
depsolver_decisions_bucket{le="262144"} 3
depsolver_decisions_bucket{le="+Inf"} 3
depsolver_decisions_sum 6
depsolver_decisions_count 3
`))
	is.NoError(err)
}

func TestRecorderRegister(t *testing.T) {
	is := assert.New(t)

	reg := prometheus.NewPedanticRegistry()
	recorder := NewRecorder(reg)
	recorder.Observe(solver.Stats{}, ResultAborted)

	n, err := testutil.GatherAndCount(reg)
	is.NoError(err)
	is.Equal(6, n)
	is.Panics(func() { NewRecorder(reg) }, "collectors are registered once")
}

func TestResultOf(t *testing.T) {
	is := assert.New(t)

	problems := solver.NewProblemSet()
	is.Equal(ResultSAT, ResultOf(nil, nil))
	is.Equal(ResultSAT, ResultOf(problems, nil))
	is.Equal(ResultAborted, ResultOf(nil, errors.Wrap(solver.ErrSolveAborted, "step limit")))

	pool, err := solver.NewPoolBuilder().Build()
	is.NoError(err)
	request := solver.NewRequest()
	request.Require("missing", "*")
	_, problems, err = solver.New(pool, nil, nil).Solve(request)
	is.Equal(ResultUNSAT, ResultOf(problems, err))
}
