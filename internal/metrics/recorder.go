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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rancher-sandbox/depsolver/internal/solver"
)

// Result is the outcome label of a solve.
type Result string

const (
	ResultSAT     Result = "sat"
	ResultUNSAT   Result = "unsat"
	ResultAborted Result = "aborted"
)

// Recorder stores the metrics of the solves it observes.
type Recorder struct {
	solveTotal    *prometheus.CounterVec
	solveDuration prometheus.Histogram
	decisions     prometheus.Histogram
	propagations  prometheus.Histogram
	conflicts     prometheus.Histogram
	learnedRules  prometheus.Histogram
}

// NewRecorder creates the solver collectors and registers them on reg, when
// reg is not nil. Passing nil allows re-using the recorder in tests.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	solveTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depsolver_solve_total",
			Help: "Total number of solves, grouped by result: 'sat', 'unsat' and 'aborted'",
		}, []string{"result"})

	solveDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "depsolver_solve_duration_seconds",
			Help:    "Wall time of a solve in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		})

	// counts per solve
	countBuckets := prometheus.ExponentialBuckets(1, 4, 10)
	decisions := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "depsolver_decisions",
			Help:    "Free choices taken per solve",
			Buckets: countBuckets,
		})
	propagations := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "depsolver_propagations",
			Help:    "Literals forced by unit propagation per solve",
			Buckets: countBuckets,
		})
	conflicts := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "depsolver_conflicts",
			Help:    "Conflicts met per solve",
			Buckets: countBuckets,
		})
	learnedRules := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "depsolver_learned_rules",
			Help:    "Rules learned from conflicts per solve",
			Buckets: countBuckets,
		})

	if reg != nil {
		reg.MustRegister(
			solveTotal,
			solveDuration,
			decisions,
			propagations,
			conflicts,
			learnedRules,
		)
	}

	return &Recorder{
		solveTotal:    solveTotal,
		solveDuration: solveDuration,
		decisions:     decisions,
		propagations:  propagations,
		conflicts:     conflicts,
		learnedRules:  learnedRules,
	}
}

// Observe records one finished solve.
func (r *Recorder) Observe(stats solver.Stats, result Result) {
	r.solveTotal.WithLabelValues(string(result)).Inc()
	r.solveDuration.Observe(stats.Duration.Seconds())
	r.decisions.Observe(float64(stats.Decisions))
	r.propagations.Observe(float64(stats.Propagations))
	r.conflicts.Observe(float64(stats.Conflicts))
	r.learnedRules.Observe(float64(stats.LearnedRules))
}

// ResultOf maps the return values of solver.Solver.Solve to a Result.
func ResultOf(problems *solver.ProblemSet, err error) Result {
	switch {
	case err != nil:
		return ResultAborted
	case !problems.IsEmpty():
		return ResultUNSAT
	}
	return ResultSAT
}
