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
	"fmt"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"

	pkg "github.com/rancher-sandbox/depsolver/internal/package"
)

func ExampleSolver() {

	// Build the pool of candidate packages:
	b := NewPoolBuilder()
	b.AddPackage(pkg.NewPkgMock("acme/log", "1.0.0", nil, nil, nil, nil))
	b.AddPackage(pkg.NewPkgMock("acme/log", "1.2.0", nil, nil, nil, nil))
	b.AddPackage(pkg.NewPkgMock("acme/log", "2.0.0", nil, nil, nil, nil))
	b.AddPackage(pkg.NewPkgMock("acme/app", "1.0.0",
		// dependency relations of acme/app:
		map[string]string{"acme/log": "^1.0"},
		nil, nil, nil))
	pool, err := b.Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	// create our own Logger that satisfies impl/cli.Logger, but with a buffer for tests
	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.InfoOut = buf
	logger.WarnOut = buf
	logger.ErrorOut = buf
	logger.DebugOut = buf
	log.Current = logger
	// logger.Level = log.DebugLevel

	// acme/app is wanted, legacy/tool is installed but not wanted anymore:
	request := NewRequest()
	request.Require("acme/app", "*")
	request.Lock(pkg.NewPkgMock("legacy/tool", "0.9.0", nil, nil, nil, nil))

	// Call the solver
	s := New(pool, NewPolicy(), logger)
	transaction, problems, err := s.Solve(request)
	if err != nil {
		fmt.Println(err)
		return
	}

	out, _ := NewPkgResultSet(pool, transaction, problems).FormatOutput(YAML)
	fmt.Println(out)

	// Output:
	// status: SAT
	// toinstall:
	// - name: acme/log
	//   version: 1.2.0
	//   repository: ourrepo
	// - name: acme/app
	//   version: 1.0.0
	//   require:
	//     acme/log: ^1.0
	//   repository: ourrepo
	// toupdate: []
	// toremove:
	// - name: legacy/tool
	//   version: 0.9.0
	//   repository: ourrepo
	// unneeded: []
	// inconsistencies: []
}

func ExampleProblemSet_Describe() {
	b := NewPoolBuilder()
	b.AddPackage(pkg.NewPkgMock("acme/log", "2.0.0", nil, nil, nil, nil))
	pool, _ := b.Build()

	request := NewRequest()
	request.Require("acme/log", "^1.0")

	_, problems, _ := New(pool, nil, nil).Solve(request)
	fmt.Println(problems)
	fmt.Println(problems.Describe(pool))

	// Output:
	// 1 problem(s) found
	// Problem 1:
	//   - Root request requires acme/log ^1.0 -> found acme/log[2.0.0] but it does not match the constraint
}

func ExampleTransaction_Operations() {
	b := NewPoolBuilder()
	b.AddPackage(pkg.NewPkgMock("a", "1.0.0", nil, nil, nil, nil))
	b.AddPackage(pkg.NewPkgMock("a", "1.2.0", nil, nil, nil, nil))
	b.AddPackage(pkg.NewPkgMock("a", "2.0.0", nil, nil, nil, nil))
	pool, _ := b.Build()

	request := NewRequest()
	request.Require("a", "<2.0")
	request.Lock(pkg.NewPkgMock("a", "1.0.0", nil, nil, nil, nil))

	transaction, _, _ := New(pool, nil, nil).Solve(request)
	for _, op := range transaction.Operations() {
		fmt.Println(op)
	}

	// Output:
	// update a (1.0.0 => 1.2.0)
}
