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
	"os"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/depsolver/pkg/lint"
	"github.com/rancher-sandbox/depsolver/pkg/lint/support"
)

// Lint is the action for checking that index files are well-formed.
type Lint struct {
	// Strict makes warnings fail the lint.
	Strict bool
}

// LintResult is the result of Lint
type LintResult struct {
	TotalIndexesLinted int
	Messages           []support.Message
	Errors             []error
}

// NewLint creates a new Lint object.
func NewLint() *Lint {
	return &Lint{}
}

// Run executes the lint rules against the given index files.
func (l *Lint) Run(paths []string) *LintResult {
	lowestTolerance := support.ErrorSev
	if l.Strict {
		lowestTolerance = support.WarningSev
	}
	result := &LintResult{}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			result.Errors = append(result.Errors, errors.Wrapf(err, "unable to lint %s", path))
			continue
		}

		linter := lint.All(path)
		result.Messages = append(result.Messages, linter.Messages...)
		result.TotalIndexesLinted++
		for _, msg := range linter.Messages {
			if msg.Severity >= lowestTolerance {
				result.Errors = append(result.Errors, msg.Err)
			}
		}
	}
	return result
}

// HasWarningsOrErrors checks is LintResult has any warnings or errors
func HasWarningsOrErrors(result *LintResult) bool {
	for _, msg := range result.Messages {
		if msg.Severity > support.InfoSev {
			return true
		}
	}
	return len(result.Errors) > 0
}
