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

package main

import (
	"fmt"

	"github.com/disiqueira/gotree"

	pkg "github.com/rancher-sandbox/depsolver/internal/package"
	"github.com/rancher-sandbox/depsolver/internal/solver"
)

// renderTree prints the solution as the dependency tree of the requested
// packages. A package already printed higher in the tree is not expanded
// again and is marked with (*).
func renderTree(t *solver.Transaction) string {
	tree := gotree.New("Solution")
	expanded := map[*pkg.Pkg]bool{}

	var add func(parent gotree.Tree, p *pkg.Pkg, root bool)
	add = func(parent gotree.Tree, p *pkg.Pkg, root bool) {
		name := p.Name
		if root {
			name = green(name)
		}
		label := fmt.Sprintf("%s %s", name, blue(p.Version))
		if expanded[p] {
			parent.Add(label + " (*)")
			return
		}
		expanded[p] = true
		node := parent.Add(label)
		for _, dep := range t.Dependencies(p) {
			add(node, dep, false)
		}
	}
	for _, root := range t.Roots() {
		add(tree, root, true)
	}
	return tree.Print()
}
