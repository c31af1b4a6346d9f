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

/*
Package solver resolves package requirements into a consistent set of
package versions to install.

A package is one version of one name (e.g. acme/log 1.2.0) plus the
relations it declares against other names: require, conflict, provide and
replace, each a map from name to version constraint.

To resolve a request, for example "install acme/app ^2.0", we:

 1. Build a Pool of every candidate package with a PoolBuilder. Each entry
 gets a dense PackageID, which is also the magnitude of its SAT literals.
 Aliases expose an existing package under another version.

 2. Walk the requirement graph reachable from the Request with a
 RuleGenerator, turning it into clauses (Rules):
 - a root requirement is satisfied by at least one of its providers,
 - installing a package requires one provider of each requirement,
 - conflicting packages, replacers and replaced packages, and two
   versions of one name cannot be installed together.

 3. Run conflict driven clause learning over the rules: decide packages
 following the Policy (stable and newest first by default), propagate
 units through two watched literals, learn a clause from every conflict and
 backjump. A conflict at level 0 means the request cannot be satisfied, and
 the rules leading to it are reported as a Problem.

 4. Diff the installed set against the locked packages of the request into
 an ordered Transaction of installs, updates and removals.

*/
package solver
