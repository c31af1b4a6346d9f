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

// Package depsolverpath calculates filesystem paths to depsolver's
// configuration, cache and data.
package depsolverpath

const lp = lazypath("depsolver")

// ConfigPath returns the path where depsolver stores configuration, such
// as the default repositories file.
func ConfigPath(elem ...string) string { return lp.configPath(elem...) }

// CachePath returns the path where depsolver stores cached objects.
func CachePath(elem ...string) string { return lp.cachePath(elem...) }

// DataPath returns the path where depsolver stores data.
func DataPath(elem ...string) string { return lp.dataPath(elem...) }

// RepositoryFile is the repositories file used when none is given.
func RepositoryFile() string { return ConfigPath("repositories.yaml") }
