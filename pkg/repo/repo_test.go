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

package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRepositoriesFile = "testdata/repositories.yaml"

func TestFile(t *testing.T) {
	is := assert.New(t)

	rf := NewFile()
	rf.Add(
		&Entry{Name: "stable", Path: "/srv/stable/index.yaml"},
		&Entry{Name: "incubator", Path: "/srv/incubator/index.yaml", Priority: 3},
	)

	is.Len(rf.Repositories, 2)
	is.False(rf.Has("nosuchrepo"))
	is.True(rf.Has("incubator"))
	is.Equal("/srv/stable/index.yaml", rf.Get("stable").Path)

	rf.Update(&Entry{Name: "stable", Path: "/srv/stable/v2.yaml", Priority: 5}, &Entry{Name: "new", Path: "new.yaml"})
	is.Len(rf.Repositories, 3)
	is.Equal("/srv/stable/v2.yaml", rf.Get("stable").Path)

	var names []string
	for _, e := range rf.Sorted() {
		names = append(names, e.Name)
	}
	is.Equal([]string{"new", "incubator", "stable"}, names)

	is.True(rf.Remove("incubator"))
	is.False(rf.Remove("incubator"))
	is.Len(rf.Repositories, 2)
}

func TestLoadFile(t *testing.T) {
	is := assert.New(t)

	file, err := LoadFile(testRepositoriesFile)
	require.NoError(t, err)

	is.Equal(APIVersionV1, file.APIVersion)
	is.Len(file.Repositories, 2)
	mirror := file.Get("mirror")
	is.Equal(filepath.Join("testdata", "mirror-index.yaml"), mirror.Path)
	is.Equal(1, mirror.Priority)
	is.Equal("main", file.Sorted()[0].Name)
}

func TestWriteFile(t *testing.T) {
	is := assert.New(t)

	rf := NewFile()
	rf.Add(&Entry{Name: "main", Path: "/srv/main.yaml", Priority: 2})

	path := filepath.Join(t.TempDir(), "sub", "repositories.yaml")
	is.NoError(rf.WriteFile(path, 0644))

	loaded, err := LoadFile(path)
	is.NoError(err)
	is.Equal(rf.Repositories, loaded.Repositories)
}

func TestRepoNotExists(t *testing.T) {
	is := assert.New(t)

	_, err := LoadFile("/this/path/does/not/exist.yaml")
	is.ErrorContains(err, "couldn't load repositories file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	is.NoError(os.WriteFile(path, []byte("repositories: [{name: x, url: http://example.com}]"), 0644))
	_, err = LoadFile(path)
	is.ErrorContains(err, "couldn't parse repositories file")
}
