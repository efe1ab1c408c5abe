package file

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir, err := ioutil.TempDir("", "file-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "session")
	require.False(t, Exists(file))
	require.NoError(t, ioutil.WriteFile(file, []byte("{}"), 0600))
	require.True(t, Exists(file))
}
