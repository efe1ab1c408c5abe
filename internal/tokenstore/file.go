package tokenstore

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/krancour/sweetshop/internal/file"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// DefaultFileName is the name of the session file within the sweetshop home
// directory.
const DefaultFileName = "session"

type sessionFile struct {
	Token string `json:"token"`
}

// FileBackend persists the token as a small JSON document on disk. Saves
// replace the file atomically, so a concurrent reader in another process
// sees either the old or the new token, never a torn write.
type FileBackend struct {
	path string
}

// NewFileBackend returns a FileBackend that stores the token at the given
// path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path: path,
	}
}

// NewDefaultFileBackend returns a FileBackend that stores the token in the
// given home directory or, if home is empty, in the default home directory.
func NewDefaultFileBackend(home string) (*FileBackend, error) {
	if home == "" {
		var err error
		if home, err = DefaultHome(); err != nil {
			return nil, err
		}
	}
	return NewFileBackend(filepath.Join(home, DefaultFileName)), nil
}

// DefaultHome returns the default sweetshop home directory, ~/.sweetshop.
func DefaultHome() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return filepath.Join(homeDir, ".sweetshop"), nil
}

// Path returns the location of the session file.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) Load() (string, error) {
	if !file.Exists(f.path) {
		return "", nil
	}
	fileBytes, err := ioutil.ReadFile(f.path)
	if err != nil {
		return "", errors.Wrapf(err, "error reading session file at %s", f.path)
	}
	sf := sessionFile{}
	if err := json.Unmarshal(fileBytes, &sf); err != nil {
		return "", errors.Wrapf(err, "error parsing session file at %s", f.path)
	}
	return sf.Token, nil
}

func (f *FileBackend) Save(token string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "error creating directory %s", dir)
	}
	fileBytes, err := json.Marshal(sessionFile{Token: token})
	if err != nil {
		return errors.Wrap(err, "error marshaling session file")
	}
	tmp, err := ioutil.TempFile(dir, ".session-*")
	if err != nil {
		return errors.Wrapf(err, "error creating temporary file in %s", dir)
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(fileBytes); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "error writing to %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", tmp.Name())
	}
	if err = os.Chmod(tmp.Name(), 0600); err != nil {
		return errors.Wrapf(err, "error setting permissions on %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "error writing to %s", f.path)
	}
	return nil
}

func (f *FileBackend) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "error deleting session file at %s", f.path)
	}
	return nil
}

// DeleteIf is atomic with respect to other callers in the same process when
// invoked through a Store. Across processes it is a best-effort
// compare-then-delete.
func (f *FileBackend) DeleteIf(token string) (bool, error) {
	current, err := f.Load()
	if err != nil {
		return false, err
	}
	if current != "" && current != token {
		return false, nil
	}
	if current == "" {
		return true, nil
	}
	return true, f.Delete()
}
