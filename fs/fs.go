package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

var HomeDir string
var HomeUniforumDir string

var HomeAuthPath string
var HomeLogPath string

// IsDev switches paths and the default api host to a local backend.
var IsDev = os.Getenv("UNIFORUM_ENV") == "development"

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	HomeDir = home

	if dir := os.Getenv("UNIFORUM_HOME"); dir != "" {
		SetHomeUniforumDir(dir)
	} else if IsDev {
		SetHomeUniforumDir(filepath.Join(home, ".uniforum-home-dev"))
	} else {
		SetHomeUniforumDir(filepath.Join(home, ".uniforum-home"))
	}
}

// SetHomeUniforumDir points all derived paths at dir. Tests use it to isolate
// state in a temp dir.
func SetHomeUniforumDir(dir string) {
	HomeUniforumDir = dir
	HomeAuthPath = filepath.Join(dir, "auth.json")
	HomeLogPath = filepath.Join(dir, "uniforum.log")
}

func EnsureHomeDir() error {
	err := os.MkdirAll(HomeUniforumDir, 0700)
	if err != nil {
		return fmt.Errorf("error creating %s: %v", HomeUniforumDir, err)
	}
	return nil
}
