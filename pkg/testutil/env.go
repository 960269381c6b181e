package testutil

import (
	"os"
	"path/filepath"
)

// Setenv sets an environment variable for the duration of a test and returns
// value.
func Setenv(c Cleanuper, name, value string) string {
	saveEnv(c, name)
	os.Setenv(name, value)
	return value
}

// Unsetenv unsets an environment variable for the duration of a test.
func Unsetenv(c Cleanuper, name string) {
	saveEnv(c, name)
	os.Unsetenv(name)
}

func saveEnv(c Cleanuper, name string) {
	old, existed := os.LookupEnv(name)
	if existed {
		c.Cleanup(func() { os.Setenv(name, old) })
	} else {
		c.Cleanup(func() { os.Unsetenv(name) })
	}
}

// FakeCommands creates a temporary directory holding one executable shell
// script per entry in scripts and prepends it to PATH for the duration of the
// test. It returns the directory.
func FakeCommands(c Cleanuper, scripts map[string]string) string {
	dir := TempDir(c)
	for name, body := range scripts {
		content := "#!/bin/sh\n" + body + "\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0700); err != nil {
			panic(err)
		}
	}
	Setenv(c, "PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}
