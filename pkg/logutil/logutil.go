// Package logutil provides loggers for debugging output. Loggers discard
// everything until an output is configured, either programmatically or via the
// TIDE_LOG environment variable.
package logutil

import (
	"io"
	"log"
	"os"
	"sync"
)

// EnvLogPath names the environment variable that, when set, points to a file
// all loggers append to.
const EnvLogPath = "TIDE_LOG"

var (
	mu      sync.Mutex
	out     io.Writer = io.Discard
	loggers []*log.Logger
	file    *os.File
)

func init() {
	if path := os.Getenv(EnvLogPath); path != "" {
		// A broken log path must not break the shell.
		_ = SetOutputFile(path)
	}
}

// GetLogger gets a logger with the given prefix. Loggers are long-lived and
// normally stored in package-level variables. Lines start with a timestamp,
// and the prefix comes right before the message.
func GetLogger(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	logger := log.New(out, prefix, log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects all loggers, existing and future, to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	setOutput(w)
	if file != nil {
		file.Close()
		file = nil
	}
}

// SetOutputFile redirects all loggers to the named file, opened for
// appending. An empty name discards output.
func SetOutputFile(name string) error {
	if name == "" {
		SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	setOutput(f)
	if file != nil {
		file.Close()
	}
	file = f
	return nil
}

func setOutput(w io.Writer) {
	out = w
	for _, logger := range loggers {
		logger.SetOutput(w)
	}
}
