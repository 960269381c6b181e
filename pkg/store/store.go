// Package store is the persistent storage of a session. It currently keeps
// shared variables, which are visible to all sessions using the same database
// file.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"src.tide.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[store] ")

// EnvDB names the environment variable that overrides the default database
// path.
const EnvDB = "TIDE_DB"

// Store is the interface to the storage used by the evaluator and the shared
// variable commands.
type Store interface {
	SharedVar(name string) (string, error)
	SetSharedVar(name, value string) error
	DelSharedVar(name string) error
	SharedVarNames() ([]string, error)
}

// DBStore is a Store backed by a database file. Operations in flight are
// waited for by Close.
type DBStore interface {
	Store
	Close() error
}

var initDB = map[string](func(*bolt.Tx) error){}

type dbStore struct {
	db *bolt.DB
	wg sync.WaitGroup
}

// DefaultPath returns the path of the database file: $TIDE_DB if set,
// otherwise tide/db.bolt under the user's data directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvDB); p != "" {
		return p, nil
	}
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine data directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "tide", "db.bolt"), nil
}

// NewStore opens or creates a Store in the given file, creating its parent
// directory if needed.
func NewStore(dbname string) (DBStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbname), 0700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new Store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store")
	defer logger.Println("initialized store")
	st := &dbStore{db: db}

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// Close waits for all outstanding operations to finish, and closes the
// database.
func (s *dbStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.wg.Wait()
	return s.db.Close()
}

func (s *dbStore) view(f func(*bolt.Tx) error) error {
	s.wg.Add(1)
	defer s.wg.Done()
	return s.db.View(f)
}

func (s *dbStore) update(f func(*bolt.Tx) error) error {
	s.wg.Add(1)
	defer s.wg.Done()
	return s.db.Update(f)
}
