// Package store implements the history storage of the REPL.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/junhg0211/lintre/pkg/errutil"
	"github.com/junhg0211/lintre/pkg/logutil"
	. "github.com/junhg0211/lintre/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

const bucketCmd = "cmd"

// initDB holds functions that set up the database. They are run every time a
// database is opened.
var initDB = map[string](func(*bolt.Tx) error){
	"initialize command history table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCmd))
		return err
	},
}

// DBStore is the permanent storage backend of the REPL history.
type DBStore interface {
	Store
	Close() error
}

type dbStore struct {
	db *bolt.DB
}

// NewStore creates a new Store from the given file. The directory containing
// the file is created if it does not exist.
func NewStore(dbname string) (DBStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbname), 0700); err != nil {
		return nil, err
	}
	// Another REPL may hold the lock on the database; wait for a while
	// instead of blocking forever.
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("cannot open history database: %w", err)
	}
	logger.Println("opened database", dbname)

	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errutil.Multi(err, db.Close())
	}
	return &dbStore{db}, nil
}

// Close closes the underlying database.
func (s *dbStore) Close() error {
	return s.db.Close()
}
