package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	sessionKey    = []byte("token")
)

// ErrNoSession is returned when no session has been persisted
var ErrNoSession = errors.New("no stored session")

// Database wraps the bbolt file holding the persisted session
type Database struct {
	db *bbolt.DB
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Session operations

// SaveSession stores identity under the single session slot, replacing any previous one
func (d *Database) SaveSession(identity SessionIdentity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(sessionKey, data)
	})
}

// LoadSession returns the stored identity or ErrNoSession
func (d *Database) LoadSession() (SessionIdentity, error) {
	var identity SessionIdentity
	err := d.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionBucket).Get(sessionKey)
		if data == nil {
			return ErrNoSession
		}
		return json.Unmarshal(data, &identity)
	})
	if err != nil {
		return SessionIdentity{}, err
	}
	if identity.Token == "" {
		return SessionIdentity{}, ErrNoSession
	}
	return identity, nil
}

// DeleteSession clears the session slot. Clearing an empty slot is not an error.
func (d *Database) DeleteSession() error {
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(sessionKey)
	})
}
