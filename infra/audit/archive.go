// Package audit archives callback events after their processing outcome is
// terminal. The archive is an embedded BoltDB file, separate from the
// relational store so audit retention can outlive operational tables.
package audit

import (
	"encoding/json"
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/billyproject/billy/infra/db/model"
)

const bucketName = "callback_events"

// ErrNotFound is returned when a requested event is not archived.
var ErrNotFound = errors.New("archived event not found")

type Archive struct {
	db *bolt.DB
}

// Open opens (or creates) the archive file and ensures the bucket exists.
func Open(path string) (*Archive, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Put stores a terminal event keyed by GUID. Archiving the same event again
// is a no-op; rows are immutable once terminal, so the stored copy stands.
func (a *Archive) Put(event model.CallbackEvent) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b.Get([]byte(event.GUID)) != nil {
			return nil
		}
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return b.Put([]byte(event.GUID), data)
	})
}

// Get retrieves an archived event by GUID.
func (a *Archive) Get(guid string) (model.CallbackEvent, error) {
	var event model.CallbackEvent
	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(guid))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &event)
	})
	return event, err
}

// List returns every archived event. Pure read.
func (a *Archive) List() ([]model.CallbackEvent, error) {
	var events []model.CallbackEvent
	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.ForEach(func(k, v []byte) error {
			var event model.CallbackEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return err
			}
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.CallbackEvent{}
	}
	return events, nil
}
