// Package eventlog persists pin events in a bbolt database.
package eventlog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"imxgpio/pkg/port"

	"github.com/womat/debug"
	bolt "go.etcd.io/bbolt"
)

var bucket = []byte("events")

// Store is an append only log of pin events.
type Store struct {
	db *bolt.DB
	// limit is the maximum number of kept events, 0 keeps all.
	limit int
}

// Open opens or creates the event log at path.
func Open(path string, limit int) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open event log %q: %w", path, err)
	}

	if err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	debug.InfoLog.Printf("event log %s opened", path)
	return &Store{db: db, limit: limit}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores an event and drops the oldest events exceeding the limit.
func (s *Store) Append(e port.Event) error {
	v, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		if err = b.Put(itob(seq), v); err != nil {
			return err
		}

		if s.limit <= 0 {
			return nil
		}
		return prune(b, seq, s.limit)
	})
}

// prune deletes the oldest keys until at most limit remain.
// Keys are gapless sequence numbers and only the oldest are ever deleted,
// so every key up to seq-limit is surplus.
func prune(b *bolt.Bucket, seq uint64, limit int) error {
	if seq <= uint64(limit) {
		return nil
	}
	cutoff := seq - uint64(limit)

	c := b.Cursor()
	for k, _ := c.First(); k != nil && btoi(k) <= cutoff; k, _ = c.First() {
		if err := c.Delete(); err != nil {
			return err
		}
	}
	return nil
}

// Last returns up to n of the newest events, newest first.
func (s *Store) Last(n int) ([]port.Event, error) {
	events := []port.Event{}

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for k, v := c.Last(); k != nil && len(events) < n; k, v = c.Prev() {
			var e port.Event
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			events = append(events, e)
		}
		return nil
	})

	return events, err
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
