package audit

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"hdgold/core/types"
)

var bucketEvents = []byte("events")

// Entry is a persisted audit record. Sequence numbers are assigned in
// publication order and never reused.
type Entry struct {
	Sequence   uint64            `json:"seq"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	RecordedAt int64             `json:"recordedAt"`
}

// Log is an append-only event store backed by bbolt. The core only writes to
// it; indexers and operators read it out-of-band.
type Log struct {
	db  *bolt.DB
	now func() time.Time
}

// Open creates or opens the audit log at path.
func Open(path string) (*Log, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEvents)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Log{db: db, now: time.Now}, nil
}

// SetClock overrides the time source, primarily for deterministic testing.
func (l *Log) SetClock(clock func() time.Time) {
	if l == nil || clock == nil {
		return
	}
	l.now = clock
}

// Close releases the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Publish appends the event, satisfying the event sink interface. Sinks run
// after the operation has committed, so a failed append is dropped rather
// than failing the operation.
func (l *Log) Publish(evt *types.Event) {
	if l == nil || evt == nil {
		return
	}
	_ = l.Append(evt)
}

// Append persists one event and returns its sequence number.
func (l *Log) Append(evt *types.Event) error {
	if evt == nil {
		return fmt.Errorf("audit: event must not be nil")
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketEvents)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		entry := Entry{
			Sequence:   seq,
			Type:       evt.Type,
			Attributes: evt.Attributes,
			RecordedAt: l.now().UTC().Unix(),
		}
		payload, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return bucket.Put(key[:], payload)
	})
}

// List returns up to limit entries with sequence >= from, in order.
func (l *Log) List(from uint64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	entries := make([]Entry, 0, limit)
	err := l.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(bucketEvents).Cursor()
		var start [8]byte
		binary.BigEndian.PutUint64(start[:], from)
		for key, value := cursor.Seek(start[:]); key != nil && len(entries) < limit; key, value = cursor.Next() {
			var entry Entry
			if err := json.Unmarshal(value, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}
