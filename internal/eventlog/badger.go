package eventlog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/sentinelstack/sentinel-ops/internal/models"
)

var eventPrefix = []byte("event/")

// Badger is an append-only event store backed by BadgerDB. Keys are a
// monotonically increasing sequence so iteration order is append order.
type Badger struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadger opens (or creates) a badger-backed event log at path.
func OpenBadger(path string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	if logger != nil {
		opts.Logger = &badgerLogger{logger: logger}
	}
	return open(opts)
}

// OpenBadgerInMemory opens an ephemeral badger event log for tests.
func OpenBadgerInMemory() (*Badger, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	seq, err := db.GetSequence([]byte("eventlog-seq"), 64)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open event sequence: %w", err)
	}
	return &Badger{db: db, seq: seq}, nil
}

// Append persists an event under the next sequence key.
func (b *Badger) Append(event models.RemediationEvent) error {
	n, err := b.seq.Next()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := make([]byte, len(eventPrefix)+8)
	copy(key, eventPrefix)
	binary.BigEndian.PutUint64(key[len(eventPrefix):], n)

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// List returns all events in append order.
func (b *Badger) List() ([]models.RemediationEvent, error) {
	var events []models.RemediationEvent

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = eventPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(eventPrefix); it.ValidForPrefix(eventPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var event models.RemediationEvent
				if err := json.Unmarshal(val, &event); err != nil {
					return fmt.Errorf("unmarshal event: %w", err)
				}
				events = append(events, event)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Close releases the sequence lease and closes the database.
func (b *Badger) Close() error {
	if err := b.seq.Release(); err != nil {
		return err
	}
	return b.db.Close()
}

// badgerLogger adapts slog.Logger to badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
