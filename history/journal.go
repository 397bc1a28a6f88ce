// Package history persists the conversation log across restarts.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"go.ghostframe.dev/ghostframe/internal/types"
)

const (
	messagePrefix = "msg/"
	sequenceKey   = "seq/msg"
	seqBandwidth  = 64
)

// ErrClosed is returned by operations on a closed Journal.
var ErrClosed = errors.New("history: journal closed")

// Journal is an append-only message store backed by badger.
// Keys are ordered by append sequence, so iteration order is log order.
type Journal struct {
	mu  sync.Mutex
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

// Open opens the journal stored in dir. An empty dir keeps the journal in
// memory for the lifetime of the process.
func Open(dir string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history")

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	seq, err := db.GetSequence([]byte(sequenceKey), seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("get history sequence: %w", err)
	}

	logger.Debug("history opened", "dir", dir, "inMemory", dir == "")
	return &Journal{db: db, seq: seq, log: logger}, nil
}

// Append stores m after every previously appended message.
func (j *Journal) Append(m types.Message) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return ErrClosed
	}

	n, err := j.seq.Next()
	if err != nil {
		return fmt.Errorf("next history sequence: %w", err)
	}
	value, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(n), value)
	})
}

// List returns up to limit of the most recent messages, oldest first.
// A limit of zero or less returns every message.
func (j *Journal) List(limit int) ([]types.Message, error) {
	j.mu.Lock()
	db := j.db
	j.mu.Unlock()
	if db == nil {
		return nil, ErrClosed
	}

	var out []types.Message
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(messagePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the last key under the prefix.
		for it.Seek(append([]byte(messagePrefix), 0xFF)); it.Valid(); it.Next() {
			if limit > 0 && len(out) == limit {
				break
			}
			var m types.Message
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &m)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// Close releases the sequence lease and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}

	err := errors.Join(j.seq.Release(), j.db.Close())
	j.db, j.seq = nil, nil
	return err
}

func messageKey(n uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", messagePrefix, n)
}

// badgerLogger routes badger's printf-style logging through slog.
type badgerLogger struct{ l *slog.Logger }

func (b badgerLogger) Errorf(format string, args ...any) {
	b.l.Error(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.l.Debug(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.l.Debug(fmt.Sprintf(format, args...))
}
