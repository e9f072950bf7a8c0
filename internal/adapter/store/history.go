package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"edututor/internal/domain"
)

var bucketTurns = []byte("turns")

// HistoryStore persists conversation turns in append order, backed by
// BoltDB. Turns survive process restarts and are only removed by an
// explicit Clear.
type HistoryStore struct {
	db *bbolt.DB
}

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTurns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create turns bucket: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

// Append adds a turn to the end of the conversation.
func (s *HistoryStore) Append(turn domain.Turn) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTurns)

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(turn)
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
}

// Recent returns the last n turns in chronological order.
func (s *HistoryStore) Recent(n int) ([]domain.Turn, error) {
	if n <= 0 {
		return nil, nil
	}

	var turns []domain.Turn
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketTurns).Cursor()

		// Walk backwards from the newest entry, then reverse.
		for k, v := c.Last(); k != nil && len(turns) < n; k, v = c.Prev() {
			var turn domain.Turn
			if err := json.Unmarshal(v, &turn); err != nil {
				return fmt.Errorf("unreadable history entry: %w", err)
			}
			turns = append(turns, turn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// All returns every recorded turn in chronological order.
func (s *HistoryStore) All() ([]domain.Turn, error) {
	var turns []domain.Turn
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTurns).ForEach(func(k, v []byte) error {
			var turn domain.Turn
			if err := json.Unmarshal(v, &turn); err != nil {
				return fmt.Errorf("unreadable history entry: %w", err)
			}
			turns = append(turns, turn)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// Clear removes all recorded turns.
func (s *HistoryStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketTurns); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketTurns)
		return err
	})
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
