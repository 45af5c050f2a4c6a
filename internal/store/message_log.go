// Package store owns the durable state of the service: the append-only
// message log and the game catalog.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/arcadia-live/chat-service/internal/domain"
)

const msgKeyPrefix = "msg:"

// MessageLog is the append-only chat log. Records are persisted in BadgerDB
// under keys "msg:{seq_padded}:{id}" so lexicographic key order equals append
// order, and mirrored in memory for pagination math. A message counts as
// committed only once the Badger write has succeeded.
type MessageLog struct {
	db *badger.DB

	mu       sync.RWMutex
	messages []domain.ChatMessage
}

// OpenMessageLog opens (or creates) the log at dir and replays all persisted
// records into the in-memory mirror.
func OpenMessageLog(dir string) (*MessageLog, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("failed to open message log: %w", err)
	}

	l := &MessageLog{db: db}
	if err := l.load(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *MessageLog) load() error {
	return l.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		prefix := []byte(msgKeyPrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg domain.ChatMessage
				if err := json.Unmarshal(val, &msg); err != nil {
					return fmt.Errorf("corrupt message record %q: %w", it.Item().Key(), err)
				}
				l.messages = append(l.messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Append durably persists msg and extends the in-memory mirror. Appends are
// mutex-serialized; on error the message is not committed and the caller must
// not broadcast it. The sequence number in the key is zero-padded to 19
// digits so keys sort in append order; the message ID disambiguates nothing
// here but makes keys self-describing when inspecting the store.
func (l *MessageLog) Append(ctx context.Context, msg domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := fmt.Sprintf("%s%019d:%s", msgKeyPrefix, len(l.messages), msg.ID)
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to persist message: %w", err)
	}

	l.messages = append(l.messages, msg)
	return nil
}

// Page returns up to limit messages newest-first, plus the total log length
// and whether older messages remain. offset counts from the newest end: the
// window is [len-offset-limit, len-offset) clamped to valid bounds, then
// reversed. hasMore is (offset + limit) < total.
func (l *MessageLog) Page(offset, limit int) ([]domain.ChatMessage, int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := len(l.messages)

	end := total - offset
	if end < 0 {
		end = 0
	}
	start := end - limit
	if start < 0 {
		start = 0
	}

	page := make([]domain.ChatMessage, 0, end-start)
	for i := end - 1; i >= start; i-- {
		page = append(page, l.messages[i])
	}

	return page, total, offset+limit < total
}

// Len reports the number of committed messages.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.messages)
}

// Close closes the underlying Badger store.
func (l *MessageLog) Close() error {
	return l.db.Close()
}
