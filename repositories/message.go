//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	GetPage(group domain.GroupID, page, size int) ([]domain.Message, bool, error)
	PurgeGroup(group domain.GroupID) error
}

// MessageRepository is the durable append-only chat log.
// The key is formatted as "msg:{group}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the UUID as a collision disconnector if two
//     messages land on the same nanosecond.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored shape of a chat message.
type diskMessage struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
	At      int64  `json:"at"` // unix nanoseconds, UTC
}

func groupPrefix(group domain.GroupID) string {
	return fmt.Sprintf("msg:%s:", group)
}

func messageKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", groupPrefix(m.Group), m.CreatedAt.UnixNano(), m.ID))
}

// Store persists one message. Callers sequence Store strictly before any
// broadcast of the same message.
func (r MessageRepository) Store(message domain.Message) error {
	val, err := json.Marshal(diskMessage{
		ID:      message.ID.String(),
		Author:  message.Author,
		Content: message.Content,
		At:      message.CreatedAt.UnixNano(),
	})
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message), val)
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}

// GetPage returns one fixed-size page of messages, newest first, by walking
// the group's keys in reverse and skipping (page-1)*size entries. One extra
// record past the window is probed to compute hasNext. Offset drift caused by
// writes between two fetches is an accepted trade-off of this protocol, not
// a bug: the set only grows by appends and dies with the session.
func (r MessageRepository) GetPage(group domain.GroupID, page, size int) ([]domain.Message, bool, error) {
	if page < 1 || size < 1 {
		return nil, false, nil
	}
	offset := (page - 1) * size

	var raw [][]byte
	hasNext := false
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(groupPrefix(group))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the largest possible timestamp so the reverse walk
		// starts at the newest stored key of this group.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)

		skipped := 0
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if len(raw) == size {
				hasNext = true
				return nil
			}
			err := it.Item().Value(func(val []byte) error {
				raw = append(raw, append([]byte{}, val...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, storageErr(err)
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		msg, err := toMessage(group, b)
		if err != nil {
			return nil, false, err
		}
		messages = append(messages, msg)
	}
	return messages, hasNext, nil
}

// PurgeGroup deletes every stored message of a group. Used only by session
// teardown; the caller retries on failure.
func (r MessageRepository) PurgeGroup(group domain.GroupID) error {
	prefix := []byte(groupPrefix(group))

	var keys [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return storageErr(err)
	}
	if len(keys) == 0 {
		return nil
	}

	wb := r.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return storageErr(err)
		}
	}
	if err := wb.Flush(); err != nil {
		return storageErr(err)
	}
	r.log.Debug("Purged group messages", "group", string(group), "count", len(keys))
	return nil
}

func toMessage(group domain.GroupID, val []byte) (domain.Message, error) {
	var dm diskMessage
	if err := json.Unmarshal(val, &dm); err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		Group:     group,
		Author:    dm.Author,
		Content:   dm.Content,
		CreatedAt: time.Unix(0, dm.At).UTC(),
	}, nil
}

// Chronological flips a newest-first page into oldest-first order for
// append-to-bottom rendering.
func Chronological(messages []domain.Message) []domain.Message {
	return lo.Reverse(append([]domain.Message{}, messages...))
}
