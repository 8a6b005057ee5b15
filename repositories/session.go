//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
)

// txnRetries bounds the re-execution of a read-modify-write transaction
// that lost a conflict check against a concurrent writer on the same code.
const txnRetries = 5

type ISessionRepository interface {
	Create(code domain.SessionCode, owner string) error
	IsActive(code domain.SessionCode) (bool, error)
	Members(code domain.SessionCode) ([]string, error)
	AddMember(code domain.SessionCode, username string) error
	RemoveMember(code domain.SessionCode, username string) error
	IsEmpty(code domain.SessionCode) (bool, error)
	Destroy(code domain.SessionCode) error
}

// SessionRepository is the registry of active study sessions.
// One key per active code, value = member usernames in join order.
// An empty member list is never stored: empty means the key is gone.
type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) SessionRepository {
	return SessionRepository{db: db, log: log}
}

func sessionKey(code domain.SessionCode) []byte {
	return []byte(fmt.Sprintf("session:%s", code))
}

// Create registers a fresh session with the requesting user as sole member.
// The existence check and the write share one transaction, so two racing
// creators of the same code cannot both win.
func (r SessionRepository) Create(code domain.SessionCode, owner string) error {
	return r.update(func(txn *badger.Txn) error {
		_, err := txn.Get(sessionKey(code))
		switch err {
		case nil:
			return errors.ErrSessionAlreadyExists
		case badger.ErrKeyNotFound:
			return setMembers(txn, code, []string{owner})
		default:
			return err
		}
	})
}

func (r SessionRepository) IsActive(code domain.SessionCode) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(sessionKey(code))
		return err
	})
	switch err {
	case nil:
		return true, nil
	case badger.ErrKeyNotFound:
		return false, nil
	default:
		return false, storageErr(err)
	}
}

// Members returns the current member list in join order.
func (r SessionRepository) Members(code domain.SessionCode) ([]string, error) {
	var members []string
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		members, err = getMembers(txn, code)
		return err
	})
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return members, nil
}

// AddMember appends the username unless it is already present (idempotent).
func (r SessionRepository) AddMember(code domain.SessionCode, username string) error {
	return r.update(func(txn *badger.Txn) error {
		members, err := getMembers(txn, code)
		if err != nil {
			return err
		}
		if lo.Contains(members, username) {
			return nil
		}
		return setMembers(txn, code, append(members, username))
	})
}

// RemoveMember removes the username if present. Removing an absent member is
// a no-op so an explicit leave racing a disconnect stays idempotent.
func (r SessionRepository) RemoveMember(code domain.SessionCode, username string) error {
	return r.update(func(txn *badger.Txn) error {
		members, err := getMembers(txn, code)
		if err != nil {
			return err
		}
		remaining := lo.Without(members, username)
		if len(remaining) == len(members) {
			return nil
		}
		return setMembers(txn, code, remaining)
	})
}

// IsEmpty reports whether no member is left. An absent entry counts as empty:
// the registry invariant is that an empty session must not exist at all.
func (r SessionRepository) IsEmpty(code domain.SessionCode) (bool, error) {
	members, err := r.Members(code)
	if err == errors.ErrSessionNotFound {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(members) == 0, nil
}

// Destroy removes the registry entry. Safe to call on an already-absent code.
func (r SessionRepository) Destroy(code domain.SessionCode) error {
	return r.update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(code))
	})
}

// update runs fn transactionally and retries a bounded number of times when
// Badger detects a conflicting concurrent commit on the same key.
func (r SessionRepository) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < txnRetries; attempt++ {
		err = r.db.Update(fn)
		if err != badger.ErrConflict {
			return mapLookupErr(err)
		}
		r.log.Debug("Registry transaction conflict, retrying", "attempt", attempt+1)
	}
	return storageErr(err)
}

func getMembers(txn *badger.Txn, code domain.SessionCode) ([]string, error) {
	item, err := txn.Get(sessionKey(code))
	if err == badger.ErrKeyNotFound {
		return nil, errors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var members []string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &members)
	})
	return members, err
}

func setMembers(txn *badger.Txn, code domain.SessionCode, members []string) error {
	val, err := json.Marshal(members)
	if err != nil {
		return err
	}
	return txn.Set(sessionKey(code), val)
}

// mapLookupErr keeps domain sentinels as-is and brands anything else as a
// storage failure so callers can tell "not found" from "registry down".
func mapLookupErr(err error) error {
	switch err {
	case nil, errors.ErrSessionNotFound, errors.ErrSessionAlreadyExists:
		return err
	default:
		return storageErr(err)
	}
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
}
