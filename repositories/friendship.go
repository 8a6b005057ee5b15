//go:generate go run go.uber.org/mock/mockgen -source=friendship.go -destination=../mocks/mock_friendship_repository.go -package=mocks
package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
)

// IFriendshipRepository is the single query surface this subsystem consumes
// from the social graph: the friend-request workflow lives elsewhere.
type IFriendshipRepository interface {
	Add(friendship domain.Friendship) error
	AreFriends(userA, userB string) (bool, error)
}

// FriendshipRepository stores the symmetric relation once, under the
// canonical orientation, so a lookup in either direction hits the same key.
type FriendshipRepository struct {
	db *badger.DB
}

func NewFriendshipRepository(db *badger.DB) FriendshipRepository {
	return FriendshipRepository{db: db}
}

func friendshipKey(f domain.Friendship) []byte {
	c := f.Canonical()
	return []byte(fmt.Sprintf("friend:%s:%s", c.UserA, c.UserB))
}

func (r FriendshipRepository) Add(friendship domain.Friendship) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(friendshipKey(friendship), []byte{})
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func (r FriendshipRepository) AreFriends(userA, userB string) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(friendshipKey(domain.Friendship{UserA: userA, UserB: userB}))
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
