package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
)

func Test_Friendship_Is_Symmetric(t *testing.T) {
	req := require.New(t)
	repo := NewFriendshipRepository(openTestDB(t))

	// Given a friendship stored in one orientation
	req.NoError(repo.Add(domain.Friendship{UserA: "bob", UserB: "alice"}))

	// Then both orientations resolve
	friends, err := repo.AreFriends("alice", "bob")
	req.NoError(err)
	req.True(friends)
	friends, err = repo.AreFriends("bob", "alice")
	req.NoError(err)
	req.True(friends)

	// And unrelated users do not
	friends, err = repo.AreFriends("alice", "dmitri")
	req.NoError(err)
	req.False(friends)
}
