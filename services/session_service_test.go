package services

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
)

type recordingCloser struct {
	closed []domain.GroupID
}

func (r *recordingCloser) CloseGroup(group domain.GroupID) {
	r.closed = append(r.closed, group)
}

type sessionFixture struct {
	service *SessionService
	closer  *recordingCloser
	friends repositories.FriendshipRepository
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	closer := &recordingCloser{}
	friends := repositories.NewFriendshipRepository(db)
	service := NewSessionService(repositories.NewSessionRepository(db, log),
		friends, closer, observability.NewMonitor(), 5, log)
	return sessionFixture{service: service, closer: closer, friends: friends}
}

func Test_GenerateCode_Creates_A_Joinable_Session(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)

	// When a user generates a code
	code, err := f.service.GenerateCode("alice")
	req.NoError(err)
	req.True(domain.ValidSessionCode(string(code)))

	// Then the creator is already a member
	req.NoError(f.service.Authorize(code, "alice"))

	// And two generations never share a code
	other, err := f.service.GenerateCode("bob")
	req.NoError(err)
	req.NotEqual(code, other)
}

func Test_Join_Access_Predicate(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	req.NoError(f.friends.Add(domain.Friendship{UserA: "alice", UserB: "bob"}))
	code, err := f.service.GenerateCode("alice")
	req.NoError(err)

	// A friend of a current member gets in
	joined, err := f.service.Join(string(code), "bob")
	req.NoError(err)
	req.Equal(code, joined)

	// A stranger does not, in either direction
	_, err = f.service.Join(string(code), "dmitri")
	req.ErrorIs(err, errors.ErrAccessDenied)

	// A friend of the joiner (not of the creator) now gets in through bob
	req.NoError(f.friends.Add(domain.Friendship{UserA: "elena", UserB: "bob"}))
	_, err = f.service.Join(string(code), "elena")
	req.NoError(err)
}

func Test_Join_Member_Short_Circuits_Friendship(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	code, err := f.service.GenerateCode("alice")
	req.NoError(err)

	// The creator re-enters their own session with no friends at all
	joined, err := f.service.Join(string(code), "alice")
	req.NoError(err)
	req.Equal(code, joined)
}

func Test_Join_Rejects_Bad_Codes(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)

	_, err := f.service.Join("short", "alice")
	req.ErrorIs(err, errors.ErrInvalidSessionCode)

	_, err = f.service.Join("AbCdEfGhIjK1", "alice")
	req.ErrorIs(err, errors.ErrInvalidSessionCode)

	// Well-formed but unknown: not found, never access denied
	_, err = f.service.Join("AbCdEfGhIjKl", "alice")
	req.ErrorIs(err, errors.ErrSessionNotFound)
}

func Test_Leave_Tears_Down_Empty_Sessions(t *testing.T) {
	req := require.New(t)
	f := newSessionFixture(t)
	req.NoError(f.friends.Add(domain.Friendship{UserA: "alice", UserB: "bob"}))
	code, err := f.service.GenerateCode("alice")
	req.NoError(err)
	_, err = f.service.Join(string(code), "bob")
	req.NoError(err)

	// First leave keeps the session alive, nothing is closed
	req.NoError(f.service.Leave(code, "alice"))
	req.Empty(f.closer.closed)
	req.NoError(f.service.Authorize(code, "bob"))

	// Last leave destroys the session and closes its broadcast group
	req.NoError(f.service.Leave(code, "bob"))
	req.Equal([]domain.GroupID{code.Group()}, f.closer.closed)
	req.ErrorIs(f.service.Authorize(code, "bob"), errors.ErrSessionNotFound)

	// Leaving a dead session stays silent: the race with disconnect
	req.NoError(f.service.Leave(code, "bob"))
	req.Len(f.closer.closed, 1)
}
