package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_Claims_The_Code(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(openTestDB(t), slog.Default())
	code := domain.SessionCode("AbCdEfGhIjKl")

	// Given a fresh registry, When a session is created
	req.NoError(repo.Create(code, "alice"))

	// Then the code is active with the creator as sole member
	active, err := repo.IsActive(code)
	req.NoError(err)
	req.True(active)
	members, err := repo.Members(code)
	req.NoError(err)
	req.Equal([]string{"alice"}, members)

	// And a second create of the same code loses
	req.ErrorIs(repo.Create(code, "bob"), errors.ErrSessionAlreadyExists)
}

func Test_Members_Keeps_Join_Order(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(openTestDB(t), slog.Default())
	code := domain.SessionCode("AbCdEfGhIjKl")
	req.NoError(repo.Create(code, "alice"))

	// When members join one after the other
	req.NoError(repo.AddMember(code, "bob"))
	req.NoError(repo.AddMember(code, "chloe"))
	// And one of them joins again
	req.NoError(repo.AddMember(code, "bob"))

	// Then the list holds each member once, in join order
	members, err := repo.Members(code)
	req.NoError(err)
	req.Equal([]string{"alice", "bob", "chloe"}, members)
}

func Test_AddMember_To_Dead_Session(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(openTestDB(t), slog.Default())

	err := repo.AddMember(domain.SessionCode("AbCdEfGhIjKl"), "bob")
	req.ErrorIs(err, errors.ErrSessionNotFound)
}

func Test_RemoveMember_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(openTestDB(t), slog.Default())
	code := domain.SessionCode("AbCdEfGhIjKl")
	req.NoError(repo.Create(code, "alice"))
	req.NoError(repo.AddMember(code, "bob"))

	// When the same member is removed twice
	req.NoError(repo.RemoveMember(code, "bob"))
	req.NoError(repo.RemoveMember(code, "bob"))

	// Then the other member is untouched
	members, err := repo.Members(code)
	req.NoError(err)
	req.Equal([]string{"alice"}, members)

	empty, err := repo.IsEmpty(code)
	req.NoError(err)
	req.False(empty)
}

func Test_Destroy_Frees_The_Code(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(openTestDB(t), slog.Default())
	code := domain.SessionCode("AbCdEfGhIjKl")
	req.NoError(repo.Create(code, "alice"))
	req.NoError(repo.RemoveMember(code, "alice"))

	empty, err := repo.IsEmpty(code)
	req.NoError(err)
	req.True(empty)

	// When the empty session is destroyed
	req.NoError(repo.Destroy(code))

	// Then the code reads as inactive and can be claimed again
	active, err := repo.IsActive(code)
	req.NoError(err)
	req.False(active)
	req.NoError(repo.Create(code, "dmitri"))

	// Destroying an absent code stays safe
	req.NoError(repo.Destroy(domain.SessionCode("ZzZzZzZzZzZz")))
}
