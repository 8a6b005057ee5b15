package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
)

func Test_Profile_Roundtrip(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	req.NoError(repo.SaveProfile(domain.Profile{
		Username:  "alice",
		Country:   "France",
		AvatarURL: "https://example.com/alice.png",
	}))

	profile, err := repo.GetProfile("alice")
	req.NoError(err)
	req.Equal("France", profile.Country)
	req.Equal("https://example.com/alice.png", profile.Avatar())
}

func Test_Unknown_Profile_Falls_Back_To_Defaults(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	// An unknown user still renders: default avatar, no country
	profile, err := repo.GetProfile("ghost")
	req.NoError(err)
	req.Equal("ghost", profile.Username)
	req.Empty(profile.Country)
	req.Equal(domain.DefaultAvatarURL, profile.Avatar())
}

func Test_Credentials_Roundtrip(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	req.NoError(repo.SaveCredentials("alice", "$argon2id$..."))

	hash, err := repo.GetCredentials("alice")
	req.NoError(err)
	req.Equal("$argon2id$...", hash)

	// Unknown accounts look exactly like a wrong password
	_, err = repo.GetCredentials("ghost")
	req.ErrorIs(err, errors.ErrUnauthenticated)
}
