//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	apperrors "github.com/Alex-SA1/Efficient-Study-Platform/errors"
)

type IUserRepository interface {
	SaveProfile(profile domain.Profile) error
	GetProfile(username string) (domain.Profile, error)
	SaveCredentials(username, passwordHash string) error
	GetCredentials(username string) (string, error)
}

// UserRepository holds the read-mostly profile slice the chat layer needs:
// country (timezone rendering) and profile picture. Account management is a
// collaborator's job.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

type diskProfile struct {
	Username  string `json:"username"`
	Country   string `json:"country"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func profileKey(username string) []byte {
	return []byte(fmt.Sprintf("user:%s", username))
}

func (r UserRepository) SaveProfile(profile domain.Profile) error {
	val, err := json.Marshal(diskProfile{
		Username:  profile.Username,
		Country:   profile.Country,
		AvatarURL: profile.AvatarURL,
	})
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(profileKey(profile.Username), val)
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}

// GetProfile returns the stored profile, or a zero-value profile for unknown
// users: a missing record only means default avatar and UTC rendering.
func (r UserRepository) GetProfile(username string) (domain.Profile, error) {
	var dp diskProfile
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &dp)
		})
	})
	switch err {
	case nil:
		return domain.Profile{Username: dp.Username, Country: dp.Country, AvatarURL: dp.AvatarURL}, nil
	case badger.ErrKeyNotFound:
		return domain.Profile{Username: username}, nil
	default:
		return domain.Profile{}, storageErr(err)
	}
}

func credentialsKey(username string) []byte {
	return []byte(fmt.Sprintf("cred:%s", username))
}

// SaveCredentials stores the encoded password hash. Only the seeding tool
// writes credentials; the login handler reads them.
func (r UserRepository) SaveCredentials(username, passwordHash string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(credentialsKey(username), []byte(passwordHash))
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}

// GetCredentials returns the encoded hash for a username, or
// ErrUnauthenticated for unknown accounts so the login handler cannot
// distinguish a bad username from a bad password.
func (r UserRepository) GetCredentials(username string) (string, error) {
	var hash string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(credentialsKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			hash = string(val)
			return nil
		})
	})
	switch err {
	case nil:
		return hash, nil
	case badger.ErrKeyNotFound:
		return "", apperrors.ErrUnauthenticated
	default:
		return "", storageErr(err)
	}
}
