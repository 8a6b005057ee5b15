//go:generate go run go.uber.org/mock/mockgen -source=session_service.go -destination=../mocks/mock_session_service.go -package=mocks
package services

import (
	"log/slog"

	"github.com/samber/lo"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
)

type ISessionService interface {
	GenerateCode(username string) (domain.SessionCode, error)
	Join(rawCode, username string) (domain.SessionCode, error)
	Authorize(code domain.SessionCode, username string) error
	Leave(code domain.SessionCode, username string) error
}

// GroupCloser is the slice of the hub the lifecycle controller needs:
// shutting down a torn-down session's broadcast path and queueing its purge.
type GroupCloser interface {
	CloseGroup(group domain.GroupID)
}

// SessionService orchestrates session lifecycle: code generation, join with
// the social-graph access predicate, and leave with empty-session teardown.
type SessionService struct {
	sessions     repositories.ISessionRepository
	friends      repositories.IFriendshipRepository
	groups       GroupCloser
	monitor      *observability.Monitor
	codeAttempts int
	log          *slog.Logger
}

func NewSessionService(sessions repositories.ISessionRepository,
	friends repositories.IFriendshipRepository, groups GroupCloser,
	monitor *observability.Monitor, codeAttempts int, log *slog.Logger) *SessionService {
	return &SessionService{
		sessions:     sessions,
		friends:      friends,
		groups:       groups,
		monitor:      monitor,
		codeAttempts: codeAttempts,
		log:          log,
	}
}

// GenerateCode samples codes until one registers cleanly. Registration
// itself is the uniqueness check: Create claims the code atomically, so two
// racing generators can never both win the same code. The attempt budget
// turns a pathological storage state into an error instead of a livelock;
// with 52^12 candidates a second attempt is already rare.
func (s *SessionService) GenerateCode(username string) (domain.SessionCode, error) {
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		code, err := domain.NewSessionCode()
		if err != nil {
			return "", err
		}
		err = s.sessions.Create(code, username)
		switch err {
		case nil:
			s.monitor.IncrSessions()
			s.log.Info("Study session created", "code", string(code), "owner", username)
			return code, nil
		case errors.ErrSessionAlreadyExists:
			s.log.Warn("Session code collision, resampling", "attempt", attempt+1)
			continue
		default:
			return "", err
		}
	}
	return "", errors.ErrCodeSpaceExhausted
}

// Join validates the raw code before any registry lookup, then applies the
// access predicate: the requester must already be a member (a creator
// re-entering their own session) or share a friendship with at least one
// current member. The predicate fails closed.
func (s *SessionService) Join(rawCode, username string) (domain.SessionCode, error) {
	if !domain.ValidSessionCode(rawCode) {
		return "", errors.ErrInvalidSessionCode
	}
	code := domain.SessionCode(rawCode)

	members, err := s.sessions.Members(code)
	if err != nil {
		return "", err
	}

	if !lo.Contains(members, username) {
		allowed, err := s.connectedToAny(username, members)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", errors.ErrAccessDenied
		}
		// AddMember re-checks existence transactionally: a session torn
		// down between the predicate and here surfaces as not-found, not
		// as a ghost membership.
		if err := s.sessions.AddMember(code, username); err != nil {
			return "", err
		}
	}

	s.monitor.IncrJoins()
	s.log.Info("User joined study session", "code", string(code), "user", username)
	return code, nil
}

// Authorize checks that username is a current member of an active session.
// Connections join over HTTP first; the socket endpoint only confirms.
func (s *SessionService) Authorize(code domain.SessionCode, username string) error {
	members, err := s.sessions.Members(code)
	if err != nil {
		return err
	}
	if !lo.Contains(members, username) {
		return errors.ErrAccessDenied
	}
	return nil
}

// Leave removes the caller and tears the session down once nobody is left:
// registry entry destroyed, broadcast path closed, history purge queued.
// Idempotent, because an explicit leave can race the disconnect path.
func (s *SessionService) Leave(code domain.SessionCode, username string) error {
	err := s.sessions.RemoveMember(code, username)
	if err == errors.ErrSessionNotFound {
		// Already torn down by the racing path.
		return nil
	}
	if err != nil {
		return err
	}
	s.monitor.IncrLeaves()

	empty, err := s.sessions.IsEmpty(code)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	// The removal above is durably committed before teardown starts, so a
	// racing join either sees a live session without us, or none at all.
	if err := s.sessions.Destroy(code); err != nil {
		return err
	}
	s.groups.CloseGroup(code.Group())
	s.log.Info("Study session torn down", "code", string(code), "last_member", username)
	return nil
}

func (s *SessionService) connectedToAny(username string, members []string) (bool, error) {
	for _, member := range members {
		friends, err := s.friends.AreFriends(member, username)
		if err != nil {
			return false, err
		}
		if friends {
			return true, nil
		}
	}
	return false, nil
}
