//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
)

type IChatService interface {
	PostMessage(cmd domain.PostMessageCommand) error
	HistoryPage(group domain.GroupID, page, size int) ([]domain.Message, bool, error)
}

// Dispatcher is the hub surface the chat service posts through.
type Dispatcher interface {
	Dispatch(cmd domain.PostMessageCommand) error
}

// ChatService fronts the broadcast path and the history pagination protocol.
type ChatService struct {
	hub      Dispatcher
	messages repositories.IMessageRepository
}

func NewChatService(hub Dispatcher, messages repositories.IMessageRepository) *ChatService {
	return &ChatService{hub: hub, messages: messages}
}

// PostMessage hands the message to its group's serialized path, which
// persists it and only then broadcasts it to every bound connection.
func (s *ChatService) PostMessage(cmd domain.PostMessageCommand) error {
	return s.hub.Dispatch(cmd)
}

// HistoryPage returns one page in chronological (oldest-first) order, ready
// for append-to-bottom rendering, plus whether an older page exists.
// Page 1 holds the most recent messages.
func (s *ChatService) HistoryPage(group domain.GroupID, page, size int) ([]domain.Message, bool, error) {
	newestFirst, hasNext, err := s.messages.GetPage(group, page, size)
	if err != nil {
		return nil, false, err
	}
	return repositories.Chronological(newestFirst), hasNext, nil
}
