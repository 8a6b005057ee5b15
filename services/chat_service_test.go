package services

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
)

type recordingDispatcher struct {
	dispatched []domain.PostMessageCommand
}

func (r *recordingDispatcher) Dispatch(cmd domain.PostMessageCommand) error {
	r.dispatched = append(r.dispatched, cmd)
	return nil
}

func Test_PostMessage_Goes_Through_The_Group_Path(t *testing.T) {
	req := require.New(t)
	dispatcher := &recordingDispatcher{}
	service := NewChatService(dispatcher, repositories.MessageRepository{})

	cmd := domain.PostMessageCommand{
		Group:   domain.GroupID("study_session_AbCdEfGhIjKl"),
		Author:  "alice",
		Content: "hello",
	}
	req.NoError(service.PostMessage(cmd))
	req.Equal([]domain.PostMessageCommand{cmd}, dispatcher.dispatched)
}

func Test_HistoryPage_Is_Chronological(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	messages := repositories.NewMessageRepository(db, slog.Default())
	service := NewChatService(&recordingDispatcher{}, messages)
	group := domain.GroupID("study_session_AbCdEfGhIjKl")

	at := time.Now().UTC()
	for i := 1; i <= 25; i++ {
		req.NoError(messages.Store(domain.Message{
			ID:        uuid.New(),
			Group:     group,
			Author:    "alice",
			Content:   fmt.Sprintf("Message %d", i),
			CreatedAt: at.Add(time.Duration(i) * time.Second),
		}))
	}

	// Page 1 holds the newest 10, oldest of them first for rendering
	page, hasNext, err := service.HistoryPage(group, 1, 10)
	req.NoError(err)
	req.Len(page, 10)
	req.Equal("Message 16", page[0].Content)
	req.Equal("Message 25", page[9].Content)
	req.True(hasNext)

	// Page 3 holds the 5 oldest, and promises nothing further
	page, hasNext, err = service.HistoryPage(group, 3, 10)
	req.NoError(err)
	req.Len(page, 5)
	req.Equal("Message 1", page[0].Content)
	req.Equal("Message 5", page[4].Content)
	req.False(hasNext)
}
