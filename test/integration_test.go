package test

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain/event"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
	"github.com/Alex-SA1/Efficient-Study-Platform/infrastructure/http"
	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
	"github.com/Alex-SA1/Efficient-Study-Platform/runtime"
	"github.com/Alex-SA1/Efficient-Study-Platform/runtime/workers"
	"github.com/Alex-SA1/Efficient-Study-Platform/services"
)

// Test_Scenario wires the whole subsystem together, no fakes: two friends
// share a study session end to end, from code generation to teardown.
func Test_Scenario(t *testing.T) {
	req := require.New(t)
	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)

	log := logs.GetLoggerFromString("ERROR")
	monitor := observability.NewMonitor()
	supervisor := workers.NewSupervisor(log, 200*time.Millisecond)
	sessionRepo := repositories.NewSessionRepository(db, log)
	messageRepo := repositories.NewMessageRepository(db, log)
	friendRepo := repositories.NewFriendshipRepository(db)

	hub := runtime.NewHub(log, supervisor, runtime.NewConnRegistry(),
		messageRepo, monitor, 64, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)

	supervisor.Add(workers.NewPurgeWorker(hub.PurgeJobs(), messageRepo,
		monitor, 3, 10*time.Millisecond, log))
	go supervisor.Run(ctx)

	sessions := services.NewSessionService(sessionRepo, friendRepo, hub,
		monitor, 5, log)
	chat := services.NewChatService(hub, messageRepo)

	t.Cleanup(func() {
		cancel()
		supervisor.Stop()
		db.Close()
	})

	// Given alice and bob are friends, and charlie knows nobody
	req.NoError(friendRepo.Add(domain.Friendship{UserA: "alice", UserB: "bob"}))

	// When alice spins up a study session
	code, err := sessions.GenerateCode("alice")
	req.NoError(err)

	// Then her friend may enter and the stranger may not
	_, err = sessions.Join(string(code), "bob")
	req.NoError(err)
	_, err = sessions.Join(string(code), "charlie")
	req.ErrorIs(err, errors.ErrAccessDenied)

	// And both members hook a live sink onto the group
	group := code.Group()
	sinkAlice := http.NewSink(16)
	sinkBob := http.NewSink(16)
	hub.Bind("conn-alice", group, sinkAlice)
	hub.Bind("conn-bob", group, sinkBob)

	// When bob posts a message
	req.NoError(chat.PostMessage(domain.PostMessageCommand{
		Group:   group,
		Author:  "bob",
		Content: "this message will self destruct in 5 seconds",
	}))

	// Then both members see it exactly once
	for _, sink := range []*http.Sink{sinkAlice, sinkBob} {
		select {
		case e := <-sink.Events():
			posted, ok := e.(event.MessagePosted)
			req.True(ok)
			req.Equal("bob", posted.Author)
			req.Equal("this message will self destruct in 5 seconds", posted.Content)
		case <-time.After(2 * time.Second):
			req.Fail("Timeout: message has never reached the sink")
		}
	}

	// And it is durable
	page, _, err := messageRepo.GetPage(group, 1, 10)
	req.NoError(err)
	req.Len(page, 1)

	// When everyone leaves, the session dies and its history is purged
	hub.Release("conn-alice", group)
	hub.Release("conn-bob", group)
	req.NoError(sessions.Leave(code, "alice"))
	req.NoError(sessions.Leave(code, "bob"))

	_, err = sessions.Join(string(code), "bob")
	req.ErrorIs(err, errors.ErrSessionNotFound)

	req.Eventually(func() bool {
		page, _, err := messageRepo.GetPage(group, 1, 10)
		return err == nil && len(page) == 0
	}, 3*time.Second, 20*time.Millisecond)
}
