package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
	"github.com/Alex-SA1/Efficient-Study-Platform/observability"
	"github.com/Alex-SA1/Efficient-Study-Platform/projection"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
	"github.com/Alex-SA1/Efficient-Study-Platform/runtime/workers"
)

func newHubFixture(t *testing.T) (*Hub, repositories.MessageRepository) {
	t.Helper()
	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromString("ERROR")
	sup := workers.NewSupervisor(log, 100*time.Millisecond)
	messages := repositories.NewMessageRepository(db, log)
	hub := NewHub(log, sup, NewConnRegistry(), messages,
		observability.NewMonitor(), 64, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub.Start(ctx)
	return hub, messages
}

func Test_Dispatch_Delivers_Once_Per_Bound_Connection(t *testing.T) {
	req := require.New(t)
	hub, messages := newHubFixture(t)
	group := domain.SessionCode("AbCdEfGhIjKl").Group()

	observerA := projection.NewTimeline()
	observerB := projection.NewTimeline()
	hub.Bind("conn-a", group, observerA)
	hub.Bind("conn-b", group, observerB)

	req.NoError(hub.Dispatch(domain.PostMessageCommand{
		Group:   group,
		Author:  "alice",
		Content: "hello group",
	}))

	// Both connections, including the sender's, see the message exactly once
	req.Eventually(func() bool {
		return len(observerA.Messages()) == 1 && len(observerB.Messages()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	got := observerA.Messages()[0]
	req.Equal("alice", got.Author)
	req.Equal("hello group", got.Content)
	req.False(got.CreatedAt.IsZero())

	// And the message was durably stored before the broadcast
	page, _, err := messages.GetPage(group, 1, 10)
	req.NoError(err)
	req.Len(page, 1)
	req.Equal(got.ID, page[0].ID)
}

func Test_Dispatch_Preserves_Order_Per_Group(t *testing.T) {
	req := require.New(t)
	hub, _ := newHubFixture(t)
	group := domain.SessionCode("AbCdEfGhIjKl").Group()

	observer := projection.NewTimeline()
	hub.Bind("conn-a", group, observer)

	for _, content := range []string{"one", "two", "three"} {
		req.NoError(hub.Dispatch(domain.PostMessageCommand{
			Group: group, Author: "alice", Content: content,
		}))
	}

	req.Eventually(func() bool {
		return len(observer.Messages()) == 3
	}, 3*time.Second, 10*time.Millisecond)

	seen := observer.Messages()
	req.Equal("one", seen[0].Content)
	req.Equal("two", seen[1].Content)
	req.Equal("three", seen[2].Content)
	req.False(seen[1].CreatedAt.Before(seen[0].CreatedAt))
	req.False(seen[2].CreatedAt.Before(seen[1].CreatedAt))
}

func Test_Released_Connection_Stops_Receiving(t *testing.T) {
	req := require.New(t)
	hub, _ := newHubFixture(t)
	group := domain.SessionCode("AbCdEfGhIjKl").Group()

	stayer := projection.NewTimeline()
	leaver := projection.NewTimeline()
	hub.Bind("conn-stay", group, stayer)
	hub.Bind("conn-leave", group, leaver)

	hub.Release("conn-leave", group)

	req.NoError(hub.Dispatch(domain.PostMessageCommand{
		Group: group, Author: "alice", Content: "after release",
	}))

	req.Eventually(func() bool {
		return len(stayer.Messages()) == 1
	}, 3*time.Second, 10*time.Millisecond)
	req.Empty(leaver.Messages())
}

func Test_CloseGroup_Kills_The_Path_And_Queues_The_Purge(t *testing.T) {
	req := require.New(t)
	hub, _ := newHubFixture(t)
	group := domain.SessionCode("AbCdEfGhIjKl").Group()

	hub.Bind("conn-a", group, projection.NewTimeline())
	hub.CloseGroup(group)

	// Dispatch into a closed group reads as session gone
	err := hub.Dispatch(domain.PostMessageCommand{
		Group: group, Author: "alice", Content: "too late",
	})
	req.ErrorIs(err, errors.ErrSessionNotFound)

	// The teardown handed the group to the purge queue
	select {
	case purged := <-hub.PurgeJobs():
		req.Equal(group, purged)
	case <-time.After(time.Second):
		req.FailNow("no purge job queued")
	}

	// Closing twice stays safe
	hub.CloseGroup(group)
}
