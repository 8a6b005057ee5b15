package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
)

func storeN(t *testing.T, repo MessageRepository, group domain.GroupID, n int) {
	t.Helper()
	at := time.Now().UTC()
	for i := 1; i <= n; i++ {
		err := repo.Store(domain.Message{
			ID:        uuid.New(),
			Group:     group,
			Author:    fmt.Sprintf("user_%d", i),
			Content:   fmt.Sprintf("Message %d", i),
			CreatedAt: at.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func Test_GetPage_Newest_First(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(openTestDB(t), slog.Default())
	group := domain.GroupID("study_session_AbCdEfGhIjKl")
	storeN(t, repo, group, 3)

	// When fetching the first page
	page, hasNext, err := repo.GetPage(group, 1, 10)
	req.NoError(err)

	// Then messages come newest first and the window covers everything
	req.Len(page, 3)
	req.Equal("Message 3", page[0].Content)
	req.Equal("Message 1", page[2].Content)
	req.False(hasNext)
}

func Test_GetPage_Pagination_Windows(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(openTestDB(t), slog.Default())
	group := domain.GroupID("study_session_AbCdEfGhIjKl")
	storeN(t, repo, group, 25)

	// --- PAGE 1: messages 25..16, more behind ---
	page1, hasNext, err := repo.GetPage(group, 1, 10)
	req.NoError(err)
	req.Len(page1, 10)
	req.Equal("user_25", page1[0].Author)
	req.Equal("user_16", page1[9].Author)
	req.True(hasNext)

	// --- PAGE 3: the 5 oldest, nothing behind ---
	page3, hasNext, err := repo.GetPage(group, 3, 10)
	req.NoError(err)
	req.Len(page3, 5)
	req.Equal("user_5", page3[0].Author)
	req.Equal("user_1", page3[4].Author)
	req.False(hasNext)

	// --- PAGE 4: past the end ---
	page4, hasNext, err := repo.GetPage(group, 4, 10)
	req.NoError(err)
	req.Empty(page4)
	req.False(hasNext)
}

func Test_GetPage_Exact_Boundary(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(openTestDB(t), slog.Default())
	group := domain.GroupID("study_session_AbCdEfGhIjKl")
	storeN(t, repo, group, 10)

	// A page that exactly exhausts the set must not promise another one
	page, hasNext, err := repo.GetPage(group, 1, 10)
	req.NoError(err)
	req.Len(page, 10)
	req.False(hasNext)
}

func Test_Groups_Are_Isolated(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(openTestDB(t), slog.Default())
	groupA := domain.GroupID("study_session_AbCdEfGhIjKl")
	groupB := domain.GroupID("study_session_MnOpQrStUvWx")
	storeN(t, repo, groupA, 3)
	storeN(t, repo, groupB, 1)

	page, _, err := repo.GetPage(groupA, 1, 10)
	req.NoError(err)
	req.Len(page, 3)

	// When one group's history is purged
	req.NoError(repo.PurgeGroup(groupA))

	// Then it is empty while the other group is untouched
	page, hasNext, err := repo.GetPage(groupA, 1, 10)
	req.NoError(err)
	req.Empty(page)
	req.False(hasNext)

	page, _, err = repo.GetPage(groupB, 1, 10)
	req.NoError(err)
	req.Len(page, 1)

	// Purging an already-empty group is a no-op
	req.NoError(repo.PurgeGroup(groupA))
}

func Test_Chronological_Flips_A_Page(t *testing.T) {
	req := require.New(t)
	newestFirst := []domain.Message{
		{Content: "third"},
		{Content: "second"},
		{Content: "first"},
	}

	flipped := Chronological(newestFirst)

	req.Equal("first", flipped[0].Content)
	req.Equal("third", flipped[2].Content)
	// The input page is left as-is
	req.Equal("third", newestFirst[0].Content)
}
