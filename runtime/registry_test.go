package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/projection"
)

func Test_Registry_Scopes_Sinks_By_Group(t *testing.T) {
	req := require.New(t)
	registry := NewConnRegistry()
	groupA := domain.GroupID("study_session_AbCdEfGhIjKl")
	groupB := domain.GroupID("study_session_MnOpQrStUvWx")

	registry.Subscribe("conn-1", groupA, projection.NewTimeline())
	registry.Subscribe("conn-2", groupA, projection.NewTimeline())
	registry.Subscribe("conn-3", groupB, projection.NewTimeline())

	req.Len(registry.SinksFor(groupA), 2)
	req.Len(registry.SinksFor(groupB), 1)
	req.Nil(registry.SinksFor(domain.GroupID("study_session_Unknown")))
}

func Test_Registry_Unsubscribe_Releases_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewConnRegistry()
	group := domain.GroupID("study_session_AbCdEfGhIjKl")

	registry.Subscribe("conn-1", group, projection.NewTimeline())
	registry.Subscribe("conn-2", group, projection.NewTimeline())

	registry.Unsubscribe("conn-1", group)
	req.Len(registry.SinksFor(group), 1)

	registry.Unsubscribe("conn-2", group)
	req.Nil(registry.SinksFor(group))

	// Unsubscribing twice or for an unknown group is harmless
	registry.Unsubscribe("conn-2", group)
	registry.Unsubscribe("ghost", domain.GroupID("study_session_Unknown"))
}
