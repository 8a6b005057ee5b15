package domain

// Command is anything routed through a group's serialized broadcast path.
type Command interface {
	Target() GroupID
}

// PostMessageCommand carries one inbound chat message toward its group worker.
// The worker assigns the authoritative timestamp at persistence time.
type PostMessageCommand struct {
	Group     GroupID
	Author    string
	AvatarURL string
	Content   string
}

func (c PostMessageCommand) Target() GroupID {
	return c.Group
}
