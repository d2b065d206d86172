package history

import "time"

// Exchange is one completed turn: what the user said, what the agent replied,
// and the embedding of the combined turn text.
type Exchange struct {
	Id              int64
	UserId          string
	UserDisplayName string
	UserMessage     string
	AgentMessage    string
	Embedding       []float32
	CreatedAt       time.Time
}
