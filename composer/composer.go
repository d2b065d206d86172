// Package composer turns a user profile, retrieved history, and a new message
// into a prompt. Compose is pure: same inputs, same output.
package composer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/m-g-r/relay/history"
	"github.com/m-g-r/relay/profile"
)

const (
	persona = "You are a personal assistant chatting with one user over a messaging app."

	// Fixed channel hint. Prompt content, not program logic.
	channelHint = "Replies must read like a chat message: conversational, reasonably short, no markdown tables or headings."

	noHistoryLine = "There is no relevant prior conversation with this user. Do not refer to earlier exchanges."
)

func Compose(p profile.Profile, exchanges []history.Exchange, message string) (string, string) {
	var system bytes.Buffer

	system.WriteString(persona)
	system.WriteString(fmt.Sprintf("\n\nYou are talking to %s.", p.DisplayName))
	system.WriteString(fmt.Sprintf("\nBackground on this user (use only when relevant, never force it into the reply): %s", p.About))
	system.WriteString("\n\n")
	system.WriteString(channelHint)

	var prompt bytes.Buffer

	if len(exchanges) == 0 {
		prompt.WriteString(noHistoryLine)
	} else {
		prompt.WriteString("Relevant prior exchanges with this user, nearest first:\n")
		for i, x := range exchanges {
			prompt.WriteString(fmt.Sprintf("%d. User said: %q\n", i+1, x.UserMessage))
			prompt.WriteString(fmt.Sprintf("   You replied: %q\n", x.AgentMessage))
		}
	}

	prompt.WriteString("\nCurrent message from the user:\n")
	prompt.WriteString(strings.TrimSpace(message))
	prompt.WriteString("\n\nCompose the best possible reply.\n")

	return system.String(), prompt.String()
}
