package delivery

import "context"

// Client pushes a generated reply back to the sender. Failures are reported
// to the caller, which logs them; there are no retries.
type Client interface {
	Send(ctx context.Context, recipientId string, text string) error
}
