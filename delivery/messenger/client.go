package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/m-g-r/relay/delivery"
)

const maxTextChars = 3900

type messengerClient struct {
	options    delivery.Options
	httpClient *http.Client
}

type sendRequest struct {
	RecipientId string `json:"recipient_id"`
	Text        string `json:"text"`
}

func (c *messengerClient) Send(ctx context.Context, recipientId string, text string) error {
	body, err := json.Marshal(sendRequest{
		RecipientId: recipientId,
		Text:        truncate(text, maxTextChars),
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.Location+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(c.options.Token) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.options.Token)
	}

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("message send request failed: %w", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= 300 {
		b, _ := io.ReadAll(rsp.Body)
		return fmt.Errorf("message send failed: %s %s", rsp.Status, string(b))
	}

	io.Copy(io.Discard, rsp.Body) // drain

	return nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

func NewClient(opts ...delivery.Option) delivery.Client {
	options := delivery.NewOptions(opts...)

	return &messengerClient{
		options: options,
		httpClient: &http.Client{
			Timeout: options.Timeout,
		},
	}
}
