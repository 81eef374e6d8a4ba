package delivery

import (
	"context"
	"errors"
	"fmt"

	httpclient "rcm-benchmark/internal/common/http"
)

const (
	StatusSuccess  = "success"
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

// ClayNotifier posts payloads to a Clay table webhook.
type ClayNotifier struct {
	client     *httpclient.Client
	webhookURL string
}

func NewClayNotifier(client *httpclient.Client, webhookURL string) *ClayNotifier {
	return &ClayNotifier{client: client, webhookURL: webhookURL}
}

func (n *ClayNotifier) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

// Send posts the payload. Any 2xx answer is a success.
func (n *ClayNotifier) Send(ctx context.Context, payload ClayPayload) error {
	status, err := n.client.PostJSON(ctx, n.webhookURL, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &httpclient.StatusError{StatusCode: status}
	}
	return nil
}

// failureStatus renders err the way the webhook route reports it:
// "error: <http status>" or "error: <message>".
func failureStatus(err error) string {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("error: %d", statusErr.StatusCode)
	}
	return fmt.Sprintf("error: %s", err.Error())
}
