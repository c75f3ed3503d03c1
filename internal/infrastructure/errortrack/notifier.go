package errortrack

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier forwards server errors to an external collector.
// The global error handler calls it for every Internal-kind failure.
type Notifier interface {
	Notify(ctx context.Context, err error, requestID string, fields map[string]interface{})
}

// NopNotifier is used when no collector is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, error, string, map[string]interface{}) {}

// WebhookNotifier posts error reports to an HTTP endpoint.
// Delivery is best-effort; a failed report is only logged.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type report struct {
	Error     string                 `json:"error"`
	RequestID string                 `json:"requestId"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, err error, requestID string, fields map[string]interface{}) {
	payload, marshalErr := json.Marshal(report{
		Error:     err.Error(),
		RequestID: requestID,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	})
	if marshalErr != nil {
		return
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if reqErr != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, postErr := n.httpClient.Do(req)
	if postErr != nil {
		log.Warn().Err(postErr).Msg("Error tracker delivery failed")
		return
	}
	resp.Body.Close()
}
