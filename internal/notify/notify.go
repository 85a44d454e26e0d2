// Package notify delivers the rendered report through the outbound
// messaging channel.
package notify

import (
	"context"
	"net/http"
)

// Notifier sends one finished message body and reports the channel's
// delivery identifier. It is invoked exactly once per run; the pipeline
// never chunks or retries on its behalf.
type Notifier interface {
	Send(ctx context.Context, body string) (deliveryID string, err error)
}

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=notify_test -destination=mock_http_client_test.go -source=notify.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
