package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ClientOptions tunes the HTTP client shared by webhook notifiers.
type ClientOptions struct {
	Timeout  time.Duration
	RetryMax int
	Logger   *slog.Logger
}

// NewHTTPClient builds a retrying client. Rate limited (429) and 5xx
// responses are retried with backoff.
func NewHTTPClient(opts ClientOptions) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 10 * time.Second
	client.HTTPClient.Timeout = opts.Timeout
	if client.HTTPClient.Timeout == 0 {
		client.HTTPClient.Timeout = 10 * time.Second
	}
	// Hand the final response back so callers can report its status.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	if opts.Logger != nil {
		client.Logger = opts.Logger
	}
	return client
}

// postJSON sends body to url and fails on any non-2xx status.
func postJSON(ctx context.Context, client *retryablehttp.Client, endpoint string, body []byte, headers map[string]string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("returned status %d", resp.StatusCode)
	}
	return nil
}

// redactURLError keeps only scheme and host of a transport error's URL.
// Webhook URLs carry their token in the path.
func redactURLError(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	host := "[REDACTED]"
	if u, perr := url.Parse(uerr.URL); perr == nil && u.Host != "" {
		host = u.Scheme + "://" + u.Host
	}
	return &url.Error{Op: uerr.Op, URL: host, Err: uerr.Err}
}
