// Package apis holds the HTTP plumbing shared by the upstream providers.
package apis

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"weatherdash/logger"
	"weatherdash/metrics"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "weatherdash/1.0"
)

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// NewClient builds a resty client for one upstream service. Every response is
// logged and counted under service.
func NewClient(service string, opts Options) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		metrics.ObserveUpstream(service, resp.StatusCode(), resp.Time())
		logger.Debugw("upstream response",
			"service", service,
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"bytes", len(resp.Body()),
		)
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		metrics.ObserveUpstream(service, 0, time.Since(req.Time))
		logger.Debugw("upstream request failed", "service", service, "url", req.URL, "error", err)
	})

	return client
}

// StatusError describes a non-2xx upstream response.
func StatusError(resp *resty.Response) error {
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, resp.Body(), "", "  "); err != nil {
		return fmt.Errorf("status code: %d", resp.StatusCode())
	}
	return fmt.Errorf("status code: %d\n%s", resp.StatusCode(), buf.String())
}
