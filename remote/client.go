package remote

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/common"
)

// DefaultTimeout bounds a single remote call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Getter is the transport used by every component that reads the remote application package.
type Getter interface {
	// Get reads the whole response body of url.
	Get(ctx context.Context, url string) ([]byte, error)
	// Open returns the response body of url as a stream. Callers must close it.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

type ClientOption struct {
	Timeout   time.Duration     // per call timeout, DefaultTimeout if zero
	Transport http.RoundTripper // optional custom transport
	LogOption common.LogOption
}

// Client issues plain HTTP GET requests against the remote host.
type Client struct {
	http   *http.Client
	logger *logrus.Logger
}

var _ Getter = (*Client)(nil)

// NewClient creates a new HTTP client with the given option.
func NewClient(option ...ClientOption) *Client {
	var opt ClientOption
	if len(option) > 0 {
		opt = option[0]
	}

	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}

	return &Client{
		http: &http.Client{
			Timeout:   opt.Timeout,
			Transport: opt.Transport,
		},
		logger: common.NewLogger(opt.LogOption),
	}
}

// Open sends a GET request and returns the response body if the status code is 2xx.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create request for %s", url)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("url", url).Debug("Failed to send GET request")
		return nil, errors.WithMessagef(err, "failed to GET %s", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		c.logger.WithFields(logrus.Fields{
			"url":    url,
			"status": resp.StatusCode,
		}).Debug("Remote returned non-success status")
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return resp.Body, nil
}

// Get sends a GET request and reads the whole response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read response body of %s", url)
	}

	return data, nil
}
