// Package client provides the FluentCRM HTTP gateway: authenticated
// JSON requests with error classification.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for CRM client operations.
var (
	crmRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fluentcrm_requests_total",
		Help: "Total FluentCRM requests by endpoint and status",
	}, []string{"endpoint", "status"})

	crmRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fluentcrm_request_duration_seconds",
		Help:    "FluentCRM request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	crmErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fluentcrm_errors_total",
		Help: "Total FluentCRM errors by class",
	}, []string{"class"})
)

// APIBasePath is the versioned REST root FluentCRM exposes under a
// WordPress installation.
const APIBasePath = "/wp-json/fluent-crm/v2"

// noContentMarker is returned for 204 responses, which carry no body.
const noContentMarker = `{"message":"Operation successful, no content returned."}`

// Client is the FluentCRM API gateway. It binds a credential at
// construction and turns (method, endpoint, body) triples into
// authenticated HTTP requests.
type Client struct {
	httpClient *http.Client
	apiRoot    string
	authHeader string
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the WordPress site root, e.g. "https://crm.example.com".
	// A trailing slash is tolerated.
	BaseURL string

	// Username and Password form the basic-auth identity.
	Username string
	Password string

	// Timeout bounds each request. Zero means the 30s default.
	Timeout time.Duration
}

// New creates a new FluentCRM client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	credentials := cfg.Username + ":" + cfg.Password
	authHeader := "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))

	logger := log.With().Str("component", "crm-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiRoot:    strings.TrimRight(cfg.BaseURL, "/") + APIBasePath,
		authHeader: authHeader,
		logger:     logger,
	}, nil
}

// APIRoot returns the absolute URL of the versioned API root.
func (c *Client) APIRoot() string {
	return c.apiRoot
}

// RelativeEndpoint strips the API root prefix from an absolute URL,
// yielding an endpoint usable with Request. Pagination continuation
// links come back absolute and are rewritten through this before the
// next page is requested.
func (c *Client) RelativeEndpoint(absoluteURL string) string {
	if idx := strings.Index(absoluteURL, APIBasePath+"/"); idx >= 0 {
		return absoluteURL[idx+len(APIBasePath)+1:]
	}
	return absoluteURL
}

// Request performs an authenticated JSON request against the API and
// returns the raw response document.
//
// The endpoint is relative to the versioned API root ("tags",
// "subscribers/42", "tags?page=2"). A non-nil body is sent as JSON.
// A 204 response yields a synthetic success marker since there is no
// body to parse. Any non-2xx status or transport failure returns an
// *APIError; nothing is retried.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	url := c.apiRoot + "/" + endpoint

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Msg("Executing CRM request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	crmRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		crmErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		crmRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Message:    fmt.Sprintf("%s %s failed", method, endpoint),
			Err:        err,
		}
	}
	defer resp.Body.Close()

	crmRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNoContent {
		return json.RawMessage(noContentMarker), nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		class := classifyStatus(resp.StatusCode)
		crmErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("CRM request error")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if !json.Valid(respBody) {
		return nil, fmt.Errorf("response from %s is not valid JSON", endpoint)
	}

	return json.RawMessage(respBody), nil
}

// classifyStatus categorizes an HTTP status for observability and
// error reporting.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
