package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/config"
	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

const requestIDHeader = "X-Request-ID"

// Client exposes the record operations of the remote inventory API. A non-nil error
// returned by any method is always a *models.ErrorReport.
type Client interface {
	List(ctx context.Context) ([]models.Record, error)
	Create(ctx context.Context, fields models.RecordFields) (models.Record, error)
	Update(ctx context.Context, id string, fields models.RecordFields) (models.Record, error)
	Remove(ctx context.Context, id string) error
}

// Credentials is the session view the gateway needs: the token to attach and the
// hook to call when the server rejects it.
type Credentials interface {
	CurrentToken() (string, bool)
	Invalidate(report *models.ErrorReport)
}

// Option customizes an APIClient.
type Option func(*APIClient)

// WithMetrics records call counts and latency.
func WithMetrics(m *Metrics) Option {
	return func(c *APIClient) { c.metrics = m }
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *APIClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient  *resty.Client
	resource    string
	credentials Credentials
	metrics     *Metrics
	logger      *zap.Logger
	setupErr    error
}

// NewClient builds an inventory API client. Every request carries the current
// token of creds as a bearer credential when one is present.
func NewClient(cfg config.InventoryConfig, creds Credentials, opts ...Option) *APIClient {
	c := &APIClient{
		resource:    strings.Trim(cfg.Resource, "/"),
		credentials: creds,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient, c.setupErr = newRestyClient(cfg)
	c.httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.credentials == nil {
			return nil
		}
		if token, ok := c.credentials.CurrentToken(); ok {
			req.SetAuthToken(token)
		}
		return nil
	})

	if c.setupErr != nil {
		c.logger.Error("inventory client misconfigured", zap.Error(c.setupErr))
	}

	return c
}

func newRestyClient(cfg config.InventoryConfig) (*resty.Client, error) {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader(requestIDHeader, uuid.NewString())
		return nil
	})

	parsed, err := url.Parse(base)
	if err != nil {
		return client, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return client, fmt.Errorf("base url %q must use http or https", cfg.BaseURL)
	}
	if parsed.Host == "" {
		return client, fmt.Errorf("base url %q has no host", cfg.BaseURL)
	}

	return client, nil
}

// List fetches every record.
func (c *APIClient) List(ctx context.Context) ([]models.Record, error) {
	body, err := c.do(ctx, "list", http.MethodGet, c.collectionPath(), nil)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0)
	if len(strings.TrimSpace(string(body))) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(body, &records); err != nil {
		c.logger.Warn("malformed list response", zap.Error(err))
		return nil, models.NewErrorReport(models.ErrorUnknown, "malformed response from inventory server")
	}
	return records, nil
}

// Create submits a new record and returns the server's copy.
func (c *APIClient) Create(ctx context.Context, fields models.RecordFields) (models.Record, error) {
	body, err := c.do(ctx, "create", http.MethodPost, c.collectionPath(), fields)
	if err != nil {
		return models.Record{}, err
	}
	return c.decodeRecord(body)
}

// Update replaces the fields of an existing record.
func (c *APIClient) Update(ctx context.Context, id string, fields models.RecordFields) (models.Record, error) {
	body, err := c.do(ctx, "update", http.MethodPut, c.itemPath(id), fields)
	if err != nil {
		return models.Record{}, err
	}
	return c.decodeRecord(body)
}

// Remove deletes a record.
func (c *APIClient) Remove(ctx context.Context, id string) error {
	_, err := c.do(ctx, "remove", http.MethodDelete, c.itemPath(id), nil)
	return err
}

func (c *APIClient) collectionPath() string {
	return "/" + c.resource
}

func (c *APIClient) itemPath(id string) string {
	return fmt.Sprintf("/%s/%s", c.resource, url.PathEscape(id))
}

func (c *APIClient) decodeRecord(body []byte) (models.Record, error) {
	var record models.Record
	if len(strings.TrimSpace(string(body))) == 0 {
		return record, nil
	}
	if err := json.Unmarshal(body, &record); err != nil {
		c.logger.Warn("malformed record response", zap.Error(err))
		return models.Record{}, models.NewErrorReport(models.ErrorUnknown, "malformed response from inventory server")
	}
	return record, nil
}

// do sends one request and normalizes every failure into an ErrorReport. A 401 or
// 403 on any call invalidates the session before the report is returned.
func (c *APIClient) do(ctx context.Context, operation, method, path string, payload any) ([]byte, error) {
	started := time.Now()

	if c.setupErr != nil {
		report := models.NewErrorReport(models.ErrorUnknown, msgRequestNotSent)
		c.metrics.observe(operation, started, report)
		return nil, report
	}

	req := c.httpClient.R().SetContext(ctx)
	if payload != nil {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		report := normalizeTransport(err)
		c.logger.Warn("inventory request failed",
			zap.String("operation", operation),
			zap.String("kind", string(report.Kind)),
			zap.Error(err))
		c.metrics.observe(operation, started, report)
		return nil, report
	}

	if resp.IsError() {
		report := normalizeResponse(resp.StatusCode(), resp.Body())
		c.logger.Warn("inventory request rejected",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode()),
			zap.String("kind", string(report.Kind)),
			zap.String("request_id", resp.Request.Header.Get(requestIDHeader)))
		if conflictingMessages(resp.Body()) {
			c.logger.Warn("error body carries both message fields with different text",
				zap.String("operation", operation),
				zap.Strings("fields", messageFields),
				zap.String("used", report.Message))
		}
		c.metrics.observe(operation, started, report)
		if report.Kind == models.ErrorUnauthorized && c.credentials != nil {
			c.credentials.Invalidate(report)
		}
		return nil, report
	}

	c.logger.Debug("inventory request completed",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(started)))
	c.metrics.observe(operation, started, nil)

	return resp.Body(), nil
}
