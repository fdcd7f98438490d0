package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/config"
	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
)

// AuthClient talks to the unauthenticated auth endpoints. It never attaches a token.
type AuthClient struct {
	httpClient *resty.Client
	metrics    *Metrics
	logger     *zap.Logger
	setupErr   error
}

// NewAuthClient builds the auth client against the same base URL as the record API.
func NewAuthClient(cfg config.InventoryConfig, opts ...Option) *AuthClient {
	// Options are declared on APIClient; apply them to a scratch value and copy
	// the shared settings over.
	scratch := &APIClient{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(scratch)
	}

	httpClient, err := newRestyClient(cfg)
	return &AuthClient{
		httpClient: httpClient,
		metrics:    scratch.metrics,
		logger:     scratch.logger,
		setupErr:   err,
	}
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login posts the credentials and returns the issued token. Rejected credentials
// come back as an ErrorUnauthorized report.
func (a *AuthClient) Login(ctx context.Context, creds models.Credentials) (string, error) {
	body, err := a.post(ctx, "login", loginPath, creds)
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil || strings.TrimSpace(resp.Token) == "" {
		return "", models.NewErrorReport(models.ErrorUnknown, "login response did not contain a token")
	}
	return resp.Token, nil
}

// Register creates a backend user.
func (a *AuthClient) Register(ctx context.Context, reg models.Registration) error {
	_, err := a.post(ctx, "register", registerPath, reg)
	return err
}

func (a *AuthClient) post(ctx context.Context, operation, path string, payload any) ([]byte, error) {
	started := time.Now()

	if a.setupErr != nil {
		report := models.NewErrorReport(models.ErrorUnknown, msgRequestNotSent)
		a.metrics.observe(operation, started, report)
		return nil, report
	}

	resp, err := a.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(path)
	if err != nil {
		report := normalizeTransport(err)
		a.logger.Warn("auth request failed", zap.String("operation", operation), zap.Error(err))
		a.metrics.observe(operation, started, report)
		return nil, report
	}

	if resp.IsError() {
		report := normalizeResponse(resp.StatusCode(), resp.Body())
		if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
			report.Message = "invalid login or password"
		}
		a.logger.Info("auth request rejected",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode()),
			zap.String("kind", string(report.Kind)))
		a.metrics.observe(operation, started, report)
		return nil, report
	}

	a.metrics.observe(operation, started, nil)
	return resp.Body(), nil
}
