package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rinkpass/backend/internal/application/notification"
	"go.uber.org/zap"
)

// LoopsConfig holds Loops API configuration
type LoopsConfig struct {
	APIKey  string
	BaseURL string

	// Enabled gates sending. When false the client logs and drops every
	// send, which keeps development environments from emailing members.
	Enabled bool

	Timeout time.Duration
}

// Validate checks the configuration
func (c *LoopsConfig) Validate() error {
	if c.Enabled && c.APIKey == "" {
		return fmt.Errorf("loops: api key is required when enabled")
	}
	return nil
}

func (c *LoopsConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://app.loops.so/api/v1"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// LoopsClient sends transactional email through the Loops API
type LoopsClient struct {
	config     *LoopsConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLoopsClient creates a new Loops API client
func NewLoopsClient(config *LoopsConfig, logger *zap.Logger) (*LoopsClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return &LoopsClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// NewLoopsClientWithHTTPClient wraps an existing HTTP client. Useful for tests.
func NewLoopsClientWithHTTPClient(config *LoopsConfig, httpClient *http.Client, logger *zap.Logger) *LoopsClient {
	config.applyDefaults()
	return &LoopsClient{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

type transactionalRequest struct {
	TransactionalID string                 `json:"transactionalId"`
	Email           string                 `json:"email"`
	DataVariables   map[string]interface{} `json:"dataVariables,omitempty"`
}

// SendTransactional sends a templated transactional email
func (c *LoopsClient) SendTransactional(ctx context.Context, templateID, email string, dataVariables map[string]interface{}) error {
	if !c.config.Enabled {
		c.logger.Debug("Loops disabled, dropping transactional email",
			zap.String("template_id", templateID),
			zap.String("email", email))
		return nil
	}

	payload, err := json.Marshal(transactionalRequest{
		TransactionalID: templateID,
		Email:           email,
		DataVariables:   dataVariables,
	})
	if err != nil {
		return fmt.Errorf("loops: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/transactional", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("loops: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("loops: failed to send transactional email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("loops: transactional send returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	c.logger.Info("Sent transactional email",
		zap.String("template_id", templateID),
		zap.String("email", email))
	return nil
}

// Ensure LoopsClient implements the sender port
var _ notification.EmailSender = (*LoopsClient)(nil)
