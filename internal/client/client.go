package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kelsos/blend-actions/internal/config"
	"github.com/kelsos/blend-actions/internal/logger"
	"github.com/kelsos/blend-actions/internal/models"
)

// APIError is a non-200 answer from the actions server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Message)
}

// APIClient handles all HTTP communication with an actions server
type APIClient struct {
	config     *config.Config
	httpClient *http.Client
	retryDelay time.Duration
}

// NewAPIClient creates a new API client with the given configuration
func NewAPIClient(cfg *config.Config) *APIClient {
	return &APIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		retryDelay: time.Second,
	}
}

// BuildURL constructs a full URL for the given endpoint
func (c *APIClient) BuildURL(endpoint string) string {
	return fmt.Sprintf("%s/api/1%s", c.config.ServerURL, endpoint)
}

// Get makes a GET request to the specified endpoint
func (c *APIClient) Get(ctx context.Context, endpoint string, result interface{}) error {
	return c.request(ctx, http.MethodGet, endpoint, nil, result)
}

// Post makes a POST request to the specified endpoint
func (c *APIClient) Post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPost, endpoint, body, result)
}

// request is the core HTTP request method
func (c *APIClient) request(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	url := c.BuildURL(endpoint)
	start := time.Now()
	logger.Debug("Starting %s request to %s", method, url)

	var requestBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling request body: %w", err)
		}
		requestBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		logger.Error("Request failed after (%s) %v: %v", url, elapsed, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	logger.Debug("Request to %s completed in %v with status %d", url, elapsed, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		message := string(bodyBytes)

		var envelope models.APIResponse[json.RawMessage]
		if json.Unmarshal(bodyBytes, &envelope) == nil && envelope.Message != "" {
			message = envelope.Message
		}

		logger.Error("%s: HTTP error %d: %s", url, resp.StatusCode, message)
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			logger.Error("%s: Error decoding response: %v", url, err)
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// ResolveActions asks the server for the actions of addresses
func (c *APIClient) ResolveActions(ctx context.Context, addresses []string) (models.ActionsByAddress, error) {
	var response models.ActionsResponse
	if err := c.Post(ctx, "/actions", models.ActionsRequest{Addresses: addresses}, &response); err != nil {
		return nil, fmt.Errorf("failed to resolve actions: %w", err)
	}
	if response.Result == nil {
		response.Result = models.ActionsByAddress{}
	}
	return response.Result, nil
}

// Ping checks if the API is ready
func (c *APIClient) Ping(ctx context.Context) error {
	var response models.PingResponse
	if err := c.Get(ctx, "/ping", &response); err != nil {
		return err
	}
	if !response.Result {
		return fmt.Errorf("ping returned false")
	}
	return nil
}

// WaitForAPIReady waits for the API to become ready
func (c *APIClient) WaitForAPIReady(ctx context.Context) bool {
	logger.Info("Checking API readiness...")

	for attempt := 1; attempt <= c.config.APIReadyTimeout; attempt++ {
		logger.Debug("Checking API readiness (attempt %d/%d)...", attempt, c.config.APIReadyTimeout)

		if err := c.Ping(ctx); err == nil {
			logger.Info("API is ready!")
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.retryDelay):
		}
	}

	logger.Error("API failed to become ready after %d attempts", c.config.APIReadyTimeout)
	return false
}
