package bhashini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrMissingCredentials is returned when required credentials are empty.
	ErrMissingCredentials = errors.New("missing bhashini credentials")
	// ErrNoOutput is returned when the pipeline response lacks the expected
	// task output.
	ErrNoOutput = errors.New("pipeline returned no output for task")
)

// APIError is a non-2xx response from the pipeline endpoint. The status
// code and response body are surfaced to the caller as-is.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pipeline API error: status %d: %s", e.StatusCode, e.Body)
}

// Credentials are the ULCA account values sent as headers on every
// compute request.
type Credentials struct {
	UserID    string
	APIKey    string
	AuthToken string
}

// Validate checks that all credential fields are set.
func (c Credentials) Validate() error {
	if c.UserID == "" || c.APIKey == "" || c.AuthToken == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Client submits compute-pipeline requests.
type Client struct {
	pipelineURL string
	creds       Credentials
	httpClient  *http.Client
	scripts     ScriptLookup
}

// NewClient creates a pipeline client. A zero timeout disables the
// client-side deadline.
func NewClient(pipelineURL string, creds Credentials, timeout time.Duration) (*Client, error) {
	if pipelineURL == "" {
		return nil, errors.New("pipeline URL is required")
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		pipelineURL: pipelineURL,
		creds:       creds,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// Compute posts a pipeline request and decodes the response. Errors from
// the remote API are returned as *APIError without retry.
func (c *Client) Compute(ctx context.Context, preq *PipelineRequest) (*PipelineResponse, error) {
	body, err := json.Marshal(preq)
	if err != nil {
		return nil, fmt.Errorf("encode pipeline request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pipelineURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build pipeline request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("user_id", c.creds.UserID)
	req.Header.Set("api-key", c.creds.APIKey)
	req.Header.Set("Authorization", c.creds.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipeline request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pipeline response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var presp PipelineResponse
	if err := json.Unmarshal(respBody, &presp); err != nil {
		return nil, fmt.Errorf("decode pipeline response: %w", err)
	}

	return &presp, nil
}
