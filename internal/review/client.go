package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors for client operations.
var (
	ErrEmptyResponse = errors.New("findings service returned no choices")
	ErrServiceStatus = errors.New("findings service returned non-OK status")
)

// maxErrorBodyBytes bounds how much of an error response body is read for
// diagnostics.
const maxErrorBodyBytes = 4 * 1024

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	model      string
	apiKey     string
}

// NewClient creates a findings service client. endpoint is the API base URL
// (without the /chat/completions suffix); apiKey may be empty for
// unauthenticated local services.
func NewClient(endpoint, model, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt to the findings service and returns the raw model
// output text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, marshalErr := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if marshalErr != nil {
		return "", fmt.Errorf("marshal chat request: %w", marshalErr)
	}

	url := c.endpoint + "/chat/completions"

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("build chat request: %w", reqErr)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	started := time.Now()

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return "", fmt.Errorf("findings request: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return "", fmt.Errorf("%w: %s: %s", ErrServiceStatus, resp.Status, strings.TrimSpace(string(snippet)))
	}

	var decoded chatResponse

	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)
	if decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w", decodeErr)
	}

	if len(decoded.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("findings request complete",
		slog.String("model", c.model),
		slog.Duration("elapsed", time.Since(started)))

	return decoded.Choices[0].Message.Content, nil
}

// Review sends a code region for review and returns the decoded findings.
// A malformed model response comes back as a *DecodeError; transport and
// service failures are ordinary errors.
func (c *Client) Review(ctx context.Context, filename string, startLine int, region string) ([]Finding, error) {
	raw, err := c.Complete(ctx, BuildPrompt(filename, startLine, region))
	if err != nil {
		return nil, err
	}

	return DecodeFindings(raw)
}
