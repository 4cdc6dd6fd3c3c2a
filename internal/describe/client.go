// Package describe turns function source text into natural-language
// descriptions by calling a Gemini-style generateContent endpoint.
package describe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fallback descriptions. Describe never fails past its boundary: every
// transport or response problem becomes one of these, embedded in the output
// document like any other description.
const (
	// FallbackMalformed is returned when the service answered 2xx but the
	// body carried no usable description.
	FallbackMalformed = "# Could not extract description from API response."
	// fallbackErrorPrefix opens the description built from a transport or
	// protocol error; the underlying error text follows.
	fallbackErrorPrefix = "# Error calling Gemini API: "
)

const promptPrefix = "Please provide a description of what the following script does:"

// Config holds annotation client configuration.
type Config struct {
	Endpoint string // API base URL (e.g., https://generativelanguage.googleapis.com)
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// LogValue masks the API key when the config is logged via slog.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", c.Endpoint),
		slog.String("model", c.Model),
		slog.String("api_key", "[REDACTED]"),
	)
}

// Client speaks the Gemini generateContent API.
type Client struct {
	cfg    Config
	url    string
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates an annotation client with the given configuration.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/") +
		"/v1beta/models/" + url.PathEscape(cfg.Model) + ":generateContent"
	return &Client{
		cfg:    cfg,
		url:    endpoint,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "describe-client"),
	}
}

// genRequest is the generateContent request body.
type genRequest struct {
	Contents []genContent `json:"contents"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text string `json:"text"`
}

// genResponse is the generateContent response body.
type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// errMalformed marks a 2xx response with no extractable description.
var errMalformed = errors.New("no description in response")

// Describe requests a description of functionText. It never returns an
// error: failures produce a fallback description so splicing always has a
// string to insert.
func (c *Client) Describe(ctx context.Context, functionText string) string {
	desc, err := c.generate(ctx, functionText)
	if err != nil {
		if errors.Is(err, errMalformed) {
			c.logger.Warn("response carried no description", "endpoint", c.url)
			return FallbackMalformed
		}
		c.logger.Warn("describe request failed", "error", err)
		return fallbackErrorPrefix + err.Error()
	}
	return desc
}

func (c *Client) generate(ctx context.Context, functionText string) (string, error) {
	reqBody := genRequest{
		Contents: []genContent{
			{Parts: []genPart{{Text: promptPrefix + "\n" + functionText}}},
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	c.logger.Debug("sending describe request", "endpoint", c.url, "model", c.cfg.Model)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 10 * 1024 * 1024 // 10 MB
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp genResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", errMalformed
	}
	desc := strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text)
	if desc == "" {
		return "", errMalformed
	}

	c.logger.Debug("received description", "length", len(desc))
	return desc, nil
}
