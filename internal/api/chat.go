package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/travelchat/internal/errors"
	"github.com/diogo/travelchat/internal/models"
)

// Send posts message to the backend and returns the reply text.
// A reply counts as successful when its body is JSON with a non-blank string
// at "response", whatever the HTTP status.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apierrors.ErrEmptyMessage
	}

	if c.IsClosed() {
		return "", apierrors.ErrClientClosed
	}

	payload, err := json.Marshal(models.ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	endpoint := c.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("send message", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes+1))
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("read reply", endpoint, err)
	}
	if len(body) > maxReplyBytes {
		return "", fmt.Errorf("%w: %s answered more than %d bytes", apierrors.ErrReplyTooLarge, endpoint, maxReplyBytes)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("chat reply received")

	return parseReply(body, resp.StatusCode, endpoint)
}

// parseReply extracts the reply text from a /chat response body
func parseReply(body []byte, status int, endpoint string) (string, error) {
	if !gjson.ValidBytes(body) {
		if status >= 400 {
			return "", apierrors.NewAPIErrorWithBody(status, endpoint, "reply is not JSON", truncate(body))
		}
		parseErr := apierrors.NewParseError("reply is not valid JSON", "")
		parseErr.StatusCode = status
		return "", parseErr
	}

	result := gjson.GetBytes(body, PathResponse)
	if result.Exists() && result.Type == gjson.String && strings.TrimSpace(result.Str) != "" {
		return result.Str, nil
	}

	if status >= 400 {
		message := gjson.GetBytes(body, PathError).String()
		if message == "" {
			message = "request rejected"
		}
		return "", apierrors.NewAPIErrorWithBody(status, endpoint, message, truncate(body))
	}

	if result.Exists() && result.Type != gjson.String {
		return "", fmt.Errorf("%w: %s is %s, not a string", apierrors.ErrMissingResponse, PathResponse, result.Type)
	}
	return "", apierrors.ErrMissingResponse
}

func truncate(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes])
	}
	return string(body)
}
