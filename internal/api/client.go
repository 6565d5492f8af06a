package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"restopos/internal/apperr"
	"restopos/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate limit tiers for outbound calls. Payment endpoints get the strict
// tier so a stuck retry loop can never hammer the money path.
const (
	limitStrict = rate.Limit(2)
	burstStrict = 5

	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

// Client is the request/response side of the persistence collaborator.
// Every repository in this module goes through it; it owns bearer auth,
// pacing, and the translation of HTTP failures into the shared error
// taxonomy.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	general    *rate.Limiter
	strict     *rate.Limiter
}

func NewClient(baseURL, token string) *Client {
	if token == "" {
		logger.L().Warn("API access token is empty")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		general: rate.NewLimiter(limitGeneral, burstGeneral),
		strict:  rate.NewLimiter(limitStrict, burstStrict),
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	if err := c.limiterFor(path).Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			log.Error("failed to marshal request body", zap.Error(err))
			return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read response body", zap.Error(err))
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	if err := statusError(resp.StatusCode, bodyBytes); err != nil {
		log.Warn("server returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return err
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			log.Error("failed decoding response", zap.Error(err))
			return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
		}
	}

	return nil
}

func (c *Client) limiterFor(path string) *rate.Limiter {
	if strings.HasPrefix(path, "/payments") {
		return c.strict
	}
	return c.general
}

func statusError(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, strings.TrimSpace(string(body)))
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", apperr.ErrValidation, strings.TrimSpace(string(body)))
	default:
		return fmt.Errorf("%w: status %d: %s", apperr.ErrPersistence, code, strings.TrimSpace(string(body)))
	}
}
