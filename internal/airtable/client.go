package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"orgdir/internal"
	"orgdir/internal/config"
)

const maxAttempts = 5

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
	logger     *zap.Logger
}

type listPayload struct {
	Records []internal.RawRecord `json:"records"`
	Offset  string               `json:"offset"`
}

type errorPayload struct {
	Error json.RawMessage `json:"error"`
}

// statusError carries a non-2xx response so callers can tell a missing
// record apart from a failing API.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("airtable api error: status=%d body=%s", e.Status, e.Body)
}

func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.RequireAirtable(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.AirtableTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.AirtableRateLimitRPS),
		logger:     logger,
	}, nil
}

// ListRecords returns every record of the primary table in API order,
// following offset pages until the API stops returning one.
func (c *Client) ListRecords(ctx context.Context) ([]internal.RawRecord, error) {
	all := make([]internal.RawRecord, 0)
	seen := map[string]struct{}{}
	var offset string

	for {
		query := map[string]string{}
		if offset != "" {
			query["offset"] = offset
		}

		body, err := c.fetchJSON(ctx, c.tablePath(), query)
		if err != nil {
			return nil, err
		}

		var payload listPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("decode record page: %w", err)
		}
		for _, rec := range payload.Records {
			if rec.Fields == nil {
				rec.Fields = internal.Fields{}
			}
			all = append(all, rec)
		}

		if payload.Offset == "" || len(payload.Records) == 0 {
			break
		}
		if _, ok := seen[payload.Offset]; ok {
			break
		}
		seen[payload.Offset] = struct{}{}
		offset = payload.Offset
	}

	c.logger.Debug("listed airtable records", zap.Int("count", len(all)))
	return all, nil
}

// FindRecord fetches one record of the primary table. A missing id yields
// internal.ErrRecordNotFound.
func (c *Client) FindRecord(ctx context.Context, id string) (internal.RawRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return internal.RawRecord{}, internal.ErrRecordNotFound
	}

	body, err := c.fetchJSON(ctx, c.tablePath()+"/"+url.PathEscape(id), nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return internal.RawRecord{}, fmt.Errorf("%w: %s", internal.ErrRecordNotFound, id)
		}
		return internal.RawRecord{}, err
	}

	var rec internal.RawRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return internal.RawRecord{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	if rec.Fields == nil {
		rec.Fields = internal.Fields{}
	}
	return rec, nil
}

func (c *Client) tablePath() string {
	return url.PathEscape(c.cfg.AirtableBaseID) + "/" + url.PathEscape(c.cfg.AirtableTableName)
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.AirtableAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.AirtableToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				c.logger.Debug("airtable request retry",
					zap.Int("status", resp.StatusCode),
					zap.Int("attempt", attempt),
					zap.Duration("backoff", backoff))
				lastErr = fmt.Errorf("airtable status %d", resp.StatusCode)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
				continue
			}
			return nil, &statusError{Status: resp.StatusCode, Body: errorBody(body)}
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("airtable request failed")
	}
	return nil, lastErr
}

func errorBody(body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error) > 0 {
		return string(payload.Error)
	}
	return string(body)
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
