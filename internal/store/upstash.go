package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// UpstashStore is an EventStore backed by the Upstash Redis REST API.
// This was the original funnel's store: commands travel as URL path
// segments and every call is authenticated with a bearer token.
type UpstashStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewUpstashStore creates a REST client for the given endpoint and token.
func NewUpstashStore(baseURL, token string) *UpstashStore {
	return &UpstashStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// restResponse is the Upstash REST envelope.
type restResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// do issues one command, e.g. do(ctx, "SET", key, "1", "EX", "86400", "NX").
func (s *UpstashStore) do(ctx context.Context, parts ...string) (json.RawMessage, error) {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+strings.Join(escaped, "/"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "upstash %s", parts[0])
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "upstash %s", parts[0])
	}

	var out restResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrapf(err, "upstash %s: invalid response", parts[0])
	}
	if out.Error != "" {
		return nil, fmt.Errorf("upstash %s: %s", parts[0], out.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstash %s: status %d", parts[0], resp.StatusCode)
	}
	return out.Result, nil
}

// MarkSeen issues SET key 1 EX ttl NX in a single round trip. The REST
// API answers result:null when the key already existed.
func (s *UpstashStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.do(ctx, "SET", key, "1", "EX", strconv.FormatInt(int64(ttl.Seconds()), 10), "NX")
	if err != nil {
		return false, err
	}
	return !isNull(result), nil
}

// IncrCounter implements EventStore.
func (s *UpstashStore) IncrCounter(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	result, err := s.do(ctx, "INCR", key)
	if err != nil {
		return 0, err
	}

	var value int64
	if err := json.Unmarshal(result, &value); err != nil {
		return 0, errors.Wrap(err, "upstash INCR: non-integer result")
	}

	if _, err := s.do(ctx, "EXPIRE", key, strconv.FormatInt(int64(ttl.Seconds()), 10)); err != nil {
		return value, err
	}
	return value, nil
}

// GetCounter implements EventStore. Upstash returns string values, so
// the counter comes back as a quoted number.
func (s *UpstashStore) GetCounter(ctx context.Context, key string) (int64, error) {
	result, err := s.do(ctx, "GET", key)
	if err != nil {
		return 0, err
	}
	if isNull(result) {
		return 0, nil
	}

	var raw string
	if err := json.Unmarshal(result, &raw); err != nil {
		// Tolerate a bare number as well.
		var value int64
		if err := json.Unmarshal(result, &value); err != nil {
			return 0, errors.Wrap(err, "upstash GET: unexpected result")
		}
		return value, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// Ping implements EventStore.
func (s *UpstashStore) Ping(ctx context.Context) error {
	_, err := s.do(ctx, "PING")
	return err
}

// Close implements EventStore.
func (s *UpstashStore) Close() {
	s.httpClient.CloseIdleConnections()
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
