package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/sony/gobreaker"

	"notifyadmin/internal/observability"
)

// APIError carries the remote message and status code for any non-2xx
// response. Calls are never retried; the user fixes and resubmits.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notification API returned %d: %s", e.StatusCode, e.Message)
}

// Client issues one HTTP call per method against the notification API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	breaker *gobreaker.CircuitBreaker
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "notify-api"}),
	}
}

type errorEnvelope struct {
	Message json.RawMessage `json:"message"`
}

// do performs one request. The circuit breaker only counts transport
// failures and 5xx responses; a 4xx is the caller's problem, not the API
// being down.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	var apiErr *APIError
	_, err := c.breaker.Execute(func() (any, error) {
		var reqBody io.Reader
		if body != nil {
			b, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			reqBody = bytes.NewReader(b)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		if len(query) > 0 {
			q := req.URL.Query()
			for k, v := range query {
				q.Set(k, v)
			}
			req.URL.RawQuery = q.Encode()
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			observability.NotifyClientRequests.WithLabelValues(method, "error").Inc()
			return nil, err
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		observability.NotifyClientRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 500 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: remoteMessage(b)}
		}
		if resp.StatusCode >= 300 {
			apiErr = &APIError{StatusCode: resp.StatusCode, Message: remoteMessage(b)}
			return nil, nil
		}
		if out != nil {
			if err := json.Unmarshal(b, out); err != nil {
				return nil, fmt.Errorf("decode notification API response: %w", err)
			}
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &APIError{StatusCode: http.StatusServiceUnavailable, Message: "notification API unavailable"}
		}
		return err
	}
	if apiErr != nil {
		return apiErr
	}
	return nil
}

// remoteMessage pulls the free-text error out of the remote response body.
func remoteMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Message) > 0 {
		var s string
		if json.Unmarshal(env.Message, &s) == nil {
			return s
		}
		return string(env.Message)
	}
	return string(body)
}
