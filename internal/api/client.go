package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"project-manager/webapp/internal/models"
)

// Client handles all communication with the remote projects backend. It is
// the single configured API dependency: no call site holds its own base URL.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *Breaker
	logger  *slog.Logger
}

type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	Breaker        *BreakerConfig
}

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

func NewClient(config ClientConfig, logger *slog.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: config.BaseURL,
		http:    &http.Client{Timeout: config.Timeout},
		breaker: NewBreaker(config.Breaker),
		logger:  logger,
	}

	if config.RequestsPerSec > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSec), burst)
	}

	return c
}

// ListProjects fetches one server page. A non-empty title narrows the result
// set; callers decide when the search term is long enough to apply.
func (c *Client) ListProjects(ctx context.Context, page, limit int, title string) ([]models.Project, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if title != "" {
		query.Set("title", title)
	}

	var body struct {
		Projects []models.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/projects", query, nil, &body); err != nil {
		return nil, err
	}
	return body.Projects, nil
}

func (c *Client) CreateProject(ctx context.Context, payload models.SavePayload) (models.Project, error) {
	var created models.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", nil, payload, &created); err != nil {
		return models.Project{}, err
	}
	return created, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, payload models.SavePayload) (models.Project, error) {
	var updated models.Project
	if err := c.do(ctx, http.MethodPut, "/api/projects/"+id, nil, payload, &updated); err != nil {
		return models.Project{}, err
	}
	return updated, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+id, nil, nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login submits credentials. The success body is ignored: no token is stored
// and no auth header is attached to later requests.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/login", nil, credentials{Email: email, Password: password}, nil)
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", nil, credentials{Name: name, Email: email, Password: password}, nil)
}

// Seed asks the backend to populate mock data. The response is ignored.
func (c *Client) Seed(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/seed", nil, nil, nil)
}

// Health reports whether the upstream is reachable at all.
func (c *Client) Health(ctx context.Context) error {
	query := url.Values{}
	query.Set("page", "1")
	query.Set("limit", "1")
	return c.do(ctx, http.MethodGet, "/api/projects", query, nil, nil)
}

func (c *Client) BreakerStats() map[string]interface{} {
	return c.breaker.Stats()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	start := time.Now()
	err := c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("upstream request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			io.Copy(io.Discard, resp.Body)
			return &StatusError{Code: resp.StatusCode}
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		} else {
			io.Copy(io.Discard, resp.Body)
		}
		return nil
	})

	if err != nil {
		c.logger.Error("upstream call failed",
			"method", method,
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return err
	}

	c.logger.Debug("upstream call",
		"method", method,
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
