// Package resthttp implements backend.Client against an upstream REST API,
// for deployments where quizzes and grading live in another service.
package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shelfwise/quiz-service/internal/backend"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithTimeout bounds every backend call. Submissions that never resolve
// would otherwise leave an attempt stuck in a submitting state.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetQuiz(ctx context.Context, quizID uint) (*backend.Quiz, error) {
	var quiz backend.Quiz
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/quizzes/%d", quizID), nil, &quiz)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", quizID, backend.ErrQuizNotFound)
		}
		return nil, fmt.Errorf("get quiz %d: %w", quizID, err)
	}
	return &quiz, nil
}

type listResponse struct {
	Items []*backend.QuizSummary `json:"items"`
	Total int64                  `json:"total"`
}

func (c *Client) ListQuizzes(ctx context.Context, filters backend.ListFilters) ([]*backend.QuizSummary, int64, error) {
	query := url.Values{}
	if filters.Subject != "" {
		query.Set("subject", filters.Subject)
	}
	if filters.Grade != "" {
		query.Set("grade", filters.Grade)
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}
	if filters.Limit > 0 {
		query.Set("limit", strconv.Itoa(filters.Limit))
	}
	if filters.Offset > 0 {
		query.Set("offset", strconv.Itoa(filters.Offset))
	}

	path := "/api/v1/quizzes"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp listResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, 0, fmt.Errorf("list quizzes: %w", err)
	}
	return resp.Items, resp.Total, nil
}

type startAttemptRequest struct {
	TakerID string `json:"taker_id"`
}

func (c *Client) StartAttempt(ctx context.Context, quizID uint, takerID string) (*backend.AttemptTicket, error) {
	var ticket backend.AttemptTicket
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/quizzes/%d/attempts", quizID),
		startAttemptRequest{TakerID: takerID}, &ticket)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("quiz %d: %w", quizID, backend.ErrQuizNotFound)
		}
		return nil, fmt.Errorf("start attempt for quiz %d: %w", quizID, backend.ErrAttemptCreationFailed)
	}
	return &ticket, nil
}

func (c *Client) SubmitAttempt(ctx context.Context, req *backend.SubmitAttemptRequest) (*backend.Result, error) {
	var result backend.Result
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/submit", req.AttemptID), req, &result)
	if err != nil {
		return nil, fmt.Errorf("submit attempt %d: %w: %v", req.AttemptID, backend.ErrSubmissionFailed, err)
	}
	return &result, nil
}

// ===== TRANSPORT HELPERS =====

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func isStatus(err error, code int) bool {
	se, ok := err.(*statusError)
	return ok && se.code == code
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, body: string(raw)}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
