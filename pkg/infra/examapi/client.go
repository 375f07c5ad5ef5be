package examapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/examport/pkg/domain/interfaces"
	"github.com/m-mizutani/examport/pkg/domain/model"
	"github.com/m-mizutani/examport/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Option configures the exam API client
type Option func(*client)

// WithTimeout sets the per-call HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxRetries sets how many extra attempts follow a retryable failure.
// A fetch is attempted at most maxRetries+1 times.
func WithMaxRetries(n int) Option {
	return func(c *client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the initial backoff delay. The delay doubles on
// each subsequent retry.
func WithRetryDelay(d time.Duration) Option {
	return func(c *client) {
		c.retryDelay = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates an exam API client
func New(baseURL string, opts ...Option) interfaces.ExamClient {
	c := &client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchExam fetches one exam by ID with exponential backoff on transient
// failures. Not-found and undecodable responses are returned immediately
// without retrying.
func (c *client) FetchExam(ctx context.Context, examID int) (*model.ExamRecord, error) {
	logger := ctxlog.From(ctx)
	url := fmt.Sprintf("%s?exam_id=%d", c.baseURL, examID)

	var record *model.ExamRecord
	operation := func() error {
		rec, err := c.fetchOnce(ctx, url, examID)
		if err != nil {
			return err
		}
		record = rec
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	policy := backoff.WithContext(
		backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		logger.Warn("retrying exam fetch",
			"exam_id", examID,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if goerr.HasTag(err, types.ErrTagNotFound) || goerr.HasTag(err, types.ErrTagValidation) {
			return nil, err
		}
		logger.Error("exam fetch exhausted retries",
			"exam_id", examID,
			"max_retries", c.maxRetries,
			"error", err,
		)
		return nil, goerr.Wrap(err, "fetch failed after retries",
			goerr.T(types.ErrTagNetwork),
			goerr.V("exam_id", examID),
		)
	}

	logger.Debug("fetched exam", "exam_id", examID,
		"question_count", len(record.Questions))
	return record, nil
}

func (c *client) fetchOnce(ctx context.Context, url string, examID int) (*model.ExamRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(goerr.Wrap(err, "failed to create request",
			goerr.T(types.ErrTagNetwork), goerr.V("url", url)))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors and timeouts are retryable
		return nil, goerr.Wrap(err, "request failed", goerr.V("exam_id", examID))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode

	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(goerr.New("exam not found",
			goerr.T(types.ErrTagNotFound), goerr.V("exam_id", examID)))

	default:
		// 5xx and unexpected statuses are treated as transient
		return nil, goerr.New("unexpected status code",
			goerr.V("exam_id", examID), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body",
			goerr.V("exam_id", examID))
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, backoff.Permanent(goerr.Wrap(err, "malformed API response",
			goerr.T(types.ErrTagValidation), goerr.V("exam_id", examID)))
	}

	record, err := raw.toRecord()
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return record, nil
}
