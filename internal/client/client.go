// Package client talks to the seat API over HTTP and satisfies the same
// contract as the in-process service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/batch-seat-reservations/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	defaultTimeout     = 12 * time.Second
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
)

// Client is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	retryBase   time.Duration
}

// APIError is returned for non-2xx responses the domain taxonomy does not cover.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("seat api error: %s %s: %s", e.Endpoint, e.Status, e.Body)
}

// New builds a client for baseURL. A nil httpClient gets a default one.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
	}
}

type statusBody struct {
	SeatsLeft    int   `json:"seats_left"`
	LastReserved int64 `json:"last_reserved"`
}

type reservationBody struct {
	Success   bool `json:"success"`
	SeatsLeft int  `json:"seats_left"`
}

type errorBody struct {
	Error domain.ErrorKind `json:"error"`
}

type brochureBody struct {
	Channel domain.BrochureChannel `json:"channel"`
	Email   string                 `json:"email,omitempty"`
	Phone   string                 `json:"phone,omitempty"`
}

type curriculumBody struct {
	Period  string `json:"period"`
	Topic   string `json:"topic"`
	Details string `json:"details"`
}

type courseBody struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Subtitle   string           `json:"subtitle"`
	Curriculum []curriculumBody `json:"curriculum"`
	Outcomes   string           `json:"outcomes"`
}

const errorKindNotFound domain.ErrorKind = "not_found"

type brochureResult struct {
	RequestID string `json:"request_id"`
}

// GetStatus retries transient failures; status reads have no side effects.
func (c *Client) GetStatus(ctx context.Context) (domain.BatchStatus, error) {
	var out statusBody
	err := c.withRetry(ctx, func() (bool, error) {
		return c.do(ctx, http.MethodGet, c.baseURL+"/v1/batch/status", nil, "", &out)
	})
	if err != nil {
		return domain.BatchStatus{}, err
	}
	return domain.BatchStatus{
		SeatsLeft:    out.SeatsLeft,
		LastReserved: time.UnixMilli(out.LastReserved),
	}, nil
}

// ReserveSeat makes a single attempt. req.SubmissionID, when set, is sent as
// the Idempotency-Key, so resubmitting the same form replays the first answer
// instead of consuming another seat.
func (c *Client) ReserveSeat(ctx context.Context, req domain.ReservationRequest) (domain.ReservationResult, error) {
	var out reservationBody
	_, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/reservations", req.Fields, req.SubmissionID, &out)
	if err != nil {
		return domain.ReservationResult{ErrorKind: domain.KindOf(err)}, err
	}
	return domain.ReservationResult{Success: out.Success, SeatsLeft: out.SeatsLeft}, nil
}

func (c *Client) RequestBrochure(ctx context.Context, channel domain.BrochureChannel, email, phone string) (domain.BrochureRequest, error) {
	var out brochureResult
	body := brochureBody{Channel: channel, Email: email, Phone: phone}
	if _, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/brochure-requests", body, "", &out); err != nil {
		return domain.BrochureRequest{}, err
	}
	id, err := uuid.Parse(out.RequestID)
	if err != nil {
		return domain.BrochureRequest{}, domain.Unknown(err, "parse brochure request id")
	}
	if channel == "" {
		channel = domain.BrochureChannelPhone
	}
	return domain.BrochureRequest{ID: id, Channel: channel, Email: email, Phone: phone, RequestedAt: time.Now()}, nil
}

func (c *Client) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	var out courseBody
	err := c.withRetry(ctx, func() (bool, error) {
		return c.do(ctx, http.MethodGet, c.baseURL+"/v1/courses/"+url.PathEscape(domain.NormalizeCourseID(id)), nil, "", &out)
	})
	if err != nil {
		return domain.Course{}, err
	}
	course := domain.Course{ID: out.ID, Title: out.Title, Subtitle: out.Subtitle, Outcomes: out.Outcomes}
	for _, it := range out.Curriculum {
		course.Curriculum = append(course.Curriculum, domain.CurriculumItem(it))
	}
	return course, nil
}

// withRetry runs attempt until it succeeds, reports a permanent failure, or
// the attempt budget runs out.
func (c *Client) withRetry(ctx context.Context, attempt func() (bool, error)) error {
	attempts := max(1, c.maxAttempts)
	var err error
	for n := 1; n <= attempts; n++ {
		var retry bool
		retry, err = attempt()
		if err == nil || !retry || n == attempts {
			return err
		}
		if waitErr := c.waitRetry(ctx, n); waitErr != nil {
			return waitErr
		}
	}
	return err
}

// do performs one request and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, method, endpoint string, in interface{}, idempotencyKey string, out interface{}) (bool, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return false, domain.Unknown(err, "encode request")
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return false, domain.Unknown(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, domain.Unknown(err, "request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		return shouldRetryStatus(res.StatusCode), classify(res, endpoint, snippet)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return false, domain.Unknown(err, "decode response from "+endpoint)
	}
	return false, nil
}

func classify(res *http.Response, endpoint string, snippet []byte) error {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Endpoint:   endpoint,
		Body:       strings.TrimSpace(string(snippet)),
	}
	var eb errorBody
	_ = json.Unmarshal(snippet, &eb)
	switch {
	case res.StatusCode == http.StatusNotFound && eb.Error == errorKindNotFound:
		return errors.Mark(apiErr, domain.ErrNotFound)
	case res.StatusCode == http.StatusConflict && eb.Error == domain.ErrorKindSoldOut:
		return errors.Mark(apiErr, domain.ErrSoldOut)
	case res.StatusCode == http.StatusUnprocessableEntity && eb.Error == domain.ErrorKindValidation:
		return errors.Mark(apiErr, domain.ErrValidation)
	default:
		return errors.Mark(apiErr, domain.ErrUnknown)
	}
}

func shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.retryBase * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
