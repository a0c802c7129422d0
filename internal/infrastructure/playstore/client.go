package playstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"

	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/source"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusError is a non-200 answer from the review API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("review api returned %d: %s", e.Code, e.Body)
}

// Temporary reports whether retrying may help.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Config for the API client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// FailureThreshold consecutive failures open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Client pulls review pages from a Play Store review-listing endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient wires an HTTP client guarded by a circuit breaker.
func NewClient(cfg Config, client *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ReviewPrep/1.0"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "playstore",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			se, ok := err.(*StatusError)
			return ok && !se.Temporary()
		},
	})
	return &Client{cfg: cfg, http: client, breaker: breaker}
}

// Name identifies the strategy inside the registry.
func (c *Client) Name() string {
	return "playstore"
}

// Fetch requests one page of reviews.
func (c *Client) Fetch(ctx context.Context, req source.Request) (source.Page, error) {
	if req.AppID == "" {
		return source.Page{}, fmt.Errorf("playstore: app id is required")
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, req)
	})
	if err != nil {
		return source.Page{}, fmt.Errorf("playstore %s: %w", req.AppID, err)
	}
	return out.(source.Page), nil
}

// State exposes the breaker state for logging.
func (c *Client) State() string {
	return c.breaker.State().String()
}

func (c *Client) fetch(ctx context.Context, req source.Request) (source.Page, error) {
	pageURL, err := buildPageURL(c.cfg.BaseURL, req)
	if err != nil {
		return source.Page{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return source.Page{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return source.Page{}, fmt.Errorf("request reviews: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return source.Page{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload pagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return source.Page{}, fmt.Errorf("decode reviews: %w", err)
	}
	return payload.toPage(), nil
}

type reviewPayload struct {
	ReviewID      string `json:"reviewId"`
	UserName      string `json:"userName"`
	Content       string `json:"content"`
	Score         int    `json:"score"`
	ThumbsUpCount int    `json:"thumbsUpCount"`
	Version       string `json:"reviewCreatedVersion"`
	At            string `json:"at"`
	ReplyContent  string `json:"replyContent"`
	RepliedAt     string `json:"repliedAt"`
}

type pagePayload struct {
	Reviews   []reviewPayload `json:"reviews"`
	NextToken string          `json:"nextToken"`
}

func (p pagePayload) toPage() source.Page {
	page := source.Page{NextToken: p.NextToken, Reviews: make([]domain.Review, 0, len(p.Reviews))}
	for _, r := range p.Reviews {
		page.Reviews = append(page.Reviews, domain.Review{
			ID:           r.ReviewID,
			UserName:     r.UserName,
			TextRaw:      r.Content,
			Rating:       r.Score,
			ThumbsUp:     strconv.Itoa(r.ThumbsUpCount),
			AppVersion:   r.Version,
			ReviewedAt:   r.At,
			ReplyContent: r.ReplyContent,
			RepliedAt:    r.RepliedAt,
		})
	}
	return page
}

func buildPageURL(base string, req source.Request) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", base, err)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/reviews"

	query := parsed.Query()
	query.Set("id", req.AppID)
	if req.Lang != "" {
		query.Set("hl", req.Lang)
	}
	if req.Country != "" {
		query.Set("gl", req.Country)
	}
	if req.Sort != "" {
		query.Set("sort", req.Sort)
	}
	if req.Count > 0 {
		query.Set("count", strconv.Itoa(req.Count))
	}
	if req.Rating > 0 {
		query.Set("score", strconv.Itoa(req.Rating))
	}
	if req.Token != "" {
		query.Set("token", req.Token)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
