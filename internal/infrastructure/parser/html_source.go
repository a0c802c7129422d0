package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ReviewPrep/internal/domain"
	"ReviewPrep/internal/source"
)

var digitExpr = regexp.MustCompile(`\d+`)

// Selectors locate review fields inside a listing page.
type Selectors struct {
	Item     string `yaml:"item"`
	ID       string `yaml:"idAttr"`
	Text     string `yaml:"text"`
	Rating   string `yaml:"rating"`
	User     string `yaml:"user"`
	Date     string `yaml:"date"`
	ThumbsUp string `yaml:"thumbsUp"`
	Version  string `yaml:"version"`
	Reply    string `yaml:"reply"`
	Next     string `yaml:"next"`
}

// DefaultSelectors match the review listing markup used by the mirror site.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:     "div.review",
		ID:       "data-review-id",
		Text:     ".review-text",
		Rating:   "[data-rating]",
		User:     ".review-author",
		Date:     ".review-date",
		ThumbsUp: ".review-helpful",
		Version:  ".review-version",
		Reply:    ".developer-reply",
		Next:     "a[rel=next]",
	}
}

// HTMLSource crawls review listing pages and follows their "next" links.
type HTMLSource struct {
	client    *http.Client
	baseURL   string
	selectors Selectors
}

// NewHTMLSource wires an HTTP client; empty selectors take the defaults.
func NewHTMLSource(client *http.Client, baseURL string, selectors Selectors) *HTMLSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if selectors.Item == "" {
		selectors = DefaultSelectors()
	}
	return &HTMLSource{client: client, baseURL: baseURL, selectors: selectors}
}

// Name identifies the strategy inside the registry.
func (h *HTMLSource) Name() string {
	return "html"
}

// Fetch loads one listing page. The continuation token is the absolute URL
// of the next page.
func (h *HTMLSource) Fetch(ctx context.Context, req source.Request) (source.Page, error) {
	pageURL := req.Token
	if pageURL == "" {
		var err error
		if pageURL, err = buildPageURL(h.baseURL, req); err != nil {
			return source.Page{}, err
		}
	}

	doc, err := h.fetchDocument(ctx, pageURL)
	if err != nil {
		return source.Page{}, err
	}

	page := source.Page{Reviews: h.extractReviews(doc, req.Rating)}
	if next, ok := doc.Find(h.selectors.Next).First().Attr("href"); ok && next != "" {
		abs, err := resolveURL(pageURL, next)
		if err != nil {
			return source.Page{}, err
		}
		page.NextToken = abs
	}
	return page, nil
}

func (h *HTMLSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ReviewPrep/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Code: resp.StatusCode, Status: resp.Status}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// HTTPError is a non-200 listing response.
type HTTPError struct {
	Code   int
	Status string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("listing returned %s", e.Status)
}

// Temporary reports whether retrying may help.
func (e *HTTPError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

func (h *HTMLSource) extractReviews(doc *goquery.Document, rating int) []domain.Review {
	var collected []domain.Review
	doc.Find(h.selectors.Item).Each(func(i int, item *goquery.Selection) {
		review, err := parseEntry(item, h.selectors)
		if err != nil {
			return
		}
		if rating > 0 && review.Rating != rating {
			return
		}
		collected = append(collected, review)
	})
	return collected
}

func parseEntry(item *goquery.Selection, sel Selectors) (domain.Review, error) {
	text := strings.TrimSpace(item.Find(sel.Text).First().Text())
	if text == "" {
		return domain.Review{}, fmt.Errorf("review without text")
	}

	rating, err := parseRating(item.Find(sel.Rating).First())
	if err != nil {
		return domain.Review{}, err
	}

	id, _ := item.Attr(sel.ID)
	review := domain.Review{
		ID:           strings.TrimSpace(id),
		UserName:     strings.TrimSpace(item.Find(sel.User).First().Text()),
		TextRaw:      text,
		Rating:       rating,
		ThumbsUp:     digitExpr.FindString(item.Find(sel.ThumbsUp).First().Text()),
		AppVersion:   strings.TrimSpace(item.Find(sel.Version).First().Text()),
		ReplyContent: strings.TrimSpace(item.Find(sel.Reply).First().Text()),
	}
	dateSel := item.Find(sel.Date).First()
	if dt, ok := dateSel.Attr("datetime"); ok {
		review.ReviewedAt = dt
	} else {
		review.ReviewedAt = strings.TrimSpace(dateSel.Text())
	}
	return review, nil
}

// parseRating reads data-rating when present and falls back to the first
// number in the element text ("5 bintang", "Rated 4 out of 5").
func parseRating(s *goquery.Selection) (int, error) {
	raw, ok := s.Attr("data-rating")
	if !ok {
		raw = s.Text()
	}
	n := firstInt(raw)
	if n < 1 || n > 5 {
		return 0, fmt.Errorf("%w: %q", domain.ErrRatingOutOfRange, raw)
	}
	return n, nil
}

func firstInt(s string) int {
	m := digitExpr.FindString(s)
	if m == "" {
		return 0
	}
	n, _ := strconv.Atoi(m)
	return n
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid page url %s: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid next link %s: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

func buildPageURL(base string, req source.Request) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	if req.AppID != "" {
		query.Set("id", req.AppID)
	}
	if req.Lang != "" {
		query.Set("hl", req.Lang)
	}
	if req.Sort != "" {
		query.Set("sort", req.Sort)
	}
	if req.Rating > 0 {
		query.Set("rating", strconv.Itoa(req.Rating))
	}
	if req.Count > 0 {
		query.Set("show", strconv.Itoa(req.Count))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
