package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// sessionCookie is the cookie Advent of Code authenticates with.
const sessionCookie = "session"

// apiClient handles HTTP communication with the puzzle site.
type apiClient struct {
	baseURL       string
	baseURLParsed *url.URL
	userAgent     string
	http          *http.Client
}

// newAPIClient creates a new API client with the given configuration.
func newAPIClient(cfg appConfig) (*apiClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base_url: %q", cfg.BaseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	jar, _ := cookiejar.New(nil)
	if jar != nil {
		if s := cfg.session(); s != "" {
			jar.SetCookies(u, []*http.Cookie{{Name: sessionCookie, Value: s, Path: "/"}})
		}
	}

	c := &apiClient{
		baseURL:       u.String(),
		baseURLParsed: u,
		userAgent:     cfg.UserAgent,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
	if c.userAgent == "" {
		c.userAgent = defaultUA
	}
	return c, nil
}

// apiError represents an HTTP error response from the site.
type apiError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %d", e.StatusCode)
}

// do performs an HTTP request and returns the response body. A non-nil form
// is sent urlencoded.
func (c *apiClient) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	reqURL := c.baseURL + path

	var buf io.Reader
	if form != nil {
		buf = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	const maxResponseSize = 10 * 1024 * 1024 // 10MB limit
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apiError{StatusCode: resp.StatusCode, Message: firstLine(b), Body: b}
	}
	return b, nil
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const maxLen = 200
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return strings.TrimSpace(s)
}

// fetchInput downloads the puzzle input for a day.
func (c *apiClient) fetchInput(ctx context.Context, year, day int) (string, error) {
	b, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%d/day/%d/input", year, day), nil)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errors.New("empty input")
	}
	return string(b), nil
}

// verdict classifies the site's reply to an answer submission.
type verdict int

const (
	verdictUnknown verdict = iota
	verdictCorrect
	verdictIncorrect
	verdictRateLimited
	verdictAlreadySolved
)

func (v verdict) String() string {
	switch v {
	case verdictCorrect:
		return "correct"
	case verdictIncorrect:
		return "incorrect"
	case verdictRateLimited:
		return "rate limited"
	case verdictAlreadySolved:
		return "already solved"
	default:
		return "unknown"
	}
}

// submitResponse is the parsed reply to an answer submission.
type submitResponse struct {
	Verdict verdict
	Message string
	Wait    time.Duration
}

// submitAnswer posts an answer for one part of a day's puzzle.
func (c *apiClient) submitAnswer(ctx context.Context, year, day, part int, answer string) (*submitResponse, error) {
	form := url.Values{}
	form.Set("level", strconv.Itoa(part))
	form.Set("answer", answer)
	b, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/%d/day/%d/answer", year, day), form)
	if err != nil {
		return nil, err
	}
	return classifySubmission(string(b)), nil
}

// Patterns for reading the answer page.
var (
	reArticle = regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`)
	reTag     = regexp.MustCompile(`<[^>]+>`)
	reSpace   = regexp.MustCompile(`\s+`)
	reWait    = regexp.MustCompile(`You have (?:(\d+)m\s*)?(?:(\d+)s\s*)?left to wait`)
)

func classifySubmission(page string) *submitResponse {
	text := page
	if m := reArticle.FindStringSubmatch(page); len(m) == 2 {
		text = m[1]
	}
	text = html.UnescapeString(reTag.ReplaceAllString(text, " "))
	text = strings.TrimSpace(reSpace.ReplaceAllString(text, " "))

	out := &submitResponse{Message: text}
	switch {
	case strings.Contains(text, "That's the right answer"):
		out.Verdict = verdictCorrect
	case strings.Contains(text, "That's not the right answer"):
		out.Verdict = verdictIncorrect
	case strings.Contains(text, "You gave an answer too recently"):
		out.Verdict = verdictRateLimited
		out.Wait = parseWait(text)
	case strings.Contains(text, "You don't seem to be solving the right level"):
		out.Verdict = verdictAlreadySolved
	}
	return out
}

func parseWait(text string) time.Duration {
	m := reWait.FindStringSubmatch(text)
	if len(m) != 3 {
		return 0
	}
	var d time.Duration
	if m[1] != "" {
		n, _ := strconv.Atoi(m[1])
		d += time.Duration(n) * time.Minute
	}
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		d += time.Duration(n) * time.Second
	}
	return d
}

// parseCookieHeader parses a Cookie header string into individual cookies.
func parseCookieHeader(header string) []*http.Cookie {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ";")
	out := make([]*http.Cookie, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		name := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if name == "" {
			continue
		}
		out = append(out, &http.Cookie{Name: name, Value: val, Path: "/"})
	}
	return out
}

func isAuthError(err error) bool {
	var ae *apiError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		return strings.Contains(strings.ToLower(ae.Message), "log in")
	}
	return false
}
