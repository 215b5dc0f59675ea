package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Prompt streams. Stdout is reserved for the answer line.
var (
	promptIn  io.Reader = os.Stdin
	promptOut io.Writer = os.Stderr
)

// readInput returns the puzzle text: the --input file when given, else the
// cached file, downloading it first when it is missing.
func readInput(ctx context.Context, cfg *appConfig, configPath, inputFlag string, log *logger) (string, error) {
	if inputFlag != "" {
		b, err := os.ReadFile(inputFlag)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(b), nil
	}

	path, err := cfg.inputPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err == nil {
		log.infof("input: %s", path)
		return string(b), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read input: %w", err)
	}

	log.infof("input not cached, downloading %d day %d", cfg.Year, cfg.Day)
	var text string
	err = withSession(ctx, cfg, configPath, log, func(c *apiClient) error {
		return newSpinner().track("downloading input", func() error {
			var ferr error
			text, ferr = fetchInputWithRetry(ctx, c, log, cfg.Year, cfg.Day)
			return ferr
		})
	})
	if err != nil {
		return "", fmt.Errorf("download input: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir input dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write input: %w", err)
	}
	log.okf("input saved: %s", path)
	return text, nil
}

// withSession runs fn with an authenticated client. A missing or rejected
// session is prompted for once and saved to configPath.
func withSession(ctx context.Context, cfg *appConfig, configPath string, log *logger, fn func(*apiClient) error) error {
	if cfg.session() == "" {
		if err := askSession(cfg, configPath, log); err != nil {
			return err
		}
	}

	client, err := newAPIClient(*cfg)
	if err != nil {
		return err
	}
	err = fn(client)
	if !isAuthError(err) {
		return err
	}

	log.warn("session rejected, re-authenticating...")
	if err := askSession(cfg, configPath, log); err != nil {
		return err
	}
	client, err = newAPIClient(*cfg)
	if err != nil {
		return err
	}
	if err := fn(client); err != nil {
		if isAuthError(err) {
			return errors.New("session still rejected: please check the cookie")
		}
		return err
	}
	return nil
}

func askSession(cfg *appConfig, configPath string, log *logger) error {
	if os.Getenv(envSession) != "" {
		log.warnf("%s is set and overrides the pasted session", envSession)
	}
	s, err := promptSession(promptIn, promptOut)
	if err != nil {
		return err
	}
	cfg.Session = s
	if err := saveConfig(configPath, *cfg); err != nil {
		return err
	}
	log.okf("%s updated (session saved)", configPath)
	return nil
}

func promptSession(r io.Reader, w io.Writer) (string, error) {
	_, _ = fmt.Fprintln(w, "Enter session (paste `session=...` / `Cookie: ...` / curl command, end with empty line):")
	_, _ = fmt.Fprint(w, "> ")

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return "", errors.New("empty input")
	}

	s := parseSessionMaterial(text)
	if s == "" {
		return "", errors.New("session not found: paste `-b '...'` content, `Cookie: ...` or the token")
	}
	return s, nil
}

// Regex patterns for parsing curl commands and headers.
var (
	reCurlCookieBQuoted   = regexp.MustCompile(`(?s)(?:^|\s)-b\s+(?:'([^']*)'|"([^"]*)")`)
	reCurlCookieBUnquoted = regexp.MustCompile(`(?m)(?:^|\s)-b\s+([^\s\\]+)`)
	reHeaderCookie        = regexp.MustCompile(`(?im)^\s*(?:-H\s+)?['"]?cookie\s*:\s*(.*?)['"]?\s*\\?\s*$`)
	reBareToken           = regexp.MustCompile(`^[0-9A-Za-z]+$`)
)

// parseSessionMaterial extracts the session token from a pasted cookie pair,
// Cookie header, curl command or bare token.
func parseSessionMaterial(text string) string {
	trim := func(s string) string { return strings.TrimSpace(strings.Trim(s, `"'`)) }

	var cookie string
	if m := reCurlCookieBQuoted.FindStringSubmatch(text); len(m) == 3 {
		cookie = trim(m[1])
		if cookie == "" {
			cookie = trim(m[2])
		}
	}
	if cookie == "" {
		if m := reHeaderCookie.FindStringSubmatch(text); len(m) == 2 {
			cookie = trim(m[1])
		}
	}
	if cookie == "" {
		if m := reCurlCookieBUnquoted.FindStringSubmatch(text); len(m) == 2 {
			cookie = trim(m[1])
		}
	}
	if cookie == "" {
		cookie = trim(strings.TrimPrefix(strings.TrimSpace(text), "Cookie:"))
	}

	for _, c := range parseCookieHeader(cookie) {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	if reBareToken.MatchString(cookie) {
		return cookie
	}
	return ""
}

func fetchInputWithRetry(ctx context.Context, client *apiClient, log *logger, year, day int) (string, error) {
	backoff := 2 * time.Second
	for {
		text, err := client.fetchInput(ctx, year, day)
		if err == nil {
			return text, nil
		}
		var ae *apiError
		if errors.As(err, &ae) && ae.StatusCode == 429 {
			log.warnf("rate limited (429), waiting %s...", backoff.Round(100*time.Millisecond))
			if err := sleepCtx(ctx, backoff); err != nil {
				return "", err
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		return "", err
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
