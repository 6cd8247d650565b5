// Package linkcheck validates, normalizes, and probes episode links.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// placeholderPatterns mark links that were entered as stand-ins and should
// never be probed or counted as live.
var placeholderPatterns = []string{"no.link", "nolink", "no-link", "no_link", "emptylink"}

// mobileHostRe rewrites regional/mobile facebook hosts to the canonical one
// so duplicate detection and probing see a single form.
var mobileHostRe = regexp.MustCompile(`(?i)^https?://(?:m|web|mobile)\.facebook\.com/`)

// ValidURL reports whether raw has the minimum shape of a usable link:
// an http or https scheme, a host, and no embedded whitespace.
func ValidURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if strings.ContainsAny(trimmed, " \t") {
		return false
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Normalize trims a link and rewrites mobile facebook hosts to www.
func Normalize(raw string) string {
	u := strings.TrimSpace(raw)
	return mobileHostRe.ReplaceAllString(u, "https://www.facebook.com/")
}

// IsPlaceholder reports whether the link's host+path matches a known
// placeholder pattern.
func IsPlaceholder(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	target := strings.ToLower(u.Host + u.Path)
	for _, p := range placeholderPatterns {
		if strings.Contains(target, p) {
			return true
		}
	}
	return false
}

// Prober checks whether a link is alive.
type Prober struct {
	client *http.Client
}

// NewProber creates a Prober with the given per-request timeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Probe checks a single link: HEAD first, falling back to GET for hosts
// that reject or time out on HEAD. Returns ok and a short detail string
// such as "HTTP 200" or "timeout".
func (p *Prober) Probe(ctx context.Context, link string) (bool, string) {
	ok, detail := p.probeOnce(ctx, http.MethodHead, link)
	if ok {
		return true, detail
	}
	switch detail {
	case "HTTP 403", "HTTP 405", "timeout":
		return p.probeOnce(ctx, http.MethodGet, link)
	}
	return false, detail
}

func (p *Prober) probeOnce(ctx context.Context, method, link string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return false, "bad request"
	}
	req.Header.Set("User-Agent", "Linkshelf/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || strings.Contains(err.Error(), "Timeout") ||
			strings.Contains(err.Error(), "deadline") {
			return false, "timeout"
		}
		return false, "unreachable"
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return true, fmt.Sprintf("HTTP %d", resp.StatusCode)
}

// Result is the outcome of probing one link.
type Result struct {
	Link   string
	OK     bool
	Detail string
}

// CheckAll probes links with bounded concurrency, preserving input order
// in the results. Placeholder links are reported dead without a request.
func (p *Prober) CheckAll(ctx context.Context, links []string, workers int) []Result {
	if workers <= 0 {
		workers = 10
	}
	results := make([]Result, len(links))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, link := range links {
		wg.Add(1)
		go func(i int, link string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if IsPlaceholder(link) {
				results[i] = Result{Link: link, OK: false, Detail: "placeholder link"}
				return
			}
			ok, detail := p.Probe(ctx, link)
			results[i] = Result{Link: link, OK: ok, Detail: detail}
		}(i, link)
	}
	wg.Wait()
	return results
}
