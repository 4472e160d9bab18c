// Package http_pages provides a driver that fetches web pages and harvests
// identifiers from them with a regular expression.
//
// An independent module fetches its url once. A dependent module fetches the
// url once per identifier in its trigger batch, with every `{id}` in the url
// replaced by the path-escaped identifier. Requests are paced by a token
// bucket so a large batch does not hammer the remote site.
package http_pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/registry"
	"golang.org/x/time/rate"
)

const (
	idPlaceholder   = "{id}"
	defaultMaxBytes = 8 << 20
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of the http_pages driver.
type Input struct {
	URL     string            `petal:"url"`
	Pattern string            `petal:"pattern"`
	Group   int               `petal:"group,optional"`
	Method  string            `petal:"method,optional"`
	Headers map[string]string `petal:"headers,optional"`
	// Rate is the number of requests per second. Zero means unlimited.
	Rate     float64 `petal:"rate,optional"`
	Burst    int     `petal:"burst,optional"`
	Timeout  string  `petal:"timeout,optional"`
	MaxBytes int64   `petal:"max_bytes,optional"`
}

// page is one request the driver will make.
type page struct {
	url string
	id  labels.ID
}

// OnRunHttpPages fetches every page the batch calls for and emits the
// pattern's matches. A failing page is logged and skipped; the execution
// fails only when every page failed.
func OnRunHttpPages(ctx context.Context, input *Input, batch *registry.Batch) error {
	logger := ctxlog.FromContext(ctx)

	re, err := regexp.Compile(input.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	group := input.Group
	if group == 0 && re.NumSubexp() > 0 {
		group = 1
	}
	if group < 0 || group > re.NumSubexp() {
		return fmt.Errorf("group %d out of range, pattern has %d groups", group, re.NumSubexp())
	}

	timeout := defaultTimeout
	if input.Timeout != "" {
		if timeout, err = time.ParseDuration(input.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}
	maxBytes := input.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	pages, err := expandPages(input.URL, batch.IDs)
	if err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if input.Rate > 0 {
		burst := input.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(input.Rate), burst)
	}

	var failures []error
	for _, p := range pages {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		found, err := fetch(ctx, input, p.url, timeout, maxBytes, re, group, batch.Out)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Failed to harvest page.", "url", p.url, "id", p.id, "error", err)
			failures = append(failures, err)
			continue
		}
		logger.Debug("Harvested page.", "url", p.url, "id", p.id, "matches", found)
	}

	if len(pages) > 0 && len(failures) == len(pages) {
		return fmt.Errorf("all %d page(s) failed: %w", len(pages), errors.Join(failures...))
	}
	logger.Info("Harvested pages.", "pages", len(pages), "failed", len(failures), "emitted", batch.Out.Emitted())
	return nil
}

// expandPages builds the page list for a batch. Independent modules (nil
// batch) fetch the url as is.
func expandPages(rawURL string, ids []labels.ID) ([]page, error) {
	templated := strings.Contains(rawURL, idPlaceholder)
	if ids == nil {
		if templated {
			return nil, fmt.Errorf("url %q contains %s but the module consumes no label", rawURL, idPlaceholder)
		}
		return []page{{url: rawURL}}, nil
	}
	if !templated {
		return nil, fmt.Errorf("url %q must contain %s for a dependent module", rawURL, idPlaceholder)
	}
	pages := make([]page, 0, len(ids))
	for _, id := range ids {
		pages = append(pages, page{
			url: strings.ReplaceAll(rawURL, idPlaceholder, url.PathEscape(string(id))),
			id:  id,
		})
	}
	return pages, nil
}

func fetch(ctx context.Context, input *Input, pageURL string, timeout time.Duration, maxBytes int64, re *regexp.Regexp, group int, out *labels.Emitter) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := input.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, pageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range input.Headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	matches := re.FindAllSubmatch(body, -1)
	for _, m := range matches {
		out.Emit(labels.ID(m[group]))
	}
	return len(matches), nil
}

// Register registers the driver with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDriver("http_pages", &registry.RegisteredDriver{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunHttpPages,
	})
}
