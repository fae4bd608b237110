// Package invoke forwards calls to catalog APIs and normalizes what comes back.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/free-apis-mcp/internal/catalog"
	"github.com/bobmcallan/free-apis-mcp/internal/common"
	"github.com/bobmcallan/free-apis-mcp/internal/config"
)

// Proxy issues one outbound request per call. It keeps no per-call state;
// the shared http.Client only pools idle connections.
type Proxy struct {
	httpClient   *http.Client
	logger       *common.Logger
	timeout      time.Duration
	maxText      int
	maxErrorBody int
	maxReadBytes int64
	userAgent    string
}

// NewProxy creates a proxy from the proxy section of the config.
func NewProxy(cfg config.ProxyConfig, logger *common.Logger) *Proxy {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &Proxy{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:       logger,
		timeout:      timeout,
		maxText:      cfg.MaxTextChars,
		maxErrorBody: cfg.MaxErrorBodyChars,
		maxReadBytes: cfg.MaxResponseBytes,
		userAgent:    cfg.UserAgent,
	}
}

// Timeout returns the per-call timeout.
func (p *Proxy) Timeout() time.Duration {
	return p.timeout
}

// Call sends a GET or POST to url. An empty method means GET.
// Failures other than an unsupported method are returned as *CallError.
func (p *Proxy) Call(ctx context.Context, url, method string) (*Result, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "" {
		m = http.MethodGet
	}
	if m != http.MethodGet && m != http.MethodPost {
		return nil, &UnsupportedMethodError{Method: method}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	logger := common.LoggerFrom(ctx, p.logger)
	logger.Debug().Str("method", m).Str("url", url).Msg("api request")

	req, err := http.NewRequestWithContext(ctx, m, url, nil)
	if err != nil {
		return nil, &CallError{Kind: KindTransport, Err: err}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		logger.Warn().Str("method", m).Str("url", url).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("api request failed")
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, overflow, err := p.readBody(resp.Body)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to read response: %w", err))
	}

	logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(body)).Int64("duration_ms", duration.Milliseconds()).Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CallError{
			Kind:   KindHTTPStatus,
			Status: resp.StatusCode,
			Body:   truncate(string(body), p.maxErrorBody),
		}
	}

	if overflow && looksLikeJSON(resp.Header.Get("Content-Type"), body) {
		logger.Warn().Str("url", url).Int64("limit_bytes", p.maxReadBytes).Msg("api response over size limit")
		return nil, &CallError{Kind: KindTooLarge, Limit: p.maxReadBytes}
	}

	result := normalize(body, p.maxText)
	result.Status = resp.StatusCode
	result.ContentType = resp.Header.Get("Content-Type")
	return result, nil
}

// readBody reads at most maxReadBytes and reports whether the body was longer.
func (p *Proxy) readBody(r io.Reader) ([]byte, bool, error) {
	if p.maxReadBytes <= 0 {
		body, err := io.ReadAll(r)
		return body, false, err
	}
	body, err := io.ReadAll(io.LimitReader(r, p.maxReadBytes+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > p.maxReadBytes {
		return body[:p.maxReadBytes], true, nil
	}
	return body, false, nil
}

// Resolver looks an API up by name. *catalog.Engine satisfies it.
type Resolver interface {
	GetAPI(ctx context.Context, name string) (catalog.Record, error)
}

// QuickTest calls the test URL of the named API. No request is made
// unless the API exists and has a test URL.
func (p *Proxy) QuickTest(ctx context.Context, r Resolver, name string) (*Result, error) {
	rec, err := r.GetAPI(ctx, name)
	if err != nil {
		return nil, err
	}
	if !rec.HasTestURL() {
		return nil, &NoTestURLError{Name: rec.Name}
	}
	return p.Call(ctx, rec.TestURL, http.MethodGet)
}

// classify maps a transport error onto timeout or transport kinds.
func classify(err error) *CallError {
	if isTimeout(err) {
		return &CallError{Kind: KindTimeout, Err: err}
	}
	return &CallError{Kind: KindTransport, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
