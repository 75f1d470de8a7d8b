// Package fetcher downloads GRIB subsets from NOMADS. It walks candidate
// URLs newest first, retries transient failures per URL with jittered
// exponential backoff, and paces requests with a shared rate limiter so
// the NOAA servers never see a burst. A run that exhausts every URL is a
// FetchResult with Success=false rather than an error.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/johnny111272/grib-getter/internal/model"
)

const userAgent = "grib-getter/1.0"

// jitterFraction is the +/- share of the backoff delay randomized away so
// clients restarted together do not retry in lockstep.
const jitterFraction = 0.2

// Options configures a Fetcher. Zero values take the defaults below.
type Options struct {
	MaxAttempts  int           // per-URL tries, default 5
	InitialDelay time.Duration // first backoff, default 1s
	MaxDelay     time.Duration // backoff cap, default 60s
	RateInterval time.Duration // minimum spacing between requests, default 10s
	Timeout      time.Duration // per-request HTTP timeout, default 30s

	// Sleep and Jitter are test seams. Sleep defaults to a
	// context-aware timer wait; Jitter to rand.Float64.
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() float64
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 60 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	if o.Jitter == nil {
		o.Jitter = rand.Float64
	}
	return o
}

// Fetcher is a paced, retrying GRIB downloader. Safe for sequential use;
// the limiter is the only state shared across calls.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	opts       Options
}

// New creates a Fetcher. A non-positive RateInterval disables pacing.
func New(opts Options) *Fetcher {
	opts = opts.withDefaults()
	limit := rate.Inf
	if opts.RateInterval > 0 {
		limit = rate.Every(opts.RateInterval)
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		opts:       opts,
	}
}

// ─── Classification ───────────────────────────────────────────────────────────

// classifyStatus maps an HTTP status line to an attempt outcome.
func classifyStatus(code int) model.Outcome {
	switch {
	case code == http.StatusOK:
		return model.OutcomeSuccess
	case code == http.StatusNotFound:
		return model.OutcomeNotFound
	case code >= 500:
		return model.OutcomeServerError
	default:
		return model.OutcomeClientError
	}
}

// classifyErr maps a transport error to an attempt outcome.
func classifyErr(err error) model.Outcome {
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return model.OutcomeTimeout
		}
		return model.OutcomeNetworkError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.OutcomeTimeout
	}
	return model.OutcomeUnknownError
}

// ─── Backoff ──────────────────────────────────────────────────────────────────

// backoff returns the jittered delay before retry number attempt (0-based:
// the delay after the first failure is backoff(0)).
func (f *Fetcher) backoff(attempt int) time.Duration {
	d := time.Duration(float64(f.opts.InitialDelay) * math.Pow(2, float64(attempt)))
	if d > f.opts.MaxDelay {
		d = f.opts.MaxDelay
	}
	jitter := time.Duration(float64(d) * jitterFraction * (2*f.opts.Jitter() - 1))
	d += jitter
	if d < 0 {
		d = 0
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
	}
	return nil
}

// ─── Fetching ─────────────────────────────────────────────────────────────────

// fetchOnce performs a single GET and classifies the result. data is nil
// unless the outcome is success.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) ([]byte, model.FetchAttempt) {
	attempt := model.FetchAttempt{URL: rawURL, Timestamp: time.Now().UTC()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		attempt.Outcome = model.OutcomeUnknownError
		return nil, attempt
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		attempt.Outcome = classifyErr(err)
		slog.Debug("request failed", "url", rawURL, "outcome", attempt.Outcome, "error", err)
		return nil, attempt
	}
	defer resp.Body.Close()

	attempt.StatusCode = resp.StatusCode
	attempt.Outcome = classifyStatus(resp.StatusCode)
	slog.Debug("response", "url", rawURL, "status", resp.StatusCode, "outcome", attempt.Outcome)

	if attempt.Outcome != model.OutcomeSuccess {
		return nil, attempt
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		attempt.Outcome = classifyErr(err)
		return nil, attempt
	}
	return body, attempt
}

// FetchWithBackoff tries one URL up to MaxAttempts times, sleeping with
// jittered exponential backoff between retryable failures. It stops early
// on success or on a non-retryable outcome.
func (f *Fetcher) FetchWithBackoff(ctx context.Context, rawURL string) ([]byte, []model.FetchAttempt, error) {
	var attempts []model.FetchAttempt
	for i := 0; i < f.opts.MaxAttempts; i++ {
		data, attempt := f.fetchOnce(ctx, rawURL)
		attempts = append(attempts, attempt)

		if attempt.Outcome == model.OutcomeSuccess {
			return data, attempts, nil
		}
		if !attempt.Outcome.Retryable() || i == f.opts.MaxAttempts-1 {
			break
		}
		delay := f.backoff(i)
		slog.Debug("retrying after backoff", "url", rawURL, "attempt", i+1, "backoff", delay)
		if err := f.opts.Sleep(ctx, delay); err != nil {
			return nil, attempts, err
		}
	}
	return nil, attempts, nil
}

// FetchSequence walks candidate URLs in order until one succeeds. When
// destPath is non-empty the body is written there atomically. The result
// carries every attempt made across all URLs.
//
// The full RateInterval is slept between consecutive URLs, counted from
// the moment the previous URL finished, however long its request and
// retries took. The shared limiter additionally spaces requests across
// sequences on the same Fetcher.
func (f *Fetcher) FetchSequence(ctx context.Context, urls []string, destPath string) (model.FetchResult, error) {
	start := time.Now()
	var result model.FetchResult

	for i, u := range urls {
		if i > 0 && f.opts.RateInterval > 0 {
			slog.Debug("courtesy wait", "interval", f.opts.RateInterval)
			if err := f.opts.Sleep(ctx, f.opts.RateInterval); err != nil {
				result.Duration = time.Since(start)
				return result, err
			}
		}
		if err := f.limiter.Wait(ctx); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		slog.Info("trying cycle", "url", u)

		data, attempts, err := f.FetchWithBackoff(ctx, u)
		result.Attempts = append(result.Attempts, attempts...)
		if err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		if data == nil {
			continue
		}

		if destPath != "" {
			if err := WriteArtifact(destPath, data); err != nil {
				result.Duration = time.Since(start)
				return result, fmt.Errorf("writing %s: %w", destPath, err)
			}
		}
		result.Data = data
		result.Success = true
		result.Duration = time.Since(start)
		slog.Info("fetched", "url", u, "bytes", len(data), "duration", result.Duration)
		return result, nil
	}

	result.Duration = time.Since(start)
	slog.Warn("all cycles exhausted", "urls", len(urls), "attempts", len(result.Attempts))
	return result, nil
}

// WriteArtifact writes data to path through a temp file in the same
// directory so a partially written GRIB never lands at the final name.
func WriteArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
