package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/internal/tlsutil"
	"github.com/BaSui01/tokenbench/types"
)

// Translator 机器翻译接口
type Translator interface {
	// Translate translates text from source to target language code.
	Translate(ctx context.Context, text, source, target string) (string, error)
	// Name describes the translation method, recorded in corpus metadata.
	Name() string
}

// GoogleTranslator calls the public translate_a/single endpoint (client=gtx).
// Requests are paced by a shared limiter and retried with linear backoff.
type GoogleTranslator struct {
	endpoint   string
	userAgent  string
	maxRetries int
	backoff    time.Duration
	client     *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// TranslatorOption configures a GoogleTranslator.
type TranslatorOption func(*GoogleTranslator)

// WithBackoff sets the backoff unit; attempt n waits (n+1)*unit.
func WithBackoff(unit time.Duration) TranslatorOption {
	return func(t *GoogleTranslator) { t.backoff = unit }
}

// WithTranslatorClient sets the HTTP client.
func WithTranslatorClient(c *http.Client) TranslatorOption {
	return func(t *GoogleTranslator) { t.client = c }
}

// WithTranslatorLogger sets the logger.
func WithTranslatorLogger(logger *zap.Logger) TranslatorOption {
	return func(t *GoogleTranslator) { t.logger = logger }
}

// NewGoogleTranslator 创建 Google 翻译客户端
func NewGoogleTranslator(cfg config.FetchConfig, opts ...TranslatorOption) *GoogleTranslator {
	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}
	t := &GoogleTranslator{
		endpoint:   cfg.TranslateURL,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		backoff:    2 * time.Second,
		client:     tlsutil.NewClient(cfg.Timeout),
		limiter:    rate.NewLimiter(limit, 1),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.maxRetries < 1 {
		t.maxRetries = 1
	}
	t.logger = t.logger.With(zap.String("component", "google_translator"))
	return t
}

// Name implements Translator.
func (t *GoogleTranslator) Name() string {
	return "Google Translate (gtx endpoint)"
}

// Translate implements Translator.
func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", err
		}

		out, err := t.do(ctx, text, source, target)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !types.IsRetryable(err) || attempt == t.maxRetries-1 {
			break
		}

		wait := time.Duration(attempt+1) * t.backoff
		t.logger.Warn("translation attempt failed",
			zap.String("target", target),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}

	return "", types.NewError(types.ErrTranslationFailed,
		fmt.Sprintf("translate %s -> %s failed", source, target)).WithCause(lastErr)
}

func (t *GoogleTranslator) do(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", types.NewError(types.ErrTranslationFailed, "build request").WithCause(err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", types.NewError(types.ErrTranslationFailed, "request failed").WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewError(types.ErrTranslationFailed, "read response").WithCause(err).WithRetryable(true)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", types.NewError(types.ErrTranslationFailed,
			fmt.Sprintf("unexpected status %d", resp.StatusCode)).WithRetryable(retryable)
	}

	out, err := parseGTXResponse(body)
	if err != nil {
		return "", types.NewError(types.ErrTranslationFailed, "malformed response").WithCause(err)
	}
	return out, nil
}

// parseGTXResponse 解析 [[["译文","原文",...],...],...] 结构，拼接所有片段
func parseGTXResponse(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated segments")
	}
	return sb.String(), nil
}
