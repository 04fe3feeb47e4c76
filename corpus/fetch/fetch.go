package fetch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/corpus"
	"github.com/BaSui01/tokenbench/internal/tlsutil"
	"github.com/BaSui01/tokenbench/types"
)

// 同时抓取的文章数上限
const maxConcurrentArticles = 4

// 正文中需要剔除的节点：脚注、样式、引用、编辑链接、表格等
const noiseSelector = "sup, style, script, table, figure, .reference, .mw-ref, .mw-editsection, .noprint"

// Fetcher builds a parallel corpus: it samples sentences from source-language
// Wikipedia articles and machine-translates them into every target language.
type Fetcher struct {
	cfg        config.FetchConfig
	client     *http.Client
	translator Translator
	languages  []string
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for Wikipedia requests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTranslator replaces the default Google translator.
func WithTranslator(t Translator) Option {
	return func(f *Fetcher) { f.translator = t }
}

// WithLanguages sets the language keys written to the corpus, in order.
// By default the source key followed by the sorted target keys.
func WithLanguages(languages []string) Option {
	return func(f *Fetcher) { f.languages = append([]string(nil), languages...) }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithClock overrides the clock used for generated_at.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher 创建语料抓取器
func NewFetcher(cfg config.FetchConfig, opts ...Option) *Fetcher {
	f := &Fetcher{
		cfg:    cfg,
		client: tlsutil.NewClient(cfg.Timeout),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(zap.String("component", "corpus_fetcher"))
	if f.translator == nil {
		f.translator = NewGoogleTranslator(cfg,
			WithTranslatorClient(f.client),
			WithTranslatorLogger(f.logger),
		)
	}
	if len(f.languages) == 0 {
		f.languages = defaultLanguages(cfg)
	}
	return f
}

func defaultLanguages(cfg config.FetchConfig) []string {
	keys := make([]string, 0, len(cfg.TargetLanguages))
	for _, key := range cfg.TargetLanguages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return append([]string{cfg.SourceKey}, keys...)
}

// FetchArticle downloads the rendered HTML of a Wikipedia article and
// returns its paragraph text, one paragraph per line.
func (f *Fetcher) FetchArticle(ctx context.Context, article config.ArticleConfig) (string, error) {
	title := strings.ReplaceAll(article.Title, " ", "_")
	endpoint := strings.TrimRight(f.cfg.WikiBaseURL, "/") + "/api/rest_v1/page/html/" + url.PathEscape(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", types.NewError(types.ErrFetchFailed, "build request").WithCause(err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", types.NewError(types.ErrFetchFailed,
			fmt.Sprintf("fetch article %q", article.Title)).WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", types.NewError(types.ErrFetchFailed,
			fmt.Sprintf("article %q does not exist on %s Wikipedia", article.Title, f.cfg.SourceLanguage))
	case resp.StatusCode != http.StatusOK:
		return "", types.NewError(types.ErrFetchFailed,
			fmt.Sprintf("fetch article %q: unexpected status %d", article.Title, resp.StatusCode)).
			WithRetryable(resp.StatusCode >= 500)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", types.NewError(types.ErrFetchFailed, "decode charset").WithCause(err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", types.NewError(types.ErrFetchFailed, "parse article html").WithCause(err)
	}

	return extractParagraphs(doc), nil
}

func extractParagraphs(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n")
}

// Sample picks n sentences with rng. When fewer are available all of them
// are returned in their original order.
func Sample(rng *rand.Rand, sentences []string, n int) []string {
	if len(sentences) <= n {
		return append([]string(nil), sentences...)
	}
	perm := rng.Perm(len(sentences))
	out := make([]string, n)
	for i := range out {
		out[i] = sentences[perm[i]]
	}
	return out
}

type pendingSentence struct {
	source string
	text   string
}

// Fetch runs the whole pipeline and returns the corpus document.
func (f *Fetcher) Fetch(ctx context.Context) (*corpus.File, error) {
	articles := f.cfg.Articles
	if len(f.cfg.SentencesPerArticle) < len(articles) {
		return nil, types.NewError(types.ErrInvalidConfig,
			fmt.Sprintf("sentences_per_article has %d entries for %d articles",
				len(f.cfg.SentencesPerArticle), len(articles)))
	}

	texts := make([]string, len(articles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentArticles)
	for i, article := range articles {
		g.Go(func() error {
			text, err := f.FetchArticle(gctx, article)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 选取在抓取完成后按文章顺序进行，保证同一种子结果一致
	rng := rand.New(rand.NewPCG(f.cfg.Seed, f.cfg.Seed))
	sources := make([]corpus.SourceInfo, 0, len(articles))
	var pending []pendingSentence
	for i, article := range articles {
		sentences := FilterSentences(SplitSentences(texts[i]), f.cfg.MinSentenceLength, f.cfg.MaxSentenceLength)
		n := f.cfg.SentencesPerArticle[i]
		if len(sentences) < n {
			f.logger.Warn("not enough sentences, taking all",
				zap.String("article", article.Title),
				zap.Int("available", len(sentences)),
				zap.Int("requested", n),
			)
		}
		selected := Sample(rng, sentences, n)
		f.logger.Info("article processed",
			zap.String("article", article.Title),
			zap.String("domain", article.Domain),
			zap.Int("chars", len([]rune(texts[i]))),
			zap.Int("sentences", len(sentences)),
			zap.Int("selected", len(selected)),
		)

		sources = append(sources, corpus.SourceInfo{
			Title:                   article.Title,
			URL:                     article.URL,
			Domain:                  article.Domain,
			TotalSentencesExtracted: len(sentences),
			SentencesSelected:       len(selected),
		})
		for _, s := range selected {
			pending = append(pending, pendingSentence{source: article.Title, text: s})
		}
	}

	entries, err := f.translateAll(ctx, pending)
	if err != nil {
		return nil, err
	}

	populated := 0
	for _, e := range entries {
		for _, lang := range f.languages {
			if e[lang] != "" {
				populated++
			}
		}
	}
	f.logger.Info("corpus built",
		zap.Int("sentences", len(entries)),
		zap.Int("populated_fields", populated),
		zap.Int("total_fields", len(entries)*len(f.languages)),
	)

	return &corpus.File{
		Metadata: &corpus.Metadata{
			Sources:           sources,
			TotalSentences:    len(entries),
			Languages:         append([]string(nil), f.languages...),
			GeneratedAt:       f.now().Format("2006-01-02 15:04:05"),
			TranslationMethod: f.translator.Name(),
			Seed:              f.cfg.Seed,
		},
		Sentences: entries,
	}, nil
}

func (f *Fetcher) translateAll(ctx context.Context, pending []pendingSentence) ([]corpus.Entry, error) {
	targets := make([]string, 0, len(f.cfg.TargetLanguages))
	for code := range f.cfg.TargetLanguages {
		targets = append(targets, code)
	}
	sort.Strings(targets)

	entries := make([]corpus.Entry, 0, len(pending))
	for idx, p := range pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f.logger.Info("translating sentence",
			zap.Int("index", idx+1),
			zap.Int("total", len(pending)),
		)

		entry := corpus.Entry{
			"id":     fmt.Sprintf("s%03d", idx+1),
			"source": p.source,
		}
		for _, lang := range f.languages {
			entry[lang] = ""
		}
		entry[f.cfg.SourceKey] = p.text

		for _, code := range targets {
			translated, err := f.translator.Translate(ctx, p.text, f.cfg.SourceLanguage, code)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				f.logger.Error("translation failed",
					zap.String("id", entry["id"]),
					zap.String("target", code),
					zap.Error(err),
				)
				translated = ""
			}
			entry[f.cfg.TargetLanguages[code]] = translated
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
