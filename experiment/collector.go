package experiment

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/corpus"
	"github.com/BaSui01/tokenbench/internal/pool"
	"github.com/BaSui01/tokenbench/tokenizer"
	"github.com/BaSui01/tokenbench/types"
)

// Progress is reported after each sentence has been measured.
type Progress struct {
	Done       int
	Total      int
	SentenceID string
}

// Observer receives one event per Encode call.
type Observer interface {
	ObserveEncode(tokenizer, language string, tokens int, elapsed time.Duration, err error)
}

// Collector runs every (sentence, language, tokenizer) triple through the
// tokenizer adapters and materializes the raw measurement set.
type Collector struct {
	settings      Settings
	set           *tokenizer.Set
	workers       int
	progressEvery int
	logger        *zap.Logger
	progress      func(Progress)
	observer      Observer
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithWorkers sets the number of sentences measured concurrently.
func WithWorkers(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) CollectorOption {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgress replaces the default progress logging. Calls are serialized.
func WithProgress(fn func(Progress)) CollectorOption {
	return func(c *Collector) { c.progress = fn }
}

// WithProgressEvery sets how often the default progress logger writes a line.
func WithProgressEvery(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.progressEvery = n
		}
	}
}

// WithObserver registers an Encode observer (e.g. metrics).
func WithObserver(o Observer) CollectorOption {
	return func(c *Collector) { c.observer = o }
}

// NewCollector creates a collector over the loaded tokenizers.
func NewCollector(settings Settings, set *tokenizer.Set, opts ...CollectorOption) *Collector {
	c := &Collector{
		settings:      settings,
		set:           set,
		workers:       1,
		progressEvery: 10,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "collector"))
	if c.progress == nil {
		c.progress = c.logProgress
	}
	return c
}

// Tokenizers returns the tokenizer names the collector will use: the
// configured names that were loaded, or the set order when none are configured.
func (c *Collector) Tokenizers() []string {
	if c.set == nil {
		return nil
	}
	if len(c.settings.Tokenizers) == 0 {
		return c.set.Names()
	}
	var names []string
	for _, name := range c.settings.Tokenizers {
		if _, ok := c.set.Get(name); ok {
			names = append(names, name)
		}
	}
	return names
}

// Collect measures the whole store. The result is ordered by sentence (store
// order), language (settings order) and tokenizer, whatever the worker count.
func (c *Collector) Collect(ctx context.Context, store *corpus.Store) ([]Measurement, error) {
	names := c.Tokenizers()
	if len(names) == 0 {
		return nil, types.NewError(types.ErrNoTokenizers, "no tokenizers available")
	}
	adapters := make([]tokenizer.Adapter, len(names))
	for i, name := range names {
		adapters[i], _ = c.set.Get(name)
	}

	ids := store.IDs()
	per := len(c.settings.Languages) * len(names)
	out := make([]Measurement, len(ids)*per)

	var (
		mu   sync.Mutex
		done int
	)
	report := func(id string) {
		mu.Lock()
		defer mu.Unlock()
		done++
		c.progress(Progress{Done: done, Total: len(ids), SentenceID: id})
	}

	p := pool.NewWorkerPool(pool.WorkerPoolConfig{
		Workers:     c.workers,
		QueueSize:   c.workers,
		StopOnError: true,
	})
	defer p.Close()

	var submitErr error
	for i, id := range ids {
		if p.Stopped() {
			break
		}
		dst := out[i*per : (i+1)*per]
		err := p.Submit(ctx, func(ctx context.Context) error {
			if err := c.measureSentence(ctx, store, id, names, adapters, dst); err != nil {
				return err
			}
			report(id)
			return nil
		})
		if err != nil {
			submitErr = err
			break
		}
	}

	err := p.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err == nil {
		err = submitErr
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collector) measureSentence(
	ctx context.Context,
	store *corpus.Store,
	id string,
	names []string,
	adapters []tokenizer.Adapter,
	dst []Measurement,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	k := 0
	for _, lang := range c.settings.Languages {
		text, ok := store.Text(id, lang)
		if !ok {
			return types.NewError(types.ErrCorpusInvalid,
				fmt.Sprintf("sentence %s has no %s text", id, lang))
		}
		chars := utf8.RuneCountInString(text)

		for j, adapter := range adapters {
			start := time.Now()
			res, err := adapter.Encode(text)
			if c.observer != nil {
				c.observer.ObserveEncode(names[j], lang, res.Count, time.Since(start), err)
			}
			if err != nil {
				return types.NewError(types.ErrTokenizerEncode,
					fmt.Sprintf("encode sentence %s (%s)", id, lang)).
					WithTokenizer(names[j]).
					WithCause(err)
			}

			m := NewMeasurement(id, lang, names[j], res.Count, chars)
			m.Tokens = res.Tokens
			dst[k] = m
			k++
		}
	}
	return nil
}

func (c *Collector) logProgress(p Progress) {
	if p.Done == 1 || p.Done%c.progressEvery == 0 || p.Done == p.Total {
		c.logger.Info("sentence progress",
			zap.Int("done", p.Done),
			zap.Int("total", p.Total),
		)
	}
}
