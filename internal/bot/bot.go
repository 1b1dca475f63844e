// Package bot runs the end-to-end posting pipeline: fetch candidate
// articles, enrich thin entries, pick one nobody has seen, compose the
// update and deliver it to every configured sink, then record the post
// in the durable ledger.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/headline-hq/chirper/internal/compose"
	"github.com/headline-hq/chirper/internal/config"
	"github.com/headline-hq/chirper/internal/crawler"
	"github.com/headline-hq/chirper/internal/domain"
	"github.com/headline-hq/chirper/internal/ledger"
	"github.com/headline-hq/chirper/internal/logger"
	"github.com/headline-hq/chirper/pkg/httpclient"
	"github.com/headline-hq/chirper/pkg/providers"
	"github.com/headline-hq/chirper/pkg/publishers"
)

// Ledger is the durable posted-article record.
type Ledger interface {
	Load(ctx context.Context) (ledger.State, error)
	Append(ctx context.Context, url string, u ledger.Usage, now time.Time) error
}

// URLCache is the local posted-URL set used for dedupe.
type URLCache interface {
	Warm(urls []string) error
	Add(url string) error
	Contains(url string) bool
}

// Enricher backfills missing article metadata before selection.
type Enricher interface {
	Enrich(ctx context.Context, cfg providers.Provider, articles []domain.Article) []domain.Article
}

// Bot executes one posting run per trigger.
type Bot struct {
	budgets   ledger.Budgets
	providers []providers.Provider
	fetchers  providers.FetcherRegistry
	enricher  Enricher
	sinks     []publishers.Publisher
	store     Ledger
	cache     URLCache
	log       logger.Logger
	now       func() time.Time
}

// New assembles a Bot from its collaborators.
func New(budgets ledger.Budgets, provs []providers.Provider, fetchers providers.FetcherRegistry,
	enricher Enricher, sinks []publishers.Publisher, store Ledger, cache URLCache, log logger.Logger) *Bot {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Bot{
		budgets:   budgets,
		providers: provs,
		fetchers:  fetchers,
		enricher:  enricher,
		sinks:     sinks,
		store:     store,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

// Build wires a Bot from the loaded configuration, constructing the
// real sheet store, URL cache, fetchers and publisher sinks. The
// returned cleanup releases the cache database and must run after the
// last call to Run.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Bot, func() error, error) {
	provReg, err := providers.LoadRegistry(cfg.ProvidersFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load providers: %w", err)
	}

	pubReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load publishers: %w", err)
	}
	sinks, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubReg.Enabled(), log)
	if err != nil {
		return nil, nil, fmt.Errorf("build publishers: %w", err)
	}

	store, err := ledger.NewSheetStore(ctx, cfg.Secrets.SheetsCredentials, cfg.Secrets.SheetID, cfg.SheetName, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger sheet: %w", err)
	}

	cache, err := ledger.OpenCache(cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open url cache: %w", err)
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)
	fetchers := providers.DefaultFetcherRegistry(client, cfg.Secrets.NewsAPIKey)
	scraper := crawler.NewScraper(client, log)

	budgets := ledger.Budgets{
		NewsRequestsPerMonth: cfg.Budgets.NewsRequestsPerMonth,
		PostsPerDay:          cfg.Budgets.PostsPerDay,
		PostsPerMonth:        cfg.Budgets.PostsPerMonth,
	}

	b := New(budgets, provReg.Enabled(), fetchers, scraper, sinks, store, cache, log)
	return b, cache.Close, nil
}

// Run executes one posting attempt. An exhausted budget or an empty
// candidate pool is a successful no-op; only real delivery or ledger
// failures surface as errors.
func (b *Bot) Run(ctx context.Context) error {
	now := b.now()

	state, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	usage := state.Usage
	usage.Rollover(now)

	if err := usage.CheckPostBudget(b.budgets); err != nil {
		b.log.InfoObj("post budget reached, skipping run", "run_skipped_budget", map[string]any{
			"posts_today":      usage.PostsToday,
			"posts_this_month": usage.PostsThisMonth,
		})
		return nil
	}

	if err := b.cache.Warm(state.PostedURLs); err != nil {
		b.log.WarnObj("failed to warm url cache", "cache_warm_failed", map[string]any{
			"error": err.Error(),
		})
	}

	article, ok := b.findCandidate(ctx, &usage)
	if !ok {
		b.log.InfoObj("no postable article found, skipping run", "run_skipped_no_candidate", nil)
		return nil
	}

	post := compose.Post(article, now)

	if err := b.deliver(ctx, post); err != nil {
		return err
	}

	usage.RecordPost(now)
	if err := b.store.Append(ctx, post.ArticleURL, usage, now); err != nil {
		return fmt.Errorf("record post in ledger: %w", err)
	}
	if err := b.cache.Add(post.ArticleURL); err != nil {
		b.log.WarnObj("failed to cache posted url", "cache_add_failed", map[string]any{
			"error": err.Error(),
		})
	}

	b.log.InfoObj("post published", "post_published", map[string]any{
		"provider_id": post.ProviderID,
		"article_url": post.ArticleURL,
		"posts_today": usage.PostsToday,
	})
	return nil
}

// findCandidate walks the enabled providers in config order and returns
// the first article that survives validation and dedupe. Each provider
// fetch spends one unit of the news request budget.
func (b *Bot) findCandidate(ctx context.Context, usage *ledger.Usage) (domain.Article, bool) {
	for _, prov := range b.providers {
		if err := usage.CheckNewsBudget(b.budgets); err != nil {
			b.log.InfoObj("news request budget exhausted", "news_budget_exhausted", map[string]any{
				"requests": usage.NewsAPIRequests,
			})
			return domain.Article{}, false
		}

		fetcher, err := b.fetchers.FetcherFor(prov)
		if err != nil {
			b.log.WarnObj("no fetcher for provider", "provider_skipped", map[string]any{
				"provider_id": prov.ID,
				"error":       err.Error(),
			})
			continue
		}

		usage.RecordNewsRequest()
		articles, err := fetcher.Fetch(ctx, prov)
		if err != nil {
			b.log.WarnObj("provider fetch failed", "provider_fetch_failed", map[string]any{
				"provider_id": prov.ID,
				"error":       err.Error(),
			})
			continue
		}
		if len(articles) == 0 {
			continue
		}

		if b.enricher != nil {
			articles = b.enricher.Enrich(ctx, prov, articles)
		}

		if art, ok := compose.Pick(articles, b.cache.Contains); ok {
			return art, true
		}
	}
	return domain.Article{}, false
}

// deliver publishes the post to every sink. A primary sink failure
// fails the run; mirror failures are logged and swallowed.
func (b *Bot) deliver(ctx context.Context, post domain.Post) error {
	evt := publishers.Event{
		ProviderID: post.ProviderID,
		ArticleURL: post.ArticleURL,
		Text:       post.Text,
		PostedAt:   post.CreatedAt,
	}

	var primaryErr error
	delivered := false

	for _, sink := range b.sinks {
		err := sink.Publish(ctx, evt)
		if err == nil {
			if sink.Primary() {
				delivered = true
			}
			continue
		}

		if sink.Primary() {
			primaryErr = errors.Join(primaryErr, fmt.Errorf("publisher %q: %w", sink.ID(), err))
			continue
		}
		b.log.WarnObj("mirror publish failed", "mirror_publish_failed", map[string]any{
			"publisher_id": sink.ID(),
			"type":         sink.Type(),
			"error":        err.Error(),
		})
	}

	if primaryErr != nil && !delivered {
		return primaryErr
	}
	return nil
}
