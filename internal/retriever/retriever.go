package retriever

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
	"github.com/skathuria/PlagiarismAPI/internal/retriever/webclient"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

// Retriever turns search terms into fetched candidate source texts. Every
// failure below the whole-batch level is absorbed: a term whose search
// errors contributes nothing, a URL that will not fetch is skipped. Zero
// sources is a legitimate outcome, not an error.
type Retriever struct {
	collaborator webclient.Collaborator
	logger       *logger_i.Logger
}

func NewRetriever(collaborator webclient.Collaborator) *Retriever {
	return &Retriever{
		collaborator: collaborator,
		logger:       logger_i.NewLogger("Candidate Retriever"),
	}
}

func (r *Retriever) Retrieve(ctx context.Context, terms []string) []matchModel.CandidateSource {
	urls := r.collectURLs(ctx, terms)
	if len(urls) == 0 {
		r.logger.Info("No candidate URLs found", "terms", len(terms))
		return nil
	}
	return r.fetchAll(ctx, urls)
}

func (r *Retriever) collectURLs(ctx context.Context, terms []string) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, term := range terms {
		if ctx.Err() != nil {
			break
		}
		hits, err := r.collaborator.Search(ctx, term)
		if err != nil {
			r.logger.Warn("Search term failed, skipping", "term", term, "error", err)
			continue
		}
		for _, hit := range hits {
			if _, dup := seen[hit.URL]; dup {
				continue
			}
			seen[hit.URL] = struct{}{}
			urls = append(urls, hit.URL)
			if len(urls) >= config.MaxCandidateSources {
				return urls
			}
		}
	}
	return urls
}

// fetchAll pulls page texts concurrently, capped globally and per domain so
// one host never sees a burst. Jitter spreads the first wave out.
func (r *Retriever) fetchAll(ctx context.Context, urls []string) []matchModel.CandidateSource {
	global := make(chan struct{}, config.MaxFetchWorkers)
	domains := newDomainLimiter(config.MaxFetchPerDomain)

	results := make([]matchModel.CandidateSource, len(urls))
	var wg sync.WaitGroup
	for i, pageURL := range urls {
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()

			global <- struct{}{}
			defer func() { <-global }()
			release := domains.acquire(pageURL)
			defer release()

			time.Sleep(time.Duration(rand.Intn(400)+100) * time.Millisecond)

			text, err := r.collaborator.Fetch(ctx, pageURL)
			if err != nil {
				r.logger.Warn("Candidate fetch failed, excluded from matching", "url", pageURL, "error", err)
				return
			}
			if strings.TrimSpace(text) == "" {
				return
			}
			results[i] = matchModel.CandidateSource{URL: pageURL, Text: text}
		}(i, pageURL)
	}
	wg.Wait()

	sources := make([]matchModel.CandidateSource, 0, len(urls))
	for _, s := range results {
		if s.URL != "" {
			sources = append(sources, s)
		}
	}
	r.logger.Info("Candidate retrieval done", "requested", len(urls), "fetched", len(sources))
	return sources
}

type domainLimiter struct {
	mu         sync.Mutex
	perDomain  int
	semaphores map[string]chan struct{}
}

func newDomainLimiter(perDomain int) *domainLimiter {
	return &domainLimiter{
		perDomain:  perDomain,
		semaphores: make(map[string]chan struct{}),
	}
}

func (d *domainLimiter) acquire(pageURL string) func() {
	domain := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		domain = u.Host
	}

	d.mu.Lock()
	sem, ok := d.semaphores[domain]
	if !ok {
		sem = make(chan struct{}, d.perDomain)
		d.semaphores[domain] = sem
	}
	d.mu.Unlock()

	sem <- struct{}{}
	return func() { <-sem }
}
