package webclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/customHttpClient"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

// SearchHit is one candidate source location returned by the search
// collaborator.
type SearchHit struct {
	URL   string
	Title string
}

// Collaborator is the web search/scrape boundary. Per-URL fetch failures are
// the caller's to absorb - one dead link never kills a job.
type Collaborator interface {
	Search(ctx context.Context, term string) ([]SearchHit, error)
	Fetch(ctx context.Context, pageURL string) (string, error)
}

type httpCollaborator struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	maxResults int
	logger     *logger_i.Logger
}

func NewHTTPCollaborator() Collaborator {
	endpoint := os.Getenv("SEARCH_ENDPOINT")
	if endpoint == "" {
		endpoint = config.SearchEndpoint
	}
	return &httpCollaborator{
		client:     customHttpClient.NewPooledClient(),
		endpoint:   endpoint,
		apiKey:     os.Getenv("SEARCH_API_KEY"),
		maxResults: config.SearchMaxResults,
		logger:     logger_i.NewLogger("SearchClient"),
	}
}

// wire shape of the search API - validated here, converted once, nothing
// downstream sees the raw payload
type searchResponseDTO struct {
	Results []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"results"`
}

func (c *httpCollaborator) Search(ctx context.Context, term string) ([]SearchHit, error) {
	if c.endpoint == "" {
		return nil, errors.New("search collaborator not configured")
	}

	q := url.Values{}
	q.Set("q", term)
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var dto searchResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("malformed search response: %w", err)
	}

	hits := make([]SearchHit, 0, len(dto.Results))
	for _, r := range dto.Results {
		if r.URL == "" {
			continue
		}
		hits = append(hits, SearchHit{URL: r.URL, Title: r.Title})
		if len(hits) >= c.maxResults {
			break
		}
	}
	c.logger.Debug("search done", "term", term, "hits", len(hits))
	return hits, nil
}
