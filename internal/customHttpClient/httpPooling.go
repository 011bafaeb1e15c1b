package customHttpClient

import (
	"net/http"

	"github.com/skathuria/PlagiarismAPI/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewPooledClient returns a client sharing the process-wide connection pool.
// Candidate fetching hits many URLs on few domains, so keeping connections
// warm matters.
func NewPooledClient() *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   config.FetchTimeout,
	}
}
