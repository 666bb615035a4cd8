// Package sources defines the contract shared by the record collectors and the
// auto-expanding collection loop that drives them.
package sources

import (
	"context"
	"net/http"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
)

// Query is one collection request for a category.
type Query struct {
	Topics   []string
	DaysBack int
	Section  string
}

// Source collects raw records for a query. Implementations deduplicate their
// own output and enforce their own caps.
type Source interface {
	Name() domain.Source
	// Windowed reports whether DaysBack affects the result, i.e. whether widening
	// the window can produce more records.
	Windowed() bool
	Fetch(ctx context.Context, q Query) ([]domain.RawRecord, error)
}

// Fetcher is the HTTP access sources use. links.WebFetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error)
	Client() *http.Client
}

// Result is the outcome of collecting one source. Err is set when the source
// failed; Records is empty in that case.
type Result struct {
	Source   domain.Source
	Records  []domain.RawRecord
	DaysBack int
	Err      error
}

// OK reports whether the source succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Status returns the status-map value for the result.
func (r Result) Status() string {
	if r.Err != nil {
		return domain.FailedStatus(r.Err)
	}

	return domain.StatusOK
}
