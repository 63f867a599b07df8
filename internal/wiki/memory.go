package wiki

import (
	"context"
	"sync"
)

// MemoryFetcher is a Fetcher backed by a fixed set of results.
// Titles are matched after NormalizeTitle. Unknown titles are missing.
// It is used in tests and for offline dry runs.
type MemoryFetcher struct {
	mu      sync.Mutex
	results map[string]Result
	errs    map[string]error
	calls   map[string]int
}

// NewMemoryFetcher returns an empty MemoryFetcher.
func NewMemoryFetcher() *MemoryFetcher {
	return &MemoryFetcher{
		results: make(map[string]Result),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

// AddPage registers a page under its own title and under each alias.
// An alias plays the role of a redirect to p.Title.
func (m *MemoryFetcher) AddPage(p *Page, aliases ...string) *MemoryFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range append([]string{p.Title}, aliases...) {
		cp := *p
		cp.OriginalTitle = NormalizeTitle(key)
		m.results[NormalizeTitle(key)] = PageResult(&cp)
	}
	return m
}

// AddDisambiguation registers title as a disambiguation page.
func (m *MemoryFetcher) AddDisambiguation(title string, options ...string) *MemoryFetcher {
	return m.Set(title, DisambiguationResult(options...))
}

// AddRedirectUnresolved registers title as an unresolvable redirect.
func (m *MemoryFetcher) AddRedirectUnresolved(title string) *MemoryFetcher {
	return m.Set(title, RedirectUnresolvedResult())
}

// Set registers an arbitrary result for title.
func (m *MemoryFetcher) Set(title string, res Result) *MemoryFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[NormalizeTitle(title)] = res
	return m
}

// Fail makes Fetch return err for title.
func (m *MemoryFetcher) Fail(title string, err error) *MemoryFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[NormalizeTitle(title)] = err
	return m
}

// Calls returns how many times title was fetched.
func (m *MemoryFetcher) Calls(title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[NormalizeTitle(title)]
}

// Fetch implements Fetcher.
func (m *MemoryFetcher) Fetch(ctx context.Context, title string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	key := NormalizeTitle(title)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[key]++
	if err, ok := m.errs[key]; ok {
		return Result{}, err
	}
	if res, ok := m.results[key]; ok {
		return res, nil
	}
	return MissingResult(), nil
}
