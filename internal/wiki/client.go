package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default client settings.
const (
	// DefaultLanguage is the wiki language used when none is configured.
	DefaultLanguage = "en"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies wikigraph to Wikimedia servers.
	DefaultUserAgent = "wikigraph/1.0 (+https://github.com/nao1215/wikigraph)"

	// maxResponseSize caps how much of a response body is read.
	// Link lists come back in 500-item batches, so real responses are small.
	maxResponseSize = 16 * 1024 * 1024

	// maxContinuations caps the number of continuation requests per title.
	// Pages with more than ~100k links are not articles.
	maxContinuations = 200
)

// APIURL returns the Action API endpoint of the Wikipedia edition for lang.
func APIURL(lang string) string {
	return "https://" + lang + ".wikipedia.org/w/api.php"
}

// Client talks to a MediaWiki Action API endpoint.
// It implements Fetcher.
type Client struct {
	// apiURL is the api.php endpoint.
	apiURL string

	// httpClient performs the requests.
	httpClient *http.Client

	// userAgent is sent with every request.
	userAgent string

	// timeout is used when the client builds its own http.Client.
	timeout time.Duration

	// proxyAddress is an optional SOCKS5 proxy in host:port form.
	proxyAddress string

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLanguage points the client at <lang>.wikipedia.org.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.apiURL = APIURL(lang)
	}
}

// WithAPIURL sets the api.php endpoint directly.
// It takes precedence over WithLanguage when applied after it.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// Timeout and proxy options are ignored when this is set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithProxy routes requests through a SOCKS5 proxy at host:port.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client. Without options it talks to English Wikipedia.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		apiURL:    APIURL(DefaultLanguage),
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if _, err := url.ParseRequestURI(c.apiURL); err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", c.apiURL, err)
	}

	if c.httpClient == nil {
		hc, err := newHTTPClient(c.timeout, c.proxyAddress)
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// APIEndpoint returns the api.php URL the client uses.
func (c *Client) APIEndpoint() string {
	return c.apiURL
}

// Fetch resolves title and classifies the outcome.
func (c *Client) Fetch(ctx context.Context, title string) (Result, error) {
	title = NormalizeTitle(title)
	if title == "" {
		return MissingResult(), nil
	}

	info, err := c.get(ctx, url.Values{
		"action":    {"query"},
		"prop":      {"info|pageprops"},
		"inprop":    {"url"},
		"ppprop":    {"disambiguation"},
		"redirects": {"1"},
		"titles":    {title},
	})
	if err != nil {
		return Result{}, err
	}
	if info.Query == nil {
		return MissingResult(), nil
	}

	original := info.Query.normalized(title)
	resolved := info.Query.resolve(title)

	if len(info.Query.Interwiki) > 0 || info.Query.redirectsToInterwiki() {
		if len(info.Query.Redirects) > 0 {
			return RedirectUnresolvedResult(), nil
		}
		return MissingResult(), nil
	}

	page := info.Query.page(resolved)
	if page == nil || page.Missing || page.Invalid || page.Special {
		return MissingResult(), nil
	}
	if page.Redirect {
		// The API stops following a redirect when it would loop.
		return RedirectUnresolvedResult(), nil
	}

	if page.isDisambiguation() {
		options, err := c.disambiguationOptions(ctx, page.Title)
		if err != nil {
			return Result{}, err
		}
		c.logger.Debug("disambiguation page", "title", page.Title, "options", len(options))
		return DisambiguationResult(options...), nil
	}

	links, categories, err := c.linksAndCategories(ctx, page.Title)
	if err != nil {
		return Result{}, err
	}

	return PageResult(&Page{
		Title:         page.Title,
		OriginalTitle: original,
		Links:         links,
		Categories:    categories,
		URL:           page.FullURL,
	}), nil
}

// linksAndCategories pages through prop=links|categories for title.
func (c *Client) linksAndCategories(ctx context.Context, title string) ([]string, []string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"links|categories"},
		"plnamespace": {fmt.Sprint(namespaceMain)},
		"pllimit":     {"max"},
		"cllimit":     {"max"},
		"titles":      {title},
	}

	links := make([]string, 0)
	categories := make([]string, 0)
	var continued []string

	for i := 0; i < maxContinuations; i++ {
		resp, err := c.get(ctx, params)
		if err != nil {
			return nil, nil, err
		}

		if resp.Query != nil {
			if page := resp.Query.page(title); page != nil {
				for _, l := range page.Links {
					if l.Namespace == namespaceMain {
						links = append(links, l.Title)
					}
				}
				for _, cat := range page.Categories {
					if cat.Namespace == namespaceCategory {
						categories = append(categories, StripNamespace(cat.Title))
					}
				}
			}
		}

		if len(resp.Continue) == 0 {
			return links, categories, nil
		}
		// A prop that has finished drops out of the continue object, so
		// tokens from the previous round must not be resent.
		for _, k := range continued {
			params.Del(k)
		}
		continued = continued[:0]
		for k, v := range resp.Continue {
			params.Set(k, v)
			continued = append(continued, k)
		}
	}

	c.logger.Warn("continuation limit reached", "title", title, "links", len(links))
	return links, categories, nil
}

// disambiguationOptions renders the page and collects its list entries.
func (c *Client) disambiguationOptions(ctx context.Context, title string) ([]string, error) {
	resp, err := c.get(ctx, url.Values{
		"action":    {"parse"},
		"prop":      {"text"},
		"redirects": {"1"},
		"page":      {title},
	})
	if err != nil {
		return nil, err
	}
	if resp.Parse == nil {
		return []string{}, nil
	}
	return ParseDisambiguationOptions(strings.NewReader(resp.Parse.Text))
}

// get performs one API call and decodes the response.
func (c *Client) get(ctx context.Context, params url.Values) (*apiResponse, error) {
	q := make(url.Values, len(params)+2)
	for k, v := range params {
		q[k] = v
	}
	q.Set("format", "json")
	q.Set("formatversion", "2")

	reqURL := c.apiURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("api request", "action", params.Get("action"), "params", q.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read API response: %w", err)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrAPI, out.Error.Code, out.Error.Info)
	}

	return &out, nil
}
