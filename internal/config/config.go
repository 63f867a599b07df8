package config

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/nao1215/wikigraph/internal/tor"
	"github.com/nao1215/wikigraph/internal/wiki"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wikigraph"

	// DefaultLanguage is the Wikipedia edition crawled when none is given.
	DefaultLanguage = wiki.DefaultLanguage

	// DefaultTimeout bounds a single API request. Wikimedia answers quickly,
	// so 30 seconds only trips on a stalled connection.
	DefaultTimeout = wiki.DefaultTimeout

	// DefaultMaxPages is the number of resolved pages an outer crawl stops at.
	// Link fan-out grows fast; 500 pages already yields tens of thousands of edges.
	DefaultMaxPages = 500

	// DefaultUserAgent identifies wikigraph in API requests. Wikimedia's
	// User-Agent policy asks for a contact URL.
	DefaultUserAgent = wiki.DefaultUserAgent

	// DefaultTorStartupTimeout bounds the bootstrap of the embedded Tor daemon.
	DefaultTorStartupTimeout = tor.DefaultStartupTimeout

	// DefaultName is the name the outer network is saved under.
	DefaultName = "network"

	// DefaultTopCategories is how many categories a community report lists.
	DefaultTopCategories = 10

	// InnerSuffix is appended to Name for the inner network.
	InnerSuffix = "-inner"

	// NetworksSubdir is the directory under DataDir holding saved networks.
	NetworksSubdir = "networks"
)

// Config holds all configuration options for wikigraph.
// It is populated from CLI flags and the optional config file and passed
// through the application rather than kept in global state.
type Config struct {
	// Language selects <lang>.wikipedia.org. Ignored when APIURL is set.
	Language string

	// APIURL is an explicit api.php endpoint, for mirrors and other MediaWiki sites.
	APIURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxPages stops an outer crawl after this many resolved pages.
	// Zero means unlimited.
	MaxPages int

	// UserAgent is sent with every API request.
	UserAgent string

	// Proxy is an optional SOCKS5 proxy address in "host:port" form.
	Proxy string

	// Tor starts an embedded Tor daemon and uses it as the proxy.
	Tor bool

	// TorStartupTimeout bounds the embedded daemon's bootstrap.
	TorStartupTimeout time.Duration

	// DataDir holds the saved networks and the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/wikigraph on Linux).
	DataDir string

	// Name is the key the outer network is saved under. The inner network
	// is saved under Name + InnerSuffix.
	Name string

	// Inner runs the inner pass over the outer node set after the crawl.
	Inner bool

	// SaveToDB stores sessions in the SQLite database in addition to the files.
	SaveToDB bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches the log handler to JSON.
	JSONLog bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .wikigraph is searched for in the current and home directories.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is written instead of stdout when set.
	ReportFile string

	// TopCategories limits the categories listed per community. Zero lists all.
	TopCategories int

	// Seeds are the titles the outer crawl starts from.
	Seeds []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Language:          DefaultLanguage,
		Timeout:           DefaultTimeout,
		MaxPages:          DefaultMaxPages,
		UserAgent:         DefaultUserAgent,
		DataDir:           XDGDataDir(),
		Name:              DefaultName,
		Inner:             true,
		SaveToDB:          true,
		TorStartupTimeout: DefaultTorStartupTimeout,
		TopCategories:     DefaultTopCategories,
	}
}

// XDGDataDir returns the XDG data directory for wikigraph.
// On Linux: ~/.local/share/wikigraph
// On macOS: ~/Library/Application Support/wikigraph
// On Windows: %LOCALAPPDATA%\wikigraph
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikigraph.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for wikigraph.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// APIEndpoint returns the api.php URL the client should talk to.
func (c *Config) APIEndpoint() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	return wiki.APIURL(c.Language)
}

// NetworksDir returns the directory of the persist store.
func (c *Config) NetworksDir() string {
	return filepath.Join(c.DataDir, NetworksSubdir)
}

// InnerName returns the key of the inner network.
func (c *Config) InnerName() string {
	return c.Name + InnerSuffix
}

// Validate checks the crawl configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.Tor && c.Proxy != "" {
		return ErrConflictingProxy
	}

	if c.APIURL != "" {
		if err := validateAPIURL(c.APIURL); err != nil {
			return err
		}
	} else if err := validateLanguage(c.Language); err != nil {
		return err
	}

	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}

	return c.ValidateReport()
}

// ValidateReport checks only the report options. The bags command uses it
// since it neither crawls nor needs seeds.
func (c *Config) ValidateReport() error {
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.TopCategories < 0 {
		return ErrInvalidTopCategories
	}
	return nil
}

// legacyEditions are Wikipedia subdomains that are not valid BCP 47 tags.
var legacyEditions = map[string]bool{
	"simple":       true,
	"be-tarask":    true,
	"zh-classical": true,
	"zh-min-nan":   true,
	"zh-yue":       true,
	"roa-rup":      true,
	"roa-tara":     true,
	"nds-nl":       true,
	"map-bms":      true,
	"bat-smg":      true,
	"fiu-vro":      true,
	"cbk-zam":      true,
}

// validateLanguage accepts lowercase BCP 47 codes and the legacy edition
// names. A ValueError (well-formed but unknown subtag) is not fatal.
func validateLanguage(lang string) error {
	if lang == "" {
		return ErrInvalidLanguage
	}
	if legacyEditions[lang] {
		return nil
	}
	for _, r := range lang {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return ErrInvalidLanguage
		}
	}
	if _, err := language.Parse(lang); err != nil {
		var valueErr language.ValueError
		if !errors.As(err, &valueErr) {
			return ErrInvalidLanguage
		}
	}
	return nil
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidAPIURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidAPIURL
	}
	return nil
}
