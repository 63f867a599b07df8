package config

import "time"

// File represents the structure of the .wikigraph configuration file.
// Pointer fields distinguish "not set" from an explicit zero or false.
type File struct {
	// Language selects <lang>.wikipedia.org.
	Language string `yaml:"language,omitempty"`

	// APIURL overrides the endpoint derived from Language.
	APIURL string `yaml:"apiURL,omitempty"`

	// UserAgent replaces the default User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Timeout is the per-request timeout, e.g. "45s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxPages limits the outer crawl. 0 means unlimited.
	MaxPages *int `yaml:"maxPages,omitempty"`

	// Inner toggles the inner pass.
	Inner *bool `yaml:"inner,omitempty"`

	// Proxy is a SOCKS5 proxy address such as 127.0.0.1:1080.
	Proxy string `yaml:"proxy,omitempty"`

	// Tor routes requests through an embedded Tor daemon.
	Tor *bool `yaml:"tor,omitempty"`

	// DataDir replaces the XDG data directory.
	DataDir string `yaml:"dataDir,omitempty"`

	// Name is the key the outer network is saved under.
	Name string `yaml:"name,omitempty"`

	// Seeds are used when no titles are given on the command line.
	Seeds []string `yaml:"seeds,omitempty"`
}

// ApplyFile copies the values set in f into c. Fields whose flag was set
// on the command line keep their flag value; isSet reports that by flag name.
// A nil isSet treats every flag as unset.
func (c *Config) ApplyFile(f *File, isSet func(flag string) bool) {
	if f == nil {
		return
	}
	if isSet == nil {
		isSet = func(string) bool { return false }
	}

	if f.Language != "" && !isSet("lang") {
		c.Language = f.Language
	}
	if f.APIURL != "" && !isSet("api-url") {
		c.APIURL = f.APIURL
	}
	if f.UserAgent != "" && !isSet("user-agent") {
		c.UserAgent = f.UserAgent
	}
	if f.Timeout != 0 && !isSet("timeout") {
		c.Timeout = f.Timeout
	}
	if f.MaxPages != nil && !isSet("max-pages") {
		c.MaxPages = *f.MaxPages
	}
	if f.Inner != nil && !isSet("inner") {
		c.Inner = *f.Inner
	}
	if f.Proxy != "" && !isSet("proxy") {
		c.Proxy = f.Proxy
	}
	if f.Tor != nil && !isSet("tor") {
		c.Tor = *f.Tor
	}
	if f.DataDir != "" && !isSet("data-dir") {
		c.DataDir = f.DataDir
	}
	if f.Name != "" && !isSet("name") {
		c.Name = f.Name
	}
	if len(f.Seeds) > 0 && len(c.Seeds) == 0 {
		c.Seeds = append([]string(nil), f.Seeds...)
	}
}
