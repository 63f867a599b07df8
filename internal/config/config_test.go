package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changing a default makes this test fail, so the change has to be intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Language is en", func(t *testing.T) {
		t.Parallel()
		if cfg.Language != "en" {
			t.Errorf("expected Language to be 'en', got '%s'", cfg.Language)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxPages is 500", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 500 {
			t.Errorf("expected MaxPages to be 500, got %d", cfg.MaxPages)
		}
	})

	t.Run("default Name is network", func(t *testing.T) {
		t.Parallel()
		if cfg.Name != "network" || cfg.InnerName() != "network-inner" {
			t.Errorf("unexpected names %q / %q", cfg.Name, cfg.InnerName())
		}
	})

	t.Run("inner pass and database are enabled", func(t *testing.T) {
		t.Parallel()
		if !cfg.Inner || !cfg.SaveToDB {
			t.Error("expected Inner and SaveToDB to be true")
		}
	})

	t.Run("default DataDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DataDir != XDGDataDir() {
			t.Errorf("expected DataDir %q, got %q", XDGDataDir(), cfg.DataDir)
		}
	})

	t.Run("networks live under the data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.NetworksDir() != filepath.Join(XDGDataDir(), "networks") {
			t.Errorf("unexpected networks dir %q", cfg.NetworksDir())
		}
	})

	t.Run("default endpoint is English Wikipedia", func(t *testing.T) {
		t.Parallel()
		if cfg.APIEndpoint() != "https://en.wikipedia.org/w/api.php" {
			t.Errorf("unexpected endpoint %q", cfg.APIEndpoint())
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"Graph theory"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"no seeds", func(c *Config) { c.Seeds = nil }, ErrNoSeeds},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"empty language", func(c *Config) { c.Language = "" }, ErrInvalidLanguage},
		{"uppercase language", func(c *Config) { c.Language = "EN" }, ErrInvalidLanguage},
		{"underscore language", func(c *Config) { c.Language = "en_US" }, ErrInvalidLanguage},
		{"host as language", func(c *Config) { c.Language = "en.wikipedia.org" }, ErrInvalidLanguage},
		{"relative API URL", func(c *Config) { c.APIURL = "/w/api.php" }, ErrInvalidAPIURL},
		{"ftp API URL", func(c *Config) { c.APIURL = "ftp://example.org/api.php" }, ErrInvalidAPIURL},
		{"tor and proxy", func(c *Config) { c.Tor, c.Proxy = true, "127.0.0.1:1080" }, ErrConflictingProxy},
		{"blank name", func(c *Config) { c.Name = "  " }, ErrEmptyName},
		{"both report formats", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
		{"negative top", func(c *Config) { c.TopCategories = -1 }, ErrInvalidTopCategories},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("unlimited crawl is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxPages = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("API URL skips language check", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Language = ""
		cfg.APIURL = "http://127.0.0.1:8080/w/api.php"
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
		if cfg.APIEndpoint() != cfg.APIURL {
			t.Errorf("expected endpoint %q, got %q", cfg.APIURL, cfg.APIEndpoint())
		}
	})

	for _, lang := range []string{"de", "ja", "pt-br", "simple", "zh-min-nan"} {
		t.Run("accepts "+lang, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			cfg.Language = lang
			if err := cfg.Validate(); err != nil {
				t.Errorf("expected %q to be valid, got %v", lang, err)
			}
		})
	}
}

// TestValidateReport tests that report validation does not need seeds.
func TestValidateReport(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if err := cfg.ValidateReport(); err != nil {
		t.Errorf("expected nil without seeds, got %v", err)
	}
	cfg.JSONReport = true
	cfg.MarkdownReport = true
	if err := cfg.ValidateReport(); !errors.Is(err, ErrConflictingReportFormats) {
		t.Errorf("expected ErrConflictingReportFormats, got %v", err)
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.wikigraph")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wikigraph")
		content := `language: de
timeout: 45s
maxPages: 0
inner: false
proxy: 127.0.0.1:1080
name: mathematik
seeds:
  - Graphentheorie
  - Topologie
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Language != "de" {
			t.Errorf("expected language de, got %q", cfg.Language)
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("expected timeout 45s, got %v", cfg.Timeout)
		}
		if cfg.MaxPages == nil || *cfg.MaxPages != 0 {
			t.Errorf("expected explicit maxPages 0, got %v", cfg.MaxPages)
		}
		if cfg.Inner == nil || *cfg.Inner {
			t.Errorf("expected explicit inner false, got %v", cfg.Inner)
		}
		if !reflect.DeepEqual(cfg.Seeds, []string{"Graphentheorie", "Topologie"}) {
			t.Errorf("unexpected seeds %v", cfg.Seeds)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wikigraph")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestApplyFile tests merging file values under command line flags.
func TestApplyFile(t *testing.T) {
	t.Parallel()

	zero := 0
	inner := false
	useTor := true
	f := &File{
		Language:  "fr",
		UserAgent: "custom/1.0",
		Timeout:   time.Minute,
		MaxPages:  &zero,
		Inner:     &inner,
		Tor:       &useTor,
		Name:      "from-file",
		Seeds:     []string{"Théorie des graphes"},
	}

	t.Run("fills unset flags", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(f, nil)

		if cfg.Language != "fr" || cfg.Timeout != time.Minute || cfg.UserAgent != "custom/1.0" {
			t.Errorf("unexpected config %+v", cfg)
		}
		if !cfg.Tor {
			t.Error("expected tor from file")
		}
		if cfg.MaxPages != 0 || cfg.Inner {
			t.Errorf("expected explicit zero values to apply, got maxPages=%d inner=%v", cfg.MaxPages, cfg.Inner)
		}
		if !reflect.DeepEqual(cfg.Seeds, f.Seeds) {
			t.Errorf("expected file seeds, got %v", cfg.Seeds)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Language = "it"
		cfg.Seeds = []string{"Teoria dei grafi"}
		cfg.ApplyFile(f, func(flag string) bool { return flag == "lang" || flag == "max-pages" })

		if cfg.Language != "it" {
			t.Errorf("expected flag language to win, got %q", cfg.Language)
		}
		if cfg.MaxPages != DefaultMaxPages {
			t.Errorf("expected flag max pages to win, got %d", cfg.MaxPages)
		}
		if cfg.Name != "from-file" {
			t.Errorf("expected file name, got %q", cfg.Name)
		}
		if !reflect.DeepEqual(cfg.Seeds, []string{"Teoria dei grafi"}) {
			t.Errorf("expected argument seeds to win, got %v", cfg.Seeds)
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil, nil)
		if !reflect.DeepEqual(cfg, NewConfig()) {
			t.Error("expected config to be unchanged")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("language: en\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds file in working directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("language: en\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Chdir(dir)

		result := FindConfigFile("")
		if !strings.HasSuffix(result, DefaultConfigFile) {
			t.Errorf("expected %s to be found, got %q", DefaultConfigFile, result)
		}
	})
}

// TestXDGDirs tests the XDG directory helpers.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if dir == "" || filepath.Base(dir) != AppName {
			t.Errorf("expected %s dir to end in %q, got %q", name, AppName, dir)
		}
	}
}
