package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for footwork. Everything is loaded once
// at startup; nothing here changes during a run.
type Config struct {
	PollingInterval time.Duration
	HTTPTimeout     time.Duration
	DBPath          string
	ReportPath      string

	Filters      FilterConfig
	SearchAPI    SearchAPIConfig
	Workday      []WorkdayCompany
	CareerSites  []CareerSiteConfig
	HTMLPages    []HTMLPageConfig
	BoardFeeds   []BoardFeedConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
}

// FilterConfig holds the title keyword sets.
type FilterConfig struct {
	EntryLevelKeywords       []string
	ExcludeSeniorityKeywords []string
	ExcludeRetailKeywords    []string
	ExtraKeywords            []string
	MaxAgeDays               int
}

// SearchAPIConfig drives the JSearch adapter.
type SearchAPIConfig struct {
	APIKey        string   `yaml:"api_key"`
	Queries       []string `yaml:"queries"`
	PagesPerQuery int      `yaml:"pages_per_query"`
}

// WorkdayCompany describes one Workday-hosted employer.
type WorkdayCompany struct {
	Name        string `yaml:"name"`
	Tenant      string `yaml:"tenant"`
	Subdomain   string `yaml:"subdomain"`
	CareerSite  string `yaml:"career_site"`
	MaxPostings int    `yaml:"max_postings"`
	Enabled     *bool  `yaml:"enabled"`
}

// CareerSiteConfig describes one employer's custom JSON career API.
type CareerSiteConfig struct {
	Company     string   `yaml:"company"`
	Slug        string   `yaml:"slug"`
	Endpoint    string   `yaml:"endpoint"`
	MaxPages    int      `yaml:"max_pages"`
	ListFields  []string `yaml:"list_fields"`
	IDField     string   `yaml:"id_field"`
	TitleField  string   `yaml:"title_field"`
	LocField    string   `yaml:"location_field"`
	URLField    string   `yaml:"url_field"`
	DateField   string   `yaml:"date_field"`
	URLTemplate string   `yaml:"url_template"`
	Enabled     *bool    `yaml:"enabled"`
}

// HTMLPageConfig describes one HTML-only career listing page.
type HTMLPageConfig struct {
	Company          string `yaml:"company"`
	Slug             string `yaml:"slug"`
	URL              string `yaml:"url"`
	CardSelector     string `yaml:"card_selector"`
	TitleSelector    string `yaml:"title_selector"`
	LinkSelector     string `yaml:"link_selector"`
	LocationSelector string `yaml:"location_selector"`
	Enabled          *bool  `yaml:"enabled"`
}

// BoardFeedConfig describes one sports-industry job-board feed.
type BoardFeedConfig struct {
	Name    string `yaml:"name"`
	Slug    string `yaml:"slug"`
	FeedURL string `yaml:"feed_url"`
	Enabled *bool  `yaml:"enabled"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// RateLimitConfig controls the shared per-host limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Default entry-level keyword sets, used when the config leaves them empty.
// Matching is substring-based, so multi-word phrases work as written.
var (
	defaultEntryLevelKeywords = []string{
		"intern", "internship", "entry level", "entry-level", "graduate",
		"junior", "trainee", "coordinator", "assistant", "analyst", "associate",
	}
	defaultExcludeSeniorityKeywords = []string{
		"senior", "sr.", "sr ", "lead", "principal", "staff",
		"director", "head of", "vp", "vice president", "chief", "manager ii",
	}
	defaultExcludeRetailKeywords = []string{
		"sales associate", "retail", "store", "cashier", "stock",
		"keyholder", "key holder", "seasonal", "part-time", "part time",
	}
)

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as
// strings).
type rawConfig struct {
	PollingInterval string             `yaml:"polling_interval"`
	HTTPTimeout     string             `yaml:"http_timeout"`
	DBPath          string             `yaml:"db_path"`
	ReportPath      string             `yaml:"report_path"`
	Filters         rawFilterConfig    `yaml:"filters"`
	SearchAPI       SearchAPIConfig    `yaml:"search_api"`
	Workday         []WorkdayCompany   `yaml:"workday_companies"`
	CareerSites     []CareerSiteConfig `yaml:"career_sites"`
	HTMLPages       []HTMLPageConfig   `yaml:"html_pages"`
	BoardFeeds      []BoardFeedConfig  `yaml:"board_feeds"`
	Notification    NotificationConfig `yaml:"notification"`
	RateLimit       RateLimitConfig    `yaml:"rate_limit"`
}

type rawFilterConfig struct {
	EntryLevelKeywords       []string `yaml:"entry_level_keywords"`
	ExcludeSeniorityKeywords []string `yaml:"exclude_seniority_keywords"`
	ExcludeRetailKeywords    []string `yaml:"exclude_retail_keywords"`
	ExtraKeywords            []string `yaml:"extra_keywords"`
	MaxAgeDays               *int     `yaml:"max_age_days"`
}

// Load reads and parses the YAML config file at path, expands environment
// variables, applies defaults, validates, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 30 * time.Minute
	if raw.PollingInterval != "" {
		interval, err = time.ParseDuration(raw.PollingInterval)
		if err != nil {
			return nil, fmt.Errorf("parse polling_interval %q: %w", raw.PollingInterval, err)
		}
	}

	timeout := 15 * time.Second
	if raw.HTTPTimeout != "" {
		timeout, err = time.ParseDuration(raw.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse http_timeout %q: %w", raw.HTTPTimeout, err)
		}
	}

	maxAgeDays := 1
	if raw.Filters.MaxAgeDays != nil {
		maxAgeDays = *raw.Filters.MaxAgeDays
	}

	cfg := &Config{
		PollingInterval: interval,
		HTTPTimeout:     timeout,
		DBPath:          defaultString(raw.DBPath, "footwork.db"),
		ReportPath:      defaultString(raw.ReportPath, "dashboard.html"),
		Filters: FilterConfig{
			EntryLevelKeywords:       defaultKeywords(raw.Filters.EntryLevelKeywords, defaultEntryLevelKeywords),
			ExcludeSeniorityKeywords: defaultKeywords(raw.Filters.ExcludeSeniorityKeywords, defaultExcludeSeniorityKeywords),
			ExcludeRetailKeywords:    defaultKeywords(raw.Filters.ExcludeRetailKeywords, defaultExcludeRetailKeywords),
			ExtraKeywords:            raw.Filters.ExtraKeywords,
			MaxAgeDays:               maxAgeDays,
		},
		SearchAPI:    raw.SearchAPI,
		Workday:      enabledOnly(raw.Workday, func(c WorkdayCompany) *bool { return c.Enabled }),
		CareerSites:  enabledOnly(raw.CareerSites, func(c CareerSiteConfig) *bool { return c.Enabled }),
		HTMLPages:    enabledOnly(raw.HTMLPages, func(c HTMLPageConfig) *bool { return c.Enabled }),
		BoardFeeds:   enabledOnly(raw.BoardFeeds, func(c BoardFeedConfig) *bool { return c.Enabled }),
		Notification: raw.Notification,
		RateLimit:    raw.RateLimit,
	}

	if cfg.SearchAPI.PagesPerQuery < 1 {
		cfg.SearchAPI.PagesPerQuery = 1
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit.RequestsPerSecond = 1
	}
	if cfg.RateLimit.Burst < 1 {
		cfg.RateLimit.Burst = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SourceCount returns how many sources are configured, counting the search
// API as one when it has any queries.
func (c *Config) SourceCount() int {
	n := len(c.Workday) + len(c.CareerSites) + len(c.HTMLPages) + len(c.BoardFeeds)
	if len(c.SearchAPI.Queries) > 0 {
		n++
	}
	return n
}

func validate(cfg *Config) error {
	if cfg.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %v", cfg.HTTPTimeout)
	}
	if cfg.Filters.MaxAgeDays < 0 {
		return fmt.Errorf("filters.max_age_days must not be negative, got %d", cfg.Filters.MaxAgeDays)
	}
	if cfg.SourceCount() == 0 {
		return fmt.Errorf("no sources configured: add search_api queries, workday_companies, career_sites, html_pages, or board_feeds")
	}

	for _, w := range cfg.Workday {
		if w.Tenant == "" || w.Subdomain == "" {
			return fmt.Errorf("workday company %q needs both tenant and subdomain", w.Name)
		}
	}
	for _, cs := range cfg.CareerSites {
		if cs.Slug == "" || cs.Endpoint == "" || cs.IDField == "" || cs.TitleField == "" {
			return fmt.Errorf("career site %q needs slug, endpoint, id_field, and title_field", cs.Company)
		}
	}
	for _, hp := range cfg.HTMLPages {
		if hp.Slug == "" || hp.URL == "" || hp.CardSelector == "" || hp.TitleSelector == "" || hp.LinkSelector == "" {
			return fmt.Errorf("html page %q needs slug, url, and card/title/link selectors", hp.Company)
		}
	}
	for _, bf := range cfg.BoardFeeds {
		if bf.Slug == "" || bf.FeedURL == "" {
			return fmt.Errorf("board feed %q needs slug and feed_url", bf.Name)
		}
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	return nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func defaultKeywords(in, fallback []string) []string {
	if len(in) == 0 {
		return fallback
	}
	return in
}

// enabledOnly keeps entries whose enabled flag is unset or true.
func enabledOnly[T any](in []T, enabled func(T) *bool) []T {
	var out []T
	for _, item := range in {
		if e := enabled(item); e != nil && !*e {
			continue
		}
		out = append(out, item)
	}
	return out
}
