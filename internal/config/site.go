package config

// SiteConfig holds per-site overrides for a single hostname.
// Anything left at its zero value falls back to the defaults section of
// the config file, then to the global Config.
type SiteConfig struct {
	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page limit for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// RequestsPerSecond overrides the global throttle for this site.
	// If zero, the global rate is used.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`

	// IgnorePatterns are URL path substrings to skip during crawling,
	// in addition to the built-in asset and admin-path skip lists.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// File represents the structure of the .seocli configuration file.
type File struct {
	// Sites maps hostnames to their per-site configurations.
	// Keys are bare hostnames without scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains the site configuration applied to every site
	// unless overridden in its specific entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a hostname, merging the
// site-specific entry over the defaults section.
func (cf *File) GetSiteConfig(hostname string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[hostname]; ok {
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.RequestsPerSecond != 0 {
			result.RequestsPerSecond = siteConfig.RequestsPerSecond
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
	}

	return result
}
