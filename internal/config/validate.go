package config

import (
	"fmt"
	"net/url"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("database.max_conns (%d) must be >= database.min_conns (%d)",
			c.Database.MaxConns, c.Database.MinConns)
	}

	if _, err := url.ParseRequestURI(c.Analyzer.BaseURL); err != nil {
		return fmt.Errorf("analyzer.base_url: %w", err)
	}
	if c.Analyzer.Timeout <= 0 {
		return fmt.Errorf("analyzer.timeout must be > 0 (got %v)", c.Analyzer.Timeout)
	}

	if c.Ingest.ResolveRetries < 1 {
		return fmt.Errorf("ingest.resolve_retries must be >= 1 (got %d)", c.Ingest.ResolveRetries)
	}

	return nil
}
