package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the configuration needed for the given mode: "serve",
// "sync", or "migrate". Problems are collected so one run reports them all.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkStore := func() {
		switch c.Store.Driver {
		case "postgres", "sqlite":
		default:
			problems = append(problems, `store.driver must be "postgres" or "sqlite"`)
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	}

	switch mode {
	case "serve":
		checkStore()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Filter.ValueDelayMS < 0 {
			problems = append(problems, "filter.value_delay_ms must be >= 0")
		}
		if c.Filter.CategoryDelayMS < 0 {
			problems = append(problems, "filter.category_delay_ms must be >= 0")
		}
	case "sync":
		checkStore()
		if c.Sync.MaxRetries < 1 || c.Sync.MaxRetries > 10 {
			problems = append(problems, "sync.max_retries must be between 1 and 10")
		}
		if c.Sync.TimeoutSecs <= 0 {
			problems = append(problems, "sync.timeout_secs must be > 0")
		}
	case "migrate":
		if c.Store.Driver != "postgres" {
			problems = append(problems, "migrate requires store.driver postgres")
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
