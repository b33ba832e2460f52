package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Generator.Enabled() && c.Generator.Model == "" {
		return fmt.Errorf("generator.model is required when generator.api_key is set")
	}

	if err := c.Supply.validate(); err != nil {
		return fmt.Errorf("supply: %w", err)
	}
	if err := c.Puzzle.validate(); err != nil {
		return fmt.Errorf("puzzle: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if c.RateLimit.StartsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.starts_per_minute must be > 0 (got %d)", c.RateLimit.StartsPerMinute)
	}

	return nil
}

func (s *SupplyConfig) validate() error {
	if s.PrefetchConcurrency <= 0 {
		return fmt.Errorf("prefetch_concurrency must be > 0 (got %d)", s.PrefetchConcurrency)
	}
	if s.SharedCacheSize <= 0 {
		return fmt.Errorf("shared_cache_size must be > 0 (got %d)", s.SharedCacheSize)
	}
	if s.ResolveTimeout <= 0 {
		return fmt.Errorf("resolve_timeout must be > 0 (got %s)", s.ResolveTimeout)
	}
	return nil
}

func (p *PuzzleConfig) validate() error {
	if p.HintCap < 0 {
		return fmt.Errorf("hint_cap must be >= 0 (got %d)", p.HintCap)
	}
	if p.PrefillThreshold < 1 {
		return fmt.Errorf("prefill_threshold must be >= 1 (got %d)", p.PrefillThreshold)
	}
	if p.PrefillRatio <= 0 || p.PrefillRatio > 1 {
		return fmt.Errorf("prefill_ratio must be in (0, 1] (got %v)", p.PrefillRatio)
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.TTL <= 0 {
		return fmt.Errorf("ttl must be > 0 (got %s)", s.TTL)
	}
	if s.MaxItems <= 0 {
		return fmt.Errorf("max_items must be > 0 (got %d)", s.MaxItems)
	}
	return nil
}
