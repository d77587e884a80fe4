package storegate

import (
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Secret = "test-secret"
	return cfg
}

func TestDefaultConfigRequiresSecret(t *testing.T) {
	if err := DefaultConfig().Validate(); err == nil {
		t.Fatal("default config must not validate without a secret")
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty secret", func(c *Config) { c.Secret = "" }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"negative ttl", func(c *Config) { c.SessionTTL = -time.Hour }},
		{"rate limit without budget", func(c *Config) { c.RateLimit.MaxLoginAttempts = 0 }},
		{"rate limit without cooldown", func(c *Config) { c.RateLimit.LoginCooldown = 0 }},
		{"negative audit buffer", func(c *Config) { c.Audit.BufferSize = -1 }},
		{"bad scrypt params", func(c *Config) { c.Password.N = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigDisabledSubsystemsSkipChecks(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: false}
	cfg.Audit = AuditConfig{Enabled: false, BufferSize: -1}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled subsystems must not be validated: %v", err)
	}
}

func TestDefaultSessionTTL(t *testing.T) {
	if got := DefaultConfig().SessionTTL; got != 7*24*time.Hour {
		t.Fatalf("default session ttl = %v, want 168h", got)
	}
}
