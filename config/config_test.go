package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("LLMProvider = %s, want gemini", cfg.LLMProvider)
	}
	if cfg.MaxTotalTokens != 20_000_000 {
		t.Errorf("MaxTotalTokens = %d", cfg.MaxTotalTokens)
	}
	if cfg.MaxDailyTokens != 100_000 {
		t.Errorf("MaxDailyTokens = %d", cfg.MaxDailyTokens)
	}
	if cfg.ShareTTL != 48*time.Hour {
		t.Errorf("ShareTTL = %v", cfg.ShareTTL)
	}
	if cfg.ImageMaxAge != 7*24*time.Hour {
		t.Errorf("ImageMaxAge = %v", cfg.ImageMaxAge)
	}
	if len(cfg.GeminiModels) != 3 || cfg.GeminiModels[0] != "gemini-2.5-flash" {
		t.Errorf("GeminiModels = %v", cfg.GeminiModels)
	}
}

func TestProviderSelection(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "zhipu")
	t.Setenv("ZHIPU_API_KEY", "zk")
	t.Setenv("GEMINI_API_KEY", "gk")

	cfg := Load()
	if cfg.APIKey() != "zk" {
		t.Errorf("APIKey = %s, want the zhipu key", cfg.APIKey())
	}
	if cfg.Models()[0] != "glm-4.5v" {
		t.Errorf("Models = %v", cfg.Models())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MAX_DAILY_TOKENS", "5000")
	t.Setenv("FALLBACK_BACKOFF", "250ms")
	t.Setenv("GEMINI_MODELS", "a, b ,c")

	cfg := Load()
	if cfg.MaxDailyTokens != 5000 {
		t.Errorf("MaxDailyTokens = %d", cfg.MaxDailyTokens)
	}
	if cfg.FallbackBackoff != 250*time.Millisecond {
		t.Errorf("FallbackBackoff = %v", cfg.FallbackBackoff)
	}
	want := []string{"a", "b", "c"}
	if len(cfg.GeminiModels) != 3 {
		t.Fatalf("GeminiModels = %v", cfg.GeminiModels)
	}
	for i, m := range want {
		if cfg.GeminiModels[i] != m {
			t.Errorf("model %d = %q, want %q", i, cfg.GeminiModels[i], m)
		}
	}
}
