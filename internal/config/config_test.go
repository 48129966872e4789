package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL",
		"ARK_IMAGE_MODEL", "ARK_TEMPERATURE", "ARK_MAX_TOKENS", "AI_TIMEOUT_SECONDS",
		"ARK_STREAM", "SUPABASE_URL", "SUPABASE_ANON_KEY", "REDIS_ADDR",
		"REDIS_PASSWORD", "REDIS_DB", "STORAGE_BUCKET", "CHAT_HISTORY_LIMIT",
		"CHAT_SESSION_LIST_CAP", "CHAT_SESSION_MAX_IDLE_MINUTES", "PERSONA_RECENT_CAP",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.AI.Enabled() {
		t.Error("AI should be disabled without credentials")
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled without credentials")
	}
	if cfg.Cache.Enabled() {
		t.Error("cache should be disabled without an address")
	}
	if cfg.AI.Temperature != 0.7 {
		t.Errorf("unexpected temperature %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 300 {
		t.Errorf("unexpected max tokens %d", cfg.AI.MaxTokens)
	}
	if cfg.Chat.HistoryLimit != 10 {
		t.Errorf("unexpected history limit %d", cfg.Chat.HistoryLimit)
	}
	if cfg.Chat.SessionListCap != 20 {
		t.Errorf("unexpected session list cap %d", cfg.Chat.SessionListCap)
	}
	if cfg.Chat.SessionMaxIdle != 0 {
		t.Errorf("unexpected max idle %v", cfg.Chat.SessionMaxIdle)
	}
	if cfg.Storage.Bucket != "ai-personas" {
		t.Errorf("unexpected bucket %q", cfg.Storage.Bucket)
	}
}

func TestLoadPortVariants(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "9090")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}

	t.Setenv("PORT", "127.0.0.1:9191")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9191" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not a port")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestAIEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  AIConfig
		want bool
	}{
		{"empty", AIConfig{}, false},
		{"model only", AIConfig{Model: "m"}, false},
		{"api key", AIConfig{Model: "m", APIKey: "k"}, true},
		{"ak/sk pair", AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}, true},
		{"ak without sk", AIConfig{Model: "m", AccessKey: "a"}, false},
	}
	for _, tc := range cases {
		if got := tc.cfg.Enabled(); got != tc.want {
			t.Errorf("%s: Enabled() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARK_TEMPERATURE", "0.9")
	t.Setenv("ARK_MAX_TOKENS", "512")
	t.Setenv("CHAT_SESSION_MAX_IDLE_MINUTES", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.Temperature != 0.9 {
		t.Errorf("unexpected temperature %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 512 {
		t.Errorf("unexpected max tokens %d", cfg.AI.MaxTokens)
	}
	if cfg.Chat.SessionMaxIdle != 30*time.Minute {
		t.Errorf("unexpected max idle %v", cfg.Chat.SessionMaxIdle)
	}
}

func TestLoadInvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARK_MAX_TOKENS", "many")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid ARK_MAX_TOKENS")
	}
}
