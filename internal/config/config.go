package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting of the service. Availability of remote
// collaborators is computed here, once, via the Enabled methods; nothing
// downstream reads environment variables directly.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Chat     ChatConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		AI:       ai,
		Database: loadDatabaseConfig(),
		Cache:    loadCacheConfig(),
		Storage:  loadStorageConfig(),
		Chat:     chat,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the remote completion provider.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	ImageModel  string
	BaseURL     string
	Region      string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Stream      bool
}

// Enabled reports whether the required credentials are present. This is the
// single switch between online and fully-local operation.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// ImageEnabled reports whether portrait generation can reach the provider.
func (c AIConfig) ImageEnabled() bool {
	return c.ImageModel != "" && c.APIKey != ""
}

// NewChatModel builds an Ark chat model from this configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	temperature := c.Temperature
	maxTokens := c.MaxTokens

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature := float32(0.7)
	if override, err := parseOptionalFloat32Env("ARK_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	maxTokens := 300
	if override, err := parseOptionalIntEnv("ARK_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		maxTokens = *override
	}

	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("AI_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	stream, err := parseBoolEnv("ARK_STREAM", true)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		ImageModel:  strings.TrimSpace(os.Getenv("ARK_IMAGE_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
		Stream:      stream,
	}, nil
}

// DatabaseConfig describes the Supabase relational store.
type DatabaseConfig struct {
	URL    string
	APIKey string
}

// Enabled reports whether the relational store is configured. When it is
// not, the service runs with in-memory stores only.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != "" && c.APIKey != ""
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:    strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		APIKey: strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),
	}
}

// CacheConfig describes the Redis persona cache.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether the cache is configured.
func (c CacheConfig) Enabled() bool {
	return c.Addr != ""
}

func loadCacheConfig() CacheConfig {
	db := 0
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			db = parsed
		}
	}
	return CacheConfig{
		Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Password: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		DB:       db,
	}
}

// StorageConfig describes the object-storage bucket for persona portraits.
type StorageConfig struct {
	Bucket string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Bucket: getEnvOrDefault("STORAGE_BUCKET", "ai-personas"),
	}
}

// ChatConfig carries conversation-shape limits.
type ChatConfig struct {
	HistoryLimit     int           // turns of history handed to the model
	SessionListCap   int           // sessions returned by the history listing
	SessionMaxIdle   time.Duration // 0 = reuse a user's latest session forever
	RecentPersonaCap int           // personas kept in the recent-list cache
}

func loadChatConfig() (ChatConfig, error) {
	historyLimit := 10
	if override, err := parseOptionalIntEnv("CHAT_HISTORY_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if override != nil && *override > 0 {
		historyLimit = *override
	}

	sessionListCap := 20
	if override, err := parseOptionalIntEnv("CHAT_SESSION_LIST_CAP"); err != nil {
		return ChatConfig{}, err
	} else if override != nil && *override > 0 {
		sessionListCap = *override
	}

	var maxIdle time.Duration
	if override, err := parseOptionalIntEnv("CHAT_SESSION_MAX_IDLE_MINUTES"); err != nil {
		return ChatConfig{}, err
	} else if override != nil && *override > 0 {
		maxIdle = time.Duration(*override) * time.Minute
	}

	recentCap := 20
	if override, err := parseOptionalIntEnv("PERSONA_RECENT_CAP"); err != nil {
		return ChatConfig{}, err
	} else if override != nil && *override > 0 {
		recentCap = *override
	}

	return ChatConfig{
		HistoryLimit:     historyLimit,
		SessionListCap:   sessionListCap,
		SessionMaxIdle:   maxIdle,
		RecentPersonaCap: recentCap,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
