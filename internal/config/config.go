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

// 支持的补全服务提供方。
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultArkBaseURL    = "https://ark.cn-beijing.volces.com/api/v3"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Credential CredentialConfig
	Session    SessionConfig
	Log        LogConfig
	UI         UIConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	credential, err := loadCredentialConfig(ai.Provider)
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		AI:         ai,
		Credential: credential,
		Session:    session,
		Log:        loadLogConfig(),
		UI:         loadUIConfig(),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述补全接口及固定采样参数。
type AIConfig struct {
	Provider         string
	Model            string
	BaseURL          string
	Region           string
	Timeout          time.Duration
	Temperature      float64
	TopP             float64
	MaxTokens        int
	FrequencyPenalty float64
	PresencePenalty  float64
}

// NewChatModel 使用配置和会话凭证创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context, apiKey string) (model.ChatModel, error) {
	if c.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	temperature := float32(c.Temperature)
	topP := float32(c.TopP)
	maxTokens := c.MaxTokens

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      apiKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI))
	baseURL := defaultOpenAIBaseURL
	switch provider {
	case ProviderOpenAI:
	case ProviderArk:
		baseURL = defaultArkBaseURL
	default:
		return AIConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q", provider)
	}

	temperature, err := parseFloatEnv("LLM_TEMPERATURE", 0.5)
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseFloatEnv("LLM_TOP_P", 1)
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseIntEnv("LLM_MAX_TOKENS", 1500)
	if err != nil {
		return AIConfig{}, err
	}
	if maxTokens < 1 {
		return AIConfig{}, fmt.Errorf("invalid LLM_MAX_TOKENS value %d: must be positive", maxTokens)
	}

	frequencyPenalty, err := parseFloatEnv("LLM_FREQUENCY_PENALTY", 0)
	if err != nil {
		return AIConfig{}, err
	}

	presencePenalty, err := parseFloatEnv("LLM_PRESENCE_PENALTY", 0)
	if err != nil {
		return AIConfig{}, err
	}

	// 0 表示不设置超时，与原始行为一致。
	timeout, err := parseDurationEnv("LLM_TIMEOUT", 0)
	if err != nil {
		return AIConfig{}, err
	}

	// Ark 的模型是推理接入点 ID，没有通用默认值。
	modelName := strings.TrimSpace(os.Getenv("LLM_MODEL"))
	if modelName == "" {
		if provider == ProviderArk {
			return AIConfig{}, fmt.Errorf("LLM_MODEL is required when LLM_PROVIDER=%s", ProviderArk)
		}
		modelName = "chatgpt-4o-latest"
	}

	return AIConfig{
		Provider:         provider,
		Model:            modelName,
		BaseURL:          getEnvOrDefault("LLM_BASE_URL", baseURL),
		Region:           getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Timeout:          timeout,
		Temperature:      temperature,
		TopP:             topP,
		MaxTokens:        maxTokens,
		FrequencyPenalty: frequencyPenalty,
		PresencePenalty:  presencePenalty,
	}, nil
}

// CredentialConfig 描述 API 凭证的格式校验规则。
type CredentialConfig struct {
	Prefix string
	// Length 为 0 时不校验长度。
	Length int
}

// loadCredentialConfig 按提供方给出默认规则：OpenAI 密钥为 sk- 开头的 164 位，
// Ark 密钥没有固定格式，默认只要求非空。
func loadCredentialConfig(provider string) (CredentialConfig, error) {
	defaultPrefix, defaultLength := "sk-", 164
	if provider == ProviderArk {
		defaultPrefix, defaultLength = "", 0
	}

	length, err := parseIntEnv("CREDENTIAL_LENGTH", defaultLength)
	if err != nil {
		return CredentialConfig{}, err
	}
	if length < 0 {
		return CredentialConfig{}, fmt.Errorf("invalid CREDENTIAL_LENGTH value %d", length)
	}

	prefix, ok := os.LookupEnv("CREDENTIAL_PREFIX")
	if !ok {
		prefix = defaultPrefix
	}

	return CredentialConfig{Prefix: strings.TrimSpace(prefix), Length: length}, nil
}

// SessionConfig 描述会话的空闲过期策略。
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", 30*time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}

	sweep, err := parseDurationEnv("SESSION_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}
	if sweep <= 0 {
		return SessionConfig{}, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL value %s: must be positive", sweep)
	}

	return SessionConfig{TTL: ttl, SweepInterval: sweep}, nil
}

// LogConfig 描述日志级别、格式与输出文件。
type LogConfig struct {
	Level  string
	Format string
	File   string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
		File:   strings.TrimSpace(os.Getenv("LOG_FILE")),
	}
}

// UIConfig 描述页面上的静态文案。
type UIConfig struct {
	Title        string
	SidebarLabel string
}

func loadUIConfig() UIConfig {
	return UIConfig{
		Title:        getEnvOrDefault("APP_TITLE", "Crypto Expert"),
		SidebarLabel: getEnvOrDefault("SIDEBAR_LABEL", "W3WG"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	val, err := parseOptionalFloatEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
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
