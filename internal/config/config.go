package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Speech    SpeechConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Site      SiteConfig
}

// LoadDotEnv 加载 .env 文件到进程环境变量，文件不存在时返回错误由调用方决定是否忽略。
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load 从环境变量（以及可选的 CONFIG_FILE）加载配置。
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return loadFrom(v)
}

func loadFrom(v *viper.Viper) (*Config, error) {
	server, err := loadServerConfig(v)
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig(v)
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig(v)
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig(v)
	if err != nil {
		return nil, err
	}

	logging, err := loadLoggingConfig(v)
	if err != nil {
		return nil, err
	}

	metrics, err := loadMetricsConfig(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Speech:    speech,
		RateLimit: rateLimit,
		Logging:   logging,
		Metrics:   metrics,
		Site:      SiteConfig{ContractAddress: getString(v, "CONTRACT_ADDRESS")},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3")
	v.SetDefault("ARK_REGION", "cn-beijing")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("AI_REQUEST_TIMEOUT", "30s")

	v.SetDefault("SPEECH_TTS_VOICE", "zh_male_M392_conversation_wvae_bigtts")
	v.SetDefault("SPEECH_TTS_VOICE_EN", "en_male_glen_emo_v2_mars_bigtts")
	v.SetDefault("SPEECH_TIMEOUT", 30)

	v.SetDefault("RATE_LIMIT_COOLDOWN", "5s")
	v.SetDefault("RATE_LIMIT_STORE", RateLimitStoreMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CHAT_GLOBAL_RPS", 0)
	v.SetDefault("CHAT_GLOBAL_BURST", 20)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOG_FILE", "logs/judge-companion.log")
	v.SetDefault("LOG_FILE_MAX_SIZE", 100)
	v.SetDefault("LOG_FILE_MAX_BACKUPS", 3)
	v.SetDefault("LOG_FILE_MAX_AGE", 28)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_ADDR", ":9090")

	v.SetDefault("CONTRACT_ADDRESS", "0x445d4785ff7d39e95de51c3b06878e0b2bf04444")
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(v *viper.Viper) (ServerConfig, error) {
	port := getString(v, "PORT")

	var origins []string
	for _, origin := range strings.Split(getString(v, "CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value %q: %w", port, err)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// AIConfig 描述各个大模型供应商以及单次调用超时。
type AIConfig struct {
	OpenAI         OpenAIConfig
	Ark            ArkConfig
	Gemini         GeminiConfig
	RequestTimeout time.Duration
}

// Enabled 表示至少配置了一个供应商。
func (c AIConfig) Enabled() bool {
	return c.OpenAI.Enabled() || c.Ark.Enabled() || c.Gemini.Enabled()
}

// OpenAIConfig 描述 OpenAI 兼容接口配置。
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled 表示是否提供了 API Key。
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// ArkConfig 描述火山方舟模型配置。
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。采样参数由每次调用单独指定。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:   c.BaseURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
	}

	return ark.NewChatModel(ctx, cfg)
}

// GeminiConfig 描述 Gemini 配置。
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Enabled 表示是否提供了 API Key。
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

func loadAIConfig(v *viper.Viper) (AIConfig, error) {
	timeout, err := parseDuration(v, "AI_REQUEST_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}
	if timeout <= 0 {
		return AIConfig{}, fmt.Errorf("AI_REQUEST_TIMEOUT must be positive, got %s", timeout)
	}

	return AIConfig{
		OpenAI: OpenAIConfig{
			APIKey:  getString(v, "OPENAI_API_KEY"),
			BaseURL: getString(v, "OPENAI_BASE_URL"),
			Model:   getString(v, "OPENAI_MODEL"),
		},
		Ark: ArkConfig{
			APIKey:    getString(v, "ARK_API_KEY"),
			AccessKey: getString(v, "ARK_ACCESS_KEY"),
			SecretKey: getString(v, "ARK_SECRET_KEY"),
			Model:     getString(v, "ARK_MODEL"),
			BaseURL:   getString(v, "ARK_BASE_URL"),
			Region:    getString(v, "ARK_REGION"),
		},
		Gemini: GeminiConfig{
			APIKey: getString(v, "GEMINI_API_KEY"),
			Model:  getString(v, "GEMINI_MODEL"),
		},
		RequestTimeout: timeout,
	}, nil
}

// SpeechConfig 描述语音合成相关配置
type SpeechConfig struct {
	AppID       string
	AccessToken string
	APIKey      string
	Endpoint    string
	TTSVoice    string
	TTSVoiceEN  string
	TTSSpeed    float32
	TTSVolume   float32
	Gzip        bool
	Timeout     int
	Enabled     bool
}

func loadSpeechConfig(v *viper.Viper) (SpeechConfig, error) {
	timeout, err := parseInt(v, "SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}

	// 解析TTS速度和音量
	ttsSpeed, err := parseFloat32(v, "SPEECH_TTS_SPEED", 1.0)
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsVolume, err := parseFloat32(v, "SPEECH_TTS_VOLUME", 1.0)
	if err != nil {
		return SpeechConfig{}, err
	}

	gzip, err := parseBool(v, "SPEECH_TTS_GZIP")
	if err != nil {
		return SpeechConfig{}, err
	}

	appID := getString(v, "SPEECH_APP_ID")
	apiKey := getString(v, "SPEECH_API_KEY")
	accessToken := getString(v, "SPEECH_ACCESS_TOKEN")
	if accessToken == "" {
		accessToken = apiKey
	}

	return SpeechConfig{
		AppID:       appID,
		AccessToken: accessToken,
		APIKey:      apiKey,
		Endpoint:    getString(v, "SPEECH_BASE_URL"),
		TTSVoice:    getString(v, "SPEECH_TTS_VOICE"),
		TTSVoiceEN:  getString(v, "SPEECH_TTS_VOICE_EN"),
		TTSSpeed:    ttsSpeed,
		TTSVolume:   ttsVolume,
		Gzip:        gzip,
		Timeout:     timeout,
		Enabled:     appID != "" && accessToken != "",
	}, nil
}

// 冷却存储后端
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// RateLimitConfig 描述会话冷却与全局限流配置。
type RateLimitConfig struct {
	Cooldown    time.Duration
	Store       string
	Redis       RedisConfig
	GlobalRPS   float64
	GlobalBurst int
}

// RedisConfig 描述 Redis 连接。
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GlobalEnabled 表示是否启用全局吞吐保护。
func (c RateLimitConfig) GlobalEnabled() bool {
	return c.GlobalRPS > 0
}

func loadRateLimitConfig(v *viper.Viper) (RateLimitConfig, error) {
	cooldown, err := parseDuration(v, "RATE_LIMIT_COOLDOWN")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if cooldown <= 0 {
		return RateLimitConfig{}, fmt.Errorf("RATE_LIMIT_COOLDOWN must be positive, got %s", cooldown)
	}

	store := strings.ToLower(getString(v, "RATE_LIMIT_STORE"))
	if store != RateLimitStoreMemory && store != RateLimitStoreRedis {
		return RateLimitConfig{}, fmt.Errorf("invalid RATE_LIMIT_STORE value %q: want memory or redis", store)
	}

	db, err := parseInt(v, "REDIS_DB")
	if err != nil {
		return RateLimitConfig{}, err
	}

	rps, err := parseFloat(v, "CHAT_GLOBAL_RPS")
	if err != nil {
		return RateLimitConfig{}, err
	}
	burst, err := parseInt(v, "CHAT_GLOBAL_BURST")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if burst < 1 {
		burst = 1
	}

	return RateLimitConfig{
		Cooldown: cooldown,
		Store:    store,
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR"),
			Password: getString(v, "REDIS_PASSWORD"),
			DB:       db,
		},
		GlobalRPS:   rps,
		GlobalBurst: burst,
	}, nil
}

// LoggingConfig 描述日志输出。
type LoggingConfig struct {
	Level  string
	Format string
	Output string
	File   FileConfig
}

// FileConfig 描述滚动日志文件。
type FileConfig struct {
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

func loadLoggingConfig(v *viper.Viper) (LoggingConfig, error) {
	maxSize, err := parseInt(v, "LOG_FILE_MAX_SIZE")
	if err != nil {
		return LoggingConfig{}, err
	}
	maxBackups, err := parseInt(v, "LOG_FILE_MAX_BACKUPS")
	if err != nil {
		return LoggingConfig{}, err
	}
	maxAge, err := parseInt(v, "LOG_FILE_MAX_AGE")
	if err != nil {
		return LoggingConfig{}, err
	}

	return LoggingConfig{
		Level:  strings.ToLower(getString(v, "LOG_LEVEL")),
		Format: strings.ToLower(getString(v, "LOG_FORMAT")),
		Output: strings.ToLower(getString(v, "LOG_OUTPUT")),
		File: FileConfig{
			Path:       getString(v, "LOG_FILE"),
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     maxAge,
		},
	}, nil
}

// MetricsConfig 描述 prometheus 指标服务。
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func loadMetricsConfig(v *viper.Viper) (MetricsConfig, error) {
	enabled, err := parseBool(v, "METRICS_ENABLED")
	if err != nil {
		return MetricsConfig{}, err
	}
	return MetricsConfig{Enabled: enabled, Addr: getString(v, "METRICS_ADDR")}, nil
}

// SiteConfig 描述前端展示的静态站点信息。
type SiteConfig struct {
	ContractAddress string
}

func getString(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := getString(v, key)
	if raw == "" {
		return false, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseInt(v *viper.Viper, key string) (int, error) {
	raw := getString(v, key)
	if raw == "" {
		return 0, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseFloat(v *viper.Viper, key string) (float64, error) {
	raw := getString(v, key)
	if raw == "" {
		return 0, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseFloat32(v *viper.Viper, key string, defaultValue float32) (float32, error) {
	raw := getString(v, key)
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return float32(val), nil
}

// parseDuration 接受 Go duration 字符串，纯数字按毫秒处理。
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := getString(v, key)
	if raw == "" {
		return 0, nil
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
