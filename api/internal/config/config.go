package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// AnalyzeURL is where the tutor posts images. Empty means the embedded proxy.
	AnalyzeURL     string
	Language       string
	AnalyzeTimeout time.Duration
	MaxUploadBytes int64
	SessionIdle    time.Duration
	PromptFile     string

	DefaultLLM   string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	ZhipuAPIKey  string
	ZhipuModel   string
	ZhipuBaseURL string
	OllamaURL    string
	OllamaModel  string

	TelegramBotToken string
	WebhookURL       string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// голое число трактуем как секунды
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("config: bad %s=%q, using %s", k, v, def)
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("config: bad %s=%q, using %d", k, v, def)
		return def
	}
	return n
}

// Load reads the environment, after merging a .env file from the working directory if one exists.
// Port is left empty when PORT is unset so each binary can pick its own default.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env: %v", err)
	}
	return &Config{
		Port: getEnv("PORT", ""),

		AnalyzeURL:     getEnv("ANALYZE_URL", ""),
		Language:       getEnv("TUTOR_LANGUAGE", "English"),
		AnalyzeTimeout: getDuration("ANALYZE_TIMEOUT", 180*time.Second),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_MB", 10)) << 20,
		SessionIdle:    getDuration("SESSION_IDLE", 2*time.Hour),
		PromptFile:     getEnv("PROMPT_FILE", ""),

		DefaultLLM:   strings.ToLower(getEnv("DEFAULT_LLM", "gemini")),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ZhipuAPIKey:  getEnv("ZHIPU_API_KEY", ""),
		ZhipuModel:   getEnv("ZHIPU_MODEL", "glm-4v-flash"),
		ZhipuBaseURL: getEnv("ZHIPU_BASE_URL", ""),
		OllamaURL:    getEnv("OLLAMA_URL", ""),
		OllamaModel:  getEnv("OLLAMA_MODEL", "llava"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}
}

// PortOr returns the configured port or def.
func (c *Config) PortOr(def string) string {
	if strings.TrimSpace(c.Port) == "" {
		return def
	}
	return c.Port
}
