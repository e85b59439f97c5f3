package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	AzureAPIKey     string
	AzureEndpoint   string
	AzureAPIVersion string
	AzureDeployment string
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string

	AnalyzeEngine      string
	AnswerEngine       string
	AnalyzeTemperature float64
	PromptsFile        string

	TTSLang   string
	TTSPlayer string

	CaptureDir     string
	CameraCmd      string
	CameraWarmup   time.Duration
	RotateDegrees  int
	MaxImagePixels int

	DatabaseURL      string
	TelegramBotToken string
	WebhookURL       string

	LogLevel  string
	LogFormat string
}

// Load reads the environment; a .env file in the working directory is loaded first
// when present and overrides inherited variables.
func Load() *Config {
	_ = godotenv.Overload()

	return &Config{
		Port: getEnv("PORT", "8080"),

		AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-09-01-preview"),
		AzureDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt4o"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "o1"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		AnalyzeEngine:      strings.ToLower(getEnv("ANALYZE_ENGINE", "azure")),
		AnswerEngine:       strings.ToLower(getEnv("ANSWER_ENGINE", "skip")),
		AnalyzeTemperature: getEnvFloat("ANALYZE_TEMPERATURE", 0.2),
		PromptsFile:        getEnv("PROMPTS_FILE", ""),

		TTSLang:   getEnv("TTS_LANG", "zh-TW"),
		TTSPlayer: getEnv("TTS_PLAYER", "mpg321"),

		CaptureDir:     getEnv("CAPTURE_DIR", "."),
		CameraCmd:      getEnv("CAMERA_CMD", "libcamera-still"),
		CameraWarmup:   time.Duration(getEnvInt("CAMERA_WARMUP_MS", 1000)) * time.Millisecond,
		RotateDegrees:  getEnvInt("ROTATE_DEGREES", 90),
		MaxImagePixels: getEnvInt("MAX_IMAGE_PIXELS", 18_000_000),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "pretty"),
	}
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
