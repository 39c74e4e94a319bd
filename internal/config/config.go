package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is everything the binaries read from the environment.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	AI

	R2Endpoint      string `env:"R2_ENDPOINT"`
	R2AccessKey     string `env:"R2_ACCESS_KEY"`
	R2SecretKey     string `env:"R2_SECRET_KEY"`
	R2Bucket        string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL string `env:"R2_PUBLIC_BASE_URL"`

	OCRPollInterval time.Duration `env:"OCR_POLL_INTERVAL" envDefault:"2s"`
	RunOCRWorker    bool          `env:"RUN_OCR_WORKER" envDefault:"true"`
}

// AI is the subset the offline label CLI needs.
type AI struct {
	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4"`
	OCRBinary    string `env:"OCR_BINARY" envDefault:"tesseract"`
}

// Load reads .env outside production, then parses the environment.
func Load() (*Config, error) {
	loadDotEnv()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.AI.normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadAI parses only the AI and OCR settings.
func LoadAI() (*AI, error) {
	loadDotEnv()

	cfg, err := env.ParseAs[AI]()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
}

func (a *AI) normalize() error {
	a.LLMProvider = strings.ToLower(strings.TrimSpace(a.LLMProvider))
	switch a.LLMProvider {
	case "gemini", "openai":
		return nil
	default:
		return fmt.Errorf("load config: unsupported LLM_PROVIDER %q", a.LLMProvider)
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// StorageConfigured reports whether every R2 setting is present.
func (c *Config) StorageConfigured() bool {
	return c.R2Endpoint != "" &&
		c.R2AccessKey != "" &&
		c.R2SecretKey != "" &&
		c.R2Bucket != ""
}
