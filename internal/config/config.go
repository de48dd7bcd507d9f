package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort  int    `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Language model provider: "openai" for any OpenAI compatible API, or "ollama".
	LLMProvider   string `mapstructure:"LLM_PROVIDER"`
	LLMModel      string `mapstructure:"LLM_MODEL"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OllamaURL     string `mapstructure:"OLLAMA_URL"`

	StaticDir   string `mapstructure:"STATIC_DIR"`
	GateHour    int    `mapstructure:"GATE_HOUR"`
	GateEnforce bool   `mapstructure:"GATE_ENFORCE"`
	DevMode     bool   `mapstructure:"DEV_MODE"`

	// Terminal client settings.
	ServerURL        string `mapstructure:"SERVER_URL"`
	StorePath        string `mapstructure:"STORE_PATH"`
	TypingIntervalMS int    `mapstructure:"TYPING_INTERVAL_MS"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("LLM_PROVIDER", "openai")
	viper.SetDefault("LLM_MODEL", "gpt-4o")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OLLAMA_URL", "http://ollama:11434")
	viper.SetDefault("STATIC_DIR", "./frontend/dist")
	viper.SetDefault("GATE_HOUR", 3)
	viper.SetDefault("GATE_ENFORCE", false)
	viper.SetDefault("DEV_MODE", false)
	viper.SetDefault("SERVER_URL", "http://localhost:8000")
	viper.SetDefault("STORE_PATH", "./data/local.db")
	viper.SetDefault("TYPING_INTERVAL_MS", 40)

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
