package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"after3am/backend/internal/api"
	"after3am/backend/internal/config"
	"after3am/backend/internal/llm"
	"after3am/backend/internal/service"
	"after3am/backend/internal/timegate"
)

const (
	shutdownTimeout = 10 * time.Second
	ollamaRetry     = 3 * time.Second
)

// App holds the wired chat server.
type App struct {
	Config   *config.Config
	Provider llm.Provider
	Server   *http.Server
}

// NewProviderRegistry registers every supported language model backend.
func NewProviderRegistry(cfg *config.Config) *llm.Registry {
	registry := llm.NewRegistry()
	registry.Register("openai", func() (llm.Provider, error) {
		if cfg.OpenAIBaseURL == "" {
			return nil, errors.New("OPENAI_BASE_URL is not set")
		}
		return llm.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey), nil
	})
	registry.Register("ollama", func() (llm.Provider, error) {
		if cfg.OllamaURL == "" {
			return nil, errors.New("OLLAMA_URL is not set")
		}
		return llm.NewOllamaProvider(cfg.OllamaURL), nil
	})
	return registry
}

func NewApp(cfg *config.Config) (*App, error) {
	provider, err := NewProviderRegistry(cfg).Get(cfg.LLMProvider)
	if err != nil {
		return nil, fmt.Errorf("could not create llm provider: %w", err)
	}

	chatService := service.NewChatService(provider, cfg.LLMModel)
	chatHandler := api.NewChatHandler(chatService)
	metaHandler := api.NewMetaHandler(timegate.New(cfg.GateHour, cfg.DevMode), time.Now)

	staticDir := cfg.StaticDir
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
			slog.Info("Static directory not found, serving API only.", "dir", staticDir)
			staticDir = ""
		}
	}

	router := api.NewRouter(chatHandler, metaHandler, api.RouterOptions{
		StaticDir:   staticDir,
		EnforceGate: cfg.GateEnforce,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{Config: cfg, Provider: provider, Server: server}, nil
}

// Serve runs the server until ctx is done, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", a.Server.Addr, "provider", a.Config.LLMProvider, "model", a.Config.LLMModel)
		errCh <- a.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Server.Shutdown(shutdownCtx)
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}

	if strings.EqualFold(cfg.LLMProvider, "ollama") {
		if err := waitForOllama(ctx, cfg.OllamaURL, ollamaRetry); err != nil {
			slog.Info("Stopped before Ollama became ready", "error", err)
			return 0
		}
	}

	if err := app.Serve(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		return 1
	}
	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	})))
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// waitForOllama polls the Ollama server until it answers or ctx is done.
func waitForOllama(ctx context.Context, ollamaURL string, retry time.Duration) error {
	slog.Info("Waiting for Ollama to be ready...")
	client := &http.Client{Timeout: 2 * time.Second}
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ollamaURL, nil)
		if err != nil {
			return fmt.Errorf("could not create health check request: %w", err)
		}
		resp, err := client.Do(req)
		if resp != nil {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in ollama health check", "error", bErr)
			}
			if resp.StatusCode == http.StatusOK {
				slog.Info("Ollama is ready.")
				return nil
			}
		}
		slog.Debug("Ollama not ready yet, retrying...", "url", ollamaURL, "retry", retry, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}
