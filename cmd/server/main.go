package main

import (
	"net/http"
	"os"

	"github.com/RichardoC/ai-doctor/internal/api"
	"github.com/RichardoC/ai-doctor/internal/config"
	"github.com/RichardoC/ai-doctor/internal/llm"
	"github.com/RichardoC/ai-doctor/internal/metrics"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	if cfg.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// Credentials are read from the environment on every request.
	llmService := llm.New(cfg, os.LookupEnv, nil, logger)

	m := metrics.New(nil)
	handler := api.NewHandler(llmService, m, logger)
	router := api.NewRouter(handler, m, logger)

	addr := ":" + cfg.Port
	logger.Info("Starting gateway", zap.String("addr", addr), zap.String("path", api.ChatPath))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
