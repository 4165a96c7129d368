package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"homework-tutor/api/internal/analysis/registry"
	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/config"
	handle "homework-tutor/api/internal/handle"
	"homework-tutor/api/internal/httpserver"
	"homework-tutor/api/internal/util"
)

func main() {
	cfg := config.Load()

	engines, err := registry.FromConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	prompt, err := util.LoadPromptFile(cfg.PromptFile, types.TutorPrompt(cfg.Language))
	if err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	handle.New(engines, prompt).Routes(mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.PortOr("8000")
	log.Printf("llm-proxy: %d engine(s), default %s", engines.Len(), cfg.DefaultLLM)
	if err := httpserver.Run(ctx, addr, mux); err != nil {
		log.Fatal(err)
	}
}
