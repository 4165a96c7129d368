package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homework-tutor/api/internal/analysis/registry"
	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/client"
	"homework-tutor/api/internal/config"
	handle "homework-tutor/api/internal/handle"
	"homework-tutor/api/internal/httpserver"
	"homework-tutor/api/internal/session"
	"homework-tutor/api/internal/telegram"
	"homework-tutor/api/internal/util"
	"homework-tutor/api/internal/web"
)

func main() {
	cfg := config.Load()
	port := cfg.PortOr("8080")

	prompt, err := util.LoadPromptFile(cfg.PromptFile, types.TutorPrompt(cfg.Language))
	if err != nil {
		log.Fatal(err)
	}

	// Без ANALYZE_URL поднимаем прокси в этом же процессе
	var proxy *handle.Handle
	analyzeURL := strings.TrimSpace(cfg.AnalyzeURL)
	if analyzeURL == "" {
		engines, err := registry.FromConfig(cfg)
		if err != nil {
			log.Fatal(err)
		}
		proxy = handle.New(engines, prompt)
		analyzeURL = "http://127.0.0.1:" + port + "/v1/analyze"
	}
	log.Printf("analysis endpoint: %s", analyzeURL)

	analyzer := client.New(analyzeURL,
		client.WithPrompt(prompt),
		client.WithHTTPClient(&http.Client{Timeout: cfg.AnalyzeTimeout}),
	)
	store := session.NewStore(session.WithTimeout(cfg.AnalyzeTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sweep(ctx, store, cfg.SessionIdle)

	gin.SetMode(gin.ReleaseMode)
	srv := web.New(store, analyzer,
		web.WithMaxUpload(cfg.MaxUploadBytes),
		web.WithProxy(proxy),
		web.WithRequestLog(true),
	)
	router := srv.Router()

	if cfg.TelegramBotToken != "" {
		startTelegram(ctx, cfg, router, store, analyzer)
	}

	if err := httpserver.Run(ctx, "0.0.0.0:"+port, router); err != nil {
		log.Fatal(err)
	}
}

func sweep(ctx context.Context, store *session.Store, idle time.Duration) {
	t := time.NewTicker(max(idle/4, time.Minute))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := store.Sweep(idle); n > 0 {
				log.Printf("sessions: dropped %d idle, %d left", n, store.Len())
			}
		}
	}
}

// ---------------- Telegram -----------------

func startTelegram(ctx context.Context, cfg *config.Config, router *gin.Engine, store *session.Store, analyzer session.Analyzer) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	bot.Debug = false
	tr := &telegram.Router{Bot: bot, Sessions: store, Analyzer: analyzer}

	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		// поллинг с backoff, без log.Fatal/os.Exit
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Printf("telegram: delete webhook: %v", err)
		}
		go telegram.RunPolling(ctx, bot, tr.HandleUpdate)
		log.Printf("telegram: polling as @%s", bot.Self.UserName)
		return
	}

	path := telegram.WebhookPath(bot.Token)
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(webhookURL, "/") + path)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal(err)
	}
	router.POST(path, func(c *gin.Context) {
		upd, err := bot.HandleUpdate(c.Request)
		if err != nil {
			log.Printf("telegram: webhook: %v", err)
			c.Status(http.StatusBadRequest)
			return
		}
		go tr.HandleUpdate(*upd)
		c.Status(http.StatusOK)
	})
	log.Printf("telegram: webhook on %s", path)
}
