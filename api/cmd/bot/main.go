// Command bot serves the exam reader over Telegram: every photo sent to the bot is
// treated as the next page of that chat's exam.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"exam-reader/api/internal/app"
	"exam-reader/api/internal/config"
	"exam-reader/api/internal/httpserver"
	"exam-reader/api/internal/logger"
	"exam-reader/api/internal/telegram"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN is empty")
	}

	pipe, err := app.NewPipeline(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("engines")
	}

	// --- Postgres (optional) ---
	db, answers, err := app.OpenStore(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	var pinger httpserver.Pinger
	if db != nil {
		defer db.Close()
		pinger = db
	}

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram")
	}
	bot.Debug = false
	log.Info().Str("bot", bot.Self.UserName).Msg("authorized")

	r := &telegram.Router{
		Bot:       bot,
		Analyzer:  pipe.Analyzer,
		Engines:   pipe.Engines,
		Answerer:  pipe.Answerer.Name(),
		Templates: pipe.Templates,
		Answers:   answers,
		MaxPixels: cfg.MaxImagePixels,
		Log:       log,
	}

	// DefaultServeMux, because ListenForWebhook registers there.
	httpserver.Register(http.DefaultServeMux, pinger)
	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(ctx, addr, bot, r, webhookURL, log)
	} else {
		startPollingMode(ctx, addr, bot, r, log)
	}
}

// ---------------- Modes -----------------

func startWebhookMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, log zerolog.Logger) {
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal().Err(err).Msg("webhook")
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal().Err(err).Msg("set webhook")
	}

	updates := bot.ListenForWebhook(path)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					log.Warn().Msg("webhook updates channel closed")
					return
				}
				r.HandleUpdate(upd)
			}
		}
	}()

	log.Info().Str("addr", addr).Str("path", path).Msg("webhook listening")
	if err := httpserver.Start(addr, log); err != nil {
		log.Fatal().Err(err).Msg("http")
	}
}

func startPollingMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, log zerolog.Logger) {
	// health endpoint only; polling does not need it
	go func() {
		if err := httpserver.Start(addr, log); err != nil {
			log.Error().Err(err).Msg("http")
		}
	}()

	// drop any webhook left from a previous deployment, or GetUpdates is refused
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn().Err(err).Msg("delete webhook")
	}
	runPolling(ctx, bot, r.HandleUpdate, log)
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // 429
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// updateSource is the part of *tgbotapi.BotAPI used for long polling.
type updateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

func runPolling(ctx context.Context, bot updateSource, handle func(tgbotapi.Update), log zerolog.Logger) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling, seconds

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.Warn().Err(err).Dur("retry_in", d).Msg("polling error")
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ---------------- Helpers -----------------

// shortHash is a stable FNV-1a digest of the token for the webhook path.
func shortHash(s string) string {
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
