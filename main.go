package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aidarkhanov/nanoid/v2"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"luckydraw-bot/pkg/draw"
	"luckydraw-bot/pkg/httpclient"
	"luckydraw-bot/pkg/notify"
	"luckydraw-bot/pkg/report"
	"luckydraw-bot/pkg/run"
	"luckydraw-bot/pkg/state"
	"luckydraw-bot/pkg/topup"
)

func main() {
	lj := &lumberjack.Logger{Filename: `./logs/main.log`, MaxSize: 25, Compress: true}
	multiWriter := zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, lj)

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	runID, _ := nanoid.New()

	log := zerolog.New(multiWriter).With().Timestamp().Str("run", runID).Logger()

	log.Info().Str("scope", "init").Msg("loading configuration and state")

	cfg, err := loadConfig()

	if err != nil {
		log.Error().Err(err).Msg("configuration is incomplete")
		os.Exit(1)
	}

	pm := NewProxyManager()

	if err := pm.Read("proxies.txt"); err != nil {
		log.Error().Err(err).Msg("unable to read proxies")
		os.Exit(1)
	}

	var proxyURL *url.URL

	if p := pm.Next(); p != nil {
		proxyURL = p.URL()
		log.Info().Str("scope", "init").Str("proxy", proxyURL.Host).Msg("routing through proxy")
	}

	drawBaseURL := cfg.DrawBaseURL

	if drawBaseURL == "" {
		drawBaseURL = draw.DefaultBaseURL
	}

	topupBaseURL := cfg.TopupBaseURL

	if topupBaseURL == "" {
		topupBaseURL = topup.DefaultBaseURL
	}

	drawHTTP, err := httpclient.New(httpclient.Options{
		BaseURL: drawBaseURL,
		Cookies: cfg.LuckydrawCookie,
		Proxy:   proxyURL,
	})

	if err != nil {
		log.Error().Err(err).Msg("unable to build draw client")
		os.Exit(1)
	}

	topupHTTP, err := httpclient.New(httpclient.Options{
		BaseURL: topupBaseURL,
		Cookies: cfg.TopupCookie,
		Proxy:   proxyURL,
	})

	if err != nil {
		log.Error().Err(err).Msg("unable to build top-up client")
		os.Exit(1)
	}

	controller := &run.Controller{
		Drawer: &draw.Client{
			HTTP:            drawHTTP,
			BaseURL:         cfg.DrawBaseURL,
			NextAction:      cfg.LuckydrawNextAction,
			NextRouterState: cfg.LuckydrawNextRouterState,
			UserAgent:       cfg.UserAgent,
		},
		Redeemer: &topup.Client{
			HTTP:      topupHTTP,
			BaseURL:   cfg.TopupBaseURL,
			APIUser:   cfg.TopupAPIUser,
			UserAgent: cfg.UserAgent,
		},
		State:    state.NewStore(cfg.StateDir, cfg.Location),
		DailyMax: cfg.MaxTimes,
		Delay:    cfg.Delay,
		Log:      log,
	}

	ctx := context.Background()

	summary, err := controller.Run(ctx)

	if err != nil {
		log.Error().Err(err).Msg("run aborted")
		os.Exit(1)
	}

	writer := &report.Writer{Dir: cfg.DistDir}

	if err := writer.Write(summary); err != nil {
		log.Error().Err(err).Msg("unable to write report artifacts")
	} else {
		log.Info().Str("scope", "summary").Int64("total", summary.TotalAmount).Msgf("wrote %s/index.html and %s/summary.json", cfg.DistDir, cfg.DistDir)
	}

	if !summary.Notifiable() {
		log.Info().Str("scope", "push").Msg("skipping push, nothing was won or redeemed")
		return
	}

	notifier := buildNotifier(cfg)

	if notifier == nil {
		log.Info().Str("scope", "push").Msg("skipping push, no provider configured")
		return
	}

	title := fmt.Sprintf("Draw & redemption finished (%s)", summary.Date)

	if err := notifier.Send(ctx, title, pushContent(summary)); err != nil {
		log.Warn().Str("scope", "push").Err(err).Msg("push failed")
		return
	}

	log.Info().Str("scope", "push").Msg("push delivered")
}

// buildNotifier picks the configured push provider, nil when the provider
// is missing its credentials.
func buildNotifier(cfg *Config) notify.Notifier {
	switch cfg.NotifyProvider {
	case "discord":
		if cfg.DiscordWebhook == "" {
			return nil
		}

		return &notify.Discord{Webhook: cfg.DiscordWebhook}

	default:
		if cfg.PushToken == "" {
			return nil
		}

		return &notify.PushPlus{
			URL:      cfg.PushURL,
			Token:    cfg.PushToken,
			Channel:  cfg.PushChannel,
			Template: cfg.PushTemplate,
		}
	}
}

// pushContent renders the summary as markdown with masked codes only.
func pushContent(s *run.Summary) string {
	lines := make([]string, 0, len(s.Items))

	for i, it := range s.Items {
		mark := "❌"

		if it.Redeemed {
			mark = "✅"
		}

		amount := ""

		if it.Amount != nil {
			amount = fmt.Sprintf("%d", *it.Amount)
		}

		msg := it.RedeemMessage

		if msg == "" {
			msg = it.DrawMessage
		}

		lines = append(lines, fmt.Sprintf("- #%d: %s %s amount:%s  %s", i+1, mark, it.CodeMask, amount, msg))
	}

	return fmt.Sprintf("**Total**: `%d`\n\n%s", s.TotalAmount, strings.Join(lines, "\n"))
}
