package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luckydraw-bot/pkg/notify"
	"luckydraw-bot/pkg/run"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("LUCKYDRAW_COOKIE", "session=draw")
	t.Setenv("LUCKYDRAW_NEXT_ACTION", "action")
	t.Setenv("LUCKYDRAW_NEXT_ROUTER_STATE", "state")
	t.Setenv("TOPUP_COOKIE", "session=topup")
	t.Setenv("TOPUP_NEW_API_USER", "42")
}

func TestLoadConfigEnumeratesMissingKeys(t *testing.T) {
	viper.Reset()

	t.Setenv("LUCKYDRAW_COOKIE", "session=draw")
	t.Setenv("LUCKYDRAW_NEXT_ACTION", "")
	t.Setenv("LUCKYDRAW_NEXT_ROUTER_STATE", "")
	t.Setenv("TOPUP_COOKIE", "")
	t.Setenv("TOPUP_NEW_API_USER", "")

	_, err := loadConfig()

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{
		"LUCKYDRAW_NEXT_ACTION",
		"LUCKYDRAW_NEXT_ROUTER_STATE",
		"TOPUP_COOKIE",
		"TOPUP_NEW_API_USER",
	}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "LUCKYDRAW_NEXT_ACTION")
}

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	setRequiredEnv(t)

	cfg, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, "session=draw", cfg.LuckydrawCookie)
	assert.Equal(t, 5, cfg.MaxTimes)
	assert.Equal(t, "Asia/Singapore", cfg.Location.String())
	assert.Equal(t, ".runner_cache", cfg.StateDir)
	assert.Equal(t, "dist", cfg.DistDir)
	assert.Equal(t, "pushplus", cfg.NotifyProvider)
	assert.Equal(t, "markdown", cfg.PushTemplate)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	viper.Reset()
	setRequiredEnv(t)

	t.Setenv("MAX_TIMES", "2")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("STATE_DIR", "/tmp/cache")

	cfg, err := loadConfig()

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxTimes)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, "/tmp/cache", cfg.StateDir)
}

func TestBuildNotifierSelection(t *testing.T) {
	assert.Nil(t, buildNotifier(&Config{NotifyProvider: "pushplus"}))
	assert.Nil(t, buildNotifier(&Config{NotifyProvider: "discord"}))

	n := buildNotifier(&Config{NotifyProvider: "pushplus", PushToken: "tok"})
	require.IsType(t, &notify.PushPlus{}, n)

	n = buildNotifier(&Config{NotifyProvider: "discord", DiscordWebhook: "https://discord.test/hook"})
	require.IsType(t, &notify.Discord{}, n)
}

func TestPushContent(t *testing.T) {
	amount := int64(100)

	summary := &run.Summary{
		TotalAmount: 100,
		Items: []run.Attempt{
			{DrawMessage: "unauthenticated", RedeemMessage: "no redemption code (unauthenticated)"},
			{CodeMask: "abcd****7890", Redeemed: true, Amount: &amount, RedeemMessage: "ok"},
		},
	}

	content := pushContent(summary)

	assert.Contains(t, content, "**Total**: `100`")
	assert.Contains(t, content, "- #1: ❌")
	assert.Contains(t, content, "- #2: ✅ abcd****7890 amount:100  ok")
	assert.NotContains(t, content, "abcdef1234567890")
}
