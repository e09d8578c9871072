package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"
	defaultMaxTimes  = 5
	defaultDelayMs   = 1200
	defaultTimezone  = "Asia/Singapore"
	defaultStateDir  = ".runner_cache"
	defaultDistDir   = "dist"
)

// Config carries everything the components need, built once at startup.
// Secrets arrive through environment variables; everything else may also
// come from an optional config.json next to the binary.
type Config struct {
	LuckydrawCookie          string
	LuckydrawNextAction      string
	LuckydrawNextRouterState string
	DrawBaseURL              string

	TopupCookie  string
	TopupAPIUser string
	TopupBaseURL string

	UserAgent string
	MaxTimes  int
	Delay     time.Duration
	Location  *time.Location

	StateDir string
	DistDir  string

	NotifyProvider string
	PushURL        string
	PushToken      string
	PushChannel    string
	PushTemplate   string
	DiscordWebhook string
}

// ConfigError enumerates every missing required key in one shot so a CI run
// reports the whole problem at once.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// required maps viper keys to the environment variables that supply them.
var required = [][2]string{
	{"luckydrawCookie", "LUCKYDRAW_COOKIE"},
	{"luckydrawNextAction", "LUCKYDRAW_NEXT_ACTION"},
	{"luckydrawNextRouterState", "LUCKYDRAW_NEXT_ROUTER_STATE"},
	{"topupCookie", "TOPUP_COOKIE"},
	{"topupNewApiUser", "TOPUP_NEW_API_USER"},
}

var optionalEnv = [][2]string{
	{"userAgent", "USER_AGENT"},
	{"maxTimes", "MAX_TIMES"},
	{"delayMs", "DELAY_MS"},
	{"timezone", "TIMEZONE"},
	{"stateDir", "STATE_DIR"},
	{"distDir", "DIST_DIR"},
	{"notifyProvider", "NOTIFY_PROVIDER"},
	{"pushUrl", "PLUSPUSH_URL"},
	{"pushToken", "PLUSPUSH_TOKEN"},
	{"pushChannel", "PLUSPUSH_CHANNEL"},
	{"pushTemplate", "PLUSPUSH_TEMPLATE"},
	{"discordWebhook", "DISCORD_WEBHOOK"},
	{"drawBaseUrl", "DRAW_BASE_URL"},
	{"topupBaseUrl", "TOPUP_BASE_URL"},
}

func loadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.SetDefault("userAgent", defaultUserAgent)
	viper.SetDefault("maxTimes", defaultMaxTimes)
	viper.SetDefault("delayMs", defaultDelayMs)
	viper.SetDefault("timezone", defaultTimezone)
	viper.SetDefault("stateDir", defaultStateDir)
	viper.SetDefault("distDir", defaultDistDir)
	viper.SetDefault("notifyProvider", "pushplus")
	viper.SetDefault("pushTemplate", "markdown")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	for _, pair := range required {
		viper.BindEnv(pair[0], pair[1])
	}

	for _, pair := range optionalEnv {
		viper.BindEnv(pair[0], pair[1])
	}

	var missing []string

	for _, pair := range required {
		if strings.TrimSpace(viper.GetString(pair[0])) == "" {
			missing = append(missing, pair[1])
		}
	}

	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	loc, err := time.LoadLocation(viper.GetString("timezone"))

	if err != nil {
		return nil, err
	}

	return &Config{
		LuckydrawCookie:          strings.TrimSpace(viper.GetString("luckydrawCookie")),
		LuckydrawNextAction:      strings.TrimSpace(viper.GetString("luckydrawNextAction")),
		LuckydrawNextRouterState: strings.TrimSpace(viper.GetString("luckydrawNextRouterState")),
		DrawBaseURL:              viper.GetString("drawBaseUrl"),
		TopupCookie:              strings.TrimSpace(viper.GetString("topupCookie")),
		TopupAPIUser:             strings.TrimSpace(viper.GetString("topupNewApiUser")),
		TopupBaseURL:             viper.GetString("topupBaseUrl"),
		UserAgent:                viper.GetString("userAgent"),
		MaxTimes:                 viper.GetInt("maxTimes"),
		Delay:                    time.Duration(viper.GetInt("delayMs")) * time.Millisecond,
		Location:                 loc,
		StateDir:                 viper.GetString("stateDir"),
		DistDir:                  viper.GetString("distDir"),
		NotifyProvider:           viper.GetString("notifyProvider"),
		PushURL:                  viper.GetString("pushUrl"),
		PushToken:                strings.TrimSpace(viper.GetString("pushToken")),
		PushChannel:              viper.GetString("pushChannel"),
		PushTemplate:             viper.GetString("pushTemplate"),
		DiscordWebhook:           strings.TrimSpace(viper.GetString("discordWebhook")),
	}, nil
}
