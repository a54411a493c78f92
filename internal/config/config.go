package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Trip struct {
		Origin           string            `yaml:"origin"`
		Destination      string            `yaml:"destination"`
		Hub              string            `yaml:"hub"`
		Date             string            `yaml:"date"`
		Passengers       int               `yaml:"passengers"`
		MaxStops         *int              `yaml:"max_stops"`
		PreferredCarrier string            `yaml:"preferred_carrier"`
		Carriers         map[string]string `yaml:"carriers"` // IATA code -> display name
		Program          string            `yaml:"program"`
		Currency         string            `yaml:"currency"`
	} `yaml:"trip"`
	Deals struct {
		BusinessCashPP   float64 `yaml:"business_cash_pp"`
		BusinessPointsPP int     `yaml:"business_points_pp"`
	} `yaml:"deals"`
	Amadeus struct {
		BaseURL      string `yaml:"base_url"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
	} `yaml:"amadeus"`
	SeatsAero struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"seats_aero"`
	Collector struct {
		Interval time.Duration `yaml:"interval"`
		Mock     bool          `yaml:"mock"`
	} `yaml:"collector"`
	Notify struct {
		Via   []string `yaml:"via"` // slack, whatsapp, telegram, log
		Slack struct {
			WebhookURL string `yaml:"webhook_url"`
		} `yaml:"slack"`
		Twilio struct {
			AccountSID   string `yaml:"account_sid"`
			AuthToken    string `yaml:"auth_token"`
			FromWhatsApp string `yaml:"from_whatsapp"`
			ToWhatsApp   string `yaml:"to_whatsapp"`
		} `yaml:"twilio"`
		Telegram struct {
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
		Retries int `yaml:"retries"`
	} `yaml:"notify"`
	State struct {
		Backend string `yaml:"backend"` // file, github, none
		File    string `yaml:"file"`
		GitHub  struct {
			Token  string `yaml:"token"`
			Repo   string `yaml:"repo"`
			Path   string `yaml:"path"`
			Branch string `yaml:"branch"`
		} `yaml:"github"`
	} `yaml:"state"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresURL string `yaml:"postgres_url"`
	} `yaml:"database"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
		Timezone  string `yaml:"timezone"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	setString := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	setString("AMADEUS_CLIENT_ID", &cfg.Amadeus.ClientID)
	setString("AMADEUS_CLIENT_SECRET", &cfg.Amadeus.ClientSecret)
	setString("AMADEUS_BASE_URL", &cfg.Amadeus.BaseURL)
	setString("SEATS_API_KEY", &cfg.SeatsAero.APIKey)
	setString("SLACK_WEBHOOK_URL", &cfg.Notify.Slack.WebhookURL)
	setString("TWILIO_ACCOUNT_SID", &cfg.Notify.Twilio.AccountSID)
	setString("TWILIO_AUTH_TOKEN", &cfg.Notify.Twilio.AuthToken)
	setString("TWILIO_FROM_WHATSAPP", &cfg.Notify.Twilio.FromWhatsApp)
	setString("TWILIO_TO_WHATSAPP", &cfg.Notify.Twilio.ToWhatsApp)
	setString("TELEGRAM_BOT_TOKEN", &cfg.Notify.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &cfg.Notify.Telegram.ChatID)
	setString("GITHUB_TOKEN", &cfg.State.GitHub.Token)
	setString("GITHUB_REPOSITORY", &cfg.State.GitHub.Repo)
	setString("STATE_BACKEND", &cfg.State.Backend)
	setString("HTTPS_PROXY", &cfg.Proxy)
	setString("SQLITE_PATH", &cfg.Database.SQLitePath)
	setString("DATABASE_URL", &cfg.Database.PostgresURL)
	setString("CRON_DAILY", &cfg.Schedule.DailyCron)
	setString("TZ_REPORT", &cfg.Schedule.Timezone)
	if v := os.Getenv("NOTIFY_VIA"); v != "" {
		cfg.Notify.Via = splitList(v)
	}
	if v := os.Getenv("USE_MOCK_DATA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Collector.Mock = b
		}
	}

	// Defaults
	t := &cfg.Trip
	if t.Origin == "" && t.Destination == "" {
		t.Origin, t.Destination = "MAD", "SYD"
		if t.Hub == "" {
			t.Hub = "DOH"
		}
	}
	if t.Date == "" {
		t.Date = "2026-09-14"
	}
	if t.Passengers == 0 {
		t.Passengers = 2
	}
	if t.MaxStops == nil {
		one := 1
		t.MaxStops = &one
	}
	if len(t.Carriers) == 0 {
		t.Carriers = map[string]string{
			"QR": "Qatar Airways",
			"EK": "Emirates",
			"EY": "Etihad",
			"SQ": "Singapore Airlines",
		}
	}
	if t.PreferredCarrier == "" {
		t.PreferredCarrier = "QR"
	}
	if t.Program == "" {
		t.Program = "velocity"
	}
	if t.Currency == "" {
		t.Currency = "AUD"
	}
	t.Origin = strings.ToUpper(t.Origin)
	t.Destination = strings.ToUpper(t.Destination)
	t.Hub = strings.ToUpper(t.Hub)
	t.PreferredCarrier = strings.ToUpper(t.PreferredCarrier)

	if cfg.Deals.BusinessCashPP == 0 {
		cfg.Deals.BusinessCashPP = 3000
	}
	if cfg.Deals.BusinessPointsPP == 0 {
		cfg.Deals.BusinessPointsPP = 135000
	}
	if cfg.Collector.Interval == 0 {
		cfg.Collector.Interval = time.Second
	}
	if len(cfg.Notify.Via) == 0 {
		cfg.Notify.Via = []string{"slack"}
	}
	if cfg.Notify.Retries == 0 {
		cfg.Notify.Retries = 3
	}
	if cfg.State.Backend == "" {
		cfg.State.Backend = "file"
		if cfg.State.GitHub.Token != "" && cfg.State.GitHub.Repo != "" {
			cfg.State.Backend = "github"
		}
	}
	if cfg.State.File == "" {
		cfg.State.File = "data/state.json"
	}
	if cfg.State.GitHub.Path == "" {
		cfg.State.GitHub.Path = "state.json"
	}
	if cfg.Database.SQLitePath == "" && cfg.Database.PostgresURL == "" {
		cfg.Database.SQLitePath = "data/fare_sentinel.db"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 7 * * *"
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Australia/Sydney"
	}

	return cfg, nil
}

var iataCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks that the trip and channels are usable.
func (c *Config) Validate() error {
	t := c.Trip
	if !iataCode.MatchString(t.Origin) {
		return fmt.Errorf("trip.origin %q is not an IATA airport code", t.Origin)
	}
	if !iataCode.MatchString(t.Destination) {
		return fmt.Errorf("trip.destination %q is not an IATA airport code", t.Destination)
	}
	if t.Hub != "" && !iataCode.MatchString(t.Hub) {
		return fmt.Errorf("trip.hub %q is not an IATA airport code", t.Hub)
	}
	if t.Origin == t.Destination {
		return fmt.Errorf("trip.origin and trip.destination are both %s", t.Origin)
	}
	if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return fmt.Errorf("trip.date %q must be YYYY-MM-DD", t.Date)
	}
	if t.Passengers < 1 {
		return fmt.Errorf("trip.passengers must be at least 1")
	}
	if *t.MaxStops < 0 {
		return fmt.Errorf("trip.max_stops must not be negative")
	}
	if _, ok := t.Carriers[t.PreferredCarrier]; !ok {
		return fmt.Errorf("trip.preferred_carrier %s is not in trip.carriers", t.PreferredCarrier)
	}
	if c.Deals.BusinessCashPP < 0 || c.Deals.BusinessPointsPP < 0 {
		return fmt.Errorf("deals thresholds must not be negative")
	}

	for _, via := range c.Notify.Via {
		switch via {
		case "slack":
			if c.Notify.Slack.WebhookURL == "" {
				return fmt.Errorf("notify.slack.webhook_url is required for slack")
			}
		case "whatsapp":
			tw := c.Notify.Twilio
			if tw.AccountSID == "" || tw.AuthToken == "" || tw.FromWhatsApp == "" || tw.ToWhatsApp == "" {
				return fmt.Errorf("notify.twilio credentials are incomplete for whatsapp")
			}
		case "telegram":
			if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
				return fmt.Errorf("notify.telegram bot_token and chat_id are required for telegram")
			}
		case "log":
		default:
			return fmt.Errorf("notify.via: unknown channel %q", via)
		}
	}

	switch c.State.Backend {
	case "file", "none":
	case "github":
		if c.State.GitHub.Token == "" || c.State.GitHub.Repo == "" {
			return fmt.Errorf("state.github token and repo are required for the github backend")
		}
	default:
		return fmt.Errorf("state.backend: unknown backend %q", c.State.Backend)
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if !c.Collector.Mock {
		if c.Amadeus.ClientID == "" && c.SeatsAero.APIKey == "" {
			return fmt.Errorf("set amadeus credentials or seats_aero.api_key, or enable collector.mock")
		}
	}
	return nil
}

// Allowed returns the tracked carrier codes.
func (c *Config) Allowed() []string {
	codes := make([]string, 0, len(c.Trip.Carriers))
	for code := range c.Trip.Carriers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// HasChannel reports whether via lists name.
func (c *Config) HasChannel(name string) bool {
	for _, v := range c.Notify.Via {
		if v == name {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
