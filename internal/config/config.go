package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	RealtimeChannel        string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	DashboardCacheTTL      time.Duration
	AnalyticsCacheTTL      time.Duration
	RateLimitMax           int
	RateLimitWindow        time.Duration
	CORSAllowedOrigins     []string
	SlowRequestThreshold   time.Duration
	SeedEnabled            bool
	SeedToken              string
	FresherEmailDomain     string
	Quiz                   QuizConfig
}

// QuizConfig tunes the timed quiz engine.
type QuizConfig struct {
	QuestionCount          int
	Duration               int
	TickInterval           time.Duration
	AllowUnansweredAdvance bool
	PassRatio              float64
	BankFile               string
	// SessionRetention keeps finished sessions readable for reports before eviction.
	SessionRetention       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TRAINING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Fresher Training API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "training/avatars")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("analytics.cache_ttl", "2m")
	v.SetDefault("realtime.channel", "training")
	v.SetDefault("rate_limit.max", 120)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("http.slow_request", "500ms")
	v.SetDefault("seed.enabled", false)
	v.SetDefault("fresher.email_domain", "maverick.com")
	v.SetDefault("quiz.question_count", 5)
	v.SetDefault("quiz.duration_seconds", 300)
	v.SetDefault("quiz.tick_interval", "1s")
	v.SetDefault("quiz.allow_unanswered_advance", false)
	v.SetDefault("quiz.pass_ratio", 0.6)
	v.SetDefault("quiz.session_retention", "30m")

	dashboardTTL, err := parseDuration(v.GetString("dashboard.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	analyticsTTL, err := parseDuration(v.GetString("analytics.cache_ttl"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid analytics cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("rate_limit.window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	slow, err := parseDuration(v.GetString("http.slow_request"), 500*time.Millisecond)
	if err != nil {
		return Config{}, fmt.Errorf("invalid slow request threshold: %w", err)
	}

	tick, err := parseDuration(v.GetString("quiz.tick_interval"), time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid quiz tick interval: %w", err)
	}

	retention, err := parseDuration(v.GetString("quiz.session_retention"), 30*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid quiz session retention: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		RealtimeChannel:        v.GetString("realtime.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		DashboardCacheTTL:      dashboardTTL,
		AnalyticsCacheTTL:      analyticsTTL,
		RateLimitMax:           v.GetInt("rate_limit.max"),
		RateLimitWindow:        window,
		CORSAllowedOrigins:     splitList(v.GetString("cors.allowed_origins")),
		SlowRequestThreshold:   slow,
		SeedEnabled:            v.GetBool("seed.enabled"),
		SeedToken:              v.GetString("seed.token"),
		FresherEmailDomain:     strings.ToLower(strings.TrimSpace(v.GetString("fresher.email_domain"))),
		Quiz: QuizConfig{
			QuestionCount:          v.GetInt("quiz.question_count"),
			Duration:               v.GetInt("quiz.duration_seconds"),
			TickInterval:           tick,
			AllowUnansweredAdvance: v.GetBool("quiz.allow_unanswered_advance"),
			PassRatio:              v.GetFloat64("quiz.pass_ratio"),
			BankFile:               v.GetString("quiz.bank_file"),
			SessionRetention:       retention,
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.Quiz.QuestionCount <= 0 {
		return Config{}, fmt.Errorf("quiz question count must be positive")
	}

	if cfg.Quiz.Duration <= 0 {
		return Config{}, fmt.Errorf("quiz duration must be positive")
	}

	if cfg.Quiz.PassRatio <= 0 || cfg.Quiz.PassRatio > 1 {
		return Config{}, fmt.Errorf("quiz pass ratio must be within (0, 1]")
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 120
	}

	if cfg.FresherEmailDomain == "" {
		cfg.FresherEmailDomain = "maverick.com"
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
